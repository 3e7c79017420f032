package utils

import "time"

// AgeInDays returns the number of whole days between now and date, never
// negative. Events stamped in the future (clock skew upstream) count as
// today.
func AgeInDays(now, date time.Time) int {
	days := int(now.Sub(date).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func PrettyDate(date time.Time) string {
	return date.Format("Jan 02, 2006")
}

func ShortDate(date time.Time) string {
	return date.Format("Jan 02")
}
