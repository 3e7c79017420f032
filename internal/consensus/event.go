package consensus

import (
	"time"

	"stock-digest/pkg/utils"
)

// RawEvent is one analyst action exactly as the ratings feed delivered it.
// Fields other than Firm are optional; normalization decides what survives.
type RawEvent struct {
	Firm             string
	Date             string     // ISO-like, first 10 chars parsed as YYYY-MM-DD
	ParsedDate       *time.Time // takes precedence over Date when set
	PriceTarget      *float64
	PriorPriceTarget *float64
	Rating           string
	Action           string
}

// ratingEvent is the normalized form the engine computes over. ageDays is
// derived once from the shared report clock so every snapshot sees the same
// "now".
type ratingEvent struct {
	firm    string
	date    time.Time
	ageDays int
	target  float64
	prior   *float64
	rating  string
	action  string
}

// normalize drops events with no usable price target or an unparseable date
// and stamps the rest with their age relative to now. Input order is
// preserved. Malformed events are expected feed noise, not errors.
func normalize(raws []RawEvent, now time.Time) []ratingEvent {
	events := make([]ratingEvent, 0, len(raws))
	for _, raw := range raws {
		if raw.PriceTarget == nil || *raw.PriceTarget <= 0 {
			continue
		}

		date, ok := eventDate(raw)
		if !ok {
			continue
		}

		events = append(events, ratingEvent{
			firm:    raw.Firm,
			date:    date,
			ageDays: utils.AgeInDays(now, date),
			target:  *raw.PriceTarget,
			prior:   raw.PriorPriceTarget,
			rating:  raw.Rating,
			action:  raw.Action,
		})
	}
	return events
}

func eventDate(raw RawEvent) (time.Time, bool) {
	if raw.ParsedDate != nil {
		return *raw.ParsedDate, true
	}
	if len(raw.Date) < 10 {
		return time.Time{}, false
	}
	date, err := time.Parse("2006-01-02", raw.Date[:10])
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}
