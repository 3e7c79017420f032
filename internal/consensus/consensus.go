// Package consensus reconstructs point-in-time analyst price-target consensus
// from an unordered history of per-firm rating events. For every snapshot
// offset it keeps, per firm, the opinion that was actually in force at that
// historical moment, then averages one target per firm.
package consensus

import (
	"time"

	"stock-digest/pkg/utils"
)

const (
	maxRecentActions  = 15
	historyWindowDays = 180
	firmDisplayRunes  = 25
	defaultAction     = "Updates"
)

// Snapshot offsets in days into the past. Offset 0 is the current consensus.
var snapshotOffsets = [4]int{0, 7, 30, 90}

// Trend directions. The comparison convention (historical above current maps
// to "up") is kept as-is for compatibility with the existing digest; see
// DESIGN.md before changing it.
const (
	TrendUp        = "up"
	TrendDown      = "down"
	TrendUnchanged = "unchanged"
)

// Snapshot is the consensus target reconstructed for one offset. Price is nil
// when no firm qualifies.
type Snapshot struct {
	OffsetDays int
	Price      *float64
	FirmCount  int
}

// Trend compares the current snapshot against a historical one. Percent is
// always non-negative; Direction carries the sign.
type Trend struct {
	Direction string
	Percent   float64
}

// RecentAction is one individual (non-deduplicated) rating event prepared for
// display: firm pre-truncated, action pre-capitalized.
type RecentAction struct {
	Date        string
	DateShort   string
	Firm        string
	Action      string
	Rating      string
	Target      float64
	PriorTarget *float64
	AgeDays     int
}

// HistoryPoint is one event inside the charting window, unfiltered by firm.
type HistoryPoint struct {
	Date    time.Time
	Firm    string
	Target  float64
	AgeDays int
}

// Report is the full consensus view for one ticker at one instant.
type Report struct {
	Ticker      string
	GeneratedAt time.Time

	Current    Snapshot
	WeekAgo    Snapshot
	MonthAgo   Snapshot
	QuarterAgo Snapshot

	Trend7d  *Trend
	Trend30d *Trend

	RecentActions []RecentAction
	History       []HistoryPoint
}

// BuildReport computes the consensus report for ticker from raw rating
// events. now is captured once by the caller and threaded through every
// derived value so all four snapshots describe the same instant. An empty or
// fully-malformed input yields a well-formed empty report, never an error.
func BuildReport(ticker string, raws []RawEvent, now time.Time) Report {
	events := normalize(raws, now)

	report := Report{
		Ticker:      ticker,
		GeneratedAt: now,
	}
	report.Current = consensusAt(events, snapshotOffsets[0])
	report.WeekAgo = consensusAt(events, snapshotOffsets[1])
	report.MonthAgo = consensusAt(events, snapshotOffsets[2])
	report.QuarterAgo = consensusAt(events, snapshotOffsets[3])

	report.Trend7d = deriveTrend(report.Current, report.WeekAgo)
	report.Trend30d = deriveTrend(report.Current, report.MonthAgo)

	report.RecentActions = recentActions(events)
	report.History = historyPoints(events)

	return report
}

// consensusAt reconstructs the consensus as of offsetDays in the past: for
// each firm, the event with the smallest age that is still >= the offset is
// the firm's opinion in force at that moment. A plain "dated within the last
// N days" filter would silently drop firms whose last word predates the
// window; this scan does not. Iteration order of the input does not change
// the result, except that on an exact age tie within one firm the
// last-encountered event wins.
func consensusAt(events []ratingEvent, offsetDays int) Snapshot {
	best := make(map[string]ratingEvent)
	for _, ev := range events {
		if ev.ageDays < offsetDays {
			continue
		}
		current, seen := best[ev.firm]
		if !seen || ev.ageDays <= current.ageDays {
			best[ev.firm] = ev
		}
	}

	snapshot := Snapshot{OffsetDays: offsetDays, FirmCount: len(best)}
	if len(best) == 0 {
		return snapshot
	}

	var sum float64
	for _, ev := range best {
		sum += ev.target
	}
	snapshot.Price = utils.ToPointer(sum / float64(len(best)))
	return snapshot
}

// deriveTrend compares the current consensus with a historical one. Both
// prices must be present. The direction convention is intentionally the
// historical-relative one used by the digest since its first version:
// historical above current reads "up".
func deriveTrend(current, historical Snapshot) *Trend {
	if current.Price == nil || historical.Price == nil {
		return nil
	}

	cur := *current.Price
	hist := *historical.Price
	switch {
	case hist > cur:
		return &Trend{Direction: TrendUp, Percent: (hist/cur - 1) * 100}
	case hist < cur:
		return &Trend{Direction: TrendDown, Percent: (1 - hist/cur) * 100}
	default:
		return &Trend{Direction: TrendUnchanged}
	}
}

// recentActions keeps the first maxRecentActions events in input order, not
// deduplicated by firm. The feed delivers newest-first; the extractor does
// not re-sort, so "recent" is only as good as that ordering contract.
func recentActions(events []ratingEvent) []RecentAction {
	limit := len(events)
	if limit > maxRecentActions {
		limit = maxRecentActions
	}

	actions := make([]RecentAction, 0, limit)
	for _, ev := range events[:limit] {
		action := defaultAction
		if ev.action != "" {
			action = utils.Capitalize(ev.action)
		}

		actions = append(actions, RecentAction{
			Date:        utils.PrettyDate(ev.date),
			DateShort:   utils.ShortDate(ev.date),
			Firm:        utils.TruncateWithEllipsis(ev.firm, firmDisplayRunes),
			Action:      action,
			Rating:      ev.rating,
			Target:      ev.target,
			PriorTarget: ev.prior,
			AgeDays:     ev.ageDays,
		})
	}
	return actions
}

// historyPoints returns every event inside the charting window, independent
// of the recent-actions cap.
func historyPoints(events []ratingEvent) []HistoryPoint {
	points := make([]HistoryPoint, 0, len(events))
	for _, ev := range events {
		if ev.ageDays > historyWindowDays {
			continue
		}
		points = append(points, HistoryPoint{
			Date:    ev.date,
			Firm:    ev.firm,
			Target:  ev.target,
			AgeDays: ev.ageDays,
		})
	}
	return points
}
