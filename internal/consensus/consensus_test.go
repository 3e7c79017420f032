package consensus

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-digest/pkg/utils"
)

var testNow = time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

// rawEvent builds a RawEvent dated ageDays before testNow.
func rawEvent(firm string, ageDays int, target float64) RawEvent {
	return RawEvent{
		Firm:        firm,
		Date:        testNow.AddDate(0, 0, -ageDays).Format("2006-01-02"),
		PriceTarget: utils.ToPointer(target),
	}
}

func TestBuildReport_PointInTimeSnapshots(t *testing.T) {
	// Three firms: A (100, 2d), B (110, 10d), C (90, 40d).
	events := []RawEvent{
		rawEvent("Firm A", 2, 100),
		rawEvent("Firm B", 10, 110),
		rawEvent("Firm C", 40, 90),
	}

	report := BuildReport("XYZ", events, testNow)

	require.NotNil(t, report.Current.Price)
	assert.InDelta(t, 100.0, *report.Current.Price, 1e-9)
	assert.Equal(t, 3, report.Current.FirmCount)

	// A is too fresh to have existed 7 days ago.
	require.NotNil(t, report.WeekAgo.Price)
	assert.InDelta(t, 100.0, *report.WeekAgo.Price, 1e-9)
	assert.Equal(t, 2, report.WeekAgo.FirmCount)

	require.NotNil(t, report.MonthAgo.Price)
	assert.InDelta(t, 90.0, *report.MonthAgo.Price, 1e-9)
	assert.Equal(t, 1, report.MonthAgo.FirmCount)

	assert.Nil(t, report.QuarterAgo.Price)
	assert.Equal(t, 0, report.QuarterAgo.FirmCount)
}

func TestConsensusAt_PerFirmCardinality(t *testing.T) {
	// One firm revises its target three times; only the opinion in force at
	// each offset may contribute, exactly once.
	events := normalize([]RawEvent{
		rawEvent("Morgan Stanley", 3, 120),
		rawEvent("Morgan Stanley", 20, 100),
		rawEvent("Morgan Stanley", 60, 80),
		rawEvent("Goldman Sachs", 45, 200),
	}, testNow)

	tests := []struct {
		offset    int
		wantPrice float64
		wantFirms int
	}{
		{offset: 0, wantPrice: (120 + 200) / 2.0, wantFirms: 2},
		{offset: 7, wantPrice: (100 + 200) / 2.0, wantFirms: 2},
		{offset: 30, wantPrice: (80 + 200) / 2.0, wantFirms: 2},
		{offset: 90, wantFirms: 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("offset_%d", tt.offset), func(t *testing.T) {
			got := consensusAt(events, tt.offset)
			assert.Equal(t, tt.offset, got.OffsetDays)
			assert.Equal(t, tt.wantFirms, got.FirmCount)
			if tt.wantFirms == 0 {
				assert.Nil(t, got.Price)
				return
			}
			require.NotNil(t, got.Price)
			assert.InDelta(t, tt.wantPrice, *got.Price, 1e-9)
		})
	}
}

func TestConsensusAt_OffsetZeroIsMostRecentPerFirm(t *testing.T) {
	// At offset 0 a firm's last word counts even when it is far older than
	// any window a naive recency filter would use.
	events := normalize([]RawEvent{
		rawEvent("Barclays", 170, 50),
		rawEvent("Citi", 1, 150),
	}, testNow)

	got := consensusAt(events, 0)
	require.NotNil(t, got.Price)
	assert.InDelta(t, 100.0, *got.Price, 1e-9)
	assert.Equal(t, 2, got.FirmCount)
}

func TestConsensusAt_EligibilityIsNotMonotonic(t *testing.T) {
	// A firm whose only event is 5 days old qualifies now but at no
	// historical offset.
	events := normalize([]RawEvent{rawEvent("Wedbush", 5, 75)}, testNow)

	assert.Equal(t, 1, consensusAt(events, 0).FirmCount)
	for _, offset := range []int{7, 30, 90} {
		got := consensusAt(events, offset)
		assert.Equal(t, 0, got.FirmCount, "offset %d", offset)
		assert.Nil(t, got.Price, "offset %d", offset)
	}
}

func TestConsensusAt_OrderIndependent(t *testing.T) {
	forward := []RawEvent{
		rawEvent("A", 2, 100),
		rawEvent("A", 15, 90),
		rawEvent("B", 10, 110),
		rawEvent("C", 40, 95),
	}
	reversed := []RawEvent{forward[3], forward[2], forward[1], forward[0]}

	for _, offset := range []int{0, 7, 30, 90} {
		a := consensusAt(normalize(forward, testNow), offset)
		b := consensusAt(normalize(reversed, testNow), offset)
		assert.Equal(t, a.FirmCount, b.FirmCount, "offset %d", offset)
		if a.Price == nil {
			assert.Nil(t, b.Price, "offset %d", offset)
			continue
		}
		require.NotNil(t, b.Price, "offset %d", offset)
		assert.InDelta(t, *a.Price, *b.Price, 1e-9, "offset %d", offset)
	}
}

func TestConsensusAt_SameDayTieLastEncounteredWins(t *testing.T) {
	events := normalize([]RawEvent{
		rawEvent("KeyBanc", 4, 100),
		rawEvent("KeyBanc", 4, 130),
	}, testNow)

	got := consensusAt(events, 0)
	require.NotNil(t, got.Price)
	assert.InDelta(t, 130.0, *got.Price, 1e-9)
	assert.Equal(t, 1, got.FirmCount)
}

func TestBuildReport_EmptyInput(t *testing.T) {
	report := BuildReport("XYZ", nil, testNow)

	for _, snap := range []Snapshot{report.Current, report.WeekAgo, report.MonthAgo, report.QuarterAgo} {
		assert.Nil(t, snap.Price)
		assert.Equal(t, 0, snap.FirmCount)
	}
	assert.Nil(t, report.Trend7d)
	assert.Nil(t, report.Trend30d)
	assert.Empty(t, report.RecentActions)
	assert.Empty(t, report.History)
}

func TestBuildReport_InvalidEventsNeverContribute(t *testing.T) {
	events := []RawEvent{
		{Firm: "Zero Target", Date: testNow.AddDate(0, 0, -1).Format("2006-01-02"), PriceTarget: utils.ToPointer(0.0)},
		{Firm: "No Target", Date: testNow.AddDate(0, 0, -1).Format("2006-01-02")},
		{Firm: "Negative", Date: testNow.AddDate(0, 0, -1).Format("2006-01-02"), PriceTarget: utils.ToPointer(-5.0)},
		{Firm: "Bad Date", Date: "not-a-date!", PriceTarget: utils.ToPointer(80.0)},
		rawEvent("Valid", 1, 100),
	}

	report := BuildReport("XYZ", events, testNow)

	assert.Equal(t, 1, report.Current.FirmCount)
	require.NotNil(t, report.Current.Price)
	assert.InDelta(t, 100.0, *report.Current.Price, 1e-9)
	require.Len(t, report.RecentActions, 1)
	assert.Equal(t, "Valid", report.RecentActions[0].Firm)
	require.Len(t, report.History, 1)
	assert.Equal(t, "Valid", report.History[0].Firm)
}

func TestBuildReport_RecentActionsBounded(t *testing.T) {
	var events []RawEvent
	for i := 0; i < 30; i++ {
		events = append(events, rawEvent(fmt.Sprintf("Firm %02d", i), i+1, 100+float64(i)))
	}

	report := BuildReport("XYZ", events, testNow)

	require.Len(t, report.RecentActions, 15)
	for i, action := range report.RecentActions {
		assert.Equal(t, fmt.Sprintf("Firm %02d", i), action.Firm)
	}
	// The 180-day history is independent of the recent-actions cap.
	assert.Len(t, report.History, 30)
}

func TestBuildReport_RecentActionDisplayFields(t *testing.T) {
	prior := utils.ToPointer(95.0)
	date := testNow.AddDate(0, 0, -3)
	events := []RawEvent{
		{
			Firm:             "An Exceptionally Long Analyst Firm Name LLC",
			Date:             date.Format("2006-01-02"),
			PriceTarget:      utils.ToPointer(105.0),
			PriorPriceTarget: prior,
			Rating:           "Overweight",
			Action:           "RAISES",
		},
		rawEvent("Loop Capital", 8, 60),
	}

	report := BuildReport("XYZ", events, testNow)
	require.Len(t, report.RecentActions, 2)

	first := report.RecentActions[0]
	assert.Equal(t, "An Exceptionally Long Ana…", first.Firm)
	assert.Equal(t, "Raises", first.Action)
	assert.Equal(t, "Overweight", first.Rating)
	assert.Equal(t, date.Format("Jan 02, 2006"), first.Date)
	assert.Equal(t, date.Format("Jan 02"), first.DateShort)
	assert.InDelta(t, 105.0, first.Target, 1e-9)
	require.NotNil(t, first.PriorTarget)
	assert.InDelta(t, 95.0, *first.PriorTarget, 1e-9)
	assert.Equal(t, 3, first.AgeDays)

	// Missing action label falls back to the generic one.
	assert.Equal(t, "Updates", report.RecentActions[1].Action)
	assert.Nil(t, report.RecentActions[1].PriorTarget)
}

func TestBuildReport_HistoryWindow(t *testing.T) {
	events := []RawEvent{
		rawEvent("Inside", 180, 90),
		rawEvent("Outside", 181, 95),
		rawEvent("Fresh", 2, 120),
	}

	report := BuildReport("XYZ", events, testNow)

	require.Len(t, report.History, 2)
	assert.Equal(t, "Inside", report.History[0].Firm)
	assert.Equal(t, "Fresh", report.History[1].Firm)
	// Outside still contributes to consensus; the window bounds charting only.
	assert.Equal(t, 3, report.Current.FirmCount)
}

func TestDeriveTrend(t *testing.T) {
	snap := func(price float64) Snapshot {
		return Snapshot{Price: utils.ToPointer(price), FirmCount: 1}
	}

	tests := []struct {
		name          string
		current       Snapshot
		historical    Snapshot
		wantNil       bool
		wantDirection string
		wantPercent   float64
	}{
		{
			name:          "historical below current reads down",
			current:       snap(100),
			historical:    snap(90),
			wantDirection: TrendDown,
			wantPercent:   10.0,
		},
		{
			name:          "historical above current reads up",
			current:       snap(100),
			historical:    snap(104.2),
			wantDirection: TrendUp,
			wantPercent:   4.2,
		},
		{
			name:          "equal is unchanged",
			current:       snap(100),
			historical:    snap(100),
			wantDirection: TrendUnchanged,
			wantPercent:   0,
		},
		{
			name:       "absent historical yields no trend",
			current:    snap(100),
			historical: Snapshot{},
			wantNil:    true,
		},
		{
			name:       "absent current yields no trend",
			current:    Snapshot{},
			historical: snap(90),
			wantNil:    true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := deriveTrend(tt.current, tt.historical)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantDirection, got.Direction)
			assert.InDelta(t, tt.wantPercent, got.Percent, 1e-9)
		})
	}
}

func TestBuildReport_TrendsWired(t *testing.T) {
	// Current 100, 7d-ago 110 (inverted convention: up 10%), 30d-ago absent.
	events := []RawEvent{
		rawEvent("A", 1, 100),
		rawEvent("B", 10, 110),
	}
	// B alone forms the 7d snapshot (110); A+B form current (105).
	report := BuildReport("XYZ", events, testNow)

	require.NotNil(t, report.Trend7d)
	assert.Equal(t, TrendUp, report.Trend7d.Direction)
	assert.InDelta(t, (110.0/105.0-1)*100, report.Trend7d.Percent, 1e-9)
	assert.Nil(t, report.Trend30d)
}
