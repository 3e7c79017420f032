package consensus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-digest/pkg/utils"
)

func TestNormalize_DateHandling(t *testing.T) {
	parsed := testNow.AddDate(0, 0, -12)

	tests := []struct {
		name    string
		raw     RawEvent
		wantAge int
		dropped bool
	}{
		{
			name: "plain ISO date",
			raw: RawEvent{
				Firm:        "UBS",
				Date:        testNow.AddDate(0, 0, -6).Format("2006-01-02"),
				PriceTarget: utils.ToPointer(90.0),
			},
			wantAge: 6,
		},
		{
			name: "ISO datetime uses first ten characters",
			raw: RawEvent{
				Firm:        "UBS",
				Date:        testNow.AddDate(0, 0, -6).Format("2006-01-02") + "T14:30:00Z",
				PriceTarget: utils.ToPointer(90.0),
			},
			wantAge: 6,
		},
		{
			name: "pre-parsed date takes precedence",
			raw: RawEvent{
				Firm:        "UBS",
				Date:        "ignored",
				ParsedDate:  &parsed,
				PriceTarget: utils.ToPointer(90.0),
			},
			wantAge: 12,
		},
		{
			name: "future date is clamped to zero age",
			raw: RawEvent{
				Firm:        "UBS",
				Date:        testNow.AddDate(0, 0, 3).Format("2006-01-02"),
				PriceTarget: utils.ToPointer(90.0),
			},
			wantAge: 0,
		},
		{
			name:    "too-short date string is dropped",
			raw:     RawEvent{Firm: "UBS", Date: "2026-08", PriceTarget: utils.ToPointer(90.0)},
			dropped: true,
		},
		{
			name:    "garbage date is dropped",
			raw:     RawEvent{Firm: "UBS", Date: "yesterdayish", PriceTarget: utils.ToPointer(90.0)},
			dropped: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := normalize([]RawEvent{tt.raw}, testNow)
			if tt.dropped {
				assert.Empty(t, events)
				return
			}
			require.Len(t, events, 1)
			assert.Equal(t, tt.wantAge, events[0].ageDays)
		})
	}
}

func TestNormalize_PreservesInputOrder(t *testing.T) {
	raws := []RawEvent{
		rawEvent("Third", 30, 90),
		rawEvent("First", 1, 100),
		{Firm: "Broken", Date: "??", PriceTarget: utils.ToPointer(50.0)},
		rawEvent("Second", 10, 110),
	}

	events := normalize(raws, testNow)
	require.Len(t, events, 3)
	assert.Equal(t, "Third", events[0].firm)
	assert.Equal(t, "First", events[1].firm)
	assert.Equal(t, "Second", events[2].firm)
}

func TestNormalize_SharedClock(t *testing.T) {
	// The same event list normalized against two different clocks yields
	// different ages; within one call the clock never moves.
	raws := []RawEvent{rawEvent("A", 5, 100)}

	now := normalize(raws, testNow)
	later := normalize(raws, testNow.AddDate(0, 0, 10))

	require.Len(t, now, 1)
	require.Len(t, later, 1)
	assert.Equal(t, 5, now[0].ageDays)
	assert.Equal(t, 15, later[0].ageDays)
	assert.True(t, now[0].date.Equal(later[0].date))
}

func TestEventDate(t *testing.T) {
	want := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	got, ok := eventDate(RawEvent{Date: "2026-08-20"})
	require.True(t, ok)
	assert.True(t, want.Equal(got))

	_, ok = eventDate(RawEvent{Date: ""})
	assert.False(t, ok)
}
