package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-digest/config"
	"stock-digest/internal/dto"
	"stock-digest/pkg/logger"
	"stock-digest/pkg/utils"
)

// fakeMarketData serves canned profiles without touching the network.
type fakeMarketData struct {
	profiles map[string]*dto.CompanyProfile
}

func (f *fakeMarketData) GetDailyGainers(ctx context.Context) ([]dto.Gainer, error) {
	return nil, nil
}

func (f *fakeMarketData) GetCompanyProfile(ctx context.Context, symbol string) (*dto.CompanyProfile, error) {
	if p, ok := f.profiles[symbol]; ok {
		return p, nil
	}
	return nil, assert.AnError
}

func newTestAlertsService(t *testing.T, profiles map[string]*dto.CompanyProfile) *alertsService {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Alerts.Lookback = 24 * time.Hour
	cfg.Alerts.ChangeThreshold = 0.1

	return &alertsService{
		cfg:            cfg,
		log:            log,
		marketDataRepo: &fakeMarketData{profiles: profiles},
	}
}

func ratingAt(date string, target, prior *float64) dto.AnalystRating {
	r := dto.AnalystRating{Date: date, Firm: "Citi", RatingAction: "Maintains", Rating: "Buy"}
	if target != nil {
		r.PriceTarget = dto.NullableFloat{Value: *target, Valid: true}
	}
	if prior != nil {
		r.PreviousPriceTarget = dto.NullableFloat{Value: *prior, Valid: true}
	}
	return r
}

func TestAlertsService_Classify(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	today := "2026-08-26"

	tests := []struct {
		name          string
		rating        dto.AnalystRating
		wantOK        bool
		wantChangePct float64
		wantPrior     bool
	}{
		{
			name:          "raise inside window",
			rating:        ratingAt(today, utils.ToPointer(120.0), utils.ToPointer(100.0)),
			wantOK:        true,
			wantChangePct: 20,
			wantPrior:     true,
		},
		{
			name:          "cut inside window",
			rating:        ratingAt(today, utils.ToPointer(80.0), utils.ToPointer(100.0)),
			wantOK:        true,
			wantChangePct: -20,
			wantPrior:     true,
		},
		{
			name:   "new coverage without prior",
			rating: ratingAt(today, utils.ToPointer(50.0), nil),
			wantOK: true,
		},
		{
			name:   "outside window",
			rating: ratingAt("2026-08-20", utils.ToPointer(120.0), utils.ToPointer(100.0)),
		},
		{
			name:   "no target",
			rating: ratingAt(today, nil, utils.ToPointer(100.0)),
		},
		{
			name:   "unparseable date",
			rating: ratingAt("soon", utils.ToPointer(120.0), nil),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestAlertsService(t, nil)
			change, ok := s.classify(context.Background(), "ACME", tt.rating, now)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.InDelta(t, tt.wantChangePct, change.ChangePct, 1e-9)
			if tt.wantPrior {
				assert.NotNil(t, change.PriorTarget)
			} else {
				assert.Nil(t, change.PriorTarget)
			}
		})
	}
}

func TestAlertsService_Classify_YesterdayStillCounts(t *testing.T) {
	// The feed dates events by calendar day; an event from yesterday stays
	// inside a 24h lookback regardless of the hour it was published.
	now := time.Date(2026, 8, 26, 23, 0, 0, 0, time.UTC)
	s := newTestAlertsService(t, nil)

	change, ok := s.classify(context.Background(), "ACME",
		ratingAt("2026-08-25", utils.ToPointer(120.0), utils.ToPointer(100.0)), now)
	require.True(t, ok)
	assert.Equal(t, 120.0, change.NewTarget)
}

func TestAlertsService_Classify_Upside(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	profiles := map[string]*dto.CompanyProfile{
		"ACME": {Symbol: "ACME", CompanyName: "Acme Corp", Price: 96},
	}
	s := newTestAlertsService(t, profiles)

	change, ok := s.classify(context.Background(), "ACME",
		ratingAt("2026-08-26", utils.ToPointer(120.0), nil), now)
	require.True(t, ok)
	assert.Equal(t, "Acme Corp", change.CompanyName)
	require.NotNil(t, change.UpsidePct)
	assert.InDelta(t, 25.0, *change.UpsidePct, 1e-9)
}

func TestAlertsService_Classify_TinyMoveIsReiteration(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	s := newTestAlertsService(t, nil)

	// 0.05% move sits inside the ±0.1% threshold.
	change, ok := s.classify(context.Background(), "ACME",
		ratingAt("2026-08-26", utils.ToPointer(100.05), utils.ToPointer(100.0)), now)
	require.True(t, ok)
	assert.NotNil(t, change.PriorTarget)
	assert.Less(t, change.ChangePct, s.cfg.Alerts.ChangeThreshold)
}

func TestSortChanges(t *testing.T) {
	changes := dto.PriceTargetChanges{
		Raises: []dto.PriceTargetChange{
			{Ticker: "A", ChangePct: 5},
			{Ticker: "B", ChangePct: 25},
			{Ticker: "C", ChangePct: 10},
		},
		Cuts: []dto.PriceTargetChange{
			{Ticker: "D", ChangePct: -5},
			{Ticker: "E", ChangePct: -30},
		},
		Reiterations: []dto.PriceTargetChange{
			{Ticker: "ZZZ"},
			{Ticker: "AAA"},
		},
	}

	sortChanges(&changes)

	assert.Equal(t, []float64{25, 10, 5}, []float64{changes.Raises[0].ChangePct, changes.Raises[1].ChangePct, changes.Raises[2].ChangePct})
	assert.Equal(t, "E", changes.Cuts[0].Ticker)
	assert.Equal(t, "AAA", changes.Reiterations[0].Ticker)
}
