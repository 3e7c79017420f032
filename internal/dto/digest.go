package dto

import (
	"time"

	"stock-digest/internal/consensus"
)

// StockCard is one fully-enriched gainer ready for rendering.
type StockCard struct {
	Symbol        string
	Name          string
	ChangePercent float64
	Price         float64
	MarketCap     float64
	Industry      string

	Description   string
	GrowthOutlook string

	Consensus *consensus.Report
}

// PriceTargetChange is one analyst target move inside the alert lookback
// window.
type PriceTargetChange struct {
	Ticker       string
	CompanyName  string
	Firm         string
	Action       string
	Rating       string
	Date         time.Time
	NewTarget    float64
	PriorTarget  *float64
	ChangePct    float64
	CurrentPrice *float64
	UpsidePct    *float64
}

// PriceTargetChanges groups the day's moves for the alert email.
type PriceTargetChanges struct {
	Raises       []PriceTargetChange
	Cuts         []PriceTargetChange
	Reiterations []PriceTargetChange
}

func (c PriceTargetChanges) Total() int {
	return len(c.Raises) + len(c.Cuts) + len(c.Reiterations)
}
