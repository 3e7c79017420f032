package dto

import (
	"encoding/json"
	"strconv"
	"strings"

	"stock-digest/internal/consensus"
)

// NullableFloat decodes a price target that may arrive as a quoted string,
// a bare number, an empty string or null. Anything unparseable stays invalid;
// the consensus normalizer treats that as a missing target.
type NullableFloat struct {
	Value float64
	Valid bool
}

func (f *NullableFloat) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		return nil
	}

	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		value, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f.Value = value
		f.Valid = true
		return nil
	}

	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	f.Value = value
	f.Valid = true
	return nil
}

// Ptr returns the value as an optional, nil when invalid.
func (f NullableFloat) Ptr() *float64 {
	if !f.Valid {
		return nil
	}
	value := f.Value
	return &value
}

// BenzingaRatingsResponse is the envelope of the Polygon Benzinga ratings
// endpoint.
type BenzingaRatingsResponse struct {
	Status  string          `json:"status"`
	NextURL string          `json:"next_url"`
	Results []AnalystRating `json:"results"`
}

// AnalystRating is one rating event as delivered by the feed. Older feed
// versions used different field names for the firm, action and rating, so
// both spellings are decoded and resolved through the accessor methods.
type AnalystRating struct {
	Date                string        `json:"date"`
	Firm                string        `json:"firm"`
	AnalystFirm         string        `json:"analyst_firm"`
	RatingAction        string        `json:"rating_action"`
	Action              string        `json:"action"`
	Rating              string        `json:"rating"`
	RatingCurrent       string        `json:"rating_current"`
	PriceTarget         NullableFloat `json:"price_target"`
	PreviousPriceTarget NullableFloat `json:"previous_price_target"`
}

func (r AnalystRating) FirmName() string {
	if r.Firm != "" {
		return r.Firm
	}
	if r.AnalystFirm != "" {
		return r.AnalystFirm
	}
	return "Unknown"
}

func (r AnalystRating) ActionLabel() string {
	if r.RatingAction != "" {
		return r.RatingAction
	}
	return r.Action
}

func (r AnalystRating) RatingLabel() string {
	if r.Rating != "" {
		return r.Rating
	}
	return r.RatingCurrent
}

// ToRawEvent maps the feed record onto the consensus engine's input form.
func (r AnalystRating) ToRawEvent() consensus.RawEvent {
	return consensus.RawEvent{
		Firm:             r.FirmName(),
		Date:             r.Date,
		PriceTarget:      r.PriceTarget.Ptr(),
		PriorPriceTarget: r.PreviousPriceTarget.Ptr(),
		Rating:           r.RatingLabel(),
		Action:           r.ActionLabel(),
	}
}
