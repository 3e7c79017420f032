package dto

import (
	"encoding/json"
	"strconv"
	"strings"
)

// FlexPercent tolerates the gainers feed flip-flopping between "12.34%",
// "12.34" and 12.34 for the same field.
type FlexPercent float64

func (p *FlexPercent) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*p = 0
		return nil
	}

	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
		if s == "" {
			*p = 0
			return nil
		}
		value, err := strconv.ParseFloat(s, 64)
		if err != nil {
			// Expected feed noise, same policy as unparseable rating events.
			*p = 0
			return nil
		}
		*p = FlexPercent(value)
		return nil
	}

	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*p = FlexPercent(value)
	return nil
}

func (p FlexPercent) Float64() float64 {
	return float64(p)
}

// Gainer is one row of the FMP daily gainers feed.
type Gainer struct {
	Symbol            string      `json:"symbol"`
	Name              string      `json:"name"`
	Price             float64     `json:"price"`
	Change            float64     `json:"change"`
	ChangesPercentage FlexPercent `json:"changesPercentage"`
}

// CompanyProfile is the subset of the FMP profile endpoint the pipeline uses.
type CompanyProfile struct {
	Symbol      string  `json:"symbol"`
	CompanyName string  `json:"companyName"`
	Price       float64 `json:"price"`
	MarketCap   float64 `json:"mktCap"`
	Industry    string  `json:"industry"`
	Sector      string  `json:"sector"`
	Description string  `json:"description"`
}

// FMPErrorResponse is the error envelope FMP returns with a 200 status.
type FMPErrorResponse struct {
	ErrorMessage string `json:"Error Message"`
}
