package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"stock-digest/config"
	"stock-digest/internal/dto"
	"stock-digest/pkg/cache"
	"stock-digest/pkg/httpclient"
	"stock-digest/pkg/logger"
)

type MarketDataRepository interface {
	GetDailyGainers(ctx context.Context) ([]dto.Gainer, error)
	GetCompanyProfile(ctx context.Context, symbol string) (*dto.CompanyProfile, error)
}

// fmpRepository fetches market data from the Financial Modeling Prep API.
type fmpRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	cache          cache.Cache
	requestLimiter *rate.Limiter
}

// NewFMPRepository creates a new instance of fmpRepository.
func NewFMPRepository(cfg *config.Config, log *logger.Logger, c cache.Cache) MarketDataRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.FMP.MaxRequestPerMin)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	return &fmpRepository{
		httpClient:     httpclient.New(cfg.FMP.BaseURL, cfg.FMP.Timeout, ""),
		cfg:            cfg,
		logger:         log,
		cache:          c,
		requestLimiter: requestLimiter,
	}
}

func (r *fmpRepository) GetDailyGainers(ctx context.Context) ([]dto.Gainer, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	queryParams := map[string]string{
		"apikey": r.cfg.FMP.APIKey,
	}

	var gainers []dto.Gainer
	resp, err := r.httpClient.Get(ctx, "/stock_market/gainers", queryParams, nil, &gainers)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch daily gainers: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.ErrorContext(ctx, "FMP gainers returned non-OK status",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", string(resp.Body)))
		return nil, fmt.Errorf("fmp gainers returned status: %d", resp.StatusCode)
	}

	if apiErr := fmpErrorOf(resp.Body); apiErr != "" {
		return nil, fmt.Errorf("fmp api error: %s", apiErr)
	}

	r.logger.DebugContext(ctx, "fetched daily gainers", logger.IntField("count", len(gainers)))
	return gainers, nil
}

func (r *fmpRepository) GetCompanyProfile(ctx context.Context, symbol string) (*dto.CompanyProfile, error) {
	cacheKey := "fmp:profile:" + symbol
	if profile, found := cache.GetTyped[*dto.CompanyProfile](r.cache, cacheKey); found {
		return profile, nil
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	queryParams := map[string]string{
		"apikey": r.cfg.FMP.APIKey,
	}

	// The profile endpoint wraps a single company in an array.
	var profiles []dto.CompanyProfile
	resp, err := r.httpClient.Get(ctx, "/profile/"+symbol, queryParams, nil, &profiles)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile for %s: %w", symbol, err)
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.ErrorContext(ctx, "FMP profile returned non-OK status",
			logger.StringField("symbol", symbol),
			logger.IntField("status_code", resp.StatusCode))
		return nil, fmt.Errorf("fmp profile returned status: %d", resp.StatusCode)
	}

	if apiErr := fmpErrorOf(resp.Body); apiErr != "" {
		return nil, fmt.Errorf("fmp api error: %s", apiErr)
	}

	if len(profiles) == 0 {
		return nil, fmt.Errorf("no profile found for symbol: %s", symbol)
	}

	profile := &profiles[0]
	r.cache.Set(cacheKey, profile, r.cfg.Cache.DefaultExpiration)
	return profile, nil
}

// fmpErrorOf detects FMP's error envelope, which arrives with a 200 status
// when a key is invalid or rate limited.
func fmpErrorOf(body []byte) string {
	var apiErr dto.FMPErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil {
		return ""
	}
	return apiErr.ErrorMessage
}
