package repository

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"stock-digest/config"
	"stock-digest/internal/dto"
	"stock-digest/pkg/httpclient"
	"stock-digest/pkg/logger"
)

type AnalystRatingsRepository interface {
	ListRatings(ctx context.Context, ticker string) ([]dto.AnalystRating, error)
}

// polygonRepository fetches Benzinga analyst ratings through the Polygon API.
type polygonRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

// NewPolygonRepository creates a new instance of polygonRepository.
func NewPolygonRepository(cfg *config.Config, log *logger.Logger) AnalystRatingsRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.Polygon.MaxRequestPerMin)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	return &polygonRepository{
		httpClient:     httpclient.New(cfg.Polygon.BaseURL, cfg.Polygon.Timeout, ""),
		cfg:            cfg,
		logger:         log,
		requestLimiter: requestLimiter,
	}
}

// ListRatings returns the most recent rating events for ticker, newest first.
func (r *polygonRepository) ListRatings(ctx context.Context, ticker string) ([]dto.AnalystRating, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	queryParams := map[string]string{
		"ticker": ticker,
		"limit":  strconv.Itoa(r.cfg.Polygon.RatingsLimit),
		"sort":   "date.desc",
		"apiKey": r.cfg.Polygon.APIKey,
	}

	var ratingsResp dto.BenzingaRatingsResponse
	resp, err := r.httpClient.Get(ctx, "/benzinga/v1/ratings", queryParams, nil, &ratingsResp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ratings for %s: %w", ticker, err)
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.ErrorContext(ctx, "Polygon ratings returned non-OK status",
			logger.StringField("ticker", ticker),
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", string(resp.Body)))
		return nil, fmt.Errorf("polygon ratings returned status: %d", resp.StatusCode)
	}

	r.logger.DebugContext(ctx, "fetched analyst ratings",
		logger.StringField("ticker", ticker),
		logger.IntField("count", len(ratingsResp.Results)))
	return ratingsResp.Results, nil
}
