package repository

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"stock-digest/config"
	"stock-digest/internal/dto"
	"stock-digest/pkg/cache"
	"stock-digest/pkg/httpclient"
	"stock-digest/pkg/logger"
)

type CommentaryRepository interface {
	GetCompanyDescription(ctx context.Context, symbol, name string) (string, error)
	GetGrowthOutlook(ctx context.Context, symbol, name string) (string, error)
}

// perplexityRepository produces one-line company commentary via the
// Perplexity chat completions API. Answers are cached per symbol; in server
// mode consecutive runs often revisit the same tickers.
type perplexityRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	cache          cache.Cache
	requestLimiter *rate.Limiter
}

// NewPerplexityRepository creates a new instance of perplexityRepository.
func NewPerplexityRepository(cfg *config.Config, log *logger.Logger, c cache.Cache) CommentaryRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.Perplexity.MaxRequestPerMin)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	return &perplexityRepository{
		httpClient:     httpclient.New(cfg.Perplexity.BaseURL, cfg.Perplexity.Timeout, cfg.Perplexity.APIKey),
		cfg:            cfg,
		logger:         log,
		cache:          c,
		requestLimiter: requestLimiter,
	}
}

func (r *perplexityRepository) GetCompanyDescription(ctx context.Context, symbol, name string) (string, error) {
	cacheKey := "pplx:description:" + symbol
	if answer, found := cache.GetTyped[string](r.cache, cacheKey); found {
		return answer, nil
	}

	prompt := fmt.Sprintf(
		"In 15 words or less, describe what %s (ticker: %s) does as a business. Be direct and factual, no preamble.",
		name, symbol)

	answer, err := r.complete(ctx, prompt, 30)
	if err != nil {
		return "", err
	}

	// The model occasionally ignores the word limit.
	words := strings.Fields(answer)
	if len(words) > 20 {
		answer = strings.Join(words[:15], " ") + "..."
	}

	r.cache.Set(cacheKey, answer, r.cfg.Cache.DefaultExpiration)
	return answer, nil
}

func (r *perplexityRepository) GetGrowthOutlook(ctx context.Context, symbol, name string) (string, error) {
	cacheKey := "pplx:outlook:" + symbol
	if answer, found := cache.GetTyped[string](r.cache, cacheKey); found {
		return answer, nil
	}

	prompt := fmt.Sprintf(
		"In one short sentence, what is the growth outlook for %s (ticker: %s)? Be direct, no preamble.",
		name, symbol)

	answer, err := r.complete(ctx, prompt, 50)
	if err != nil {
		return "", err
	}

	r.cache.Set(cacheKey, answer, r.cfg.Cache.DefaultExpiration)
	return answer, nil
}

func (r *perplexityRepository) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return "", err
	}

	payload := dto.PerplexityRequest{
		Model: r.cfg.Perplexity.Model,
		Messages: []dto.PerplexityMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: 0.1,
		MaxTokens:   maxTokens,
	}

	var completion dto.PerplexityResponse
	resp, err := r.httpClient.Post(ctx, "/chat/completions", payload, nil, &completion)
	if err != nil {
		return "", fmt.Errorf("failed to call perplexity: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.ErrorContext(ctx, "Perplexity returned non-OK status",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", string(resp.Body)))
		return "", fmt.Errorf("perplexity returned status: %d", resp.StatusCode)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("perplexity returned no choices")
	}

	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}
