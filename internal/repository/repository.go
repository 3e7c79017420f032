package repository

import (
	"stock-digest/config"
	"stock-digest/pkg/cache"
	"stock-digest/pkg/logger"
)

type Repository struct {
	MarketDataRepo     MarketDataRepository
	AnalystRatingsRepo AnalystRatingsRepository
	CommentaryRepo     CommentaryRepository
	ResearchAIRepo     ResearchAIRepository
}

func NewRepository(cfg *config.Config, log *logger.Logger, inmemoryCache cache.Cache) (*Repository, error) {
	researchAIRepo, err := NewGeminiResearchRepository(cfg, log)
	if err != nil {
		return nil, err
	}

	return &Repository{
		MarketDataRepo:     NewFMPRepository(cfg, log, inmemoryCache),
		AnalystRatingsRepo: NewPolygonRepository(cfg, log),
		CommentaryRepo:     NewPerplexityRepository(cfg, log, inmemoryCache),
		ResearchAIRepo:     researchAIRepo,
	}, nil
}
