package service

import (
	"stock-digest/config"
	"stock-digest/internal/delivery/email"
	"stock-digest/internal/repository"
	"stock-digest/pkg/logger"
	"stock-digest/pkg/mailer"
)

type Service struct {
	DigestService    DigestService
	AlertsService    AlertsService
	ResearchService  ResearchService
	SchedulerService SchedulerService
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	renderer *email.Renderer,
	mail *mailer.Mailer,
) (*Service, error) {
	digestService := NewDigestService(cfg, log, repo.MarketDataRepo, repo.AnalystRatingsRepo, repo.CommentaryRepo, renderer, mail)
	alertsService := NewAlertsService(cfg, log, repo.MarketDataRepo, repo.AnalystRatingsRepo, renderer, mail)
	researchService := NewResearchService(cfg, log, repo.MarketDataRepo, repo.ResearchAIRepo, renderer, mail)

	schedulerService, err := NewSchedulerService(cfg, log, digestService, alertsService)
	if err != nil {
		return nil, err
	}

	return &Service{
		DigestService:    digestService,
		AlertsService:    alertsService,
		ResearchService:  researchService,
		SchedulerService: schedulerService,
	}, nil
}
