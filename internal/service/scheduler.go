package service

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"stock-digest/config"
	"stock-digest/pkg/logger"
)

type SchedulerService interface {
	Start()
	Stop() context.Context
}

// schedulerService drives the digest and alert pipelines on cron schedules.
// Either schedule may be left empty to disable that pipeline.
type schedulerService struct {
	cfg    *config.Config
	log    *logger.Logger
	cron   *cron.Cron
	digest DigestService
	alerts AlertsService
}

func NewSchedulerService(
	cfg *config.Config,
	log *logger.Logger,
	digest DigestService,
	alerts AlertsService,
) (SchedulerService, error) {
	s := &schedulerService{
		cfg:    cfg,
		log:    log,
		cron:   cron.New(),
		digest: digest,
		alerts: alerts,
	}

	if expr := cfg.Scheduler.DigestCron; expr != "" {
		if _, err := s.cron.AddFunc(expr, func() {
			s.runJob("digest", s.digest.Run)
		}); err != nil {
			return nil, fmt.Errorf("invalid digest cron %q: %w", expr, err)
		}
	}

	if expr := cfg.Scheduler.AlertsCron; expr != "" {
		if _, err := s.cron.AddFunc(expr, func() {
			s.runJob("alerts", func(ctx context.Context) error {
				return s.alerts.Run(ctx, AlertRunOption{})
			})
		}); err != nil {
			return nil, fmt.Errorf("invalid alerts cron %q: %w", expr, err)
		}
	}

	return s, nil
}

func (s *schedulerService) Start() {
	s.log.Info("scheduler started",
		logger.StringField("digest_cron", s.cfg.Scheduler.DigestCron),
		logger.StringField("alerts_cron", s.cfg.Scheduler.AlertsCron),
	)
	s.cron.Start()
}

// Stop halts scheduling and returns a context that is done once in-flight
// jobs have finished.
func (s *schedulerService) Stop() context.Context {
	return s.cron.Stop()
}

func (s *schedulerService) runJob(name string, run func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Scheduler.TimeoutDuration)
	defer cancel()

	log := s.log.With(logger.StringField("job", name))
	ctx = logger.NewContext(ctx, log)

	log.InfoContext(ctx, "job started")
	if err := run(ctx); err != nil {
		log.ErrorContext(ctx, "job failed", logger.ErrorField(err))
		return
	}
	log.InfoContext(ctx, "job finished")
}
