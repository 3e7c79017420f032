package cmd

import (
	"context"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"stock-digest/config"
	"stock-digest/internal/delivery/email"
	"stock-digest/internal/repository"
	"stock-digest/internal/service"
	"stock-digest/pkg/cache"
	"stock-digest/pkg/logger"
	"stock-digest/pkg/mailer"
)

type AppDependency struct {
	cfg       *config.Config
	log       *logger.Logger
	validator *goValidator.Validate
	echo      *echo.Echo
	cache     cache.Cache
	mailer    *mailer.Mailer
	renderer  *email.Renderer
}

func NewAppDependency(ctx context.Context) (*AppDependency, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return nil, err
	}

	renderer, err := email.NewRenderer()
	if err != nil {
		return nil, err
	}

	return &AppDependency{
		cfg:       cfg,
		log:       log,
		validator: goValidator.New(),
		echo:      echo.New(),
		cache:     cache.NewCache(cfg.Cache.DefaultExpiration, cfg.Cache.CleanupInterval),
		mailer:    mailer.New(cfg.SMTP.Server, cfg.SMTP.Port, cfg.SMTP.Sender, cfg.SMTP.Password),
		renderer:  renderer,
	}, nil
}

// NewServices wires the repository and service layers on top of the shared
// dependencies.
func (d *AppDependency) NewServices() (*service.Service, error) {
	repo, err := repository.NewRepository(d.cfg, d.log, d.cache)
	if err != nil {
		return nil, err
	}
	return service.NewService(d.cfg, d.log, repo, d.renderer, d.mailer)
}

func (d *AppDependency) Close() error {
	d.log.Info("Closing app dependency")
	return d.log.Sync()
}
