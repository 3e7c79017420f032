package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"stock-digest/config"
	"stock-digest/internal/delivery/email"
	"stock-digest/internal/dto"
	"stock-digest/internal/repository"
	"stock-digest/pkg/logger"
	"stock-digest/pkg/mailer"
)

type AlertsService interface {
	Run(ctx context.Context, opt AlertRunOption) error
}

// AlertRunOption controls one alerts run. Force sends the email even when
// nothing changed; DryRun prints the body instead of sending it.
type AlertRunOption struct {
	DryRun bool
	Force  bool
}

// alertsService scans the watchlist for analyst price target moves inside
// the lookback window and mails them grouped by direction.
type alertsService struct {
	cfg            *config.Config
	log            *logger.Logger
	marketDataRepo repository.MarketDataRepository
	ratingsRepo    repository.AnalystRatingsRepository
	renderer       *email.Renderer
	mailer         *mailer.Mailer
}

func NewAlertsService(
	cfg *config.Config,
	log *logger.Logger,
	marketDataRepo repository.MarketDataRepository,
	ratingsRepo repository.AnalystRatingsRepository,
	renderer *email.Renderer,
	mail *mailer.Mailer,
) AlertsService {
	return &alertsService{
		cfg:            cfg,
		log:            log,
		marketDataRepo: marketDataRepo,
		ratingsRepo:    ratingsRepo,
		renderer:       renderer,
		mailer:         mail,
	}
}

func (s *alertsService) Run(ctx context.Context, opt AlertRunOption) error {
	symbols, err := LoadWatchlist(s.cfg.Alerts.WatchlistPath)
	if err != nil {
		return err
	}
	if len(symbols) == 0 {
		s.log.InfoContext(ctx, "watchlist is empty, nothing to scan",
			logger.StringField("path", s.cfg.Alerts.WatchlistPath))
		return nil
	}

	now := time.Now()
	changes := dto.PriceTargetChanges{}

	for _, symbol := range symbols {
		ratings, err := s.ratingsRepo.ListRatings(ctx, symbol)
		if err != nil {
			s.log.WarnContext(ctx, "skipping watchlist symbol",
				logger.StringField("symbol", symbol), logger.ErrorField(err))
			continue
		}

		for _, rating := range ratings {
			change, ok := s.classify(ctx, symbol, rating, now)
			if !ok {
				continue
			}
			switch {
			case change.PriorTarget != nil && change.ChangePct > s.cfg.Alerts.ChangeThreshold:
				changes.Raises = append(changes.Raises, change)
			case change.PriorTarget != nil && change.ChangePct < -s.cfg.Alerts.ChangeThreshold:
				changes.Cuts = append(changes.Cuts, change)
			default:
				// Reiterations and initiations without a prior target.
				changes.Reiterations = append(changes.Reiterations, change)
			}
		}
	}

	sortChanges(&changes)

	if changes.Total() == 0 && !opt.Force {
		s.log.InfoContext(ctx, "no price target changes in window",
			logger.IntField("symbols", len(symbols)),
			logger.StringField("lookback", s.cfg.Alerts.Lookback.String()))
		return nil
	}

	subject := s.renderer.AlertsSubject(changes)
	body, err := s.renderer.RenderAlerts(changes, now)
	if err != nil {
		return err
	}

	if opt.DryRun {
		s.log.InfoContext(ctx, "dry run, skipping email",
			logger.StringField("subject", subject),
			logger.IntField("total_changes", changes.Total()))
		fmt.Println(body)
		return nil
	}

	if err := s.mailer.SendHTML(s.cfg.SMTP.Recipient, subject, body); err != nil {
		return fmt.Errorf("failed to send alerts: %w", err)
	}

	s.log.InfoContext(ctx, "alerts sent",
		logger.StringField("subject", subject),
		logger.IntField("total_changes", changes.Total()))
	return nil
}

// classify decides whether a rating event belongs in the alert window and
// computes its derived fields. ok is false for events that are too old or
// carry no usable price target.
func (s *alertsService) classify(ctx context.Context, symbol string, rating dto.AnalystRating, now time.Time) (dto.PriceTargetChange, bool) {
	target := rating.PriceTarget.Ptr()
	if target == nil || *target <= 0 {
		return dto.PriceTargetChange{}, false
	}

	eventTime, ok := parseRatingDate(rating.Date)
	if !ok {
		return dto.PriceTargetChange{}, false
	}

	// The feed dates events by calendar day, so the cutoff is a day too.
	cutoff := now.Add(-s.cfg.Alerts.Lookback)
	cutoffDay := time.Date(cutoff.Year(), cutoff.Month(), cutoff.Day(), 0, 0, 0, 0, time.UTC)
	if eventTime.Before(cutoffDay) {
		return dto.PriceTargetChange{}, false
	}

	change := dto.PriceTargetChange{
		Ticker:    symbol,
		Firm:      rating.FirmName(),
		Action:    rating.ActionLabel(),
		Rating:    rating.RatingLabel(),
		Date:      eventTime,
		NewTarget: *target,
	}

	if prior := rating.PreviousPriceTarget.Ptr(); prior != nil && *prior > 0 {
		change.PriorTarget = prior
		change.ChangePct = (*target/(*prior) - 1) * 100
	}

	if profile, err := s.marketDataRepo.GetCompanyProfile(ctx, symbol); err == nil {
		change.CompanyName = profile.CompanyName
		if profile.Price > 0 {
			price := profile.Price
			upside := (*target/price - 1) * 100
			change.CurrentPrice = &price
			change.UpsidePct = &upside
		}
	}

	return change, true
}

// sortChanges puts the biggest raises first, the deepest cuts first and
// orders reiterations alphabetically.
func sortChanges(changes *dto.PriceTargetChanges) {
	sort.SliceStable(changes.Raises, func(i, j int) bool {
		return changes.Raises[i].ChangePct > changes.Raises[j].ChangePct
	})
	sort.SliceStable(changes.Cuts, func(i, j int) bool {
		return changes.Cuts[i].ChangePct < changes.Cuts[j].ChangePct
	})
	sort.SliceStable(changes.Reiterations, func(i, j int) bool {
		return changes.Reiterations[i].Ticker < changes.Reiterations[j].Ticker
	})
}

// parseRatingDate accepts the feed's date or datetime spellings.
func parseRatingDate(raw string) (time.Time, bool) {
	if len(raw) < 10 {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", raw[:10])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
