package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"stock-digest/config"
	"stock-digest/internal/consensus"
	"stock-digest/internal/delivery/email"
	"stock-digest/internal/dto"
	"stock-digest/internal/repository"
	"stock-digest/pkg/logger"
	"stock-digest/pkg/mailer"
)

type DigestService interface {
	Run(ctx context.Context) error
}

// digestService builds and sends the daily top-gainers email.
type digestService struct {
	cfg            *config.Config
	log            *logger.Logger
	marketDataRepo repository.MarketDataRepository
	ratingsRepo    repository.AnalystRatingsRepository
	commentaryRepo repository.CommentaryRepository
	renderer       *email.Renderer
	mailer         *mailer.Mailer
}

func NewDigestService(
	cfg *config.Config,
	log *logger.Logger,
	marketDataRepo repository.MarketDataRepository,
	ratingsRepo repository.AnalystRatingsRepository,
	commentaryRepo repository.CommentaryRepository,
	renderer *email.Renderer,
	mail *mailer.Mailer,
) DigestService {
	return &digestService{
		cfg:            cfg,
		log:            log,
		marketDataRepo: marketDataRepo,
		ratingsRepo:    ratingsRepo,
		commentaryRepo: commentaryRepo,
		renderer:       renderer,
		mailer:         mail,
	}
}

func (s *digestService) Run(ctx context.Context) error {
	now := time.Now()

	gainers, err := s.marketDataRepo.GetDailyGainers(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch gainers: %w", err)
	}

	candidates := filterGainers(gainers, s.cfg.Digest.MinGainPercent)
	s.log.InfoContext(ctx, "gainers filtered",
		logger.IntField("raw", len(gainers)),
		logger.IntField("candidates", len(candidates)),
		logger.Float64Field("min_gain_percent", s.cfg.Digest.MinGainPercent),
	)

	cards := s.selectAndEnrich(ctx, candidates, now)

	// An empty digest is still delivered so a quiet day is distinguishable
	// from a broken pipeline.
	body, err := s.renderer.RenderDigest(cards, s.cfg.Digest.MinGainPercent, now)
	if err != nil {
		return err
	}

	subject := s.renderer.DigestSubject(len(cards), s.cfg.Digest.MinGainPercent)
	if err := s.mailer.SendHTML(s.cfg.SMTP.Recipient, subject, body); err != nil {
		return fmt.Errorf("failed to send digest: %w", err)
	}

	s.log.InfoContext(ctx, "digest sent",
		logger.StringField("subject", subject),
		logger.IntField("cards", len(cards)),
	)
	return nil
}

// filterGainers keeps entries at or above the gain threshold, sorted by gain
// descending.
func filterGainers(gainers []dto.Gainer, minGain float64) []dto.Gainer {
	var out []dto.Gainer
	for _, g := range gainers {
		if g.ChangesPercentage.Float64() >= minGain {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ChangesPercentage.Float64() > out[j].ChangesPercentage.Float64()
	})
	return out
}

// selectAndEnrich applies the market cap filter, then fills each surviving
// card with commentary and a consensus report. Enrichment failures degrade a
// single card, never the whole digest.
func (s *digestService) selectAndEnrich(ctx context.Context, candidates []dto.Gainer, now time.Time) []dto.StockCard {
	var cards []dto.StockCard
	for _, g := range candidates {
		profile, err := s.marketDataRepo.GetCompanyProfile(ctx, g.Symbol)
		if err != nil {
			s.log.WarnContext(ctx, "skipping gainer without profile",
				logger.StringField("symbol", g.Symbol),
				logger.ErrorField(err))
			continue
		}
		if profile.MarketCap < s.cfg.Digest.MinMarketCap {
			s.log.DebugContext(ctx, "skipping gainer below market cap floor",
				logger.StringField("symbol", g.Symbol),
				logger.Float64Field("market_cap", profile.MarketCap))
			continue
		}

		card := dto.StockCard{
			Symbol:        g.Symbol,
			Name:          profile.CompanyName,
			ChangePercent: g.ChangesPercentage.Float64(),
			Price:         g.Price,
			MarketCap:     profile.MarketCap,
			Industry:      profile.Industry,
		}
		if card.Name == "" {
			card.Name = g.Name
		}
		cards = append(cards, card)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Digest.MaxConcurrency)
	for i := range cards {
		g.Go(func() error {
			s.enrichCard(gctx, &cards[i], now)
			return nil
		})
	}
	_ = g.Wait()

	return cards
}

func (s *digestService) enrichCard(ctx context.Context, card *dto.StockCard, now time.Time) {
	description, err := s.commentaryRepo.GetCompanyDescription(ctx, card.Symbol, card.Name)
	if err != nil {
		s.log.WarnContext(ctx, "description unavailable",
			logger.StringField("symbol", card.Symbol), logger.ErrorField(err))
	} else {
		card.Description = description
	}

	outlook, err := s.commentaryRepo.GetGrowthOutlook(ctx, card.Symbol, card.Name)
	if err != nil {
		s.log.WarnContext(ctx, "growth outlook unavailable",
			logger.StringField("symbol", card.Symbol), logger.ErrorField(err))
	} else {
		card.GrowthOutlook = outlook
	}

	report, err := s.buildConsensus(ctx, card.Symbol, now)
	if err != nil {
		s.log.WarnContext(ctx, "consensus unavailable",
			logger.StringField("symbol", card.Symbol), logger.ErrorField(err))
		return
	}
	card.Consensus = report
}

func (s *digestService) buildConsensus(ctx context.Context, ticker string, now time.Time) (*consensus.Report, error) {
	ratings, err := s.ratingsRepo.ListRatings(ctx, ticker)
	if err != nil {
		return nil, err
	}

	raws := make([]consensus.RawEvent, 0, len(ratings))
	for _, rating := range ratings {
		raws = append(raws, rating.ToRawEvent())
	}

	report := consensus.BuildReport(ticker, raws, now)
	return &report, nil
}
