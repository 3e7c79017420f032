package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stock-digest/config"
	"stock-digest/internal/delivery/email"
	"stock-digest/internal/repository"
	"stock-digest/pkg/logger"
	"stock-digest/pkg/mailer"
)

type ResearchService interface {
	Generate(ctx context.Context, symbol, name string) (string, error)
	GenerateAndSend(ctx context.Context, symbol, name string) (string, error)
}

// researchService produces a long-form research brief for a single ticker.
type researchService struct {
	cfg            *config.Config
	log            *logger.Logger
	marketDataRepo repository.MarketDataRepository
	researchRepo   repository.ResearchAIRepository
	renderer       *email.Renderer
	mailer         *mailer.Mailer
}

func NewResearchService(
	cfg *config.Config,
	log *logger.Logger,
	marketDataRepo repository.MarketDataRepository,
	researchRepo repository.ResearchAIRepository,
	renderer *email.Renderer,
	mail *mailer.Mailer,
) ResearchService {
	return &researchService{
		cfg:            cfg,
		log:            log,
		marketDataRepo: marketDataRepo,
		researchRepo:   researchRepo,
		renderer:       renderer,
		mailer:         mail,
	}
}

// Generate resolves the company name when the caller did not supply one,
// then runs the research prompt. The name lookup is best effort; the symbol
// alone still produces a usable brief.
func (s *researchService) Generate(ctx context.Context, symbol, name string) (string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return "", fmt.Errorf("symbol is required")
	}

	if name == "" {
		profile, err := s.marketDataRepo.GetCompanyProfile(ctx, symbol)
		if err != nil {
			s.log.WarnContext(ctx, "could not resolve company name",
				logger.StringField("symbol", symbol), logger.ErrorField(err))
		} else {
			name = profile.CompanyName
		}
	}
	if name == "" {
		name = symbol
	}

	prompt := buildResearchPrompt(symbol, name)
	text, err := s.researchRepo.GenerateResearch(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate research for %s: %w", symbol, err)
	}

	s.log.InfoContext(ctx, "research generated",
		logger.StringField("symbol", symbol),
		logger.IntField("length", len(text)))
	return text, nil
}

// GenerateAndSend runs Generate and mails the report to the configured
// recipient.
func (s *researchService) GenerateAndSend(ctx context.Context, symbol, name string) (string, error) {
	text, err := s.Generate(ctx, symbol, name)
	if err != nil {
		return "", err
	}

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	body, err := s.renderer.RenderResearch(symbol, name, text, time.Now())
	if err != nil {
		return "", err
	}

	subject := s.renderer.ResearchSubject(symbol)
	if err := s.mailer.SendHTML(s.cfg.SMTP.Recipient, subject, body); err != nil {
		return "", fmt.Errorf("failed to send research report: %w", err)
	}

	s.log.InfoContext(ctx, "research report sent",
		logger.StringField("symbol", symbol),
		logger.StringField("subject", subject))
	return text, nil
}

// buildResearchPrompt asks for a report in a fixed layout: fundamentals
// block, competitive sections, then an IRR buildup driven by revenue and
// PS-ratio assumptions.
func buildResearchPrompt(symbol, name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a research report per the below for %s (%s)\n\n", name, symbol)
	b.WriteString("[Company name, [IRR over time horizon]]\n")
	b.WriteString("What they do in 100 words or less\n\n")
	b.WriteString("Market cap:\n")
	b.WriteString("Rev gr cur yr:\n")
	b.WriteString("PS current:\n")
	b.WriteString("Gross margin:\n")
	b.WriteString("Rev gr nxt yr:\n")
	b.WriteString("PS nxt yr:\n")
	b.WriteString("R&D % of rev:\n")
	b.WriteString("Rev gr nxt + 1:\n")
	b.WriteString("PS nxt +1 t:\n\n")
	b.WriteString("Competitive advantage [x/10]\n\n")
	b.WriteString("Competitive landscape\n")
	b.WriteString("[100 words] Describe the market the company operates in, the key competitors, market share split, and competitors' strengths/weaknesses.\n\n")
	b.WriteString("Competitive advantage\n")
	b.WriteString("[200 words] Describe the strength of the company's competitive advantage and why it exists. Do this in a simple way so readers unfamiliar to the industry can understand. Will this competitive advantage naturally grow/compound over time? How hard would it be to replicate what this company has done if you had unlimited funding?\n\n")
	b.WriteString("Market share change\n")
	b.WriteString("[100 words] How do you see the market evolving over the next 5, 10 years? How fast will the market grow, and why will this company take market share, if it will?\n\n")
	b.WriteString("Valuation [expected IRR over xx years]\n\n")
	b.WriteString("IRR buildup\n")
	b.WriteString("[100 words] Provide your IRR buildup, stating the revenue and PS ratio now and the exit revenue and PS ratio at the end of your investment period.\n\n")
	b.WriteString("Revenue change\n")
	b.WriteString("[100 words] What is revenue right now, why is it what it is today, and why do you think revenue will change the way it will over your investment horizon?\n\n")
	b.WriteString("PS ratio change\n")
	b.WriteString("[200 words] What is the PS ratio right now, why is it what it is today, and why do you think the PS ratio will change the way it will over your investment horizon?\n\n")
	b.WriteString("Factors influencing exit PS\n")
	b.WriteString("Growth runway\n")
	b.WriteString("Competitive advantage strength\n")
	b.WriteString("Margin potential\n")
	b.WriteString("Industry growth")
	return b.String()
}
