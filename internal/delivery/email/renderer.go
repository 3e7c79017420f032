package email

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"stock-digest/internal/consensus"
	"stock-digest/internal/dto"
	"stock-digest/pkg/utils"
)

// Renderer turns digest and alert payloads into the HTML email bodies.
// Missing values render as "N/A" rather than being dropped, so every card
// keeps the same shape.
type Renderer struct {
	digest   *template.Template
	alerts   *template.Template
	research *template.Template
}

func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{
		"money":     func(v float64) string { return fmt.Sprintf("$%.2f", v) },
		"pct":       utils.FormatPercentage,
		"mcap":      utils.FormatMarketCap,
		"orNA":      orNA,
		"snapshot":  snapshotLabel,
		"trend":     trendLabel,
		"fromPrior": fromPrior,
		"deref":     func(p *float64) float64 { return *p },
	}

	digest, err := template.New("digest").Funcs(funcs).Parse(digestTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse digest template: %w", err)
	}

	alerts, err := template.New("alerts").Funcs(funcs).Parse(alertsTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse alerts template: %w", err)
	}

	research, err := template.New("research").Funcs(funcs).Parse(researchTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse research template: %w", err)
	}

	return &Renderer{digest: digest, alerts: alerts, research: research}, nil
}

// DigestSubject builds the digest subject line. minGain is the configured
// gain threshold the cards already passed.
func (r *Renderer) DigestSubject(cardCount int, minGain float64) string {
	if cardCount == 0 {
		return "Stock Alert: No significant gainers today"
	}
	return fmt.Sprintf("Stock Alert: %d stocks gained %.0f%%+ today", cardCount, minGain)
}

func (r *Renderer) AlertsSubject(changes dto.PriceTargetChanges) string {
	return fmt.Sprintf("Price Target Alert: %d raises, %d cuts, %d reiterations",
		len(changes.Raises), len(changes.Cuts), len(changes.Reiterations))
}

type digestData struct {
	GeneratedAt time.Time
	MinGain     float64
	Cards       []dto.StockCard
}

func (r *Renderer) RenderDigest(cards []dto.StockCard, minGain float64, generatedAt time.Time) (string, error) {
	var buf bytes.Buffer
	data := digestData{GeneratedAt: generatedAt, MinGain: minGain, Cards: cards}
	if err := r.digest.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render digest email: %w", err)
	}
	return buf.String(), nil
}

type alertsData struct {
	GeneratedAt time.Time
	Changes     dto.PriceTargetChanges
}

func (r *Renderer) RenderAlerts(changes dto.PriceTargetChanges, generatedAt time.Time) (string, error) {
	var buf bytes.Buffer
	data := alertsData{GeneratedAt: generatedAt, Changes: changes}
	if err := r.alerts.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render alerts email: %w", err)
	}
	return buf.String(), nil
}

func (r *Renderer) ResearchSubject(symbol string) string {
	return fmt.Sprintf("Deep Research Report: %s", symbol)
}

type researchData struct {
	Symbol      string
	Name        string
	Content     string
	GeneratedAt time.Time
}

// RenderResearch wraps a plain-text research report in the email shell. The
// content keeps its line breaks via pre-wrap; template escaping handles the
// rest.
func (r *Renderer) RenderResearch(symbol, name, content string, generatedAt time.Time) (string, error) {
	var buf bytes.Buffer
	data := researchData{Symbol: symbol, Name: name, Content: content, GeneratedAt: generatedAt}
	if err := r.research.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render research email: %w", err)
	}
	return buf.String(), nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func snapshotLabel(s consensus.Snapshot) string {
	if s.Price == nil {
		return "N/A"
	}
	return fmt.Sprintf("$%.2f (%d)", *s.Price, s.FirmCount)
}

func trendLabel(t *consensus.Trend) string {
	if t == nil {
		return "N/A"
	}
	switch t.Direction {
	case consensus.TrendUp:
		return fmt.Sprintf("↑ %.1f%%", t.Percent)
	case consensus.TrendDown:
		return fmt.Sprintf("↓ %.1f%%", t.Percent)
	default:
		return "→ Unchanged"
	}
}

func fromPrior(prior *float64) string {
	if prior == nil {
		return ""
	}
	return fmt.Sprintf(" (from $%.2f)", *prior)
}

const digestTemplate = `<html>
<body style="font-family:Arial,Helvetica,sans-serif;color:#222;max-width:720px;margin:0 auto;">
<h2 style="margin-bottom:4px;">Daily Gainers Digest</h2>
<p style="color:#666;margin-top:0;">{{ .GeneratedAt.Format "Monday, Jan 02, 2006" }}</p>
{{ if not .Cards }}
<p>No stocks passed the {{ printf "%.0f" .MinGain }}%+ gain and market cap filters today.</p>
{{ end }}
{{ range .Cards }}
<div style="border:1px solid #ddd;border-radius:6px;padding:16px;margin-bottom:20px;">
	<h3 style="margin:0;">{{ .Symbol }} &mdash; {{ .Name }} <span style="color:#0a8a0a;">{{ pct .ChangePercent }}</span></h3>
	<p style="margin:4px 0;color:#666;">{{ money .Price }} &middot; {{ mcap .MarketCap }}{{ if .Industry }} &middot; {{ .Industry }}{{ end }}</p>
	{{ if .Description }}<p style="margin:8px 0;">{{ .Description }}</p>{{ end }}
	{{ if .GrowthOutlook }}<p style="margin:8px 0;"><b>Outlook:</b> {{ .GrowthOutlook }}</p>{{ end }}
	{{ with .Consensus }}
	<table style="border-collapse:collapse;width:100%;margin-top:8px;" border="0">
		<tr style="background:#f5f5f5;">
			<th style="text-align:left;padding:6px;">PT Now</th>
			<th style="text-align:left;padding:6px;">7d Ago</th>
			<th style="text-align:left;padding:6px;">30d Ago</th>
			<th style="text-align:left;padding:6px;">90d Ago</th>
		</tr>
		<tr>
			<td style="padding:6px;">{{ snapshot .Current }}</td>
			<td style="padding:6px;">{{ snapshot .WeekAgo }}</td>
			<td style="padding:6px;">{{ snapshot .MonthAgo }}</td>
			<td style="padding:6px;">{{ snapshot .QuarterAgo }}</td>
		</tr>
	</table>
	<p style="margin:8px 0;color:#444;">7d trend: {{ trend .Trend7d }} &middot; 30d trend: {{ trend .Trend30d }}</p>
	{{ if .RecentActions }}
	<table style="border-collapse:collapse;width:100%;font-size:13px;">
		<tr style="background:#f5f5f5;">
			<th style="text-align:left;padding:4px;">Date</th>
			<th style="text-align:left;padding:4px;">Firm</th>
			<th style="text-align:left;padding:4px;">Action</th>
			<th style="text-align:left;padding:4px;">Rating</th>
			<th style="text-align:left;padding:4px;">Target</th>
		</tr>
		{{ range .RecentActions }}
		<tr>
			<td style="padding:4px;">{{ .DateShort }}</td>
			<td style="padding:4px;">{{ .Firm }}</td>
			<td style="padding:4px;">{{ .Action }}</td>
			<td style="padding:4px;">{{ orNA .Rating }}</td>
			<td style="padding:4px;">{{ money .Target }}{{ fromPrior .PriorTarget }}</td>
		</tr>
		{{ end }}
	</table>
	{{ end }}
	{{ end }}
</div>
{{ end }}
</body>
</html>
`

const alertsTemplate = `<html>
<body style="font-family:Arial,Helvetica,sans-serif;color:#222;max-width:720px;margin:0 auto;">
<h2 style="margin-bottom:4px;">Price Target Changes</h2>
<p style="color:#666;margin-top:0;">{{ .GeneratedAt.Format "Monday, Jan 02, 2006" }}</p>
{{ if eq .Changes.Total 0 }}
<p>No price target changes for your watchlist in the last 24 hours.</p>
{{ end }}
{{ with .Changes.Raises }}
<h3 style="color:#0a8a0a;">Raises</h3>
{{ template "changeTable" . }}
{{ end }}
{{ with .Changes.Cuts }}
<h3 style="color:#c0392b;">Cuts</h3>
{{ template "changeTable" . }}
{{ end }}
{{ with .Changes.Reiterations }}
<h3 style="color:#555;">Reiterations &amp; New Coverage</h3>
{{ template "changeTable" . }}
{{ end }}
</body>
</html>
{{ define "changeTable" }}
<table style="border-collapse:collapse;width:100%;font-size:13px;margin-bottom:16px;">
	<tr style="background:#f5f5f5;">
		<th style="text-align:left;padding:4px;">Ticker</th>
		<th style="text-align:left;padding:4px;">Firm</th>
		<th style="text-align:left;padding:4px;">Rating</th>
		<th style="text-align:left;padding:4px;">Target</th>
		<th style="text-align:left;padding:4px;">Change</th>
		<th style="text-align:left;padding:4px;">Upside</th>
	</tr>
	{{ range . }}
	<tr>
		<td style="padding:4px;"><b>{{ .Ticker }}</b>{{ if .CompanyName }} ({{ .CompanyName }}){{ end }}</td>
		<td style="padding:4px;">{{ orNA .Firm }}</td>
		<td style="padding:4px;">{{ orNA .Rating }}</td>
		<td style="padding:4px;">{{ money .NewTarget }}{{ fromPrior .PriorTarget }}</td>
		<td style="padding:4px;">{{ pct .ChangePct }}</td>
		<td style="padding:4px;">{{ if .UpsidePct }}{{ pct (deref .UpsidePct) }}{{ else }}N/A{{ end }}</td>
	</tr>
	{{ end }}
</table>
{{ end }}
`

const researchTemplate = `<html>
<body style="font-family:Arial,Helvetica,sans-serif;color:#222;max-width:800px;margin:0 auto;">
<h1 style="text-align:center;margin-bottom:4px;">Deep Research Report</h1>
<h2 style="text-align:center;color:#666;margin-top:0;font-weight:500;">{{ .Name }} ({{ .Symbol }})</h2>
<div style="background:#f5f5f5;border-radius:16px;padding:30px;">
	<div style="white-space:pre-wrap;font-size:15px;line-height:1.6;">{{ .Content }}</div>
</div>
<p style="color:#999;font-size:14px;text-align:center;margin-top:40px;">Generated on {{ .GeneratedAt.Format "January 02, 2006 at 3:04 PM" }}</p>
</body>
</html>
`
