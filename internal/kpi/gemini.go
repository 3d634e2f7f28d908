package kpi

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"

	"google.golang.org/genai"
)

// Generator produces a dashboard for one bot response. Implementations must
// not fail the caller: enrichment degrades to a fallback payload instead.
type Generator interface {
	Generate(ctx context.Context, botResponse string, tableData []map[string]any) *Dashboard
}

// GeminiGenerator calls the Gemini API to turn an ERP response plus table
// rows into the interactive dashboard payload.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("kpi: gemini api key is required")
	}
	if model == "" {
		model = "gemini-1.5-flash-latest"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("kpi: create genai client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

const dashboardPrompt = `You are a Senior Business Intelligence Director with expertise in creating interactive dashboards
for executive decision-making. Your task is to transform ERP data into compelling, actionable
business intelligence with strong focus on trends, patterns, and strategic recommendations.

Create a comprehensive interactive dashboard JSON structure with these sections:
"kpis" (title, value, unit, trend up|down|stable|neutral, category, priority, description,
benchmark, change_percentage), "summary", "recommendations", "alerts" (type, message, metric,
urgency), "charts" (type gauge|bar|line|pie|metric_card|trend_line|comparison_bar, title,
description, data {labels, values, target, trend_data, forecast}, insights),
"trends" (positive_indicators, concern_areas, opportunities) and
"decision_support" (quick_wins, strategic_moves, risk_mitigation).

Always include trend indicators and change percentages, show performance against
benchmarks or targets, include forecasts where possible, and keep all content
boardroom-ready.

Return ONLY valid JSON without any markdown formatting.`

var codeFenceRe = regexp.MustCompile("```json\\s*|\\s*```")

// Generate never returns an error: a failed call or unparseable answer
// degrades to the fixed fallback dashboard.
func (g *GeminiGenerator) Generate(ctx context.Context, botResponse string, tableData []map[string]any) *Dashboard {
	prompt := g.buildPrompt(botResponse, tableData)

	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(prompt), nil)
	if err != nil {
		log.Printf("kpi: gemini call failed: %v", err)
		return fallbackInteractive(tableData)
	}

	text := strings.TrimSpace(codeFenceRe.ReplaceAllString(resp.Text(), ""))

	var d Dashboard
	if err := json.Unmarshal([]byte(text), &d); err != nil {
		log.Printf("kpi: gemini returned unparseable dashboard: %v", err)
		return fallbackInteractive(tableData)
	}

	enhance(&d, tableData)
	return &d
}

func (g *GeminiGenerator) buildPrompt(botResponse string, tableData []map[string]any) string {
	analysis := analyzePatterns(tableData)
	analysisJSON, _ := json.MarshalIndent(analysis, "", "  ")

	sample := tableData
	if len(sample) > 5 {
		sample = sample[:5]
	}
	sampleJSON, _ := json.Marshal(sample)

	var b strings.Builder
	b.WriteString(dashboardPrompt)
	b.WriteString("\n\nBusiness Data to Analyze:\n")
	fmt.Fprintf(&b, "ERP System Response: %s\n\n", botResponse)
	fmt.Fprintf(&b, "Dataset Information:\n- Total Records: %d\n- Data Fields: %v\n- Sample Data: %s\n\n",
		len(tableData), analysis.Fields, sampleJSON)
	fmt.Fprintf(&b, "Data Analysis:\n%s\n", analysisJSON)
	return b.String()
}

// enhance post-fills sections the model left out so the payload always
// honors the full Dashboard contract.
func enhance(d *Dashboard, tableData []map[string]any) {
	if d.Summary == "" {
		d.Summary = "Interactive business intelligence dashboard generated."
	}
	if d.KPIs == nil {
		d.KPIs = []KPI{}
	}
	if d.Recommendations == nil {
		d.Recommendations = []string{}
	}
	if d.Alerts == nil {
		d.Alerts = []Alert{}
	}
	emptyToSlice(&d.Trends.PositiveIndicators)
	emptyToSlice(&d.Trends.ConcernAreas)
	emptyToSlice(&d.Trends.Opportunities)
	emptyToSlice(&d.DecisionSupport.QuickWins)
	emptyToSlice(&d.DecisionSupport.StrategicMoves)
	emptyToSlice(&d.DecisionSupport.RiskMitigation)

	for i := range d.KPIs {
		if d.KPIs[i].Benchmark == "" {
			d.KPIs[i].Benchmark = "Industry Average"
		}
		if d.KPIs[i].ChangePercentage == "" {
			d.KPIs[i].ChangePercentage = "0.0%"
		}
	}

	if len(d.Charts) == 0 {
		d.Charts = defaultCharts(tableData)
	}
	for i := range d.Charts {
		if len(d.Charts[i].Insights) == 0 {
			d.Charts[i].Insights = []string{
				"Shows clear business trend requiring attention",
				"Indicates opportunity for performance improvement",
			}
		}
		if d.Charts[i].Description == "" {
			title := d.Charts[i].Title
			if title == "" {
				title = "business metrics"
			}
			d.Charts[i].Description = fmt.Sprintf("Interactive visualization showing %s trends", title)
		}
	}
}

func emptyToSlice(s *[]string) {
	if *s == nil {
		*s = []string{}
	}
}
