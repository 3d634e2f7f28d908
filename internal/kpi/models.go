package kpi

import "time"

// Dashboard is the fixed contract for the interactive KPI payload rendered
// by the visual chat page. All sections are always present in the output,
// even when the generator returns a sparse document.
type Dashboard struct {
	KPIs            []KPI           `json:"kpis"`
	Summary         string          `json:"summary"`
	Recommendations []string        `json:"recommendations"`
	Alerts          []Alert         `json:"alerts"`
	Charts          []Chart         `json:"charts"`
	Trends          Trends          `json:"trends"`
	DecisionSupport DecisionSupport `json:"decision_support"`
}

type KPI struct {
	Title            string `json:"title"`
	Value            string `json:"value"`
	Unit             string `json:"unit"`
	Trend            string `json:"trend"`    // up|down|stable|neutral
	Category         string `json:"category"` // inventory|financial|operational|quality|supplier|performance
	Priority         string `json:"priority"` // high|medium|low|critical
	Description      string `json:"description"`
	Benchmark        string `json:"benchmark"`
	ChangePercentage string `json:"change_percentage"`
}

type Alert struct {
	Type    string `json:"type"` // critical|warning|info|opportunity
	Message string `json:"message"`
	Metric  string `json:"metric"`
	Urgency string `json:"urgency"` // immediate|short_term|long_term
}

type Chart struct {
	Type        string    `json:"type"` // gauge|bar|line|pie|metric_card|trend_line|comparison_bar
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Data        ChartData `json:"data"`
	Insights    []string  `json:"insights"`
}

type ChartData struct {
	Labels    []string  `json:"labels"`
	Values    []float64 `json:"values"`
	Target    any       `json:"target,omitempty"`
	TrendData []float64 `json:"trend_data,omitempty"`
	Forecast  []float64 `json:"forecast,omitempty"`
}

type Trends struct {
	PositiveIndicators []string `json:"positive_indicators"`
	ConcernAreas       []string `json:"concern_areas"`
	Opportunities      []string `json:"opportunities"`
}

type DecisionSupport struct {
	QuickWins      []string `json:"quick_wins"`
	StrategicMoves []string `json:"strategic_moves"`
	RiskMitigation []string `json:"risk_mitigation"`
}

type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// Job is one queued enrichment request. TableData carries the webhook's
// table rows JSON-encoded; Result holds the dashboard JSON on success.
type Job struct {
	ID string `gorm:"primaryKey;size:26"` // ULID length

	SessionID   string `gorm:"size:64;index;not null"`
	BotResponse string `gorm:"type:text;not null"`
	TableData   string `gorm:"type:text"`

	IdempotencyKey *string `gorm:"type:varchar(128);index:uniq_kpi_job_idempo,unique" json:"idempotency_key"`

	Status JobStatus `gorm:"type:varchar(16);index;not null"`

	// Filled when succeeded
	Result *string `gorm:"type:text"`

	// Filled when failed
	Error *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Job) TableName() string { return "kpi_jobs" }
