package kpi

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type staticGenerator struct {
	dashboard *Dashboard
	calls     int
}

func (g *staticGenerator) Generate(ctx context.Context, botResponse string, tableData []map[string]any) *Dashboard {
	_ = ctx
	g.calls++
	return g.dashboard
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Job{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestEnrich_NoGeneratorReturnsConfigFallback(t *testing.T) {
	svc := NewService(NewRepo(openTestDB(t)), nil)

	d := svc.Enrich(context.Background(), "some response", nil)
	if len(d.KPIs) != 1 || d.KPIs[0].Title != "Configuration Required" {
		t.Fatalf("unexpected fallback kpis: %+v", d.KPIs)
	}
	if len(d.Alerts) != 1 || d.Alerts[0].Urgency != "immediate" {
		t.Errorf("unexpected fallback alerts: %+v", d.Alerts)
	}
	// Contract: every section present even in fallback.
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, section := range []string{"kpis", "summary", "recommendations", "alerts", "charts", "trends", "decision_support"} {
		if _, ok := m[section]; !ok {
			t.Errorf("fallback payload missing section %q", section)
		}
	}
}

func TestFallbackInteractive_AddsDataKPIsAndCharts(t *testing.T) {
	table := []map[string]any{{"item": "X"}, {"item": "Y"}}
	d := fallbackInteractive(table)

	if len(d.KPIs) != 2 {
		t.Fatalf("expected system + data-volume KPIs, got %d", len(d.KPIs))
	}
	if d.KPIs[1].Value != "2" || d.KPIs[1].Unit != "records" {
		t.Errorf("data volume KPI = %+v", d.KPIs[1])
	}
	if len(d.Charts) != 3 {
		t.Errorf("expected 3 default charts, got %d", len(d.Charts))
	}

	if empty := fallbackInteractive(nil); len(empty.Charts) != 0 || len(empty.KPIs) != 1 {
		t.Errorf("empty-table fallback wrong: %d charts, %d kpis", len(empty.Charts), len(empty.KPIs))
	}
}

func TestAnalyzePatterns(t *testing.T) {
	table := []map[string]any{
		{"qty": "1,200", "price": "$10.50", "name": "a"},
		{"qty": float64(-3), "price": "4.5", "name": "b"},
		{"qty": float64(0), "price": "oops", "name": "c"},
	}
	a := analyzePatterns(table)

	if a.RecordCount != 3 {
		t.Errorf("record_count = %d", a.RecordCount)
	}
	qty, ok := a.Patterns["qty"]
	if !ok {
		t.Fatalf("qty not detected as numeric: %+v", a.NumericFields)
	}
	if qty.Min != -3 || qty.Max != 1200 || qty.NegativeCount != 1 || qty.ZeroCount != 1 {
		t.Errorf("qty stats = %+v", qty)
	}
	if qty.Median != 0 {
		t.Errorf("qty median = %v, want 0", qty.Median)
	}
	// price has only 2 parseable values, still qualifies; name has none.
	if _, ok := a.Patterns["name"]; ok {
		t.Errorf("non-numeric field treated as numeric")
	}
}

func TestJobLifecycle(t *testing.T) {
	db := openTestDB(t)
	gen := &staticGenerator{dashboard: fallbackInteractive(nil)}
	svc := NewService(NewRepo(db), gen)
	ctx := context.Background()

	table := []map[string]any{{"item": "X", "qty": 2.0}}
	job, created, err := svc.CreateJob(ctx, "sid-1", "Low stock detected", table, nil)
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	if !created || job.Status != JobQueued {
		t.Fatalf("job = %+v created=%v", job, created)
	}

	if err := svc.ProcessJob(ctx, job.ID); err != nil {
		t.Fatalf("process job: %v", err)
	}
	if gen.calls != 1 {
		t.Errorf("generator called %d times", gen.calls)
	}

	got, err := svc.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if got.Status != JobSucceeded {
		t.Fatalf("status = %q, want succeeded", got.Status)
	}
	if got.Result == nil {
		t.Fatalf("result not stored")
	}
	var d Dashboard
	if err := json.Unmarshal([]byte(*got.Result), &d); err != nil {
		t.Fatalf("result not a dashboard: %v", err)
	}
}

func TestCreateJob_IdempotencyKeyReturnsExisting(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(NewRepo(db), &staticGenerator{dashboard: fallbackInteractive(nil)})
	ctx := context.Background()

	key := "client-key-1"
	first, created, err := svc.CreateJob(ctx, "sid-2", "resp", nil, &key)
	if err != nil || !created {
		t.Fatalf("first create: %v created=%v", err, created)
	}

	second, created, err := svc.CreateJob(ctx, "sid-2", "resp", nil, &key)
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if created {
		t.Fatalf("duplicate key created a new job")
	}
	if second.ID != first.ID {
		t.Fatalf("expected existing job %s, got %s", first.ID, second.ID)
	}
}
