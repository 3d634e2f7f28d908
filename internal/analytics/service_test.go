package analytics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Session{}, &Message{}, &UserAction{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	return NewService(NewRepo(db)), db
}

func TestRecordMessage_DerivesFieldsAndCreatesSession(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	err := svc.RecordMessage(ctx, "sid-1", "check stock levels",
		"Low stock detected. Would you like me to create purchase requisitions?", "")
	if err != nil {
		t.Fatalf("record message: %v", err)
	}

	var m Message
	if err := db.First(&m).Error; err != nil {
		t.Fatalf("load message: %v", err)
	}
	if m.QueryCategory != CategoryInventory {
		t.Errorf("query_category = %q, want inventory", m.QueryCategory)
	}
	if !m.HasRequisitionOffer {
		t.Errorf("has_requisition_offer = false, want true")
	}
	if m.RequisitionCreated {
		t.Errorf("requisition_created = true, want false")
	}
	if m.MessageType != MessageTypeChat {
		t.Errorf("message_type = %q, want %q", m.MessageType, MessageTypeChat)
	}
	if m.Intent != IntentNormalQuery {
		t.Errorf("intent = %q, want default %q", m.Intent, IntentNormalQuery)
	}
	if m.Timestamp.IsZero() {
		t.Errorf("timestamp not assigned")
	}

	stats, err := svc.Overview(ctx)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if stats.TotalQueries != 1 {
		t.Errorf("total_queries = %d, want 1", stats.TotalQueries)
	}
	if stats.QueriesToday != 1 {
		t.Errorf("queries_today = %d, want 1", stats.QueriesToday)
	}
	if stats.TotalRequisitions != 0 {
		t.Errorf("total_requisitions = %d, want 0", stats.TotalRequisitions)
	}
	if stats.ActiveSessions != 1 {
		t.Errorf("active_sessions = %d, want 1", stats.ActiveSessions)
	}
}

func TestRecordMessage_SessionCreationIsIdempotent(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := svc.RecordMessage(ctx, "sid-dup", "hello there", "hi", ""); err != nil {
			t.Fatalf("record message %d: %v", i, err)
		}
	}

	var sessions int64
	if err := db.Model(&Session{}).Where("session_id = ?", "sid-dup").Count(&sessions).Error; err != nil {
		t.Fatalf("count sessions: %v", err)
	}
	if sessions != 1 {
		t.Fatalf("expected 1 session row, got %d", sessions)
	}

	var messages int64
	if err := db.Model(&Message{}).Where("session_id = ?", "sid-dup").Count(&messages).Error; err != nil {
		t.Fatalf("count messages: %v", err)
	}
	if messages != 2 {
		t.Fatalf("expected 2 message rows, got %d", messages)
	}
}

func TestRecordMessage_RequisitionCreatedCountsTowardOverview(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.RecordMessage(ctx, "sid-2", "check stock levels",
		"Low stock detected. Would you like me to create purchase requisitions?", ""); err != nil {
		t.Fatalf("record offer message: %v", err)
	}
	if err := svc.RecordMessage(ctx, "sid-2", "yes", "Requisition Created for item X", ""); err != nil {
		t.Fatalf("record created message: %v", err)
	}

	stats, err := svc.Overview(ctx)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if stats.TotalRequisitions != 1 {
		t.Errorf("total_requisitions = %d, want 1", stats.TotalRequisitions)
	}
	if stats.TotalQueries != 2 {
		t.Errorf("total_queries = %d, want 2", stats.TotalQueries)
	}
}

func TestRecordMessage_RejectsMissingInput(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name                           string
		sessionID, userMessage, botMsg string
	}{
		{"missing session", "", "hello", "hi"},
		{"missing user message", "sid", "  ", "hi"},
		{"missing bot response", "sid", "hello", ""},
	}
	for _, tc := range cases {
		err := svc.RecordMessage(ctx, tc.sessionID, tc.userMessage, tc.botMsg, "")
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: err = %v, want ErrInvalidInput", tc.name, err)
		}
	}

	var n int64
	if err := db.Model(&Message{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("rejected calls persisted %d rows", n)
	}
}

func TestRecordAction(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	if err := svc.RecordAction(ctx, "", "failed_login", "Attempted username: bob"); err != nil {
		t.Fatalf("record anonymous action: %v", err)
	}
	if err := svc.RecordAction(ctx, "sid-3", "message_sent", "Query: check stock..."); err != nil {
		t.Fatalf("record action: %v", err)
	}
	if err := svc.RecordAction(ctx, "sid-3", "", "details"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing action_type: err = %v, want ErrInvalidInput", err)
	}

	var anon UserAction
	if err := db.Where("action_type = ?", "failed_login").First(&anon).Error; err != nil {
		t.Fatalf("load anonymous action: %v", err)
	}
	if anon.SessionID != AnonymousSession {
		t.Errorf("session_id = %q, want %q", anon.SessionID, AnonymousSession)
	}

	// Actions never require a session row.
	var sessions int64
	if err := db.Model(&Session{}).Count(&sessions).Error; err != nil {
		t.Fatalf("count sessions: %v", err)
	}
	if sessions != 0 {
		t.Errorf("actions created %d session rows", sessions)
	}
}

func TestClearSession(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	for _, sid := range []string{"keep", "purge", "purge"} {
		if err := svc.RecordMessage(ctx, sid, "hello there", "hi", ""); err != nil {
			t.Fatalf("seed %s: %v", sid, err)
		}
	}
	if err := svc.RecordAction(ctx, "purge", "message_sent", "Query: hello"); err != nil {
		t.Fatalf("seed action: %v", err)
	}

	if err := svc.ClearSession(ctx, "purge"); err != nil {
		t.Fatalf("clear session: %v", err)
	}

	var purged, kept int64
	db.Model(&Message{}).Where("session_id = ?", "purge").Count(&purged)
	db.Model(&Message{}).Where("session_id = ?", "keep").Count(&kept)
	if purged != 0 {
		t.Errorf("purged session still has %d messages", purged)
	}
	if kept != 1 {
		t.Errorf("other session lost rows, has %d", kept)
	}

	// Session row and actions survive the purge.
	var sessions, actions int64
	db.Model(&Session{}).Where("session_id = ?", "purge").Count(&sessions)
	db.Model(&UserAction{}).Where("session_id = ?", "purge").Count(&actions)
	if sessions != 1 {
		t.Errorf("session row removed by purge")
	}
	if actions != 1 {
		t.Errorf("user actions removed by purge")
	}

	// Clearing again is a no-op, not an error.
	if err := svc.ClearSession(ctx, "purge"); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestCategoryDistribution_OmitsUnseenCategories(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	seed := []string{"check inventory", "check stock", "buy more widgets"}
	for _, msg := range seed {
		if err := svc.RecordMessage(ctx, "sid-4", msg, "done", ""); err != nil {
			t.Fatalf("seed %q: %v", msg, err)
		}
	}

	rows, err := svc.CategoryDistribution(ctx)
	if err != nil {
		t.Fatalf("category distribution: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 categories, got %d: %+v", len(rows), rows)
	}
	counts := map[Category]int64{}
	for _, row := range rows {
		counts[row.Category] = row.Count
	}
	if counts[CategoryInventory] != 2 || counts[CategoryPurchase] != 1 {
		t.Errorf("unexpected counts: %+v", counts)
	}
}

func TestDailyActivity_ExcludesEventsOutsideWindow(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	repo := NewRepo(db)

	now := time.Now()
	old := &Message{
		SessionID:     "sid-5",
		UserMessage:   "ancient query",
		BotResponse:   "ok",
		MessageType:   MessageTypeChat,
		Intent:        IntentNormalQuery,
		QueryCategory: CategoryGeneral,
		Timestamp:     now.AddDate(0, 0, -45),
	}
	if err := repo.CreateMessageWithSession(ctx, old); err != nil {
		t.Fatalf("seed old message: %v", err)
	}
	if err := svc.RecordMessage(ctx, "sid-5", "hello there", "hi", ""); err != nil {
		t.Fatalf("seed fresh message: %v", err)
	}

	rows, err := svc.DailyActivity(ctx, 30)
	if err != nil {
		t.Fatalf("daily activity: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 date bucket, got %d: %+v", len(rows), rows)
	}
	cutoff := now.AddDate(0, 0, -30).Format("2006-01-02")
	for _, row := range rows {
		if row.Date < cutoff {
			t.Errorf("date %s outside 30-day window", row.Date)
		}
	}
	if rows[0].Count != 1 {
		t.Errorf("count = %d, want 1", rows[0].Count)
	}
}

func TestRequisitionTrends(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.RecordMessage(ctx, "sid-6", "check stock",
		"Would you like me to create purchase requisitions?", ""); err != nil {
		t.Fatalf("seed offer: %v", err)
	}
	if err := svc.RecordMessage(ctx, "sid-6", "yes", "Requisition Created for item X", ""); err != nil {
		t.Fatalf("seed created: %v", err)
	}
	if err := svc.RecordMessage(ctx, "sid-6", "hello there", "hi", ""); err != nil {
		t.Fatalf("seed plain: %v", err)
	}

	rows, err := svc.RequisitionTrends(ctx, 30)
	if err != nil {
		t.Fatalf("requisition trends: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 date bucket, got %d", len(rows))
	}
	if rows[0].Offers != 1 || rows[0].Created != 1 {
		t.Errorf("offers=%d created=%d, want 1/1", rows[0].Offers, rows[0].Created)
	}
}

func TestTopQueries_LimitAndTruncation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	longQuery := strings.Repeat("x", 150)
	for i := 0; i < 3; i++ {
		if err := svc.RecordMessage(ctx, "sid-7", longQuery, "ok", ""); err != nil {
			t.Fatalf("seed long query: %v", err)
		}
	}
	for i := 0; i < 15; i++ {
		if err := svc.RecordMessage(ctx, "sid-7", fmt.Sprintf("unique query %d", i), "ok", ""); err != nil {
			t.Fatalf("seed unique query: %v", err)
		}
	}

	rows, err := svc.TopQueries(ctx, 10)
	if err != nil {
		t.Fatalf("top queries: %v", err)
	}
	if len(rows) > 10 {
		t.Fatalf("expected at most 10 rows, got %d", len(rows))
	}
	if rows[0].Count != 3 {
		t.Errorf("top row count = %d, want 3", rows[0].Count)
	}
	want := strings.Repeat("x", 100) + "..."
	if rows[0].Query != want {
		t.Errorf("top row query not truncated to 100 chars + ellipsis, got %d chars", len(rows[0].Query))
	}
}

func TestTruncateQuery(t *testing.T) {
	if got := TruncateQuery("short"); got != "short" {
		t.Errorf("short query modified: %q", got)
	}
	long := strings.Repeat("é", 120)
	got := TruncateQuery(long)
	if got != strings.Repeat("é", 100)+"..." {
		t.Errorf("rune truncation wrong, got %d runes", len([]rune(got)))
	}
}
