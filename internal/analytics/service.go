package analytics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidInput marks calls rejected before touching the store.
var ErrInvalidInput = errors.New("invalid input")

const (
	defaultWindowDays = 30
	defaultTopLimit   = 10
	maxTopLimit       = 100

	// Query text longer than this is truncated with an ellipsis in
	// top-queries output and action previews.
	queryPreviewLen = 100
)

type OverviewStats struct {
	TotalQueries      int64 `json:"total_queries"`
	QueriesToday      int64 `json:"queries_today"`
	TotalRequisitions int64 `json:"total_requisitions"`
	ActiveSessions    int64 `json:"active_sessions"`
}

type CategoryCount struct {
	Category Category `json:"category"`
	Count    int64    `json:"count"`
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type RequisitionTrend struct {
	Date    string `json:"date"`
	Offers  int64  `json:"offers"`
	Created int64  `json:"created"`
}

type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Service is the ingestion and aggregation surface over the event store.
// Calendar-day boundaries use the server's local time zone; window bounds
// are half-open (timestamp >= now - window).
type Service struct {
	repo *Repo

	// now is swappable in tests.
	now func() time.Time
}

func NewService(repo *Repo) *Service {
	return &Service{repo: repo, now: time.Now}
}

// RecordMessage logs one chat exchange: derives the query category and the
// requisition-funnel flags, then atomically ensures the session row and
// appends the message event. Either everything is persisted or nothing is.
func (s *Service) RecordMessage(ctx context.Context, sessionID, userMessage, botResponse, intent string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("%w: session_id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(userMessage) == "" {
		return fmt.Errorf("%w: user_message is required", ErrInvalidInput)
	}
	if botResponse == "" {
		return fmt.Errorf("%w: bot_response is required", ErrInvalidInput)
	}
	if intent == "" {
		intent = IntentNormalQuery
	}

	m := &Message{
		SessionID:           sessionID,
		UserMessage:         userMessage,
		BotResponse:         botResponse,
		MessageType:         MessageTypeChat,
		Intent:              intent,
		QueryCategory:       Categorize(userMessage),
		HasRequisitionOffer: strings.Contains(botResponse, requisitionOfferMarker),
		RequisitionCreated:  strings.Contains(botResponse, requisitionCreatedMarker),
	}
	return s.repo.CreateMessageWithSession(ctx, m)
}

// RecordAction appends one audit event. No session-existence check and no
// derived fields; the "anonymous" sentinel is a valid session id.
func (s *Service) RecordAction(ctx context.Context, sessionID, actionType, actionDetails string) error {
	if strings.TrimSpace(sessionID) == "" {
		sessionID = AnonymousSession
	}
	if strings.TrimSpace(actionType) == "" {
		return fmt.Errorf("%w: action_type is required", ErrInvalidInput)
	}
	return s.repo.InsertAction(ctx, &UserAction{
		SessionID:     sessionID,
		ActionType:    actionType,
		ActionDetails: actionDetails,
	})
}

// ClearSession purges the message events for one session id. The session
// row and user actions are kept; clearing an empty session is a no-op.
func (s *Service) ClearSession(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("%w: session_id is required", ErrInvalidInput)
	}
	return s.repo.DeleteSessionMessages(ctx, sessionID)
}

func (s *Service) Overview(ctx context.Context) (*OverviewStats, error) {
	now := s.now()

	total, err := s.repo.CountMessages(ctx)
	if err != nil {
		return nil, err
	}

	y, m, d := now.Date()
	startOfDay := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	today, err := s.repo.CountMessagesSince(ctx, startOfDay)
	if err != nil {
		return nil, err
	}

	requisitions, err := s.repo.CountRequisitionsCreated(ctx)
	if err != nil {
		return nil, err
	}

	active, err := s.repo.CountActiveSessionsSince(ctx, now.Add(-24*time.Hour))
	if err != nil {
		return nil, err
	}

	return &OverviewStats{
		TotalQueries:      total,
		QueriesToday:      today,
		TotalRequisitions: requisitions,
		ActiveSessions:    active,
	}, nil
}

// CategoryDistribution returns one row per category observed; categories
// never seen are omitted, not zero-filled.
func (s *Service) CategoryDistribution(ctx context.Context) ([]CategoryCount, error) {
	return s.repo.CategoryCounts(ctx)
}

func (s *Service) DailyActivity(ctx context.Context, windowDays int) ([]DailyCount, error) {
	if windowDays <= 0 {
		windowDays = defaultWindowDays
	}
	since := s.now().AddDate(0, 0, -windowDays)
	return s.repo.DailyCounts(ctx, since)
}

func (s *Service) RequisitionTrends(ctx context.Context, windowDays int) ([]RequisitionTrend, error) {
	if windowDays <= 0 {
		windowDays = defaultWindowDays
	}
	since := s.now().AddDate(0, 0, -windowDays)
	return s.repo.RequisitionTrends(ctx, since)
}

// TopQueries returns the most repeated user messages. Ties between equal
// counts come back in store order, which is not defined across drivers.
func (s *Service) TopQueries(ctx context.Context, limit int) ([]QueryCount, error) {
	if limit <= 0 || limit > maxTopLimit {
		limit = defaultTopLimit
	}
	rows, err := s.repo.TopQueries(ctx, limit)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Query = TruncateQuery(rows[i].Query)
	}
	return rows, nil
}

// TruncateQuery shortens query text to 100 characters with a trailing
// ellipsis marker. Counts characters, not bytes.
func TruncateQuery(s string) string {
	r := []rune(s)
	if len(r) <= queryPreviewLen {
		return s
	}
	return string(r[:queryPreviewLen]) + "..."
}
