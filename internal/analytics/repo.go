package analytics

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// CreateMessageWithSession atomically ensures the session row exists and
// appends the message. The session insert is a single insert-or-ignore, so
// concurrent first writers for the same session id cannot error or
// duplicate the row.
func (r *Repo) CreateMessageWithSession(ctx context.Context, m *Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sess := &Session{SessionID: m.SessionID}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoNothing: true,
		}).Create(sess).Error; err != nil {
			return err
		}
		return tx.Create(m).Error
	})
}

func (r *Repo) InsertAction(ctx context.Context, a *UserAction) error {
	return r.db.WithContext(ctx).Create(a).Error
}

// DeleteSessionMessages removes every message event for one session id.
// Deleting zero rows is not an error.
func (r *Repo) DeleteSessionMessages(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&Message{}).Error
}

func (r *Repo) CountMessages(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Message{}).Count(&n).Error
	return n, err
}

func (r *Repo) CountMessagesSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Message{}).
		Where("timestamp >= ?", since).
		Count(&n).Error
	return n, err
}

func (r *Repo) CountRequisitionsCreated(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Message{}).
		Where("requisition_created = ?", true).
		Count(&n).Error
	return n, err
}

func (r *Repo) CountActiveSessionsSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Message{}).
		Where("timestamp >= ?", since).
		Distinct("session_id").
		Count(&n).Error
	return n, err
}

func (r *Repo) CategoryCounts(ctx context.Context) ([]CategoryCount, error) {
	var rows []CategoryCount
	err := r.db.WithContext(ctx).Model(&Message{}).
		Select("query_category AS category, COUNT(*) AS count").
		Group("query_category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// DailyCounts buckets messages by calendar date. DATE() is supported by both
// the sqlite and mysql drivers; the window lower bound is computed by the
// caller so day-boundary semantics stay in one place.
func (r *Repo) DailyCounts(ctx context.Context, since time.Time) ([]DailyCount, error) {
	var rows []DailyCount
	err := r.db.WithContext(ctx).Model(&Message{}).
		Select("DATE(timestamp) AS date, COUNT(*) AS count").
		Where("timestamp >= ?", since).
		Group("DATE(timestamp)").
		Order("date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repo) RequisitionTrends(ctx context.Context, since time.Time) ([]RequisitionTrend, error) {
	var rows []RequisitionTrend
	err := r.db.WithContext(ctx).Model(&Message{}).
		Select("DATE(timestamp) AS date, " +
			"SUM(CASE WHEN has_requisition_offer THEN 1 ELSE 0 END) AS offers, " +
			"SUM(CASE WHEN requisition_created THEN 1 ELSE 0 END) AS created").
		Where("timestamp >= ?", since).
		Group("DATE(timestamp)").
		Order("date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// TopQueries groups by exact user_message text, most frequent first.
// Tie order between equal counts is whatever the store returns.
func (r *Repo) TopQueries(ctx context.Context, limit int) ([]QueryCount, error) {
	var rows []QueryCount
	err := r.db.WithContext(ctx).Model(&Message{}).
		Select("user_message AS query, COUNT(*) AS count").
		Group("user_message").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
