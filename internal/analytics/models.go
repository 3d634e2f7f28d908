package analytics

import "time"

const (
	// MessageTypeChat tags every logged chat exchange.
	MessageTypeChat = "chat"

	// IntentNormalQuery is the default intent when the caller supplies none.
	IntentNormalQuery = "normal_query"

	// AnonymousSession is the sentinel session id for actions logged before
	// a session is resolved (e.g. failed logins).
	AnonymousSession = "anonymous"
)

// Substrings that mark the requisition funnel in bot responses.
const (
	requisitionOfferMarker   = "Would you like me to create purchase requisitions"
	requisitionCreatedMarker = "Requisition Created"
)

type Session struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	SessionID string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (Session) TableName() string { return "chat_sessions" }

// Message is one logged chat exchange. Rows are append-only; there is no
// update path, and only ClearSession removes them.
type Message struct {
	ID                  uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID           string    `gorm:"type:varchar(64);index;not null" json:"session_id"`
	UserMessage         string    `gorm:"type:text;not null" json:"user_message"`
	BotResponse         string    `gorm:"type:text;not null" json:"bot_response"`
	MessageType         string    `gorm:"type:varchar(16);not null" json:"message_type"`
	Intent              string    `gorm:"type:varchar(64);not null" json:"intent"`
	QueryCategory       Category  `gorm:"type:varchar(16);index;not null" json:"query_category"`
	HasRequisitionOffer bool      `gorm:"not null" json:"has_requisition_offer"`
	RequisitionCreated  bool      `gorm:"not null" json:"requisition_created"`
	Timestamp           time.Time `gorm:"index;autoCreateTime" json:"timestamp"`
}

func (Message) TableName() string { return "chat_messages" }

// UserAction is an auxiliary audit event (logins, message-sent markers).
// Deliberately not foreign-keyed to Session: actions may reference a session
// id that has no session row yet.
type UserAction struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID     string    `gorm:"type:varchar(64);index;not null" json:"session_id"`
	ActionType    string    `gorm:"type:varchar(64);not null" json:"action_type"`
	ActionDetails string    `gorm:"type:text" json:"action_details"`
	Timestamp     time.Time `gorm:"index;autoCreateTime" json:"timestamp"`
}

func (UserAction) TableName() string { return "user_actions" }
