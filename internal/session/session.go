package session

import (
	"context"
	"errors"
	"time"
)

// SchemaVersion is embedded in every serialized session so the record
// layout can change without guessing at old payloads.
const SchemaVersion = 1

type Owner string

const (
	OwnerBot   Owner = "bot"
	OwnerHuman Owner = "human"
)

// ErrNotFound is returned by Store.Get for an unseen conversation. Callers
// treat it as a fresh bot-owned session, never as a failure.
var ErrNotFound = errors.New("session: not found")

// Session is the per-conversation handoff state. It is the single source of
// truth for who owns the conversation; only the handoff controller mutates it.
type Session struct {
	SchemaVersion   int       `json:"schema_version"`
	ConversationID  string    `json:"conversation_id"`
	Owner           Owner     `json:"owner"`
	PendingTransfer bool      `json:"pending_transfer,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// New returns a fresh bot-owned session for a conversation.
func New(conversationID string) *Session {
	now := time.Now().UTC()
	return &Session{
		SchemaVersion:  SchemaVersion,
		ConversationID: conversationID,
		Owner:          OwnerBot,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Touch bumps UpdatedAt. Call before every Put.
func (s *Session) Touch() {
	s.UpdatedAt = time.Now().UTC()
}

// Store is the durable conversation_id → Session mapping. Implementations
// must be safe for concurrent use across distinct conversation ids; the
// controller provides per-id serialization on top.
type Store interface {
	Get(ctx context.Context, conversationID string) (*Session, error)
	Put(ctx context.Context, sess *Session) error
}
