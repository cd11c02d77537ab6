package transcript

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sender identifies who produced a transcript line.
type Sender string

const (
	SenderVisitor  Sender = "visitor"
	SenderBot      Sender = "bot"
	SenderOperator Sender = "operator"
)

// Message is one line of a conversation as recorded for diagnostics.
type Message struct {
	ID             uuid.UUID
	ConversationID string
	Sender         Sender
	Text           string
	CreatedAt      time.Time
}

// Store persists conversation transcripts and complaint records.
// Tables: messages, complaints.
type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// SaveMessage appends one transcript line.
func (s *Store) SaveMessage(ctx context.Context, conversationID string, sender Sender, text string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO messages (id, conversation_id, sender, text, created_at)
		VALUES ($1, $2, $3, $4, now())`,
		uuid.New(), conversationID, string(sender), text,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// SaveComplaint records a complaint so the support team can follow up even
// after the conversation itself expires.
func (s *Store) SaveComplaint(ctx context.Context, conversationID, text string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO complaints (id, conversation_id, text, created_at)
		VALUES ($1, $2, $3, now())`,
		uuid.New(), conversationID, text,
	)
	if err != nil {
		return fmt.Errorf("insert complaint: %w", err)
	}
	return nil
}

// History returns a conversation's transcript in chronological order.
func (s *Store) History(ctx context.Context, conversationID string) ([]Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, conversation_id, sender, text, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		var sender string
		if err := rows.Scan(&m.ID, &m.ConversationID, &sender, &m.Text, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Sender = Sender(sender)
		out = append(out, m)
	}
	return out, rows.Err()
}
