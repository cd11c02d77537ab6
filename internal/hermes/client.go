package hermes

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// NATS subjects usher emits. Other swarm agents subscribe to these to track
// which conversations the bot is still holding.
const (
	SubjectRegistered = "swarm.usher.registered"
	SubjectEscalated  = "swarm.usher.handoff.escalated"
	SubjectReturned   = "swarm.usher.handoff.returned"
)

// HandoffEvent announces an ownership change for one conversation.
type HandoffEvent struct {
	ConversationID string    `json:"conversation_id"`
	OperatorID     string    `json:"operator_id"`
	Intent         string    `json:"intent,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// Client is usher's publish-only connection to the swarm's NATS broker.
type Client struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func NewClient(url, token string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &Client{conn: nc, logger: logger}, nil
}

func (c *Client) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return c.conn.Publish(subject, payload)
}

func (c *Client) Close() {
	c.conn.Close()
}
