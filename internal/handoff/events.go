package handoff

import (
	"encoding/json"
	"fmt"
)

// Event is the inbound webhook union. Exactly NewMessage and ChatClosed are
// acted on; every other platform event is dropped before it reaches the
// controller.
type Event interface {
	isEvent()
}

// NewMessage is a message posted into a conversation by anyone.
type NewMessage struct {
	ChatID      string
	SenderRole  string // "user" or "operator"
	ContentType string // only "text" is processed
	Content     string
	OwnerHint   string // platform's currently assigned operator id, if it sent one
}

// ChatClosed reports that the platform closed a conversation.
type ChatClosed struct {
	ChatID     string
	OperatorID string // operator who closed it, if any
}

func (NewMessage) isEvent() {}
func (ChatClosed) isEvent() {}

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type newMessageData struct {
	ChatID string `json:"chat_id"`
	Type   string `json:"type"`
	Sender struct {
		Role string `json:"role"`
	} `json:"sender"`
	Content string `json:"content"`
	OwnerID string `json:"owner_id"`
}

type chatClosedData struct {
	ChatID     string `json:"chat_id"`
	OperatorID string `json:"operator_id"`
}

// ParseEnvelope decodes a webhook delivery. Unrecognized event names return
// (nil, nil): they are acknowledged and ignored, not errors.
func ParseEnvelope(body []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("parse envelope: %w", err)
	}

	switch env.Event {
	case "new_message":
		var d newMessageData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, fmt.Errorf("parse new_message: %w", err)
		}
		if d.ChatID == "" {
			return nil, fmt.Errorf("new_message without chat_id")
		}
		return NewMessage{
			ChatID:      d.ChatID,
			SenderRole:  d.Sender.Role,
			ContentType: d.Type,
			Content:     d.Content,
			OwnerHint:   d.OwnerID,
		}, nil
	case "chat_closed":
		var d chatClosedData
		if err := json.Unmarshal(env.Data, &d); err != nil {
			return nil, fmt.Errorf("parse chat_closed: %w", err)
		}
		if d.ChatID == "" {
			return nil, fmt.Errorf("chat_closed without chat_id")
		}
		return ChatClosed{ChatID: d.ChatID, OperatorID: d.OperatorID}, nil
	default:
		return nil, nil
	}
}
