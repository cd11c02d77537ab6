package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/usher/internal/handoff"
)

type fakeDispatcher struct {
	events []handoff.Event
}

func (f *fakeDispatcher) Handle(ev handoff.Event) {
	f.events = append(f.events, ev)
}

func TestHealthEndpoint(t *testing.T) {
	srv := NewServer(8760, &fakeDispatcher{})

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv := NewServer(8760, &fakeDispatcher{})

	req := httptest.NewRequest("GET", "/api/v1/usher/status", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["agent"] != "usher" {
		t.Errorf("expected agent usher, got %q", body["agent"])
	}
}

func TestWebhook_DispatchesNewMessage(t *testing.T) {
	d := &fakeDispatcher{}
	srv := NewServer(8760, d)

	payload := `{"event":"new_message","data":{"chat_id":"chat-1","type":"text","sender":{"role":"user"},"content":"hello"}}`
	req := httptest.NewRequest("POST", "/webhook/chat", strings.NewReader(payload))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", w.Body.String())
	}
	if len(d.events) != 1 {
		t.Fatalf("expected one dispatched event, got %d", len(d.events))
	}
	msg, ok := d.events[0].(handoff.NewMessage)
	if !ok || msg.ChatID != "chat-1" {
		t.Errorf("unexpected event: %+v", d.events[0])
	}
}

func TestWebhook_UnknownEventAcknowledged(t *testing.T) {
	d := &fakeDispatcher{}
	srv := NewServer(8760, d)

	payload := `{"event":"visitor_typing","data":{"chat_id":"chat-1"}}`
	req := httptest.NewRequest("POST", "/webhook/chat", strings.NewReader(payload))
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for unknown event, got %d", w.Code)
	}
	if len(d.events) != 0 {
		t.Errorf("unknown event must not be dispatched, got %d", len(d.events))
	}
}

func TestWebhook_MalformedPayloadAcknowledged(t *testing.T) {
	d := &fakeDispatcher{}
	srv := NewServer(8760, d)

	for _, payload := range []string{"", "not json", `{"event":"new_message","data":{}}`} {
		req := httptest.NewRequest("POST", "/webhook/chat", strings.NewReader(payload))
		w := httptest.NewRecorder()
		srv.router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected 200 for %q, got %d", payload, w.Code)
		}
		if w.Body.Len() != 0 {
			t.Errorf("expected empty body for %q, got %q", payload, w.Body.String())
		}
	}
	if len(d.events) != 0 {
		t.Errorf("malformed payloads must not be dispatched, got %d", len(d.events))
	}
}
