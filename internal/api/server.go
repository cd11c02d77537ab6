package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/usher/internal/handoff"
)

// Dispatcher accepts parsed webhook events. Handle must not block.
type Dispatcher interface {
	Handle(ev handoff.Event)
}

type Server struct {
	router     *chi.Mux
	port       int
	dispatcher Dispatcher
}

func NewServer(port int, dispatcher Dispatcher) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:     router,
		port:       port,
		dispatcher: dispatcher,
	}

	router.Post("/webhook/chat", s.webhook)
	router.Get("/health", s.health)
	router.Get("/api/v1/usher/status", s.status)

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// webhook ingests platform deliveries. The answer is always an empty 200 no
// matter what was in the payload: anything else makes the platform retry
// and amplifies duplicate processing.
func (s *Server) webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err == nil {
		ev, perr := handoff.ParseEnvelope(body)
		switch {
		case perr != nil:
			slog.Debug("ignoring malformed webhook payload", "error", perr)
		case ev != nil:
			s.dispatcher.Handle(ev)
		}
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"agent":  "usher",
		"status": "active",
	})
}
