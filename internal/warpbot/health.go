package warpbot

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
)

// healthStatus is the /health response body.
type healthStatus struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Sessions  int    `json:"sessions"`
	Processed int    `json:"processed"`
}

// HealthServer provides HTTP health endpoints: a JSON status snapshot for
// humans and probe endpoints for Kubernetes.
type HealthServer struct {
	bot    *Bot
	server *http.Server
	port   int
}

// NewHealthServer creates a new health server for the given bot.
func NewHealthServer(bot *Bot, port int) *HealthServer {
	return &HealthServer{
		bot:  bot,
		port: port,
	}
}

// Handler returns the health endpoints mux.
func (h *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()

	// /health - read-only snapshot with session and processed counts
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(healthStatus{
			Status:    "healthy",
			Message:   "The work is mysterious and important",
			Sessions:  h.bot.Sessions().Len(),
			Processed: h.bot.Ledger().Count(),
		})
	})

	// /healthz - liveness probe: checks if the bot is connected to Slack
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if h.bot.IsConnected() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("disconnected"))
		}
	})

	// /readyz - readiness probe: the bot can queue events even while
	// temporarily disconnected
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	})

	return mux
}

// Start begins serving health endpoints. This should be called in a goroutine.
func (h *HealthServer) Start(ctx context.Context) error {
	h.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", h.port),
		Handler: h.Handler(),
	}

	log.Printf("health: starting health server on :%d", h.port)

	errCh := make(chan error, 1)
	go func() {
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Println("health: shutting down health server")
		return h.server.Shutdown(context.Background())
	case err := <-errCh:
		return fmt.Errorf("health server error: %w", err)
	}
}
