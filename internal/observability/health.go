package observability

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/tradewire/fixgate/internal/fix"
)

// HealthChecker serves the gateway's HTTP health and session-status
// endpoints. The gateway is healthy while its FIX session is active.
type HealthChecker struct {
	httpServer *http.Server
	logger     *zap.Logger
	state      func() fix.State
}

// NewHealthChecker creates a health checker reading session state from the
// given function.
func NewHealthChecker(state func() fix.State, logger *zap.Logger) *HealthChecker {
	return &HealthChecker{
		logger: logger,
		state:  state,
	}
}

// StartHTTPServer starts the HTTP health server.
func (h *HealthChecker) StartHTTPServer(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.handleHealthz)
	mux.HandleFunc("/status", h.handleStatus)

	h.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	h.logger.Info("starting HTTP health server", zap.String("addr", addr))
	return h.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the health server.
func (h *HealthChecker) Shutdown(ctx context.Context) error {
	if h.httpServer != nil {
		return h.httpServer.Shutdown(ctx)
	}
	return nil
}

func (h *HealthChecker) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if h.state() == fix.StateActive {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("NOT_READY"))
	}
}

func (h *HealthChecker) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"session_state": h.state().String(),
	})
}
