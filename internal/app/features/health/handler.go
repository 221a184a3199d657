package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/enidea/slack-clone/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger reports whether the backing store is reachable.
type Pinger func(ctx context.Context) error

// MongoPinger pings the primary.
func MongoPinger(client *mongo.Client) Pinger {
	return func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	Ping    Pinger
	Backend string
	Log     *zap.Logger
}

// NewHandler constructs a health Handler. A nil ping means the backend is
// in process and always reachable.
func NewHandler(ping Pinger, backend string, logger *zap.Logger) *Handler {
	return &Handler{
		Ping:    ping,
		Backend: backend,
		Log:     logger,
	}
}

type healthResponse struct {
	Status   string `json:"status"`
	Backend  string `json:"backend"`
	Database string `json:"database"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "backend":"mongo", "database":"connected" }
//
// On store failure: 503 and
//
//	{ "status":"error", "database":"disconnected", "message":"Database unavailable", "error":"…" }
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Backend:  h.Backend,
		Database: "connected",
	}

	if h.Ping != nil {
		if err := h.Ping(ctx); err != nil {
			h.Log.Error("health-check: store ping failed", zap.String("backend", h.Backend), zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			resp.Status = "error"
			resp.Database = "disconnected"
			resp.Message = "Database unavailable"
			resp.Error = err.Error()
			_ = json.NewEncoder(w).Encode(resp)
			return
		}
	}

	_ = json.NewEncoder(w).Encode(resp)
}
