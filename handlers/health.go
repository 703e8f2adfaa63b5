package handlers

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"pix-checkout-api/utils"
)

// Pinger is satisfied by the database connection and the rate limiter.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	gateway   string
	database  Pinger
	redis     Pinger
	startTime time.Time
}

// NewHealthHandler takes optional dependencies; a nil Pinger is reported as "disabled".
func NewHealthHandler(gateway string, database, redis Pinger) *HealthHandler {
	return &HealthHandler{
		gateway:   gateway,
		database:  database,
		redis:     redis,
		startTime: time.Now(),
	}
}

type healthResponse struct {
	Status    string `json:"status"`
	Time      string `json:"time"`
	Gateway   string `json:"gateway"`
	Database  string `json:"database"`
	Redis     string `json:"redis"`
	Uptime    string `json:"uptime"`
	GoVersion string `json:"go_version"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	health := healthResponse{
		Status:    "ok",
		Time:      time.Now().Format(time.RFC3339),
		Gateway:   h.gateway,
		Database:  ping(ctx, h.database),
		Redis:     ping(ctx, h.redis),
		Uptime:    fmt.Sprintf("%v", time.Since(h.startTime).Round(time.Second)),
		GoVersion: runtime.Version(),
	}
	if health.Database == "error" || health.Redis == "error" {
		health.Status = "degraded"
	}

	utils.WriteJSON(w, http.StatusOK, health)
}

func ping(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	if err := p.PingContext(ctx); err != nil {
		return "error"
	}
	return "connected"
}
