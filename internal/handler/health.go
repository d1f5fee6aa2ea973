package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hrpulse/loan-engine/pkg/response"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

type HealthHandler struct {
	db      *sqlx.DB
	redis   *redis.Client
	timeout time.Duration
}

// NewHealthHandler wires the readiness dependencies. timeout bounds each
// dependency ping (HEALTH_CHECK_TIMEOUT).
func NewHealthHandler(db *sqlx.DB, redis *redis.Client, timeout time.Duration) *HealthHandler {
	return &HealthHandler{
		db:      db,
		redis:   redis,
		timeout: timeout,
	}
}

type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// Health performs a basic liveness check
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	response.Success(w, status)
}

// Ready performs readiness check including database and redis connectivity
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	status.record("database", h.checkDatabase(r.Context()))
	status.record("redis", h.checkRedis(r.Context()))

	if status.Status == "error" {
		response.Error(w, http.StatusServiceUnavailable, "Service not ready", nil)
		return
	}

	response.Success(w, status)
}

func (s *HealthStatus) record(name string, err error) {
	if err != nil {
		s.Status = "error"
		s.Checks[name] = "failed: " + err.Error()
		return
	}
	s.Checks[name] = "ok"
}

func (h *HealthHandler) checkDatabase(parent context.Context) error {
	ctx, cancel := context.WithTimeout(parent, h.timeout)
	defer cancel()
	return h.db.PingContext(ctx)
}

func (h *HealthHandler) checkRedis(parent context.Context) error {
	ctx, cancel := context.WithTimeout(parent, h.timeout)
	defer cancel()
	return h.redis.Ping(ctx).Err()
}
