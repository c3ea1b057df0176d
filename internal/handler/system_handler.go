package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/ampvending/amp-backend/internal/response"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const (
	metricsInterval = 7 * time.Second
	probeTimeout    = 2 * time.Second
)

// Pinger is a backend the health check can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// QueueDepth reports the number of activity entries waiting to be persisted.
type QueueDepth interface {
	Len(ctx context.Context) (int64, error)
}

// SystemHandler reports service health and streams runtime metrics via SSE.
type SystemHandler struct {
	db        Pinger
	redis     Pinger
	pool      *pgxpool.Pool
	queue     QueueDepth
	startTime time.Time
	log       zerolog.Logger
}

func NewSystemHandler(db, redis Pinger, pool *pgxpool.Pool, queue QueueDepth, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		db:        db,
		redis:     redis,
		pool:      pool,
		queue:     queue,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

// Health godoc
// GET /health
// Always 200 while the process serves; "degraded" when a backend is down,
// since the public catalog keeps working from the static fallback.
func (h *SystemHandler) Health(c *gin.Context) {
	checks := gin.H{
		"database": probe(c.Request.Context(), h.db),
		"redis":    probe(c.Request.Context(), h.redis),
	}
	status := "ok"
	for _, v := range checks {
		if v != "ok" {
			status = "degraded"
		}
	}
	response.Success(c, http.StatusOK, gin.H{
		"status": status,
		"checks": checks,
		"uptime": formatDuration(time.Since(h.startTime)),
	})
}

func probe(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		return "down"
	}
	return "ok"
}

// ---------- SSE Endpoint ----------

type systemMetrics struct {
	Timestamp int64  `json:"timestamp"`
	Uptime    string `json:"uptime"`

	LoadAvg1  float64 `json:"load_avg_1"`
	LoadAvg5  float64 `json:"load_avg_5"`
	LoadAvg15 float64 `json:"load_avg_15"`

	// Go Application
	Goroutines int    `json:"goroutines"`
	HeapAlloc  uint64 `json:"heap_alloc"`
	HeapSys    uint64 `json:"heap_sys"`
	NumGC      uint32 `json:"num_gc"`
	GoVersion  string `json:"go_version"`
	NumCPU     int    `json:"num_cpu"`

	// Database pool
	DBTotalConns    int32 `json:"db_total_conns"`
	DBIdleConns     int32 `json:"db_idle_conns"`
	DBAcquiredConns int32 `json:"db_acquired_conns"`

	QueueActivity int64 `json:"queue_activity"`
}

// SystemMetricsSSE godoc
// GET /api/v1/admin/system/metrics
func (h *SystemHandler) SystemMetricsSSE(c *gin.Context) {
	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	h.log.Info().Str("admin_id", actor(c).AdminID).Msg("Admin connected to system metrics SSE")

	ticker := time.NewTicker(metricsInterval)
	defer ticker.Stop()

	h.writeMetrics(c)

	for {
		select {
		case <-reqCtx.Done():
			h.log.Info().Msg("Admin disconnected from system metrics SSE")
			return
		case <-ticker.C:
			h.writeMetrics(c)
		}
	}
}

func (h *SystemHandler) writeMetrics(c *gin.Context) {
	data, err := json.Marshal(h.collect(c.Request.Context()))
	if err != nil {
		return
	}
	fmt.Fprintf(c.Writer, "data: %s\n\n", data)
	c.Writer.Flush()
}

func (h *SystemHandler) collect(ctx context.Context) systemMetrics {
	m := systemMetrics{
		Timestamp: time.Now().Unix(),
		Uptime:    formatDuration(time.Since(h.startTime)),
		GoVersion: runtime.Version(),
		NumCPU:    runtime.NumCPU(),
	}

	m.LoadAvg1, m.LoadAvg5, m.LoadAvg15, _ = readLoadAvg()

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.Goroutines = runtime.NumGoroutine()
	m.HeapAlloc = ms.HeapAlloc
	m.HeapSys = ms.Sys
	m.NumGC = ms.NumGC

	if h.pool != nil {
		stat := h.pool.Stat()
		m.DBTotalConns = stat.TotalConns()
		m.DBIdleConns = stat.IdleConns()
		m.DBAcquiredConns = stat.AcquiredConns()
	}

	if h.queue != nil {
		qctx, cancel := context.WithTimeout(ctx, probeTimeout)
		m.QueueActivity, _ = h.queue.Len(qctx)
		cancel()
	}

	return m
}

// readLoadAvg parses /proc/loadavg. Non-Linux hosts report zeros.
func readLoadAvg() (load1, load5, load15 float64, err error) {
	data, err := os.ReadFile("/proc/loadavg")
	if err != nil {
		return 0, 0, 0, err
	}
	fields := strings.Fields(string(data))
	if len(fields) < 3 {
		return 0, 0, 0, fmt.Errorf("unexpected /proc/loadavg format")
	}
	load1, _ = strconv.ParseFloat(fields[0], 64)
	load5, _ = strconv.ParseFloat(fields[1], 64)
	load15, _ = strconv.ParseFloat(fields[2], 64)
	return load1, load5, load15, nil
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
