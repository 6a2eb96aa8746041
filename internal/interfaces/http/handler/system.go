package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	ledgerapp "github.com/papererp/backend/internal/application/ledger"
	"github.com/papererp/backend/internal/domain/shared"
	"github.com/papererp/backend/internal/interfaces/http/dto"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping() error
}

// SystemHandler handles health, readiness and operational endpoints
type SystemHandler struct {
	BaseHandler
	startTime    time.Time
	db           Pinger
	outboxRepo   shared.OutboxRepository
	sweepService *ledgerapp.OverdueSweepService
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db Pinger, outboxRepo shared.OutboxRepository, sweepService *ledgerapp.OverdueSweepService) *SystemHandler {
	return &SystemHandler{
		startTime:    time.Now(),
		db:           db,
		outboxRepo:   outboxRepo,
		sweepService: sweepService,
	}
}

// RegisterRoutes registers system routes on the given group
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	system := rg.Group("/system")
	system.GET("/ping", h.Ping)
	system.GET("/info", h.GetSystemInfo)
	system.GET("/outbox/stats", h.GetOutboxStats)
	system.POST("/sweep/overdue", h.RunOverdueSweep)
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// GetSystemInfo returns basic service information including uptime
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      "Ledger Backend API",
		Version:   "1.0.0",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(info))
}

// PingResponse represents the ping response
type PingResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Ping is a simple liveness endpoint
func (h *SystemHandler) Ping(c *gin.Context) {
	response := PingResponse{
		Message:   "pong",
		Timestamp: time.Now().Format(time.RFC3339),
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// Health reports liveness. Wired at the engine root, outside the API group.
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports readiness, checking the database connection
func (h *SystemHandler) Ready(c *gin.Context) {
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unavailable",
				"reason": "database unreachable",
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// GetOutboxStats returns outbox entry counts grouped by status
func (h *SystemHandler) GetOutboxStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	counts, err := h.outboxRepo.CountByStatus(ctx)
	if err != nil {
		h.InternalError(c, "Failed to collect outbox statistics")
		return
	}

	stats := make(map[string]int64, len(counts))
	for status, count := range counts {
		stats[string(status)] = count
	}
	h.Success(c, stats)
}

// RunOverdueSweep triggers an immediate overdue invoice sweep
func (h *SystemHandler) RunOverdueSweep(c *gin.Context) {
	stats, err := h.sweepService.MarkOverdueInvoices(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, stats)
}
