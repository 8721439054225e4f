package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Osomudeya/retoucher-demo/internal/application"
	"github.com/Osomudeya/retoucher-demo/internal/domain"
)

const serviceName = "retoucherirving-backend"

type HealthHandler struct {
	service *application.HealthService
	version string
}

func NewHealthHandler(service *application.HealthService, version string) *HealthHandler {
	return &HealthHandler{service: service, version: version}
}

type databaseStatus struct {
	Status       string `json:"status"`
	ResponseTime string `json:"responseTime,omitempty"`
	Error        string `json:"error,omitempty"`
	Type         string `json:"type,omitempty"`
}

type basicHealthResponse struct {
	Status    domain.OverallStatus `json:"status"`
	Timestamp time.Time            `json:"timestamp"`
	Uptime    string               `json:"uptime"`
	Service   string               `json:"service"`
	Version   string               `json:"version"`
	Database  databaseStatus       `json:"database"`
}

// Basic probes only store connectivity: 200 when the store answers within
// its timeout, 503 otherwise.
func (h *HealthHandler) Basic(c *gin.Context) {
	health := h.service.Basic(c.Request.Context())
	db, _ := health.DatabaseProbe()

	resp := basicHealthResponse{
		Status:    health.Overall,
		Timestamp: health.Timestamp,
		Uptime:    h.service.Uptime().Truncate(time.Second).String(),
		Service:   serviceName,
		Version:   h.version,
	}

	if db.Status == domain.ProbeHealthy {
		resp.Database = databaseStatus{
			Status:       "connected",
			ResponseTime: responseTime(db.Latency),
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	resp.Database = databaseStatus{
		Status: "disconnected",
		Error:  db.Detail,
	}
	c.JSON(http.StatusServiceUnavailable, resp)
}

type memoryStatus struct {
	Status    string `json:"status"`
	HeapUsed  string `json:"heapUsed"`
	HeapTotal string `json:"heapTotal"`
}

type detailedHealthResponse struct {
	Status       domain.OverallStatus `json:"status"`
	Timestamp    time.Time            `json:"timestamp"`
	Uptime       string               `json:"uptime"`
	Service      string               `json:"service"`
	Version      string               `json:"version"`
	Dependencies struct {
		Database databaseStatus `json:"database"`
		Memory   memoryStatus   `json:"memory"`
	} `json:"dependencies"`
}

// Detailed runs every probe and reports the full dependency map: 200 only
// when the overall verdict is OK.
func (h *HealthHandler) Detailed(c *gin.Context) {
	health := h.service.Detailed(c.Request.Context())

	resp := detailedHealthResponse{
		Status:    health.Overall,
		Timestamp: health.Timestamp,
		Uptime:    h.service.Uptime().Truncate(time.Second).String(),
		Service:   serviceName,
		Version:   h.version,
	}

	if db, ok := health.DatabaseProbe(); ok {
		if db.Status == domain.ProbeHealthy {
			resp.Dependencies.Database = databaseStatus{
				Status:       "connected",
				ResponseTime: responseTime(db.Latency),
				Type:         "postgresql",
			}
		} else {
			resp.Dependencies.Database = databaseStatus{
				Status: "disconnected",
				Error:  db.Detail,
				Type:   "postgresql",
			}
		}
	}

	if mem, ok := health.MemoryProbe(); ok && mem.Memory != nil {
		status := "healthy"
		if mem.Status == domain.ProbeDegraded {
			status = "warning"
		}
		resp.Dependencies.Memory = memoryStatus{
			Status:    status,
			HeapUsed:  mem.Memory.HeapUsedMB(),
			HeapTotal: mem.Memory.HeapTotalMB(),
		}
	}

	code := http.StatusOK
	if health.Overall != domain.StatusOK {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, resp)
}

// Ready gates orchestrator traffic on store reachability.
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.service.Ready(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Live answers 200 no matter what the dependencies are doing. An
// orchestrator must never restart the process over a flaky database.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": h.service.Live(),
	})
}

func responseTime(d time.Duration) string {
	return fmt.Sprintf("%dms", d.Milliseconds())
}
