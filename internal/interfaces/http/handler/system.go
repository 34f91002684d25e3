package handler

import (
	"context"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/ledgerbook/backend/internal/interfaces/http/dto"
	"golang.org/x/sync/errgroup"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck probes one dependency. A failing critical check turns the
// whole service unhealthy; other failures only degrade it.
type HealthCheck struct {
	Name     string
	Critical bool
	Check    func(ctx context.Context) error
}

// SystemHandler serves the health and info endpoints
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	checks    []HealthCheck
	clock     clockwork.Clock
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(name, version string, clock clockwork.Clock, checks ...HealthCheck) *SystemHandler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SystemHandler{
		name:      name,
		version:   version,
		checks:    checks,
		clock:     clock,
		startTime: clock.Now(),
	}
}

// HealthResponse reports the state of the service and its dependencies
type HealthResponse struct {
	Status    string            `json:"status" example:"healthy" enums:"healthy,degraded,unhealthy"`
	Checks    map[string]string `json:"checks"`
	Timestamp time.Time         `json:"timestamp"`
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name" example:"ledgerbook"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.24.0"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// Health godoc
// @ID           getHealth
// @Summary      Health check
// @Description  Probe the database and other dependencies. Answers 503 when a critical one is down.
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=HealthResponse}
// @Failure      503 {object} dto.Response{data=HealthResponse}
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	results := make(map[string]string, len(h.checks))
	var (
		mu       sync.Mutex
		critical bool
		degraded bool
	)

	g, ctx := errgroup.WithContext(c.Request.Context())
	for _, check := range h.checks {
		g.Go(func() error {
			checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
			defer cancel()
			err := check.Check(checkCtx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				results[check.Name] = "down"
				if check.Critical {
					critical = true
				} else {
					degraded = true
				}
				return nil
			}
			results[check.Name] = "up"
			return nil
		})
	}
	_ = g.Wait()

	resp := HealthResponse{
		Status:    "healthy",
		Checks:    results,
		Timestamp: h.clock.Now().UTC(),
	}
	status := http.StatusOK
	switch {
	case critical:
		resp.Status = "unhealthy"
		status = http.StatusServiceUnavailable
	case degraded:
		resp.Status = "degraded"
	}
	c.JSON(status, dto.Response{Success: status == http.StatusOK, Data: resp})
}

// Info godoc
// @ID           getSystemInfo
// @Summary      Get system information
// @Description  Returns the service name, version and uptime
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=SystemInfoResponse}
// @Security     BearerAuth
// @Router       /system/info [get]
func (h *SystemHandler) Info(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    h.clock.Since(h.startTime).Round(time.Second).String(),
	})
}
