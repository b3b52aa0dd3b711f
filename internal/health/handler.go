package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Dependency is something the console needs in order to serve requests.
type Dependency struct {
	Name string
	Ping func(ctx context.Context) error
}

type HealthHandler struct {
	deps []Dependency
}

func NewHealthHandler(deps ...Dependency) *HealthHandler {
	return &HealthHandler{deps: deps}
}

func (h *HealthHandler) Check(c *gin.Context) {
	if len(h.deps) == 0 {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := gin.H{}
	healthy := true
	for _, d := range h.deps {
		if err := d.Ping(ctx); err != nil {
			status[d.Name] = err.Error()
			healthy = false
			continue
		}
		status[d.Name] = "ok"
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "dependencies": status})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "dependencies": status})
}
