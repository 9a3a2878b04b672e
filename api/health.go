package api

import (
	"net/http"
	"os"
	"runtime"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/process"
)

// Health reports liveness plus a small process self-portrait (RSS, CPU,
// goroutines) for ops dashboards.
func (s *Server) Health(c *gin.Context) {
	payload := gin.H{
		"status":     "ok",
		"goroutines": runtime.NumGoroutine(),
	}

	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mem, err := p.MemoryInfo(); err == nil {
			payload["rss_mb"] = mem.RSS >> 20
		}
		if cpu, err := p.CPUPercent(); err == nil {
			payload["cpu_percent"] = cpu
		}
	}

	c.JSON(http.StatusOK, payload)
}
