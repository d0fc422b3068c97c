package webapi

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	httptransport "quill-server-go/internal/transport/http"
)

var startedAt = time.Now()

// handleSystemStatus reports host and process health for operators.
// Individual probe failures degrade to zero values rather than
// failing the whole response.
func (s *Service) handleSystemStatus(c *gin.Context) {
	status := gin.H{
		"goVersion":  runtime.Version(),
		"goroutines": runtime.NumGoroutine(),
		"uptime":     time.Since(startedAt).Round(time.Second).String(),
	}

	if info, err := host.Info(); err == nil {
		status["host"] = gin.H{
			"hostname": info.Hostname,
			"os":       info.OS,
			"platform": info.Platform,
			"uptime":   info.Uptime,
		}
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		status["memory"] = gin.H{
			"total":       vm.Total,
			"used":        vm.Used,
			"usedPercent": vm.UsedPercent,
		}
	}
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		status["cpuPercent"] = percents[0]
	}

	status["rateLimits"] = s.admission.Stats()

	httptransport.RespondSuccess(c, http.StatusOK, status, "")
}
