package rules

import (
	"fmt"

	"github.com/dashu-baba/docker-service-manager/internal/config"
	"github.com/dashu-baba/docker-service-manager/internal/types"
)

func checkMemory(report *types.HealthReport, cfg *config.Config) {
	// MEMORY_PRESSURE
	if report.Host == nil || report.Host.Memory.Total == 0 {
		return
	}
	mem := report.Host.Memory
	threshold := cfg.Rules.Memory.Threshold
	if mem.UsedPercent <= float64(threshold) {
		return
	}
	severity := SeverityMedium
	if mem.UsedPercent > 95 || report.Host.Swap.UsedPercent > 50 {
		severity = SeverityHigh
	}
	report.Issues = append(report.Issues, types.Issue{
		RuleID:      "MEMORY_PRESSURE",
		Subject:     "host=" + report.Host.Hostname,
		Severity:    severity,
		Category:    "resources",
		Description: fmt.Sprintf("Memory usage is %.2f%%, exceeding threshold of %d%%", mem.UsedPercent, threshold),
		Facts: map[string]interface{}{
			"total_bytes":       mem.Total,
			"used_bytes":        mem.Used,
			"available_bytes":   mem.Available,
			"used_percent":      mem.UsedPercent,
			"swap_used_percent": report.Host.Swap.UsedPercent,
			"threshold":         threshold,
		},
		Solutions: []string{
			"Find the largest consumers: 'docker stats --no-stream'.",
			"Set memory limits on containers: 'docker update --memory <limit> <container>'.",
			"Stop containers that are no longer needed.",
			"Add memory or swap to the host.",
		},
	})
}

func checkCPU(report *types.HealthReport, cfg *config.Config) {
	// CPU_SATURATION
	if report.Host == nil {
		return
	}
	threshold := cfg.Rules.CPU.Threshold
	if report.Host.CPUPercent <= float64(threshold) {
		return
	}
	severity := SeverityMedium
	if report.Host.CPUCount > 0 && report.Host.Load5 > float64(2*report.Host.CPUCount) {
		severity = SeverityHigh
	}
	report.Issues = append(report.Issues, types.Issue{
		RuleID:      "CPU_SATURATION",
		Subject:     "host=" + report.Host.Hostname,
		Severity:    severity,
		Category:    "resources",
		Description: fmt.Sprintf("CPU usage is %.2f%%, exceeding threshold of %d%%", report.Host.CPUPercent, threshold),
		Facts: map[string]interface{}{
			"cpu_percent": report.Host.CPUPercent,
			"cpu_count":   report.Host.CPUCount,
			"load1":       report.Host.Load1,
			"load5":       report.Host.Load5,
			"load15":      report.Host.Load15,
			"threshold":   threshold,
		},
		Solutions: []string{
			"Find the busiest containers: 'docker stats --no-stream'.",
			"Limit CPU for noisy containers: 'docker update --cpus <n> <container>'.",
			"Check for runaway processes on the host: 'top' or 'htop'.",
		},
	})
}
