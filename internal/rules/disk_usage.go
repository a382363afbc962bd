package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dashu-baba/docker-service-manager/internal/config"
	"github.com/dashu-baba/docker-service-manager/internal/types"
)

func checkDiskUsage(report *types.HealthReport, cfg *config.Config) {
	// DISK_USAGE_HIGH
	if report.Host == nil {
		return
	}
	paths := make([]string, 0, len(report.Host.DiskUsage))
	for path := range report.Host.DiskUsage {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	threshold := cfg.Rules.DiskUsage.Threshold
	for _, path := range paths {
		disk := report.Host.DiskUsage[path]
		if disk == nil || disk.UsedPercent <= float64(threshold) {
			continue
		}
		severity := SeverityMedium
		if disk.UsedPercent > 90 {
			severity = SeverityHigh
		} else if disk.UsedPercent < 85 {
			severity = SeverityLow
		}

		solutions := []string{
			"Identify and remove unused files or directories.",
			"Consider increasing disk space if possible.",
		}
		if strings.Contains(path, "docker") {
			solutions = append(solutions,
				"Prune stopped containers: 'dsm container prune'.",
				"Prune unused images: 'dsm image prune --all'.",
				"Run 'docker system df' to see what is reclaimable.",
			)
		} else if path == "/" {
			solutions = append(solutions,
				"Check for large log files in /var/log and rotate them.",
				"Remove old kernel packages: 'apt autoremove' (on Ubuntu/Debian).",
			)
		}

		report.Issues = append(report.Issues, types.Issue{
			RuleID:      "DISK_USAGE_HIGH",
			Subject:     "path=" + path,
			Severity:    severity,
			Category:    "disk_usage",
			Description: fmt.Sprintf("Disk usage for %s is %.2f%%, exceeding threshold of %d%%", path, disk.UsedPercent, threshold),
			Facts: map[string]interface{}{
				"path":         path,
				"used_bytes":   disk.Used,
				"total_bytes":  disk.Total,
				"used_percent": disk.UsedPercent,
				"threshold":    threshold,
			},
			Solutions: solutions,
		})
	}
}
