package rules

import (
	"fmt"
	"sort"

	"github.com/dashu-baba/docker-service-manager/internal/config"
	"github.com/dashu-baba/docker-service-manager/internal/types"
)

func checkStoppedContainers(report *types.HealthReport, cfg *config.Config) {
	// STOPPED_CONTAINERS
	threshold := cfg.Rules.StoppedContainers.Threshold
	stopped := report.Counts.ContainersStopped
	if stopped <= threshold {
		return
	}
	report.Issues = append(report.Issues, types.Issue{
		RuleID:      "STOPPED_CONTAINERS",
		Subject:     "containers_stopped",
		Severity:    SeverityLow,
		Category:    "containers",
		Description: fmt.Sprintf("%d stopped containers found, exceeding threshold of %d", stopped, threshold),
		Facts: map[string]interface{}{
			"stopped":   stopped,
			"total":     report.Counts.ContainersTotal,
			"threshold": threshold,
		},
		Solutions: []string{
			"List them: 'dsm container ls --all'.",
			"Remove them all: 'dsm container prune'.",
			"Run short-lived containers with '--rm' so they clean up after themselves.",
		},
	})
}

func checkUnhealthyContainers(report *types.HealthReport) {
	// UNHEALTHY_CONTAINERS
	names := append([]string(nil), report.Unhealthy...)
	sort.Strings(names)
	for _, name := range names {
		report.Issues = append(report.Issues, types.Issue{
			RuleID:      "UNHEALTHY_CONTAINERS",
			Subject:     "container=" + name,
			Severity:    SeverityHigh,
			Category:    "healthcheck",
			Description: fmt.Sprintf("Container %s is failing its healthcheck", name),
			Facts: map[string]interface{}{
				"container_name": name,
				"health_status":  "unhealthy",
			},
			Solutions: []string{
				fmt.Sprintf("Check container logs: 'dsm container logs %s'.", name),
				fmt.Sprintf("Check healthcheck logs: 'docker inspect %s --format \"{{json .State.Health}}\"'.", name),
				"Review the healthcheck command, timeout and interval.",
				"Check application responsiveness and dependencies.",
			},
		})
	}
}
