// Package rules turns a full health report into findings.
package rules

import (
	"sort"
	"strings"

	"github.com/dashu-baba/docker-service-manager/internal/config"
	"github.com/dashu-baba/docker-service-manager/internal/types"
)

const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// Evaluate runs all rules and appends issues to report.Issues.
// It also ensures deterministic ordering of report.Issues.
func Evaluate(report *types.HealthReport, cfg *config.Config) {
	if report == nil || cfg == nil {
		return
	}

	checkDaemonDown(report)
	checkEngineVersion(report, cfg)
	checkDiskUsage(report, cfg)
	checkMemory(report, cfg)
	checkCPU(report, cfg)
	checkStoppedContainers(report, cfg)
	checkUnhealthyContainers(report)
	checkDanglingImages(report, cfg)
	checkStorageBloat(report, cfg)

	SortIssues(report.Issues)
}

// SortIssues orders issues by severity, rule ID and subject.
func SortIssues(issues []types.Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		if SeverityRank(issues[i].Severity) != SeverityRank(issues[j].Severity) {
			return SeverityRank(issues[i].Severity) < SeverityRank(issues[j].Severity)
		}
		if issues[i].RuleID != issues[j].RuleID {
			return issues[i].RuleID < issues[j].RuleID
		}
		return issues[i].Subject < issues[j].Subject
	})
}

func SeverityRank(s string) int {
	switch strings.ToLower(s) {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	case SeverityLow:
		return 2
	default:
		return 3
	}
}
