package rules

import (
	"fmt"
	"strings"

	"github.com/dashu-baba/docker-service-manager/internal/config"
	"github.com/dashu-baba/docker-service-manager/internal/types"
)

func checkDaemonDown(report *types.HealthReport) {
	// DAEMON_DOWN
	st := report.Service
	if st.Reachable {
		return
	}
	solutions := []string{
		fmt.Sprintf("Start the daemon: 'dsm service start' (or 'sudo systemctl start %s').", st.Unit),
		fmt.Sprintf("Check why it stopped: 'journalctl -u %s --since today'.", st.Unit),
	}
	if !st.Enabled {
		solutions = append(solutions, "Enable start at boot: 'dsm service enable'.")
	}
	solutions = append(solutions, "Verify DOCKER_HOST or docker.host in dsm.yml points at the right socket.")

	report.Issues = append(report.Issues, types.Issue{
		RuleID:      "DAEMON_DOWN",
		Subject:     "unit=" + st.Unit,
		Severity:    SeverityHigh,
		Category:    "daemon",
		Description: fmt.Sprintf("Docker daemon is not reachable (unit %s is %s)", st.Unit, st.State),
		Facts: map[string]interface{}{
			"unit":    st.Unit,
			"state":   string(st.State),
			"enabled": st.Enabled,
		},
		Solutions: solutions,
	})
}

func checkEngineVersion(report *types.HealthReport, cfg *config.Config) {
	// ENGINE_OUTDATED
	if report.Docker == nil || cfg.Rules.Engine.MinVersion == "" {
		return
	}
	minVer, err := config.ParseEngineVersion(cfg.Rules.Engine.MinVersion)
	if err != nil {
		return
	}
	raw := strings.TrimSpace(report.Docker.Version)
	current, err := config.ParseEngineVersion(raw)
	if err != nil {
		return
	}
	if !current.LessThan(minVer) {
		return
	}

	severity := SeverityMedium
	if current.Major() < minVer.Major() {
		severity = SeverityHigh
	}
	report.Issues = append(report.Issues, types.Issue{
		RuleID:      "ENGINE_OUTDATED",
		Subject:     "engine",
		Severity:    severity,
		Category:    "daemon",
		Description: fmt.Sprintf("Docker Engine %s is older than the minimum supported version %s", raw, minVer.Original()),
		Facts: map[string]interface{}{
			"version":     raw,
			"api_version": report.Docker.APIVersion,
			"min_version": minVer.Original(),
		},
		Solutions: []string{
			"Upgrade Docker Engine from your distribution or https://docs.docker.com/engine/install/.",
			"Review the release notes for breaking changes before upgrading.",
			"Restart the daemon after upgrading: 'dsm service restart'.",
		},
	})
}
