package collector

import "strings"

const (
	healthNone      = "none"
	healthStarting  = "starting"
	healthHealthy   = "healthy"
	healthUnhealthy = "unhealthy"
)

// healthFromStatus extracts the healthcheck state from a container status
// line such as "Up 2 hours (unhealthy)" or "Up 5 seconds (health: starting)".
func healthFromStatus(status string) string {
	s := strings.ToLower(strings.TrimSpace(status))
	open := strings.LastIndex(s, "(")
	if open < 0 || !strings.HasSuffix(s, ")") {
		return healthNone
	}
	inner := strings.TrimSpace(s[open+1 : len(s)-1])
	inner = strings.TrimPrefix(inner, "health:")
	switch strings.TrimSpace(inner) {
	case healthUnhealthy:
		return healthUnhealthy
	case healthHealthy:
		return healthHealthy
	case healthStarting:
		return healthStarting
	default:
		return healthNone
	}
}
