package collector

import (
	"context"
	"sort"
	"strings"

	"github.com/docker/docker/api/types/container"

	"github.com/dashu-baba/docker-service-manager/internal/apperr"
	"github.com/dashu-baba/docker-service-manager/internal/types"
)

// countContainers tallies every container by state and returns the names of
// those failing their healthcheck.
func countContainers(ctx context.Context, api dockerAPI) (types.Counts, []string, error) {
	list, err := api.ContainerList(ctx, container.ListOptions{All: true})
	if err != nil {
		return types.Counts{}, nil, apperr.Classify("list containers", err)
	}

	counts := types.Counts{ContainersTotal: len(list)}
	var unhealthy []string
	for _, c := range list {
		if string(c.State) == "running" {
			counts.ContainersRunning++
		} else {
			counts.ContainersStopped++
		}
		if healthFromStatus(c.Status) == healthUnhealthy {
			counts.ContainersUnhealthy++
			name := c.ID
			if len(c.Names) > 0 {
				name = strings.TrimPrefix(c.Names[0], "/")
			}
			unhealthy = append(unhealthy, name)
		}
	}

	// Deterministic ordering for diff-friendly output
	sort.Strings(unhealthy)
	return counts, unhealthy, nil
}
