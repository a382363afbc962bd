package containers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/errdefs"

	"github.com/dashu-baba/docker-service-manager/internal/apperr"
	dtypes "github.com/dashu-baba/docker-service-manager/internal/types"
)

// maxStatsWorkers bounds the concurrent stats requests. Each non-streaming
// request takes about a second because the daemon samples twice.
const maxStatsWorkers = 8

// Stats samples CPU, memory, PIDs and network counters of every running
// container. Containers that exit while being sampled are skipped.
func (m *Manager) Stats(ctx context.Context) ([]dtypes.ContainerStats, error) {
	running, err := m.List(ctx, false)
	if err != nil {
		return nil, err
	}

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		out  = make([]dtypes.ContainerStats, 0, len(running))
		errs []error
		sem  = make(chan struct{}, maxStatsWorkers)
	)
	for _, c := range running {
		wg.Add(1)
		go func(c dtypes.ContainerRecord) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			st, err := sample(ctx, m.api, c.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case errdefs.IsNotFound(err):
				m.logger.Debug().Str("container", c.Name).Msg("container gone before stats were read")
			case err != nil:
				errs = append(errs, apperr.Classify("container stats "+c.Name, err))
			default:
				st.ID, st.Name = c.ID, c.Name
				out = append(out, st)
			}
		}(c)
	}
	wg.Wait()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	m.logger.Debug().Int("count", len(out)).Int("errors", len(errs)).Msg("sampled container stats")
	return out, errors.Join(errs...)
}

func sample(ctx context.Context, api containerAPI, id string) (dtypes.ContainerStats, error) {
	resp, err := api.ContainerStats(ctx, id, false)
	if err != nil {
		return dtypes.ContainerStats{}, err
	}
	defer resp.Body.Close()

	var raw container.StatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return dtypes.ContainerStats{}, fmt.Errorf("decode stats: %w", err)
	}
	return FromStatsResponse(&raw), nil
}

// FromStatsResponse converts a daemon stats sample using the same formulas
// as `docker stats`: CPU relative to the host's online CPUs, memory without
// the reclaimable page cache.
func FromStatsResponse(s *container.StatsResponse) dtypes.ContainerStats {
	st := dtypes.ContainerStats{
		CPUPercent:  cpuPercent(s),
		MemoryLimit: s.MemoryStats.Limit,
		PIDs:        s.PidsStats.Current,
	}
	st.MemoryUsage = memoryUsage(s.MemoryStats)
	if st.MemoryLimit > 0 {
		st.MemoryPercent = float64(st.MemoryUsage) / float64(st.MemoryLimit) * 100
	}
	for _, n := range s.Networks {
		st.NetRxBytes += n.RxBytes
		st.NetTxBytes += n.TxBytes
	}
	return st
}

func cpuPercent(s *container.StatsResponse) float64 {
	cur, prev := s.CPUStats, s.PreCPUStats
	if cur.CPUUsage.TotalUsage < prev.CPUUsage.TotalUsage || cur.SystemUsage <= prev.SystemUsage {
		return 0
	}
	cpuDelta := float64(cur.CPUUsage.TotalUsage - prev.CPUUsage.TotalUsage)
	systemDelta := float64(cur.SystemUsage - prev.SystemUsage)
	online := float64(cur.OnlineCPUs)
	if online == 0 {
		online = float64(len(cur.CPUUsage.PercpuUsage))
	}
	if online == 0 {
		online = 1
	}
	return cpuDelta / systemDelta * online * 100
}

// memoryUsage subtracts inactive file pages: total_inactive_file on cgroup
// v1, inactive_file on v2.
func memoryUsage(m container.MemoryStats) uint64 {
	for _, key := range []string{"total_inactive_file", "inactive_file"} {
		if v, ok := m.Stats[key]; ok && v < m.Usage {
			return m.Usage - v
		}
	}
	return m.Usage
}

// FindStats returns the sample of the container named (or ID-prefixed) ref.
func FindStats(list []dtypes.ContainerStats, ref string) (dtypes.ContainerStats, bool) {
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "/")
	for _, st := range list {
		if st.Name == ref || (ref != "" && strings.HasPrefix(st.ID, ref)) {
			return st, true
		}
	}
	return dtypes.ContainerStats{}, false
}
