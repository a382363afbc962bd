package collector

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"

	"github.com/dashu-baba/docker-service-manager/internal/config"
	"github.com/dashu-baba/docker-service-manager/internal/types"
)

// SystemSampler reads host metrics through gopsutil.
type SystemSampler struct {
	DiskPaths []string
	CPUSample time.Duration
}

func NewSystemSampler(cfg config.ReportConfig) *SystemSampler {
	return &SystemSampler{
		DiskPaths: cfg.DiskPaths,
		CPUSample: time.Duration(cfg.CPUSampleMillis) * time.Millisecond,
	}
}

// Sample collects every metric it can. The returned metrics are never nil;
// failures of individual probes are joined into the error.
func (s *SystemSampler) Sample(ctx context.Context) (*types.HostMetrics, error) {
	m := &types.HostMetrics{
		OS:        runtime.GOOS,
		CPUCount:  runtime.NumCPU(),
		DiskUsage: make(map[string]*types.DiskInfo),
	}
	var errs []error

	if info, err := host.InfoWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("host info: %w", err))
		m.Hostname, _ = os.Hostname()
	} else {
		m.Hostname = info.Hostname
		m.OS = info.OS
		m.Platform = strings.TrimSpace(info.Platform + " " + info.PlatformVersion)
		m.KernelVersion = info.KernelVersion
		m.UptimeSeconds = info.Uptime
	}

	if n, err := cpu.CountsWithContext(ctx, true); err == nil && n > 0 {
		m.CPUCount = n
	}
	interval := s.CPUSample
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	if pct, err := cpu.PercentWithContext(ctx, interval, false); err != nil {
		errs = append(errs, fmt.Errorf("cpu: %w", err))
	} else if len(pct) > 0 {
		m.CPUPercent = pct[0]
	}

	if avg, err := load.AvgWithContext(ctx); err == nil {
		m.Load1, m.Load5, m.Load15 = avg.Load1, avg.Load5, avg.Load15
	} else if runtime.GOOS != "windows" {
		errs = append(errs, fmt.Errorf("load: %w", err))
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("memory: %w", err))
	} else {
		m.Memory = types.MemoryInfo{Total: vm.Total, Used: vm.Used, Available: vm.Available, UsedPercent: vm.UsedPercent}
	}
	if sw, err := mem.SwapMemoryWithContext(ctx); err == nil {
		m.Swap = types.MemoryInfo{Total: sw.Total, Used: sw.Used, Available: sw.Free, UsedPercent: sw.UsedPercent}
	}

	for _, path := range s.DiskPaths {
		// Paths such as /var/lib/docker may not exist on this host.
		if _, err := os.Stat(path); err != nil {
			continue
		}
		u, err := disk.UsageWithContext(ctx, path)
		if err != nil {
			errs = append(errs, fmt.Errorf("disk %s: %w", path, err))
			continue
		}
		m.DiskUsage[path] = &types.DiskInfo{Used: u.Used, Total: u.Total, UsedPercent: u.UsedPercent}
	}

	if counters, err := net.IOCountersWithContext(ctx, true); err != nil {
		errs = append(errs, fmt.Errorf("network: %w", err))
	} else {
		for _, c := range counters {
			if c.Name == "lo" || (c.BytesSent == 0 && c.BytesRecv == 0) {
				continue
			}
			m.Network = append(m.Network, types.NetworkIO{
				Name:        c.Name,
				BytesSent:   c.BytesSent,
				BytesRecv:   c.BytesRecv,
				PacketsSent: c.PacketsSent,
				PacketsRecv: c.PacketsRecv,
			})
		}
	}

	return m, errors.Join(errs...)
}
