package demo

import (
	"context"
	"sync/atomic"

	"github.com/dashu-baba/docker-service-manager/internal/types"
)

// Notice is printed before any demo output.
const Notice = "DEMO MODE: no changes are made to this system; all data is simulated."

// Backend bundles the fakes that replace the Docker client, the service
// manager and the host sampler.
type Backend struct {
	Engine   *Engine
	Services *ServiceManager
	Host     *HostSampler
}

// New wires a demo backend. The engine answers only while dockerUnit is
// active.
func New(dockerUnit, socketUnit string) *Backend {
	svc := NewServiceManager(dockerUnit, socketUnit)
	return &Backend{
		Engine:   NewEngine(func() bool { return svc.Active(dockerUnit) }),
		Services: svc,
		Host:     &HostSampler{},
	}
}

// HostSampler returns fixed host metrics.
type HostSampler struct {
	calls atomic.Int64
}

// Calls is the number of samples taken so far.
func (h *HostSampler) Calls() int64 { return h.calls.Load() }

func (h *HostSampler) Sample(_ context.Context) (*types.HostMetrics, error) {
	h.calls.Add(1)
	const gib = 1 << 30
	return &types.HostMetrics{
		Hostname:      "demo-host",
		OS:            "linux",
		Platform:      "ubuntu 24.04",
		KernelVersion: "6.8.0-45-generic",
		UptimeSeconds: 3*86400 + 4*3600,
		CPUCount:      4,
		CPUPercent:    37.5,
		Load1:         1.42,
		Load5:         1.18,
		Load15:        0.97,
		Memory: types.MemoryInfo{
			Total:       8 * gib,
			Used:        6 * gib,
			Available:   2 * gib,
			UsedPercent: 75,
		},
		Swap: types.MemoryInfo{
			Total:       2 * gib,
			Used:        gib / 4,
			Available:   2*gib - gib/4,
			UsedPercent: 12.5,
		},
		DiskUsage: map[string]*types.DiskInfo{
			"/":               {Used: 41 * gib, Total: 50 * gib, UsedPercent: 82},
			"/var/lib/docker": {Used: 41 * gib, Total: 50 * gib, UsedPercent: 82},
		},
		Network: []types.NetworkIO{
			{Name: "eth0", BytesSent: 912 << 20, BytesRecv: 3 * gib, PacketsSent: 840211, PacketsRecv: 2210933},
		},
	}, nil
}
