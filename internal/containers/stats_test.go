package containers

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/docker/docker/api/types/container"
	"github.com/rs/zerolog"

	"github.com/dashu-baba/docker-service-manager/internal/demo"
)

func decodeStats(t *testing.T, raw string) *container.StatsResponse {
	t.Helper()
	var s container.StatsResponse
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return &s
}

func TestFromStatsResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantCPU float64
		wantMem uint64
		wantPct float64
	}{
		{
			name: "cgroup v2",
			raw: `{"cpu_stats":{"cpu_usage":{"total_usage":1200},"system_cpu_usage":20000,"online_cpus":2},
				"precpu_stats":{"cpu_usage":{"total_usage":200},"system_cpu_usage":10000},
				"memory_stats":{"usage":300,"limit":1000,"stats":{"inactive_file":100}}}`,
			wantCPU: 20, wantMem: 200, wantPct: 20,
		},
		{
			name: "cgroup v1 with percpu fallback",
			raw: `{"cpu_stats":{"cpu_usage":{"total_usage":500,"percpu_usage":[1,2,3,4]},"system_cpu_usage":2000},
				"precpu_stats":{"cpu_usage":{"total_usage":0},"system_cpu_usage":0},
				"memory_stats":{"usage":500,"limit":2000,"stats":{"total_inactive_file":100}}}`,
			wantCPU: 100, wantMem: 400, wantPct: 20,
		},
		{
			name:    "stopped container",
			raw:     `{}`,
			wantCPU: 0, wantMem: 0, wantPct: 0,
		},
		{
			name:    "cache larger than usage is ignored",
			raw:     `{"memory_stats":{"usage":100,"limit":0,"stats":{"inactive_file":500}}}`,
			wantMem: 100,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := FromStatsResponse(decodeStats(t, tt.raw))
			if math.Abs(st.CPUPercent-tt.wantCPU) > 0.001 {
				t.Errorf("CPUPercent = %v, want %v", st.CPUPercent, tt.wantCPU)
			}
			if st.MemoryUsage != tt.wantMem {
				t.Errorf("MemoryUsage = %d, want %d", st.MemoryUsage, tt.wantMem)
			}
			if math.Abs(st.MemoryPercent-tt.wantPct) > 0.001 {
				t.Errorf("MemoryPercent = %v, want %v", st.MemoryPercent, tt.wantPct)
			}
		})
	}
}

func TestStats_RunningContainersOnly(t *testing.T) {
	m, _ := newManager()
	list, err := m.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}

	want := []struct {
		name string
		cpu  float64
		mem  float64
	}{
		{"db", 30, 75},
		{"web", 10, 25},
		{"worker", 90, 93.75},
	}
	if len(list) != len(want) {
		t.Fatalf("got %d samples, want %d: %+v", len(list), len(want), list)
	}
	for i, w := range want {
		st := list[i]
		if st.Name != w.name {
			t.Fatalf("sample %d is %s, want %s", i, st.Name, w.name)
		}
		if math.Abs(st.CPUPercent-w.cpu) > 0.01 || math.Abs(st.MemoryPercent-w.mem) > 0.01 {
			t.Errorf("%s: cpu=%.2f mem=%.2f, want %.2f %.2f", st.Name, st.CPUPercent, st.MemoryPercent, w.cpu, w.mem)
		}
		if st.PIDs == 0 || st.NetRxBytes == 0 {
			t.Errorf("%s: missing pids or network counters: %+v", st.Name, st)
		}
	}

	if _, ok := FindStats(list, "/web"); !ok {
		t.Error("FindStats(/web) found nothing")
	}
	if _, ok := FindStats(list, "scratchpad"); ok {
		t.Error("stopped container has a sample")
	}
}

func TestStats_DaemonDown(t *testing.T) {
	m := NewManager(demo.NewEngine(func() bool { return false }), zerolog.Nop())
	if _, err := m.Stats(context.Background()); err == nil {
		t.Fatal("expected an error with the daemon down")
	}
}
