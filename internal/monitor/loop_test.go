package monitor

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dashu-baba/docker-service-manager/internal/types"
)

type fakeReporter struct {
	quick, full int
	err         error
}

func (f *fakeReporter) report(ctx context.Context, kind types.ReportKind) (*types.HealthReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return &types.HealthReport{
		Kind:    kind,
		Service: types.ServiceStatus{State: types.StateRunning, Reachable: true},
		Counts:  types.Counts{ContainersRunning: 2},
	}, nil
}

func (f *fakeReporter) Quick(ctx context.Context) (*types.HealthReport, error) {
	f.quick++
	return f.report(ctx, types.ReportQuick)
}

func (f *fakeReporter) Full(ctx context.Context) (*types.HealthReport, error) {
	f.full++
	return f.report(ctx, types.ReportFull)
}

func TestLoop_RunsUntilCancelled(t *testing.T) {
	tests := []struct {
		name string
		full bool
		kind types.ReportKind
	}{
		{"quick", false, types.ReportQuick},
		{"full", true, types.ReportFull},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			var logs bytes.Buffer
			rep := &fakeReporter{}
			var seen []*types.HealthReport
			obs := ObserverFunc(func(r *types.HealthReport) {
				seen = append(seen, r)
				if len(seen) == 3 {
					cancel()
				}
			})

			loop := NewLoop(rep, time.Millisecond, tt.full, zerolog.New(&logs), obs)
			if err := loop.Run(ctx); err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if len(seen) != 3 {
				t.Fatalf("observed %d reports, want 3", len(seen))
			}
			for _, r := range seen {
				if r.Kind != tt.kind {
					t.Fatalf("report kind = %s, want %s", r.Kind, tt.kind)
				}
			}
			if tt.full && rep.quick != 0 {
				t.Fatalf("full loop produced %d quick reports", rep.quick)
			}
			if !tt.full && rep.full != 0 {
				t.Fatalf("quick loop produced %d full reports", rep.full)
			}
			if !strings.Contains(logs.String(), `"message":"health report"`) {
				t.Fatalf("missing report summary in logs:\n%s", logs.String())
			}
		})
	}
}

func TestLoop_ReturnsReporterError(t *testing.T) {
	boom := errors.New("boom")
	loop := NewLoop(&fakeReporter{err: boom}, time.Millisecond, false, zerolog.Nop())
	if err := loop.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want %v", err, boom)
	}
}
