package demo

import (
	"context"
	"errors"
	"testing"

	"github.com/dashu-baba/docker-service-manager/internal/apperr"
	"github.com/dashu-baba/docker-service-manager/internal/types"
)

func TestServiceManager(t *testing.T) {
	m := NewServiceManager("docker.service")
	ctx := context.Background()

	state, err := m.IsActive(ctx, "docker.service")
	if err != nil || state != types.StateRunning {
		t.Fatalf("IsActive = %v, %v; want running", state, err)
	}

	steps := []struct {
		do          func(context.Context, string) error
		wantState   types.DaemonState
		wantEnabled bool
	}{
		{do: m.Stop, wantState: types.StateStopped, wantEnabled: true},
		{do: m.Disable, wantState: types.StateStopped, wantEnabled: false},
		{do: m.Restart, wantState: types.StateRunning, wantEnabled: false},
		{do: m.Enable, wantState: types.StateRunning, wantEnabled: true},
	}
	for i, s := range steps {
		if err := s.do(ctx, "docker.service"); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		state, _ := m.IsActive(ctx, "docker.service")
		enabled, _ := m.IsEnabled(ctx, "docker.service")
		if state != s.wantState || enabled != s.wantEnabled {
			t.Errorf("step %d: state=%v enabled=%v, want %v %v", i, state, enabled, s.wantState, s.wantEnabled)
		}
	}
}

func TestServiceManagerUnknownUnit(t *testing.T) {
	m := NewServiceManager("docker.service")
	err := m.Start(context.Background(), "containerd.service")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Start unknown unit error = %v, want not found", err)
	}
	if m.Active("containerd.service") {
		t.Error("unknown unit reported active")
	}
}
