package demo

import (
	"context"
	"sync"

	"github.com/dashu-baba/docker-service-manager/internal/apperr"
	"github.com/dashu-baba/docker-service-manager/internal/types"
)

type unit struct {
	active  bool
	enabled bool
}

// ServiceManager keeps unit state in memory. Every known unit starts active
// and enabled.
type ServiceManager struct {
	mu    sync.Mutex
	units map[string]*unit
}

func NewServiceManager(units ...string) *ServiceManager {
	m := &ServiceManager{units: make(map[string]*unit, len(units))}
	for _, u := range units {
		m.units[u] = &unit{active: true, enabled: true}
	}
	return m
}

func (m *ServiceManager) Name() string { return "demo" }

// Active reports whether a unit is running. Unknown units are not.
func (m *ServiceManager) Active(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.units[name]
	return ok && u.active
}

func (m *ServiceManager) with(verb, name string, fn func(u *unit)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.units[name]
	if !ok {
		return apperr.New(verb+" "+name, apperr.ErrNotFound, "unit %s not found", name)
	}
	fn(u)
	return nil
}

func (m *ServiceManager) IsActive(_ context.Context, name string) (types.DaemonState, error) {
	state := types.StateUnknown
	err := m.with("status", name, func(u *unit) {
		state = types.StateStopped
		if u.active {
			state = types.StateRunning
		}
	})
	return state, err
}

func (m *ServiceManager) IsEnabled(_ context.Context, name string) (bool, error) {
	var enabled bool
	err := m.with("is-enabled", name, func(u *unit) { enabled = u.enabled })
	return enabled, err
}

func (m *ServiceManager) Start(_ context.Context, name string) error {
	return m.with("start", name, func(u *unit) { u.active = true })
}

func (m *ServiceManager) Stop(_ context.Context, name string) error {
	return m.with("stop", name, func(u *unit) { u.active = false })
}

func (m *ServiceManager) Restart(_ context.Context, name string) error {
	return m.with("restart", name, func(u *unit) { u.active = true })
}

func (m *ServiceManager) Enable(_ context.Context, name string) error {
	return m.with("enable", name, func(u *unit) { u.enabled = true })
}

func (m *ServiceManager) Disable(_ context.Context, name string) error {
	return m.with("disable", name, func(u *unit) { u.enabled = false })
}
