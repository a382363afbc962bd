package service

import (
	"context"
	"errors"
	"os/user"
	"sync"
	"testing"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/rs/zerolog"

	"github.com/dashu-baba/docker-service-manager/internal/apperr"
	dtypes "github.com/dashu-baba/docker-service-manager/internal/types"
)

type memManager struct {
	mu      sync.Mutex
	active  bool
	enabled bool
}

func (m *memManager) Name() string { return "mem" }

func (m *memManager) IsActive(context.Context, string) (dtypes.DaemonState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active {
		return dtypes.StateRunning, nil
	}
	return dtypes.StateStopped, nil
}

func (m *memManager) IsEnabled(context.Context, string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled, nil
}

func (m *memManager) set(active, enabled *bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if active != nil {
		m.active = *active
	}
	if enabled != nil {
		m.enabled = *enabled
	}
	return nil
}

func ptr(b bool) *bool { return &b }

func (m *memManager) Start(context.Context, string) error   { return m.set(ptr(true), nil) }
func (m *memManager) Stop(context.Context, string) error    { return m.set(ptr(false), nil) }
func (m *memManager) Restart(context.Context, string) error { return m.set(ptr(true), nil) }
func (m *memManager) Enable(context.Context, string) error  { return m.set(nil, ptr(true)) }
func (m *memManager) Disable(context.Context, string) error { return m.set(nil, ptr(false)) }

type fakePinger struct {
	mu    sync.Mutex
	up    bool
	pings int
}

func (p *fakePinger) Ping(context.Context) (types.Ping, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pings++
	if !p.up {
		return types.Ping{}, errors.New("connection refused")
	}
	return types.Ping{APIVersion: "1.47"}, nil
}

func (p *fakePinger) ServerVersion(context.Context) (types.Version, error) {
	return types.Version{Version: "27.3.1", APIVersion: "1.47"}, nil
}

func TestController_EnableDisableReflectedInStatus(t *testing.T) {
	mgr := &memManager{active: true}
	c := NewController(mgr, Options{Unit: "docker.service", Pinger: &fakePinger{up: true}}, zerolog.Nop())
	ctx := context.Background()

	for _, want := range []bool{true, false, true} {
		var err error
		if want {
			err = c.Enable(ctx)
		} else {
			err = c.Disable(ctx)
		}
		if err != nil {
			t.Fatalf("toggle: %v", err)
		}
		st, err := c.Status(ctx)
		if err != nil {
			t.Fatalf("Status: %v", err)
		}
		if st.Enabled != want {
			t.Fatalf("expected enabled=%v, got %v", want, st.Enabled)
		}
	}
}

func TestController_StatusFillsVersion(t *testing.T) {
	c := NewController(&memManager{active: true}, Options{Unit: "docker.service", Pinger: &fakePinger{up: true}}, zerolog.Nop())
	st, err := c.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !st.Reachable || st.Version != "27.3.1" || st.APIVersion != "1.47" {
		t.Fatalf("unexpected status %+v", st)
	}
	if st.State != dtypes.StateRunning {
		t.Fatalf("expected running, got %q", st.State)
	}
}

func TestController_StatusKeepsPartialResult(t *testing.T) {
	c := NewController(Unsupported{GOOS: "plan9"}, Options{Unit: "docker.service", Pinger: &fakePinger{up: true}}, zerolog.Nop())
	st, err := c.Status(context.Background())
	if !errors.Is(err, apperr.ErrUnsupportedPlatform) {
		t.Fatalf("expected unsupported platform, got %v", err)
	}
	if !st.Reachable || st.State != dtypes.StateRunning {
		t.Fatalf("expected reachable daemon reported as running, got %+v", st)
	}
}

func TestController_StartWaitsForDaemon(t *testing.T) {
	p := &fakePinger{up: true}
	c := NewController(&memManager{}, Options{
		Unit:         "docker.service",
		Pinger:       p,
		StartTimeout: time.Second,
		PollInterval: 10 * time.Millisecond,
	}, zerolog.Nop())

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if p.pings != 1 {
		t.Fatalf("expected a single ping, got %d", p.pings)
	}
}

func TestController_StartTimeout(t *testing.T) {
	p := &fakePinger{}
	c := NewController(&memManager{}, Options{
		Unit:         "docker.service",
		Pinger:       p,
		StartTimeout: 50 * time.Millisecond,
		PollInterval: 10 * time.Millisecond,
	}, zerolog.Nop())

	begin := time.Now()
	err := c.Start(context.Background())
	if !errors.Is(err, apperr.ErrDaemonUnreachable) {
		t.Fatalf("expected daemon unreachable, got %v", err)
	}
	if elapsed := time.Since(begin); elapsed > 2*time.Second {
		t.Fatalf("wait was not bounded: %s", elapsed)
	}
	if p.pings < 2 {
		t.Fatalf("expected repeated polling, got %d pings", p.pings)
	}
}

// hangingPinger blocks on the first ping until its context ends.
type hangingPinger struct {
	fakePinger
	hung bool
}

func (p *hangingPinger) Ping(ctx context.Context) (types.Ping, error) {
	p.mu.Lock()
	first := !p.hung
	p.hung = true
	p.mu.Unlock()
	if first {
		<-ctx.Done()
		return types.Ping{}, ctx.Err()
	}
	return p.fakePinger.Ping(ctx)
}

func TestController_StartBoundsEachPing(t *testing.T) {
	p := &hangingPinger{fakePinger: fakePinger{up: true}}
	c := NewController(&memManager{}, Options{
		Unit:         "docker.service",
		Pinger:       p,
		StartTimeout: 5 * time.Second,
		PollInterval: 10 * time.Millisecond,
		PingTimeout:  50 * time.Millisecond,
	}, zerolog.Nop())

	begin := time.Now()
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if elapsed := time.Since(begin); elapsed > 2*time.Second {
		t.Fatalf("a hung ping used up the start window: %s", elapsed)
	}
	if p.pings != 1 {
		t.Fatalf("expected one successful ping after the hung one, got %d", p.pings)
	}
}

func TestController_StartCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewController(&memManager{}, Options{Unit: "docker.service", Pinger: &fakePinger{}}, zerolog.Nop())
	if err := c.Start(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPrivileges(t *testing.T) {
	p, err := privilegesOf(&user.User{Uid: "0", Username: "root"}, nil)
	if err != nil {
		t.Fatalf("privilegesOf: %v", err)
	}
	if !p.Root || !p.Sufficient() {
		t.Fatalf("expected root to be sufficient, got %+v", p)
	}
	if (Privileges{User: "bob"}).Sufficient() {
		t.Fatal("plain user must not be sufficient")
	}
}
