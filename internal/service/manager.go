// Package service drives the Docker daemon and socket units through the OS
// service manager.
package service

import (
	"context"
	"os/exec"
	"runtime"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dashu-baba/docker-service-manager/internal/apperr"
	"github.com/dashu-baba/docker-service-manager/internal/types"
)

// Manager is an OS service manager able to control a named unit.
type Manager interface {
	Name() string
	IsActive(ctx context.Context, unit string) (types.DaemonState, error)
	IsEnabled(ctx context.Context, unit string) (bool, error)
	Start(ctx context.Context, unit string) error
	Stop(ctx context.Context, unit string) error
	Restart(ctx context.Context, unit string) error
	Enable(ctx context.Context, unit string) error
	Disable(ctx context.Context, unit string) error
}

// Detect picks the service manager available on this host.
func Detect(runner Runner, useSudo bool, logger zerolog.Logger) Manager {
	switch runtime.GOOS {
	case "linux":
		if _, err := exec.LookPath("systemctl"); err == nil {
			return NewSystemd(runner, useSudo, logger)
		}
	case "windows":
		if _, err := exec.LookPath("sc.exe"); err == nil {
			return NewWindowsSC(runner, logger)
		}
	}
	logger.Debug().Str("goos", runtime.GOOS).Msg("no supported service manager found")
	return Unsupported{GOOS: runtime.GOOS}
}

// Unsupported fails every operation with apperr.ErrUnsupportedPlatform.
type Unsupported struct {
	GOOS string
}

func (u Unsupported) Name() string { return "unsupported" }

func (u Unsupported) fail(verb, unit string) error {
	return apperr.New(verb+" "+unit, apperr.ErrUnsupportedPlatform, "no service manager available on %s", u.GOOS)
}

func (u Unsupported) IsActive(_ context.Context, unit string) (types.DaemonState, error) {
	return types.StateUnknown, u.fail("status", unit)
}

func (u Unsupported) IsEnabled(_ context.Context, unit string) (bool, error) {
	return false, u.fail("is-enabled", unit)
}

func (u Unsupported) Start(_ context.Context, unit string) error   { return u.fail("start", unit) }
func (u Unsupported) Stop(_ context.Context, unit string) error    { return u.fail("stop", unit) }
func (u Unsupported) Restart(_ context.Context, unit string) error { return u.fail("restart", unit) }
func (u Unsupported) Enable(_ context.Context, unit string) error  { return u.fail("enable", unit) }
func (u Unsupported) Disable(_ context.Context, unit string) error { return u.fail("disable", unit) }

var notFoundMarkers = []string{
	"could not be found",
	"not found",
	"not loaded",
	"does not exist",
	"no such file or directory",
}

func isNotFoundText(s string) bool {
	s = strings.ToLower(s)
	for _, m := range notFoundMarkers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
