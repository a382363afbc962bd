package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dashu-baba/docker-service-manager/internal/apperr"
	"github.com/dashu-baba/docker-service-manager/internal/types"
)

// Systemd controls units with systemctl.
type Systemd struct {
	runner Runner
	sudo   bool
	logger zerolog.Logger
}

func NewSystemd(runner Runner, useSudo bool, logger zerolog.Logger) *Systemd {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Systemd{
		runner: runner,
		sudo:   useSudo,
		logger: logger.With().Str("component", "systemd").Logger(),
	}
}

func (s *Systemd) Name() string { return "systemd" }

func (s *Systemd) systemctl(ctx context.Context, args ...string) (Result, error) {
	name := "systemctl"
	if s.sudo {
		// -n: never prompt, fail instead so the error can be reported
		args = append([]string{"-n", "systemctl"}, args...)
		name = "sudo"
	}
	s.logger.Debug().Str("cmd", name).Strs("args", args).Msg("running service manager command")
	return s.runner.Run(ctx, name, args...)
}

// IsActive maps `systemctl is-active` to a DaemonState. is-active exits
// non-zero for inactive units, so the printed state is what counts.
func (s *Systemd) IsActive(ctx context.Context, unit string) (types.DaemonState, error) {
	op := "status " + unit
	res, err := s.systemctl(ctx, "is-active", unit)
	if err != nil {
		return types.StateUnknown, apperr.Classify(op, err)
	}
	out := strings.TrimSpace(res.Stdout)
	if out == "" && res.ExitCode != 0 {
		return types.StateUnknown, commandError(op, res)
	}
	return ParseActiveState(out), nil
}

// IsEnabled reports whether the unit starts at boot.
func (s *Systemd) IsEnabled(ctx context.Context, unit string) (bool, error) {
	op := "is-enabled " + unit
	res, err := s.systemctl(ctx, "is-enabled", unit)
	if err != nil {
		return false, apperr.Classify(op, err)
	}
	enabled, known := ParseEnabledState(strings.TrimSpace(res.Stdout))
	if !known {
		return false, commandError(op, res)
	}
	return enabled, nil
}

func (s *Systemd) Start(ctx context.Context, unit string) error {
	return s.action(ctx, "start", unit)
}

func (s *Systemd) Stop(ctx context.Context, unit string) error {
	return s.action(ctx, "stop", unit)
}

func (s *Systemd) Restart(ctx context.Context, unit string) error {
	return s.action(ctx, "restart", unit)
}

func (s *Systemd) Enable(ctx context.Context, unit string) error {
	return s.action(ctx, "enable", unit)
}

func (s *Systemd) Disable(ctx context.Context, unit string) error {
	return s.action(ctx, "disable", unit)
}

func (s *Systemd) action(ctx context.Context, verb, unit string) error {
	op := verb + " " + unit
	res, err := s.systemctl(ctx, verb, unit)
	if err != nil {
		return apperr.Classify(op, err)
	}
	if res.ExitCode != 0 {
		return commandError(op, res)
	}
	s.logger.Info().Str("unit", unit).Str("action", verb).Msg("service manager command succeeded")
	return nil
}

// ParseActiveState maps the output of `systemctl is-active`.
func ParseActiveState(s string) types.DaemonState {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active", "reloading":
		return types.StateRunning
	case "inactive", "failed", "deactivating":
		return types.StateStopped
	default:
		return types.StateUnknown
	}
}

// ParseEnabledState maps the output of `systemctl is-enabled`. known is false
// for output that does not describe an installed unit.
func ParseEnabledState(s string) (enabled, known bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "enabled", "enabled-runtime", "static", "alias", "generated":
		return true, true
	case "disabled", "indirect", "masked", "masked-runtime", "linked", "linked-runtime":
		return false, true
	default:
		return false, false
	}
}
