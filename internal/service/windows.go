package service

import (
	"bufio"
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dashu-baba/docker-service-manager/internal/apperr"
	"github.com/dashu-baba/docker-service-manager/internal/types"
)

// WindowsSC controls services with sc.exe. Unit names keep working across
// platforms: "docker.service" maps to the "docker" service. Socket units have
// no Windows equivalent (the engine listens on a named pipe).
type WindowsSC struct {
	runner Runner
	logger zerolog.Logger
}

func NewWindowsSC(runner Runner, logger zerolog.Logger) *WindowsSC {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &WindowsSC{
		runner: runner,
		logger: logger.With().Str("component", "sc").Logger(),
	}
}

func (w *WindowsSC) Name() string { return "sc" }

func (w *WindowsSC) service(verb, unit string) (string, error) {
	if strings.HasSuffix(unit, ".socket") {
		return "", apperr.New(verb+" "+unit, apperr.ErrUnsupportedPlatform, "socket units are not available on windows")
	}
	return strings.TrimSuffix(unit, ".service"), nil
}

func (w *WindowsSC) sc(ctx context.Context, op string, args ...string) (Result, error) {
	w.logger.Debug().Strs("args", args).Msg("running service manager command")
	res, err := w.runner.Run(ctx, "sc.exe", args...)
	if err != nil {
		return res, apperr.Classify(op, err)
	}
	if res.ExitCode != 0 {
		return res, commandError(op, res)
	}
	return res, nil
}

func (w *WindowsSC) IsActive(ctx context.Context, unit string) (types.DaemonState, error) {
	name, err := w.service("status", unit)
	if err != nil {
		return types.StateUnknown, err
	}
	res, err := w.sc(ctx, "status "+unit, "query", name)
	if err != nil {
		return types.StateUnknown, err
	}
	switch scField(res.Stdout, "STATE") {
	case "RUNNING":
		return types.StateRunning, nil
	case "STOPPED":
		return types.StateStopped, nil
	default:
		return types.StateUnknown, nil
	}
}

func (w *WindowsSC) IsEnabled(ctx context.Context, unit string) (bool, error) {
	name, err := w.service("is-enabled", unit)
	if err != nil {
		return false, err
	}
	res, err := w.sc(ctx, "is-enabled "+unit, "qc", name)
	if err != nil {
		return false, err
	}
	return strings.HasPrefix(scField(res.Stdout, "START_TYPE"), "AUTO_START"), nil
}

func (w *WindowsSC) Start(ctx context.Context, unit string) error {
	return w.run(ctx, "start", unit, func(name string) []string { return []string{"start", name} })
}

func (w *WindowsSC) Stop(ctx context.Context, unit string) error {
	return w.run(ctx, "stop", unit, func(name string) []string { return []string{"stop", name} })
}

func (w *WindowsSC) Restart(ctx context.Context, unit string) error {
	if err := w.Stop(ctx, unit); err != nil {
		return err
	}
	return w.Start(ctx, unit)
}

func (w *WindowsSC) Enable(ctx context.Context, unit string) error {
	return w.run(ctx, "enable", unit, func(name string) []string { return []string{"config", name, "start=", "auto"} })
}

func (w *WindowsSC) Disable(ctx context.Context, unit string) error {
	return w.run(ctx, "disable", unit, func(name string) []string { return []string{"config", name, "start=", "demand"} })
}

func (w *WindowsSC) run(ctx context.Context, verb, unit string, args func(name string) []string) error {
	name, err := w.service(verb, unit)
	if err != nil {
		return err
	}
	if _, err := w.sc(ctx, verb+" "+unit, args(name)...); err != nil {
		return err
	}
	w.logger.Info().Str("unit", unit).Str("action", verb).Msg("service manager command succeeded")
	return nil
}

// scField extracts the symbolic value of a "KEY : code NAME" line printed by
// sc.exe, e.g. "STATE : 4  RUNNING" yields "RUNNING".
func scField(out, key string) string {
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, key) {
			continue
		}
		_, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		fields := strings.Fields(value)
		if len(fields) >= 2 {
			return fields[1]
		}
		if len(fields) == 1 {
			return fields[0]
		}
	}
	return ""
}
