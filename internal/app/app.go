// Package app wires the managers, controllers and reporter into one value
// shared by the subcommands and the interactive shell.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/dashu-baba/docker-service-manager/internal/collector"
	"github.com/dashu-baba/docker-service-manager/internal/config"
	"github.com/dashu-baba/docker-service-manager/internal/containers"
	"github.com/dashu-baba/docker-service-manager/internal/demo"
	"github.com/dashu-baba/docker-service-manager/internal/engine"
	"github.com/dashu-baba/docker-service-manager/internal/images"
	"github.com/dashu-baba/docker-service-manager/internal/service"
	"github.com/dashu-baba/docker-service-manager/internal/types"
)

// Unit is a controllable service unit. *service.Controller satisfies it.
type Unit interface {
	Unit() string
	Status(ctx context.Context) (types.ServiceStatus, error)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Restart(ctx context.Context) error
	Enable(ctx context.Context) error
	Disable(ctx context.Context) error
}

// App holds everything a command needs. Output goes to Out.
type App struct {
	Config     *config.Config
	Daemon     Unit
	Socket     Unit
	Containers *containers.Manager
	Images     *images.Manager
	Reporter   *collector.Reporter
	Privileges func() (service.Privileges, error)
	Demo       bool
	Out        io.Writer

	logger zerolog.Logger
	close  func() error
}

// New connects to the local Engine API and service manager.
func New(cfg *config.Config, out io.Writer, logger zerolog.Logger) (*App, error) {
	cli, err := engine.New(engine.Options{
		Host:       cfg.Docker.Host,
		APIVersion: cfg.Docker.APIVersion,
		Timeout:    cfg.DockerTimeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}
	mgr := service.Detect(service.ExecRunner{}, cfg.Service.UseSudo, logger)
	logger.Debug().Str("service_manager", mgr.Name()).Str("docker_host", cli.DaemonHost()).Msg("environment ready")

	a := assemble(cfg, cli, mgr, collector.NewSystemSampler(cfg.Report), out, logger)
	a.Privileges = service.CheckPrivileges
	a.close = cli.Close
	return a, nil
}

// NewDemo builds an App on top of the in-memory demo backend.
func NewDemo(cfg *config.Config, out io.Writer, logger zerolog.Logger) *App {
	b := demo.New(cfg.Service.Unit, cfg.Service.SocketUnit)
	a := assemble(cfg, b.Engine, b.Services, b.Host, out, logger)
	a.Demo = true
	a.Privileges = func() (service.Privileges, error) {
		return service.Privileges{User: "demo", DockerGroup: true}, nil
	}
	a.close = b.Engine.Close
	return a
}

func assemble(cfg *config.Config, api engine.API, mgr service.Manager, host collector.HostSampler, out io.Writer, logger zerolog.Logger) *App {
	daemon := service.NewController(mgr, service.Options{
		Unit:         cfg.Service.Unit,
		Pinger:       api,
		StartTimeout: cfg.StartTimeout(),
	}, logger)
	socket := service.NewController(mgr, service.Options{
		Unit: cfg.Service.SocketUnit,
	}, logger)

	return &App{
		Config:     cfg,
		Daemon:     daemon,
		Socket:     socket,
		Containers: containers.NewManager(api, logger),
		Images:     images.NewManager(api, logger),
		Reporter:   collector.New(daemon, api, host, cfg),
		Out:        out,
		logger:     logger,
	}
}

// Logger returns the process logger.
func (a *App) Logger() zerolog.Logger { return a.logger }

// Close releases the Engine API client.
func (a *App) Close() error {
	if a.close == nil {
		return nil
	}
	return a.close()
}
