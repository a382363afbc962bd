//go:build integration
// +build integration

package collector

import (
	"context"
	"os"
	"testing"

	"github.com/rs/zerolog"

	"github.com/dashu-baba/docker-service-manager/internal/config"
	"github.com/dashu-baba/docker-service-manager/internal/engine"
	"github.com/dashu-baba/docker-service-manager/internal/service"
)

func TestFullAgainstLocalDaemon(t *testing.T) {
	if os.Getenv("RUN_INTEGRATION") != "1" {
		t.Skip("set RUN_INTEGRATION=1 to run integration tests")
	}
	dockerHost := os.Getenv("DOCKER_HOST")
	if dockerHost == "" {
		t.Skip("set DOCKER_HOST (e.g. unix:///var/run/docker.sock or unix:///Users/<you>/.rd/docker.sock)")
	}

	cfg := config.Default()
	cli, err := engine.New(engine.Options{Host: dockerHost, Timeout: cfg.DockerTimeout()})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	defer cli.Close()

	ctrl := service.NewController(service.Detect(nil, false, zerolog.Nop()), service.Options{
		Unit:   cfg.Service.Unit,
		Pinger: cli,
	}, zerolog.Nop())

	report, err := New(ctrl, cli, NewSystemSampler(cfg.Report), cfg).Full(context.Background())
	if err != nil {
		t.Fatalf("Full failed: %v", err)
	}

	// Basic checks
	if !report.Service.Reachable {
		t.Fatalf("daemon not reachable: %v", report.Errors)
	}
	if report.Host == nil || report.Host.OS == "" {
		t.Error("Host OS not set")
	}
	if report.Docker == nil || report.Docker.Version == "" {
		t.Error("Docker version not set")
	}
	// Issues should be initialized
	if report.Issues == nil {
		t.Error("Issues not initialized")
	}
}
