package collector

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/dashu-baba/docker-service-manager/internal/config"
	"github.com/dashu-baba/docker-service-manager/internal/demo"
	"github.com/dashu-baba/docker-service-manager/internal/service"
	"github.com/dashu-baba/docker-service-manager/internal/types"
)

func newDemoReporter() (*Reporter, *demo.Backend) {
	cfg := config.Default()
	b := demo.New(cfg.Service.Unit, cfg.Service.SocketUnit)
	ctrl := service.NewController(b.Services, service.Options{Unit: cfg.Service.Unit, Pinger: b.Engine}, zerolog.Nop())
	return New(ctrl, b.Engine, b.Host, cfg), b
}

func TestQuick_NeverSamplesHost(t *testing.T) {
	r, b := newDemoReporter()
	report, err := r.Quick(context.Background())
	if err != nil {
		t.Fatalf("Quick: %v", err)
	}
	if b.Host.Calls() != 0 {
		t.Fatalf("quick report sampled the host %d time(s)", b.Host.Calls())
	}
	if report.Kind != types.ReportQuick || report.Host != nil || report.Docker != nil {
		t.Fatalf("quick report carries full sections: %+v", report)
	}
	if !report.Service.Reachable || report.Service.State != types.StateRunning {
		t.Fatalf("unexpected service status %+v", report.Service)
	}
	if report.Counts.ContainersTotal != 5 || report.Counts.ContainersRunning != 3 || report.Counts.ContainersStopped != 2 {
		t.Fatalf("unexpected container counts %+v", report.Counts)
	}
	if report.Counts.ContainersUnhealthy != 1 || len(report.Unhealthy) != 1 || report.Unhealthy[0] != "worker" {
		t.Fatalf("unexpected unhealthy containers %+v %v", report.Counts, report.Unhealthy)
	}
	if report.Counts.DanglingImages != 1 {
		t.Fatalf("expected 1 dangling image, got %d", report.Counts.DanglingImages)
	}
	if len(report.Errors) != 0 {
		t.Fatalf("unexpected errors %v", report.Errors)
	}
}

func TestFull(t *testing.T) {
	r, b := newDemoReporter()

	var logs bytes.Buffer
	ctx := zerolog.New(&logs).Level(zerolog.DebugLevel).WithContext(context.Background())

	report, err := r.Full(ctx)
	if err != nil {
		t.Fatalf("Full: %v", err)
	}
	if b.Host.Calls() != 1 {
		t.Fatalf("expected one host sample, got %d", b.Host.Calls())
	}
	if report.Docker == nil || report.Docker.Version != "27.3.1" {
		t.Fatalf("missing docker info: %+v", report.Docker)
	}
	if report.DiskUsage == nil || report.DiskUsage.ImagesBytes == 0 {
		t.Fatalf("missing disk usage: %+v", report.DiskUsage)
	}
	if report.Host == nil || report.Host.Hostname != "demo-host" {
		t.Fatalf("missing host metrics: %+v", report.Host)
	}

	seen := map[string]bool{}
	for _, is := range report.Issues {
		seen[is.RuleID] = true
	}
	for _, want := range []string{"UNHEALTHY_CONTAINERS", "DANGLING_IMAGES", "DISK_USAGE_HIGH"} {
		if !seen[want] {
			t.Errorf("expected %s in %v", want, seen)
		}
	}
	if !strings.Contains(logs.String(), "collector host: ok") {
		t.Fatalf("expected collector timings in the log, got %q", logs.String())
	}
}

func TestFull_DaemonDown(t *testing.T) {
	r, b := newDemoReporter()
	if err := b.Services.Stop(context.Background(), "docker.service"); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	report, err := r.Full(context.Background())
	if err != nil {
		t.Fatalf("Full: %v", err)
	}
	if report.Service.Reachable || report.Service.State != types.StateStopped {
		t.Fatalf("unexpected service status %+v", report.Service)
	}
	if report.Docker != nil || report.DiskUsage != nil {
		t.Fatal("docker sections must be skipped while the daemon is down")
	}
	if report.Host == nil {
		t.Fatal("host metrics are independent of the daemon")
	}
	if len(report.Errors) == 0 || !strings.HasPrefix(report.Errors[0], "docker: ") {
		t.Fatalf("expected a recorded docker error, got %v", report.Errors)
	}
	if len(report.Issues) == 0 || report.Issues[0].RuleID != "DAEMON_DOWN" {
		t.Fatalf("expected DAEMON_DOWN first, got %+v", report.Issues)
	}
}

type failingHost struct{}

func (failingHost) Sample(context.Context) (*types.HostMetrics, error) {
	return &types.HostMetrics{Hostname: "partial"}, errors.New("cpu sample failed")
}

func TestFull_HostErrorLogged(t *testing.T) {
	cfg := config.Default()
	b := demo.New(cfg.Service.Unit, cfg.Service.SocketUnit)
	ctrl := service.NewController(b.Services, service.Options{Unit: cfg.Service.Unit, Pinger: b.Engine}, zerolog.Nop())
	r := New(ctrl, b.Engine, failingHost{}, cfg)

	var logs bytes.Buffer
	ctx := zerolog.New(&logs).Level(zerolog.DebugLevel).WithContext(context.Background())
	report, err := r.Full(ctx)
	if err != nil {
		t.Fatalf("Full: %v", err)
	}
	if report.Host == nil || report.Host.Hostname != "partial" {
		t.Fatalf("partial host sample should be kept, got %+v", report.Host)
	}
	if !strings.Contains(logs.String(), "collector host: skipped/error") {
		t.Fatalf("expected host error in the log, got %q", logs.String())
	}
	if strings.Contains(logs.String(), "collector host: ok") {
		t.Fatalf("host section logged as ok despite the error: %q", logs.String())
	}
}
