package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/dashu-baba/docker-service-manager/internal/apperr"
	"github.com/dashu-baba/docker-service-manager/internal/config"
	"github.com/dashu-baba/docker-service-manager/internal/render"
)

func init() { color.NoColor = true }

func newDemo(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	a := NewDemo(config.Default(), &out, zerolog.Nop())
	t.Cleanup(func() { _ = a.Close() })
	return a, &out
}

func TestUnitActions_ReflectedInStatus(t *testing.T) {
	a, out := newDemo(t)
	ctx := context.Background()

	if err := a.UnitAction(ctx, a.Daemon, VerbDisable); err != nil {
		t.Fatal(err)
	}
	out.Reset()
	if err := a.UnitStatus(ctx, a.Daemon); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "disabled") {
		t.Fatalf("status after disable:\n%s", out.String())
	}

	if err := a.UnitAction(ctx, a.Daemon, VerbStop); err != nil {
		t.Fatal(err)
	}
	out.Reset()
	_ = a.UnitStatus(ctx, a.Daemon)
	if !strings.Contains(out.String(), "stopped") || !strings.Contains(out.String(), "unreachable") {
		t.Fatalf("status after stop:\n%s", out.String())
	}

	err := a.ListContainers(ctx, true)
	if !errors.Is(err, apperr.ErrDaemonUnreachable) {
		t.Fatalf("list with daemon stopped: %v", err)
	}

	if err := a.UnitAction(ctx, a.Daemon, VerbStart); err != nil {
		t.Fatal(err)
	}
	if err := a.ListContainers(ctx, true); err != nil {
		t.Fatalf("list after start: %v", err)
	}
}

func TestPruneContainers_Twice(t *testing.T) {
	a, out := newDemo(t)
	ctx := context.Background()

	if err := a.PruneContainers(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Removed 2 stopped containers") {
		t.Fatalf("first prune:\n%s", out.String())
	}
	out.Reset()
	if err := a.PruneContainers(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No stopped containers to remove.") {
		t.Fatalf("second prune:\n%s", out.String())
	}
}

func TestRemoveImage_InUse(t *testing.T) {
	a, _ := newDemo(t)
	ctx := context.Background()

	if err := a.RemoveImage(ctx, "postgres:16", false); !errors.Is(err, apperr.ErrInUse) {
		t.Fatalf("plain remove of an image in use: %v", err)
	}
	if err := a.RemoveImage(ctx, "postgres:16", true); err != nil {
		t.Fatalf("force remove: %v", err)
	}
}

func TestReport_Quick(t *testing.T) {
	a, _ := newDemo(t)
	var buf bytes.Buffer
	report, err := a.Report(context.Background(), false, render.FormatMarkdown, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if report.Host != nil {
		t.Fatal("quick report sampled the host")
	}
	if !strings.Contains(buf.String(), "# Docker Service Manager Health Report") {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestCheckPrivileges_Demo(t *testing.T) {
	a, out := newDemo(t)
	if err := a.CheckPrivileges(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), `member of the "docker" group`) {
		t.Fatalf("unexpected output %q", out.String())
	}
}
