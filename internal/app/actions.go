package app

import (
	"context"
	"fmt"
	"io"

	"github.com/dashu-baba/docker-service-manager/internal/apperr"
	"github.com/dashu-baba/docker-service-manager/internal/containers"
	"github.com/dashu-baba/docker-service-manager/internal/render"
	"github.com/dashu-baba/docker-service-manager/internal/types"
)

// Verb is a unit action.
type Verb string

const (
	VerbStart   Verb = "start"
	VerbStop    Verb = "stop"
	VerbRestart Verb = "restart"
	VerbEnable  Verb = "enable"
	VerbDisable Verb = "disable"
)

var pastTense = map[Verb]string{
	VerbStart:   "started",
	VerbStop:    "stopped",
	VerbRestart: "restarted",
	VerbEnable:  "enabled",
	VerbDisable: "disabled",
}

// UnitStatus prints the status of u.
func (a *App) UnitStatus(ctx context.Context, u Unit) error {
	st, err := u.Status(ctx)
	render.Status(a.Out, st)
	return err
}

// UnitAction runs verb against u and prints the outcome.
func (a *App) UnitAction(ctx context.Context, u Unit, verb Verb) error {
	var err error
	switch verb {
	case VerbStart:
		err = u.Start(ctx)
	case VerbStop:
		err = u.Stop(ctx)
	case VerbRestart:
		err = u.Restart(ctx)
	case VerbEnable:
		err = u.Enable(ctx)
	case VerbDisable:
		err = u.Disable(ctx)
	default:
		return apperr.New(string(verb)+" "+u.Unit(), apperr.ErrInvalidInput, "unknown action %q", verb)
	}
	if err != nil {
		return err
	}
	render.Success(a.Out, "%s %s", u.Unit(), pastTense[verb])
	return nil
}

func (a *App) ListContainers(ctx context.Context, all bool) error {
	list, err := a.Containers.List(ctx, all)
	if err != nil {
		return err
	}
	return render.Containers(a.Out, list)
}

func (a *App) RemoveContainer(ctx context.Context, id string, force bool) error {
	if err := a.Containers.Remove(ctx, id, force); err != nil {
		return err
	}
	render.Success(a.Out, "Container %s removed", id)
	return nil
}

func (a *App) PruneContainers(ctx context.Context) error {
	res, err := a.Containers.Prune(ctx)
	if err != nil {
		return err
	}
	render.Pruned(a.Out, "stopped containers", res)
	return nil
}

func (a *App) ContainerLogs(ctx context.Context, id string, tail int) error {
	return a.Containers.Logs(ctx, id, tail, a.Out)
}

// ContainerStats samples running containers, all of them or only those named
// in refs, and prints their resource usage.
func (a *App) ContainerStats(ctx context.Context, refs ...string) error {
	list, err := a.Containers.Stats(ctx)
	if err != nil && len(list) == 0 {
		return err
	}
	if len(refs) > 0 {
		picked := make([]types.ContainerStats, 0, len(refs))
		for _, ref := range refs {
			st, ok := containers.FindStats(list, ref)
			if !ok {
				return apperr.New("container stats", apperr.ErrNotFound, "no running container %s", ref)
			}
			picked = append(picked, st)
		}
		list = picked
	}
	if rerr := render.ContainerStats(a.Out, list, a.Config.Report.GraphWidth); rerr != nil {
		return rerr
	}
	return err
}

func (a *App) ListImages(ctx context.Context, all bool) error {
	list, err := a.Images.List(ctx, all)
	if err != nil {
		return err
	}
	return render.Images(a.Out, list)
}

func (a *App) RemoveImage(ctx context.Context, ref string, force bool) error {
	lines, err := a.Images.Remove(ctx, ref, force)
	if err != nil {
		return err
	}
	for _, l := range lines {
		fmt.Fprintln(a.Out, l)
	}
	render.Success(a.Out, "Image %s removed", ref)
	return nil
}

// PruneImages removes dangling images, or every unused image when all is set.
func (a *App) PruneImages(ctx context.Context, all bool) error {
	res, err := a.Images.Prune(ctx, all)
	if err != nil {
		return err
	}
	what := "dangling images"
	if all {
		what = "unused images"
	}
	render.Pruned(a.Out, what, res)
	return nil
}

func (a *App) DockerInfo(ctx context.Context) error {
	info, err := a.Reporter.DockerInfo(ctx)
	if err != nil {
		return err
	}
	render.DockerInfo(a.Out, info)
	return nil
}

// HostResources prints host metrics. Partial samples are printed before the
// error is returned.
func (a *App) HostResources(ctx context.Context) error {
	h, err := a.Reporter.Host(ctx)
	render.Host(a.Out, h, a.Config.Report.Graphs, a.Config.Report.GraphWidth)
	return err
}

func (a *App) CheckPrivileges() error {
	p, err := a.Privileges()
	if err != nil {
		return apperr.Classify("privilege check", err)
	}
	if p.Sufficient() {
		render.Success(a.Out, "%s", p)
	} else {
		render.Warn(a.Out, "%s", p)
		fmt.Fprintf(a.Out, "  Run dsm with sudo or add the user to the docker group: sudo usermod -aG docker %s\n", p.User)
	}
	return nil
}

// Report builds a quick or full report and writes it to w.
func (a *App) Report(ctx context.Context, full bool, format render.Format, w io.Writer) (*types.HealthReport, error) {
	ctx = a.logger.WithContext(ctx)
	var (
		report *types.HealthReport
		err    error
	)
	if full {
		report, err = a.Reporter.Full(ctx)
	} else {
		report, err = a.Reporter.Quick(ctx)
	}
	if err != nil {
		return nil, err
	}
	opts := render.Options{Graphs: a.Config.Report.Graphs, GraphWidth: a.Config.Report.GraphWidth}
	return report, render.Report(w, report, format, opts)
}
