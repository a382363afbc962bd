package shell

import (
	"context"

	"github.com/dashu-baba/docker-service-manager/internal/app"
	"github.com/dashu-baba/docker-service-manager/internal/render"
)

func (s *Shell) mainMenu() menu {
	sub := func(m func() menu) func(ctx context.Context) error {
		return func(ctx context.Context) error { return s.loop(ctx, m(), true) }
	}
	return menu{
		title: "Main Menu",
		items: []item{
			{"1", "Service Management", sub(func() menu { return s.unitMenu("Service Management", "Service", s.app.Daemon) })},
			{"2", "Socket Management", sub(func() menu { return s.unitMenu("Socket Management", "Socket", s.app.Socket) })},
			{"3", "Container Management", sub(s.containerMenu)},
			{"4", "Image Management", sub(s.imageMenu)},
			{"5", "System Information", sub(s.systemMenu)},
			{"6", "Health Reports", sub(s.healthMenu)},
		},
	}
}

func (s *Shell) unitMenu(title, noun string, u app.Unit) menu {
	action := func(v app.Verb) func(ctx context.Context) error {
		return func(ctx context.Context) error { return s.app.UnitAction(ctx, u, v) }
	}
	return menu{
		title: title,
		items: []item{
			{"1", "Check " + noun + " Status", func(ctx context.Context) error { return s.app.UnitStatus(ctx, u) }},
			{"2", "Start " + noun, action(app.VerbStart)},
			{"3", "Stop " + noun, action(app.VerbStop)},
			{"4", "Restart " + noun, action(app.VerbRestart)},
			{"5", "Enable " + noun + " at Boot", action(app.VerbEnable)},
			{"6", "Disable " + noun + " at Boot", action(app.VerbDisable)},
		},
	}
}

func (s *Shell) containerMenu() menu {
	return menu{
		title: "Container Management",
		items: []item{
			{"1", "List Running Containers", func(ctx context.Context) error { return s.app.ListContainers(ctx, false) }},
			{"2", "List All Containers", func(ctx context.Context) error { return s.app.ListContainers(ctx, true) }},
			{"3", "Remove Container", func(ctx context.Context) error {
				id, err := s.required("Enter container ID or name to remove: ", "container remove", "container ID or name")
				if err != nil {
					return err
				}
				force, err := s.confirm("Force remove?")
				if err != nil {
					return err
				}
				return s.app.RemoveContainer(ctx, id, force)
			}},
			{"4", "Remove All Stopped Containers", func(ctx context.Context) error {
				ok, err := s.confirm("Are you sure you want to remove all stopped containers?")
				if err != nil || !ok {
					return err
				}
				return s.app.PruneContainers(ctx)
			}},
			{"5", "View Container Logs", func(ctx context.Context) error {
				id, err := s.required("Enter container ID or name: ", "container logs", "container ID or name")
				if err != nil {
					return err
				}
				n, err := s.lines()
				if err != nil {
					return err
				}
				return s.app.ContainerLogs(ctx, id, n)
			}},
			{"6", "Show Container Resource Usage", func(ctx context.Context) error { return s.app.ContainerStats(ctx) }},
		},
	}
}

func (s *Shell) imageMenu() menu {
	prune := func(all bool, prompt string) func(ctx context.Context) error {
		return func(ctx context.Context) error {
			ok, err := s.confirm(prompt)
			if err != nil || !ok {
				return err
			}
			return s.app.PruneImages(ctx, all)
		}
	}
	return menu{
		title: "Image Management",
		items: []item{
			{"1", "List Images", func(ctx context.Context) error { return s.app.ListImages(ctx, false) }},
			{"2", "List All Images (including intermediate)", func(ctx context.Context) error { return s.app.ListImages(ctx, true) }},
			{"3", "Remove Image", func(ctx context.Context) error {
				ref, err := s.required("Enter image ID or name:tag to remove: ", "image remove", "image ID or reference")
				if err != nil {
					return err
				}
				force, err := s.confirm("Force remove?")
				if err != nil {
					return err
				}
				return s.app.RemoveImage(ctx, ref, force)
			}},
			{"4", "Remove All Dangling Images", prune(false, "Are you sure you want to remove all dangling images?")},
			{"5", "Remove All Unused Images", prune(true, "Are you sure you want to remove every image not used by a container?")},
		},
	}
}

func (s *Shell) systemMenu() menu {
	return menu{
		title: "System Information",
		items: []item{
			{"1", "Show Docker Info", s.app.DockerInfo},
			{"2", "Show System Resources", s.app.HostResources},
			{"3", "Check Privileges", func(context.Context) error { return s.app.CheckPrivileges() }},
		},
	}
}

func (s *Shell) healthMenu() menu {
	report := func(full bool) func(ctx context.Context) error {
		return func(ctx context.Context) error {
			_, err := s.app.Report(ctx, full, render.FormatText, s.out)
			return err
		}
	}
	return menu{
		title: "Health Reports",
		items: []item{
			{"1", "Generate Full Report", report(true)},
			{"2", "Generate Quick Report", report(false)},
		},
	}
}
