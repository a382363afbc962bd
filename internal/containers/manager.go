// Package containers lists, removes and prunes containers through the Docker
// Engine API.
package containers

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/rs/zerolog"

	"github.com/dashu-baba/docker-service-manager/internal/apperr"
	dtypes "github.com/dashu-baba/docker-service-manager/internal/types"
)

// DefaultLogTail is the number of log lines shown when none is requested.
const DefaultLogTail = 100

type containerAPI interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]types.Container, error)
	ContainerInspect(ctx context.Context, containerID string) (types.ContainerJSON, error)
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
	ContainersPrune(ctx context.Context, pruneFilters filters.Args) (container.PruneReport, error)
	ContainerLogs(ctx context.Context, containerID string, options container.LogsOptions) (io.ReadCloser, error)
	ContainerStats(ctx context.Context, containerID string, stream bool) (container.StatsResponseReader, error)
}

// Manager wraps the container endpoints of the Engine API.
type Manager struct {
	api    containerAPI
	logger zerolog.Logger
}

func NewManager(api containerAPI, logger zerolog.Logger) *Manager {
	return &Manager{
		api:    api,
		logger: logger.With().Str("component", "containers").Logger(),
	}
}

// List returns running containers, or every container when all is set.
func (m *Manager) List(ctx context.Context, all bool) ([]dtypes.ContainerRecord, error) {
	list, err := m.api.ContainerList(ctx, container.ListOptions{All: all})
	if err != nil {
		return nil, apperr.Classify("list containers", err)
	}

	records := make([]dtypes.ContainerRecord, 0, len(list))
	for _, c := range list {
		records = append(records, toRecord(c))
	}

	// Deterministic ordering for stable tables
	sort.Slice(records, func(i, j int) bool {
		if records[i].Name != records[j].Name {
			return records[i].Name < records[j].Name
		}
		return records[i].ID < records[j].ID
	})
	m.logger.Debug().Bool("all", all).Int("count", len(records)).Msg("listed containers")
	return records, nil
}

// Remove deletes a container by ID or name. Without force the daemon refuses
// to remove a running container.
func (m *Manager) Remove(ctx context.Context, id string, force bool) error {
	id = strings.TrimSpace(id)
	op := "remove container " + id
	if id == "" {
		return apperr.New("remove container", apperr.ErrInvalidInput, "container ID or name is required")
	}
	if err := m.api.ContainerRemove(ctx, id, container.RemoveOptions{Force: force}); err != nil {
		return apperr.Classify(op, err)
	}
	m.logger.Info().Str("container", id).Bool("force", force).Msg("container removed")
	return nil
}

// Prune removes every stopped container.
func (m *Manager) Prune(ctx context.Context) (dtypes.PruneResult, error) {
	report, err := m.api.ContainersPrune(ctx, filters.NewArgs())
	if err != nil {
		return dtypes.PruneResult{}, apperr.Classify("prune containers", err)
	}
	res := dtypes.PruneResult{
		Deleted:        make([]string, 0, len(report.ContainersDeleted)),
		SpaceReclaimed: report.SpaceReclaimed,
	}
	for _, id := range report.ContainersDeleted {
		res.Deleted = append(res.Deleted, shortID(id))
	}
	m.logger.Info().Int("deleted", len(res.Deleted)).Uint64("reclaimed", res.SpaceReclaimed).Msg("containers pruned")
	return res, nil
}

// Logs writes the last tail lines of a container's stdout and stderr to w.
func (m *Manager) Logs(ctx context.Context, id string, tail int, w io.Writer) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperr.New("container logs", apperr.ErrInvalidInput, "container ID or name is required")
	}
	if tail <= 0 {
		tail = DefaultLogTail
	}
	op := "container logs " + id

	inspect, err := m.api.ContainerInspect(ctx, id)
	if err != nil {
		return apperr.Classify(op, err)
	}

	rc, err := m.api.ContainerLogs(ctx, id, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Tail:       strconv.Itoa(tail),
	})
	if err != nil {
		return apperr.Classify(op, err)
	}
	defer rc.Close()

	// TTY containers return a raw stream; everything else is multiplexed.
	if inspect.Config != nil && inspect.Config.Tty {
		_, err = io.Copy(w, rc)
	} else {
		_, err = stdcopy.StdCopy(w, w, rc)
	}
	if err != nil {
		return apperr.Classify(op, fmt.Errorf("read log stream: %w", err))
	}
	return nil
}

func toRecord(c types.Container) dtypes.ContainerRecord {
	name := ""
	if len(c.Names) > 0 {
		name = strings.TrimPrefix(c.Names[0], "/")
	}
	ports := make([]dtypes.PortMapping, 0, len(c.Ports))
	for _, p := range c.Ports {
		ports = append(ports, dtypes.PortMapping{
			IP:          p.IP,
			PrivatePort: p.PrivatePort,
			PublicPort:  p.PublicPort,
			Type:        p.Type,
		})
	}
	sort.Slice(ports, func(i, j int) bool {
		if ports[i].PrivatePort != ports[j].PrivatePort {
			return ports[i].PrivatePort < ports[j].PrivatePort
		}
		return ports[i].IP < ports[j].IP
	})
	return dtypes.ContainerRecord{
		ID:      shortID(c.ID),
		Name:    name,
		Status:  c.Status,
		State:   string(c.State),
		Image:   c.Image,
		Ports:   ports,
		Created: time.Unix(c.Created, 0),
	}
}

func shortID(id string) string {
	id = strings.TrimPrefix(id, "sha256:")
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
