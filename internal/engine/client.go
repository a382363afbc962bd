// Package engine constructs the Docker Engine API client used by every
// manager and declares the subset of the SDK dsm depends on.
package engine

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/system"
	"github.com/docker/docker/client"
)

// DefaultHost is used when neither a host nor DOCKER_HOST is set.
const DefaultHost = "unix:///var/run/docker.sock"

// API is the part of the Docker SDK client used by dsm. *client.Client
// satisfies it, as does the in-memory engine used for demo mode.
type API interface {
	Ping(ctx context.Context) (types.Ping, error)
	ServerVersion(ctx context.Context) (types.Version, error)
	Info(ctx context.Context) (system.Info, error)
	DiskUsage(ctx context.Context, options types.DiskUsageOptions) (types.DiskUsage, error)

	ContainerList(ctx context.Context, options container.ListOptions) ([]types.Container, error)
	ContainerInspect(ctx context.Context, containerID string) (types.ContainerJSON, error)
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
	ContainersPrune(ctx context.Context, pruneFilters filters.Args) (container.PruneReport, error)
	ContainerLogs(ctx context.Context, containerID string, options container.LogsOptions) (io.ReadCloser, error)
	ContainerStats(ctx context.Context, containerID string, stream bool) (container.StatsResponseReader, error)

	ImageList(ctx context.Context, options image.ListOptions) ([]image.Summary, error)
	ImageRemove(ctx context.Context, imageID string, options image.RemoveOptions) ([]image.DeleteResponse, error)
	ImagesPrune(ctx context.Context, pruneFilters filters.Args) (image.PruneReport, error)

	Close() error
}

var _ API = (*client.Client)(nil)

// Options configures New.
type Options struct {
	Host       string
	APIVersion string
	Timeout    time.Duration
}

// New creates an Engine API client. It does not contact the daemon; the
// first request does. An empty opts.Host leaves DOCKER_HOST in charge.
func New(opts Options) (*client.Client, error) {
	clientOpts := []client.Opt{client.FromEnv}
	switch {
	case opts.Host != "":
		clientOpts = append(clientOpts, client.WithHost(opts.Host))
	case os.Getenv(client.EnvOverrideHost) == "":
		clientOpts = append(clientOpts, client.WithHost(DefaultHost))
	}
	if opts.APIVersion != "" {
		clientOpts = append(clientOpts, client.WithVersion(opts.APIVersion))
	} else {
		clientOpts = append(clientOpts, client.WithAPIVersionNegotiation())
	}
	if opts.Timeout > 0 {
		clientOpts = append(clientOpts, client.WithTimeout(opts.Timeout))
	}
	return client.NewClientWithOpts(clientOpts...)
}
