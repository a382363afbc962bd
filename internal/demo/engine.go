// Package demo provides in-memory stand-ins for the Docker Engine API, the OS
// service manager and the host sampler. State lives for the life of the
// process so removals, prunes and unit toggles show up in later queries.
package demo

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/system"
	"github.com/docker/docker/client"
	"github.com/docker/docker/errdefs"
	"github.com/docker/docker/pkg/stdcopy"
)

// Host is the address reported in connection errors.
const Host = "unix:///var/run/docker.sock"

//go:embed fixtures.json
var fixtureJSON []byte

type fixtures struct {
	Containers []types.Container          `json:"containers"`
	Images     []image.Summary            `json:"images"`
	Logs       map[string][]string        `json:"logs"`
	Stats      map[string]json.RawMessage `json:"stats"`
	Info       system.Info                `json:"info"`
	Version    types.Version              `json:"version"`
}

func loadFixtures() fixtures {
	var f fixtures
	if err := json.Unmarshal(fixtureJSON, &f); err != nil {
		panic(fmt.Sprintf("demo: invalid fixtures: %v", err))
	}
	return f
}

// Engine is an in-memory Docker daemon.
type Engine struct {
	mu         sync.Mutex
	containers []types.Container
	images     []image.Summary
	logs       map[string][]string
	stats      map[string]json.RawMessage
	info       system.Info
	version    types.Version
	reachable  func() bool
}

// NewEngine returns an engine seeded from the embedded fixtures. reachable
// decides whether the daemon answers; nil means always.
func NewEngine(reachable func() bool) *Engine {
	f := loadFixtures()
	if reachable == nil {
		reachable = func() bool { return true }
	}
	return &Engine{
		containers: f.Containers,
		images:     f.Images,
		logs:       f.Logs,
		stats:      f.Stats,
		info:       f.Info,
		version:    f.Version,
		reachable:  reachable,
	}
}

func (e *Engine) check() error {
	if !e.reachable() {
		return client.ErrorConnectionFailed(Host)
	}
	return nil
}

func (e *Engine) Ping(_ context.Context) (types.Ping, error) {
	if err := e.check(); err != nil {
		return types.Ping{}, err
	}
	return types.Ping{APIVersion: e.version.APIVersion, OSType: e.version.Os}, nil
}

func (e *Engine) ServerVersion(_ context.Context) (types.Version, error) {
	if err := e.check(); err != nil {
		return types.Version{}, err
	}
	return e.version, nil
}

func (e *Engine) Info(_ context.Context) (system.Info, error) {
	if err := e.check(); err != nil {
		return system.Info{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	info := e.info
	info.Containers = len(e.containers)
	info.ContainersRunning, info.ContainersStopped, info.ContainersPaused = 0, 0, 0
	for _, c := range e.containers {
		switch string(c.State) {
		case "running":
			info.ContainersRunning++
		case "paused":
			info.ContainersPaused++
		default:
			info.ContainersStopped++
		}
	}
	info.Images = len(e.images)
	return info, nil
}

func (e *Engine) DiskUsage(_ context.Context, _ types.DiskUsageOptions) (types.DiskUsage, error) {
	if err := e.check(); err != nil {
		return types.DiskUsage{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	var du types.DiskUsage
	for i := range e.images {
		img := e.images[i]
		du.LayersSize += img.Size
		du.Images = append(du.Images, &img)
	}
	for i := range e.containers {
		c := e.containers[i]
		du.Containers = append(du.Containers, &c)
	}
	return du, nil
}

func (e *Engine) ContainerList(_ context.Context, options container.ListOptions) ([]types.Container, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]types.Container, 0, len(e.containers))
	for _, c := range e.containers {
		if !options.All && string(c.State) != "running" {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (e *Engine) ContainerInspect(_ context.Context, containerID string) (types.ContainerJSON, error) {
	if err := e.check(); err != nil {
		return types.ContainerJSON{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	i, err := e.findContainer(containerID)
	if err != nil {
		return types.ContainerJSON{}, err
	}
	return types.ContainerJSON{
		Config: &container.Config{Image: e.containers[i].Image},
	}, nil
}

func (e *Engine) ContainerRemove(_ context.Context, containerID string, options container.RemoveOptions) error {
	if err := e.check(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	i, err := e.findContainer(containerID)
	if err != nil {
		return err
	}
	c := e.containers[i]
	if string(c.State) == "running" && !options.Force {
		return errdefs.Conflict(fmt.Errorf("cannot remove container %q: container is running: stop the container before removing or force remove", "/"+containerName(c)))
	}
	e.containers = append(e.containers[:i], e.containers[i+1:]...)
	delete(e.logs, containerName(c))
	return nil
}

func (e *Engine) ContainersPrune(_ context.Context, _ filters.Args) (container.PruneReport, error) {
	if err := e.check(); err != nil {
		return container.PruneReport{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	report := container.PruneReport{ContainersDeleted: []string{}}
	kept := e.containers[:0]
	for _, c := range e.containers {
		if string(c.State) == "running" || string(c.State) == "paused" {
			kept = append(kept, c)
			continue
		}
		report.ContainersDeleted = append(report.ContainersDeleted, c.ID)
		if c.SizeRw > 0 {
			report.SpaceReclaimed += uint64(c.SizeRw)
		}
		delete(e.logs, containerName(c))
	}
	e.containers = kept
	return report, nil
}

// ContainerLogs returns the fixture log lines as a multiplexed stream, the way
// the daemon serves containers without a TTY.
func (e *Engine) ContainerLogs(_ context.Context, containerID string, options container.LogsOptions) (io.ReadCloser, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	i, err := e.findContainer(containerID)
	if err != nil {
		return nil, err
	}
	lines := e.logs[containerName(e.containers[i])]
	if n, err := strconv.Atoi(options.Tail); err == nil && n >= 0 && n < len(lines) {
		lines = lines[len(lines)-n:]
	}

	var buf bytes.Buffer
	stdout := stdcopy.NewStdWriter(&buf, stdcopy.Stdout)
	stderr := stdcopy.NewStdWriter(&buf, stdcopy.Stderr)
	for _, l := range lines {
		w := stdout
		if strings.Contains(l, "level=error") {
			w = stderr
		}
		if _, err := io.WriteString(w, l+"\n"); err != nil {
			return nil, err
		}
	}
	return io.NopCloser(&buf), nil
}

// ContainerStats serves the fixture sample of a running container. Stopped
// containers get an empty sample, as from the daemon.
func (e *Engine) ContainerStats(_ context.Context, containerID string, _ bool) (container.StatsResponseReader, error) {
	if err := e.check(); err != nil {
		return container.StatsResponseReader{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	i, err := e.findContainer(containerID)
	if err != nil {
		return container.StatsResponseReader{}, err
	}
	body := []byte("{}")
	if c := e.containers[i]; string(c.State) == "running" {
		if raw, ok := e.stats[containerName(c)]; ok {
			body = raw
		}
	}
	return container.StatsResponseReader{
		Body:   io.NopCloser(bytes.NewReader(body)),
		OSType: e.version.Os,
	}, nil
}

func (e *Engine) ImageList(_ context.Context, options image.ListOptions) ([]image.Summary, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]image.Summary, 0, len(e.images))
	for _, img := range e.images {
		if !options.All && e.intermediate(img) {
			continue
		}
		img.Containers = int64(e.usedBy(img.ID))
		out = append(out, img)
	}
	return out, nil
}

func (e *Engine) ImageRemove(_ context.Context, imageID string, options image.RemoveOptions) ([]image.DeleteResponse, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	i, byTag, err := e.findImage(imageID)
	if err != nil {
		return nil, err
	}
	img := e.images[i]

	// A tag shared with other tags is only untagged.
	if byTag != "" && len(img.RepoTags) > 1 {
		tags := make([]string, 0, len(img.RepoTags)-1)
		for _, t := range img.RepoTags {
			if t != byTag {
				tags = append(tags, t)
			}
		}
		e.images[i].RepoTags = tags
		return []image.DeleteResponse{{Untagged: byTag}}, nil
	}

	if n := e.usedBy(img.ID); n > 0 && !options.Force {
		return nil, errdefs.Conflict(fmt.Errorf("conflict: unable to remove repository reference %q (must force) - image is being used by %d container(s)", imageID, n))
	}
	if e.parentOfAny(img.ID) && !options.Force {
		return nil, errdefs.Conflict(fmt.Errorf("conflict: unable to delete %s (cannot be forced) - image has dependent child images", shortImageID(img.ID)))
	}

	resp, _ := e.deleteImage(img.ID, options.PruneChildren)
	return resp, nil
}

// ImagesPrune honors the dangling filter: "true" (or unset) removes untagged
// images, "false" removes every image no container uses.
func (e *Engine) ImagesPrune(_ context.Context, pruneFilters filters.Args) (image.PruneReport, error) {
	if err := e.check(); err != nil {
		return image.PruneReport{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	danglingOnly := true
	for _, v := range pruneFilters.Get("dangling") {
		if v == "false" || v == "0" {
			danglingOnly = false
		}
	}

	var candidates []string
	for _, img := range e.images {
		removable := e.usedBy(img.ID) == 0 && !e.parentOfAny(img.ID)
		if danglingOnly {
			removable = removable && isDangling(img)
		}
		if removable {
			candidates = append(candidates, img.ID)
		}
	}

	report := image.PruneReport{ImagesDeleted: []image.DeleteResponse{}}
	for _, id := range candidates {
		resp, reclaimed := e.deleteImage(id, true)
		report.ImagesDeleted = append(report.ImagesDeleted, resp...)
		report.SpaceReclaimed += reclaimed
	}
	return report, nil
}

// deleteImage drops an image and its tags. With pruneParents, untagged
// parents left without children or containers go with it, as the daemon
// does. Callers hold e.mu.
func (e *Engine) deleteImage(id string, pruneParents bool) ([]image.DeleteResponse, uint64) {
	var (
		resp      []image.DeleteResponse
		reclaimed uint64
	)
	for id != "" {
		i := e.imageIndex(id)
		if i < 0 {
			break
		}
		img := e.images[i]
		for _, t := range img.RepoTags {
			if t != "<none>:<none>" {
				resp = append(resp, image.DeleteResponse{Untagged: t})
			}
		}
		resp = append(resp, image.DeleteResponse{Deleted: img.ID})
		if img.Size > 0 {
			reclaimed += uint64(img.Size)
		}
		e.images = append(e.images[:i], e.images[i+1:]...)

		id = ""
		if !pruneParents || img.ParentID == "" {
			break
		}
		if p := e.imageIndex(img.ParentID); p >= 0 {
			parent := e.images[p]
			if isDangling(parent) && e.usedBy(parent.ID) == 0 && !e.parentOfAny(parent.ID) {
				id = parent.ID
			}
		}
	}
	return resp, reclaimed
}

func (e *Engine) imageIndex(id string) int {
	for i, img := range e.images {
		if img.ID == id {
			return i
		}
	}
	return -1
}

func (e *Engine) Close() error { return nil }

// findContainer resolves a name (with or without the leading slash), a full
// ID or a unique ID prefix.
func (e *Engine) findContainer(ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	name := strings.TrimPrefix(ref, "/")
	for i, c := range e.containers {
		if c.ID == ref || containerName(c) == name {
			return i, nil
		}
	}
	match := -1
	if ref != "" {
		for i, c := range e.containers {
			if strings.HasPrefix(c.ID, ref) {
				if match >= 0 {
					return -1, errdefs.InvalidParameter(fmt.Errorf("multiple IDs found with provided prefix: %s", ref))
				}
				match = i
			}
		}
	}
	if match < 0 {
		return -1, errdefs.NotFound(fmt.Errorf("no such container: %s", ref))
	}
	return match, nil
}

// findImage resolves an ID, ID prefix or repo[:tag]. byTag is the matched tag
// when the reference was a name.
func (e *Engine) findImage(ref string) (idx int, byTag string, err error) {
	ref = strings.TrimSpace(ref)
	tag := ref
	if !strings.Contains(tag[strings.LastIndex(tag, "/")+1:], ":") {
		tag += ":latest"
	}
	for i, img := range e.images {
		for _, t := range img.RepoTags {
			if t == tag {
				return i, t, nil
			}
		}
	}
	id := strings.TrimPrefix(ref, "sha256:")
	if id != "" {
		for i, img := range e.images {
			if strings.HasPrefix(strings.TrimPrefix(img.ID, "sha256:"), id) {
				return i, "", nil
			}
		}
	}
	return -1, "", errdefs.NotFound(fmt.Errorf("no such image: %s", ref))
}

func (e *Engine) usedBy(imageID string) int {
	n := 0
	for _, c := range e.containers {
		if c.ImageID == imageID {
			n++
		}
	}
	return n
}

func (e *Engine) parentOfAny(imageID string) bool {
	for _, img := range e.images {
		if img.ParentID == imageID {
			return true
		}
	}
	return false
}

func (e *Engine) intermediate(img image.Summary) bool {
	return len(img.RepoTags) == 0 && e.parentOfAny(img.ID)
}

func isDangling(img image.Summary) bool {
	for _, t := range img.RepoTags {
		if t != "<none>:<none>" {
			return false
		}
	}
	return true
}

func containerName(c types.Container) string {
	if len(c.Names) == 0 {
		return ""
	}
	return strings.TrimPrefix(c.Names[0], "/")
}

func shortImageID(id string) string {
	id = strings.TrimPrefix(id, "sha256:")
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
