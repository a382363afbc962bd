package render

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/docker/go-units"

	"github.com/dashu-baba/docker-service-manager/internal/types"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 10, 1, 3, ' ', 0)
}

// Containers prints containers the way `docker ps` does.
func Containers(w io.Writer, list []types.ContainerRecord) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No containers found.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "CONTAINER ID\tNAME\tIMAGE\tSTATE\tSTATUS\tPORTS\tCREATED")
	for _, c := range list {
		ports := make([]string, 0, len(c.Ports))
		for _, p := range c.Ports {
			ports = append(ports, p.String())
		}
		state := c.State
		if c.Running() {
			state = green(state)
		} else {
			state = yellow(state)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.Name, c.Image, state, c.Status, strings.Join(ports, ", "), ago(c.Created))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d container(s)\n", len(list))
	return err
}

// Images prints images the way `docker images` does.
func Images(w io.Writer, list []types.ImageRecord) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No images found.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "REPOSITORY\tTAG\tIMAGE ID\tCREATED\tSIZE\tCONTAINERS")
	var total int64
	for _, img := range list {
		total += img.Size
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n",
			img.Repository, img.Tag, img.ID, ago(img.Created), units.HumanSizeWithPrecision(float64(img.Size), 3), img.Containers)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d image(s), %s total\n", len(list), units.HumanSize(float64(total)))
	return err
}

// Pruned summarizes a prune.
func Pruned(w io.Writer, what string, res types.PruneResult) {
	if len(res.Deleted) == 0 {
		fmt.Fprintf(w, "No %s to remove.\n", what)
		return
	}
	for _, id := range res.Deleted {
		fmt.Fprintf(w, "Deleted: %s\n", id)
	}
	Success(w, "Removed %d %s, reclaimed %s", len(res.Deleted), what, units.HumanSize(float64(res.SpaceReclaimed)))
}

// Status prints a unit status line and its details.
func Status(w io.Writer, st types.ServiceStatus) {
	state := string(st.State)
	switch st.State {
	case types.StateRunning:
		state = green(state)
	case types.StateStopped:
		state = red(state)
	default:
		state = yellow(state)
	}
	enabled := yellow("disabled")
	if st.Enabled {
		enabled = green("enabled")
	}
	tw := newTable(w)
	fmt.Fprintf(tw, "Unit:\t%s\n", st.Unit)
	fmt.Fprintf(tw, "State:\t%s\n", state)
	fmt.Fprintf(tw, "Start at boot:\t%s\n", enabled)
	if st.Reachable {
		fmt.Fprintf(tw, "Engine API:\t%s\n", green("reachable"))
	} else {
		fmt.Fprintf(tw, "Engine API:\t%s\n", red("unreachable"))
	}
	if st.Version != "" {
		fmt.Fprintf(tw, "Version:\t%s (API %s)\n", st.Version, st.APIVersion)
	}
	tw.Flush()
}

// DockerInfo prints engine details.
func DockerInfo(w io.Writer, d *types.DockerInfo) {
	if d == nil {
		return
	}
	tw := newTable(w)
	fmt.Fprintf(tw, "Server Version:\t%s\n", d.Version)
	fmt.Fprintf(tw, "API Version:\t%s\n", d.APIVersion)
	fmt.Fprintf(tw, "Name:\t%s\n", d.Name)
	fmt.Fprintf(tw, "Operating System:\t%s\n", d.OperatingSystem)
	fmt.Fprintf(tw, "OSType / Architecture:\t%s / %s\n", d.OS, d.Arch)
	fmt.Fprintf(tw, "Kernel Version:\t%s\n", d.KernelVersion)
	fmt.Fprintf(tw, "Storage Driver:\t%s\n", d.StorageDriver)
	fmt.Fprintf(tw, "Docker Root Dir:\t%s\n", d.RootDir)
	fmt.Fprintf(tw, "CPUs:\t%d\n", d.NCPU)
	fmt.Fprintf(tw, "Total Memory:\t%s\n", units.BytesSize(float64(d.MemTotal)))
	fmt.Fprintf(tw, "Containers:\t%d (running %d, stopped %d)\n", d.Containers, d.ContainersRunning, d.ContainersStopped)
	fmt.Fprintf(tw, "Images:\t%d\n", d.Images)
	tw.Flush()
}

// Host prints host resources, with usage bars when graphs is set.
func Host(w io.Writer, h *types.HostMetrics, graphs bool, width int) {
	if h == nil {
		return
	}
	usage := func(pct float64, detail string) string {
		if graphs {
			return Bar(pct, width) + "  " + detail
		}
		return fmt.Sprintf("%.1f%%  %s", pct, detail)
	}

	tw := newTable(w)
	fmt.Fprintf(tw, "Hostname:\t%s\n", h.Hostname)
	fmt.Fprintf(tw, "OS:\t%s %s (kernel %s)\n", h.OS, h.Platform, h.KernelVersion)
	fmt.Fprintf(tw, "Uptime:\t%s\n", units.HumanDuration(time.Duration(h.UptimeSeconds)*time.Second))
	fmt.Fprintf(tw, "CPU:\t%s\n", usage(h.CPUPercent, fmt.Sprintf("%d cores, load %.2f %.2f %.2f", h.CPUCount, h.Load1, h.Load5, h.Load15)))
	fmt.Fprintf(tw, "Memory:\t%s\n", usage(h.Memory.UsedPercent, fmt.Sprintf("%s / %s", units.BytesSize(float64(h.Memory.Used)), units.BytesSize(float64(h.Memory.Total)))))
	if h.Swap.Total > 0 {
		fmt.Fprintf(tw, "Swap:\t%s\n", usage(h.Swap.UsedPercent, fmt.Sprintf("%s / %s", units.BytesSize(float64(h.Swap.Used)), units.BytesSize(float64(h.Swap.Total)))))
	}

	paths := make([]string, 0, len(h.DiskUsage))
	for p := range h.DiskUsage {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		d := h.DiskUsage[p]
		fmt.Fprintf(tw, "Disk %s:\t%s\n", p, usage(d.UsedPercent, fmt.Sprintf("%s / %s", units.BytesSize(float64(d.Used)), units.BytesSize(float64(d.Total)))))
	}
	for _, n := range h.Network {
		fmt.Fprintf(tw, "Network %s:\trx %s  tx %s\n", n.Name, units.BytesSize(float64(n.BytesRecv)), units.BytesSize(float64(n.BytesSent)))
	}
	tw.Flush()
}

func ago(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return units.HumanDuration(time.Since(t)) + " ago"
}

// ContainerStats prints one row per running container with CPU and memory
// bars of the given width.
func ContainerStats(w io.Writer, list []types.ContainerStats, width int) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No running containers.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "NAME\tCPU\tMEMORY\tMEM USAGE / LIMIT\tPIDS\tNET I/O")
	for _, st := range list {
		limit := "-"
		if st.MemoryLimit > 0 {
			limit = units.BytesSize(float64(st.MemoryLimit))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s / %s\t%d\t%s / %s\n",
			st.Name, Bar(st.CPUPercent, width), Bar(st.MemoryPercent, width),
			units.BytesSize(float64(st.MemoryUsage)), limit, st.PIDs,
			units.HumanSizeWithPrecision(float64(st.NetRxBytes), 3), units.HumanSizeWithPrecision(float64(st.NetTxBytes), 3))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d container(s)\n", len(list))
	return err
}
