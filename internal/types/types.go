package types

import (
	"fmt"
	"time"
)

// DaemonState is the service manager's view of a unit.
type DaemonState string

const (
	StateRunning DaemonState = "running"
	StateStopped DaemonState = "stopped"
	StateUnknown DaemonState = "unknown"
)

// ServiceStatus is a point-in-time snapshot of a service unit and, for the
// daemon unit, of the Engine API behind it.
type ServiceStatus struct {
	Unit       string      `json:"unit"`
	State      DaemonState `json:"state"`
	Enabled    bool        `json:"enabled"`
	Reachable  bool        `json:"reachable"`
	Version    string      `json:"version,omitempty"`
	APIVersion string      `json:"api_version,omitempty"`
	CheckedAt  time.Time   `json:"checked_at"`
}

// PortMapping is a single published or exposed container port.
type PortMapping struct {
	IP          string `json:"ip,omitempty"`
	PrivatePort uint16 `json:"private_port"`
	PublicPort  uint16 `json:"public_port,omitempty"`
	Type        string `json:"type"`
}

func (p PortMapping) String() string {
	if p.PublicPort == 0 {
		return fmt.Sprintf("%d/%s", p.PrivatePort, p.Type)
	}
	if p.IP == "" {
		return fmt.Sprintf("%d->%d/%s", p.PublicPort, p.PrivatePort, p.Type)
	}
	return fmt.Sprintf("%s:%d->%d/%s", p.IP, p.PublicPort, p.PrivatePort, p.Type)
}

// ContainerRecord mirrors a container as the daemon reports it.
type ContainerRecord struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Status  string        `json:"status"`
	State   string        `json:"state"`
	Image   string        `json:"image"`
	Ports   []PortMapping `json:"ports"`
	Created time.Time     `json:"created"`
}

// Running reports whether the daemon considers the container running.
func (c ContainerRecord) Running() bool {
	return c.State == "running"
}

// ContainerStats is a single resource sample of a running container.
type ContainerStats struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryUsage   uint64  `json:"memory_usage"`
	MemoryLimit   uint64  `json:"memory_limit"`
	MemoryPercent float64 `json:"memory_percent"`
	PIDs          uint64  `json:"pids"`
	NetRxBytes    uint64  `json:"net_rx_bytes"`
	NetTxBytes    uint64  `json:"net_tx_bytes"`
}

// ImageRecord mirrors an image as the daemon reports it.
type ImageRecord struct {
	ID         string    `json:"id"`
	Repository string    `json:"repository"`
	Tag        string    `json:"tag"`
	Size       int64     `json:"size"`
	Created    time.Time `json:"created"`
	Containers int64     `json:"containers"`
}

// PruneResult is what a bulk removal removed.
type PruneResult struct {
	Deleted        []string `json:"deleted"`
	SpaceReclaimed uint64   `json:"space_reclaimed"`
}

// DiskInfo holds usage for one filesystem path.
type DiskInfo struct {
	Used        uint64  `json:"used"`
	Total       uint64  `json:"total"`
	UsedPercent float64 `json:"used_percent"`
}

// MemoryInfo holds RAM or swap usage.
type MemoryInfo struct {
	Total       uint64  `json:"total"`
	Used        uint64  `json:"used"`
	Available   uint64  `json:"available"`
	UsedPercent float64 `json:"used_percent"`
}

// NetworkIO holds cumulative counters for one interface.
type NetworkIO struct {
	Name        string `json:"name"`
	BytesSent   uint64 `json:"bytes_sent"`
	BytesRecv   uint64 `json:"bytes_recv"`
	PacketsSent uint64 `json:"packets_sent"`
	PacketsRecv uint64 `json:"packets_recv"`
}

// HostMetrics is a point-in-time sample of host resources.
type HostMetrics struct {
	Hostname      string               `json:"hostname"`
	OS            string               `json:"os"`
	Platform      string               `json:"platform"`
	KernelVersion string               `json:"kernel_version"`
	UptimeSeconds uint64               `json:"uptime_seconds"`
	CPUCount      int                  `json:"cpu_count"`
	CPUPercent    float64              `json:"cpu_percent"`
	Load1         float64              `json:"load1"`
	Load5         float64              `json:"load5"`
	Load15        float64              `json:"load15"`
	Memory        MemoryInfo           `json:"memory"`
	Swap          MemoryInfo           `json:"swap"`
	DiskUsage     map[string]*DiskInfo `json:"disk_usage"` // path to usage
	Network       []NetworkIO          `json:"network"`
}

// DockerInfo holds Docker daemon and version information.
type DockerInfo struct {
	Version           string `json:"version"`
	APIVersion        string `json:"api_version"`
	OS                string `json:"os"`
	OperatingSystem   string `json:"operating_system"`
	Arch              string `json:"arch"`
	KernelVersion     string `json:"kernel_version"`
	StorageDriver     string `json:"storage_driver"`
	RootDir           string `json:"root_dir"`
	Name              string `json:"name"`
	NCPU              int    `json:"ncpu"`
	MemTotal          int64  `json:"mem_total"`
	Containers        int    `json:"containers"`
	ContainersRunning int    `json:"containers_running"`
	ContainersStopped int    `json:"containers_stopped"`
	Images            int    `json:"images"`
}

// DiskUsageSummary is a deduplicated snapshot of Docker disk usage.
// It mirrors the high-level numbers shown in `docker system df`.
type DiskUsageSummary struct {
	ImagesBytes             uint64 `json:"images_bytes"`
	ContainersWritableBytes uint64 `json:"containers_writable_bytes"`
	VolumesBytes            uint64 `json:"volumes_bytes"`
	BuildCacheBytes         uint64 `json:"build_cache_bytes"`
}

// Counts holds container and image totals.
type Counts struct {
	ContainersTotal     int `json:"containers_total"`
	ContainersRunning   int `json:"containers_running"`
	ContainersStopped   int `json:"containers_stopped"`
	ContainersUnhealthy int `json:"containers_unhealthy"`
	Images              int `json:"images"`
	DanglingImages      int `json:"dangling_images"`
}

// Issue is a single finding produced by the rules.
type Issue struct {
	RuleID      string                 `json:"rule_id"`
	Subject     string                 `json:"subject"`
	Severity    string                 `json:"severity"`
	Category    string                 `json:"category"`
	Description string                 `json:"description"`
	Facts       map[string]interface{} `json:"facts"`
	Solutions   []string               `json:"solutions"`
}

// ReportKind distinguishes quick and full health reports.
type ReportKind string

const (
	ReportQuick ReportKind = "quick"
	ReportFull  ReportKind = "full"
)

// HealthReport is the top-level structure for a health report.
type HealthReport struct {
	Kind      ReportKind        `json:"kind"`
	Timestamp time.Time         `json:"timestamp"`
	Service   ServiceStatus     `json:"service"`
	Counts    Counts            `json:"counts"`
	Unhealthy []string          `json:"unhealthy_containers,omitempty"`
	Docker    *DockerInfo       `json:"docker,omitempty"`
	DiskUsage *DiskUsageSummary `json:"disk_usage,omitempty"`
	Host      *HostMetrics      `json:"host,omitempty"`
	Issues    []Issue           `json:"issues"`
	Errors    []string          `json:"errors"`
}
