package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level configuration structure.
type Config struct {
	Docker  DockerConfig  `yaml:"docker"`
	Service ServiceConfig `yaml:"service"`
	Report  ReportConfig  `yaml:"report"`
	Rules   Rules         `yaml:"rules"`
	Watch   WatchConfig   `yaml:"watch"`
	Log     LogConfig     `yaml:"log"`
}

// DockerConfig holds Engine API connection settings.
type DockerConfig struct {
	Host       string `yaml:"host"`
	APIVersion string `yaml:"apiVersion"` // empty negotiates with the daemon
	Timeout    int    `yaml:"timeout"`    // seconds
}

// ServiceConfig holds OS service manager settings.
type ServiceConfig struct {
	Unit         string `yaml:"unit"`
	SocketUnit   string `yaml:"socketUnit"`
	StartTimeout int    `yaml:"startTimeout"` // seconds to wait for the daemon after start
	UseSudo      bool   `yaml:"useSudo"`
}

// ReportConfig controls health report collection and rendering.
type ReportConfig struct {
	DiskPaths       []string `yaml:"diskPaths"`
	CPUSampleMillis int      `yaml:"cpuSampleMillis"`
	Graphs          bool     `yaml:"graphs"`
	GraphWidth      int      `yaml:"graphWidth"`
}

// WatchConfig holds the periodic report settings of `dsm watch`.
type WatchConfig struct {
	Interval    int    `yaml:"interval"` // seconds between reports
	Full        bool   `yaml:"full"`
	MetricsAddr string `yaml:"metricsAddr"` // empty disables the metrics server
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Rules holds the health report thresholds.
type Rules struct {
	DiskUsage         ThresholdRule     `yaml:"disk_usage"`
	Memory            ThresholdRule     `yaml:"memory"`
	CPU               ThresholdRule     `yaml:"cpu"`
	StoppedContainers CountRule         `yaml:"stopped_containers"`
	DanglingImages    CountRule         `yaml:"dangling_images"`
	StorageBloat      StorageBloatRule  `yaml:"storage_bloat"`
	Engine            EngineVersionRule `yaml:"engine"`
}

// ThresholdRule is a percentage threshold (0-100).
type ThresholdRule struct {
	Threshold int `yaml:"threshold"`
}

// CountRule fires when a count exceeds Threshold.
type CountRule struct {
	Threshold int `yaml:"threshold"`
}

// StorageBloatRule defines the image storage threshold in bytes.
type StorageBloatRule struct {
	ImageSizeThreshold uint64 `yaml:"image_size_threshold"`
}

// EngineVersionRule sets the oldest engine version reported as current.
type EngineVersionRule struct {
	MinVersion string `yaml:"min_version"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Docker: DockerConfig{
			Timeout: 30,
		},
		Service: ServiceConfig{
			Unit:         "docker.service",
			SocketUnit:   "docker.socket",
			StartTimeout: 30,
		},
		Report: ReportConfig{
			DiskPaths:       []string{"/", "/var/lib/docker"},
			CPUSampleMillis: 500,
			Graphs:          true,
			GraphWidth:      30,
		},
		Rules: Rules{
			DiskUsage:         ThresholdRule{Threshold: 80},
			Memory:            ThresholdRule{Threshold: 90},
			CPU:               ThresholdRule{Threshold: 90},
			StoppedContainers: CountRule{Threshold: 10},
			DanglingImages:    CountRule{Threshold: 0},
			StorageBloat:      StorageBloatRule{ImageSizeThreshold: 10737418240},
			Engine:            EngineVersionRule{MinVersion: "20.10.0"},
		},
		Watch: WatchConfig{
			Interval: 60,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Load reads and parses the config file on top of the defaults.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadOptional behaves like Load but falls back to the defaults when the
// file does not exist.
func LoadOptional(filename string) (*Config, error) {
	cfg, err := Load(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// DockerTimeout returns the Engine API timeout as a duration.
func (c *Config) DockerTimeout() time.Duration {
	return time.Duration(c.Docker.Timeout) * time.Second
}

// StartTimeout returns how long to wait for the daemon after a start.
func (c *Config) StartTimeout() time.Duration {
	return time.Duration(c.Service.StartTimeout) * time.Second
}

// WatchInterval returns the time between periodic reports.
func (c *Config) WatchInterval() time.Duration {
	return time.Duration(c.Watch.Interval) * time.Second
}

// CPUSample returns the CPU sampling window.
func (c *Config) CPUSample() time.Duration {
	return time.Duration(c.Report.CPUSampleMillis) * time.Millisecond
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if err := c.Docker.Validate(); err != nil {
		return err
	}
	if err := c.Service.Validate(); err != nil {
		return err
	}
	if err := c.Report.Validate(); err != nil {
		return err
	}
	if c.Watch.Interval <= 0 {
		return fmt.Errorf("watch interval must be greater than 0, got %d", c.Watch.Interval)
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	return c.Rules.Validate()
}

// Validate checks the DockerConfig for correctness.
func (d *DockerConfig) Validate() error {
	if d.Timeout <= 0 {
		return fmt.Errorf("docker timeout must be greater than 0, got %d", d.Timeout)
	}
	return nil
}

// Validate checks the ServiceConfig for correctness.
func (s *ServiceConfig) Validate() error {
	if strings.TrimSpace(s.Unit) == "" {
		return fmt.Errorf("service unit cannot be empty")
	}
	if strings.TrimSpace(s.SocketUnit) == "" {
		return fmt.Errorf("service socketUnit cannot be empty")
	}
	if s.StartTimeout <= 0 {
		return fmt.Errorf("service startTimeout must be greater than 0, got %d", s.StartTimeout)
	}
	return nil
}

// Validate checks the ReportConfig for correctness.
func (r *ReportConfig) Validate() error {
	if r.CPUSampleMillis < 0 {
		return fmt.Errorf("report cpuSampleMillis cannot be negative, got %d", r.CPUSampleMillis)
	}
	if r.GraphWidth <= 0 {
		return fmt.Errorf("report graphWidth must be greater than 0, got %d", r.GraphWidth)
	}
	return nil
}

// Validate checks the LogConfig for correctness.
func (l *LogConfig) Validate() error {
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(l.Level)] {
		return fmt.Errorf("invalid log level '%s', must be one of: trace, debug, info, warn, error", l.Level)
	}
	return nil
}

// Validate checks the Rules for correctness.
func (r *Rules) Validate() error {
	for name, t := range map[string]ThresholdRule{
		"disk_usage": r.DiskUsage,
		"memory":     r.Memory,
		"cpu":        r.CPU,
	} {
		if t.Threshold < 0 || t.Threshold > 100 {
			return fmt.Errorf("%s threshold must be between 0 and 100, got %d", name, t.Threshold)
		}
	}
	if r.StoppedContainers.Threshold < 0 {
		return fmt.Errorf("stopped_containers threshold cannot be negative, got %d", r.StoppedContainers.Threshold)
	}
	if r.DanglingImages.Threshold < 0 {
		return fmt.Errorf("dangling_images threshold cannot be negative, got %d", r.DanglingImages.Threshold)
	}
	if r.Engine.MinVersion != "" {
		if _, err := ParseEngineVersion(r.Engine.MinVersion); err != nil {
			return fmt.Errorf("engine min_version %q is not a valid version: %w", r.Engine.MinVersion, err)
		}
	}
	return nil
}
