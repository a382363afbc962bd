package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "empty docker host defers to DOCKER_HOST",
			mutate:  func(c *Config) { c.Docker.Host = "" },
			wantErr: false,
		},
		{
			name:    "invalid docker timeout",
			mutate:  func(c *Config) { c.Docker.Timeout = 0 },
			wantErr: true,
		},
		{
			name:    "empty unit",
			mutate:  func(c *Config) { c.Service.Unit = "" },
			wantErr: true,
		},
		{
			name:    "invalid start timeout",
			mutate:  func(c *Config) { c.Service.StartTimeout = -1 },
			wantErr: true,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Log.Level = "loud" },
			wantErr: true,
		},
		{
			name:    "invalid disk threshold",
			mutate:  func(c *Config) { c.Rules.DiskUsage.Threshold = 150 },
			wantErr: true,
		},
		{
			name:    "invalid memory threshold",
			mutate:  func(c *Config) { c.Rules.Memory.Threshold = -5 },
			wantErr: true,
		},
		{
			name:    "invalid engine version",
			mutate:  func(c *Config) { c.Rules.Engine.MinVersion = "not-a-version" },
			wantErr: true,
		},
		{
			name:    "zero-padded engine version",
			mutate:  func(c *Config) { c.Rules.Engine.MinVersion = "19.03.0" },
			wantErr: false,
		},
		{
			name:    "empty engine version disables the rule",
			mutate:  func(c *Config) { c.Rules.Engine.MinVersion = "" },
			wantErr: false,
		},
		{
			name:    "zero graph width",
			mutate:  func(c *Config) { c.Report.GraphWidth = 0 },
			wantErr: true,
		},
		{
			name:    "zero watch interval",
			mutate:  func(c *Config) { c.Watch.Interval = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	content := `docker:
  host: tcp://10.0.0.5:2375
  apiVersion: "1.43"
service:
  unit: docker.service
  socketUnit: docker.socket
  startTimeout: 10
  useSudo: true
report:
  diskPaths: ["/"]
  graphs: false
rules:
  disk_usage:
    threshold: 70
  engine:
    min_version: "24.0.0"
log:
  level: debug
`
	path := filepath.Join(t.TempDir(), "dsm.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Docker.Host != "tcp://10.0.0.5:2375" {
		t.Errorf("Expected docker host 'tcp://10.0.0.5:2375', got %s", cfg.Docker.Host)
	}
	if cfg.Docker.APIVersion != "1.43" {
		t.Errorf("Expected apiVersion '1.43', got %s", cfg.Docker.APIVersion)
	}
	if cfg.Docker.Timeout != 30 {
		t.Errorf("Expected default timeout 30 to survive, got %d", cfg.Docker.Timeout)
	}
	if !cfg.Service.UseSudo || cfg.Service.StartTimeout != 10 {
		t.Errorf("Unexpected service config %+v", cfg.Service)
	}
	if len(cfg.Report.DiskPaths) != 1 || cfg.Report.Graphs {
		t.Errorf("Unexpected report config %+v", cfg.Report)
	}
	if cfg.Report.CPUSampleMillis != 500 {
		t.Errorf("Expected default cpuSampleMillis 500, got %d", cfg.Report.CPUSampleMillis)
	}
	if cfg.Rules.DiskUsage.Threshold != 70 {
		t.Errorf("Expected disk_usage threshold 70, got %d", cfg.Rules.DiskUsage.Threshold)
	}
	if cfg.Rules.Memory.Threshold != 90 {
		t.Errorf("Expected default memory threshold 90, got %d", cfg.Rules.Memory.Threshold)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.Log.Level)
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dsm.yml")
	if err := os.WriteFile(path, []byte("rules:\n  cpu:\n    threshold: 200\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadOptional(t *testing.T) {
	cfg, err := LoadOptional(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("LoadOptional() error = %v", err)
	}
	if cfg.Service.Unit != "docker.service" {
		t.Errorf("expected defaults, got %+v", cfg.Service)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Fatal("Load() should fail for a missing file")
	}
}
