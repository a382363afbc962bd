package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/dashu-baba/docker-service-manager/internal/config"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantLevel zerolog.Level
	}{
		{"default level", "", zerolog.WarnLevel},
		{"debug level", "debug", zerolog.DebugLevel},
		{"info level", "info", zerolog.InfoLevel},
		{"error level", "error", zerolog.ErrorLevel},
		{"case insensitive", "DEBUG", zerolog.DebugLevel},
		{"unknown falls back", "chatty", zerolog.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, cleanup, err := Setup(config.LogConfig{Level: tt.level}, &buf)
			if err != nil {
				t.Fatalf("Setup() failed: %v", err)
			}
			defer cleanup()

			if logger.GetLevel() != tt.wantLevel {
				t.Errorf("expected level %v, got %v", tt.wantLevel, logger.GetLevel())
			}
		})
	}
}

func TestSetupWithFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "dsm.log")

	var console bytes.Buffer
	logger, cleanup, err := Setup(config.LogConfig{Level: "info", File: logPath}, &console)
	if err != nil {
		t.Fatalf("Setup() with file failed: %v", err)
	}

	logger.Info().Str("unit", "docker.service").Msg("service started")
	cleanup()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("log file was not created at %s: %v", logPath, err)
	}
	if !strings.Contains(string(data), `"unit":"docker.service"`) {
		t.Errorf("log file missing structured field: %s", data)
	}
	if !strings.Contains(console.String(), "service started") {
		t.Errorf("console output missing message: %s", console.String())
	}
}
