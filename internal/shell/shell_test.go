package shell

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/dashu-baba/docker-service-manager/internal/app"
	"github.com/dashu-baba/docker-service-manager/internal/config"
	"github.com/dashu-baba/docker-service-manager/internal/demo"
)

func init() { color.NoColor = true }

func run(t *testing.T, input string) string {
	t.Helper()
	var out bytes.Buffer
	a := app.NewDemo(config.Default(), &out, zerolog.Nop())
	if err := New(a, strings.NewReader(input), "v0.0.0-test").Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return out.String()
}

func TestShell(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		notWant []string
	}{
		{
			name:  "quit from main menu",
			input: "q\n",
			want:  []string{"Docker Service Manager", demo.Notice, "=== Main Menu ===", "6. Health Reports", "Goodbye!"},
		},
		{
			name:  "end of input quits",
			input: "",
			want:  []string{"Goodbye!"},
		},
		{
			name:  "invalid choice repeats the menu",
			input: "9\nq\n",
			want:  []string{`Invalid choice "9". Please try again.`},
		},
		{
			name:  "back is not valid in the main menu",
			input: "b\nq\n",
			want:  []string{`Invalid choice "b"`},
		},
		{
			name:  "help",
			input: "h\nq\n",
			want:  []string{"Main Menu: type the number of an action"},
		},
		{
			name:  "service status",
			input: "1\n1\nb\nq\n",
			want:  []string{"=== Service Management ===", "docker.service", "running", "reachable"},
		},
		{
			name:  "disable is reflected in status",
			input: "1\n6\n1\nq\n",
			want:  []string{"docker.service disabled", "Start at boot:", "disabled"},
		},
		{
			name:  "socket stop",
			input: "2\n3\n1\nq\n",
			want:  []string{"=== Socket Management ===", "docker.socket stopped"},
		},
		{
			name:  "container resource usage",
			input: "3\n6\nq\n",
			want:  []string{"6. Show Container Resource Usage", "NAME", "db", "worker", "3 container(s)"},
		},
		{
			name:  "list running containers",
			input: "3\n1\nq\n",
			want:  []string{"CONTAINER ID", "web", "3 container(s)"},
		},
		{
			name:  "remove running container needs force",
			input: "3\n3\nweb\nn\n3\nweb\ny\nq\n",
			want:  []string{"container is running", "Container web removed"},
		},
		{
			name:  "remove unknown container",
			input: "3\n3\nghost\nn\nq\n",
			want:  []string{"no such container: ghost"},
		},
		{
			name:  "empty container id",
			input: "3\n3\n\nq\n",
			want:  []string{"container ID or name is required"},
		},
		{
			name:    "declined prune removes nothing",
			input:   "3\n4\nn\n2\nq\n",
			want:    []string{"5 container(s)"},
			notWant: []string{"Deleted:"},
		},
		{
			name:  "prune stopped containers twice",
			input: "3\n4\ny\n4\ny\nq\n",
			want:  []string{"Removed 2 stopped containers", "No stopped containers to remove."},
		},
		{
			name:  "container logs default lines",
			input: "3\n5\nweb\n\nq\n",
			want:  []string{"Number of lines [100]:"},
		},
		{
			name:  "invalid log line count",
			input: "3\n5\nweb\nlots\nq\n",
			want:  []string{`invalid number of lines "lots"`},
		},
		{
			name:  "prune dangling images",
			input: "4\n4\ny\nq\n",
			want:  []string{"=== Image Management ===", "Removed 1 dangling images"},
		},
		{
			name:  "system information",
			input: "5\n1\n2\n3\nq\n",
			want:  []string{"Server Version:", "27.3.1", "Hostname:", "demo-host", `member of the "docker" group`},
		},
		{
			name:  "quick health report",
			input: "6\n2\nq\n",
			want:  []string{"Health report (quick)", "Containers: 5 total, 3 running, 2 stopped, 1 unhealthy"},
		},
		{
			name:  "full health report",
			input: "6\n1\nq\n",
			want:  []string{"Health report (full)", "UNHEALTHY_CONTAINERS", "DANGLING_IMAGES"},
		},
		{
			name:  "stopped daemon is reported without crashing",
			input: "1\n3\nb\n3\n1\nq\n",
			want:  []string{"docker.service stopped", "is the Docker daemon running?"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := run(t, tt.input)
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q\n\n%s", w, out)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("output unexpectedly contains %q", w)
				}
			}
		})
	}
}
