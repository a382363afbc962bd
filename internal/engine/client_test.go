package engine

import "testing"

func TestNewHostPrecedence(t *testing.T) {
	tests := []struct {
		name       string
		env        string
		configured string
		want       string
	}{
		{name: "nothing set", want: DefaultHost},
		{name: "DOCKER_HOST", env: "unix:///run/user/1000/docker.sock", want: "unix:///run/user/1000/docker.sock"},
		{name: "configured host wins", env: "unix:///run/user/1000/docker.sock", configured: "tcp://10.0.0.5:2375", want: "tcp://10.0.0.5:2375"},
		{name: "configured host only", configured: "tcp://10.0.0.5:2375", want: "tcp://10.0.0.5:2375"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DOCKER_HOST", tt.env)
			t.Setenv("DOCKER_TLS_VERIFY", "")
			t.Setenv("DOCKER_CERT_PATH", "")
			t.Setenv("DOCKER_API_VERSION", "")

			cli, err := New(Options{Host: tt.configured})
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			defer cli.Close()
			if got := cli.DaemonHost(); got != tt.want {
				t.Errorf("DaemonHost() = %q, want %q", got, tt.want)
			}
		})
	}
}
