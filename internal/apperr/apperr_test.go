package apperr

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
	"testing"

	"github.com/docker/docker/client"
	"github.com/docker/docker/errdefs"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"not found", errdefs.NotFound(errors.New("No such container: abc")), ErrNotFound},
		{"conflict", errdefs.Conflict(errors.New("container is running")), ErrInUse},
		{"forbidden", errdefs.Forbidden(errors.New("nope")), ErrPermission},
		{"socket permission", fmt.Errorf("dial unix /var/run/docker.sock: %w", syscall.EACCES), ErrPermission},
		{"systemctl text", errors.New("Failed to start docker.service: Interactive authentication required."), ErrPermission},
		{"connection failed", client.ErrorConnectionFailed("unix:///var/run/docker.sock"), ErrDaemonUnreachable},
		{"missing binary", &exec.Error{Name: "systemctl", Err: exec.ErrNotFound}, ErrUnsupportedPlatform},
		{"unclassified", errors.New("boom"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify("op", tt.err)
			if got := KindOf(err); got != tt.want {
				t.Fatalf("KindOf() = %v, want %v", got, tt.want)
			}
			if !errors.Is(err, tt.err) {
				t.Fatalf("classified error lost its cause: %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("errors.Is(%v, %v) = false", err, tt.want)
			}
		})
	}
}

func TestClassify_KeepsExistingKind(t *testing.T) {
	first := New("start docker.service", ErrPermission, "access denied")
	again := Classify("outer", first)
	if again != first {
		t.Fatalf("expected already classified error to pass through, got %v", again)
	}
	if Classify("op", nil) != nil {
		t.Fatal("Classify(nil) should be nil")
	}
}

func TestMessage(t *testing.T) {
	msg := Message(New("start docker.service", ErrPermission, "access denied"))
	if !strings.Contains(msg, "requires elevated privileges") {
		t.Fatalf("permission hint missing: %q", msg)
	}
	msg = Message(Classify("list containers", client.ErrorConnectionFailed("unix:///var/run/docker.sock")))
	if !strings.Contains(msg, "list containers:") || !strings.Contains(msg, "daemon running") {
		t.Fatalf("unexpected message: %q", msg)
	}
	if got := Message(errors.New("plain")); got != "plain" {
		t.Fatalf("Message() = %q", got)
	}
}
