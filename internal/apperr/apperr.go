// Package apperr classifies failures from the Docker Engine API and the OS
// service manager into the small set of kinds the user interface reports.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"

	"github.com/docker/docker/client"
	"github.com/docker/docker/errdefs"
)

var (
	ErrPermission          = errors.New("permission denied")
	ErrDaemonUnreachable   = errors.New("docker daemon unreachable")
	ErrNotFound            = errors.New("not found")
	ErrInUse               = errors.New("in use")
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrInvalidInput        = errors.New("invalid input")
)

var permissionMarkers = []string{
	"permission denied",
	"access denied",
	"access is denied",
	"interactive authentication required",
	"must be root",
	"a password is required",
}

// Error is a failed operation together with its classified kind.
// errors.Is matches both the kind sentinel and the original cause.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() []error {
	if e.Kind == nil {
		return []error{e.Err}
	}
	return []error{e.Kind, e.Err}
}

// New creates an error of the given kind with a formatted cause.
func New(op string, kind error, format string, args ...any) error {
	return &Error{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Classify wraps err with op and the kind inferred from it. Errors that are
// already classified are returned unchanged.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Op: op, Kind: KindOf(err), Err: err}
}

// KindOf returns the sentinel matching err, or nil when err does not fit the
// taxonomy.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range []error{ErrPermission, ErrDaemonUnreachable, ErrNotFound, ErrInUse, ErrUnsupportedPlatform, ErrInvalidInput} {
		if errors.Is(err, k) {
			return k
		}
	}
	msg := strings.ToLower(err.Error())
	switch {
	case errdefs.IsNotFound(err):
		return ErrNotFound
	case errdefs.IsConflict(err):
		return ErrInUse
	case errdefs.IsForbidden(err), errdefs.IsUnauthorized(err), errors.Is(err, fs.ErrPermission), containsAny(msg, permissionMarkers):
		return ErrPermission
	case client.IsErrConnectionFailed(err), errdefs.IsUnavailable(err), errors.Is(err, context.DeadlineExceeded):
		return ErrDaemonUnreachable
	case errors.Is(err, exec.ErrNotFound):
		return ErrUnsupportedPlatform
	case errdefs.IsInvalidParameter(err):
		return ErrInvalidInput
	}
	return nil
}

// Message renders err for the terminal, adding a hint for the kinds the user
// can act on.
func Message(err error) string {
	if err == nil {
		return ""
	}
	switch KindOf(err) {
	case ErrPermission:
		return err.Error() + " (requires elevated privileges: run with sudo or add your user to the docker group)"
	case ErrDaemonUnreachable:
		return err.Error() + " (is the Docker daemon running?)"
	case ErrUnsupportedPlatform:
		return err.Error() + " (no supported service manager found on this platform)"
	}
	return err.Error()
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
