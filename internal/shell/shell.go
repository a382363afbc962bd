// Package shell implements the interactive menu interface.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dashu-baba/docker-service-manager/internal/app"
	"github.com/dashu-baba/docker-service-manager/internal/apperr"
	"github.com/dashu-baba/docker-service-manager/internal/containers"
	"github.com/dashu-baba/docker-service-manager/internal/demo"
	"github.com/dashu-baba/docker-service-manager/internal/render"
)

// errQuit unwinds nested menus when the user quits.
var errQuit = errors.New("quit")

type item struct {
	key   string
	label string
	run   func(ctx context.Context) error
}

type menu struct {
	title string
	items []item
}

// Shell reads menu choices from in and writes everything to the App's output.
type Shell struct {
	app     *app.App
	in      *bufio.Reader
	out     io.Writer
	version string
}

func New(a *app.App, in io.Reader, version string) *Shell {
	return &Shell{app: a, in: bufio.NewReader(in), out: a.Out, version: version}
}

// Run shows the main menu until the user quits, input ends or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	render.Banner(s.out, s.version)
	if s.app.Demo {
		render.Notice(s.out, demo.Notice)
	}
	err := s.loop(ctx, s.mainMenu(), false)
	if errors.Is(err, errQuit) || errors.Is(err, io.EOF) {
		fmt.Fprintln(s.out, "Goodbye!")
		return nil
	}
	return err
}

func (s *Shell) loop(ctx context.Context, m menu, sub bool) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.print(m, sub)
		choice, err := s.readLine("\nEnter your choice: ")
		if err != nil {
			return err
		}
		switch strings.ToLower(choice) {
		case "q":
			return errQuit
		case "h", "?":
			s.help(m, sub)
			continue
		case "b":
			if sub {
				return nil
			}
		}

		it, ok := find(m, strings.ToLower(choice))
		if !ok {
			render.Failure(s.out, "Invalid choice %q. Please try again.", choice)
			continue
		}
		if err := it.run(ctx); err != nil {
			if errors.Is(err, errQuit) || errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				return err
			}
			render.Failure(s.out, "%s", apperr.Message(err))
		}
	}
}

func find(m menu, key string) (item, bool) {
	for _, it := range m.items {
		if it.key == key {
			return it, true
		}
	}
	return item{}, false
}

func (s *Shell) print(m menu, sub bool) {
	fmt.Fprintf(s.out, "\n=== %s ===\n", m.title)
	fmt.Fprintln(s.out, strings.Repeat("-", len(m.title)+8))
	for _, it := range m.items {
		fmt.Fprintf(s.out, "%s. %s\n", it.key, it.label)
	}
	if sub {
		fmt.Fprintln(s.out, "b. Back to Main Menu")
	}
	fmt.Fprintln(s.out, "h. Help")
	fmt.Fprintln(s.out, "q. Quit")
}

func (s *Shell) help(m menu, sub bool) {
	fmt.Fprintf(s.out, "\n%s: type the number of an action and press Enter.\n", m.title)
	if sub {
		fmt.Fprintln(s.out, "'b' returns to the main menu, 'q' quits dsm.")
	} else {
		fmt.Fprintln(s.out, "'q' quits dsm. Every menu action is also available as a subcommand, see 'dsm --help'.")
	}
}

// readLine prints prompt and returns the trimmed line. A final line without
// a newline is returned before io.EOF.
func (s *Shell) readLine(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	line, err := s.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		fmt.Fprintln(s.out)
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (s *Shell) confirm(prompt string) (bool, error) {
	answer, err := s.readLine(prompt + " (y/N): ")
	if err != nil {
		return false, err
	}
	return strings.HasPrefix(strings.ToLower(answer), "y"), nil
}

func (s *Shell) required(prompt, op, what string) (string, error) {
	v, err := s.readLine(prompt)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", apperr.New(op, apperr.ErrInvalidInput, "%s is required", what)
	}
	return v, nil
}

func (s *Shell) lines() (int, error) {
	v, err := s.readLine(fmt.Sprintf("Number of lines [%d]: ", containers.DefaultLogTail))
	if err != nil {
		return 0, err
	}
	if v == "" {
		return containers.DefaultLogTail, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, apperr.New("container logs", apperr.ErrInvalidInput, "invalid number of lines %q", v)
	}
	return n, nil
}
