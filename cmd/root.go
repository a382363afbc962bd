package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dashu-baba/docker-service-manager/internal/app"
	"github.com/dashu-baba/docker-service-manager/internal/apperr"
	"github.com/dashu-baba/docker-service-manager/internal/config"
	"github.com/dashu-baba/docker-service-manager/internal/demo"
	"github.com/dashu-baba/docker-service-manager/internal/logging"
	"github.com/dashu-baba/docker-service-manager/internal/render"
	"github.com/dashu-baba/docker-service-manager/internal/shell"
)

const defaultConfigFile = "dsm.yml"

var (
	version   = "dev"
	gitCommit = ""
	buildTime = ""
)

// SetVersion records build information for --version.
func SetVersion(v, commit, built string) {
	version, gitCommit, buildTime = v, commit, built
}

func versionString() string {
	s := version
	if gitCommit != "" {
		s += " (" + gitCommit + ")"
	}
	if buildTime != "" {
		s += " built " + buildTime
	}
	return s
}

type exitCoder interface {
	ExitCode() int
}

// ExitError allows commands to exit with a specific exit code.
// If Err is nil, no error message is printed.
type ExitError struct {
	Code int
	Err  error
}

func (e ExitError) ExitCode() int { return e.Code }
func (e ExitError) Unwrap() error { return e.Err }
func (e ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// failed marks an error from a classified operation: it exits with 1 and
// prints the user-facing message.
func failed(err error) error {
	if err == nil {
		return nil
	}
	var ee ExitError
	if errors.As(err, &ee) {
		return err
	}
	if apperr.KindOf(err) != nil {
		return ExitError{Code: 1, Err: errors.New(apperr.Message(err))}
	}
	return err
}

// rootOptions carries the global flags and the environment built from them.
type rootOptions struct {
	configFile  string
	demo        bool
	interactive bool
	noColor     bool
	logLevel    string
	dockerHost  string

	v       *viper.Viper
	app     *app.App
	cleanup func()
}

func (o *rootOptions) env(cmd *cobra.Command) *app.App {
	o.app.Out = cmd.OutOrStdout()
	return o.app
}

func newRootCmd() (*cobra.Command, *rootOptions) {
	o := &rootOptions{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "dsm",
		Short: "Manage the Docker service, containers and images",
		Long: `Docker Service Manager controls the Docker daemon and socket units,
manages containers and images, shows host and engine information and
produces health reports.

Run without a subcommand (or with --interactive) for the menu interface.`,
		Version:       versionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a := o.env(cmd)
			return failed(shell.New(a, cmd.InOrStdin(), versionString()).Run(cmd.Context()))
		},
	}
	rootCmd.SetVersionTemplate("dsm {{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&o.configFile, "config", defaultConfigFile, "config file")
	pf.BoolVar(&o.demo, "demo", false, "use simulated Docker, service manager and host data")
	pf.StringVar(&o.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	pf.StringVar(&o.dockerHost, "docker-host", "", "Docker Engine API address (default from config or DOCKER_HOST)")
	pf.BoolVar(&o.noColor, "no-color", false, "disable colored output")
	rootCmd.Flags().BoolVarP(&o.interactive, "interactive", "i", false, "run the interactive menu (default without a subcommand)")

	bindFlags(o.v, pf, map[string]string{
		"log.level":   "log-level",
		"docker.host": "docker-host",
		"demo":        "demo",
		"no_color":    "no-color",
	})

	rootCmd.AddCommand(
		newUnitCmd(o, "service", "Control the Docker daemon unit", func(a *app.App) app.Unit { return a.Daemon }),
		newUnitCmd(o, "socket", "Control the Docker socket unit", func(a *app.App) app.Unit { return a.Socket }),
		newContainerCmd(o),
		newImageCmd(o),
		newInfoCmd(o),
		newReportCmd(o),
		newWatchCmd(o),
	)
	return rootCmd, o
}

// bindFlags maps viper keys to flags; DSM_* environment variables override
// the flag defaults, explicitly set flags override both.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		_ = v.BindPFlag(key, fs.Lookup(name))
	}
	v.SetEnvPrefix("DSM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// setup loads the configuration, applies environment and flag overrides and
// builds the environment every subcommand runs against.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	var (
		cfg *config.Config
		err error
	)
	if cmd.Flags().Changed("config") {
		cfg, err = config.Load(o.configFile)
	} else {
		cfg, err = config.LoadOptional(o.configFile)
	}
	if err != nil {
		return err
	}
	if s := o.v.GetString("log.level"); s != "" {
		cfg.Log.Level = s
	}
	if s := o.v.GetString("docker.host"); s != "" {
		cfg.Docker.Host = s
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if o.v.GetBool("no_color") {
		render.DisableColor()
	}

	logger, cleanup, err := logging.Setup(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	o.cleanup = cleanup

	if o.v.GetBool("demo") {
		o.app = app.NewDemo(cfg, cmd.OutOrStdout(), logger)
		if cmd != cmd.Root() {
			render.Notice(cmd.OutOrStdout(), demo.Notice)
		}
		return nil
	}
	o.app, err = app.New(cfg, cmd.OutOrStdout(), logger)
	return err
}

func (o *rootOptions) close() {
	if o.app != nil {
		_ = o.app.Close()
	}
	if o.cleanup != nil {
		o.cleanup()
	}
}

// execute runs the command tree with args and returns the process exit code.
func execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	rootCmd, o := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	err := rootCmd.ExecuteContext(ctx)
	o.close()
	return exitCode(err, errOut)
}

func exitCode(err error, errOut io.Writer) int {
	if err == nil {
		return 0
	}
	if ee, ok := err.(exitCoder); ok {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			render.Failure(errOut, "%s", msg)
		}
		return ee.ExitCode()
	}
	render.Failure(errOut, "%s", err.Error())
	return 3
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
