package service

import (
	"context"
	"errors"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/rs/zerolog"

	"github.com/dashu-baba/docker-service-manager/internal/apperr"
	dtypes "github.com/dashu-baba/docker-service-manager/internal/types"
)

const (
	DefaultStartTimeout = 30 * time.Second
	DefaultPollInterval = 500 * time.Millisecond

	pingTimeout = 3 * time.Second
)

// Pinger is the part of the Engine API used to check reachability.
type Pinger interface {
	Ping(ctx context.Context) (types.Ping, error)
	ServerVersion(ctx context.Context) (types.Version, error)
}

type Options struct {
	Unit string
	// Pinger is optional. Without it the controller never waits for the
	// daemon and Status reports Reachable=false.
	Pinger       Pinger
	StartTimeout time.Duration
	PollInterval time.Duration
	// PingTimeout bounds each individual ping.
	PingTimeout time.Duration
}

// Controller drives a single unit: the daemon or its socket.
type Controller struct {
	mgr    Manager
	opts   Options
	logger zerolog.Logger
	now    func() time.Time
}

func NewController(mgr Manager, opts Options, logger zerolog.Logger) *Controller {
	if opts.StartTimeout <= 0 {
		opts.StartTimeout = DefaultStartTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.PingTimeout <= 0 {
		opts.PingTimeout = pingTimeout
	}
	return &Controller{
		mgr:    mgr,
		opts:   opts,
		logger: logger.With().Str("unit", opts.Unit).Logger(),
		now:    time.Now,
	}
}

func (c *Controller) Unit() string { return c.opts.Unit }

// Status queries the service manager and the daemon. Whatever could be
// determined is returned together with the joined errors of the failed checks.
func (c *Controller) Status(ctx context.Context) (dtypes.ServiceStatus, error) {
	st := dtypes.ServiceStatus{
		Unit:      c.opts.Unit,
		State:     dtypes.StateUnknown,
		CheckedAt: c.now(),
	}

	var errs []error
	state, err := c.mgr.IsActive(ctx, c.opts.Unit)
	if err != nil {
		errs = append(errs, err)
	} else {
		st.State = state
	}
	enabled, err := c.mgr.IsEnabled(ctx, c.opts.Unit)
	if err != nil {
		errs = append(errs, err)
	} else {
		st.Enabled = enabled
	}

	if c.opts.Pinger != nil {
		pctx, cancel := context.WithTimeout(ctx, c.opts.PingTimeout)
		ping, err := c.opts.Pinger.Ping(pctx)
		if err == nil {
			st.Reachable = true
			st.APIVersion = ping.APIVersion
			if v, verr := c.opts.Pinger.ServerVersion(pctx); verr == nil {
				st.Version = v.Version
				if v.APIVersion != "" {
					st.APIVersion = v.APIVersion
				}
			}
		} else {
			c.logger.Debug().Err(err).Msg("daemon ping failed")
		}
		cancel()
	}

	// The service manager may be unavailable (containers, unsupported OS)
	// while the daemon answers; trust the daemon then.
	if st.State == dtypes.StateUnknown && st.Reachable {
		st.State = dtypes.StateRunning
	}

	if len(errs) > 0 {
		return st, errors.Join(errs...)
	}
	return st, nil
}

func (c *Controller) Start(ctx context.Context) error {
	if err := c.mgr.Start(ctx, c.opts.Unit); err != nil {
		return err
	}
	return c.waitReachable(ctx, "start "+c.opts.Unit)
}

func (c *Controller) Stop(ctx context.Context) error {
	return c.mgr.Stop(ctx, c.opts.Unit)
}

func (c *Controller) Restart(ctx context.Context) error {
	if err := c.mgr.Restart(ctx, c.opts.Unit); err != nil {
		return err
	}
	return c.waitReachable(ctx, "restart "+c.opts.Unit)
}

func (c *Controller) Enable(ctx context.Context) error {
	return c.mgr.Enable(ctx, c.opts.Unit)
}

func (c *Controller) Disable(ctx context.Context) error {
	return c.mgr.Disable(ctx, c.opts.Unit)
}

// waitReachable polls the daemon at a fixed interval until it answers or the
// start timeout elapses. There is exactly one deadline and no backoff.
func (c *Controller) waitReachable(ctx context.Context, op string) error {
	if c.opts.Pinger == nil {
		return nil
	}
	start := c.now()
	wctx, cancel := context.WithTimeout(ctx, c.opts.StartTimeout)
	defer cancel()

	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()

	var lastErr error
	for {
		pctx, pcancel := context.WithTimeout(wctx, c.opts.PingTimeout)
		_, err := c.opts.Pinger.Ping(pctx)
		pcancel()
		if err == nil {
			c.logger.Debug().Dur("waited", c.now().Sub(start)).Msg("daemon reachable")
			return nil
		}
		lastErr = err
		select {
		case <-wctx.Done():
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return apperr.New(op, apperr.ErrDaemonUnreachable,
				"daemon did not become reachable within %s: %v", c.opts.StartTimeout, lastErr)
		case <-ticker.C:
		}
	}
}
