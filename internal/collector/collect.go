// Package collector builds quick and full health reports from the service
// manager, the Engine API and the host.
package collector

import (
	"context"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/system"
	"github.com/rs/zerolog"

	"github.com/dashu-baba/docker-service-manager/internal/apperr"
	"github.com/dashu-baba/docker-service-manager/internal/config"
	"github.com/dashu-baba/docker-service-manager/internal/rules"
	dtypes "github.com/dashu-baba/docker-service-manager/internal/types"
)

// StatusSource reports the daemon unit. *service.Controller satisfies it.
type StatusSource interface {
	Status(ctx context.Context) (dtypes.ServiceStatus, error)
}

// HostSampler takes a snapshot of host resources.
type HostSampler interface {
	Sample(ctx context.Context) (*dtypes.HostMetrics, error)
}

type dockerAPI interface {
	ServerVersion(ctx context.Context) (types.Version, error)
	Info(ctx context.Context) (system.Info, error)
	DiskUsage(ctx context.Context, options types.DiskUsageOptions) (types.DiskUsage, error)
	ContainerList(ctx context.Context, options container.ListOptions) ([]types.Container, error)
	ImageList(ctx context.Context, options image.ListOptions) ([]image.Summary, error)
}

// Reporter assembles health reports. Every section is collected on a best
// effort basis: a failing section is recorded in HealthReport.Errors and the
// others still run.
type Reporter struct {
	status StatusSource
	api    dockerAPI
	host   HostSampler
	cfg    *config.Config
	now    func() time.Time
}

func New(status StatusSource, api dockerAPI, host HostSampler, cfg *config.Config) *Reporter {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Reporter{status: status, api: api, host: host, cfg: cfg, now: time.Now}
}

// Quick reports the daemon status and container and image counts. It never
// samples the host.
func (r *Reporter) Quick(ctx context.Context) (*dtypes.HealthReport, error) {
	report := r.base(ctx, dtypes.ReportQuick)
	return report, ctx.Err()
}

// Full adds engine information, Docker disk usage, host metrics and findings
// to the quick report.
func (r *Reporter) Full(ctx context.Context) (*dtypes.HealthReport, error) {
	log := zerolog.Ctx(ctx)
	report := r.base(ctx, dtypes.ReportFull)

	if report.Service.Reachable {
		dockerStart := time.Now()
		if info, err := r.DockerInfo(ctx); err != nil {
			addError(report, "docker info", err)
			log.Debug().Msgf("collector docker_info: skipped/error (%dms)", time.Since(dockerStart).Milliseconds())
		} else {
			report.Docker = info
			log.Debug().Msgf("collector docker_info: ok (%dms)", time.Since(dockerStart).Milliseconds())
		}

		dfStart := time.Now()
		if df, err := collectDiskUsage(ctx, r.api); err != nil {
			addError(report, "docker disk usage", err)
			log.Debug().Msgf("collector docker_system_df: skipped/error (%dms)", time.Since(dfStart).Milliseconds())
		} else {
			report.DiskUsage = df
			log.Debug().Msgf("collector docker_system_df: ok (%dms)", time.Since(dfStart).Milliseconds())
		}
	}

	hostStart := time.Now()
	// A partial sample is kept alongside its error.
	host, err := r.Host(ctx)
	report.Host = host
	if err != nil {
		addError(report, "host", err)
		log.Debug().Msgf("collector host: skipped/error (%dms)", time.Since(hostStart).Milliseconds())
	} else {
		log.Debug().Msgf("collector host: ok (%dms)", time.Since(hostStart).Milliseconds())
	}

	rulesStart := time.Now()
	rules.Evaluate(report, r.cfg)
	log.Debug().Msgf("rules: %d issue(s) (%dms)", len(report.Issues), time.Since(rulesStart).Milliseconds())

	return report, ctx.Err()
}

// DockerInfo returns engine and version information.
func (r *Reporter) DockerInfo(ctx context.Context) (*dtypes.DockerInfo, error) {
	return collectDockerInfo(ctx, r.api)
}

// Host samples host resources.
func (r *Reporter) Host(ctx context.Context) (*dtypes.HostMetrics, error) {
	if r.host == nil {
		return nil, apperr.New("sample host", apperr.ErrUnsupportedPlatform, "no host sampler configured")
	}
	return r.host.Sample(ctx)
}

func (r *Reporter) base(ctx context.Context, kind dtypes.ReportKind) *dtypes.HealthReport {
	log := zerolog.Ctx(ctx)
	report := &dtypes.HealthReport{
		Kind:      kind,
		Timestamp: r.now(),
		Issues:    []dtypes.Issue{},
		Errors:    []string{},
	}

	statusStart := time.Now()
	st, err := r.status.Status(ctx)
	report.Service = st
	if err != nil {
		addError(report, "service", err)
	}
	log.Debug().Msgf("collector service: ok (%dms)", time.Since(statusStart).Milliseconds())

	if !st.Reachable {
		addError(report, "docker", apperr.New("ping", apperr.ErrDaemonUnreachable, "daemon did not answer; container and image sections skipped"))
		return report
	}

	countStart := time.Now()
	counts, unhealthy, err := countContainers(ctx, r.api)
	if err != nil {
		addError(report, "containers", err)
	}
	imgs, dangling, err := countImages(ctx, r.api)
	if err != nil {
		addError(report, "images", err)
	}
	counts.Images, counts.DanglingImages = imgs, dangling
	report.Counts = counts
	report.Unhealthy = unhealthy
	log.Debug().Msgf("collector counts: ok (%dms)", time.Since(countStart).Milliseconds())

	return report
}

func addError(report *dtypes.HealthReport, section string, err error) {
	report.Errors = append(report.Errors, section+": "+apperr.Message(err))
}
