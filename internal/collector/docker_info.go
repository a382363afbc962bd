package collector

import (
	"context"

	"github.com/dashu-baba/docker-service-manager/internal/apperr"
	"github.com/dashu-baba/docker-service-manager/internal/types"
)

func collectDockerInfo(ctx context.Context, api dockerAPI) (*types.DockerInfo, error) {
	version, err := api.ServerVersion(ctx)
	if err != nil {
		return nil, apperr.Classify("server version", err)
	}

	info, err := api.Info(ctx)
	if err != nil {
		return nil, apperr.Classify("system info", err)
	}

	return &types.DockerInfo{
		Version:           version.Version,
		APIVersion:        version.APIVersion,
		OS:                info.OSType,
		OperatingSystem:   info.OperatingSystem,
		Arch:              info.Architecture,
		KernelVersion:     info.KernelVersion,
		StorageDriver:     info.Driver,
		RootDir:           info.DockerRootDir,
		Name:              info.Name,
		NCPU:              info.NCPU,
		MemTotal:          info.MemTotal,
		Containers:        info.Containers,
		ContainersRunning: info.ContainersRunning,
		ContainersStopped: info.ContainersStopped,
		Images:            info.Images,
	}, nil
}
