package collector

import (
	"context"

	"github.com/docker/docker/api/types"

	"github.com/dashu-baba/docker-service-manager/internal/apperr"
	dtypes "github.com/dashu-baba/docker-service-manager/internal/types"
)

// collectDiskUsage fetches `/system/df` and returns deduplicated totals.
func collectDiskUsage(ctx context.Context, api dockerAPI) (*dtypes.DiskUsageSummary, error) {
	df, err := api.DiskUsage(ctx, types.DiskUsageOptions{})
	if err != nil {
		return nil, apperr.Classify("system df", err)
	}

	var containersRW int64
	for _, c := range df.Containers {
		if c != nil && c.SizeRw > 0 {
			containersRW += c.SizeRw
		}
	}
	var volumesTotal int64
	for _, v := range df.Volumes {
		if v != nil && v.UsageData != nil && v.UsageData.Size > 0 {
			volumesTotal += v.UsageData.Size
		}
	}
	var buildCache int64
	for _, b := range df.BuildCache {
		if b != nil && b.Size > 0 {
			buildCache += b.Size
		}
	}

	return &dtypes.DiskUsageSummary{
		ImagesBytes:             nonNegative(df.LayersSize),
		ContainersWritableBytes: nonNegative(containersRW),
		VolumesBytes:            nonNegative(volumesTotal),
		BuildCacheBytes:         nonNegative(buildCache),
	}, nil
}

func nonNegative(v int64) uint64 {
	if v < 0 {
		return 0
	}
	return uint64(v)
}
