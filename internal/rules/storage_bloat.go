package rules

import (
	"fmt"

	"github.com/docker/go-units"

	"github.com/dashu-baba/docker-service-manager/internal/config"
	"github.com/dashu-baba/docker-service-manager/internal/types"
)

func checkDanglingImages(report *types.HealthReport, cfg *config.Config) {
	// DANGLING_IMAGES
	threshold := cfg.Rules.DanglingImages.Threshold
	dangling := report.Counts.DanglingImages
	if dangling <= threshold {
		return
	}
	severity := SeverityLow
	if dangling > 10 {
		severity = SeverityMedium
	}
	report.Issues = append(report.Issues, types.Issue{
		RuleID:      "DANGLING_IMAGES",
		Subject:     "images_dangling",
		Severity:    severity,
		Category:    "storage_bloat",
		Description: fmt.Sprintf("Found %d dangling images that can be cleaned up", dangling),
		Facts: map[string]interface{}{
			"dangling":     dangling,
			"total_images": report.Counts.Images,
			"threshold":    threshold,
		},
		Solutions: []string{
			"Remove dangling images: 'dsm image prune'.",
			"Tag images you want to keep before rebuilding.",
		},
	})
}

func checkStorageBloat(report *types.HealthReport, cfg *config.Config) {
	// DOCKER_STORAGE_BLOAT
	if report.DiskUsage == nil {
		return
	}
	threshold := cfg.Rules.StorageBloat.ImageSizeThreshold
	observed := report.DiskUsage.ImagesBytes
	if threshold == 0 || observed <= threshold {
		return
	}
	severity := SeverityMedium
	if observed > threshold*2 {
		severity = SeverityHigh
	}

	buildCache := report.DiskUsage.BuildCacheBytes
	solutions := []string{
		"Run 'docker system df -v' to see deduplicated disk usage and reclaimable space.",
		fmt.Sprintf("Total images: %d, total size: %s", report.Counts.Images, units.HumanSize(float64(observed))),
		"List images: 'dsm image ls --all' and remove unused ones with 'dsm image rm <ref>'.",
		"Remove unused images: 'dsm image prune --all'.",
		"Use multi-stage builds and smaller base images.",
	}
	if buildCache > 0 {
		solutions = append(solutions, fmt.Sprintf("Build cache size: %s - consider 'docker builder prune'.", units.HumanSize(float64(buildCache))))
	}

	report.Issues = append(report.Issues, types.Issue{
		RuleID:      "DOCKER_STORAGE_BLOAT",
		Subject:     "images_total",
		Severity:    severity,
		Category:    "storage_bloat",
		Description: fmt.Sprintf("Docker image disk usage is %s, exceeding threshold of %s", units.HumanSize(float64(observed)), units.HumanSize(float64(threshold))),
		Facts: map[string]interface{}{
			"total_images":     report.Counts.Images,
			"total_image_size": observed,
			"size_threshold":   threshold,
			"build_cache_size": buildCache,
			"volumes_size":     report.DiskUsage.VolumesBytes,
		},
		Solutions: solutions,
	})
}
