package collector

import (
	"context"

	"github.com/docker/docker/api/types/image"

	"github.com/dashu-baba/docker-service-manager/internal/apperr"
	"github.com/dashu-baba/docker-service-manager/internal/images"
)

func countImages(ctx context.Context, api dockerAPI) (total, dangling int, err error) {
	list, err := api.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return 0, 0, apperr.Classify("list images", err)
	}
	for _, img := range list {
		if images.Dangling(img) {
			dangling++
		}
	}
	return len(list), dangling, nil
}
