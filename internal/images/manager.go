// Package images lists, removes and prunes images through the Docker Engine
// API.
package images

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/distribution/reference"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/rs/zerolog"

	"github.com/dashu-baba/docker-service-manager/internal/apperr"
	dtypes "github.com/dashu-baba/docker-service-manager/internal/types"
)

const none = "<none>"

type imageAPI interface {
	ImageList(ctx context.Context, options image.ListOptions) ([]image.Summary, error)
	ImageRemove(ctx context.Context, imageID string, options image.RemoveOptions) ([]image.DeleteResponse, error)
	ImagesPrune(ctx context.Context, pruneFilters filters.Args) (image.PruneReport, error)
}

// Manager wraps the image endpoints of the Engine API.
type Manager struct {
	api    imageAPI
	logger zerolog.Logger
}

func NewManager(api imageAPI, logger zerolog.Logger) *Manager {
	return &Manager{
		api:    api,
		logger: logger.With().Str("component", "images").Logger(),
	}
}

// List returns top-level images, or intermediate images too when all is set.
// Each image produces exactly one record, named after its first tag.
func (m *Manager) List(ctx context.Context, all bool) ([]dtypes.ImageRecord, error) {
	list, err := m.api.ImageList(ctx, image.ListOptions{All: all})
	if err != nil {
		return nil, apperr.Classify("list images", err)
	}

	records := make([]dtypes.ImageRecord, 0, len(list))
	for _, img := range list {
		repo, tag := none, none
		if len(img.RepoTags) > 0 {
			repo, tag = SplitReference(img.RepoTags[0])
		}
		records = append(records, dtypes.ImageRecord{
			ID:         ShortID(img.ID),
			Repository: repo,
			Tag:        tag,
			Size:       img.Size,
			Created:    time.Unix(img.Created, 0),
			Containers: img.Containers,
		})
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Repository != records[j].Repository {
			return records[i].Repository < records[j].Repository
		}
		if records[i].Tag != records[j].Tag {
			return records[i].Tag < records[j].Tag
		}
		return records[i].ID < records[j].ID
	})
	m.logger.Debug().Bool("all", all).Int("count", len(records)).Msg("listed images")
	return records, nil
}

// Remove deletes an image by ID or name:tag and returns the untagged and
// deleted references reported by the daemon.
func (m *Manager) Remove(ctx context.Context, ref string, force bool) ([]string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, apperr.New("remove image", apperr.ErrInvalidInput, "image ID or name:tag is required")
	}
	resp, err := m.api.ImageRemove(ctx, ref, image.RemoveOptions{Force: force, PruneChildren: true})
	if err != nil {
		return nil, apperr.Classify("remove image "+ref, err)
	}
	out := make([]string, 0, len(resp))
	for _, r := range resp {
		if r.Untagged != "" {
			out = append(out, "Untagged: "+r.Untagged)
		}
		if r.Deleted != "" {
			out = append(out, "Deleted: "+r.Deleted)
		}
	}
	m.logger.Info().Str("image", ref).Bool("force", force).Int("changes", len(out)).Msg("image removed")
	return out, nil
}

// Prune removes dangling images, or every unused image when all is set.
func (m *Manager) Prune(ctx context.Context, all bool) (dtypes.PruneResult, error) {
	dangling := "true"
	if all {
		dangling = "false"
	}
	report, err := m.api.ImagesPrune(ctx, filters.NewArgs(filters.Arg("dangling", dangling)))
	if err != nil {
		return dtypes.PruneResult{}, apperr.Classify("prune images", err)
	}
	res := dtypes.PruneResult{
		Deleted:        make([]string, 0, len(report.ImagesDeleted)),
		SpaceReclaimed: report.SpaceReclaimed,
	}
	for _, d := range report.ImagesDeleted {
		if d.Deleted != "" {
			res.Deleted = append(res.Deleted, ShortID(d.Deleted))
		}
	}
	m.logger.Info().Bool("all", all).Int("deleted", len(res.Deleted)).Uint64("reclaimed", res.SpaceReclaimed).Msg("images pruned")
	return res, nil
}

// Dangling reports whether an image has no usable tag.
func Dangling(img image.Summary) bool {
	for _, t := range img.RepoTags {
		if t != "<none>:<none>" {
			return false
		}
	}
	return true
}

// SplitReference splits a tag such as "registry:5000/team/app:1.2" into its
// familiar repository and tag.
func SplitReference(s string) (repo, tag string) {
	if s == "" || s == "<none>:<none>" {
		return none, none
	}
	named, err := reference.ParseNormalizedNamed(s)
	if err != nil {
		// Not a valid reference; split on the last colon after the last slash.
		slash := strings.LastIndex(s, "/")
		if colon := strings.LastIndex(s, ":"); colon > slash {
			return s[:colon], s[colon+1:]
		}
		return s, none
	}
	repo = reference.FamiliarName(named)
	tag = none
	if tagged, ok := named.(reference.Tagged); ok {
		tag = tagged.Tag()
	}
	return repo, tag
}

// ShortID trims the digest algorithm and shortens an image ID to 12
// characters.
func ShortID(id string) string {
	id = strings.TrimPrefix(id, "sha256:")
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
