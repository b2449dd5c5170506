package content

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/sadaka/core"
)

var (
	ErrGuideNotFound = core.NewNotFoundError("guide")
	ErrSlugExists    = errors.New("a guide with this slug already exists")
)

// Guide is a "how to" article, eg. how to start a campaign or how payouts work.
type Guide struct {
	Base
	Title        string `json:"title" db:"title" validate:"required,max=200"`
	Slug         string `json:"slug" db:"slug" validate:"required,max=200,slug"`
	Summary      string `json:"summary" db:"summary" validate:"max=500"`
	Body         string `json:"body" db:"body" validate:"required"`
	VideoURL     string `json:"video_url" db:"video_url" validate:"omitempty,url"`
	ThumbnailURL string `json:"thumbnail_url" db:"thumbnail_url" validate:"omitempty,url"`
}

func (g *Guide) clean() {
	g.Title = core.CleanString(g.Title)
	g.Slug = core.CleanString(g.Slug, true /* lower */)
	if g.Slug == "" {
		g.Slug = core.Slugify(g.Title)
	}
	g.Summary = core.CleanString(g.Summary)
	g.Body = core.CleanString(g.Body)
	g.VideoURL = core.CleanString(g.VideoURL)
	g.ThumbnailURL = core.CleanString(g.ThumbnailURL)
}

func (g *Guide) SearchText() []string { return []string{g.Title, g.Summary, g.Body} }

type GuidePatch struct {
	Title        *string `json:"title"`
	Slug         *string `json:"slug"`
	Summary      *string `json:"summary"`
	Body         *string `json:"body"`
	VideoURL     *string `json:"video_url"`
	ThumbnailURL *string `json:"thumbnail_url"`
	IsPublished  *bool   `json:"is_published"`
}

var guideOrderable = orderable(core.Orderable{"title": "title", "slug": "slug"})

// guideSlugChecker makes sure guide slugs stay unique.
func guideSlugChecker(repo Repository[Guide]) func(ctx context.Context, g Guide, current *Guide) error {
	return func(ctx context.Context, g Guide, current *Guide) error {
		if current != nil && current.Slug == g.Slug {
			return nil
		}
		guides, err := repo.List(ctx, ListFilter{Slug: g.Slug}, nil)
		if err != nil {
			return errors.Wrap(err, "checking slug uniqueness")
		}
		for _, other := range guides {
			if current == nil || other.ID != current.ID {
				return core.NewValidationError(ErrSlugExists, core.FieldError{Field: "slug", Error: ErrSlugExists.Error()})
			}
		}
		return nil
	}
}
