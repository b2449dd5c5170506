package content

import "github.com/trezcool/sadaka/core"

var ErrFeatureNotFound = core.NewNotFoundError("feature")

// Feature is one of the "why donate with us" sections of the home page.
type Feature struct {
	Base
	Title       string `json:"title" db:"title" validate:"required,max=120"`
	Description string `json:"description" db:"description" validate:"required,max=1000"`
	ImageURL    string `json:"image_url" db:"image_url" validate:"omitempty,url"`
}

func (f *Feature) clean() {
	f.Title = core.CleanString(f.Title)
	f.Description = core.CleanString(f.Description)
	f.ImageURL = core.CleanString(f.ImageURL)
}

func (f *Feature) SearchText() []string { return []string{f.Title, f.Description} }

type FeaturePatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	IsPublished *bool   `json:"is_published"`
}

var featureOrderable = orderable(core.Orderable{"title": "title"})
