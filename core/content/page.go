package content

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"

	"github.com/trezcool/sadaka/core"
)

// Page keys
const (
	PageAbout  = "about"
	PagePayout = "payout"
	PageHero   = "hero"
)

var (
	PageKeys = []string{PageAbout, PagePayout, PageHero}

	ErrPageNotFound = core.NewNotFoundError("page")
)

// Page is a singleton block of site content, identified by its key.
type Page struct {
	Key       string    `json:"key" db:"key"`
	Title     string    `json:"title" db:"title" validate:"max=200"`
	Subtitle  string    `json:"subtitle" db:"subtitle" validate:"max=300"`
	Body      string    `json:"body" db:"body"`
	ImageURL  string    `json:"image_url" db:"image_url" validate:"omitempty,url"`
	VideoURL  string    `json:"video_url" db:"video_url" validate:"omitempty,url"`
	CTAText   string    `json:"cta_text" db:"cta_text" validate:"max=60"`
	CTALink   string    `json:"cta_link" db:"cta_link" validate:"omitempty,uri"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC, zero when never saved
	UpdatedBy string    `json:"updated_by" db:"updated_by"`
}

func (p *Page) clean() {
	p.Title = core.CleanString(p.Title)
	p.Subtitle = core.CleanString(p.Subtitle)
	p.Body = core.CleanString(p.Body)
	p.ImageURL = core.CleanString(p.ImageURL)
	p.VideoURL = core.CleanString(p.VideoURL)
	p.CTAText = core.CleanString(p.CTAText)
	p.CTALink = core.CleanString(p.CTALink)
}

// PagePatch holds the page fields to update; nil fields are left untouched.
type PagePatch struct {
	Title    *string `json:"title"`
	Subtitle *string `json:"subtitle"`
	Body     *string `json:"body"`
	ImageURL *string `json:"image_url"`
	VideoURL *string `json:"video_url"`
	CTAText  *string `json:"cta_text"`
	CTALink  *string `json:"cta_link"`
}

type PageRepository interface {
	// GetPage returns ErrPageNotFound when the page was never saved.
	GetPage(ctx context.Context, key string) (Page, error)
	SavePage(ctx context.Context, page Page) (Page, error)
}

func IsPageKey(key string) bool {
	for _, k := range PageKeys {
		if k == key {
			return true
		}
	}
	return false
}

type PageService struct {
	repo     PageRepository
	validate *validator.Validate
}

func (svc *PageService) Get(ctx context.Context, key string) (Page, error) {
	if !IsPageKey(key) {
		return Page{}, ErrPageNotFound
	}
	page, err := svc.repo.GetPage(ctx, key)
	if err != nil {
		if core.IsNotFound(err) {
			return Page{Key: key}, nil
		}
		return Page{}, errors.Wrap(err, "getting page")
	}
	return page, nil
}

// Put replaces every editable field of the page.
func (svc *PageService) Put(ctx context.Context, key string, data Page, editor string) (Page, error) {
	if !IsPageKey(key) {
		return Page{}, ErrPageNotFound
	}
	data.Key = key
	return svc.save(ctx, data, editor)
}

// Patch only updates the fields set in patch.
func (svc *PageService) Patch(ctx context.Context, key string, patch PagePatch, editor string) (Page, error) {
	page, err := svc.Get(ctx, key)
	if err != nil {
		return Page{}, err
	}
	if err = copier.CopyWithOption(&page, &patch, copier.Option{IgnoreEmpty: true}); err != nil {
		return Page{}, errors.Wrap(err, "applying patch")
	}
	return svc.save(ctx, page, editor)
}

func (svc *PageService) save(ctx context.Context, page Page, editor string) (Page, error) {
	page.clean()
	if err := svc.validate.Struct(page); err != nil {
		return Page{}, err
	}
	page.UpdatedAt = time.Now().UTC()
	page.UpdatedBy = editor
	return svc.repo.SavePage(ctx, page)
}
