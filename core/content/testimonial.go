package content

import "github.com/trezcool/sadaka/core"

var ErrTestimonialNotFound = core.NewNotFoundError("testimonial")

type Testimonial struct {
	Base
	AuthorName  string `json:"author_name" db:"author_name" validate:"required,max=120"`
	AuthorTitle string `json:"author_title" db:"author_title" validate:"max=120"`
	Quote       string `json:"quote" db:"quote" validate:"required,max=1000"`
	AvatarURL   string `json:"avatar_url" db:"avatar_url" validate:"omitempty,url"`
	Rating      int    `json:"rating" db:"rating" validate:"gte=1,lte=5"`
}

func (t *Testimonial) clean() {
	t.AuthorName = core.CleanString(t.AuthorName)
	t.AuthorTitle = core.CleanString(t.AuthorTitle)
	t.Quote = core.CleanString(t.Quote)
	t.AvatarURL = core.CleanString(t.AvatarURL)
	if t.Rating == 0 {
		t.Rating = 5
	}
}

func (t *Testimonial) SearchText() []string { return []string{t.AuthorName, t.AuthorTitle, t.Quote} }

type TestimonialPatch struct {
	AuthorName  *string `json:"author_name"`
	AuthorTitle *string `json:"author_title"`
	Quote       *string `json:"quote"`
	AvatarURL   *string `json:"avatar_url"`
	Rating      *int    `json:"rating"`
	IsPublished *bool   `json:"is_published"`
}

var testimonialOrderable = orderable(core.Orderable{"author_name": "author_name", "rating": "rating"})
