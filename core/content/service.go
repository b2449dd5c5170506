package content

import (
	"context"

	"github.com/go-playground/validator/v10"
)

// Service groups the content editors of the site.
type Service struct {
	Pages        *PageService
	FAQs         *Collection[FAQ, *FAQ]
	Features     *Collection[Feature, *Feature]
	Guides       *Collection[Guide, *Guide]
	Testimonials *Collection[Testimonial, *Testimonial]
}

func NewService(
	pages PageRepository,
	faqs Repository[FAQ],
	features Repository[Feature],
	guides Repository[Guide],
	testimonials Repository[Testimonial],
	validate *validator.Validate,
) *Service {
	svc := &Service{
		Pages:        &PageService{repo: pages, validate: validate},
		FAQs:         newCollection[FAQ, *FAQ](faqs, validate, ErrFAQNotFound, faqOrderable),
		Features:     newCollection[Feature, *Feature](features, validate, ErrFeatureNotFound, featureOrderable),
		Guides:       newCollection[Guide, *Guide](guides, validate, ErrGuideNotFound, guideOrderable),
		Testimonials: newCollection[Testimonial, *Testimonial](testimonials, validate, ErrTestimonialNotFound, testimonialOrderable),
	}
	svc.Guides.check = guideSlugChecker(guides)
	return svc
}

// GuideBySlug returns the published guide with the given slug.
func (svc *Service) GuideBySlug(ctx context.Context, slug string) (Guide, error) {
	published := true
	guides, err := svc.Guides.List(ctx, ListFilter{Slug: slug, Published: &published}, nil)
	if err != nil {
		return Guide{}, err
	}
	if len(guides) == 0 {
		return Guide{}, ErrGuideNotFound
	}
	return guides[0], nil
}
