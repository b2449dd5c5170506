package content

import "github.com/trezcool/sadaka/core"

var ErrFAQNotFound = core.NewNotFoundError("faq")

type FAQ struct {
	Base
	Question string `json:"question" db:"question" validate:"required,max=300"`
	Answer   string `json:"answer" db:"answer" validate:"required"`
	Category string `json:"category" db:"category" validate:"max=60"`
}

func (f *FAQ) clean() {
	f.Question = core.CleanString(f.Question)
	f.Answer = core.CleanString(f.Answer)
	f.Category = core.CleanString(f.Category, true /* lower */)
}

func (f *FAQ) SearchText() []string { return []string{f.Question, f.Answer, f.Category} }

// FAQPatch holds the FAQ fields that may be partially updated.
type FAQPatch struct {
	Question    *string `json:"question"`
	Answer      *string `json:"answer"`
	Category    *string `json:"category"`
	IsPublished *bool   `json:"is_published"`
}

var faqOrderable = orderable(core.Orderable{"question": "question", "category": "category"})
