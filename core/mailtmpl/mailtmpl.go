// Package mailtmpl manages the email templates editable from the dashboard.
//
// Templates are rendered with a core.ContextData value:
// {{.FrontendBaseURL}} and the caller's data under {{.Data}}.
package mailtmpl

import (
	"bytes"
	"context"
	htmltmpl "html/template"
	"net/mail"
	"regexp"
	texttmpl "text/template"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/sadaka/core"
)

// Templates used by the application.
const (
	OrganizationApproved = "organization_approved"
	OrganizationRejected = "organization_rejected"
	WelcomeAdmin         = "welcome_admin"
)

var (
	ErrNotFound   = core.NewNotFoundError("mail template")
	ErrNameExists = errors.New("a mail template with this name already exists")

	nameTag   = "tmplname"
	nameText  = "only lowercase letters, digits and underscores are allowed"
	nameRegex = regexp.MustCompile(`^[a-z0-9_]+$`)
)

type MailTemplate struct {
	Name        string    `json:"name" db:"name" validate:"required,max=64,tmplname"`
	Description string    `json:"description" db:"description" validate:"max=300"`
	Subject     string    `json:"subject" db:"subject" validate:"required,max=200"`
	TextBody    string    `json:"text_body" db:"text_body" validate:"required"`
	HTMLBody    string    `json:"html_body" db:"html_body"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

func (mt *MailTemplate) clean() {
	mt.Name = core.CleanString(mt.Name, true /* lower */)
	mt.Description = core.CleanString(mt.Description)
	mt.Subject = core.CleanString(mt.Subject)
}

// Rendered is a rendered mail template.
type Rendered struct {
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
}

type Repository interface {
	ListTemplates(ctx context.Context) ([]MailTemplate, error)
	GetTemplate(ctx context.Context, name string) (MailTemplate, error)
	CreateTemplate(ctx context.Context, mt MailTemplate) (MailTemplate, error)
	UpdateTemplate(ctx context.Context, mt MailTemplate) (MailTemplate, error)
	DeleteTemplate(ctx context.Context, name string) error
}

// InitValidators registers the mail template validators & their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(nameTag, func(fl validator.FieldLevel) bool {
		return nameRegex.MatchString(fl.Field().String())
	})
	core.RegisterCustomTranslation(validate, translator, nameTag, nameText)
}

type Service struct {
	repo     Repository
	validate *validator.Validate
	conf     *core.Config
}

func NewService(repo Repository, validate *validator.Validate, conf *core.Config) *Service {
	return &Service{repo: repo, validate: validate, conf: conf}
}

func (svc *Service) List(ctx context.Context) ([]MailTemplate, error) {
	mts, err := svc.repo.ListTemplates(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing mail templates")
	}
	if mts == nil {
		mts = []MailTemplate{}
	}
	return mts, nil
}

func (svc *Service) Get(ctx context.Context, name string) (MailTemplate, error) {
	return svc.repo.GetTemplate(ctx, core.CleanString(name, true /* lower */))
}

func (svc *Service) Create(ctx context.Context, mt MailTemplate) (MailTemplate, error) {
	if err := svc.validateTemplate(&mt); err != nil {
		return MailTemplate{}, err
	}
	if _, err := svc.repo.GetTemplate(ctx, mt.Name); err == nil {
		return MailTemplate{}, core.NewValidationError(ErrNameExists, core.FieldError{Field: "name", Error: ErrNameExists.Error()})
	} else if !core.IsNotFound(err) {
		return MailTemplate{}, errors.Wrap(err, "checking name uniqueness")
	}
	mt.UpdatedAt = time.Now().UTC()
	return svc.repo.CreateTemplate(ctx, mt)
}

// Update replaces the content of the template; its name cannot change.
func (svc *Service) Update(ctx context.Context, name string, mt MailTemplate) (MailTemplate, error) {
	current, err := svc.Get(ctx, name)
	if err != nil {
		return MailTemplate{}, err
	}
	mt.Name = current.Name
	if err = svc.validateTemplate(&mt); err != nil {
		return MailTemplate{}, err
	}
	mt.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateTemplate(ctx, mt)
}

func (svc *Service) Delete(ctx context.Context, name string) error {
	current, err := svc.Get(ctx, name)
	if err != nil {
		return err
	}
	return svc.repo.DeleteTemplate(ctx, current.Name)
}

// Preview renders the stored template name with data.
func (svc *Service) Preview(ctx context.Context, name string, data interface{}) (Rendered, error) {
	mt, err := svc.Get(ctx, name)
	if err != nil {
		return Rendered{}, err
	}
	return svc.Render(mt, data)
}

// Compose renders the stored template name into an email message ready to be sent.
func (svc *Service) Compose(ctx context.Context, name string, to []mail.Address, data interface{}) (*core.EmailMessage, error) {
	mt, err := svc.Get(ctx, name)
	if err != nil {
		return nil, errors.Wrapf(err, "getting mail template %q", name)
	}
	r, err := svc.Render(mt, data)
	if err != nil {
		return nil, errors.Wrapf(err, "rendering mail template %q", name)
	}
	return &core.EmailMessage{
		To:          to,
		Subject:     r.Subject,
		TextContent: r.Text,
		HTMLContent: r.HTML,
	}, nil
}

func (svc *Service) Render(mt MailTemplate, data interface{}) (Rendered, error) {
	subject, text, html, err := svc.parse(mt)
	if err != nil {
		return Rendered{}, err
	}
	ctxData := core.ContextData{FrontendBaseURL: svc.conf.FrontendBaseURL, Data: data}

	var (
		r    Rendered
		buff bytes.Buffer
	)
	fieldErr := func(field string, err error) error {
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}

	if err = subject.Execute(&buff, ctxData); err != nil {
		return Rendered{}, fieldErr("subject", err)
	}
	r.Subject = buff.String()
	buff.Reset()

	if err = text.Execute(&buff, ctxData); err != nil {
		return Rendered{}, fieldErr("text_body", err)
	}
	r.Text = buff.String()
	buff.Reset()

	if html != nil {
		if err = html.Execute(&buff, ctxData); err != nil {
			return Rendered{}, fieldErr("html_body", err)
		}
		r.HTML = buff.String()
	}
	return r, nil
}

func (svc *Service) validateTemplate(mt *MailTemplate) error {
	mt.clean()
	if err := svc.validate.Struct(mt); err != nil {
		return err
	}
	_, _, _, err := svc.parse(*mt)
	return err
}

// parse parses the subject & bodies of mt. html is nil when mt has no HTML body.
func (svc *Service) parse(mt MailTemplate) (subject, text *texttmpl.Template, html *htmltmpl.Template, err error) {
	opt := "missingkey=default"
	if svc.conf.Debug || svc.conf.TestMode {
		opt = "missingkey=error"
	}
	fieldErr := func(field string, err error) error {
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}

	if subject, err = texttmpl.New("subject").Option(opt).Parse(mt.Subject); err != nil {
		return nil, nil, nil, fieldErr("subject", err)
	}
	if text, err = texttmpl.New("text").Option(opt).Parse(mt.TextBody); err != nil {
		return nil, nil, nil, fieldErr("text_body", err)
	}
	if mt.HTMLBody != "" {
		if html, err = htmltmpl.New("html").Option(opt).Parse(mt.HTMLBody); err != nil {
			return nil, nil, nil, fieldErr("html_body", err)
		}
	}
	return subject, text, html, nil
}
