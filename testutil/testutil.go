// Package testutil builds the in-memory application used by tests.
package testutil

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/sadaka/core"
	"github.com/trezcool/sadaka/core/content"
	"github.com/trezcool/sadaka/core/mailtmpl"
	"github.com/trezcool/sadaka/core/media"
	"github.com/trezcool/sadaka/core/organization"
	"github.com/trezcool/sadaka/core/payment"
	"github.com/trezcool/sadaka/core/user"
	emailsvc "github.com/trezcool/sadaka/services/email"
	logsvc "github.com/trezcool/sadaka/services/logger"
	mediasvc "github.com/trezcool/sadaka/services/media"
	inmemdb "github.com/trezcool/sadaka/storage/database/inmem"
)

// App holds the services of an application backed by an in-memory database.
type App struct {
	Conf       *core.Config
	Logger     core.Logger
	Validate   *validator.Validate
	Translator ut.Translator

	DB       *inmemdb.DB
	UserRepo user.Repository
	OrgRepo  organization.Repository
	MailSvc  *emailsvc.ConsoleServiceMock
	Uploader *mediasvc.MemoryUploader

	UserSvc     *user.Service
	ContentSvc  *content.Service
	OrgSvc      *organization.Service
	PaymentSvc  *payment.Service
	MailTmplSvc *mailtmpl.Service
	MediaSvc    *media.Service
}

func NewLogger(conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
}

// NewValidator returns a validator with every custom validation registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	mailtmpl.InitValidators(validate, translator)
	return validate, translator
}

func NewApp(t *testing.T) *App {
	conf := core.NewTestConfig()
	logger := NewLogger(conf)
	validate, translator := NewValidator()
	db := inmemdb.Open()

	a := &App{
		Conf:       conf,
		Logger:     logger,
		Validate:   validate,
		Translator: translator,
		DB:         db,
		UserRepo:   inmemdb.NewUserRepository(db),
		OrgRepo:    inmemdb.NewOrganizationRepository(db),
		MailSvc:    emailsvc.NewConsoleServiceMock(conf, logger),
		Uploader:   mediasvc.NewMemoryUploader("http://cdn.sadaka.test", logger),
	}
	a.UserSvc = user.NewService(a.UserRepo, a.MailSvc, conf)
	a.ContentSvc = content.NewService(
		inmemdb.NewPageRepository(db),
		inmemdb.NewFAQRepository(db),
		inmemdb.NewFeatureRepository(db),
		inmemdb.NewGuideRepository(db),
		inmemdb.NewTestimonialRepository(db),
		validate,
	)
	a.MailTmplSvc = mailtmpl.NewService(inmemdb.NewMailTemplateRepository(db), validate, conf)
	a.OrgSvc = organization.NewService(a.OrgRepo, validate, a.MailTmplSvc, a.MailSvc, logger)
	a.PaymentSvc = payment.NewService(inmemdb.NewPaymentRepository(db), validate)
	a.MediaSvc = media.NewService(a.Uploader, conf)

	if err := a.MailTmplSvc.EnsureDefaults(context.Background()); err != nil {
		t.Fatalf("EnsureDefaults() failed: %v", err)
	}
	return a
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

// SubmitOrganization registers a valid pending organization.
func SubmitOrganization(t *testing.T, svc *organization.Service, name, email string) organization.Organization {
	org, err := svc.Submit(context.Background(), organization.Application{
		Name:               name,
		Email:              email,
		Country:            "cd",
		RegistrationNumber: "RCCM/" + name,
		Website:            "https://" + core.Slugify(name) + ".org",
		DocumentURLs:       []string{"https://cdn.sadaka.test/docs/" + core.Slugify(name) + ".pdf"},
	})
	if err != nil {
		t.Fatalf("SubmitOrganization() failed: %v", err)
	}
	return org
}
