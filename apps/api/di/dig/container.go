package dig_container

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/sadaka/apps/api/echo"
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
	"github.com/trezcool/sadaka/storage/database"
	inmemdb "github.com/trezcool/sadaka/storage/database/inmem"
	sqlxrepos "github.com/trezcool/sadaka/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// Repositories are provided together since they all depend on the configured database engine.
type Repositories struct {
	dig.Out

	Users         user.Repository
	Pages         content.PageRepository
	FAQs          content.Repository[content.FAQ]
	Features      content.Repository[content.Feature]
	Guides        content.Repository[content.Guide]
	Testimonials  content.Repository[content.Testimonial]
	Organizations organization.Repository
	MailTemplates mailtmpl.Repository
	Payment       payment.Repository
}

type ServerParams struct {
	dig.In

	Conf        *core.Config
	Logger      core.Logger
	Validate    *validator.Validate
	Translator  ut.Translator
	MailSvc     core.EmailService
	UserSvc     *user.Service
	ContentSvc  *content.Service
	OrgSvc      *organization.Service
	PaymentSvc  *payment.Service
	MailTmplSvc *mailtmpl.Service
	MediaSvc    *media.Service
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

// newDB creates, opens & migrates the PostgreSQL database. It returns a nil DB for the inmem engine.
func newDB(conf *core.Config, loggerParam DBLoggerParam) *sqlx.DB {
	if conf.Database.Engine == core.DBEngineInMem {
		loggerParam.Logger.Warn("using the in-memory database: data will be lost on restart")
		return nil
	}

	setUp := func() (*sqlx.DB, error) {
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout*6)
		defer cancel()

		if err := database.CreateIfNotExist(ctx, conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		if err = database.Ping(ctx, db); err != nil {
			return nil, err
		}

		if err = database.Migrate(db.DB, "up"); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

func newRepositories(conf *core.Config, db *sqlx.DB) Repositories {
	if conf.Database.Engine == core.DBEngineInMem {
		mem := inmemdb.Open()
		return Repositories{
			Users:         inmemdb.NewUserRepository(mem),
			Pages:         inmemdb.NewPageRepository(mem),
			FAQs:          inmemdb.NewFAQRepository(mem),
			Features:      inmemdb.NewFeatureRepository(mem),
			Guides:        inmemdb.NewGuideRepository(mem),
			Testimonials:  inmemdb.NewTestimonialRepository(mem),
			Organizations: inmemdb.NewOrganizationRepository(mem),
			MailTemplates: inmemdb.NewMailTemplateRepository(mem),
			Payment:       inmemdb.NewPaymentRepository(mem),
		}
	}
	return Repositories{
		Users:         sqlxrepos.NewUserRepository(db),
		Pages:         sqlxrepos.NewPageRepository(db),
		FAQs:          sqlxrepos.NewFAQRepository(db),
		Features:      sqlxrepos.NewFeatureRepository(db),
		Guides:        sqlxrepos.NewGuideRepository(db),
		Testimonials:  sqlxrepos.NewTestimonialRepository(db),
		Organizations: sqlxrepos.NewOrganizationRepository(db),
		MailTemplates: sqlxrepos.NewMailTemplateRepository(db),
		Payment:       sqlxrepos.NewPaymentRepository(db),
	}
}

func newEmailService(conf *core.Config, logger core.Logger) (core.EmailService, error) {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger), nil
	}
	return emailsvc.NewSendgridService(conf, logger)
}

// newUploader falls back to an in-memory CDN when Cloudinary is not configured.
func newUploader(conf *core.Config, logger core.Logger) (media.Uploader, error) {
	if conf.Cloudinary.CloudName == "" {
		logger.Warn("cloudinary is not configured: uploads are kept in memory")
		return mediasvc.NewMemoryUploader(conf.FrontendBaseURL+"/media", logger), nil
	}
	return mediasvc.NewCloudinaryUploader(conf, logger)
}

func newValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	mailtmpl.InitValidators(validate, translator)
	return validate, translator
}

type ContentRepos struct {
	dig.In

	Pages        content.PageRepository
	FAQs         content.Repository[content.FAQ]
	Features     content.Repository[content.Feature]
	Guides       content.Repository[content.Guide]
	Testimonials content.Repository[content.Testimonial]
}

func newContentService(repos ContentRepos, validate *validator.Validate) *content.Service {
	return content.NewService(repos.Pages, repos.FAQs, repos.Features, repos.Guides, repos.Testimonials, validate)
}

func newComposer(svc *mailtmpl.Service) organization.Composer { return svc }

func newServer(p ServerParams) (*echoapi.Server, error) {
	return echoapi.NewServer(p.Conf, p.Logger, echoapi.Deps{
		Validate:    p.Validate,
		Translator:  p.Translator,
		MailSvc:     p.MailSvc,
		UserSvc:     p.UserSvc,
		ContentSvc:  p.ContentSvc,
		OrgSvc:      p.OrgSvc,
		PaymentSvc:  p.PaymentSvc,
		MailTmplSvc: p.MailTmplSvc,
		MediaSvc:    p.MediaSvc,
	})
}

// New returns a new dependency injection dig.Container.
// newConfig is core.NewConfig outside of tests.
func New(newConfig func() *core.Config) *dig.Container {
	c := dig.New()

	must(c.Provide(newConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newRepositories))
	must(c.Provide(newEmailService))
	must(c.Provide(newUploader))
	must(c.Provide(newValidator))
	must(c.Provide(user.NewService))
	must(c.Provide(newContentService))
	must(c.Provide(mailtmpl.NewService))
	must(c.Provide(newComposer))
	must(c.Provide(organization.NewService))
	must(c.Provide(payment.NewService))
	must(c.Provide(media.NewService))
	must(c.Provide(newServer))

	return c
}

// Visualize writes the dependency graph of c in DOT format.
func Visualize(c *dig.Container, w io.Writer) error {
	return dig.Visualize(c, w)
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
