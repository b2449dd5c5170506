package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/sadaka/core"
	"github.com/trezcool/sadaka/core/content"
	"github.com/trezcool/sadaka/core/mailtmpl"
	"github.com/trezcool/sadaka/core/media"
	"github.com/trezcool/sadaka/core/organization"
	"github.com/trezcool/sadaka/core/payment"
	"github.com/trezcool/sadaka/core/user"
)

// Deps are the services exposed by the API.
type Deps struct {
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

type Server struct {
	conf     *core.Config
	logger   core.Logger
	deps     Deps
	app      *echo.Echo
	auth     *authenticator
	site     *site
	shutdown chan os.Signal
	errors   chan error
}

func NewServer(conf *core.Config, logger core.Logger, deps Deps) (*Server, error) {
	s := &Server{
		conf:     conf,
		logger:   logger,
		deps:     deps,
		app:      echo.New(),
		auth:     newAuthenticator(conf, deps.UserSvc),
		shutdown: make(chan os.Signal, 1),
		errors:   make(chan error, 1),
	}
	st, err := newSite(conf, deps.ContentSvc, logger)
	if err != nil {
		return nil, err
	}
	s.site = st
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s, nil
}

func (s *Server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.conf.Debug || s.conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = s.conf.Debug
	s.app.Renderer = s.site

	registerSite(s.app, s.site)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(s.auth.jwtConfig)

	registerPublicAPI(v1, s.deps)
	registerUserAPI(v1, jwt, s.auth, s.deps)
	registerContentAPI(v1, jwt, s.auth, s.deps.ContentSvc)
	registerOrganizationAPI(v1, jwt, s.auth, s.deps.OrgSvc)
	registerSettingsAPI(v1, jwt, s.auth, s.deps.PaymentSvc)
	registerMailTemplateAPI(v1, jwt, s.auth, s.deps.MailTmplSvc)
	registerUploadAPI(v1, jwt, s.auth, s.deps.MediaSvc)
}

// Start listens until the server is shut down; listening errors are sent to Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.conf.Server.Host); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error { return s.errors }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // shutdown already signaled
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

// Token generates a token for usr, as returned on login.
func (s *Server) Token(usr user.User) (string, error) {
	return s.auth.generateToken(s.auth.userClaims(usr))
}
