package echoapi

import (
	"bytes"
	"context"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/trezcool/sadaka/core"
	"github.com/trezcool/sadaka/core/content"
	appfs "github.com/trezcool/sadaka/fs"
)

const langCookie = "lang"

var (
	siteTemplates = []string{"home", "about", "guides", "guide", "faqs", "not_found"}
	siteLanguages = []language.Tag{language.English, language.French}

	// fr translations of the site chrome; content is served as edited.
	frMessages = map[string]string{
		"Home":                       "Accueil",
		"About us":                   "À propos",
		"Guides":                     "Guides",
		"FAQ":                        "FAQ",
		"Frequently asked questions": "Questions fréquentes",
		"What we offer":              "Ce que nous offrons",
		"They trust us":              "Ils nous font confiance",
		"Payouts":                    "Versements",
		"Watch the video":            "Voir la vidéo",
		"Read the guide":             "Lire le guide",
		"Back to guides":             "Retour aux guides",
		"No guides yet.":             "Aucun guide pour le moment.",
		"Page not found":             "Page introuvable",
		"The page you are looking for does not exist.": "La page que vous cherchez n'existe pas.",
		"© %d %s. All rights reserved.":                 "© %d %s. Tous droits réservés.",
	}

	markdown = goldmark.New(
		goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithUnsafe()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// siteContent is everything the home page shows.
type siteContent struct {
	Hero         content.Page          `json:"hero"`
	About        content.Page          `json:"about"`
	Payout       content.Page          `json:"payout"`
	Features     []content.Feature     `json:"features"`
	Testimonials []content.Testimonial `json:"testimonials"`
	FAQs         []content.FAQ         `json:"faqs"`
}

// loadSiteContent fetches the published site content concurrently.
func loadSiteContent(ctx context.Context, svc *content.Service) (siteContent, error) {
	var sc siteContent
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		sc.Hero, err = svc.Pages.Get(gctx, content.PageHero)
		return errors.Wrap(err, "getting hero")
	})
	g.Go(func() (err error) {
		sc.About, err = svc.Pages.Get(gctx, content.PageAbout)
		return errors.Wrap(err, "getting about page")
	})
	g.Go(func() (err error) {
		sc.Payout, err = svc.Pages.Get(gctx, content.PagePayout)
		return errors.Wrap(err, "getting payout page")
	})
	g.Go(func() (err error) {
		sc.Features, err = svc.Features.ListPublished(gctx)
		return errors.Wrap(err, "listing features")
	})
	g.Go(func() (err error) {
		sc.Testimonials, err = svc.Testimonials.ListPublished(gctx)
		return errors.Wrap(err, "listing testimonials")
	})
	g.Go(func() (err error) {
		sc.FAQs, err = svc.FAQs.ListPublished(gctx)
		return errors.Wrap(err, "listing faqs")
	})
	if err := g.Wait(); err != nil {
		return siteContent{}, err
	}
	return sc, nil
}

// site renders the public marketing site.
type site struct {
	conf      *core.Config
	svc       *content.Service
	logger    core.Logger
	templates map[string]*template.Template
	catalog   catalog.Catalog
	matcher   language.Matcher
}

var _ echo.Renderer = (*site)(nil)

func newSite(conf *core.Config, svc *content.Service, logger core.Logger) (*site, error) {
	cat := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, msg := range frMessages {
		if err := cat.SetString(language.French, key, msg); err != nil {
			return nil, errors.Wrapf(err, "setting translation of %q", key)
		}
	}

	funcs := template.FuncMap{"richtext": richText}
	templates := make(map[string]*template.Template, len(siteTemplates))
	for _, name := range siteTemplates {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(
			appfs.FS,
			appfs.SiteTemplatesDir+"/_layout.gohtml",
			appfs.SiteTemplatesDir+"/"+name+".gohtml",
		)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing site template %q", name)
		}
		templates[name] = tmpl
	}

	return &site{
		conf:      conf,
		svc:       svc,
		logger:    logger,
		templates: templates,
		catalog:   cat,
		matcher:   language.NewMatcher(siteLanguages),
	}, nil
}

func (s *site) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := s.templates[name]
	if !ok {
		return errors.Errorf("site template %q not found", name)
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}

// language picks the page language from the `lang` query param (remembered in a cookie),
// the cookie or the Accept-Language header, in that order.
func (s *site) language(ctx echo.Context) language.Tag {
	if lang := ctx.QueryParam(langCookie); lang != "" {
		if tag, ok := supportedLanguage(lang); ok {
			ctx.SetCookie(&http.Cookie{
				Name:     langCookie,
				Value:    tag.String(),
				Path:     "/",
				Expires:  time.Now().AddDate(1, 0, 0),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			return tag
		}
	}
	if cookie, err := ctx.Cookie(langCookie); err == nil {
		if tag, ok := supportedLanguage(cookie.Value); ok {
			return tag
		}
	}
	tags, _, _ := language.ParseAcceptLanguage(ctx.Request().Header.Get("Accept-Language"))
	_, idx, _ := s.matcher.Match(tags...)
	return siteLanguages[idx]
}

func supportedLanguage(lang string) (language.Tag, bool) {
	tag, err := language.Parse(lang)
	if err != nil {
		return language.Und, false
	}
	for _, supported := range siteLanguages {
		if base, _ := tag.Base(); base.String() == supported.String() {
			return supported, true
		}
	}
	return language.Und, false
}

// pageData is passed to every site template.
type pageData struct {
	Lang    string
	AppName string
	Path    string
	Year    int

	Site   siteContent
	Page   content.Page
	Guides []content.Guide
	Guide  content.Guide
	FAQs   []content.FAQ

	printer *message.Printer
}

// T translates the site chrome.
func (d pageData) T(key string, args ...interface{}) string {
	return d.printer.Sprintf(key, args...)
}

func (s *site) data(ctx echo.Context) pageData {
	tag := s.language(ctx)
	return pageData{
		Lang:    tag.String(),
		AppName: s.conf.AppName,
		Path:    ctx.Request().URL.Path,
		Year:    time.Now().Year(),
		printer: message.NewPrinter(tag, message.Catalog(s.catalog)),
	}
}

func registerSite(app *echo.Echo, s *site) {
	app.GET("/", s.home)
	app.GET("/about", s.about)
	app.GET("/faqs", s.faqs)
	app.GET("/guides", s.guides)
	app.GET("/guides/:slug", s.guide)
}

func (s *site) home(ctx echo.Context) error {
	sc, err := loadSiteContent(ctx.Request().Context(), s.svc)
	if err != nil {
		return errors.Wrap(err, "loading site content")
	}
	data := s.data(ctx)
	data.Site = sc
	return ctx.Render(http.StatusOK, "home", data)
}

func (s *site) about(ctx echo.Context) error {
	page, err := s.svc.Pages.Get(ctx.Request().Context(), content.PageAbout)
	if err != nil {
		return errors.Wrap(err, "getting about page")
	}
	data := s.data(ctx)
	data.Page = page
	return ctx.Render(http.StatusOK, "about", data)
}

func (s *site) faqs(ctx echo.Context) error {
	faqs, err := s.svc.FAQs.ListPublished(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing faqs")
	}
	data := s.data(ctx)
	data.FAQs = faqs
	return ctx.Render(http.StatusOK, "faqs", data)
}

func (s *site) guides(ctx echo.Context) error {
	guides, err := s.svc.Guides.ListPublished(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing guides")
	}
	data := s.data(ctx)
	data.Guides = guides
	return ctx.Render(http.StatusOK, "guides", data)
}

func (s *site) guide(ctx echo.Context) error {
	guide, err := s.svc.GuideBySlug(ctx.Request().Context(), ctx.Param("slug"))
	if err != nil {
		if core.IsNotFound(err) {
			return ctx.Render(http.StatusNotFound, "not_found", s.data(ctx))
		}
		return errors.Wrap(err, "getting guide")
	}
	data := s.data(ctx)
	data.Guide = guide
	return ctx.Render(http.StatusOK, "guide", data)
}

// richText renders edited Markdown. Raw HTML is kept but sanitized like user generated content.
func richText(text string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return template.HTML("<p>" + template.HTMLEscapeString(text) + "</p>") // nolint:gosec
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes())) // nolint:gosec
}
