package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/sadaka/core/content"
	"github.com/trezcool/sadaka/core/organization"
	"github.com/trezcool/sadaka/core/payment"
)

// publicApi serves the published content & the organization applications, without auth.
type publicApi struct {
	content    *content.Service
	orgSvc     *organization.Service
	paymentSvc *payment.Service
}

func registerPublicAPI(g *echo.Group, deps Deps) {
	api := publicApi{
		content:    deps.ContentSvc,
		orgSvc:     deps.OrgSvc,
		paymentSvc: deps.PaymentSvc,
	}

	pg := g.Group("/public")
	pg.GET("/site", api.site)
	pg.GET("/pages/:key", api.page)
	pg.GET("/faqs", api.faqs)
	pg.GET("/features", api.features)
	pg.GET("/testimonials", api.testimonials)
	pg.GET("/guides", api.guides)
	pg.GET("/guides/:slug", api.guide)
	pg.GET("/quote", api.quote)
	// TODO: rate limit applications per IP
	pg.POST("/organizations", api.submitOrganization)
}

func (api *publicApi) site(ctx echo.Context) error {
	sc, err := loadSiteContent(ctx.Request().Context(), api.content)
	if err != nil {
		return errors.Wrap(err, "loading site content")
	}
	return ctx.JSON(http.StatusOK, sc)
}

func (api *publicApi) page(ctx echo.Context) error {
	page, err := api.content.Pages.Get(ctx.Request().Context(), ctx.Param("key"))
	if err != nil {
		return errors.Wrap(err, "getting page")
	}
	return ctx.JSON(http.StatusOK, page)
}

func (api *publicApi) faqs(ctx echo.Context) error {
	faqs, err := api.content.FAQs.ListPublished(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing faqs")
	}
	return ctx.JSON(http.StatusOK, faqs)
}

func (api *publicApi) features(ctx echo.Context) error {
	features, err := api.content.Features.ListPublished(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing features")
	}
	return ctx.JSON(http.StatusOK, features)
}

func (api *publicApi) testimonials(ctx echo.Context) error {
	testimonials, err := api.content.Testimonials.ListPublished(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing testimonials")
	}
	return ctx.JSON(http.StatusOK, testimonials)
}

func (api *publicApi) guides(ctx echo.Context) error {
	guides, err := api.content.Guides.ListPublished(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing guides")
	}
	return ctx.JSON(http.StatusOK, guides)
}

func (api *publicApi) guide(ctx echo.Context) error {
	guide, err := api.content.GuideBySlug(ctx.Request().Context(), ctx.Param("slug"))
	if err != nil {
		return errors.Wrap(err, "getting guide")
	}
	return ctx.JSON(http.StatusOK, guide)
}

func (api *publicApi) quote(ctx echo.Context) error {
	return quote(ctx, api.paymentSvc)
}

func (api *publicApi) submitOrganization(ctx echo.Context) error {
	var data organization.Application
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Application")
	}
	org, err := api.orgSvc.Submit(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "submitting organization")
	}
	return ctx.JSON(http.StatusCreated, org)
}
