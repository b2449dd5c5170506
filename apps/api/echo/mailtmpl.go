package echoapi

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/sadaka/core/mailtmpl"
)

type mailTemplateApi struct {
	svc *mailtmpl.Service
}

func registerMailTemplateAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *authenticator, svc *mailtmpl.Service) {
	api := mailTemplateApi{svc: svc}

	mg := g.Group("/mail-templates", jwt, activeMiddleware(auth), adminMiddleware())
	mg.GET("", api.list)
	mg.POST("", api.create)
	mg.GET("/:name", api.retrieve)
	mg.PUT("/:name", api.update)
	mg.DELETE("/:name", api.destroy)
	mg.POST("/:name/preview", api.preview)
}

func (api *mailTemplateApi) list(ctx echo.Context) error {
	mts, err := api.svc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing mail templates")
	}
	return ctx.JSON(http.StatusOK, mts)
}

func (api *mailTemplateApi) retrieve(ctx echo.Context) error {
	mt, err := api.svc.Get(ctx.Request().Context(), ctx.Param("name"))
	if err != nil {
		return errors.Wrap(err, "getting mail template")
	}
	return ctx.JSON(http.StatusOK, mt)
}

func (api *mailTemplateApi) create(ctx echo.Context) error {
	var data mailtmpl.MailTemplate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MailTemplate")
	}
	mt, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating mail template")
	}
	return ctx.JSON(http.StatusCreated, mt)
}

func (api *mailTemplateApi) update(ctx echo.Context) error {
	var data mailtmpl.MailTemplate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MailTemplate")
	}
	mt, err := api.svc.Update(ctx.Request().Context(), ctx.Param("name"), data)
	if err != nil {
		return errors.Wrap(err, "updating mail template")
	}
	return ctx.JSON(http.StatusOK, mt)
}

func (api *mailTemplateApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("name")); err != nil {
		return errors.Wrap(err, "deleting mail template")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// preview renders the template with the posted JSON object as data.
func (api *mailTemplateApi) preview(ctx echo.Context) error {
	data := make(map[string]interface{})
	if ctx.Request().ContentLength != 0 {
		if err := json.NewDecoder(ctx.Request().Body).Decode(&data); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON object").SetInternal(err)
		}
	}
	r, err := api.svc.Preview(ctx.Request().Context(), ctx.Param("name"), data)
	if err != nil {
		return errors.Wrap(err, "previewing mail template")
	}
	return ctx.JSON(http.StatusOK, r)
}
