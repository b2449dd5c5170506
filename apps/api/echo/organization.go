package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/sadaka/core/organization"
)

type organizationApi struct {
	svc *organization.Service
}

func registerOrganizationAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *authenticator, svc *organization.Service) {
	api := organizationApi{svc: svc}

	og := g.Group("/organizations", jwt, activeMiddleware(auth), adminMiddleware())
	og.GET("", api.query)
	og.GET("/:id", api.retrieve)
	og.PUT("/:id", api.resubmit)
	og.DELETE("/:id", api.destroy)
	og.POST("/:id/approve", api.approve)
	og.POST("/:id/reject", api.reject)
}

func (api *organizationApi) query(ctx echo.Context) error {
	var filter organization.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []organization.Organization{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	orgs, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying organizations")
	}
	return ctx.JSON(http.StatusOK, orgs)
}

func (api *organizationApi) retrieve(ctx echo.Context) error {
	org, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting organization")
	}
	return ctx.JSON(http.StatusOK, org)
}

func (api *organizationApi) resubmit(ctx echo.Context) error {
	var data organization.Application
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Application")
	}
	org, err := api.svc.Resubmit(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "resubmitting organization")
	}
	return ctx.JSON(http.StatusOK, org)
}

func (api *organizationApi) approve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	org, err := api.svc.Approve(ctx.Request().Context(), ctx.Param("id"), claims.editorName())
	if err != nil {
		return errors.Wrap(err, "approving organization")
	}
	return ctx.JSON(http.StatusOK, org)
}

func (api *organizationApi) reject(ctx echo.Context) error {
	var data organization.Rejection
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Rejection")
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	org, err := api.svc.Reject(ctx.Request().Context(), ctx.Param("id"), claims.editorName(), data)
	if err != nil {
		return errors.Wrap(err, "rejecting organization")
	}
	return ctx.JSON(http.StatusOK, org)
}

func (api *organizationApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting organization")
	}
	return ctx.NoContent(http.StatusNoContent)
}
