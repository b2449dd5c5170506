package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/sadaka/core"
	"github.com/trezcool/sadaka/core/payment"
)

var errInvalidAmount = errors.New("amount must be an integer in minor units")

type settingsApi struct {
	svc *payment.Service
}

func registerSettingsAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *authenticator, svc *payment.Service) {
	api := settingsApi{svc: svc}

	sg := g.Group("/settings/payment", jwt, activeMiddleware(auth))
	sg.GET("/quote", api.quote, staffMiddleware())
	sg.GET("", api.retrieve, adminMiddleware())
	sg.PUT("", api.replace, adminMiddleware())
	sg.PATCH("", api.patch, adminMiddleware())
}

func (api *settingsApi) retrieve(ctx echo.Context) error {
	fs, err := api.svc.Get(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting fee settings")
	}
	return ctx.JSON(http.StatusOK, fs)
}

func (api *settingsApi) replace(ctx echo.Context) error {
	var data payment.FeeSettings
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to FeeSettings")
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	fs, err := api.svc.Put(ctx.Request().Context(), data, claims.editorName())
	if err != nil {
		return errors.Wrap(err, "saving fee settings")
	}
	return ctx.JSON(http.StatusOK, fs)
}

func (api *settingsApi) patch(ctx echo.Context) error {
	var data payment.FeeSettingsPatch
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to FeeSettingsPatch")
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	fs, err := api.svc.Patch(ctx.Request().Context(), data, claims.editorName())
	if err != nil {
		return errors.Wrap(err, "patching fee settings")
	}
	return ctx.JSON(http.StatusOK, fs)
}

func (api *settingsApi) quote(ctx echo.Context) error {
	return quote(ctx, api.svc)
}

// quote answers the fee breakdown of the `amount` query param.
func quote(ctx echo.Context, svc *payment.Service) error {
	amount, err := strconv.ParseInt(ctx.QueryParam("amount"), 10, 64)
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "amount", Error: errInvalidAmount.Error()})
	}
	q, err := svc.Quote(ctx.Request().Context(), amount)
	if err != nil {
		return errors.Wrap(err, "quoting fees")
	}
	return ctx.JSON(http.StatusOK, q)
}
