package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/sadaka/core/content"
)

func registerContentAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *authenticator, svc *content.Service) {
	staff := []echo.MiddlewareFunc{jwt, activeMiddleware(auth), staffMiddleware()}

	pages := pageApi{svc: svc.Pages}
	pg := g.Group("/pages", staff...)
	pg.GET("", pages.list)
	pg.GET("/:key", pages.retrieve)
	pg.PUT("/:key", pages.replace)
	pg.PATCH("/:key", pages.patch)

	registerCollectionAPI(g.Group("/faqs", staff...), svc.FAQs, func() interface{} { return new(content.FAQPatch) })
	registerCollectionAPI(g.Group("/features", staff...), svc.Features, func() interface{} { return new(content.FeaturePatch) })
	registerCollectionAPI(g.Group("/guides", staff...), svc.Guides, func() interface{} { return new(content.GuidePatch) })
	registerCollectionAPI(g.Group("/testimonials", staff...), svc.Testimonials, func() interface{} { return new(content.TestimonialPatch) })
}

type pageApi struct {
	svc *content.PageService
}

func (api *pageApi) list(ctx echo.Context) error {
	pages := make([]content.Page, 0, len(content.PageKeys))
	for _, key := range content.PageKeys {
		page, err := api.svc.Get(ctx.Request().Context(), key)
		if err != nil {
			return errors.Wrap(err, "getting page "+key)
		}
		pages = append(pages, page)
	}
	return ctx.JSON(http.StatusOK, pages)
}

func (api *pageApi) retrieve(ctx echo.Context) error {
	page, err := api.svc.Get(ctx.Request().Context(), ctx.Param("key"))
	if err != nil {
		return errors.Wrap(err, "getting page")
	}
	return ctx.JSON(http.StatusOK, page)
}

func (api *pageApi) replace(ctx echo.Context) error {
	var data content.Page
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Page")
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	page, err := api.svc.Put(ctx.Request().Context(), ctx.Param("key"), data, claims.editorName())
	if err != nil {
		return errors.Wrap(err, "saving page")
	}
	return ctx.JSON(http.StatusOK, page)
}

func (api *pageApi) patch(ctx echo.Context) error {
	var data content.PagePatch
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PagePatch")
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	page, err := api.svc.Patch(ctx.Request().Context(), ctx.Param("key"), data, claims.editorName())
	if err != nil {
		return errors.Wrap(err, "patching page")
	}
	return ctx.JSON(http.StatusOK, page)
}

// collectionApi serves the CRUD endpoints of an orderable content collection.
type collectionApi[T any, PT content.Item[T]] struct {
	coll     *content.Collection[T, PT]
	newPatch func() interface{}
}

func registerCollectionAPI[T any, PT content.Item[T]](
	g *echo.Group,
	coll *content.Collection[T, PT],
	newPatch func() interface{},
) {
	api := &collectionApi[T, PT]{coll: coll, newPatch: newPatch}
	g.GET("", api.list)
	g.POST("", api.create)
	g.PUT("/order", api.reorder)
	g.GET("/:id", api.retrieve)
	g.PUT("/:id", api.replace)
	g.PATCH("/:id", api.patch)
	g.DELETE("/:id", api.destroy)
}

func (api *collectionApi[T, PT]) list(ctx echo.Context) error {
	var filter content.ListFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []T{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	items, err := api.coll.List(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "listing items")
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *collectionApi[T, PT]) retrieve(ctx echo.Context) error {
	item, err := api.coll.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting item")
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *collectionApi[T, PT]) create(ctx echo.Context) error {
	var data T
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding item")
	}
	item, err := api.coll.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating item")
	}
	return ctx.JSON(http.StatusCreated, item)
}

func (api *collectionApi[T, PT]) replace(ctx echo.Context) error {
	var data T
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding item")
	}
	item, err := api.coll.Replace(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "replacing item")
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *collectionApi[T, PT]) patch(ctx echo.Context) error {
	data := api.newPatch()
	if err := ctx.Bind(data); err != nil {
		return errors.Wrap(err, "binding patch")
	}
	item, err := api.coll.Patch(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "patching item")
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *collectionApi[T, PT]) destroy(ctx echo.Context) error {
	if err := api.coll.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting item")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *collectionApi[T, PT]) reorder(ctx echo.Context) error {
	var data ReorderRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReorderRequest")
	}
	items, err := api.coll.Reorder(ctx.Request().Context(), data.IDs)
	if err != nil {
		return errors.Wrap(err, "reordering items")
	}
	return ctx.JSON(http.StatusOK, items)
}
