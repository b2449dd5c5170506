package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/sadaka/core"
	"github.com/trezcool/sadaka/core/media"
)

var errFileRequired = "this field is required"

type uploadApi struct {
	svc *media.Service
}

func registerUploadAPI(g *echo.Group, jwt echo.MiddlewareFunc, auth *authenticator, svc *media.Service) {
	api := uploadApi{svc: svc}
	g.POST("/uploads", api.upload, jwt, activeMiddleware(auth), staffMiddleware())
}

// UploadResponse holds the uploaded asset &, when text was sent, the text with the asset URL substituted.
type UploadResponse struct {
	Asset       media.Asset `json:"asset"`
	Placeholder string      `json:"placeholder"`
	Snippet     string      `json:"snippet"`
	Text        *string     `json:"text,omitempty"`
	Replaced    bool        `json:"replaced"`
}

// upload reads the multipart `file` field & forwards it to the CDN.
// Optional fields: `folder`, `alt`, `text` & `placeholder` (defaults to the file's placeholder).
// When the placeholder is not found in text, the asset snippet is appended to it.
func (api *uploadApi) upload(ctx echo.Context) error {
	fh, err := ctx.FormFile("file")
	if err != nil {
		if errors.Cause(err) == http.ErrMissingFile {
			return core.NewValidationError(err, core.FieldError{Field: "file", Error: errFileRequired})
		}
		return echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form").SetInternal(err)
	}
	file, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	//goland:noinspection GoUnhandledErrorResult
	defer file.Close()

	asset, err := api.svc.Upload(ctx.Request().Context(), media.UploadInput{
		Filename: fh.Filename,
		Content:  file,
		Size:     fh.Size,
		Folder:   ctx.FormValue("folder"),
	})
	if err != nil {
		return errors.Wrap(err, "uploading file")
	}

	resp := UploadResponse{
		Asset:       asset,
		Placeholder: core.CleanString(ctx.FormValue("placeholder")),
		Snippet:     media.Snippet(asset, ctx.FormValue("alt")),
	}
	if resp.Placeholder == "" {
		resp.Placeholder = media.PlaceholderFor(fh.Filename)
	}
	if form, err := ctx.MultipartForm(); err == nil {
		if vals, ok := form.Value["text"]; ok && len(vals) > 0 {
			text, replaced := media.Substitute(vals[0], resp.Placeholder, asset.URL)
			if !replaced {
				text = strings.TrimRight(text, "\n")
				if text != "" {
					text += "\n\n"
				}
				text += resp.Snippet
			}
			resp.Text = &text
			resp.Replaced = replaced
		}
	}
	return ctx.JSON(http.StatusCreated, resp)
}
