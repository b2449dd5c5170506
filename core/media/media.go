// Package media proxies file uploads to the CDN and substitutes the resulting URLs into site content.
package media

import (
	"bufio"
	"context"
	"io"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"

	"github.com/trezcool/sadaka/core"
)

// sniffLen is how much of a file is read to detect its type.
const sniffLen = 3072

// Resource types
const (
	ResourceImage = "image"
	ResourceVideo = "video"
)

var (
	errEmptyFile       = errors.New("file is empty")
	errFileTooLarge    = errors.New("file is too large")
	errUnsupportedType = errors.New("only images and videos can be uploaded")
)

// Asset is a file hosted on the CDN.
type Asset struct {
	URL          string `json:"url"`
	PublicID     string `json:"public_id"`
	ResourceType string `json:"resource_type"`
	Format       string `json:"format"`
	Bytes        int    `json:"bytes"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
}

type UploadInput struct {
	Filename    string
	Content     io.Reader
	Size        int64
	ContentType string // sniffed from Content
	Folder      string
}

// Uploader stores files on a CDN.
type Uploader interface {
	Upload(ctx context.Context, in UploadInput) (Asset, error)
}

type Service struct {
	uploader      Uploader
	maxUploadSize int64
	folder        string
}

func NewService(uploader Uploader, conf *core.Config) *Service {
	return &Service{
		uploader:      uploader,
		maxUploadSize: conf.Cloudinary.MaxUploadSize,
		folder:        conf.Cloudinary.Folder,
	}
}

// Upload checks that in holds an image or a video then uploads it.
// The client provided content type is ignored.
func (svc *Service) Upload(ctx context.Context, in UploadInput) (Asset, error) {
	fileErr := func(err error) error {
		return core.NewValidationError(err, core.FieldError{Field: "file", Error: err.Error()})
	}
	if in.Content == nil || in.Size == 0 {
		return Asset{}, fileErr(errEmptyFile)
	}
	if svc.maxUploadSize > 0 && in.Size > svc.maxUploadSize {
		return Asset{}, fileErr(errFileTooLarge)
	}

	br := bufio.NewReaderSize(in.Content, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF {
		return Asset{}, errors.Wrap(err, "reading file")
	}
	if len(head) == 0 {
		return Asset{}, fileErr(errEmptyFile)
	}
	in.ContentType = mimetype.Detect(head).String()
	// SVGs can embed scripts
	if ResourceType(in.ContentType) == "" || in.ContentType == "image/svg+xml" {
		return Asset{}, fileErr(errUnsupportedType)
	}
	in.Content = io.LimitReader(br, in.Size)
	in.Filename = path.Base(core.CleanString(in.Filename))
	in.Folder = svc.subFolder(in.Folder)

	asset, err := svc.uploader.Upload(ctx, in)
	if err != nil {
		return Asset{}, errors.Wrap(err, "uploading file")
	}
	return asset, nil
}

// subFolder nests folder under the configured root folder.
func (svc *Service) subFolder(folder string) string {
	folder = core.Slugify(folder)
	switch {
	case svc.folder == "":
		return folder
	case folder == "":
		return svc.folder
	default:
		return svc.folder + "/" + folder
	}
}

// ResourceType returns the CDN resource type of contentType, "" when it cannot be uploaded.
func ResourceType(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return ResourceImage
	case strings.HasPrefix(contentType, "video/"):
		return ResourceVideo
	}
	return ""
}
