// Package mediasvc implements media.Uploader on Cloudinary, and in memory for development & tests.
package mediasvc

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/sadaka/core"
	"github.com/trezcool/sadaka/core/media"
)

var uploadDelay = 500 * time.Millisecond

// uploadFunc uploads a file to Cloudinary; it is cld.Upload.Upload outside of tests.
type uploadFunc func(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)

type cloudinaryUploader struct {
	upload   uploadFunc
	attempts uint
	logger   core.Logger
}

var _ media.Uploader = (*cloudinaryUploader)(nil)

func NewCloudinaryUploader(conf *core.Config, logger core.Logger) (media.Uploader, error) {
	err := vala.BeginValidation().Validate(
		vala.StringNotEmpty(conf.Cloudinary.CloudName, "cloudinary cloud name"),
		vala.StringNotEmpty(conf.Cloudinary.APIKey, "cloudinary API key"),
		vala.StringNotEmpty(conf.Cloudinary.APISecret, "cloudinary API secret"),
	).Check()
	if err != nil {
		return nil, err
	}

	cld, err := cloudinary.NewFromParams(conf.Cloudinary.CloudName, conf.Cloudinary.APIKey, conf.Cloudinary.APISecret)
	if err != nil {
		return nil, errors.Wrap(err, "creating cloudinary client")
	}
	attempts := conf.Cloudinary.UploadRetries + 1
	return &cloudinaryUploader{upload: cld.Upload.Upload, attempts: attempts, logger: logger}, nil
}

// Upload uploads the file, retrying on failures. The content is buffered so that it can be sent again.
func (u *cloudinaryUploader) Upload(ctx context.Context, in media.UploadInput) (media.Asset, error) {
	content, err := io.ReadAll(in.Content)
	if err != nil {
		return media.Asset{}, errors.Wrap(err, "reading file")
	}
	params := uploader.UploadParams{
		Folder:       in.Folder,
		ResourceType: media.ResourceType(in.ContentType),
	}

	var res *uploader.UploadResult
	err = retry.Do(
		func() error {
			var err error
			res, err = u.upload(ctx, bytes.NewReader(content), params)
			if err != nil {
				return err
			}
			if res.Error.Message != "" {
				// rejected files won't be accepted on retry
				return retry.Unrecoverable(errors.New(res.Error.Message))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(u.attempts),
		retry.Delay(uploadDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			u.logger.Warn("mediasvc.cloudinaryUploader: retrying upload of "+in.Filename, err)
		}),
	)
	if err != nil {
		return media.Asset{}, errors.Wrap(err, "uploading to cloudinary")
	}

	return media.Asset{
		URL:          res.SecureURL,
		PublicID:     res.PublicID,
		ResourceType: res.ResourceType,
		Format:       res.Format,
		Bytes:        res.Bytes,
		Width:        res.Width,
		Height:       res.Height,
	}, nil
}
