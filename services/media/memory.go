package mediasvc

import (
	"context"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/sadaka/core"
	"github.com/trezcool/sadaka/core/media"
)

// MemoryUploader keeps uploaded files in memory & serves fake CDN URLs.
type MemoryUploader struct {
	baseURL string
	logger  core.Logger

	mu    sync.RWMutex
	files map[string][]byte // {public ID: content}
}

var _ media.Uploader = (*MemoryUploader)(nil)

func NewMemoryUploader(baseURL string, logger core.Logger) *MemoryUploader {
	return &MemoryUploader{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
		files:   make(map[string][]byte),
	}
}

func (u *MemoryUploader) Upload(_ context.Context, in media.UploadInput) (media.Asset, error) {
	content, err := io.ReadAll(in.Content)
	if err != nil {
		return media.Asset{}, errors.Wrap(err, "reading file")
	}
	ext := path.Ext(in.Filename)
	publicID := path.Join(in.Folder, uuid.New().String())

	u.mu.Lock()
	u.files[publicID] = content
	u.mu.Unlock()

	resourceType := media.ResourceType(in.ContentType)
	asset := media.Asset{
		URL:          u.baseURL + "/" + resourceType + "/upload/" + publicID + ext,
		PublicID:     publicID,
		ResourceType: resourceType,
		Format:       strings.TrimPrefix(ext, "."),
		Bytes:        len(content),
	}
	u.logger.Info("mediasvc.MemoryUploader: uploaded " + in.Filename + " to " + asset.URL)
	return asset, nil
}

// File returns the content uploaded under publicID.
func (u *MemoryUploader) File(publicID string) ([]byte, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	content, ok := u.files[publicID]
	return content, ok
}

// Len returns the number of files uploaded so far.
func (u *MemoryUploader) Len() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.files)
}
