package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/sadaka/core/content"
)

type pageRepository struct {
	db *sqlx.DB
}

var _ content.PageRepository = (*pageRepository)(nil)

func NewPageRepository(db *sqlx.DB) *pageRepository {
	return &pageRepository{db: db}
}

func (repo pageRepository) GetPage(ctx context.Context, key string) (content.Page, error) {
	var page content.Page
	err := repo.db.GetContext(ctx, &page, `
		SELECT key, title, subtitle, body, image_url, video_url, cta_text, cta_link, updated_at, updated_by
		FROM page WHERE key = $1`, key)
	if err != nil {
		return content.Page{}, trapNoRowsErr(err, content.ErrPageNotFound, "getting page")
	}
	return page, nil
}

func (repo pageRepository) SavePage(ctx context.Context, page content.Page) (content.Page, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO page (key, title, subtitle, body, image_url, video_url, cta_text, cta_link, updated_at, updated_by)
		VALUES (:key, :title, :subtitle, :body, :image_url, :video_url, :cta_text, :cta_link, :updated_at, :updated_by)
		ON CONFLICT (key) DO UPDATE SET
			title = EXCLUDED.title,
			subtitle = EXCLUDED.subtitle,
			body = EXCLUDED.body,
			image_url = EXCLUDED.image_url,
			video_url = EXCLUDED.video_url,
			cta_text = EXCLUDED.cta_text,
			cta_link = EXCLUDED.cta_link,
			updated_at = EXCLUDED.updated_at,
			updated_by = EXCLUDED.updated_by`, page)
	if err != nil {
		return content.Page{}, errors.Wrap(err, "saving page")
	}
	return page, nil
}
