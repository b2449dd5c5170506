package inmemdb

import (
	"context"

	"github.com/trezcool/sadaka/core/content"
)

type pageRepository struct {
	db *table[content.Page]
}

func NewPageRepository(db *DB) content.PageRepository {
	return &pageRepository{db: db.pages}
}

func (repo *pageRepository) GetPage(_ context.Context, key string) (content.Page, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if page, ok := repo.db.rows[key]; ok {
		return page, nil
	}
	return content.Page{}, content.ErrPageNotFound
}

func (repo *pageRepository) SavePage(_ context.Context, page content.Page) (content.Page, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.rows[page.Key] = page
	return page, nil
}
