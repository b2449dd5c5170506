package inmemdb

import (
	"context"

	"github.com/trezcool/sadaka/core"
	"github.com/trezcool/sadaka/core/mailtmpl"
)

type mailTemplateRepository struct {
	db *table[mailtmpl.MailTemplate]
}

func NewMailTemplateRepository(db *DB) mailtmpl.Repository {
	return &mailTemplateRepository{db: db.mailTemplates}
}

func (repo *mailTemplateRepository) ListTemplates(context.Context) ([]mailtmpl.MailTemplate, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	mts := repo.db.all()
	sortRows(mts, []core.DBOrdering{{Field: "name", Ascending: true}})
	return mts, nil
}

func (repo *mailTemplateRepository) GetTemplate(_ context.Context, name string) (mailtmpl.MailTemplate, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if mt, ok := repo.db.rows[name]; ok {
		return mt, nil
	}
	return mailtmpl.MailTemplate{}, mailtmpl.ErrNotFound
}

func (repo *mailTemplateRepository) CreateTemplate(_ context.Context, mt mailtmpl.MailTemplate) (mailtmpl.MailTemplate, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.rows[mt.Name] = mt
	return mt, nil
}

func (repo *mailTemplateRepository) UpdateTemplate(_ context.Context, mt mailtmpl.MailTemplate) (mailtmpl.MailTemplate, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.rows[mt.Name]; !ok {
		return mailtmpl.MailTemplate{}, mailtmpl.ErrNotFound
	}
	repo.db.rows[mt.Name] = mt
	return mt, nil
}

func (repo *mailTemplateRepository) DeleteTemplate(_ context.Context, name string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.rows, name)
	return nil
}
