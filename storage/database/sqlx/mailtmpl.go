package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/sadaka/core/mailtmpl"
)

var mailTemplateColumns = []string{"name", "description", "subject", "text_body", "html_body", "updated_at"}

type mailTemplateRepository struct {
	db *sqlx.DB
}

var _ mailtmpl.Repository = (*mailTemplateRepository)(nil)

func NewMailTemplateRepository(db *sqlx.DB) *mailTemplateRepository {
	return &mailTemplateRepository{db: db}
}

func (repo mailTemplateRepository) ListTemplates(ctx context.Context) ([]mailtmpl.MailTemplate, error) {
	query, args, err := psql.Select(mailTemplateColumns...).From("mail_template").OrderBy("name").ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var mts []mailtmpl.MailTemplate
	if err = repo.db.SelectContext(ctx, &mts, query, args...); err != nil {
		return nil, errors.Wrap(err, "listing mail templates")
	}
	return mts, nil
}

func (repo mailTemplateRepository) GetTemplate(ctx context.Context, name string) (mailtmpl.MailTemplate, error) {
	query, args, err := psql.Select(mailTemplateColumns...).From("mail_template").Where(sq.Eq{"name": name}).ToSql()
	if err != nil {
		return mailtmpl.MailTemplate{}, errors.Wrap(err, "building query")
	}
	var mt mailtmpl.MailTemplate
	if err = repo.db.GetContext(ctx, &mt, query, args...); err != nil {
		return mailtmpl.MailTemplate{}, trapNoRowsErr(err, mailtmpl.ErrNotFound, "getting mail template")
	}
	return mt, nil
}

func (repo mailTemplateRepository) CreateTemplate(ctx context.Context, mt mailtmpl.MailTemplate) (mailtmpl.MailTemplate, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO mail_template (name, description, subject, text_body, html_body, updated_at)
		VALUES (:name, :description, :subject, :text_body, :html_body, :updated_at)`, mt)
	if err != nil {
		return mailtmpl.MailTemplate{}, errors.Wrap(err, "inserting mail template")
	}
	return mt, nil
}

func (repo mailTemplateRepository) UpdateTemplate(ctx context.Context, mt mailtmpl.MailTemplate) (mailtmpl.MailTemplate, error) {
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE mail_template
		SET description = :description, subject = :subject, text_body = :text_body,
		    html_body = :html_body, updated_at = :updated_at
		WHERE name = :name`, mt)
	if err != nil {
		return mailtmpl.MailTemplate{}, errors.Wrap(err, "updating mail template")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return mailtmpl.MailTemplate{}, mailtmpl.ErrNotFound
	}
	return mt, nil
}

func (repo mailTemplateRepository) DeleteTemplate(ctx context.Context, name string) error {
	_, err := repo.db.ExecContext(ctx, "DELETE FROM mail_template WHERE name = $1", name)
	return errors.Wrap(err, "deleting mail template")
}
