package sqlxrepos

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/sadaka/core"
	"github.com/trezcool/sadaka/core/content"
)

var baseColumns = []string{"id", "position", "is_published", "created_at", "updated_at"}

type collectionRepository[T any, PT content.Item[T]] struct {
	db       *sqlx.DB
	table    string
	columns  []string // all columns, base ones included
	search   []string
	notFound error
}

func newCollectionRepository[T any, PT content.Item[T]](
	db *sqlx.DB,
	table string,
	columns, search []string,
	notFound error,
) *collectionRepository[T, PT] {
	return &collectionRepository[T, PT]{
		db:       db,
		table:    table,
		columns:  append(append([]string{}, baseColumns...), columns...),
		search:   search,
		notFound: notFound,
	}
}

func NewFAQRepository(db *sqlx.DB) content.Repository[content.FAQ] {
	return newCollectionRepository[content.FAQ, *content.FAQ](db, "faq",
		[]string{"question", "answer", "category"},
		[]string{"question", "answer", "category"},
		content.ErrFAQNotFound)
}

func NewFeatureRepository(db *sqlx.DB) content.Repository[content.Feature] {
	return newCollectionRepository[content.Feature, *content.Feature](db, "feature",
		[]string{"title", "description", "image_url"},
		[]string{"title", "description"},
		content.ErrFeatureNotFound)
}

func NewGuideRepository(db *sqlx.DB) content.Repository[content.Guide] {
	return newCollectionRepository[content.Guide, *content.Guide](db, "guide",
		[]string{"title", "slug", "summary", "body", "video_url", "thumbnail_url"},
		[]string{"title", "summary", "body"},
		content.ErrGuideNotFound)
}

func NewTestimonialRepository(db *sqlx.DB) content.Repository[content.Testimonial] {
	return newCollectionRepository[content.Testimonial, *content.Testimonial](db, "testimonial",
		[]string{"author_name", "author_title", "quote", "avatar_url", "rating"},
		[]string{"author_name", "author_title", "quote"},
		content.ErrTestimonialNotFound)
}

func (repo *collectionRepository[T, PT]) List(ctx context.Context, filter content.ListFilter, ordering []core.DBOrdering) ([]T, error) {
	b := psql.Select(repo.columns...).From(repo.table)
	if filter.Search != "" {
		b = b.Where(searchAny(filter.Search, repo.search...))
	}
	if filter.Published != nil {
		b = b.Where(sq.Eq{"is_published": *filter.Published})
	}
	if filter.Slug != "" {
		b = b.Where(sq.Eq{"slug": filter.Slug})
	}
	query, args, err := orderBy(b, ordering).ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}

	var items []T
	if err = sqlx.SelectContext(ctx, repo.db, &items, query, args...); err != nil {
		return nil, errors.Wrapf(err, "listing %s", repo.table)
	}
	return items, nil
}

func (repo *collectionRepository[T, PT]) Get(ctx context.Context, id string) (T, error) {
	var item T
	if !validID(id) {
		return item, repo.notFound
	}
	query, args, err := psql.Select(repo.columns...).From(repo.table).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return item, errors.Wrap(err, "building query")
	}
	if err = sqlx.GetContext(ctx, repo.db, &item, query, args...); err != nil {
		return item, trapNoRowsErr(err, repo.notFound, "getting "+repo.table)
	}
	return item, nil
}

func (repo *collectionRepository[T, PT]) NextPosition(ctx context.Context) (int, error) {
	var next int
	err := repo.db.GetContext(ctx, &next, "SELECT COALESCE(MAX(position) + 1, 0) FROM "+repo.table)
	return next, errors.Wrapf(err, "getting next %s position", repo.table)
}

func (repo *collectionRepository[T, PT]) Create(ctx context.Context, item T) (T, error) {
	PT(&item).Common().ID = uuid.New().String()
	query := "INSERT INTO " + repo.table + " (" + strings.Join(repo.columns, ", ") + ") VALUES (:" + strings.Join(repo.columns, ", :") + ")"
	if _, err := repo.db.NamedExecContext(ctx, query, item); err != nil {
		var zero T
		return zero, errors.Wrapf(err, "inserting %s", repo.table)
	}
	return item, nil
}

func (repo *collectionRepository[T, PT]) Update(ctx context.Context, item T) (T, error) {
	var zero T
	if !validID(PT(&item).Common().ID) {
		return zero, repo.notFound
	}
	sets := make([]string, 0, len(repo.columns))
	for _, col := range repo.columns[1:] { // skip id
		sets = append(sets, col+" = :"+col)
	}
	query := "UPDATE " + repo.table + " SET " + strings.Join(sets, ", ") + " WHERE id = :id"
	res, err := repo.db.NamedExecContext(ctx, query, item)
	if err != nil {
		return zero, errors.Wrapf(err, "updating %s", repo.table)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return zero, repo.notFound
	}
	return item, nil
}

func (repo *collectionRepository[T, PT]) SetPositions(ctx context.Context, positions map[string]int) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PreparexContext(ctx, "UPDATE "+repo.table+" SET position = $1 WHERE id = $2")
	if err != nil {
		return errors.Wrap(err, "preparing statement")
	}
	defer func() { _ = stmt.Close() }()

	for id, pos := range positions {
		if _, err = stmt.ExecContext(ctx, pos, id); err != nil {
			return errors.Wrapf(err, "setting %s position", repo.table)
		}
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

func (repo *collectionRepository[T, PT]) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return repo.notFound
	}
	query, args, err := psql.Delete(repo.table).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	_, err = repo.db.ExecContext(ctx, query, args...)
	return errors.Wrapf(err, "deleting %s", repo.table)
}
