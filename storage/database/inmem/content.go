package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/sadaka/core"
	"github.com/trezcool/sadaka/core/content"
)

type collectionRepository[T any, PT content.Item[T]] struct {
	db       *table[T]
	notFound error
}

func NewFAQRepository(db *DB) content.Repository[content.FAQ] {
	return &collectionRepository[content.FAQ, *content.FAQ]{db: db.faqs, notFound: content.ErrFAQNotFound}
}

func NewFeatureRepository(db *DB) content.Repository[content.Feature] {
	return &collectionRepository[content.Feature, *content.Feature]{db: db.features, notFound: content.ErrFeatureNotFound}
}

func NewGuideRepository(db *DB) content.Repository[content.Guide] {
	return &collectionRepository[content.Guide, *content.Guide]{db: db.guides, notFound: content.ErrGuideNotFound}
}

func NewTestimonialRepository(db *DB) content.Repository[content.Testimonial] {
	return &collectionRepository[content.Testimonial, *content.Testimonial]{db: db.testimonials, notFound: content.ErrTestimonialNotFound}
}

func (repo *collectionRepository[T, PT]) List(_ context.Context, filter content.ListFilter, ordering []core.DBOrdering) ([]T, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	items := make([]T, 0, len(repo.db.rows))
	for _, item := range repo.db.rows {
		item := item
		pt := PT(&item)
		if filter.Published != nil && pt.Common().IsPublished != *filter.Published {
			continue
		}
		if filter.Search != "" && !containsFold(filter.Search, pt.SearchText()...) {
			continue
		}
		if filter.Slug != "" {
			if g, ok := any(item).(content.Guide); !ok || g.Slug != filter.Slug {
				continue
			}
		}
		items = append(items, item)
	}
	// IDs break ties so that listing is deterministic
	sortRows(items, append(append([]core.DBOrdering{}, ordering...), core.DBOrdering{Field: "id", Ascending: true}))
	return items, nil
}

func (repo *collectionRepository[T, PT]) Get(_ context.Context, id string) (T, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if item, ok := repo.db.rows[id]; ok {
		return item, nil
	}
	var zero T
	return zero, repo.notFound
}

func (repo *collectionRepository[T, PT]) NextPosition(context.Context) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	next := 0
	for _, item := range repo.db.rows {
		if pos := PT(&item).Common().Position; pos >= next {
			next = pos + 1
		}
	}
	return next, nil
}

func (repo *collectionRepository[T, PT]) Create(_ context.Context, item T) (T, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	id := uuid.New().String()
	PT(&item).Common().ID = id
	repo.db.rows[id] = item
	return item, nil
}

func (repo *collectionRepository[T, PT]) Update(_ context.Context, item T) (T, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	id := PT(&item).Common().ID
	if _, ok := repo.db.rows[id]; !ok {
		var zero T
		return zero, repo.notFound
	}
	repo.db.rows[id] = item
	return item, nil
}

func (repo *collectionRepository[T, PT]) SetPositions(_ context.Context, positions map[string]int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for id, pos := range positions {
		if item, ok := repo.db.rows[id]; ok {
			PT(&item).Common().Position = pos
			repo.db.rows[id] = item
		}
	}
	return nil
}

func (repo *collectionRepository[T, PT]) Delete(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.rows, id)
	return nil
}
