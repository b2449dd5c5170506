package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/sadaka/core"
	"github.com/trezcool/sadaka/core/organization"
)

type organizationRepository struct {
	db *table[organization.Organization]
}

func NewOrganizationRepository(db *DB) organization.Repository {
	return &organizationRepository{db: db.organizations}
}

func (repo *organizationRepository) CreateOrganization(_ context.Context, org organization.Organization) (organization.Organization, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	org.ID = uuid.New().String()
	org.DocumentURLs = append([]string{}, org.DocumentURLs...)
	repo.db.rows[org.ID] = org
	return org, nil
}

func (repo *organizationRepository) QueryOrganizations(
	_ context.Context,
	filter organization.QueryFilter,
	ordering []core.DBOrdering,
) ([]organization.Organization, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	orgs := make([]organization.Organization, 0, len(repo.db.rows))
	for _, org := range repo.db.rows {
		if filter.Status != "" && org.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !containsFold(filter.Search, org.Name, org.Email, org.RegistrationNumber) {
			continue
		}
		orgs = append(orgs, org)
	}
	sortRows(orgs, append(append([]core.DBOrdering{}, ordering...), core.DBOrdering{Field: "id", Ascending: true}))
	return orgs, nil
}

func (repo *organizationRepository) GetOrganization(_ context.Context, id string) (organization.Organization, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if org, ok := repo.db.rows[id]; ok {
		return org, nil
	}
	return organization.Organization{}, organization.ErrNotFound
}

func (repo *organizationRepository) UpdateOrganization(
	_ context.Context,
	org organization.Organization,
	fromStatus string,
) (organization.Organization, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	current, ok := repo.db.rows[org.ID]
	if !ok {
		return organization.Organization{}, organization.ErrNotFound
	}
	if current.Status != fromStatus {
		return organization.Organization{}, organization.ErrInvalidTransition
	}
	org.DocumentURLs = append([]string{}, org.DocumentURLs...)
	repo.db.rows[org.ID] = org
	return org, nil
}

func (repo *organizationRepository) DeleteOrganization(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.rows, id)
	return nil
}
