package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/sadaka/core"
	"github.com/trezcool/sadaka/core/organization"
)

var organizationColumns = []string{
	"id", "name", "email", "phone", "country", "registration_number", "website", "description",
	"document_urls", "status", "rejection_reason", "reviewed_by", "reviewed_at", "created_at", "updated_at",
}

type organizationRow struct {
	ID                 string         `db:"id"`
	Name               string         `db:"name"`
	Email              string         `db:"email"`
	Phone              string         `db:"phone"`
	Country            string         `db:"country"`
	RegistrationNumber string         `db:"registration_number"`
	Website            string         `db:"website"`
	Description        string         `db:"description"`
	DocumentURLs       pq.StringArray `db:"document_urls"`
	Status             string         `db:"status"`
	RejectionReason    string         `db:"rejection_reason"`
	ReviewedBy         null.String    `db:"reviewed_by"`
	ReviewedAt         null.Time      `db:"reviewed_at"`
	CreatedAt          null.Time      `db:"created_at"`
	UpdatedAt          null.Time      `db:"updated_at"`
}

func toOrganizationRow(org organization.Organization) organizationRow {
	urls := org.DocumentURLs
	if urls == nil {
		urls = []string{}
	}
	return organizationRow{
		ID:                 org.ID,
		Name:               org.Name,
		Email:              org.Email,
		Phone:              org.Phone,
		Country:            org.Country,
		RegistrationNumber: org.RegistrationNumber,
		Website:            org.Website,
		Description:        org.Description,
		DocumentURLs:       urls,
		Status:             org.Status,
		RejectionReason:    org.RejectionReason,
		ReviewedBy:         null.NewString(org.ReviewedBy, org.ReviewedBy != ""),
		ReviewedAt:         null.NewTime(org.ReviewedAt.UTC(), !org.ReviewedAt.IsZero()),
		CreatedAt:          null.NewTime(org.CreatedAt.UTC(), !org.CreatedAt.IsZero()),
		UpdatedAt:          null.NewTime(org.UpdatedAt.UTC(), !org.UpdatedAt.IsZero()),
	}
}

func (row organizationRow) toOrganization() organization.Organization {
	return organization.Organization{
		ID:                 row.ID,
		Name:               row.Name,
		Email:              row.Email,
		Phone:              row.Phone,
		Country:            row.Country,
		RegistrationNumber: row.RegistrationNumber,
		Website:            row.Website,
		Description:        row.Description,
		DocumentURLs:       []string(row.DocumentURLs),
		Status:             row.Status,
		RejectionReason:    row.RejectionReason,
		ReviewedBy:         row.ReviewedBy.String,
		ReviewedAt:         row.ReviewedAt.Time,
		CreatedAt:          row.CreatedAt.Time,
		UpdatedAt:          row.UpdatedAt.Time,
	}
}

type organizationRepository struct {
	db *sqlx.DB
}

var _ organization.Repository = (*organizationRepository)(nil)

func NewOrganizationRepository(db *sqlx.DB) *organizationRepository {
	return &organizationRepository{db: db}
}

func (repo organizationRepository) CreateOrganization(ctx context.Context, org organization.Organization) (organization.Organization, error) {
	org.ID = uuid.New().String()
	query, args, err := psql.Insert("organization").
		SetMap(rowMap(organizationColumns, toOrganizationRow(org))).
		ToSql()
	if err != nil {
		return organization.Organization{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return organization.Organization{}, errors.Wrap(err, "inserting organization")
	}
	return org, nil
}

func (repo organizationRepository) QueryOrganizations(
	ctx context.Context,
	filter organization.QueryFilter,
	ordering []core.DBOrdering,
) ([]organization.Organization, error) {
	b := psql.Select(organizationColumns...).From("organization")
	if filter.Status != "" {
		b = b.Where(sq.Eq{"status": filter.Status})
	}
	if filter.Search != "" {
		b = b.Where(searchAny(filter.Search, "name", "email", "registration_number"))
	}
	query, args, err := orderBy(b, ordering).ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}

	var rows []organizationRow
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying organizations")
	}
	orgs := make([]organization.Organization, 0, len(rows))
	for _, row := range rows {
		orgs = append(orgs, row.toOrganization())
	}
	return orgs, nil
}

func (repo organizationRepository) GetOrganization(ctx context.Context, id string) (organization.Organization, error) {
	if !validID(id) {
		return organization.Organization{}, organization.ErrNotFound
	}
	query, args, err := psql.Select(organizationColumns...).From("organization").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return organization.Organization{}, errors.Wrap(err, "building query")
	}
	var row organizationRow
	if err = repo.db.GetContext(ctx, &row, query, args...); err != nil {
		return organization.Organization{}, trapNoRowsErr(err, organization.ErrNotFound, "getting organization")
	}
	return row.toOrganization(), nil
}

func (repo organizationRepository) UpdateOrganization(
	ctx context.Context,
	org organization.Organization,
	fromStatus string,
) (organization.Organization, error) {
	if !validID(org.ID) {
		return organization.Organization{}, organization.ErrNotFound
	}
	values := rowMap(organizationColumns[1:], toOrganizationRow(org))
	query, args, err := psql.Update("organization").
		SetMap(values).
		Where(sq.Eq{"id": org.ID, "status": fromStatus}).
		ToSql()
	if err != nil {
		return organization.Organization{}, errors.Wrap(err, "building query")
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return organization.Organization{}, errors.Wrap(err, "updating organization")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// gone, or reviewed concurrently
		if _, err = repo.GetOrganization(ctx, org.ID); err != nil {
			return organization.Organization{}, err
		}
		return organization.Organization{}, organization.ErrInvalidTransition
	}
	return org, nil
}

func (repo organizationRepository) DeleteOrganization(ctx context.Context, id string) error {
	if !validID(id) {
		return organization.ErrNotFound
	}
	_, err := repo.db.ExecContext(ctx, "DELETE FROM organization WHERE id = $1", id)
	return errors.Wrap(err, "deleting organization")
}
