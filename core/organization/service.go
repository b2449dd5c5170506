// Package organization handles the verification of the organizations collecting donations.
package organization

import (
	"context"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/sadaka/core"
	"github.com/trezcool/sadaka/core/mailtmpl"
)

var (
	ErrNotFound          = core.NewNotFoundError("organization")
	ErrInvalidTransition = core.NewConflictError(errors.New("invalid status transition"))
)

type Repository interface {
	CreateOrganization(ctx context.Context, org Organization) (Organization, error)
	// QueryOrganizations applies AND operation on available QueryFilter fields.
	// QueryFilter.Search does a case-insensitive match on one of Name, Email or RegistrationNumber.
	QueryOrganizations(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]Organization, error)
	GetOrganization(ctx context.Context, id string) (Organization, error)
	// UpdateOrganization saves org only if its stored status still is fromStatus,
	// ErrInvalidTransition is returned otherwise.
	UpdateOrganization(ctx context.Context, org Organization, fromStatus string) (Organization, error)
	DeleteOrganization(ctx context.Context, id string) error
}

// Composer renders stored mail templates.
type Composer interface {
	Compose(ctx context.Context, name string, to []mail.Address, data interface{}) (*core.EmailMessage, error)
}

type Service struct {
	repo     Repository
	validate *validator.Validate
	composer Composer
	mailSvc  core.EmailService
	logger   core.Logger
}

func NewService(
	repo Repository,
	validate *validator.Validate,
	composer Composer,
	mailSvc core.EmailService,
	logger core.Logger,
) *Service {
	return &Service{
		repo:     repo,
		validate: validate,
		composer: composer,
		mailSvc:  mailSvc,
		logger:   logger,
	}
}

// Submit registers a new application, pending review.
func (svc *Service) Submit(ctx context.Context, app Application) (Organization, error) {
	app.clean()
	if err := svc.validate.Struct(app); err != nil {
		return Organization{}, err
	}
	now := time.Now().UTC()
	org := Organization{
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	org.apply(app)
	return svc.repo.CreateOrganization(ctx, org)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]Organization, error) {
	filter.Clean()
	if err := svc.validate.Struct(filter); err != nil {
		return nil, err
	}
	orgs, err := svc.repo.QueryOrganizations(ctx, filter, Orderable.Clean(ordering, core.DBOrdering{Field: "created_at"}))
	if err != nil {
		return nil, errors.Wrap(err, "querying organizations")
	}
	if orgs == nil {
		orgs = []Organization{}
	}
	return orgs, nil
}

func (svc *Service) Get(ctx context.Context, id string) (Organization, error) {
	return svc.repo.GetOrganization(ctx, id)
}

// Approve verifies a pending organization & notifies it.
func (svc *Service) Approve(ctx context.Context, id, reviewer string) (Organization, error) {
	org, err := svc.transition(ctx, id, StatusApproved, func(org *Organization) {
		org.RejectionReason = ""
		org.ReviewedBy = reviewer
		org.ReviewedAt = time.Now().UTC()
	})
	if err != nil {
		return Organization{}, err
	}
	svc.notify(ctx, mailtmpl.OrganizationApproved, org)
	return org, nil
}

// Reject refuses a pending organization with a reason & notifies it.
func (svc *Service) Reject(ctx context.Context, id, reviewer string, rej Rejection) (Organization, error) {
	rej.Reason = core.CleanString(rej.Reason)
	if err := svc.validate.Struct(rej); err != nil {
		return Organization{}, err
	}
	org, err := svc.transition(ctx, id, StatusRejected, func(org *Organization) {
		org.RejectionReason = rej.Reason
		org.ReviewedBy = reviewer
		org.ReviewedAt = time.Now().UTC()
	})
	if err != nil {
		return Organization{}, err
	}
	svc.notify(ctx, mailtmpl.OrganizationRejected, org)
	return org, nil
}

// Resubmit puts a rejected organization back in review with updated information.
func (svc *Service) Resubmit(ctx context.Context, id string, app Application) (Organization, error) {
	app.clean()
	if err := svc.validate.Struct(app); err != nil {
		return Organization{}, err
	}
	return svc.transition(ctx, id, StatusPending, func(org *Organization) {
		org.apply(app)
	})
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	if _, err := svc.repo.GetOrganization(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteOrganization(ctx, id)
}

func (svc *Service) transition(ctx context.Context, id, to string, update func(org *Organization)) (Organization, error) {
	org, err := svc.repo.GetOrganization(ctx, id)
	if err != nil {
		return Organization{}, err
	}
	from := org.Status
	if !CanTransition(from, to) {
		return Organization{}, ErrInvalidTransition
	}
	update(&org)
	org.Status = to
	org.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateOrganization(ctx, org, from)
}

// notify emails the review outcome to the organization. Failures are logged, the review stands.
func (svc *Service) notify(ctx context.Context, tmpl string, org Organization) {
	msg, err := svc.composer.Compose(ctx, tmpl, []mail.Address{{Name: org.Name, Address: org.Email}}, map[string]interface{}{
		"Organization": org.Name,
		"Reason":       org.RejectionReason,
	})
	if err != nil {
		svc.logger.Error("organization.Service.notify: composing "+tmpl, err)
		return
	}
	svc.mailSvc.SendMessages(msg)
}

func (org *Organization) apply(app Application) {
	org.Name = app.Name
	org.Email = app.Email
	org.Phone = app.Phone
	org.Country = app.Country
	org.RegistrationNumber = app.RegistrationNumber
	org.Website = app.Website
	org.Description = app.Description
	org.DocumentURLs = app.DocumentURLs
}
