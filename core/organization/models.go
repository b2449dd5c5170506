package organization

import (
	"strings"
	"time"

	"github.com/trezcool/sadaka/core"
)

// Statuses
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

var (
	Statuses = []string{StatusPending, StatusApproved, StatusRejected}

	// transitions lists the statuses reachable from each status.
	transitions = map[string][]string{
		StatusPending:  {StatusApproved, StatusRejected},
		StatusRejected: {StatusPending},
	}
)

// CanTransition reports whether an organization may go from status from to status to.
func CanTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Organization is a charity or association asking to collect donations on the platform.
type Organization struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone"`
	Country            string    `json:"country"`
	RegistrationNumber string    `json:"registration_number"`
	Website            string    `json:"website"`
	Description        string    `json:"description"`
	DocumentURLs       []string  `json:"document_urls"`
	Status             string    `json:"status"`
	RejectionReason    string    `json:"rejection_reason"`
	ReviewedBy         string    `json:"reviewed_by"`
	ReviewedAt         time.Time `json:"reviewed_at"` // UTC, zero until reviewed
	CreatedAt          time.Time `json:"created_at"`  // UTC
	UpdatedAt          time.Time `json:"updated_at"`  // UTC
}

// Application contains the information an organization submits to be verified.
type Application struct {
	Name               string   `json:"name" validate:"required,max=200"`
	Email              string   `json:"email" validate:"required,email"`
	Phone              string   `json:"phone" validate:"omitempty,max=30"`
	Country            string   `json:"country" validate:"required,len=2,alpha"`
	RegistrationNumber string   `json:"registration_number" validate:"required,max=100"`
	Website            string   `json:"website" validate:"omitempty,url"`
	Description        string   `json:"description" validate:"max=2000"`
	DocumentURLs       []string `json:"document_urls" validate:"max=10,dive,url"`
}

func (a *Application) clean() {
	a.Name = core.CleanString(a.Name)
	a.Email = core.CleanString(a.Email, true /* lower */)
	a.Phone = core.CleanString(a.Phone)
	a.Country = strings.ToUpper(core.CleanString(a.Country))
	a.RegistrationNumber = core.CleanString(a.RegistrationNumber)
	a.Website = core.CleanString(a.Website)
	a.Description = core.CleanString(a.Description)
	urls := make([]string, 0, len(a.DocumentURLs))
	for _, u := range a.DocumentURLs {
		if u = core.CleanString(u); u != "" {
			urls = append(urls, u)
		}
	}
	a.DocumentURLs = urls
}

// Rejection is the reviewer's explanation of a rejected application.
type Rejection struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

type QueryFilter struct {
	Status string `query:"status" validate:"omitempty,oneof=pending approved rejected"`
	Search string `query:"search"`
}

func (qf *QueryFilter) Clean() {
	qf.Status = core.CleanString(qf.Status, true /* lower */)
	qf.Search = core.CleanString(qf.Search)
}

var Orderable = core.Orderable{
	"name":        "name",
	"country":     "country",
	"status":      "status",
	"created_at":  "created_at",
	"reviewed_at": "reviewed_at",
}
