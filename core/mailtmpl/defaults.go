package mailtmpl

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/sadaka/core"
)

// Defaults are the templates the application sends. The SQL database is seeded with them by migration.
func Defaults() []MailTemplate {
	return []MailTemplate{
		{
			Name:        OrganizationApproved,
			Description: "Sent to an organization once its verification is approved.",
			Subject:     "{{.Data.Organization}} is now verified",
			TextBody: "Hello {{.Data.Organization}},\n\n" +
				"Good news: your organization has been verified. You can now start collecting donations.\n\n" +
				"{{.FrontendBaseURL}}",
			HTMLBody: "<p>Hello {{.Data.Organization}},</p>\n" +
				"<p>Good news: your organization has been verified. You can now start collecting donations.</p>\n" +
				`<p><a href="{{.FrontendBaseURL}}">{{.FrontendBaseURL}}</a></p>`,
		},
		{
			Name:        OrganizationRejected,
			Description: "Sent to an organization whose verification is rejected.",
			Subject:     "About the verification of {{.Data.Organization}}",
			TextBody: "Hello {{.Data.Organization}},\n\n" +
				"We could not verify your organization for the following reason:\n\n" +
				"{{.Data.Reason}}\n\n" +
				"You may update your application and submit it again.",
			HTMLBody: "<p>Hello {{.Data.Organization}},</p>\n" +
				"<p>We could not verify your organization for the following reason:</p>\n" +
				"<blockquote>{{.Data.Reason}}</blockquote>\n" +
				"<p>You may update your application and submit it again.</p>",
		},
		{
			Name:        WelcomeAdmin,
			Description: "Sent to a new dashboard user.",
			Subject:     "Welcome to the dashboard",
			TextBody: "Hello {{.Data.Name}},\n\n" +
				"An account has been created for you on the dashboard: {{.FrontendBaseURL}}/admin",
			HTMLBody: "<p>Hello {{.Data.Name}},</p>\n" +
				`<p>An account has been created for you on the <a href="{{.FrontendBaseURL}}/admin">dashboard</a>.</p>`,
		},
	}
}

// EnsureDefaults creates the default templates missing from the repository.
func (svc *Service) EnsureDefaults(ctx context.Context) error {
	for _, mt := range Defaults() {
		_, err := svc.repo.GetTemplate(ctx, mt.Name)
		if err == nil {
			continue
		}
		if !core.IsNotFound(err) {
			return errors.Wrapf(err, "getting mail template %q", mt.Name)
		}
		mt.UpdatedAt = time.Now().UTC()
		if _, err = svc.repo.CreateTemplate(ctx, mt); err != nil {
			return errors.Wrapf(err, "creating mail template %q", mt.Name)
		}
	}
	return nil
}
