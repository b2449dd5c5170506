package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/sadaka/core/mailtmpl"
	"github.com/trezcool/sadaka/core/user"
	"github.com/trezcool/sadaka/testutil"
)

func Test_mailTemplateApi(t *testing.T) {
	srv, app := setup(t)
	admin := testutil.CreateUser(t, app.UserRepo, "Admin", "admin", "admin@sadaka.test", "", []string{user.RoleAdmin}, true)
	editor := testutil.CreateUser(t, app.UserRepo, "Joel", "joel", "joel@sadaka.test", "", []string{user.RoleEditor}, true)
	token := getToken(t, srv, admin)

	t.Run("list", func(t *testing.T) {
		rec := httpTest{path: "/v1/mail-templates", token: token}.run(t, srv)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var mts []mailtmpl.MailTemplate
		unmarshal(t, rec, &mts)
		assert.Len(t, mts, len(mailtmpl.Defaults()))

		tt := httpTest{path: "/v1/mail-templates", token: getToken(t, srv, editor), wantCode: http.StatusForbidden}
		checkCodeAndData(t, tt, tt.run(t, srv))

		gone := testutil.CreateUser(t, app.UserRepo, "Gone", "gone", "gone@sadaka.test", "", []string{user.RoleAdmin}, false)
		tt = httpTest{
			path: "/v1/mail-templates", token: getToken(t, srv, gone),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		}
		checkCodeAndData(t, tt, tt.run(t, srv))
	})

	t.Run("create", func(t *testing.T) {
		tests := []httpTest{
			{
				name: "bad name", method: http.MethodPost, path: "/v1/mail-templates",
				body:     []byte(`{"name":"thank-you","subject":"Thanks","text_body":"Thanks"}`),
				wantCode: http.StatusBadRequest, wantData: []byte(`{"name":"only lowercase letters, digits and underscores are allowed"}`),
			},
			{
				name: "duplicate", method: http.MethodPost, path: "/v1/mail-templates",
				body:     []byte(`{"name":"welcome_admin","subject":"Hi","text_body":"Hi"}`),
				wantCode: http.StatusBadRequest, wantData: []byte(`{"name":"a mail template with this name already exists"}`),
			},
			{
				name: "ok", method: http.MethodPost, path: "/v1/mail-templates",
				body:     []byte(`{"name":"Thank_You","subject":"Thank you {{.Data.Name}}","text_body":"Your gift of {{.Data.Amount}} was received."}`),
				wantCode: http.StatusCreated,
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				tt.token = token
				checkCodeAndData(t, tt, tt.run(t, srv))
			})
		}

		tt := httpTest{
			method: http.MethodPost, path: "/v1/mail-templates", token: token,
			body:     []byte(`{"name":"broken","subject":"Hi {{.Data.Name","text_body":"Hi"}`),
			wantCode: http.StatusBadRequest,
		}
		rec := tt.run(t, srv)
		checkCodeAndData(t, tt, rec)
		var fields map[string]string
		unmarshal(t, rec, &fields)
		assert.Contains(t, fields, "subject")
	})

	t.Run("preview", func(t *testing.T) {
		rec := httpTest{
			method: http.MethodPost, path: "/v1/mail-templates/thank_you/preview", token: token,
			body: []byte(`{"Name":"Grace","Amount":"$25"}`),
		}.run(t, srv)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var r mailtmpl.Rendered
		unmarshal(t, rec, &r)
		assert.Equal(t, "Thank you Grace", r.Subject)
		assert.Equal(t, "Your gift of $25 was received.", r.Text)
		assert.Empty(t, r.HTML)

		tests := []httpTest{
			{
				name: "invalid json", method: http.MethodPost, path: "/v1/mail-templates/thank_you/preview", body: []byte(`[1, 2`),
				wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "invalid JSON object"}),
			},
			{
				name: "missing data", method: http.MethodPost, path: "/v1/mail-templates/thank_you/preview", body: []byte(`{}`),
				wantCode: http.StatusBadRequest,
			},
			{
				name: "unknown", method: http.MethodPost, path: "/v1/mail-templates/nope/preview", body: []byte(`{}`),
				wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "mail template not found"}),
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				tt.token = token
				checkCodeAndData(t, tt, tt.run(t, srv))
			})
		}
	})

	t.Run("update & delete", func(t *testing.T) {
		rec := httpTest{
			method: http.MethodPut, path: "/v1/mail-templates/thank_you", token: token,
			body: []byte(`{"name":"thank_you","subject":"Merci {{.Data.Name}}","text_body":"Merci !","html_body":"<p>Merci !</p>"}`),
		}.run(t, srv)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var mt mailtmpl.MailTemplate
		unmarshal(t, rec, &mt)
		assert.Equal(t, "Merci {{.Data.Name}}", mt.Subject)

		tests := []httpTest{
			{name: "ok", method: http.MethodDelete, path: "/v1/mail-templates/thank_you", wantCode: http.StatusNoContent},
			{name: "gone", path: "/v1/mail-templates/thank_you", wantCode: http.StatusNotFound},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				tt.token = token
				checkCodeAndData(t, tt, tt.run(t, srv))
			})
		}
	})
}
