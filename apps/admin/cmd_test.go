package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/sadaka/apps/api/echo"
	"github.com/trezcool/sadaka/client"
	"github.com/trezcool/sadaka/core"
	"github.com/trezcool/sadaka/core/content"
	"github.com/trezcool/sadaka/core/user"
	"github.com/trezcool/sadaka/testutil"
)

const testPassword = "Kivu#Lake2024"

var gifBytes = []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00\xff\xff\xff\x00\x00\x00!\xf9\x04\x01\x00\x00\x00\x00,\x00\x00\x00\x00\x01\x00\x01\x00\x00\x02\x02D\x01\x00;")

// setup returns a CLI backed by an in-memory app, whose remote commands reach that app's API.
func setup(t *testing.T) (*commandLine, *testutil.App, *bytes.Buffer) {
	color.NoColor = true

	app := testutil.NewApp(t)
	srv, err := echoapi.NewServer(app.Conf, app.Logger, echoapi.Deps{
		Validate:    app.Validate,
		Translator:  app.Translator,
		MailSvc:     app.MailSvc,
		UserSvc:     app.UserSvc,
		ContentSvc:  app.ContentSvc,
		OrgSvc:      app.OrgSvc,
		PaymentSvc:  app.PaymentSvc,
		MailTmplSvc: app.MailTmplSvc,
		MediaSvc:    app.MediaSvc,
	})
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	out := new(bytes.Buffer)
	cli := &commandLine{
		out:        out,
		validate:   app.Validate,
		translator: app.Translator,
		api:        client.New(ts.URL, "", ts.Client()),
		usrSvc:     app.UserSvc,
	}
	return cli, app, out
}

// login creates an editor & logs the CLI client in.
func login(t *testing.T, cli *commandLine, app *testutil.App) {
	testutil.CreateUser(t, app.UserRepo, "Joel", "joel", "joel@sadaka.test", testPassword, []string{user.RoleEditor}, true)
	_, err := cli.api.Login(context.Background(), "joel", testPassword)
	require.NoError(t, err)
}

func mockPassword(pwd string) {
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte(pwd), nil }
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_run(t *testing.T) {
	cli, _, _ := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "faq: no subcommand", args: []string{"faq"}, wantErr: errHelp},
		{name: "faq: unknown subcommand", args: []string{"faq", "lol"}, wantErr: errHelp},
		{name: "page: no subcommand", args: []string{"page"}, wantErr: errHelp},
		{name: "page show: no key", args: []string{"page", "show"}, wantErr: errHelp},
		{name: "upload: no file", args: []string{"upload"}, wantErr: errHelp},
		{name: "upload: page without field", args: []string{"upload", "-file", "a.png", "-page", "about"}, wantErr: errHelp},
		{name: "help flag", args: []string{"adduser", "-h"}, wantErr: errHelp},
		{name: "unknown flag", args: []string{"resetpassword", "-lol"}, wantErrStr: "flag provided but not defined: -lol"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
			case tt.wantErrStr != "":
				if err == nil || err.Error() != tt.wantErrStr {
					t.Errorf("cli.run() error = %v, wantErrStr %s", err, tt.wantErrStr)
				}
			}
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _, _ := setup(t)

	migrateFunc = func(db *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "donation", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_local_connectFails(t *testing.T) {
	cli, _, _ := setup(t)
	connErr := errors.New("connection refused")
	cli.connect = func() (func() error, error) { return nil, connErr }

	err := cli.run([]string{"admin", "migrate", "up"})
	assert.Equal(t, connErr, err)

	closed := false
	cli.connect = func() (func() error, error) {
		return func() error { closed = true; return nil }, nil
	}
	migrateFunc = func(db *sql.DB, command string, args ...string) error { return nil }
	require.NoError(t, cli.run([]string{"admin", "migrate", "status"}))
	assert.True(t, closed)
}

func Test_commandLine_addUser(t *testing.T) {
	cli, app, out := setup(t)
	ctx := context.Background()

	tests := []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "no email", args: []string{"adduser", "-username", "amani"}, extra: testPassword, wantErr: errHelp},
		{name: "no password", args: []string{"adduser", "-username", "amani", "-email", "amani@sadaka.test"}, wantErr: errHelp},
		{name: "weak password", args: []string{"adduser", "-username", "amani", "-email", "amani@sadaka.test"}, extra: "lol", wantErrStr: "password"},
		{name: "invalid email", args: []string{"adduser", "-username", "amani", "-email", "amani"}, extra: testPassword, wantErrStr: "email"},
		{name: "editor", args: []string{"adduser", "-username", "Amani", "-email", "amani@sadaka.test"}, extra: testPassword},
		{name: "duplicate", args: []string{"adduser", "-username", "amani", "-email", "other@sadaka.test"}, extra: testPassword, wantErrStr: "username"},
		{name: "admin", args: []string{"adduser", "-username", "neema", "-email", "neema@sadaka.test", "-name", "Neema M.", "-admin"}, extra: testPassword},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		pwd, _ := tt.extra.(string)
		mockPassword(pwd)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantErrStr != "":
				require.Error(t, err)
				assert.Contains(t, describeErr(err, cli.translator), tt.wantErrStr)
			default:
				assert.NoError(t, err)
			}
		})
	}

	editor, err := app.UserSvc.GetByUsernameOrEmail(ctx, "amani")
	require.NoError(t, err)
	assert.Equal(t, "Amani", editor.Name)
	assert.Equal(t, []string{user.RoleEditor}, editor.Roles)
	assert.True(t, editor.IsActive)
	assert.NoError(t, editor.CheckPassword(testPassword))

	admin, err := app.UserSvc.GetByUsernameOrEmail(ctx, "neema@sadaka.test")
	require.NoError(t, err)
	assert.Equal(t, "Neema M.", admin.Name)
	assert.True(t, admin.IsAdmin())

	assert.Contains(t, out.String(), "user amani created")
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, app, _ := setup(t)

	usr := testutil.CreateUser(t, app.UserRepo, "User", "awe", "awe@sadaka.test", "mdr", nil, true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "-username", usr.Username}, extra: extra{pwd: "lol"}},
		{name: "reset with email", args: []string{"resetpassword", "-username", usr.Email}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshedUsr, err := app.UserRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
				if err != nil {
					t.Fatalf("GetUser() failed, %v", err)
				}
				if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if errors.Cause(err) != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_login(t *testing.T) {
	cli, app, out := setup(t)
	testutil.CreateUser(t, app.UserRepo, "Joel", "joel", "joel@sadaka.test", testPassword, []string{user.RoleEditor}, true)

	mockPassword("wrong")
	err := cli.run([]string{"admin", "login", "-username", "joel"})
	assert.True(t, client.IsStatus(err, http.StatusBadRequest), err)

	mockPassword(testPassword)
	require.NoError(t, cli.run([]string{"admin", "login", "-username", "joel"}))
	require.NotEmpty(t, cli.api.Token())
	assert.Contains(t, out.String(), "logged in to "+cli.api.BaseURL())
	assert.Contains(t, out.String(), cli.api.Token())
}

func Test_commandLine_faq(t *testing.T) {
	cli, app, out := setup(t)
	ctx := context.Background()

	err := cli.run([]string{"admin", "faq", "list"})
	assert.True(t, client.IsStatus(err, http.StatusUnauthorized), err)

	login(t, cli, app)

	// add
	require.NoError(t, cli.run([]string{"admin", "faq", "add", "-question", "How are fees computed?", "-answer", "See **pricing**.", "-category", "Fees"}))
	assert.Contains(t, out.String(), "faq created")
	faqs, err := cli.api.FAQs().List(ctx)
	require.NoError(t, err)
	require.Len(t, faqs, 1)
	id := faqs[0].ID
	assert.Equal(t, "fees", faqs[0].Category)
	assert.False(t, faqs[0].IsPublished)

	assert.Equal(t, errHelp, cli.run([]string{"admin", "faq", "add", "-question", "No answer?"}))

	out.Reset()
	err = cli.run([]string{"admin", "faq", "add", "-question", strings.Repeat("?", 301), "-answer", "Too long."})
	require.Error(t, err)
	assert.Contains(t, out.String(), "could not create faq: question:")

	// list
	out.Reset()
	require.NoError(t, cli.run([]string{"admin", "faq", "list"}))
	assert.Contains(t, out.String(), id)
	assert.Contains(t, out.String(), "How are fees computed?")

	out.Reset()
	require.NoError(t, cli.run([]string{"admin", "faq", "list", "-search", "nothing like it"}))
	assert.NotContains(t, out.String(), id)

	// edit
	assert.Equal(t, errHelp, cli.run([]string{"admin", "faq", "edit", "-id", id}))
	assert.Equal(t, content.ErrFAQNotFound, cli.run([]string{"admin", "faq", "edit", "-id", "lol", "-publish"}))

	out.Reset()
	require.NoError(t, cli.run([]string{"admin", "faq", "edit", "-id", id, "-publish"}))
	assert.Contains(t, out.String(), "faq updated")
	f, err := cli.api.FAQs().Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, f.IsPublished)
	assert.Equal(t, "How are fees computed?", f.Question)

	require.NoError(t, cli.run([]string{"admin", "faq", "edit", "-id", id, "-answer", "It depends.", "-publish=false"}))
	f, err = cli.api.FAQs().Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, f.IsPublished)
	assert.Equal(t, "It depends.", f.Answer)

	// rm
	assert.Equal(t, content.ErrFAQNotFound, cli.run([]string{"admin", "faq", "rm", "-id", "lol"}))
	out.Reset()
	require.NoError(t, cli.run([]string{"admin", "faq", "rm", "-id", id}))
	assert.Contains(t, out.String(), "faq deleted")
	_, err = cli.api.FAQs().Get(ctx, id)
	assert.True(t, client.IsStatus(err, http.StatusNotFound), err)
}

func Test_commandLine_page(t *testing.T) {
	cli, app, out := setup(t)
	login(t, cli, app)

	require.NoError(t, cli.run([]string{"admin", "page", "set", "-key", "about", "-field", "title", "-value", "Who we are"}))
	require.NoError(t, cli.run([]string{"admin", "page", "set", "-key", "about", "-field", "body", "-value", "We fund local projects."}))
	assert.Contains(t, out.String(), "page about updated")

	err := cli.run([]string{"admin", "page", "set", "-key", "about", "-field", "image_url", "-value", "not a url"})
	assert.True(t, client.IsStatus(err, http.StatusBadRequest), err)
	err = cli.run([]string{"admin", "page", "set", "-key", "about", "-field", "lol", "-value", "x"})
	assert.Equal(t, errUnknownField, errors.Cause(err))
	err = cli.run([]string{"admin", "page", "set", "-key", "lol", "-field", "title", "-value", "x"})
	assert.True(t, client.IsStatus(err, http.StatusNotFound), err)

	out.Reset()
	require.NoError(t, cli.run([]string{"admin", "page", "show", "-key", "about"}))
	assert.Contains(t, out.String(), "Who we are")
	assert.Contains(t, out.String(), "We fund local projects.")
	assert.Contains(t, out.String(), "by joel")

	page, err := app.ContentSvc.Pages.Get(context.Background(), content.PageAbout)
	require.NoError(t, err)
	assert.Equal(t, "Who we are", page.Title)
}

func Test_commandLine_upload(t *testing.T) {
	cli, app, out := setup(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "team.gif")
	require.NoError(t, os.WriteFile(path, gifBytes, 0o600))

	err := cli.run([]string{"admin", "upload", "-file", path})
	assert.True(t, client.IsStatus(err, http.StatusUnauthorized), err)

	login(t, cli, app)
	cdn := "http://cdn.sadaka.test/image/upload/" + app.Conf.Cloudinary.Folder + "/"

	// plain upload
	require.NoError(t, cli.run([]string{"admin", "upload", "-file", path, "-alt", "Our team"}))
	assert.Contains(t, out.String(), cdn)
	assert.Contains(t, out.String(), "![Our team]("+cdn)

	// into a text field, replacing its placeholder
	_, err = cli.api.PutPage(ctx, content.PageAbout, content.Page{Title: "About", Body: "Meet us:\n\n[[upload:team]]\n\nThanks!"})
	require.NoError(t, err)
	out.Reset()
	require.NoError(t, cli.run([]string{"admin", "upload", "-file", path, "-page", "about", "-field", "body"}))
	assert.Contains(t, out.String(), "into about.body")
	page, err := cli.api.GetPage(ctx, content.PageAbout)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(page.Body, "Meet us:\n\n"+cdn), page.Body)
	assert.True(t, strings.HasSuffix(page.Body, "\n\nThanks!"), page.Body)
	assert.NotContains(t, page.Body, "[[upload:team]]")

	// no placeholder left: the snippet is appended
	out.Reset()
	require.NoError(t, cli.run([]string{"admin", "upload", "-file", path, "-page", "about", "-field", "body", "-alt", "Team"}))
	assert.Contains(t, out.String(), "appended it to about.body")
	page, err = cli.api.GetPage(ctx, content.PageAbout)
	require.NoError(t, err)
	assert.Contains(t, page.Body, "Thanks!\n\n![Team]("+cdn)

	// into a URL field
	require.NoError(t, cli.run([]string{"admin", "upload", "-file", path, "-page", "hero", "-field", "image_url", "-folder", "Hero"}))
	page, err = cli.api.GetPage(ctx, content.PageHero)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(page.ImageURL, cdn+"hero/"), page.ImageURL)

	err = cli.run([]string{"admin", "upload", "-file", path, "-page", "hero", "-field", "lol"})
	assert.Equal(t, errUnknownField, errors.Cause(err))

	err = cli.run([]string{"admin", "upload", "-file", filepath.Join(t.TempDir(), "missing.gif")})
	assert.True(t, os.IsNotExist(errors.Cause(err)), err)
}

func Test_describeErr(t *testing.T) {
	_, app, _ := setup(t)
	err := core.NewValidationError(errors.New("invalid"),
		core.FieldError{Field: "username", Error: "taken"},
		core.FieldError{Field: "email", Error: "invalid"},
	)
	assert.Equal(t, "email: invalid; username: taken", describeErr(errors.Wrap(err, "creating user"), app.Translator))
	assert.Equal(t, "upstream down", describeErr(&client.APIError{Status: 502, Message: "upstream down"}, app.Translator))
	assert.Equal(t, "boom", describeErr(errors.New("boom"), app.Translator))
}
