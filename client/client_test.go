package client_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/sadaka/apps/api/echo"
	"github.com/trezcool/sadaka/client"
	"github.com/trezcool/sadaka/core/content"
	"github.com/trezcool/sadaka/core/editor"
	"github.com/trezcool/sadaka/core/user"
	"github.com/trezcool/sadaka/testutil"
)

const testPassword = "Kivu#Lake2024"

var gifBytes = []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00\xff\xff\xff\x00\x00\x00!\xf9\x04\x01\x00\x00\x00\x00,\x00\x00\x00\x00\x01\x00\x01\x00\x00\x02\x02D\x01\x00;")

// setup serves the API backed by an in-memory app & returns a client logged in as an editor.
func setup(t *testing.T) (*client.Client, *testutil.App) {
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

	testutil.CreateUser(t, app.UserRepo, "Joel", "joel", "joel@sadaka.test", testPassword, []string{user.RoleEditor}, true)
	c := client.New(ts.URL+"/", "", ts.Client())
	_, err = c.Login(context.Background(), "joel", testPassword)
	require.NoError(t, err)
	require.NotEmpty(t, c.Token())
	return c, app
}

func TestClient_Login(t *testing.T) {
	c, _ := setup(t)
	anon := client.New(c.BaseURL(), "", nil)

	_, err := anon.Login(context.Background(), "joel", "wrong")
	require.Error(t, err)
	assert.True(t, client.IsStatus(err, http.StatusBadRequest), err)
	assert.Empty(t, anon.Token())

	_, err = anon.FAQs().List(context.Background())
	assert.True(t, client.IsStatus(err, http.StatusUnauthorized), err)
}

func TestClient_pages(t *testing.T) {
	c, _ := setup(t)
	ctx := context.Background()

	page, err := c.PutPage(ctx, content.PageAbout, content.Page{Title: "Who we are", Body: "Hello."})
	require.NoError(t, err)
	assert.Equal(t, "joel", page.UpdatedBy)

	subtitle := "Since 2019"
	page, err = c.PatchPage(ctx, content.PageAbout, content.PagePatch{Subtitle: &subtitle})
	require.NoError(t, err)
	assert.Equal(t, "Who we are", page.Title)
	assert.Equal(t, subtitle, page.Subtitle)

	got, err := c.GetPage(ctx, content.PageAbout)
	require.NoError(t, err)
	assert.Equal(t, page.Subtitle, got.Subtitle)

	_, err = c.GetPage(ctx, "contact")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "page not found", apiErr.Message)
}

func TestCollection(t *testing.T) {
	c, _ := setup(t)
	ctx := context.Background()
	faqs := c.FAQs()

	_, err := faqs.Create(ctx, content.FAQ{Answer: "orphan"})
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, map[string]string{"question": "this field is required"}, apiErr.Fields)

	first, err := faqs.Create(ctx, content.FAQ{Question: "Is it free?", Answer: "Yes."})
	require.NoError(t, err)
	second, err := faqs.Create(ctx, content.FAQ{Question: "Can I donate anonymously?", Answer: "Yes."})
	require.NoError(t, err)

	first.IsPublished = true
	first, err = faqs.Update(ctx, first)
	require.NoError(t, err)
	assert.True(t, first.IsPublished)

	found, err := faqs.Search(ctx, "anonymously")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, second.ID, found[0].ID)

	items, err := faqs.Reorder(ctx, []string{second.ID})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, []string{second.ID, first.ID}, []string{items[0].ID, items[1].ID})

	require.NoError(t, faqs.Delete(ctx, second.ID))
	_, err = faqs.Get(ctx, second.ID)
	assert.True(t, client.IsStatus(err, http.StatusNotFound), err)
}

func TestCollection_Editor(t *testing.T) {
	c, _ := setup(t)
	ctx := context.Background()

	var (
		mu      sync.Mutex
		notices []editor.Notice
	)
	ed := c.Testimonials().Editor(editor.NotifierFunc(func(n editor.Notice) {
		mu.Lock()
		notices = append(notices, n)
		mu.Unlock()
	}))
	require.NoError(t, ed.Load(ctx))
	assert.Empty(t, ed.Items())

	created, err := ed.Create(ctx, content.Testimonial{AuthorName: " Grace ", Quote: "Fast & simple"})
	require.NoError(t, err)
	assert.Equal(t, "Grace", created.AuthorName, "reconciled with the server's value")
	assert.Equal(t, 5, created.Rating)

	bad := created
	bad.Rating = 9
	_, err = ed.Update(ctx, bad)
	require.Error(t, err)
	got, ok := ed.Get(created.ID)
	require.True(t, ok)
	assert.Equal(t, 5, got.Rating, "rolled back")

	require.NoError(t, ed.Delete(ctx, created.ID))
	assert.Empty(t, ed.Items())

	mu.Lock()
	defer mu.Unlock()
	levels := make([]editor.Level, 0, len(notices))
	for _, n := range notices {
		levels = append(levels, n.Level)
	}
	assert.Equal(t, []editor.Level{editor.Success, editor.Failure, editor.Success}, levels)
}

func TestClient_Upload(t *testing.T) {
	c, app := setup(t)
	ctx := context.Background()

	text := "Our school: [[upload:kids]]"
	res, err := c.Upload(ctx, client.UploadInput{
		Filename: "kids.gif",
		Content:  bytes.NewReader(gifBytes),
		Folder:   "pages",
		Text:     &text,
	})
	require.NoError(t, err)
	assert.True(t, res.Replaced)
	require.NotNil(t, res.Text)
	assert.Equal(t, "Our school: "+res.Asset.URL, *res.Text)
	_, stored := app.Uploader.File(res.Asset.PublicID)
	assert.True(t, stored)

	_, err = c.Upload(ctx, client.UploadInput{Filename: "notes.txt", Content: strings.NewReader("just text")})
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "only images and videos can be uploaded", apiErr.Fields["file"])
}

func TestClient_Quote(t *testing.T) {
	c, _ := setup(t)

	q, err := c.Quote(context.Background(), 10000)
	require.NoError(t, err)
	assert.Equal(t, int64(9180), q.Net)

	_, err = c.Quote(context.Background(), 1)
	assert.True(t, client.IsStatus(err, http.StatusBadRequest), err)
}

func TestAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := client.New(ts.URL, "token", nil).FAQs().List(context.Background())
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream down", apiErr.Message)
	assert.Equal(t, "502: upstream down", apiErr.Error())
}
