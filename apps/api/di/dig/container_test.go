package dig_container

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/sadaka/apps/api/echo"
	"github.com/trezcool/sadaka/core"
	"github.com/trezcool/sadaka/core/mailtmpl"
	"github.com/trezcool/sadaka/core/media"
	mediasvc "github.com/trezcool/sadaka/services/media"
)

func newInMemConfig() *core.Config {
	conf := core.NewTestConfig()
	conf.Database.Engine = core.DBEngineInMem
	conf.SendgridApiKey = "SG.test"
	return conf
}

func TestNew(t *testing.T) {
	c := New(newInMemConfig)

	err := c.Invoke(func(server *echoapi.Server, mailTmplSvc *mailtmpl.Service, uploader media.Uploader) {
		require.NoError(t, mailTmplSvc.EnsureDefaults(context.Background()))
		mts, err := mailTmplSvc.List(context.Background())
		require.NoError(t, err)
		assert.Len(t, mts, len(mailtmpl.Defaults()))

		_, inMemory := uploader.(*mediasvc.MemoryUploader)
		assert.True(t, inMemory, "cloudinary is not configured")

		req := httptest.NewRequest(http.MethodGet, "/v1/public/site", nil)
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})
	require.NoError(t, err)

	var graph bytes.Buffer
	require.NoError(t, Visualize(c, &graph))
	assert.Contains(t, graph.String(), "digraph")
}

func TestNew_sendgridRequiresKey(t *testing.T) {
	c := New(func() *core.Config {
		conf := newInMemConfig()
		conf.SendgridApiKey = ""
		return conf
	})
	err := c.Invoke(func(core.EmailService) {})
	assert.Error(t, err)
}
