package logsvc

import (
	"log"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/sadaka/core"
	"github.com/trezcool/sadaka/core/user"
)

func TestRollbarLogger(t *testing.T) {
	out := new(strings.Builder)
	conf := core.NewTestConfig()
	conf.RollbarToken = "token"
	logger := NewRollbarLogger(log.New(out, "", 0), conf)
	assert.False(t, logger.enabled, "disabled in test mode")

	usr := user.User{ID: "1", Username: "amina"}
	logger.Error("saving page", errors.New("boom"), usr, map[string]interface{}{"key": "about"})

	got := out.String()
	assert.Contains(t, got, "ERROR saving page\n")
	assert.Contains(t, got, "boom\n")
	assert.Contains(t, got, "map[key:about]\n")
	assert.NotContains(t, got, "amina", "users are only reported")
}
