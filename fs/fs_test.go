package appfs

import (
	"io/fs"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFS(t *testing.T) {
	files := []string{
		CommonPasswordsGZ,
		path.Join(MigrationsDir, "00001_init.sql"),
		path.Join(SiteTemplatesDir, "_layout.gohtml"),
		path.Join(SiteTemplatesDir, "home.gohtml"),
		path.Join(EmailTemplatesDir, "_base.gohtml"),
		path.Join(EmailTemplatesDir, "_base.txt"),
		path.Join(EmailTemplatesDir, "password_reset.gohtml"),
		path.Join(EmailTemplatesDir, "password_reset.txt"),
	}
	for _, name := range files {
		t.Run(name, func(t *testing.T) {
			info, err := fs.Stat(FS, name)
			require.NoError(t, err)
			assert.NotZero(t, info.Size())
		})
	}
}
