// Package appfs embeds the files shipped with the binaries: migrations, templates & assets.
package appfs

import "embed"

//go:embed migrations/*.sql all:templates assets
var FS embed.FS

const (
	MigrationsDir     = "migrations"
	EmailTemplatesDir = "templates/email"
	SiteTemplatesDir  = "templates/site"
	CommonPasswordsGZ = "assets/common-passwords.txt.gz"
)
