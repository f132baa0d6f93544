// Package migrations embeds the mirror server's SQL migration files for
// goose.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
