// Package migrations embeds the goose SQL migrations of the textkeeper
// schema. The same files run on SQLite and PostgreSQL.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
