// Package migrations embeds the goose migration files for the postgres
// backend so the binary carries its own schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
