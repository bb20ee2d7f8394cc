// Package migrations embeds the goose migrations for the session slot table.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
