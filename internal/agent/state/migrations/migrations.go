// Package migrations embeds the goose migrations for the agent's local
// SQLite state.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
