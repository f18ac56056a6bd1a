// Package migrations embeds the profile, energy log and delivery schema.
package migrations

import "embed"

// Files holds the numbered SQL files applied in order by db.OpenSQLite.
//
//go:embed *.sql
var Files embed.FS
