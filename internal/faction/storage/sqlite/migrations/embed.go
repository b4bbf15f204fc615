package migrations

import "embed"

// FS contains embedded SQLite migrations for faction storage.
//
//go:embed *.sql
var FS embed.FS
