package migrations

import "embed"

// Files exposes the embedded SQL migration files for the SQL-backed
// record stores, grouped per driver.
//
//go:embed sqlite/*.sql postgres/*.sql
var Files embed.FS
