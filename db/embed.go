// Package db embeds the SQL migrations so production builds carry them in
// the binary. Build with -tags embed_migrations to use the embedded copy;
// development builds read db/migrations from disk.
package db

import "embed"

//go:embed migrations
var Migrations embed.FS
