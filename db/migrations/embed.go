// Package migrations embeds the SQL migration files that define the
// docstash base schema. The FTS shadow index is not part of the
// migrations; it is provisioned at runtime by the search package.
package migrations

import "embed"

// Files exposes the compiled-in migration SQL files.
//
//go:embed *.sql
var Files embed.FS
