// Package migrations contains the embedded SQL migrations for the Postgres backend.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
