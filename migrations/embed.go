// Package migrations carries the versioned SQL schema for the storefront
// database. Files follow golang-migrate naming: NNNNNN_name.{up,down}.sql.
package migrations

import "embed"

// FS holds every migration file compiled into the binary.
//
//go:embed *.sql
var FS embed.FS
