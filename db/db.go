// Package db carries the embedded SQL migrations so the binary can
// migrate itself without shipping loose files.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
