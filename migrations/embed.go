// Package migrations holds the PostgreSQL schema as ordered SQL files.
// Every NNNN_name.sql has a NNNN_name_rollback.sql counterpart.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
