// Package sqlitemigrations embeds the schema for the SQLite store.
package sqlitemigrations

import "embed"

//go:embed *.sql
var FS embed.FS
