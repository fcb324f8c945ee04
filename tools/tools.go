//go:build tools

package tools

// Tool dependencies pinned in go.mod. goose is used to author and inspect the
// migrations embedded in internal/adapters/postgres/migrations.

import (
	_ "github.com/pressly/goose/v3/cmd/goose"
)
