//go:build tools

package tools

// Tool dependencies pinned in go.mod. The goose CLI runs the SQL files in
// internal/adapters/postgres/migrations outside the server.

import (
	_ "github.com/pressly/goose/v3/cmd/goose"
)
