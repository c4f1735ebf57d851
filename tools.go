//go:build tools

package tools

// Tool dependencies are tracked here so `go mod tidy` keeps them.
// Regenerate mocks with: go run github.com/vektra/mockery/v2
import (
	_ "github.com/vektra/mockery/v2"
)
