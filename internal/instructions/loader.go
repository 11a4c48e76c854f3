// Package instructions loads the self-description the MCP server hands to
// clients during initialization.
package instructions

import (
	_ "embed"
	"fmt"
	"os"
)

// Bundled is the instructions document compiled into the binary.
//
//go:embed instructions.md
var Bundled string

// Load returns the bundled document when path is empty and otherwise reads
// path. It never fails: on a read error the returned text describes the
// failure so the server can still start.
func Load(path string) string {
	if path == "" {
		return Bundled
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Sprintf("Error reading instructions: %v", err)
	}
	return string(data)
}
