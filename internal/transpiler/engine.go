// Package transpiler is the narrow boundary between the MCP tools and the
// SQL transpilation library that does the real work.
package transpiler

import (
	"context"
	"errors"
	"fmt"
)

// Engine is the subset of a SQL transpilation library the tools rely on.
// Dialect names passed to Parse and Transpile are already lowercased.
type Engine interface {
	Dialects(ctx context.Context) (Registry, error)
	Parse(ctx context.Context, sql, read string) error
	Transpile(ctx context.Context, sql, read, write string) ([]string, error)
}

// ErrEmptyResult is returned when the engine produced no output statement.
var ErrEmptyResult = errors.New("transpiler returned no statements")

// ParseError reports that the input could not be parsed in the read dialect.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string {
	return e.Message
}

// IsParseError reports whether err, or anything it wraps, is a *ParseError.
func IsParseError(err error) bool {
	var perr *ParseError
	return errors.As(err, &perr)
}

// LoadRegistry asks the engine for its dialects once.
func LoadRegistry(ctx context.Context, engine Engine) (Registry, error) {
	if engine == nil {
		return Registry{}, fmt.Errorf("transpiler engine not configured")
	}
	reg, err := engine.Dialects(ctx)
	if err != nil {
		return Registry{}, fmt.Errorf("load dialects: %w", err)
	}
	return reg, nil
}
