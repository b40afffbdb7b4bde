package narrator

import "io"

// Parser parses unified diff content into domain types.
type Parser interface {
	// Parse reads diff content and returns the parsed result.
	// Malformed diff text is tolerated; only read failures are errors.
	Parse(r io.Reader) (*Diff, error)
}
