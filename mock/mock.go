// Package mock provides function-field test doubles for the narrator
// interfaces.
package mock

import (
	"io"

	narrator "github.com/better-vibe/branch-narrator"
)

// Compile-time interface verification.
var (
	_ narrator.Parser             = (*Parser)(nil)
	_ narrator.LanguageClassifier = (*LanguageClassifier)(nil)
)

// Parser is a mock implementation of narrator.Parser.
type Parser struct {
	ParseFn func(r io.Reader) (*narrator.Diff, error)
}

// Parse delegates to ParseFn.
func (p *Parser) Parse(r io.Reader) (*narrator.Diff, error) {
	return p.ParseFn(r)
}

// LanguageClassifier is a mock implementation of narrator.LanguageClassifier.
type LanguageClassifier struct {
	LanguageFn func(path string) string
}

// Language delegates to LanguageFn.
func (c *LanguageClassifier) Language(path string) string {
	return c.LanguageFn(path)
}
