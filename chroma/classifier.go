// Package chroma provides language identification using the chroma library.
package chroma

import (
	"path/filepath"

	"github.com/alecthomas/chroma/v2/lexers"

	narrator "github.com/better-vibe/branch-narrator"
)

// Compile-time interface verification.
var _ narrator.LanguageClassifier = (*Classifier)(nil)

// Classifier identifies languages from file paths using chroma's lexer
// registry.
type Classifier struct{}

// NewClassifier creates a new chroma-based classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Language returns the language name chroma associates with the path's
// file name, or "" when no lexer matches.
func (c *Classifier) Language(path string) string {
	lexer := lexers.Match(filepath.Base(path))
	if lexer == nil {
		return ""
	}
	return lexer.Config().Name
}
