package narrator

// LanguageClassifier identifies the programming language of a changed file.
type LanguageClassifier interface {
	// Language returns a human-readable language name for the path,
	// or "" when the language cannot be determined.
	Language(path string) string
}
