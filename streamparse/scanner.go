package streamparse

import "bytes"

// TokenKind identifies one of the seven unified-diff line kinds.
type TokenKind uint8

// Token kinds.
const (
	TokenDiffHeader TokenKind = iota // diff --git a/... b/...
	TokenOldPath                     // --- a/... or --- /dev/null
	TokenNewPath                     // +++ b/... or +++ /dev/null
	TokenHunkHeader                  // @@ -a,b +c,d @@
	TokenAddition                    // +...
	TokenDeletion                    // -...
	TokenContext                     // " ..." and anything unrecognized
)

// Token is one scanned line. Spans reference the scanner's source buffer;
// the scanner never allocates strings.
type Token struct {
	Kind    TokenKind
	Line    Span // full line, newline excluded
	Content Span // marker byte stripped for content lines, full line otherwise

	// Parsed hunk coordinates, valid for TokenHunkHeader only. Counts
	// omitted in the header default to 1 per unified-diff convention.
	OldStart int
	OldLines int
	NewStart int
	NewLines int

	// Malformed marks a hunk header that did not parse cleanly, or a line
	// inside the content area whose prefix byte is not a diff marker.
	Malformed bool
}

// Scanner is a byte-level, line-oriented tokenizer over an immutable diff
// buffer. Classification is plain byte comparison; this is the dominant
// cost center for large diffs, so no regular expressions.
type Scanner struct {
	src []byte
	pos int
}

// NewScanner creates a scanner over src.
func NewScanner(src []byte) *Scanner {
	return &Scanner{src: src}
}

// HasMore reports whether unscanned bytes remain.
func (s *Scanner) HasMore() bool { return s.pos < len(s.src) }

// Position returns the current byte offset.
func (s *Scanner) Position() int { return s.pos }

// Reset rewinds the scanner to the start of the buffer.
func (s *Scanner) Reset() { s.pos = 0 }

// ScanLine consumes the next line and returns its token. The second return
// is false at end of input.
func (s *Scanner) ScanLine() (Token, bool) {
	if s.pos >= len(s.src) {
		return Token{}, false
	}
	start := s.pos
	end := start
	if nl := bytes.IndexByte(s.src[start:], '\n'); nl >= 0 {
		end = start + nl
		s.pos = end + 1
	} else {
		end = len(s.src)
		s.pos = end
	}
	// Tolerate CRLF input.
	if end > start && s.src[end-1] == '\r' {
		end--
	}
	return s.classify(Span{Start: uint32(start), End: uint32(end)}), true
}

var (
	diffHeaderPrefix = []byte("diff --git ")
	oldPathPrefix    = []byte("--- ")
	newPathPrefix    = []byte("+++ ")
	devNull          = []byte("/dev/null")
)

func (s *Scanner) classify(line Span) Token {
	b := s.src[line.Start:line.End]
	tok := Token{Line: line, Content: line}

	switch {
	case bytes.HasPrefix(b, diffHeaderPrefix):
		tok.Kind = TokenDiffHeader
	case bytes.HasPrefix(b, oldPathPrefix):
		tok.Kind = TokenOldPath
	case bytes.HasPrefix(b, newPathPrefix):
		tok.Kind = TokenNewPath
	case len(b) >= 2 && b[0] == '@' && b[1] == '@':
		tok.Kind = TokenHunkHeader
		parseHunkHeader(b, &tok)
	case len(b) == 0:
		tok.Kind = TokenContext
	case b[0] == '+':
		tok.Kind = TokenAddition
		tok.Content.Start++
	case b[0] == '-':
		tok.Kind = TokenDeletion
		tok.Content.Start++
	case b[0] == ' ':
		tok.Kind = TokenContext
		tok.Content.Start++
	default:
		// Unrecognized prefix: the most permissive classification keeps
		// the parse going on arbitrary input.
		tok.Kind = TokenContext
		tok.Malformed = true
	}
	return tok
}

// parseHunkHeader fills the four coordinates from "@@ -a,b +c,d @@".
// Omitted counts default to 1; anything unparsable marks the token
// malformed while keeping safe defaults, so the parse never aborts.
func parseHunkHeader(b []byte, tok *Token) {
	tok.OldStart, tok.OldLines, tok.NewStart, tok.NewLines = 0, 1, 0, 1

	i := 2 // past "@@"
	i = skipSpaces(b, i)
	if i >= len(b) || b[i] != '-' {
		tok.Malformed = true
		return
	}
	i++
	var ok bool
	tok.OldStart, i, ok = scanInt(b, i)
	if !ok {
		tok.Malformed = true
		return
	}
	if i < len(b) && b[i] == ',' {
		tok.OldLines, i, ok = scanInt(b, i+1)
		if !ok {
			tok.OldLines = 1
			tok.Malformed = true
			return
		}
	}
	i = skipSpaces(b, i)
	if i >= len(b) || b[i] != '+' {
		tok.Malformed = true
		return
	}
	i++
	tok.NewStart, i, ok = scanInt(b, i)
	if !ok {
		tok.Malformed = true
		return
	}
	if i < len(b) && b[i] == ',' {
		tok.NewLines, i, ok = scanInt(b, i+1)
		if !ok {
			tok.NewLines = 1
			tok.Malformed = true
			return
		}
	}
	i = skipSpaces(b, i)
	if i+1 >= len(b) || b[i] != '@' || b[i+1] != '@' {
		tok.Malformed = true
	}
}

func skipSpaces(b []byte, i int) int {
	for i < len(b) && b[i] == ' ' {
		i++
	}
	return i
}

// scanInt reads a decimal integer starting at i. ok is false when no digit
// is present.
func scanInt(b []byte, i int) (val, next int, ok bool) {
	start := i
	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		val = val*10 + int(b[i]-'0')
		i++
	}
	return val, i, i > start
}

// DiffPaths splits a diff-header token into old and new path spans,
// stripping the conventional "a/" and "b/" prefixes. Zero spans are
// returned when the header does not follow the a/… b/… shape.
func (s *Scanner) DiffPaths(tok Token) (oldPath, newPath Span) {
	b := s.src[tok.Line.Start:tok.Line.End]
	rest := len(diffHeaderPrefix) // past "diff --git "
	if rest >= len(b) {
		return Span{}, Span{}
	}
	// The new path starts at the last " b/" separator, which keeps old
	// paths containing spaces intact.
	sep := bytes.LastIndex(b, []byte(" b/"))
	if sep < rest {
		return Span{}, Span{}
	}
	oldStart, oldEnd := rest, sep
	if oldEnd-oldStart >= 2 && b[oldStart] == 'a' && b[oldStart+1] == '/' {
		oldStart += 2
	}
	newStart := sep + 3 // past " b/"

	base := tok.Line.Start
	return Span{Start: base + uint32(oldStart), End: base + uint32(oldEnd)},
		Span{Start: base + uint32(newStart), End: base + uint32(len(b))}
}

// FilePath extracts the path from a "---"/"+++" token, stripping the
// "a/"/"b/" prefix and any trailing tab-separated timestamp. devNull is
// true for the /dev/null placeholder.
func (s *Scanner) FilePath(tok Token) (path Span, isDevNull bool) {
	b := s.src[tok.Line.Start:tok.Line.End]
	start := len(oldPathPrefix) // "--- " and "+++ " have equal length
	if start > len(b) {
		return Span{}, false
	}
	end := len(b)
	if tab := bytes.IndexByte(b[start:], '\t'); tab >= 0 {
		end = start + tab
	}
	if bytes.Equal(b[start:end], devNull) {
		base := tok.Line.Start
		return Span{Start: base + uint32(start), End: base + uint32(end)}, true
	}
	if end-start >= 2 && (b[start] == 'a' || b[start] == 'b') && b[start+1] == '/' {
		start += 2
	}
	base := tok.Line.Start
	return Span{Start: base + uint32(start), End: base + uint32(end)}, false
}
