package streamparse

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"time"

	narrator "github.com/better-vibe/branch-narrator"
)

// Compile-time interface verification.
var _ narrator.Parser = (*Parser)(nil)

// Parser is the streaming orchestrator: it drives the scanner over the
// source buffer, maintains current-file and current-hunk state, computes
// running line numbers, and appends into the arena.
//
// A Parser is single-threaded; concurrent parses need independent Parser
// (and therefore Arena) instances.
type Parser struct {
	arena    *Arena
	interner *Interner
	logger   *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithArena reuses a caller-supplied arena across parses, amortizing
// allocation when parsing many diffs in a batch. Each ParseBytes call
// resets it, invalidating results from earlier calls.
func WithArena(a *Arena) Option {
	return func(p *Parser) { p.arena = a }
}

// WithInterner shares a string pool across parsers, so paths repeated
// between diffs decode once.
func WithInterner(in *Interner) Option {
	return func(p *Parser) { p.interner = in }
}

// WithLogger emits one debug record of aggregate stats per parse.
func WithLogger(l *slog.Logger) Option {
	return func(p *Parser) { p.logger = l }
}

// New creates a parser with a fresh arena and intern pool unless options
// supply them.
func New(opts ...Option) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	if p.arena == nil {
		p.arena, _ = NewArena(0)
	}
	if p.interner == nil {
		p.interner = NewInterner()
	}
	return p
}

// Stats aggregates per-parse observations. Informational only; anomalies
// never gate correctness.
type Stats struct {
	Files     int
	Hunks     int
	Lines     int
	Anomalies int // malformed hunk headers and unrecognized in-hunk prefixes
	Elapsed   time.Duration
}

// Result is an arena-backed parse result. Adapter methods project it into
// consumer-facing views; lazy views stay valid only until the backing
// arena is reused by a later parse.
type Result struct {
	arena    *Arena
	interner *Interner
	gen      uint64

	Stats Stats
}

// ParseString parses diff text held as a string.
func (p *Parser) ParseString(input string) *Result {
	return p.ParseBytes([]byte(input))
}

// Parse reads all diff content from r and returns eagerly decoded domain
// records, satisfying narrator.Parser. Only read failures are errors.
func (p *Parser) Parse(r io.Reader) (*narrator.Diff, error) {
	input, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read diff: %w", err)
	}
	return &narrator.Diff{Files: p.ParseBytes(input).FileDiffs()}, nil
}

// Status refinement prefixes observed between a file's diff header and its
// first hunk.
var (
	newFileModePrefix = []byte("new file mode")
	deletedModePrefix = []byte("deleted file mode")
	renameFromPrefix  = []byte("rename from ")
	renameToPrefix    = []byte("rename to ")
	similarityPrefix  = []byte("similarity index")
)

// ParseBytes parses raw diff bytes into the arena. It never fails on
// malformed or truncated input: unrecognized content degrades to context
// lines and malformed hunk headers keep safe defaults, both counted as
// anomalies in the returned stats.
func (p *Parser) ParseBytes(input []byte) *Result {
	start := time.Now()

	a := p.arena
	a.Reset()
	a.SetSource(input)
	sc := NewScanner(input)

	curFile := -1
	curHunk := -1
	var runningOld, runningNew int
	// Unconsumed line counts from the current hunk header. While the old
	// budget is open, a "--- " line is a deletion whose text starts with
	// "-- ", not the next file's path header; same for "+++ " on the new
	// side. go-gitdiff resolves the ambiguity the same way.
	var remainOld, remainNew int
	anomalies := 0

	for {
		tok, ok := sc.ScanLine()
		if !ok {
			break
		}
		switch tok.Kind {
		case TokenDiffHeader:
			oldPath, newPath := sc.DiffPaths(tok)
			curFile = a.AddFile(narrator.StatusModified, oldPath, newPath)
			curHunk = -1

		case TokenOldPath:
			if curHunk >= 0 && remainOld > 0 {
				// Deleted content line, marker stripped.
				content := Span{Start: tok.Line.Start + 1, End: tok.Line.End}
				a.AddLine(LineDeletion, curHunk, content, runningOld, 0)
				runningOld++
				remainOld--
				break
			}
			// A "---" header opens a file implicitly when no diff --git
			// header preceded it (plain diff -u output) or when the
			// previous file's hunks already started.
			if curFile < 0 || curHunk >= 0 {
				curFile = a.AddFile(narrator.StatusModified, Span{}, Span{})
				curHunk = -1
			}
			path, isDevNull := sc.FilePath(tok)
			if isDevNull {
				a.fileStatus[curFile] = narrator.StatusAdded
			} else {
				a.fileOldPath[curFile] = path
			}

		case TokenNewPath:
			if curHunk >= 0 && remainNew > 0 {
				// Added content line, marker stripped.
				content := Span{Start: tok.Line.Start + 1, End: tok.Line.End}
				a.AddLine(LineAddition, curHunk, content, 0, runningNew)
				runningNew++
				remainNew--
				break
			}
			if curFile < 0 {
				curFile = a.AddFile(narrator.StatusModified, Span{}, Span{})
				curHunk = -1
			}
			path, isDevNull := sc.FilePath(tok)
			if isDevNull {
				a.fileStatus[curFile] = narrator.StatusDeleted
			} else {
				a.fileNewPath[curFile] = path
			}

		case TokenHunkHeader:
			if curFile < 0 {
				curFile = a.AddFile(narrator.StatusModified, Span{}, Span{})
			}
			if tok.Malformed {
				anomalies++
			}
			curHunk = a.AddHunk(curFile, tok.OldStart, tok.OldLines, tok.NewStart, tok.NewLines, tok.Line)
			runningOld = tok.OldStart
			runningNew = tok.NewStart
			remainOld = tok.OldLines
			remainNew = tok.NewLines

		case TokenAddition:
			if curHunk < 0 {
				continue // stray content outside any hunk
			}
			a.AddLine(LineAddition, curHunk, tok.Content, 0, runningNew)
			runningNew++
			remainNew--

		case TokenDeletion:
			if curHunk < 0 {
				continue
			}
			a.AddLine(LineDeletion, curHunk, tok.Content, runningOld, 0)
			runningOld++
			remainOld--

		case TokenContext:
			if curHunk >= 0 {
				if tok.Malformed {
					anomalies++
				}
				a.AddLine(LineContext, curHunk, tok.Content, runningOld, runningNew)
				runningOld++
				runningNew++
				remainOld--
				remainNew--
			} else if curFile >= 0 {
				p.refineStatus(curFile, sc.src[tok.Line.Start:tok.Line.End])
			}
		}
	}

	res := &Result{
		arena:    a,
		interner: p.interner,
		gen:      a.Generation(),
		Stats: Stats{
			Files:     a.FileCount(),
			Hunks:     a.HunkCount(),
			Lines:     a.LineCount(),
			Anomalies: anomalies,
			Elapsed:   time.Since(start),
		},
	}
	if p.logger != nil {
		p.logger.Debug("parsed diff",
			slog.Int("files", res.Stats.Files),
			slog.Int("hunks", res.Stats.Hunks),
			slog.Int("lines", res.Stats.Lines),
			slog.Int("anomalies", res.Stats.Anomalies),
			slog.Duration("elapsed", res.Stats.Elapsed),
		)
	}
	return res
}

// refineStatus upgrades the provisional "modified" status from the file
// metadata lines that precede the first hunk.
func (p *Parser) refineStatus(file int, line []byte) {
	a := p.arena
	switch {
	case bytes.HasPrefix(line, newFileModePrefix):
		a.fileStatus[file] = narrator.StatusAdded
	case bytes.HasPrefix(line, deletedModePrefix):
		a.fileStatus[file] = narrator.StatusDeleted
	case bytes.HasPrefix(line, renameFromPrefix),
		bytes.HasPrefix(line, renameToPrefix),
		bytes.HasPrefix(line, similarityPrefix):
		a.fileStatus[file] = narrator.StatusRenamed
	}
}
