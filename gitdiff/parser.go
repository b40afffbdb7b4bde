// Package gitdiff adapts the go-gitdiff library to the narrator domain.
// It is the compatibility parser: consumers that prefer a battle-tested
// library over the arena-based core get the same domain records from it.
package gitdiff

import (
	"fmt"
	"io"
	"strings"

	gd "github.com/bluekeyes/go-gitdiff/gitdiff"

	narrator "github.com/better-vibe/branch-narrator"
)

// Compile-time interface verification.
var _ narrator.Parser = (*Parser)(nil)

// Parser parses unified diffs using go-gitdiff.
type Parser struct{}

// NewParser creates a new go-gitdiff-backed parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads diff content from r and converts it to domain records.
func (p *Parser) Parse(r io.Reader) (*narrator.Diff, error) {
	files, _, err := gd.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse git diff: %w", err)
	}

	diff := &narrator.Diff{Files: make([]narrator.FileDiff, 0, len(files))}
	for _, f := range files {
		diff.Files = append(diff.Files, convertFile(f))
	}
	return diff, nil
}

func convertFile(f *gd.File) narrator.FileDiff {
	fd := narrator.FileDiff{
		Path:   f.NewName,
		Status: narrator.StatusModified,
	}
	switch {
	case f.IsNew:
		fd.Status = narrator.StatusAdded
	case f.IsDelete:
		fd.Status = narrator.StatusDeleted
		fd.Path = f.OldName
	case f.IsRename:
		fd.Status = narrator.StatusRenamed
		fd.OldPath = f.OldName
	}
	if fd.Path == "" {
		fd.Path = f.OldName
	}

	for _, frag := range f.TextFragments {
		fd.Hunks = append(fd.Hunks, convertFragment(frag))
	}
	return fd
}

func convertFragment(frag *gd.TextFragment) narrator.Hunk {
	h := narrator.Hunk{
		OldStart: int(frag.OldPosition),
		OldLines: int(frag.OldLines),
		NewStart: int(frag.NewPosition),
		NewLines: int(frag.NewLines),
	}

	var content strings.Builder
	content.WriteString(frag.Header())
	content.WriteByte('\n')
	for _, line := range frag.Lines {
		content.WriteString(line.String())
		switch line.Op {
		case gd.OpAdd:
			h.Additions = append(h.Additions, strings.TrimSuffix(line.Line, "\n"))
		case gd.OpDelete:
			h.Deletions = append(h.Deletions, strings.TrimSuffix(line.Line, "\n"))
		}
	}
	h.Content = strings.TrimSuffix(content.String(), "\n")
	return h
}
