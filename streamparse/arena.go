// Package streamparse implements a streaming, arena-based unified diff
// parser: a byte-level scanner, columnar storage for files/hunks/lines,
// a string intern pool, and lazy adapter views over the parse result.
package streamparse

import (
	"errors"
	"fmt"

	narrator "github.com/better-vibe/branch-narrator"
)

// Span is a half-open byte range [Start, End) into an arena's source buffer.
type Span struct {
	Start uint32
	End   uint32
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return int(s.End - s.Start) }

// Empty reports whether the span covers no bytes.
func (s Span) Empty() bool { return s.End <= s.Start }

// LineKind classifies one content line inside a hunk.
type LineKind uint8

// Line kinds.
const (
	LineContext LineKind = iota
	LineAddition
	LineDeletion
)

// Default column capacities for a zero-capacity arena. Lines dominate, so
// the ratios are skewed toward line storage.
const (
	defaultFileCap = 16
	defaultHunkCap = 64
	defaultLineCap = 1024
)

// Arena is columnar (structure-of-arrays) storage for the files, hunks and
// lines of one parse session. Entries are addressed by dense integer
// indices; append operations grow backing storage geometrically and the
// returned indices are stable across growth.
//
// An Arena is single-writer: only one parse may mutate it at a time.
// Reset retains capacity but invalidates every lazy view handed out for
// the previous generation.
type Arena struct {
	src []byte // source buffer for the current generation
	gen uint64 // incremented on Reset

	// File columns.
	fileStatus  []narrator.FileStatus
	fileOldPath []Span
	fileNewPath []Span

	// Hunk columns.
	hunkFile     []int32
	hunkOldStart []int32
	hunkOldLines []int32
	hunkNewStart []int32
	hunkNewLines []int32
	hunkHeader   []Span

	// Line columns.
	lineKind    []LineKind
	lineHunk    []int32
	lineContent []Span
	lineOldNo   []int32
	lineNewNo   []int32
}

// NewArena creates an arena sized for roughly capacity files. A zero
// capacity selects the defaults. A negative capacity is a programmer error.
func NewArena(capacity int) (*Arena, error) {
	if capacity < 0 {
		return nil, fmt.Errorf("streamparse: negative arena capacity %d", capacity)
	}
	fileCap, hunkCap, lineCap := defaultFileCap, defaultHunkCap, defaultLineCap
	if capacity > 0 {
		fileCap = capacity
		hunkCap = capacity * 4
		lineCap = capacity * 64
	}
	return &Arena{
		fileStatus:  make([]narrator.FileStatus, 0, fileCap),
		fileOldPath: make([]Span, 0, fileCap),
		fileNewPath: make([]Span, 0, fileCap),

		hunkFile:     make([]int32, 0, hunkCap),
		hunkOldStart: make([]int32, 0, hunkCap),
		hunkOldLines: make([]int32, 0, hunkCap),
		hunkNewStart: make([]int32, 0, hunkCap),
		hunkNewLines: make([]int32, 0, hunkCap),
		hunkHeader:   make([]Span, 0, hunkCap),

		lineKind:    make([]LineKind, 0, lineCap),
		lineHunk:    make([]int32, 0, lineCap),
		lineContent: make([]Span, 0, lineCap),
		lineOldNo:   make([]int32, 0, lineCap),
		lineNewNo:   make([]int32, 0, lineCap),
	}, nil
}

// SetSource binds the immutable source buffer for the current generation.
// All spans appended afterwards reference ranges of this buffer.
func (a *Arena) SetSource(src []byte) { a.src = src }

// Source returns the buffer bound to the current generation.
func (a *Arena) Source() []byte { return a.src }

// Generation returns the current arena generation. It increments on every
// Reset; lazy views remember the generation they were created against.
func (a *Arena) Generation() uint64 { return a.gen }

// FileCount returns the number of file entries.
func (a *Arena) FileCount() int { return len(a.fileStatus) }

// HunkCount returns the number of hunk entries.
func (a *Arena) HunkCount() int { return len(a.hunkFile) }

// LineCount returns the number of line entries.
func (a *Arena) LineCount() int { return len(a.lineKind) }

// AddFile appends a file entry and returns its index.
func (a *Arena) AddFile(status narrator.FileStatus, oldPath, newPath Span) int {
	idx := len(a.fileStatus)
	a.fileStatus = appendGrown(a.fileStatus, status)
	a.fileOldPath = appendGrown(a.fileOldPath, oldPath)
	a.fileNewPath = appendGrown(a.fileNewPath, newPath)
	return idx
}

// AddHunk appends a hunk entry owned by the given file and returns its index.
func (a *Arena) AddHunk(file, oldStart, oldLines, newStart, newLines int, header Span) int {
	idx := len(a.hunkFile)
	a.hunkFile = appendGrown(a.hunkFile, int32(file))
	a.hunkOldStart = appendGrown(a.hunkOldStart, int32(oldStart))
	a.hunkOldLines = appendGrown(a.hunkOldLines, int32(oldLines))
	a.hunkNewStart = appendGrown(a.hunkNewStart, int32(newStart))
	a.hunkNewLines = appendGrown(a.hunkNewLines, int32(newLines))
	a.hunkHeader = appendGrown(a.hunkHeader, header)
	return idx
}

// AddLine appends a line entry owned by the given hunk and returns its index.
// The content span excludes the diff marker byte. oldNo is meaningful for
// deletions and context, newNo for additions and context.
func (a *Arena) AddLine(kind LineKind, hunk int, content Span, oldNo, newNo int) int {
	idx := len(a.lineKind)
	a.lineKind = appendGrown(a.lineKind, kind)
	a.lineHunk = appendGrown(a.lineHunk, int32(hunk))
	a.lineContent = appendGrown(a.lineContent, content)
	a.lineOldNo = appendGrown(a.lineOldNo, int32(oldNo))
	a.lineNewNo = appendGrown(a.lineNewNo, int32(newNo))
	return idx
}

// Reset zeroes all entry counts while retaining backing capacity, and
// advances the generation so stale lazy views fail loudly instead of
// reading reused storage.
func (a *Arena) Reset() {
	a.src = nil
	a.gen++

	a.fileStatus = a.fileStatus[:0]
	a.fileOldPath = a.fileOldPath[:0]
	a.fileNewPath = a.fileNewPath[:0]

	a.hunkFile = a.hunkFile[:0]
	a.hunkOldStart = a.hunkOldStart[:0]
	a.hunkOldLines = a.hunkOldLines[:0]
	a.hunkNewStart = a.hunkNewStart[:0]
	a.hunkNewLines = a.hunkNewLines[:0]
	a.hunkHeader = a.hunkHeader[:0]

	a.lineKind = a.lineKind[:0]
	a.lineHunk = a.lineHunk[:0]
	a.lineContent = a.lineContent[:0]
	a.lineOldNo = a.lineOldNo[:0]
	a.lineNewNo = a.lineNewNo[:0]
}

// Bytes returns the raw bytes for a span of the current source buffer.
func (a *Arena) Bytes(s Span) []byte { return a.src[s.Start:s.End] }

// DecodeLineContent decodes the content of the line at idx into a string.
func (a *Arena) DecodeLineContent(idx int) string {
	return string(a.Bytes(a.lineContent[idx]))
}

// ErrStaleView reports use of a lazy view after the arena moved on.
var ErrStaleView = errors.New("streamparse: lazy view used after arena reset")

// MemoryStats describes the arena's backing storage.
type MemoryStats struct {
	Files         int
	Hunks         int
	Lines         int
	ReservedBytes int64   // bytes reserved by the backing arrays
	Utilization   float64 // fraction of reserved bytes currently in use
}

// Per-element byte widths of the column types.
const (
	spanSize   = 8
	int32Size  = 4
	statusSize = 8 // narrator.FileStatus is an int
	kindSize   = 1
)

// MemoryStats returns entry counts and backing-array byte totals.
func (a *Arena) MemoryStats() MemoryStats {
	reserved := int64(cap(a.fileStatus))*statusSize +
		int64(cap(a.fileOldPath)+cap(a.fileNewPath))*spanSize +
		int64(cap(a.hunkFile)+cap(a.hunkOldStart)+cap(a.hunkOldLines)+cap(a.hunkNewStart)+cap(a.hunkNewLines))*int32Size +
		int64(cap(a.hunkHeader))*spanSize +
		int64(cap(a.lineKind))*kindSize +
		int64(cap(a.lineHunk)+cap(a.lineOldNo)+cap(a.lineNewNo))*int32Size +
		int64(cap(a.lineContent))*spanSize
	used := int64(len(a.fileStatus))*statusSize +
		int64(len(a.fileOldPath)+len(a.fileNewPath))*spanSize +
		int64(len(a.hunkFile)+len(a.hunkOldStart)+len(a.hunkOldLines)+len(a.hunkNewStart)+len(a.hunkNewLines))*int32Size +
		int64(len(a.hunkHeader))*spanSize +
		int64(len(a.lineKind))*kindSize +
		int64(len(a.lineHunk)+len(a.lineOldNo)+len(a.lineNewNo))*int32Size +
		int64(len(a.lineContent))*spanSize

	stats := MemoryStats{
		Files:         a.FileCount(),
		Hunks:         a.HunkCount(),
		Lines:         a.LineCount(),
		ReservedBytes: reserved,
	}
	if reserved > 0 {
		stats.Utilization = float64(used) / float64(reserved)
	}
	return stats
}

// appendGrown appends v to s, doubling the backing array when it is full.
// Existing values keep their indices; growth never shrinks.
func appendGrown[T any](s []T, v T) []T {
	if len(s) == cap(s) {
		newCap := cap(s) * 2
		if newCap == 0 {
			newCap = 8
		}
		grown := make([]T, len(s), newCap)
		copy(grown, s)
		s = grown
	}
	return append(s, v)
}
