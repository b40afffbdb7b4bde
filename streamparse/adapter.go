package streamparse

import (
	"encoding/binary"
	"iter"

	"github.com/cespare/xxhash/v2"

	narrator "github.com/better-vibe/branch-narrator"
)

// assertLive panics when the backing arena has been reused by a later
// parse, so stale projections fail loudly instead of reading reused
// storage.
func (r *Result) assertLive() {
	if r.gen != r.arena.Generation() {
		panic(ErrStaleView)
	}
}

// displayPath returns the effective path span for a file: the new side,
// falling back to the old side for deletions and headerless diffs.
func (r *Result) displayPath(file int) Span {
	a := r.arena
	if a.fileStatus[file] == narrator.StatusDeleted || a.fileNewPath[file].Empty() {
		return a.fileOldPath[file]
	}
	return a.fileNewPath[file]
}

func (r *Result) decodePath(s Span) string {
	if s.Empty() {
		return ""
	}
	return r.interner.InternBytes(r.arena.Bytes(s))
}

// FileDiffs converts the result into eagerly decoded per-file records:
// every path, hunk content, and changed line is materialized, so the
// returned slice survives arena reuse.
func (r *Result) FileDiffs() []narrator.FileDiff {
	r.assertLive()
	a := r.arena

	files := make([]narrator.FileDiff, a.FileCount())
	hunk := 0
	line := 0
	for f := range files {
		fd := narrator.FileDiff{
			Path:   r.decodePath(r.displayPath(f)),
			Status: a.fileStatus[f],
		}
		if fd.Status == narrator.StatusRenamed {
			fd.OldPath = r.decodePath(a.fileOldPath[f])
		}
		for ; hunk < a.HunkCount() && int(a.hunkFile[hunk]) == f; hunk++ {
			h := narrator.Hunk{
				OldStart: int(a.hunkOldStart[hunk]),
				OldLines: int(a.hunkOldLines[hunk]),
				NewStart: int(a.hunkNewStart[hunk]),
				NewLines: int(a.hunkNewLines[hunk]),
			}
			end := a.hunkHeader[hunk].End
			for ; line < a.LineCount() && int(a.lineHunk[line]) == hunk; line++ {
				content := a.lineContent[line]
				switch a.lineKind[line] {
				case LineAddition:
					h.Additions = append(h.Additions, a.DecodeLineContent(line))
				case LineDeletion:
					h.Deletions = append(h.Deletions, a.DecodeLineContent(line))
				}
				if content.End > end {
					end = content.End
				}
			}
			h.Content = string(a.src[a.hunkHeader[hunk].Start:end])
			fd.Hunks = append(fd.Hunks, h)
		}
		files[f] = fd
	}
	return files
}

// FileChanges converts the result into the lighter path/status projection.
func (r *Result) FileChanges() []narrator.FileChange {
	r.assertLive()
	a := r.arena

	changes := make([]narrator.FileChange, a.FileCount())
	for f := range changes {
		fc := narrator.FileChange{
			Path:   r.decodePath(r.displayPath(f)),
			Status: a.fileStatus[f],
		}
		if fc.Status == narrator.StatusRenamed {
			fc.OldPath = r.decodePath(a.fileOldPath[f])
		}
		changes[f] = fc
	}
	return changes
}

// Paths returns a finite sequence of decoded file paths in diff order.
// Each call recomputes the sequence from the arena.
func (r *Result) Paths() iter.Seq[string] {
	return func(yield func(string) bool) {
		r.assertLive()
		for f := 0; f < r.arena.FileCount(); f++ {
			if !yield(r.decodePath(r.displayPath(f))) {
				return
			}
		}
	}
}

// HasFileMatching reports whether any file path satisfies match,
// short-circuiting on the first hit.
func (r *Result) HasFileMatching(match func(path string) bool) bool {
	r.assertLive()
	for f := 0; f < r.arena.FileCount(); f++ {
		if match(r.decodePath(r.displayPath(f))) {
			return true
		}
	}
	return false
}

// Additions returns a lazy sequence over all added lines, in file order
// then line order within each hunk. A fresh call yields a fresh sequence.
func (r *Result) Additions() iter.Seq[narrator.AddedLine] {
	return func(yield func(narrator.AddedLine) bool) {
		r.assertLive()
		a := r.arena
		for l := 0; l < a.LineCount(); l++ {
			if a.lineKind[l] != LineAddition {
				continue
			}
			file := int(a.hunkFile[a.lineHunk[l]])
			added := narrator.AddedLine{
				Path:    r.decodePath(r.displayPath(file)),
				Content: a.DecodeLineContent(l),
			}
			if !yield(added) {
				return
			}
		}
	}
}

// ChangeStats counts added and deleted lines per file path.
func (r *Result) ChangeStats() map[string]narrator.ChangeStats {
	r.assertLive()
	a := r.arena

	stats := make(map[string]narrator.ChangeStats, a.FileCount())
	for l := 0; l < a.LineCount(); l++ {
		kind := a.lineKind[l]
		if kind == LineContext {
			continue
		}
		path := r.decodePath(r.displayPath(int(a.hunkFile[a.lineHunk[l]])))
		s := stats[path]
		if kind == LineAddition {
			s.Additions++
		} else {
			s.Deletions++
		}
		stats[path] = s
	}
	// Files changed without content lines (renames, mode changes) still
	// get an entry.
	for f := 0; f < a.FileCount(); f++ {
		path := r.decodePath(r.displayPath(f))
		if _, ok := stats[path]; !ok {
			stats[path] = narrator.ChangeStats{}
		}
	}
	return stats
}

// Fingerprint returns a deterministic hash over the structural content of
// the parse result, suitable as a cache-key input: same diff, same value.
func (r *Result) Fingerprint() uint64 {
	r.assertLive()
	a := r.arena

	d := xxhash.New()
	var scratch [4]byte
	writeInt := func(v int32) {
		binary.LittleEndian.PutUint32(scratch[:], uint32(v))
		_, _ = d.Write(scratch[:])
	}

	for f := 0; f < a.FileCount(); f++ {
		_, _ = d.Write([]byte{byte(a.fileStatus[f])})
		_, _ = d.Write(a.Bytes(a.fileOldPath[f]))
		_, _ = d.Write([]byte{0})
		_, _ = d.Write(a.Bytes(a.fileNewPath[f]))
		_, _ = d.Write([]byte{0})
	}
	for h := 0; h < a.HunkCount(); h++ {
		writeInt(a.hunkFile[h])
		writeInt(a.hunkOldStart[h])
		writeInt(a.hunkOldLines[h])
		writeInt(a.hunkNewStart[h])
		writeInt(a.hunkNewLines[h])
	}
	for l := 0; l < a.LineCount(); l++ {
		_, _ = d.Write([]byte{byte(a.lineKind[l])})
		_, _ = d.Write(a.Bytes(a.lineContent[l]))
		_, _ = d.Write([]byte{'\n'})
	}
	return d.Sum64()
}

// MemoryStats exposes the backing arena's storage counters.
func (r *Result) MemoryStats() MemoryStats {
	return r.arena.MemoryStats()
}

// InternStats exposes the string pool's usage counters.
func (r *Result) InternStats() InternStats {
	return r.interner.Stats()
}
