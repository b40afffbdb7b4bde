package streamparse

import (
	"sort"

	narrator "github.com/better-vibe/branch-narrator"
)

// ownedRange locates the contiguous index range whose owner column equals
// owner. Owner columns are monotonic because entries are appended in owner
// order, so both bounds are binary searches.
func ownedRange(owners []int32, owner int) (lo, hi int) {
	lo = sort.Search(len(owners), func(i int) bool { return int(owners[i]) >= owner })
	hi = sort.Search(len(owners), func(i int) bool { return int(owners[i]) > owner })
	return lo, hi
}

// Files returns lazy per-file views that borrow from the arena's current
// generation: paths and contents decode on first access. The views become
// invalid, and panic with ErrStaleView, once the arena is reused.
func (r *Result) Files() []FileView {
	r.assertLive()
	views := make([]FileView, r.arena.FileCount())
	for f := range views {
		views[f] = FileView{res: r, idx: f}
	}
	return views
}

// FileView is a decode-on-access view of one file entry.
type FileView struct {
	res *Result
	idx int
}

// Status returns the file's change status.
func (v FileView) Status() narrator.FileStatus {
	v.res.assertLive()
	return v.res.arena.fileStatus[v.idx]
}

// Path decodes the effective path through the intern pool.
func (v FileView) Path() string {
	v.res.assertLive()
	return v.res.decodePath(v.res.displayPath(v.idx))
}

// OldPath returns the old-side path as a lazy string.
func (v FileView) OldPath() *LazyString {
	v.res.assertLive()
	return newLazyString(v.res.arena, v.res.arena.fileOldPath[v.idx])
}

// Hunks returns views of the hunks owned by this file.
func (v FileView) Hunks() []HunkView {
	v.res.assertLive()
	lo, hi := ownedRange(v.res.arena.hunkFile, v.idx)
	views := make([]HunkView, 0, hi-lo)
	for h := lo; h < hi; h++ {
		views = append(views, HunkView{res: v.res, idx: h})
	}
	return views
}

// HunkView is a decode-on-access view of one hunk entry.
type HunkView struct {
	res *Result
	idx int
}

// OldStart returns the hunk's old-side start line.
func (v HunkView) OldStart() int { return int(v.res.arena.hunkOldStart[v.idx]) }

// OldLines returns the hunk's old-side line count.
func (v HunkView) OldLines() int { return int(v.res.arena.hunkOldLines[v.idx]) }

// NewStart returns the hunk's new-side start line.
func (v HunkView) NewStart() int { return int(v.res.arena.hunkNewStart[v.idx]) }

// NewLines returns the hunk's new-side line count.
func (v HunkView) NewLines() int { return int(v.res.arena.hunkNewLines[v.idx]) }

// Header returns the raw hunk header text as a lazy string.
func (v HunkView) Header() *LazyString {
	v.res.assertLive()
	return newLazyString(v.res.arena, v.res.arena.hunkHeader[v.idx])
}

// Lines returns views of the content lines owned by this hunk.
func (v HunkView) Lines() []LineView {
	v.res.assertLive()
	lo, hi := ownedRange(v.res.arena.lineHunk, v.idx)
	views := make([]LineView, 0, hi-lo)
	for l := lo; l < hi; l++ {
		views = append(views, LineView{res: v.res, idx: l})
	}
	return views
}

// LineView is a decode-on-access view of one line entry.
type LineView struct {
	res *Result
	idx int
}

// Kind returns the line's classification.
func (v LineView) Kind() LineKind { return v.res.arena.lineKind[v.idx] }

// OldLine returns the old-side line number; meaningful for deletions and
// context lines.
func (v LineView) OldLine() int { return int(v.res.arena.lineOldNo[v.idx]) }

// NewLine returns the new-side line number; meaningful for additions and
// context lines.
func (v LineView) NewLine() int { return int(v.res.arena.lineNewNo[v.idx]) }

// Content returns the line content, marker excluded, as a lazy string.
func (v LineView) Content() *LazyString {
	v.res.assertLive()
	return newLazyString(v.res.arena, v.res.arena.lineContent[v.idx])
}
