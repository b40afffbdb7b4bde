// Package narrator provides domain types for parsing and analyzing
// version-control diffs.
package narrator

// Diff represents a complete diff containing one or more file changes.
type Diff struct {
	Files []FileDiff
}

// FileDiff represents the parsed changes to a single file.
type FileDiff struct {
	Path    string     // effective path ("new" side, or "old" side for deletions)
	OldPath string     // previous path, set for renames
	Status  FileStatus // Added, Modified, Deleted, Renamed
	Hunks   []Hunk
}

// FileChange is a lighter projection of FileDiff for summary-only consumers.
type FileChange struct {
	Path    string
	Status  FileStatus
	OldPath string // set for renames
}

// FileStatus represents the kind of operation performed on a file.
type FileStatus int

// File statuses.
const (
	StatusModified FileStatus = iota
	StatusAdded
	StatusDeleted
	StatusRenamed
)

// String returns the wire-level name of the status.
func (s FileStatus) String() string {
	switch s {
	case StatusAdded:
		return "added"
	case StatusDeleted:
		return "deleted"
	case StatusRenamed:
		return "renamed"
	default:
		return "modified"
	}
}

// Hunk represents a contiguous block of changes within a file.
type Hunk struct {
	OldStart  int      // From @@ -X,...
	OldLines  int      // From @@ -X,Y ...
	NewStart  int      // From @@ ...,+X
	NewLines  int      // From @@ ...,+X,Y
	Content   string   // Raw hunk text, header line included
	Additions []string // Contents of "+" lines, markers stripped
	Deletions []string // Contents of "-" lines, markers stripped
}

// AddedLine pairs one added line of content with the file it belongs to.
type AddedLine struct {
	Path    string
	Content string
}

// ChangeStats counts added and deleted lines for one file.
type ChangeStats struct {
	Additions int
	Deletions int
}
