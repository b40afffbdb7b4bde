package streamparse_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	narrator "github.com/better-vibe/branch-narrator"
	"github.com/better-vibe/branch-narrator/streamparse"
)

const twoFileDiff = `diff --git a/alpha.go b/alpha.go
index 1111111..2222222 100644
--- a/alpha.go
+++ b/alpha.go
@@ -1,3 +1,4 @@
 const a=1;
+const b=2;
 const c=3;
@@ -10,2 +11,2 @@
-old line
+new line
diff --git a/beta.go b/beta.go
--- a/beta.go
+++ b/beta.go
@@ -5,1 +5,2 @@
 keep
+extra
`

func TestParser_ParseString(t *testing.T) {
	t.Parallel()

	t.Run("counts files hunks and lines", func(t *testing.T) {
		t.Parallel()

		res := streamparse.New().ParseString(twoFileDiff)

		assert.Equal(t, 2, res.Stats.Files)
		assert.Equal(t, 3, res.Stats.Hunks)
		assert.Equal(t, 7, res.Stats.Lines)
	})

	t.Run("end-to-end single file", func(t *testing.T) {
		t.Parallel()

		input := `diff --git a/f.ts b/f.ts
--- a/f.ts
+++ b/f.ts
@@ -1,3 +1,4 @@
 const a=1;
+const b=2;
 const c=3;
`
		res := streamparse.New().ParseString(input)

		require.Equal(t, 1, res.Stats.Files)
		require.Equal(t, 1, res.Stats.Hunks)

		files := res.FileDiffs()
		require.Len(t, files, 1)
		assert.Equal(t, "f.ts", files[0].Path)
		assert.Equal(t, narrator.StatusModified, files[0].Status)

		require.Len(t, files[0].Hunks, 1)
		hunk := files[0].Hunks[0]
		require.Len(t, hunk.Additions, 1)
		assert.Equal(t, "const b=2;", hunk.Additions[0])

		lines := res.Files()[0].Hunks()[0].Lines()
		require.Len(t, lines, 3)
		assert.Equal(t, streamparse.LineAddition, lines[1].Kind())
		assert.Equal(t, 2, lines[1].NewLine())
	})

	t.Run("line numbers advance per axis", func(t *testing.T) {
		t.Parallel()

		input := `diff --git a/f.go b/f.go
--- a/f.go
+++ b/f.go
@@ -10,5 +10,7 @@
 first
+second
+third
-gone
 fourth
`
		res := streamparse.New().ParseString(input)
		lines := res.Files()[0].Hunks()[0].Lines()
		require.Len(t, lines, 5)

		// Context advances both axes.
		assert.Equal(t, streamparse.LineContext, lines[0].Kind())
		assert.Equal(t, 10, lines[0].OldLine())
		assert.Equal(t, 10, lines[0].NewLine())

		// Additions advance only the new axis.
		assert.Equal(t, streamparse.LineAddition, lines[1].Kind())
		assert.Equal(t, 11, lines[1].NewLine())
		assert.Equal(t, streamparse.LineAddition, lines[2].Kind())
		assert.Equal(t, 12, lines[2].NewLine())

		// Deletions advance only the old axis.
		assert.Equal(t, streamparse.LineDeletion, lines[3].Kind())
		assert.Equal(t, 11, lines[3].OldLine())

		assert.Equal(t, streamparse.LineContext, lines[4].Kind())
		assert.Equal(t, 12, lines[4].OldLine())
		assert.Equal(t, 13, lines[4].NewLine())
	})

	t.Run("dash and plus content lines stay in their hunk", func(t *testing.T) {
		t.Parallel()

		// Deleting "-- removed" renders as "--- removed"; while the hunk's
		// old-side count is unconsumed that is content, not a path header.
		input := `diff --git a/doc.md b/doc.md
--- a/doc.md
+++ b/doc.md
@@ -1,2 +1,2 @@
 # title
--- removed text
+++ added text
`
		res := streamparse.New().ParseString(input)

		require.Equal(t, 1, res.Stats.Files)
		assert.Equal(t, 3, res.Stats.Lines)

		files := res.FileDiffs()
		assert.Equal(t, "doc.md", files[0].Path)
		require.Len(t, files[0].Hunks, 1)
		assert.Equal(t, []string{"++ added text"}, files[0].Hunks[0].Additions)
		assert.Equal(t, []string{"-- removed text"}, files[0].Hunks[0].Deletions)
	})

	t.Run("exhausted hunk counts release path headers", func(t *testing.T) {
		t.Parallel()

		// Two concatenated plain diffs: the second "---" arrives after the
		// first hunk's counts are spent, so it starts a new file.
		input := `--- a/f.go
+++ b/f.go
@@ -1,1 +1,1 @@
-x
+y
--- a/g.go
+++ b/g.go
@@ -1,1 +1,1 @@
-p
+q
`
		res := streamparse.New().ParseString(input)

		require.Equal(t, 2, res.Stats.Files)
		changes := res.FileChanges()
		assert.Equal(t, "f.go", changes[0].Path)
		assert.Equal(t, "g.go", changes[1].Path)
	})

	t.Run("idempotent across fresh parsers", func(t *testing.T) {
		t.Parallel()

		res1 := streamparse.New().ParseString(twoFileDiff)
		res2 := streamparse.New().ParseString(twoFileDiff)

		assert.Equal(t, res1.Stats.Files, res2.Stats.Files)
		assert.Equal(t, res1.Stats.Hunks, res2.Stats.Hunks)
		assert.Equal(t, res1.Stats.Lines, res2.Stats.Lines)
		assert.Equal(t, res1.Stats.Anomalies, res2.Stats.Anomalies)
		assert.Equal(t, res1.FileDiffs(), res2.FileDiffs())
		assert.Equal(t, res1.Fingerprint(), res2.Fingerprint())
	})
}

func TestParser_Statuses(t *testing.T) {
	t.Parallel()

	t.Run("dev null old path means added", func(t *testing.T) {
		t.Parallel()

		input := `diff --git a/new.go b/new.go
--- /dev/null
+++ b/new.go
@@ -0,0 +1,1 @@
+package main
`
		res := streamparse.New().ParseString(input)
		changes := res.FileChanges()

		require.Len(t, changes, 1)
		assert.Equal(t, narrator.StatusAdded, changes[0].Status)
		assert.Equal(t, "new.go", changes[0].Path)
	})

	t.Run("dev null new path means deleted", func(t *testing.T) {
		t.Parallel()

		input := `diff --git a/old.go b/old.go
--- a/old.go
+++ /dev/null
@@ -1,1 +0,0 @@
-package main
`
		res := streamparse.New().ParseString(input)
		changes := res.FileChanges()

		require.Len(t, changes, 1)
		assert.Equal(t, narrator.StatusDeleted, changes[0].Status)
		assert.Equal(t, "old.go", changes[0].Path)
	})

	t.Run("new file mode means added", func(t *testing.T) {
		t.Parallel()

		input := `diff --git a/hello.go b/hello.go
new file mode 100644
index 0000000..e69de29
--- /dev/null
+++ b/hello.go
@@ -0,0 +1,1 @@
+package main
`
		res := streamparse.New().ParseString(input)

		require.Len(t, res.FileChanges(), 1)
		assert.Equal(t, narrator.StatusAdded, res.FileChanges()[0].Status)
	})

	t.Run("rename pair means renamed", func(t *testing.T) {
		t.Parallel()

		input := `diff --git a/before.go b/after.go
similarity index 95%
rename from before.go
rename to after.go
--- a/before.go
+++ b/after.go
@@ -1,1 +1,1 @@
-x
+y
`
		res := streamparse.New().ParseString(input)
		changes := res.FileChanges()

		require.Len(t, changes, 1)
		assert.Equal(t, narrator.StatusRenamed, changes[0].Status)
		assert.Equal(t, "after.go", changes[0].Path)
		assert.Equal(t, "before.go", changes[0].OldPath)
	})
}

func TestParser_Robustness(t *testing.T) {
	t.Parallel()

	t.Run("never fails on malformed input", func(t *testing.T) {
		t.Parallel()

		inputs := []string{
			"",
			"not a diff at all\njust text\n",
			"diff --git a/x b/x\n@@ garbage @@\n+orphan\n",
			"diff --git mangled header\n",
			"@@ -1,2 +1,2 @@\n no file header\n",
			strings.Repeat("+", 100),
		}
		for _, input := range inputs {
			res := streamparse.New().ParseString(input)
			require.NotNil(t, res)
			_ = res.FileDiffs() // projections must not panic either
		}
	})

	t.Run("truncated hunk keeps parsed prefix", func(t *testing.T) {
		t.Parallel()

		input := `diff --git a/f.go b/f.go
--- a/f.go
+++ b/f.go
@@ -1,5 +1,5 @@
 one
+two`
		res := streamparse.New().ParseString(input)

		assert.Equal(t, 1, res.Stats.Files)
		assert.Equal(t, 1, res.Stats.Hunks)
		assert.Equal(t, 2, res.Stats.Lines)
	})

	t.Run("counts anomalies without aborting", func(t *testing.T) {
		t.Parallel()

		input := `diff --git a/f.go b/f.go
--- a/f.go
+++ b/f.go
@@ -bad +worse @@
junk prefix line
`
		res := streamparse.New().ParseString(input)

		assert.Equal(t, 1, res.Stats.Hunks)
		assert.Equal(t, 2, res.Stats.Anomalies)
	})

	t.Run("plain unified diff without git header", func(t *testing.T) {
		t.Parallel()

		input := `--- a/f.go
+++ b/f.go
@@ -1,1 +1,2 @@
 keep
+add
`
		res := streamparse.New().ParseString(input)

		require.Equal(t, 1, res.Stats.Files)
		assert.Equal(t, "f.go", res.FileChanges()[0].Path)
		assert.Equal(t, 2, res.Stats.Lines)
	})
}

func TestParser_ArenaReuse(t *testing.T) {
	t.Parallel()

	t.Run("caller-supplied arena is reused across parses", func(t *testing.T) {
		t.Parallel()

		arena, err := streamparse.NewArena(4)
		require.NoError(t, err)
		p := streamparse.New(streamparse.WithArena(arena))

		res1 := p.ParseString(twoFileDiff)
		require.Equal(t, 2, res1.Stats.Files)
		files1 := res1.FileDiffs() // eager copy before reuse

		res2 := p.ParseString(lazyDiff)
		require.Equal(t, 1, res2.Stats.Files)

		// The earlier eager projection survives; lazy access does not.
		assert.Equal(t, "alpha.go", files1[0].Path)
		assert.Panics(t, func() { res1.FileDiffs() })
	})

	t.Run("shared interner counts cross-parse hits", func(t *testing.T) {
		t.Parallel()

		in := streamparse.NewInterner()
		p := streamparse.New(streamparse.WithInterner(in))

		p.ParseString(lazyDiff).FileDiffs()
		hitsAfterFirst := in.Stats().Hits
		p.ParseString(lazyDiff).FileDiffs()

		assert.Greater(t, in.Stats().Hits, hitsAfterFirst)
	})
}

func TestParser_Parse(t *testing.T) {
	t.Parallel()

	t.Run("implements the domain parser interface", func(t *testing.T) {
		t.Parallel()

		var parser narrator.Parser = streamparse.New()
		diff, err := parser.Parse(strings.NewReader(twoFileDiff))

		require.NoError(t, err)
		require.Len(t, diff.Files, 2)
		assert.Equal(t, "alpha.go", diff.Files[0].Path)
		assert.Equal(t, "beta.go", diff.Files[1].Path)
	})
}
