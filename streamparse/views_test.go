package streamparse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/better-vibe/branch-narrator/streamparse"
)

func TestResult_Views(t *testing.T) {
	t.Parallel()

	t.Run("hunks and lines are scoped to their owner", func(t *testing.T) {
		t.Parallel()

		// The middle file is a pure rename and owns no hunks.
		input := `diff --git a/alpha.go b/alpha.go
--- a/alpha.go
+++ b/alpha.go
@@ -1,2 +1,3 @@
 const a=1;
+const b=2;
 const c=3;
diff --git a/before.go b/after.go
similarity index 100%
rename from before.go
rename to after.go
diff --git a/gamma.go b/gamma.go
--- a/gamma.go
+++ b/gamma.go
@@ -7,1 +7,1 @@
-p
+q
`
		res := streamparse.New().ParseString(input)
		files := res.Files()
		require.Len(t, files, 3)

		require.Len(t, files[0].Hunks(), 1)
		assert.Empty(t, files[1].Hunks())
		require.Len(t, files[2].Hunks(), 1)

		lines := files[2].Hunks()[0].Lines()
		require.Len(t, lines, 2)
		assert.Equal(t, "p", lines[0].Content().Value())
		assert.Equal(t, "q", lines[1].Content().Value())
	})

	t.Run("multi-hunk files see every hunk's lines", func(t *testing.T) {
		t.Parallel()

		res := streamparse.New().ParseString(twoFileDiff)
		files := res.Files()
		require.Len(t, files, 2)

		hunks := files[0].Hunks()
		require.Len(t, hunks, 2)
		assert.Len(t, hunks[0].Lines(), 3)
		assert.Len(t, hunks[1].Lines(), 2)
		assert.Len(t, files[1].Hunks(), 1)
		assert.Len(t, files[1].Hunks()[0].Lines(), 2)
	})
}
