package report_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masoncl/review-reply/internal/domain"
	"github.com/masoncl/review-reply/internal/usecase/report"
)

// compileDiff touches two files; findings in the tests anchor only into
// the first.
const compileDiff = `diff --git a/fs/btrfs/extent_map.c b/fs/btrfs/extent_map.c
index aabbccd..ddeeff0 100644
--- a/fs/btrfs/extent_map.c
+++ b/fs/btrfs/extent_map.c
@@ -40,5 +40,6 @@ void free_extent_map(struct extent_map *em)
 {
 	if (!em)
 		return;
+	WARN_ON(refcount_read(&em->refs) == 0);
 	refcount_dec(&em->refs);
 }
@@ -80,4 +80,5 @@ void replace_extent_map(struct extent_map *em)
 {
 	write_lock(&tree->lock);
+	validate_extent_map(em);
 	write_unlock(&tree->lock);
 }
diff --git a/fs/btrfs/inode.c b/fs/btrfs/inode.c
index 1122334..5566778 100644
--- a/fs/btrfs/inode.c
+++ b/fs/btrfs/inode.c
@@ -10,4 +10,5 @@ static int btrfs_setsize(struct inode *inode)
 {
 	int ret = 0;
+	btrfs_drop_extent_cache(inode);
 	return ret;
 }
`

func testCommit() domain.CommitDescriptor {
	return domain.NewCommitDescriptor(domain.CommitInput{
		SHA:         "4f2a9c0db6d3e8b15a7c1f90233ab4cd5e6f7081",
		AuthorLine:  "Jane Hacker <jane@example.org>",
		Subject:     "btrfs: warn on freeing an extent map with zero refs",
		BodySummary: "The refcount can already be zero on the error path. This adds a warning before the decrement.",
		Links:       []string{"https://lore.kernel.org/r/abc123", "https://lore.kernel.org/r/abc123"},
	})
}

func newTestCompiler() *report.Compiler {
	return report.NewCompiler(report.CompilerDeps{})
}

func TestCompile_HeaderStructure(t *testing.T) {
	compiler := newTestCompiler()
	res, err := compiler.Compile(context.Background(), report.Request{
		Commit:   testCommit(),
		DiffText: compileDiff,
		Findings: []domain.Finding{
			{AnchorFunction: "free_extent_map", QuestionText: "Is the refcount ever legitimately zero here?"},
		},
	})
	require.NoError(t, err)

	lines := strings.Split(res.Body, "\n")
	assert.Equal(t, "4f2a9c0db6d3e8b15a7c1f90233ab4cd5e6f7081", lines[0])
	assert.Equal(t, "Author: Jane Hacker <jane@example.org>", lines[1])
	assert.Equal(t, "btrfs: warn on freeing an extent map with zero refs", lines[2])

	// Both duplicate links survive, in order, before the blank separator.
	linkCount := 0
	for _, l := range lines {
		if strings.HasPrefix(l, "Link: ") {
			linkCount++
		}
	}
	assert.Equal(t, 2, linkCount)

	assert.True(t, strings.HasSuffix(res.Body, "\n\n"), "document must end with one trailing blank line")
	assert.False(t, strings.HasSuffix(res.Body, "\n\n\n"), "document must end with exactly one trailing blank line")
}

func TestCompile_UnrelatedFileAbsent(t *testing.T) {
	compiler := newTestCompiler()
	res, err := compiler.Compile(context.Background(), report.Request{
		Commit:   testCommit(),
		DiffText: compileDiff,
		Findings: []domain.Finding{
			{AnchorFunction: "free_extent_map", QuestionText: "Why warn instead of bailing out?"},
		},
	})
	require.NoError(t, err)

	assert.NotContains(t, res.Body, "inode.c", "file with no anchored finding must vanish, header included")
	assert.Contains(t, res.Body, "diff --git a/fs/btrfs/extent_map.c b/fs/btrfs/extent_map.c")
	assert.Contains(t, res.Body, report.ElisionMarker, "the non-adjacent second hunk elides to a marker")
	assert.Equal(t, 1, res.Anchored)
	assert.Equal(t, 0, res.Unanchored)
}

func TestCompile_QuotedDiffBytesVerbatim(t *testing.T) {
	compiler := newTestCompiler()
	res, err := compiler.Compile(context.Background(), report.Request{
		Commit:   testCommit(),
		DiffText: compileDiff,
		Findings: []domain.Finding{
			{AnchorFunction: "free_extent_map", QuestionText: "Can this fire spuriously?"},
		},
	})
	require.NoError(t, err)

	// Every quoted line keeps its marker and tabs exactly as in the source.
	assert.Contains(t, res.Body, "+\tWARN_ON(refcount_read(&em->refs) == 0);")
	assert.Contains(t, res.Body, " \trefcount_dec(&em->refs);")
	assert.Contains(t, res.Body, "@@ -40,5 +40,6 @@ void free_extent_map(struct extent_map *em)")
	assert.NotContains(t, res.Body, "> ", "reply body carries no quote markers")
}

func TestCompile_CommentaryWrappedAt78(t *testing.T) {
	longQuestion := strings.Repeat("this clause keeps the sentence going and going ", 6) + "so does the decrement still pair with the earlier increment?"

	compiler := newTestCompiler()
	res, err := compiler.Compile(context.Background(), report.Request{
		Commit:   testCommit(),
		DiffText: compileDiff,
		Findings: []domain.Finding{
			{AnchorFunction: "free_extent_map", QuestionText: longQuestion},
			{
				// Unanchored with a long chain: the lead-in line has to
				// wrap like any other commentary.
				AnchorFunction: "btrfs_run_delayed_refs_for_head",
				AnchorChain: []string{
					"btrfs_run_delayed_refs_for_head",
					"btrfs_delayed_ref_lock_and_validate",
				},
				QuestionText: "Does the consistency check still hold?",
			},
		},
	})
	require.NoError(t, err)

	assert.Contains(t, res.Body, "Regarding")
	for _, line := range strings.Split(res.Body, "\n") {
		if isQuotedDiffLine(line) {
			continue
		}
		assert.LessOrEqual(t, len(line), 78, "commentary line too long: %q", line)
	}
}

func isQuotedDiffLine(line string) bool {
	return strings.HasPrefix(line, "diff --git") ||
		strings.HasPrefix(line, "index ") ||
		strings.HasPrefix(line, "--- ") ||
		strings.HasPrefix(line, "+++ ") ||
		strings.HasPrefix(line, "@@") ||
		strings.HasPrefix(line, "+") ||
		strings.HasPrefix(line, "-") ||
		strings.HasPrefix(line, " ") ||
		strings.HasPrefix(line, "\\")
}

func TestCompile_NoShoutingOutsideSnippets(t *testing.T) {
	compiler := newTestCompiler()
	res, err := compiler.Compile(context.Background(), report.Request{
		Commit:   testCommit(),
		DiffText: compileDiff,
		Findings: []domain.Finding{
			{
				AnchorFunction: "free_extent_map",
				QuestionText:   "This is DEFINITELY wrong because WARN_ON can trigger here. Should it?",
				SnippetRefs:    []domain.SnippetRef{{Text: "WARN_ON(refcount_read(&em->refs) == 0)"}},
			},
		},
	})
	require.NoError(t, err)

	assert.Contains(t, res.Body, "definitely", "non-snippet shouting gets lowercased")
	assert.Contains(t, res.Body, "WARN_ON can trigger", "verbatim snippet tokens stay uppercase")
}

func TestCompile_LineNumberReferencesRewritten(t *testing.T) {
	compiler := newTestCompiler()
	res, err := compiler.Compile(context.Background(), report.Request{
		Commit:   testCommit(),
		DiffText: compileDiff,
		Findings: []domain.Finding{
			{AnchorFunction: "free_extent_map", QuestionText: "The check at line 44 seems late. Should it move up?"},
		},
	})
	require.NoError(t, err)

	assert.NotContains(t, res.Body, "line 44")
	assert.Contains(t, res.Body, "free_extent_map()")
}

func TestCompile_UnanchoredFindingAppended(t *testing.T) {
	compiler := newTestCompiler()
	res, err := compiler.Compile(context.Background(), report.Request{
		Commit:   testCommit(),
		DiffText: compileDiff,
		Findings: []domain.Finding{
			{AnchorFunction: "free_extent_map", QuestionText: "Is the warning reachable?"},
			{AnchorFunction: "missing_function", QuestionText: "Does the caller hold the tree lock?"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Unanchored)
	assert.Contains(t, res.Body, "Regarding missing_function()")
	assert.Contains(t, res.Body, "Does the caller hold the tree lock?")

	// The unanchored section follows all quoted diff content.
	unanchoredIdx := strings.Index(res.Body, "Regarding missing_function()")
	lastDiffIdx := strings.LastIndex(res.Body, "@@")
	assert.Greater(t, unanchoredIdx, lastDiffIdx)
}

func TestCompile_FiveSentenceSummaryTruncated(t *testing.T) {
	commit := testCommit()
	commit.BodySummary = "One thing. Second thing. Third thing. Fourth thing. Fifth thing."

	compiler := newTestCompiler()
	res, err := compiler.Compile(context.Background(), report.Request{
		Commit:   commit,
		DiffText: compileDiff,
		Findings: []domain.Finding{
			{AnchorFunction: "free_extent_map", QuestionText: "Why here?"},
		},
	})
	require.NoError(t, err)

	assert.Contains(t, res.Body, "Third thing.")
	assert.NotContains(t, res.Body, "Fourth thing.")
}

func TestCompile_Idempotent(t *testing.T) {
	compiler := newTestCompiler()
	req := report.Request{
		Commit:   testCommit(),
		DiffText: compileDiff,
		Findings: []domain.Finding{
			{AnchorFunction: "free_extent_map", QuestionText: "Is this reachable?"},
			{AnchorFunction: "nowhere", QuestionText: "What about the caller?"},
		},
	}

	first, err := compiler.Compile(context.Background(), req)
	require.NoError(t, err)
	second, err := compiler.Compile(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Body, second.Body, "same inputs must produce byte-identical output")
	assert.Equal(t, report.InputHash(req), report.InputHash(req))
}

func TestCompile_MalformedDiffAborts(t *testing.T) {
	compiler := newTestCompiler()
	_, err := compiler.Compile(context.Background(), report.Request{
		Commit:   testCommit(),
		DiffText: "+stray line with no header\n",
		Findings: nil,
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "malformed diff")
}

func TestCompile_SnippetCommentaryPlacedAfterLine(t *testing.T) {
	compiler := newTestCompiler()
	res, err := compiler.Compile(context.Background(), report.Request{
		Commit:   testCommit(),
		DiffText: compileDiff,
		Findings: []domain.Finding{
			{
				AnchorFunction: "free_extent_map",
				QuestionText:   "Could the refcount already be zero at this point?",
				SnippetRefs:    []domain.SnippetRef{{Text: "refcount_dec(&em->refs)"}},
			},
		},
	})
	require.NoError(t, err)

	decIdx := strings.Index(res.Body, "refcount_dec(&em->refs);")
	commentIdx := strings.Index(res.Body, "Could the refcount already be zero")
	closeBraceIdx := strings.LastIndex(res.Body, " }")
	require.GreaterOrEqual(t, decIdx, 0)
	require.GreaterOrEqual(t, commentIdx, 0)
	assert.Greater(t, commentIdx, decIdx, "commentary attaches after the snippet line")
	assert.Greater(t, closeBraceIdx, commentIdx, "quoting resumes after the commentary")
}
