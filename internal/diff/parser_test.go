package diff_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/masoncl/review-reply/internal/diff"
	"github.com/masoncl/review-reply/internal/domain"
)

const sampleDiff = `diff --git a/fs/btrfs/inode.c b/fs/btrfs/inode.c
index 1a2b3c4..5d6e7f8 100644
--- a/fs/btrfs/inode.c
+++ b/fs/btrfs/inode.c
@@ -100,7 +100,8 @@ static int btrfs_setsize(struct inode *inode, loff_t newsize)
 	struct btrfs_root *root = BTRFS_I(inode)->root;
 	int ret;

-	truncate_setsize(inode, newsize);
+	ret = btrfs_truncate(inode, newsize);
+	truncate_setsize(inode, newsize);
 	if (ret)
 		return ret;
 	return 0;
@@ -220,6 +221,7 @@ static void btrfs_evict_inode(struct inode *inode)
 	struct btrfs_trans_handle *trans;
 	struct btrfs_root *root;

+	btrfs_drop_extent_cache(inode);
 	trans = btrfs_join_transaction(root);
 	btrfs_end_transaction(trans);
 }
diff --git a/fs/btrfs/extent_map.c b/fs/btrfs/extent_map.c
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
`

func TestParse_Structure(t *testing.T) {
	m, err := diff.Parse(sampleDiff)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	files := m.Files()
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	if files[0].Path() != "fs/btrfs/inode.c" {
		t.Errorf("file 0 path = %q", files[0].Path())
	}
	if len(files[0].Hunks) != 2 {
		t.Errorf("file 0: expected 2 hunks, got %d", len(files[0].Hunks))
	}
	if len(files[0].HeaderLines) != 4 {
		t.Errorf("file 0: expected 4 header lines, got %d", len(files[0].HeaderLines))
	}
	if len(files[1].Hunks) != 1 {
		t.Errorf("file 1: expected 1 hunk, got %d", len(files[1].Hunks))
	}

	header := files[0].Hunks[0].Header
	if !strings.Contains(header, "btrfs_setsize") {
		t.Errorf("hunk header should carry its function context verbatim, got %q", header)
	}
}

func TestParse_RoundTrip(t *testing.T) {
	m, err := diff.Parse(sampleDiff)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	rendered := m.Render(m.FullSelection())
	if diffText := cmp.Diff(sampleDiff, rendered); diffText != "" {
		t.Errorf("full render must reproduce the source byte-for-byte (-want +got):\n%s", diffText)
	}
}

func TestParse_RoundTripNoNewlineMarker(t *testing.T) {
	raw := `diff --git a/a.txt b/a.txt
index 000..111 100644
--- a/a.txt
+++ b/a.txt
@@ -1,1 +1,1 @@
-old line
\ No newline at end of file
+new line
\ No newline at end of file
`

	m, err := diff.Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := m.Render(m.FullSelection()); got != raw {
		t.Errorf("no-newline markers must round-trip:\n%s", cmp.Diff(raw, got))
	}
}

func TestParse_RoundTripNoFinalNewline(t *testing.T) {
	raw := strings.TrimSuffix(sampleDiff, "\n")
	m, err := diff.Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := m.Render(m.FullSelection()); got != raw {
		t.Errorf("missing final newline must round-trip:\n%s", cmp.Diff(raw, got))
	}
}

func TestParse_DevNullPaths(t *testing.T) {
	raw := `diff --git a/new.c b/new.c
new file mode 100644
index 0000000..1111111
--- /dev/null
+++ b/new.c
@@ -0,0 +1,2 @@
+int main(void)
+{
`

	m, err := diff.Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	file := m.Files()[0]
	if file.OldPath != "/dev/null" {
		t.Errorf("OldPath = %q, want /dev/null", file.OldPath)
	}
	if file.Path() != "new.c" {
		t.Errorf("Path() = %q, want new.c", file.Path())
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "empty input",
			raw:  "",
		},
		{
			name: "hunk body before any header",
			raw:  "+stray added line\n",
		},
		{
			name: "file section with no hunks",
			raw: `diff --git a/x.c b/x.c
index 000..111 100644
--- a/x.c
+++ b/x.c
diff --git a/y.c b/y.c
index 000..111 100644
--- a/y.c
+++ b/y.c
@@ -1,1 +1,1 @@
-a
+b
`,
		},
		{
			name: "truncated hunk",
			raw: `diff --git a/x.c b/x.c
--- a/x.c
+++ b/x.c
@@ -1,3 +1,3 @@
 only one line
`,
		},
		{
			name: "invalid hunk header",
			raw: `diff --git a/x.c b/x.c
--- a/x.c
+++ b/x.c
@@ not a range @@
 ctx
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := diff.Parse(tt.raw)
			if err == nil {
				t.Fatal("expected a parse error")
			}
			var malformed *domain.MalformedDiffError
			if !errors.As(err, &malformed) {
				t.Fatalf("error = %T, want *domain.MalformedDiffError", err)
			}
		})
	}
}

func TestParse_MalformedNamesOffendingFile(t *testing.T) {
	raw := `diff --git a/fs/btrfs/inode.c b/fs/btrfs/inode.c
--- a/fs/btrfs/inode.c
+++ b/fs/btrfs/inode.c
@@ -1,2 +1,2 @@
 ctx
`

	_, err := diff.Parse(raw)
	var malformed *domain.MalformedDiffError
	if !errors.As(err, &malformed) {
		t.Fatalf("error = %v, want *domain.MalformedDiffError", err)
	}
	if malformed.Path != "fs/btrfs/inode.c" {
		t.Errorf("error path = %q, want fs/btrfs/inode.c", malformed.Path)
	}
}

func TestRender_SubsetKeepsOriginalOrder(t *testing.T) {
	m, err := diff.Parse(sampleDiff)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	// Select the second file's hunk and the first file's second hunk, in
	// deliberately reversed order. Render must ignore insertion order.
	sel := diff.NewSelection()
	sel.Add(diff.Location{File: 1, Hunk: 0})
	sel.Add(diff.Location{File: 0, Hunk: 1})

	rendered := m.Render(sel)
	inodeIdx := strings.Index(rendered, "fs/btrfs/inode.c")
	extentIdx := strings.Index(rendered, "fs/btrfs/extent_map.c")
	if inodeIdx < 0 || extentIdx < 0 || inodeIdx > extentIdx {
		t.Errorf("files must render in source order:\n%s", rendered)
	}
	if strings.Contains(rendered, "btrfs_setsize") {
		t.Error("unselected hunk leaked into the render")
	}
	if !strings.Contains(rendered, "btrfs_evict_inode") {
		t.Error("selected hunk missing from the render")
	}
}

func TestRender_UnselectedFileDropsHeader(t *testing.T) {
	m, err := diff.Parse(sampleDiff)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	sel := diff.NewSelection()
	sel.Add(diff.Location{File: 0, Hunk: 0})

	rendered := m.Render(sel)
	if strings.Contains(rendered, "extent_map.c") {
		t.Error("file with no selected hunks must not contribute header lines")
	}
}
