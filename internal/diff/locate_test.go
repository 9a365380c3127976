package diff_test

import (
	"testing"

	"github.com/masoncl/review-reply/internal/diff"
)

func TestLocate_TokenMatch(t *testing.T) {
	m, err := diff.Parse(sampleDiff)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	tests := []struct {
		name string
		want []diff.Location
	}{
		{
			name: "btrfs_setsize",
			want: []diff.Location{{File: 0, Hunk: 0}},
		},
		{
			name: "truncate_setsize",
			want: []diff.Location{{File: 0, Hunk: 0}},
		},
		{
			name: "free_extent_map",
			want: []diff.Location{{File: 1, Hunk: 0}},
		},
		{
			// "setsize" is a substring of two identifiers but never a
			// whole token.
			name: "setsize",
			want: nil,
		},
		{
			name: "not_in_diff",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Locate(tt.name)
			if len(got) != len(tt.want) {
				t.Fatalf("Locate(%q) = %v, want %v", tt.name, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Locate(%q)[%d] = %v, want %v", tt.name, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLocate_OrderIsFileThenHunk(t *testing.T) {
	m, err := diff.Parse(sampleDiff)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	// "inode" appears in both hunks of the first file.
	locs := m.Locate("inode")
	if len(locs) < 2 {
		t.Fatalf("expected at least 2 locations, got %v", locs)
	}
	for i := 1; i < len(locs); i++ {
		prev, cur := locs[i-1], locs[i]
		if cur.File < prev.File || (cur.File == prev.File && cur.Hunk <= prev.Hunk) {
			t.Errorf("locations out of order: %v before %v", prev, cur)
		}
	}
}

func TestFunctionContext(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{
			header: "@@ -1,2 +1,2 @@ static int btrfs_setsize(struct inode *inode, loff_t newsize)",
			want:   "btrfs_setsize",
		},
		{
			header: "@@ -1,2 +1,2 @@ void *alloc_thing(void)",
			want:   "alloc_thing",
		},
		{
			header: "@@ -1,2 +1,2 @@ SYSCALL_DEFINE3(read, unsigned int, fd, char __user *, buf)",
			want:   "read",
		},
		{
			header: "@@ -1,2 +1,2 @@ DEFINE_SPINLOCK(my_lock)",
			want:   "my_lock",
		},
		{
			header: "@@ -1,2 +1,2 @@ struct extent_map {",
			want:   "extent_map",
		},
		{
			// Struct-pointer return type: the function name wins over
			// the leading struct tag.
			header: "@@ -1,2 +1,2 @@ struct extent_map *alloc_extent_map(void)",
			want:   "alloc_extent_map",
		},
		{
			header: "@@ -1,2 +1,2 @@",
			want:   "",
		},
		{
			// A keyword before the paren is not a function name.
			header: "@@ -1,2 +1,2 @@ if (cond) {",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			h := hunkWithHeader(t, tt.header)
			if got := h.FunctionContext(); got != tt.want {
				t.Errorf("FunctionContext(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

// hunkWithHeader parses a minimal diff carrying the given hunk header so
// tests exercise FunctionContext through the only public constructor.
func hunkWithHeader(t *testing.T, header string) diff.Hunk {
	t.Helper()
	raw := "diff --git a/x.c b/x.c\n--- a/x.c\n+++ b/x.c\n" + header + "\n"
	// Header ranges in the table all declare small counts; synthesise a
	// matching body of context lines.
	m, err := diff.Parse(raw + " ctx\n ctx\n")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return m.Files()[0].Hunks[0]
}
