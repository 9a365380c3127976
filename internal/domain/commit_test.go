package domain_test

import (
	"errors"
	"testing"

	"github.com/masoncl/review-reply/internal/domain"
)

func TestNewCommitDescriptor_StripsTrailingPeriod(t *testing.T) {
	desc := domain.NewCommitDescriptor(domain.CommitInput{
		SHA:     "abc123",
		Subject: "btrfs: fix extent map leak.",
	})
	if desc.Subject != "btrfs: fix extent map leak" {
		t.Errorf("expected trailing period stripped, got %q", desc.Subject)
	}
}

func TestNewCommitDescriptor_SingleLineSubject(t *testing.T) {
	desc := domain.NewCommitDescriptor(domain.CommitInput{
		Subject: "net: fix refcount\nleftover second line",
	})
	if desc.Subject != "net: fix refcount" {
		t.Errorf("expected first line only, got %q", desc.Subject)
	}
}

func TestNewCommitDescriptor_CopiesLinks(t *testing.T) {
	links := []string{"https://lore.kernel.org/r/1", "https://lore.kernel.org/r/1"}
	desc := domain.NewCommitDescriptor(domain.CommitInput{Links: links})

	links[0] = "mutated"
	if desc.Links[0] != "https://lore.kernel.org/r/1" {
		t.Error("descriptor links should not alias the input slice")
	}
	if len(desc.Links) != 2 {
		t.Errorf("duplicates must be preserved, got %d links", len(desc.Links))
	}
}

func TestChainReference(t *testing.T) {
	tests := []struct {
		name    string
		finding domain.Finding
		want    string
	}{
		{
			name:    "bare function",
			finding: domain.Finding{AnchorFunction: "foo"},
			want:    "foo()",
		},
		{
			name:    "call chain",
			finding: domain.Finding{AnchorFunction: "bar", AnchorChain: []string{"foo", "bar"}},
			want:    "foo()->bar()",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.finding.ChainReference(); got != tt.want {
				t.Errorf("ChainReference() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMalformedDiffError_NamesPath(t *testing.T) {
	err := error(&domain.MalformedDiffError{Path: "fs/btrfs/inode.c", Reason: "hunk body before @@ header"})
	want := "malformed diff in fs/btrfs/inode.c: hunk body before @@ header"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	var target *domain.MalformedDiffError
	if !errors.As(err, &target) {
		t.Error("errors.As should unwrap MalformedDiffError")
	}
}
