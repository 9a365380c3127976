// Package gitsrc retrieves commit facts and first-parent diffs from a
// local git repository. The diff text returned here is authoritative: the
// compiler quotes it byte for byte and never re-derives it.
package gitsrc

import (
	"context"
	"fmt"
	"strings"

	goGit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/masoncl/review-reply/internal/domain"
)

// Source resolves revisions against one repository directory.
type Source struct {
	repoDir string
}

// NewSource constructs a commit source for the provided repository
// directory.
func NewSource(repoDir string) *Source {
	return &Source{repoDir: repoDir}
}

// Commit resolves a revision (hash, branch, tag, HEAD~n) and returns the
// commit descriptor plus the raw unified diff against the first parent.
// A root commit is diffed against the empty tree.
func (s *Source) Commit(ctx context.Context, ref string) (domain.CommitDescriptor, string, error) {
	repo, err := goGit.PlainOpenWithOptions(s.repoDir, &goGit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return domain.CommitDescriptor{}, "", fmt.Errorf("open repo: %w", err)
	}

	commit, err := resolveCommit(repo, ref)
	if err != nil {
		return domain.CommitDescriptor{}, "", fmt.Errorf("resolve ref %s: %w", ref, err)
	}

	diffText, err := firstParentDiff(ctx, commit)
	if err != nil {
		return domain.CommitDescriptor{}, "", fmt.Errorf("diff %s: %w", commit.Hash, err)
	}

	return describeCommit(commit), diffText, nil
}

func resolveCommit(repo *goGit.Repository, ref string) (*object.Commit, error) {
	candidates := []string{
		ref,
		fmt.Sprintf("refs/heads/%s", ref),
		fmt.Sprintf("refs/tags/%s", ref),
		fmt.Sprintf("refs/remotes/origin/%s", ref),
	}

	var lastErr error
	for _, candidate := range candidates {
		hash, err := repo.ResolveRevision(plumbing.Revision(candidate))
		if err != nil {
			lastErr = err
			continue
		}
		return repo.CommitObject(*hash)
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("unable to resolve ref %s", ref)
}

func firstParentDiff(ctx context.Context, commit *object.Commit) (string, error) {
	if commit.NumParents() == 0 {
		tree, err := commit.Tree()
		if err != nil {
			return "", fmt.Errorf("commit tree: %w", err)
		}
		changes, err := object.DiffTreeWithOptions(ctx, nil, tree, object.DefaultDiffTreeOptions)
		if err != nil {
			return "", fmt.Errorf("diff against empty tree: %w", err)
		}
		patch, err := changes.PatchContext(ctx)
		if err != nil {
			return "", fmt.Errorf("compute patch: %w", err)
		}
		return patch.String(), nil
	}

	parent, err := commit.Parent(0)
	if err != nil {
		return "", fmt.Errorf("first parent: %w", err)
	}
	patch, err := parent.PatchContext(ctx, commit)
	if err != nil {
		return "", fmt.Errorf("compute patch: %w", err)
	}
	return patch.String(), nil
}

func describeCommit(commit *object.Commit) domain.CommitDescriptor {
	subject, body := splitMessage(commit.Message)
	return domain.NewCommitDescriptor(domain.CommitInput{
		SHA:         commit.Hash.String(),
		AuthorLine:  fmt.Sprintf("%s <%s>", commit.Author.Name, commit.Author.Email),
		Subject:     subject,
		BodySummary: bodySummary(body),
		Links:       extractLinks(body),
	})
}

// splitMessage separates the subject line from the rest of the commit
// message.
func splitMessage(message string) (subject string, body []string) {
	lines := strings.Split(strings.TrimRight(message, "\n"), "\n")
	subject = strings.TrimSpace(lines[0])
	if len(lines) > 1 {
		body = lines[1:]
	}
	return subject, body
}

// bodySummary returns the first prose paragraph of the body, skipping
// trailer lines. Kernel commit messages open with a short description, so
// the first paragraph is the natural summary.
func bodySummary(body []string) string {
	var paragraph []string
	started := false
	for _, line := range body {
		line = strings.TrimSpace(line)
		if line == "" {
			if started {
				break
			}
			continue
		}
		if isTrailer(line) {
			if started {
				break
			}
			continue
		}
		paragraph = append(paragraph, line)
		started = true
	}
	return strings.Join(paragraph, " ")
}

// extractLinks collects Link: trailer values in order, duplicates
// included. Link trailers carry provenance, so repetition is preserved.
func extractLinks(body []string) []string {
	var links []string
	for _, line := range body {
		line = strings.TrimSpace(line)
		if value, ok := strings.CutPrefix(line, "Link: "); ok {
			links = append(links, strings.TrimSpace(value))
		}
	}
	return links
}

var trailerPrefixes = []string{
	"Fixes:",
	"Cc:",
	"Signed-off-by:",
	"Reviewed-by:",
	"Acked-by:",
	"Tested-by:",
	"Reported-by:",
	"Suggested-by:",
	"Co-developed-by:",
	"Link:",
	"Closes:",
}

func isTrailer(line string) bool {
	for _, prefix := range trailerPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
