package gitsrc

import (
	"fmt"
	"os"
	"strings"

	"github.com/masoncl/review-reply/internal/domain"
)

// FromPatchFile reads a git-show style patch file and returns the same
// (descriptor, diff) pair as Commit, for replying to patches that are not
// in the local repository.
func (s *Source) FromPatchFile(path string) (domain.CommitDescriptor, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.CommitDescriptor{}, "", fmt.Errorf("read patch file: %w", err)
	}
	return parsePatchText(string(raw))
}

// parsePatchText splits git-show output into commit metadata and the diff
// portion. Metadata lives above the first "diff --git" line: the commit
// and Author: headers, then the message indented by four spaces with the
// subject on its first indented line.
func parsePatchText(text string) (domain.CommitDescriptor, string, error) {
	lines := strings.Split(text, "\n")

	var (
		sha         string
		authorLine  string
		subject     string
		body        []string
		pastSubject bool
	)
	diffStart := -1

	for i, line := range lines {
		if strings.HasPrefix(line, "diff --git ") {
			diffStart = i
			break
		}
		switch {
		case strings.HasPrefix(line, "commit "):
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				sha = fields[1]
			}
		case strings.HasPrefix(line, "Author: "):
			authorLine = strings.TrimSpace(line[len("Author: "):])
		case strings.HasPrefix(line, "    "):
			content := line[4:]
			if !pastSubject {
				subject = content
				pastSubject = true
				continue
			}
			body = append(body, content)
		case line == "" && pastSubject:
			// Blank separator inside the message, kept so the summary
			// can stop at the first paragraph boundary.
			body = append(body, "")
		}
	}

	if sha == "" {
		return domain.CommitDescriptor{}, "", fmt.Errorf("patch file has no commit header")
	}
	if diffStart < 0 {
		return domain.CommitDescriptor{}, "", fmt.Errorf("patch file has no diff content")
	}

	desc := domain.NewCommitDescriptor(domain.CommitInput{
		SHA:         sha,
		AuthorLine:  authorLine,
		Subject:     strings.TrimSpace(subject),
		BodySummary: bodySummary(body),
		Links:       extractLinks(body),
	})
	return desc, strings.Join(lines[diffStart:], "\n"), nil
}
