package domain

import "strings"

// CommitDescriptor holds the immutable facts of a reviewed commit, quoted
// verbatim in the report header. Constructed once per compilation and never
// mutated afterwards.
type CommitDescriptor struct {
	SHA         string   // full hex object id
	AuthorLine  string   // verbatim "Name <email>"
	Subject     string   // one line, no trailing period
	BodySummary string   // at most three sentences, derived externally
	Links       []string // Link: trailer URLs, original order, duplicates kept
}

// CommitInput captures the raw values required to build a CommitDescriptor.
type CommitInput struct {
	SHA         string
	AuthorLine  string
	Subject     string
	BodySummary string
	Links       []string
}

// NewCommitDescriptor normalises the subject (single line, trailing period
// stripped) and copies the link list so later callers cannot alias it.
func NewCommitDescriptor(input CommitInput) CommitDescriptor {
	subject := strings.TrimSpace(input.Subject)
	if i := strings.IndexAny(subject, "\r\n"); i >= 0 {
		subject = strings.TrimSpace(subject[:i])
	}
	subject = strings.TrimSuffix(subject, ".")

	links := make([]string, len(input.Links))
	copy(links, input.Links)

	return CommitDescriptor{
		SHA:         strings.TrimSpace(input.SHA),
		AuthorLine:  strings.TrimSpace(input.AuthorLine),
		Subject:     subject,
		BodySummary: strings.TrimSpace(input.BodySummary),
		Links:       links,
	}
}
