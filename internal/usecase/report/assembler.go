package report

import (
	"context"
	"strings"

	"github.com/masoncl/review-reply/internal/diff"
	"github.com/masoncl/review-reply/internal/domain"
)

// maxSummarySentences caps the commit summary. Longer input is truncated
// with a warning rather than rejected: presentation nicety, not a
// correctness issue.
const maxSummarySentences = 3

// assembler renders the final plain-text reply body.
type assembler struct {
	logger Logger
}

// assemble produces the reply in strict order: sha, author, subject,
// summary, links, blank line, trimmed diff interleaved with commentary,
// unanchored findings, one trailing blank line. Quoted diff lines carry no
// quote markers and are never wrapped; only commentary is shaped and
// wrapped.
func (asm assembler) assemble(ctx context.Context, desc domain.CommitDescriptor, m *diff.Model, plan trimPlan, anchors []Anchor, summary string) (string, error) {
	if err := checkAnchorsRetained(plan, anchors); err != nil {
		return "", err
	}

	allowTokens := snippetAllowList(anchors)

	var out []string
	out = append(out, desc.SHA)
	out = append(out, "Author: "+desc.AuthorLine)
	out = append(out, desc.Subject)

	if summary == "" {
		summary = desc.BodySummary
	}
	if summary != "" {
		kept, truncated := limitSentences(summary, maxSummarySentences)
		if truncated {
			asm.warn(ctx, "summary exceeds three sentences, truncating", map[string]interface{}{
				"sha": desc.SHA,
			})
		}
		out = append(out, wrapText(styleCommentary(kept, "", allowTokens), wrapWidth)...)
	}

	for _, link := range desc.Links {
		out = append(out, "Link: "+link)
	}
	out = append(out, "")

	out = asm.appendDiff(out, m, plan, anchors)
	out = asm.appendUnanchored(ctx, out, anchors)

	return terminate(out), nil
}

func (asm assembler) warn(ctx context.Context, msg string, fields map[string]interface{}) {
	if asm.logger != nil {
		asm.logger.LogWarning(ctx, msg, fields)
	}
}

// checkAnchorsRetained enforces the trimmer/resolver contract: an anchored
// finding whose hunk was elided is a fatal defect, never something to paper
// over at render time.
func checkAnchorsRetained(plan trimPlan, anchors []Anchor) error {
	for _, a := range anchors {
		if !a.Anchored {
			continue
		}
		if !plan.retained(a.Location) {
			return &domain.InternalConsistencyError{
				Function: a.Finding.AnchorFunction,
				Detail:   "anchor hunk was elided by the trimmer",
			}
		}
	}
	return nil
}

func snippetAllowList(anchors []Anchor) []string {
	var tokens []string
	for _, a := range anchors {
		for _, ref := range a.Finding.SnippetRefs {
			if ref.Text != "" {
				tokens = append(tokens, ref.Text)
			}
		}
	}
	return tokens
}

// appendDiff walks kept files in original order and interleaves commentary
// with the quoted hunks.
func (asm assembler) appendDiff(out []string, m *diff.Model, plan trimPlan, anchors []Anchor) []string {
	byHunk := anchorsByLocation(anchors)

	for fi, f := range m.Files() {
		fp := plan.Files[fi]
		if !fp.Keep {
			continue
		}
		out = append(out, f.HeaderLines...)
		for hi, h := range f.Hunks {
			hp := fp.Hunks[hi]
			if hp.Mode == hunkElide {
				out = append(out, ElisionMarker)
				continue
			}
			out = asm.appendHunk(out, h, hp, byHunk[diff.Location{File: fi, Hunk: hi}])
		}
		out = ensureBlank(out)
	}
	return out
}

// appendHunk quotes one kept hunk, inserting each finding's commentary
// immediately after its snippet-resolved line when one exists, otherwise
// after the hunk.
func (asm assembler) appendHunk(out []string, h diff.Hunk, hp hunkPlan, hunkAnchors []Anchor) []string {
	afterLine := make(map[int][]Anchor)
	var afterHunk []Anchor
	for _, a := range hunkAnchors {
		if len(a.SnippetLines) > 0 {
			idx := a.SnippetLines[0]
			afterLine[idx] = append(afterLine[idx], a)
			continue
		}
		afterHunk = append(afterHunk, a)
	}

	out = append(out, h.Header)

	segments := hp.Segments
	if hp.Mode == hunkKeepFull {
		segments = []lineRange{{From: 0, To: len(h.Lines)}}
	}

	prevEnd := 0
	for _, seg := range segments {
		if seg.From > prevEnd {
			out = append(out, ElisionMarker)
		}
		for i := seg.From; i < seg.To; i++ {
			out = append(out, h.Lines[i].Render())
			for _, a := range afterLine[i] {
				out = asm.appendFindingCommentary(out, a)
			}
		}
		prevEnd = seg.To
	}
	if prevEnd < len(h.Lines) {
		out = append(out, ElisionMarker)
	}

	for _, a := range afterHunk {
		out = asm.appendFindingCommentary(out, a)
	}
	return out
}

// appendFindingCommentary emits one finding's question, blank-line
// separated from the quoted code on both sides.
func (asm assembler) appendFindingCommentary(out []string, a Anchor) []string {
	lines := renderCommentary(a.Finding.QuestionText, a.Finding.ChainReference(), snippetTexts(a.Finding))
	if len(lines) == 0 {
		return out
	}
	out = ensureBlank(out)
	out = append(out, lines...)
	out = append(out, "")
	return out
}

// appendUnanchored renders findings whose subject could not be located in
// the diff. Each gets a neutral lead-in naming the function or chain, since
// no code location could be attached.
func (asm assembler) appendUnanchored(ctx context.Context, out []string, anchors []Anchor) []string {
	for _, a := range anchors {
		if a.Anchored {
			continue
		}
		asm.warn(ctx, "finding could not be anchored in the diff", map[string]interface{}{
			"function": a.Finding.AnchorFunction,
		})
		out = ensureBlank(out)
		leadIn := "Regarding " + a.Finding.ChainReference() + ", which this diff does not touch directly:"
		out = append(out, wrapText(leadIn, wrapWidth)...)
		out = append(out, "")
		out = append(out, renderCommentary(a.Finding.QuestionText, a.Finding.ChainReference(), snippetTexts(a.Finding))...)
	}
	return out
}

func snippetTexts(f domain.Finding) []string {
	var texts []string
	for _, ref := range f.SnippetRefs {
		if ref.Text != "" {
			texts = append(texts, ref.Text)
		}
	}
	return texts
}

// anchorsByLocation groups anchored findings per hunk, preserving finding
// order within each group.
func anchorsByLocation(anchors []Anchor) map[diff.Location][]Anchor {
	grouped := make(map[diff.Location][]Anchor)
	for _, a := range anchors {
		if a.Anchored {
			grouped[a.Location] = append(grouped[a.Location], a)
		}
	}
	return grouped
}

// ensureBlank appends a blank separator line unless one is already there.
func ensureBlank(out []string) []string {
	if len(out) > 0 && out[len(out)-1] != "" {
		out = append(out, "")
	}
	return out
}

// terminate joins the document and normalises the tail to exactly one
// trailing blank line.
func terminate(lines []string) string {
	text := strings.Join(lines, "\n")
	text = strings.TrimRight(text, "\n")
	return text + "\n\n"
}
