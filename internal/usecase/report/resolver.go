package report

import (
	"sort"
	"strings"

	"github.com/masoncl/review-reply/internal/diff"
	"github.com/masoncl/review-reply/internal/domain"
)

// Anchor ties one finding to the hunk it is about. Unanchored findings keep
// their finding but carry no location; they are rendered after the diff,
// never dropped.
type Anchor struct {
	Finding  domain.Finding
	Location diff.Location
	Anchored bool

	// SnippetLines are indexes into the anchor hunk's line list where a
	// snippet ref was found, in hunk order. Empty when no snippet
	// resolved; commentary then attaches after the hunk instead of after
	// a specific line.
	SnippetLines []int
}

// chainWindow bounds how far apart (in hunk-list positions) two hunks may
// be for chain members to count as "nearby" during disambiguation.
const chainWindow = 2

// resolveAnchors maps each finding onto the diff. The tie-break order is
// deliberate and deterministic: a single locate hit wins outright; multiple
// hits are narrowed by call-chain proximity, then by an exact match against
// the hunk header's function context, and any remaining tie falls back to
// original file order, then hunk order.
func resolveAnchors(m *diff.Model, findings []domain.Finding) []Anchor {
	anchors := make([]Anchor, 0, len(findings))
	for _, f := range findings {
		anchors = append(anchors, resolveOne(m, f))
	}
	return anchors
}

func resolveOne(m *diff.Model, f domain.Finding) Anchor {
	candidates := m.Locate(f.AnchorFunction)
	if len(candidates) == 0 {
		return Anchor{Finding: f}
	}

	if len(candidates) > 1 && len(f.AnchorChain) > 0 {
		if narrowed := narrowByChain(m, f, candidates); len(narrowed) > 0 {
			candidates = narrowed
		}
	}

	if len(candidates) > 1 {
		if narrowed := narrowByHeaderContext(m, f.AnchorFunction, candidates); len(narrowed) > 0 {
			candidates = narrowed
		}
	}

	// Locate returns locations in file then hunk order, and both narrowing
	// passes preserve that order, so the first candidate is the final
	// tie-break.
	loc := candidates[0]
	return Anchor{
		Finding:      f,
		Location:     loc,
		Anchored:     true,
		SnippetLines: resolveSnippets(m.Hunk(loc), f.SnippetRefs),
	}
}

// narrowByChain keeps candidates whose file also contains every other
// chain member within chainWindow hunk positions.
func narrowByChain(m *diff.Model, f domain.Finding, candidates []diff.Location) []diff.Location {
	var kept []diff.Location
	for _, cand := range candidates {
		if chainMembersNearby(m, f, cand) {
			kept = append(kept, cand)
		}
	}
	return kept
}

func chainMembersNearby(m *diff.Model, f domain.Finding, cand diff.Location) bool {
	for _, member := range f.AnchorChain {
		if member == f.AnchorFunction {
			continue
		}
		found := false
		for _, loc := range m.Locate(member) {
			if loc.File != cand.File {
				continue
			}
			dist := loc.Hunk - cand.Hunk
			if dist < 0 {
				dist = -dist
			}
			if dist <= chainWindow {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// narrowByHeaderContext keeps candidates whose hunk header names the anchor
// function exactly. An exact header match beats a body-text match.
func narrowByHeaderContext(m *diff.Model, name string, candidates []diff.Location) []diff.Location {
	var kept []diff.Location
	for _, cand := range candidates {
		if m.Hunk(cand).FunctionContext() == name {
			kept = append(kept, cand)
		}
	}
	return kept
}

// resolveSnippets finds each snippet ref inside the anchor hunk, returning
// sorted unique line indexes. Unresolvable snippets are simply skipped; the
// commentary still quotes them in prose.
func resolveSnippets(h diff.Hunk, refs []domain.SnippetRef) []int {
	seen := make(map[int]bool)
	var idxs []int
	for _, ref := range refs {
		if ref.Text == "" {
			continue
		}
		for i, line := range h.Lines {
			if line.Kind == diff.LineNoNewline {
				continue
			}
			if !seen[i] && strings.Contains(line.Text, ref.Text) {
				seen[i] = true
				idxs = append(idxs, i)
				break
			}
		}
	}
	sort.Ints(idxs)
	return idxs
}
