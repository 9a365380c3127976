package report

import (
	"sort"

	"github.com/masoncl/review-reply/internal/diff"
)

// ElisionMarker is the literal line that stands in for dropped code.
const ElisionMarker = "[ ... ]"

// AdjacentMode selects how a non-anchor hunk next to an anchor hunk is
// handled.
type AdjacentMode string

const (
	// AdjacentAuto keeps an adjacent hunk only when it shares an
	// identifier with the anchor hunk's changed lines, the "defines a
	// variable the anchor uses" heuristic.
	AdjacentAuto AdjacentMode = "auto"
	// AdjacentAlways keeps every adjacent hunk in full.
	AdjacentAlways AdjacentMode = "always"
	// AdjacentNever elides every adjacent hunk.
	AdjacentNever AdjacentMode = "never"
)

// Policy holds the tunable trimming thresholds. The source material gives
// only qualitative guidance here, so the numbers live in configuration
// rather than in the rules.
type Policy struct {
	AdjacentMode AdjacentMode
	// LargeHunkLines is the line count above which an anchor hunk becomes
	// eligible for mid-hunk elision.
	LargeHunkLines int
	// KeepHeadLines is how many leading lines of a partially kept anchor
	// hunk survive, preserving the declaration/entry region.
	KeepHeadLines int
	// RelevantPadLines is the context pad kept around the lines under
	// discussion inside a partially kept anchor hunk.
	RelevantPadLines int
}

// DefaultPolicy returns the thresholds used when configuration supplies
// none.
func DefaultPolicy() Policy {
	return Policy{
		AdjacentMode:     AdjacentAuto,
		LargeHunkLines:   60,
		KeepHeadLines:    3,
		RelevantPadLines: 2,
	}
}

func (p Policy) normalised() Policy {
	switch p.AdjacentMode {
	case AdjacentAuto, AdjacentAlways, AdjacentNever:
	default:
		p.AdjacentMode = AdjacentAuto
	}
	if p.LargeHunkLines <= 0 {
		p.LargeHunkLines = DefaultPolicy().LargeHunkLines
	}
	if p.KeepHeadLines <= 0 {
		p.KeepHeadLines = DefaultPolicy().KeepHeadLines
	}
	if p.RelevantPadLines < 0 {
		p.RelevantPadLines = DefaultPolicy().RelevantPadLines
	}
	return p
}

// hunkMode is the trimming decision for a single hunk of a kept file.
type hunkMode int

const (
	hunkKeepFull hunkMode = iota
	hunkElide
	hunkKeepPartial
)

// lineRange is a half-open [From, To) span of hunk line indexes.
type lineRange struct {
	From, To int
}

// hunkPlan records the decision for one hunk. For hunkKeepPartial the kept
// segments are in order; each gap between them, and any gap before the
// first or after the last line, renders as one elision marker. The hunk
// header always survives.
type hunkPlan struct {
	Mode     hunkMode
	Segments []lineRange
}

// filePlan records the fate of one file section.
type filePlan struct {
	Keep  bool
	Hunks []hunkPlan
}

// trimPlan is the full trimming decision for a diff.
type trimPlan struct {
	Files []filePlan
}

// retained reports whether the plan keeps the hunk at loc in some form.
// Anchor hunks are always retained; a plan that says otherwise is an
// internal consistency defect caught by the assembler.
func (p trimPlan) retained(loc diff.Location) bool {
	if loc.File >= len(p.Files) {
		return false
	}
	fp := p.Files[loc.File]
	if !fp.Keep || loc.Hunk >= len(fp.Hunks) {
		return false
	}
	return fp.Hunks[loc.Hunk].Mode != hunkElide
}

// trim applies the selection rules in priority order: anchor hunks are kept
// (in full, or with marked mid-hunk elision when very large); adjacent
// hunks are kept or elided per policy; all other hunks in a kept file elide
// to a single marker; files owning no anchor hunk vanish wholesale, header
// included.
func trim(m *diff.Model, anchors []Anchor, pol Policy) trimPlan {
	pol = pol.normalised()

	type hunkAnchors map[int][]Anchor // hunk index -> anchors on it
	anchorsByFile := make(map[int]hunkAnchors)
	for _, a := range anchors {
		if !a.Anchored {
			continue
		}
		byHunk, ok := anchorsByFile[a.Location.File]
		if !ok {
			byHunk = make(hunkAnchors)
			anchorsByFile[a.Location.File] = byHunk
		}
		byHunk[a.Location.Hunk] = append(byHunk[a.Location.Hunk], a)
	}

	files := m.Files()
	plan := trimPlan{Files: make([]filePlan, len(files))}
	for fi, f := range files {
		byHunk := anchorsByFile[fi]
		if len(byHunk) == 0 {
			continue // file dropped entirely
		}
		fp := filePlan{Keep: true, Hunks: make([]hunkPlan, len(f.Hunks))}
		for hi, h := range f.Hunks {
			switch {
			case len(byHunk[hi]) > 0:
				fp.Hunks[hi] = planAnchorHunk(h, byHunk[hi], pol)
			case len(byHunk[hi-1]) > 0 || len(byHunk[hi+1]) > 0:
				fp.Hunks[hi] = planAdjacentHunk(f, h, hi, byHunk, pol)
			default:
				fp.Hunks[hi] = hunkPlan{Mode: hunkElide}
			}
		}
		plan.Files[fi] = fp
	}
	return plan
}

// planAnchorHunk keeps an anchor hunk in full unless it is very large, in
// which case the head and a pad around the lines under discussion survive
// and the unrelated stretches collapse to elision markers.
func planAnchorHunk(h diff.Hunk, anchors []Anchor, pol Policy) hunkPlan {
	if len(h.Lines) <= pol.LargeHunkLines {
		return hunkPlan{Mode: hunkKeepFull}
	}

	relevant := relevantLines(h, anchors)
	if len(relevant) == 0 {
		// Nothing to narrow on: fidelity wins over brevity.
		return hunkPlan{Mode: hunkKeepFull}
	}

	var segments []lineRange
	segments = append(segments, lineRange{From: 0, To: min(pol.KeepHeadLines, len(h.Lines))})
	for _, idx := range relevant {
		segments = append(segments, lineRange{
			From: max(0, idx-pol.RelevantPadLines),
			To:   min(len(h.Lines), idx+pol.RelevantPadLines+1),
		})
	}
	segments = mergeRanges(segments)

	if len(segments) == 1 && segments[0].From == 0 && segments[0].To == len(h.Lines) {
		return hunkPlan{Mode: hunkKeepFull}
	}
	return hunkPlan{Mode: hunkKeepPartial, Segments: segments}
}

// relevantLines are the hunk lines commentary is about: the resolved
// snippet lines when any exist, otherwise every line containing the anchor
// function token.
func relevantLines(h diff.Hunk, anchors []Anchor) []int {
	seen := make(map[int]bool)
	var idxs []int
	add := func(i int) {
		if !seen[i] {
			seen[i] = true
			idxs = append(idxs, i)
		}
	}

	for _, a := range anchors {
		if len(a.SnippetLines) > 0 {
			for _, i := range a.SnippetLines {
				add(i)
			}
			continue
		}
		for i, line := range h.Lines {
			if line.Kind == diff.LineNoNewline {
				continue
			}
			if tokenInLine(line.Text, a.Finding.AnchorFunction) {
				add(i)
			}
		}
	}
	sort.Ints(idxs)
	return idxs
}

// planAdjacentHunk decides whether a neighbour of an anchor hunk earns a
// full quote or an elision marker.
func planAdjacentHunk(f diff.File, h diff.Hunk, hi int, byHunk map[int][]Anchor, pol Policy) hunkPlan {
	switch pol.AdjacentMode {
	case AdjacentAlways:
		return hunkPlan{Mode: hunkKeepFull}
	case AdjacentNever:
		return hunkPlan{Mode: hunkElide}
	}

	// Auto: keep when the neighbour shares an identifier with the anchor
	// hunk's changed lines, e.g. it declares a variable the anchored code
	// uses.
	for _, neighbour := range []int{hi - 1, hi + 1} {
		if neighbour < 0 || neighbour >= len(f.Hunks) || len(byHunk[neighbour]) == 0 {
			continue
		}
		if sharesIdentifier(h, f.Hunks[neighbour]) {
			return hunkPlan{Mode: hunkKeepFull}
		}
	}
	return hunkPlan{Mode: hunkElide}
}

// sharesIdentifier reports whether any identifier from the anchor hunk's
// added/removed lines occurs in the candidate hunk.
func sharesIdentifier(candidate, anchor diff.Hunk) bool {
	for token := range changedIdentifiers(anchor) {
		if candidate.ContainsToken(token) {
			return true
		}
	}
	return false
}

// changedIdentifiers collects identifier tokens from a hunk's added and
// removed lines, skipping short names and C keywords that would match
// almost anything.
func changedIdentifiers(h diff.Hunk) map[string]bool {
	tokens := make(map[string]bool)
	for _, line := range h.Lines {
		if line.Kind != diff.LineAdded && line.Kind != diff.LineRemoved {
			continue
		}
		for _, tok := range splitIdentifiers(line.Text) {
			if len(tok) >= 4 && !commonCToken(tok) {
				tokens[tok] = true
			}
		}
	}
	return tokens
}

func splitIdentifiers(s string) []string {
	var tokens []string
	start := -1
	for i := 0; i <= len(s); i++ {
		isIdent := i < len(s) && (s[i] == '_' ||
			(s[i] >= 'a' && s[i] <= 'z') ||
			(s[i] >= 'A' && s[i] <= 'Z') ||
			(s[i] >= '0' && s[i] <= '9'))
		if isIdent && start < 0 {
			start = i
		}
		if !isIdent && start >= 0 {
			tokens = append(tokens, s[start:i])
			start = -1
		}
	}
	return tokens
}

func commonCToken(tok string) bool {
	switch tok {
	case "struct", "union", "enum", "const", "static", "return", "sizeof",
		"void", "long", "unsigned", "signed", "NULL", "true", "false",
		"else", "break", "continue", "goto", "while", "switch", "case":
		return true
	}
	return false
}

// tokenInLine mirrors the diff package's whole-token rule for a single
// line of text.
func tokenInLine(text, name string) bool {
	if name == "" {
		return false
	}
	for _, tok := range splitIdentifiers(text) {
		if tok == name {
			return true
		}
	}
	return false
}

func mergeRanges(ranges []lineRange) []lineRange {
	if len(ranges) == 0 {
		return nil
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].From < ranges[j].From })
	merged := []lineRange{ranges[0]}
	for _, r := range ranges[1:] {
		last := &merged[len(merged)-1]
		if r.From <= last.To {
			if r.To > last.To {
				last.To = r.To
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}
