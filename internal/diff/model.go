package diff

import "strings"

// LineKind classifies a single line inside a hunk.
type LineKind int

const (
	// LineContext is an unchanged line (leading ' ' in the diff).
	LineContext LineKind = iota
	// LineAdded is an added line (leading '+').
	LineAdded
	// LineRemoved is a removed line (leading '-').
	LineRemoved
	// LineNoNewline is a "\ No newline at end of file" marker. It belongs
	// to the hunk of the line it annotates and round-trips verbatim.
	LineNoNewline
)

// Line is a single line of a hunk. Text excludes the leading marker byte,
// which is reconstructed at render time. A Line is owned exclusively by its
// Hunk and never shared.
type Line struct {
	Kind LineKind
	Text string

	// bare records a context line that appeared with no leading space at
	// all (some diff producers emit empty context lines that way). Render
	// must reproduce the original byte sequence, not normalise it.
	bare bool
}

// Render reconstructs the original diff line including its marker.
func (l Line) Render() string {
	switch l.Kind {
	case LineAdded:
		return "+" + l.Text
	case LineRemoved:
		return "-" + l.Text
	case LineNoNewline:
		return l.Text
	default:
		if l.bare {
			return l.Text
		}
		return " " + l.Text
	}
}

// Hunk is a contiguous block bounded by an "@@ ... @@" header. Hunks are
// addressed by position in the file's hunk list, never by numeric offset.
type Hunk struct {
	// Header is the raw "@@ ... @@" line including any trailing function
	// context the diff tool emitted. It is copied, never re-derived.
	Header string
	Lines  []Line
}

// RenderLines reconstructs the hunk verbatim, header first.
func (h Hunk) RenderLines() []string {
	out := make([]string, 0, len(h.Lines)+1)
	out = append(out, h.Header)
	for _, l := range h.Lines {
		out = append(out, l.Render())
	}
	return out
}

// FunctionContext extracts the function name from the hunk header's
// trailing context annotation, or "" when none can be identified.
func (h Hunk) FunctionContext() string {
	return functionFromContext(headerContext(h.Header))
}

// ContainsToken reports whether name occurs as a whole identifier token in
// the hunk header or any of its lines.
func (h Hunk) ContainsToken(name string) bool {
	if containsToken(h.Header, name) {
		return true
	}
	for _, l := range h.Lines {
		if l.Kind == LineNoNewline {
			continue
		}
		if containsToken(l.Text, name) {
			return true
		}
	}
	return false
}

// File is one file section of the diff.
type File struct {
	OldPath string // "/dev/null" for created files
	NewPath string // "/dev/null" for deleted files

	// HeaderLines holds the raw "diff --git", "index", "---", "+++" (and
	// any mode/rename) lines in original order, byte-for-byte.
	HeaderLines []string
	Hunks       []Hunk
}

// Path returns the most useful display path: the new path unless the file
// was deleted.
func (f File) Path() string {
	if f.NewPath != "" && f.NewPath != "/dev/null" {
		return f.NewPath
	}
	return f.OldPath
}

// Location addresses one hunk inside a Model.
type Location struct {
	File int
	Hunk int
}

// Model is the parsed form of one unified diff. Obtainable only through
// Parse.
type Model struct {
	files        []File
	finalNewline bool
}

// Files returns the file sections in original diff order.
func (m *Model) Files() []File {
	return m.files
}

// Hunk returns the hunk at the given location.
func (m *Model) Hunk(loc Location) Hunk {
	return m.files[loc.File].Hunks[loc.Hunk]
}

// TouchedPaths lists the display path of every file in the diff, in
// original order.
func (m *Model) TouchedPaths() []string {
	paths := make([]string, 0, len(m.files))
	for _, f := range m.files {
		paths = append(paths, f.Path())
	}
	return paths
}

// Locate returns every hunk whose header or line text contains name as a
// whole identifier token, in original file then hunk order.
func (m *Model) Locate(name string) []Location {
	if name == "" {
		return nil
	}
	var locs []Location
	for fi, f := range m.files {
		for hi, h := range f.Hunks {
			if h.ContainsToken(name) {
				locs = append(locs, Location{File: fi, Hunk: hi})
			}
		}
	}
	return locs
}

// Selection names a subset of whole files and whole hunks to render.
type Selection struct {
	hunks map[int]map[int]bool
}

// NewSelection returns an empty selection.
func NewSelection() Selection {
	return Selection{hunks: make(map[int]map[int]bool)}
}

// Add marks one hunk for rendering. The owning file's header is rendered
// automatically.
func (s Selection) Add(loc Location) {
	set, ok := s.hunks[loc.File]
	if !ok {
		set = make(map[int]bool)
		s.hunks[loc.File] = set
	}
	set[loc.Hunk] = true
}

// Contains reports whether the hunk is part of the selection.
func (s Selection) Contains(loc Location) bool {
	return s.hunks[loc.File][loc.Hunk]
}

// FullSelection selects every file and hunk of the model.
func (m *Model) FullSelection() Selection {
	sel := NewSelection()
	for fi, f := range m.files {
		for hi := range f.Hunks {
			sel.Add(Location{File: fi, Hunk: hi})
		}
	}
	return sel
}

// Render reproduces the selected subset losslessly: files in source order,
// hunks in source order, every retained byte identical to the input. Files
// with no selected hunks are omitted entirely, headers included. Rendering
// the full selection round-trips the original diff text byte-for-byte.
func (m *Model) Render(sel Selection) string {
	var out []string
	for fi, f := range m.files {
		selected := false
		for hi := range f.Hunks {
			if sel.Contains(Location{File: fi, Hunk: hi}) {
				selected = true
				break
			}
		}
		if !selected {
			continue
		}
		out = append(out, f.HeaderLines...)
		for hi, h := range f.Hunks {
			if !sel.Contains(Location{File: fi, Hunk: hi}) {
				continue
			}
			out = append(out, h.RenderLines()...)
		}
	}
	if len(out) == 0 {
		return ""
	}
	text := strings.Join(out, "\n")
	if m.finalNewline {
		text += "\n"
	}
	return text
}
