package diff

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/masoncl/review-reply/internal/domain"
)

var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// Parse builds a Model from raw unified diff text. Parsing is strict: a
// hunk body with no preceding @@ header, a file section with zero hunks, a
// truncated hunk, or a stray line all fail with *domain.MalformedDiffError
// naming the offending file. Nothing partial is ever returned.
func Parse(raw string) (*Model, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &domain.MalformedDiffError{Reason: "empty diff"}
	}

	lines := strings.Split(raw, "\n")
	finalNewline := false
	if lines[len(lines)-1] == "" {
		finalNewline = true
		lines = lines[:len(lines)-1]
	}

	m := &Model{finalNewline: finalNewline}
	i := 0
	for i < len(lines) {
		if !fileStart(lines[i]) {
			return nil, &domain.MalformedDiffError{Reason: "content before any file header: " + truncateForError(lines[i])}
		}
		file, next, err := parseFile(lines, i)
		if err != nil {
			return nil, err
		}
		m.files = append(m.files, file)
		i = next
	}

	return m, nil
}

func fileStart(line string) bool {
	return strings.HasPrefix(line, "diff --git ") || strings.HasPrefix(line, "--- ")
}

// parseFile consumes one file section starting at lines[start] and returns
// the parsed file plus the index of the first unconsumed line.
func parseFile(lines []string, start int) (File, int, error) {
	var file File
	i := start

	// Header block: everything up to the first hunk header. The raw lines
	// are preserved byte-for-byte; paths are extracted as a side effect.
	for i < len(lines) && !strings.HasPrefix(lines[i], "@@") {
		line := lines[i]
		if i > start && strings.HasPrefix(line, "diff --git ") {
			return File{}, 0, &domain.MalformedDiffError{Path: file.Path(), Reason: "file section with no hunks"}
		}
		file.HeaderLines = append(file.HeaderLines, line)
		switch {
		case strings.HasPrefix(line, "diff --git "):
			file.OldPath, file.NewPath = pathsFromGitHeader(line)
		case strings.HasPrefix(line, "--- "):
			file.OldPath = stripPathPrefix(line[4:], "a/")
		case strings.HasPrefix(line, "+++ "):
			file.NewPath = stripPathPrefix(line[4:], "b/")
		}
		i++
	}

	if i >= len(lines) {
		return File{}, 0, &domain.MalformedDiffError{Path: file.Path(), Reason: "file section with no hunks"}
	}

	for i < len(lines) && strings.HasPrefix(lines[i], "@@") {
		hunk, next, err := parseHunk(lines, i, file.Path())
		if err != nil {
			return File{}, 0, err
		}
		file.Hunks = append(file.Hunks, hunk)
		i = next
	}

	// Anything that is neither a hunk header nor the start of the next
	// file section is a stray line.
	if i < len(lines) && !fileStart(lines[i]) {
		return File{}, 0, &domain.MalformedDiffError{Path: file.Path(), Reason: "unexpected line after hunk: " + truncateForError(lines[i])}
	}

	return file, i, nil
}

// parseHunk consumes one hunk starting at the @@ header at lines[start].
// The header's old/new counts determine exactly how many body lines belong
// to the hunk; a shortfall or overrun is a malformed diff.
func parseHunk(lines []string, start int, path string) (Hunk, int, error) {
	header := lines[start]
	match := hunkHeaderRe.FindStringSubmatch(header)
	if match == nil {
		return Hunk{}, 0, &domain.MalformedDiffError{Path: path, Reason: "invalid hunk header: " + truncateForError(header)}
	}

	oldRemain := rangeCount(match[2])
	newRemain := rangeCount(match[4])

	hunk := Hunk{Header: header}
	i := start + 1
	for oldRemain > 0 || newRemain > 0 {
		if i >= len(lines) {
			return Hunk{}, 0, &domain.MalformedDiffError{Path: path, Reason: "truncated hunk: " + truncateForError(header)}
		}
		line := lines[i]
		switch {
		case line == "":
			// Empty context line emitted without its leading space.
			hunk.Lines = append(hunk.Lines, Line{Kind: LineContext, bare: true})
			oldRemain--
			newRemain--
		case line[0] == ' ':
			hunk.Lines = append(hunk.Lines, Line{Kind: LineContext, Text: line[1:]})
			oldRemain--
			newRemain--
		case line[0] == '+':
			hunk.Lines = append(hunk.Lines, Line{Kind: LineAdded, Text: line[1:]})
			newRemain--
		case line[0] == '-':
			hunk.Lines = append(hunk.Lines, Line{Kind: LineRemoved, Text: line[1:]})
			oldRemain--
		case line[0] == '\\':
			hunk.Lines = append(hunk.Lines, Line{Kind: LineNoNewline, Text: line})
		default:
			return Hunk{}, 0, &domain.MalformedDiffError{Path: path, Reason: "unexpected line in hunk: " + truncateForError(line)}
		}
		if oldRemain < 0 || newRemain < 0 {
			return Hunk{}, 0, &domain.MalformedDiffError{Path: path, Reason: "hunk longer than header declares: " + truncateForError(header)}
		}
		i++
	}

	// A trailing no-newline marker annotates the hunk's last line.
	if i < len(lines) && strings.HasPrefix(lines[i], "\\") {
		hunk.Lines = append(hunk.Lines, Line{Kind: LineNoNewline, Text: lines[i]})
		i++
	}

	return hunk, i, nil
}

func rangeCount(count string) int {
	if count == "" {
		return 1
	}
	n, _ := strconv.Atoi(count)
	return n
}

var gitHeaderRe = regexp.MustCompile(`^diff --git a/(.+) b/(.+)$`)

func pathsFromGitHeader(line string) (oldPath, newPath string) {
	match := gitHeaderRe.FindStringSubmatch(line)
	if match == nil {
		return "", ""
	}
	return match[1], match[2]
}

// stripPathPrefix removes the diff tool's a/ or b/ prefix and any trailing
// timestamp some producers append after a tab. "/dev/null" passes through
// untouched.
func stripPathPrefix(path, prefix string) string {
	if i := strings.IndexByte(path, '\t'); i >= 0 {
		path = path[:i]
	}
	if path == "/dev/null" {
		return path
	}
	return strings.TrimPrefix(path, prefix)
}

func truncateForError(line string) string {
	const max = 60
	if len(line) <= max {
		return line
	}
	return line[:max] + "..."
}
