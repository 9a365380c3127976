package domain

// SnippetRef is a short literal code fragment a finding quotes directly,
// e.g. a single expression. When the fragment occurs in the anchor hunk the
// resolver records the matching diff lines; the text itself is also the
// allow list for uppercase tokens in emitted commentary.
type SnippetRef struct {
	Text string `json:"text"`
}

// Finding is a reviewer concern produced by an external judgment process.
// Findings are immutable inputs: the compiler consumes them, never edits
// them.
type Finding struct {
	AnchorFunction string       `json:"function"`
	AnchorChain    []string     `json:"chain,omitempty"` // outer-to-inner call chain, used only for disambiguation
	QuestionText   string       `json:"question"`
	SnippetRefs    []SnippetRef `json:"snippets,omitempty"`
}

// ChainReference renders the finding's call chain as "a()->b()", falling
// back to the bare anchor function when no chain was supplied.
func (f Finding) ChainReference() string {
	if len(f.AnchorChain) == 0 {
		return f.AnchorFunction + "()"
	}
	ref := ""
	for i, name := range f.AnchorChain {
		if i > 0 {
			ref += "->"
		}
		ref += name + "()"
	}
	return ref
}

// ReportArtifact encapsulates the inputs for writing a rendered reply to
// disk.
type ReportArtifact struct {
	OutputDir  string
	Repository string
	SHA        string
	Body       string
}
