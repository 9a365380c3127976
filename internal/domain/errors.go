package domain

import "fmt"

// MalformedDiffError reports an unparseable unified diff. Parsing is strict:
// nothing partial is returned to the caller, since a partially-parsed diff
// could silently corrupt quoted output.
type MalformedDiffError struct {
	Path   string // file section being parsed when the problem was found, if known
	Reason string
}

func (e *MalformedDiffError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("malformed diff: %s", e.Reason)
	}
	return fmt.Sprintf("malformed diff in %s: %s", e.Path, e.Reason)
}

// InternalConsistencyError reports a violated contract between the trimmer
// and the resolver: a hunk that a finding was anchored to did not survive
// trimming. Compilation aborts rather than rendering commentary against
// missing code.
type InternalConsistencyError struct {
	Function string // anchor function of the orphaned finding
	Detail   string
}

func (e *InternalConsistencyError) Error() string {
	return fmt.Sprintf("internal consistency: finding anchored to %q: %s", e.Function, e.Detail)
}
