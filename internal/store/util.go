package store

import "strings"

// JoinSubsystems flattens subsystem tags for a single TEXT column. Tags
// never contain commas, so a comma-joined list round-trips exactly.
func JoinSubsystems(subsystems []string) string {
	return strings.Join(subsystems, ",")
}

// SplitSubsystems reverses JoinSubsystems. An empty column yields nil,
// not an empty slice, so records without tags compare equal to their
// pre-save form.
func SplitSubsystems(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, ",")
}
