// Package knowledge maps touched kernel paths to subsystem tags and keys
// per-subsystem review documents off them. Document content is opaque to
// the rest of the program.
package knowledge

import (
	"sort"
	"strings"
)

// pathRules maps path prefixes to subsystem tags. First match per file
// wins, so more specific prefixes come before their parents.
var pathRules = []struct {
	prefixes  []string
	subsystem string
}{
	{[]string{"net/", "drivers/net/"}, "networking"},
	{[]string{"mm/"}, "mm"},
	{[]string{"fs/btrfs/"}, "btrfs"},
	{[]string{"fs/"}, "vfs"},
	{[]string{"kernel/sched/"}, "scheduler"},
	{[]string{"kernel/bpf/"}, "bpf"},
	{[]string{"block/", "drivers/nvme/"}, "block"},
}

// DetectSubsystems derives subsystem tags from the paths a diff touches.
// The result is sorted and deduplicated; paths outside every known prefix
// contribute nothing.
func DetectSubsystems(paths []string) []string {
	seen := make(map[string]bool)
	for _, path := range paths {
		if tag := subsystemFor(path); tag != "" {
			seen[tag] = true
		}
	}

	if len(seen) == 0 {
		return nil
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func subsystemFor(path string) string {
	for _, rule := range pathRules {
		for _, prefix := range rule.prefixes {
			if strings.HasPrefix(path, prefix) {
				return rule.subsystem
			}
		}
	}
	return ""
}
