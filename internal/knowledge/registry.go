package knowledge

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Document is a handle to one subsystem's review notes on disk. The file
// content is never read here; consumers that want the text open the path
// themselves.
type Document struct {
	Subsystem string
	Path      string
}

// Registry indexes knowledge documents by subsystem tag.
type Registry struct {
	docs map[string]Document
}

// LoadRegistry scans a directory for per-subsystem documents, keyed by
// file basename without extension (btrfs.md -> "btrfs"). A missing or
// empty directory yields an empty registry: review notes are optional.
func LoadRegistry(dir string) (*Registry, error) {
	reg := &Registry{docs: make(map[string]Document)}
	if dir == "" {
		return reg, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return reg, nil
		}
		return nil, fmt.Errorf("read knowledge dir %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		tag := strings.TrimSuffix(name, filepath.Ext(name))
		if tag == "" {
			continue
		}
		reg.docs[tag] = Document{
			Subsystem: tag,
			Path:      filepath.Join(dir, name),
		}
	}
	return reg, nil
}

// Lookup returns the document for a subsystem tag, if one is registered.
func (r *Registry) Lookup(subsystem string) (Document, bool) {
	doc, ok := r.docs[subsystem]
	return doc, ok
}

// For returns the registered documents for a set of subsystem tags,
// preserving the order of the tags.
func (r *Registry) For(subsystems []string) []Document {
	var docs []Document
	for _, tag := range subsystems {
		if doc, ok := r.docs[tag]; ok {
			docs = append(docs, doc)
		}
	}
	return docs
}

// Len reports how many documents are registered.
func (r *Registry) Len() int {
	return len(r.docs)
}
