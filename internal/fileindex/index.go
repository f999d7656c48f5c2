package fileindex

import (
	"sort"
	"sync"
)

// Index is a set of absolute file paths.
type Index struct {
	mu    sync.RWMutex
	paths map[string]struct{}
}

// New returns an index holding paths.
func New(paths ...string) *Index {
	idx := &Index{paths: make(map[string]struct{}, len(paths))}
	for _, p := range paths {
		if p != "" {
			idx.paths[p] = struct{}{}
		}
	}
	return idx
}

// Insert adds path and reports whether it was not already present.
func (i *Index) Insert(path string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, ok := i.paths[path]; ok {
		return false
	}
	i.paths[path] = struct{}{}
	return true
}

// Contains reports whether path is in the index.
func (i *Index) Contains(path string) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	_, ok := i.paths[path]
	return ok
}

// Remove deletes path and reports whether it was present.
func (i *Index) Remove(path string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, ok := i.paths[path]; !ok {
		return false
	}
	delete(i.paths, path)
	return true
}

// Len returns the number of paths in the index.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.paths)
}

// Paths returns the indexed paths in lexical order.
func (i *Index) Paths() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make([]string, 0, len(i.paths))
	for p := range i.paths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
