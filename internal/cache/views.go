package cache

import "sync"

// Views caches rendered list payloads per path. Each path holds one
// entry per variant (typically the raw query string), so invalidating
// a path drops every filtered/paginated rendering of it at once.
type Views struct {
	mu    sync.RWMutex
	paths map[string]map[string][]byte
}

func NewViews() *Views {
	return &Views{paths: make(map[string]map[string][]byte)}
}

func (v *Views) Get(path, variant string) ([]byte, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	variants, ok := v.paths[path]
	if !ok {
		return nil, false
	}
	payload, ok := variants[variant]
	return payload, ok
}

func (v *Views) Set(path, variant string, payload []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	variants, ok := v.paths[path]
	if !ok {
		variants = make(map[string][]byte)
		v.paths[path] = variants
	}
	variants[variant] = payload
}

// Invalidate marks every cached rendering of path stale. It is fire
// and forget: invalidating an uncached path is a no-op.
func (v *Views) Invalidate(path string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.paths, path)
}
