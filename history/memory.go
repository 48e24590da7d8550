package history

import (
	"context"
	"sort"
	"sync"
)

// Compile-time interface compliance checks
var _ Source = (*MemorySource)(nil)
var _ Source = (*FailingSource)(nil)

// MemorySource is a thread-safe in-memory Source for testing.
type MemorySource struct {
	mu   sync.RWMutex
	refs map[string]map[string][]byte
}

// NewMemorySource creates an empty source with no references.
func NewMemorySource() *MemorySource {
	return &MemorySource{refs: make(map[string]map[string][]byte)}
}

// AddRef creates ref with no files if it does not exist.
func (s *MemorySource) AddRef(ref string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.refs[ref]; !ok {
		s.refs[ref] = make(map[string][]byte)
	}
}

// SetFile stores content for path at ref, creating the ref as needed.
func (s *MemorySource) SetFile(ref, path string, content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	files, ok := s.refs[ref]
	if !ok {
		files = make(map[string][]byte)
		s.refs[ref] = files
	}
	// Store a copy to prevent mutation
	stored := make([]byte, len(content))
	copy(stored, content)
	files[path] = stored
}

// ResolveRef implements Source.
func (s *MemorySource) ResolveRef(ctx context.Context, ref string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.refs[ref]
	return ok, nil
}

// FileAtRef implements Source. Unknown refs are an error, as in GitSource.
func (s *MemorySource) FileAtRef(ctx context.Context, path, ref string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	files, ok := s.refs[ref]
	if !ok {
		return nil, false, ErrRefNotFound
	}
	content, ok := files[path]
	if !ok {
		return nil, false, nil
	}
	// Return a copy to prevent mutation
	result := make([]byte, len(content))
	copy(result, content)
	return result, true, nil
}

// ChangedFiles implements Source.
func (s *MemorySource) ChangedFiles(ctx context.Context, base, head string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	from, ok := s.refs[base]
	if !ok {
		return nil, ErrRefNotFound
	}
	to, ok := s.refs[head]
	if !ok {
		return nil, ErrRefNotFound
	}

	var changed []string
	for p, content := range from {
		if other, ok := to[p]; !ok || string(other) != string(content) {
			changed = append(changed, p)
		}
	}
	for p := range to {
		if _, ok := from[p]; !ok {
			changed = append(changed, p)
		}
	}
	sort.Strings(changed)
	return changed, nil
}

// FailingSource returns Err from every call. Useful for testing error paths.
type FailingSource struct {
	Err error
}

// ResolveRef always fails.
func (s *FailingSource) ResolveRef(ctx context.Context, ref string) (bool, error) {
	return false, s.Err
}

// FileAtRef always fails.
func (s *FailingSource) FileAtRef(ctx context.Context, path, ref string) ([]byte, bool, error) {
	return nil, false, s.Err
}

// ChangedFiles always fails.
func (s *FailingSource) ChangedFiles(ctx context.Context, base, head string) ([]string, error) {
	return nil, s.Err
}
