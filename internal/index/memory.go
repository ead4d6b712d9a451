package index

import (
	"sync"
	"time"

	"github.com/plugmarket/plugmarket/internal/domain"
)

// MemoryIndex holds the last known snapshot of the published plugin index.
// It serves catalog reads and the fast-path duplicate check without a
// network round trip; the remote plugins.json stays authoritative.
type MemoryIndex struct {
	mu          sync.RWMutex
	doc         *domain.PluginIndexDocument
	lastRefresh time.Time
}

// NewMemoryIndex creates an empty index snapshot.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{}
}

// Update replaces the snapshot with a freshly fetched index document.
func (idx *MemoryIndex) Update(doc *domain.PluginIndexDocument) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.doc = doc
	idx.lastRefresh = time.Now()
}

// Snapshot returns a copy of the current index document.
// ok is false when no refresh has succeeded yet.
func (idx *MemoryIndex) Snapshot() (*domain.PluginIndexDocument, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.doc == nil {
		return nil, false
	}

	cp := *idx.doc
	cp.Plugins = make([]domain.PluginIndexEntry, len(idx.doc.Plugins))
	copy(cp.Plugins, idx.doc.Plugins)
	return &cp, true
}

// Has reports whether a plugin id is present in the snapshot.
// Always false before the first refresh; callers must still check the
// remote index before rejecting.
func (idx *MemoryIndex) Has(id string) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.doc != nil && idx.doc.Has(id)
}

// Append adds a newly published entry to the snapshot.
func (idx *MemoryIndex) Append(entry domain.PluginIndexEntry, lastUpdated string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.doc == nil {
		idx.doc = domain.NewIndexDocument()
	}
	idx.doc.Plugins = append(idx.doc.Plugins, entry)
	idx.doc.LastUpdated = lastUpdated
}

// Count returns the number of plugins in the snapshot.
func (idx *MemoryIndex) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.doc == nil {
		return 0
	}
	return len(idx.doc.Plugins)
}

// LastRefresh returns the timestamp of the last successful update.
func (idx *MemoryIndex) LastRefresh() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastRefresh
}
