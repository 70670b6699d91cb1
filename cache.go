package ddbg

import (
	"sync"

	"github.com/dirtydebug/ddbg/pkg/backends"
)

// entry pairs one destination key with its shared backend. The once guard is
// what guarantees at most one resource per destination even when callers race
// on an absent key: every racer gets the same entry from the map and exactly
// one of them runs the constructor. The mutex serializes appends so each
// message reaches the resource as one whole line.
type entry struct {
	once    sync.Once
	backend backends.Backend
	err     error
	mu      sync.Mutex
}

// writerCache maps destination keys to live writers. It lives for the whole
// process; writers are only ever removed by invalidate, so open resources are
// abandoned to OS cleanup at exit, which is fine for a debugging aid.
type writerCache struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func newWriterCache() *writerCache {
	return &writerCache{entries: make(map[string]*entry)}
}

// cache is the process-wide instance the package-level Log functions share.
var cache = newWriterCache()

// getOrCreate returns the shared handle for dest, creating the underlying
// writer on first use. The cache map lock is never held across the creation
// I/O, so a slow connect to one destination does not block callers hitting
// other destinations.
func (c *writerCache) getOrCreate(dest Destination) (*handle, error) {
	key := dest.Key()

	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	c.mu.Unlock()

	e.once.Do(func() {
		e.backend, e.err = openBackend(dest)
	})

	if e.err != nil {
		// Creation failed. Drop the entry (every racer that shared it does
		// the same, the map check makes that idempotent) so the very next
		// call attempts creation again.
		c.mu.Lock()
		if c.entries[key] == e {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, newDebugError(ErrCodeResourceUnavailable, opForKind(dest.Kind), dest.String(), e.err)
	}

	return &handle{entry: e}, nil
}

// invalidate removes the entry for dest, if one is present, and closes the
// evicted writer. The next getOrCreate for the same destination builds a
// fresh one; that is the whole self-healing story.
func (c *writerCache) invalidate(dest Destination) {
	key := dest.Key()

	c.mu.Lock()
	e, ok := c.entries[key]
	if ok {
		delete(c.entries, key)
	}
	c.mu.Unlock()

	if !ok || e.backend == nil {
		return
	}

	// Wait out any in-flight append before closing its resource.
	e.mu.Lock()
	_ = e.backend.Close()
	e.mu.Unlock()
}

// handle is a caller's reference to a shared cache entry. Appends through
// handles to the same destination are mutually exclusive; handles to
// different destinations do not contend.
type handle struct {
	entry *entry
}

// append writes line through the shared writer as one indivisible unit.
func (h *handle) append(dest Destination, line []byte) error {
	h.entry.mu.Lock()
	defer h.entry.mu.Unlock()

	if err := h.entry.backend.Append(line); err != nil {
		return newDebugError(ErrCodeWriteFailed, "write", dest.String(), err)
	}
	return nil
}

func openBackend(dest Destination) (backends.Backend, error) {
	switch dest.Kind {
	case KindTCP:
		return backends.NewTCPBackend(dest.Addr())
	case KindNATS:
		return backends.NewNATSBackend(schemeNATS+dest.Addr(), dest.Subject)
	default:
		return backends.NewFileBackend(dest.Path)
	}
}

func opForKind(kind DestinationKind) string {
	if kind == KindFile {
		return "open"
	}
	return "connect"
}
