package ddbg

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	internaltesting "github.com/dirtydebug/ddbg/internal/testing"
)

func mustParse(t *testing.T, raw string) Destination {
	t.Helper()
	d, err := ParseDestination(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return d
}

func TestGetOrCreateReturnsSharedWriter(t *testing.T) {
	c := newWriterCache()
	dest := mustParse(t, filepath.Join(t.TempDir(), "shared.log"))

	h1, err := c.getOrCreate(dest)
	if err != nil {
		t.Fatalf("first getOrCreate: %v", err)
	}
	h2, err := c.getOrCreate(dest)
	if err != nil {
		t.Fatalf("second getOrCreate: %v", err)
	}

	if h1.entry != h2.entry {
		t.Error("two lookups of the same destination returned different entries")
	}
	if h1.entry.backend != h2.entry.backend {
		t.Error("two lookups of the same destination opened separate resources")
	}
}

func TestGetOrCreateDistinctDestinations(t *testing.T) {
	c := newWriterCache()
	dir := t.TempDir()

	h1, err := c.getOrCreate(mustParse(t, filepath.Join(dir, "a.log")))
	if err != nil {
		t.Fatalf("getOrCreate a: %v", err)
	}
	h2, err := c.getOrCreate(mustParse(t, filepath.Join(dir, "b.log")))
	if err != nil {
		t.Fatalf("getOrCreate b: %v", err)
	}

	if h1.entry == h2.entry {
		t.Error("distinct destinations share one cache entry")
	}
}

// Racing callers on an absent key must end up with exactly one writer.
func TestGetOrCreateRace(t *testing.T) {
	c := newWriterCache()
	dest := mustParse(t, filepath.Join(t.TempDir(), "race.log"))

	const callers = 32
	entries := make([]*entry, callers)

	var start, done sync.WaitGroup
	start.Add(1)
	done.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer done.Done()
			start.Wait()
			h, err := c.getOrCreate(dest)
			if err != nil {
				t.Errorf("caller %d: %v", i, err)
				return
			}
			entries[i] = h.entry
		}(i)
	}
	start.Done()
	done.Wait()

	for i := 1; i < callers; i++ {
		if entries[i] != entries[0] {
			t.Fatalf("caller %d observed a different entry than caller 0", i)
		}
	}

	c.mu.Lock()
	n := len(c.entries)
	c.mu.Unlock()
	if n != 1 {
		t.Errorf("cache holds %d entries, want 1", n)
	}
}

func TestConcurrentAppendsDoNotInterleave(t *testing.T) {
	c := newWriterCache()
	path := filepath.Join(t.TempDir(), "concurrent.log")
	dest := mustParse(t, path)

	const callers = 50
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			h, err := c.getOrCreate(dest)
			if err != nil {
				t.Errorf("caller %d: %v", i, err)
				return
			}
			line := formatLine("worker.go", i, fmt.Sprintf("message-%d", i))
			if err := h.append(dest, line); err != nil {
				t.Errorf("caller %d append: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(lines) != callers {
		t.Fatalf("got %d lines, want %d", len(lines), callers)
	}

	seen := make(map[string]bool)
	for _, line := range lines {
		if !strings.HasPrefix(line, "[worker.go:") || !strings.Contains(line, "] message-") {
			t.Errorf("interleaved or malformed line: %q", line)
		}
		if seen[line] {
			t.Errorf("duplicate line: %q", line)
		}
		seen[line] = true
	}
}

func TestInvalidateCreatesFreshResource(t *testing.T) {
	c := newWriterCache()
	dest := mustParse(t, filepath.Join(t.TempDir(), "heal.log"))

	h1, err := c.getOrCreate(dest)
	if err != nil {
		t.Fatalf("getOrCreate: %v", err)
	}

	c.invalidate(dest)

	h2, err := c.getOrCreate(dest)
	if err != nil {
		t.Fatalf("getOrCreate after invalidate: %v", err)
	}
	if h1.entry == h2.entry {
		t.Error("invalidate did not evict the entry")
	}
	if h1.entry.backend == h2.entry.backend {
		t.Error("invalidate did not produce a fresh resource")
	}

	// The new writer must be usable; the old one was closed on eviction.
	if err := h2.append(dest, formatLine("a.go", 1, "after heal")); err != nil {
		t.Errorf("append through fresh writer: %v", err)
	}
}

func TestInvalidateAbsentDestination(t *testing.T) {
	c := newWriterCache()
	// Must not panic or create an entry.
	c.invalidate(mustParse(t, "/tmp/never-opened.log"))

	c.mu.Lock()
	n := len(c.entries)
	c.mu.Unlock()
	if n != 0 {
		t.Errorf("invalidate created %d entries", n)
	}
}

func TestCreationFailureLeavesNoEntry(t *testing.T) {
	c := newWriterCache()

	// Port chosen by binding then closing a listener, so nothing is there.
	cl := internaltesting.NewCaptureListener(t)
	addr := cl.Addr()
	cl.Close()

	dest := mustParse(t, "tcp://"+addr)
	if _, err := c.getOrCreate(dest); !IsResourceUnavailable(err) {
		t.Fatalf("getOrCreate with no listener: %v, want resource unavailable", err)
	}

	c.mu.Lock()
	n := len(c.entries)
	c.mu.Unlock()
	if n != 0 {
		t.Fatalf("failed creation left %d entries in the cache", n)
	}
}

func TestCreationRetriesAfterListenerStarts(t *testing.T) {
	c := newWriterCache()

	cl := internaltesting.NewCaptureListener(t)
	addr := cl.Addr()
	cl.Close()

	dest := mustParse(t, "tcp://"+addr)
	if _, err := c.getOrCreate(dest); !IsResourceUnavailable(err) {
		t.Fatalf("getOrCreate with no listener: %v, want resource unavailable", err)
	}

	// Same port, listener now up. The earlier failure must not be sticky.
	ln := internaltesting.NewCaptureListenerAt(t, addr)
	h, err := c.getOrCreate(dest)
	if err != nil {
		t.Fatalf("getOrCreate with listener up: %v", err)
	}

	line := formatLine("retry.go", 3, "second try")
	if err := h.append(dest, line); err != nil {
		t.Fatalf("append: %v", err)
	}
	got := ln.WaitFor(t, len(line), 2*time.Second)
	if string(got) != string(line) {
		t.Errorf("listener received %q, want %q", got, line)
	}
}
