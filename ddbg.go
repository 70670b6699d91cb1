package ddbg

import "fmt"

// Log appends message to the destination named by dest, tagged with the file
// name and line number of the call site. The destination is opened on first
// use and reused afterwards.
//
// On failure the error is returned and nothing is retried within this call.
// A write failure evicts the cached writer, so the next Log to the same
// destination opens a fresh one; a caller that can tolerate a dead listener
// simply keeps calling.
func Log(dest, message string) error {
	file, line := caller(1)
	return LogTo(dest, file, line, message)
}

// Logf is Log with fmt.Sprintf formatting of the message.
func Logf(dest, format string, args ...any) error {
	file, line := caller(1)
	return LogTo(dest, file, line, fmt.Sprintf(format, args...))
}

// LogTo appends message to dest tagged with an explicit source location.
// Wrapper layers that capture the call site themselves (code generators,
// language bridges) use this instead of Log so the tag points at their
// caller, not at them.
func LogTo(dest, file string, line int, message string) error {
	d, err := ParseDestination(dest)
	if err != nil {
		return err
	}

	h, err := cache.getOrCreate(d)
	if err != nil {
		return err
	}

	if err := h.append(d, formatLine(file, line, message)); err != nil {
		// The writer is broken; evict it so the next call self-heals. The
		// current call still fails.
		cache.invalidate(d)
		return err
	}
	return nil
}

// MustLog is Log but panics on failure. Losing a debug line usually means
// the debugging session itself is broken, so loud failure is the default
// the ddbg macro-style workflow wants.
func MustLog(dest, message string) {
	file, line := caller(1)
	mustLogTo(dest, file, line, message)
}

// MustLogf is Logf but panics on failure.
func MustLogf(dest, format string, args ...any) {
	file, line := caller(1)
	mustLogTo(dest, file, line, fmt.Sprintf(format, args...))
}

func mustLogTo(dest, file string, line int, message string) {
	if err := LogTo(dest, file, line, message); err != nil {
		panic(fmt.Sprintf("failed to log to %q: %v", dest, err))
	}
}
