// Package ddbg provides a quick, no-setup way to emit debug messages from
// code that cannot reach stdout or stderr, such as code loaded as a plugin
// inside a host process. Each call appends one source-tagged line to a
// destination named by a string: a filesystem path, a tcp:// endpoint, or a
// nats:// subject.
//
// It is deliberately not a logging framework: no levels, no filtering, no
// rotation, no structured fields. It is meant to be dropped into a debugging
// session and removed afterwards.
//
// Basic Usage:
//
//	ddbg.MustLogf("/tmp/debug.log", "control reached here, state=%d", state)
//
// Every call appends the message to the destination, prefixed with the file
// name and line number of the call site:
//
//	[main.go:42] control reached here, state=42
//
// Logging to a TCP endpoint:
//
//	ddbg.MustLog("tcp://192.168.1.42:12345", "hello")
//
// The easiest way to listen on the target machine is ncat or the bundled
// ddbg-listen command:
//
//	$ ddbg-listen --addr :12345
//	[main.go:42] hello
//
// Destinations are opened lazily on first use and the open file or connection
// is cached and reused for the life of the process. Concurrent calls to the
// same destination are serialized, so each message arrives as one whole line.
// If a write fails (for example the TCP peer went away) the cached connection
// is discarded and the next call to the same destination opens a fresh one.
//
// Errors are returned by Log, Logf and LogTo so the caller decides whether a
// lost debug line matters; MustLog and MustLogf panic instead, which is
// usually what you want while debugging.
package ddbg
