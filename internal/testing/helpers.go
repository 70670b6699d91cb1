// Package testing provides shared helpers for ddbg tests: the
// unit/integration split and a capture listener for TCP round-trips.
package testing

import (
	"net"
	"os"
	"sync"
	"testing"
	"time"
)

// Unit returns true if running in unit test mode. Unit tests must not
// require external services (a NATS server, a reachable network).
func Unit() bool {
	if os.Getenv("DDBG_RUN_INTEGRATION_TESTS") == "true" {
		return false
	}
	if os.Getenv("DDBG_RUN_INTEGRATION_TESTS") == "false" {
		return true
	}
	if testing.Short() {
		return true
	}
	return true
}

// Integration returns true if running in integration test mode.
func Integration() bool {
	return !Unit()
}

// SkipIfUnit skips the test if running in unit test mode.
func SkipIfUnit(t *testing.T, message ...string) {
	t.Helper()
	if Unit() {
		msg := "Skipping integration test in unit mode"
		if len(message) > 0 {
			msg = message[0]
		}
		t.Skip(msg)
	}
}

// CaptureListener accepts TCP connections on a loopback port and records
// every byte received. It stands in for the ncat session a human would run,
// with the difference that bytes are visible while connections are still
// open, since a debug writer keeps its connection alive between messages.
type CaptureListener struct {
	ln net.Listener

	mu    sync.Mutex
	buf   []byte
	conns []net.Conn
	wg    sync.WaitGroup
}

// NewCaptureListener starts listening on an ephemeral loopback port.
func NewCaptureListener(t *testing.T) *CaptureListener {
	t.Helper()
	return NewCaptureListenerAt(t, "127.0.0.1:0")
}

// NewCaptureListenerAt starts listening on a specific address. Tests use it
// to restart a listener on a port a writer already knows about.
func NewCaptureListenerAt(t *testing.T, addr string) *CaptureListener {
	t.Helper()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		t.Fatalf("listen on %s: %v", addr, err)
	}

	cl := &CaptureListener{ln: ln}
	cl.wg.Add(1)
	go cl.acceptLoop()
	t.Cleanup(cl.Close)
	return cl
}

func (cl *CaptureListener) acceptLoop() {
	defer cl.wg.Done()
	for {
		conn, err := cl.ln.Accept()
		if err != nil {
			return
		}
		cl.mu.Lock()
		cl.conns = append(cl.conns, conn)
		cl.mu.Unlock()

		cl.wg.Add(1)
		go func() {
			defer cl.wg.Done()
			chunk := make([]byte, 4096)
			for {
				n, err := conn.Read(chunk)
				if n > 0 {
					cl.mu.Lock()
					cl.buf = append(cl.buf, chunk[:n]...)
					cl.mu.Unlock()
				}
				if err != nil {
					return
				}
			}
		}()
	}
}

// Addr returns the listener's dialable address.
func (cl *CaptureListener) Addr() string {
	return cl.ln.Addr().String()
}

// Received returns a copy of everything captured so far.
func (cl *CaptureListener) Received() []byte {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return append([]byte(nil), cl.buf...)
}

// WaitFor blocks until at least n bytes have been captured or the timeout
// elapses, then returns what is there. Writes land asynchronously relative
// to the writer's Append returning, so tests poll instead of sleeping.
func (cl *CaptureListener) WaitFor(t *testing.T, n int, timeout time.Duration) []byte {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		got := cl.Received()
		if len(got) >= n || time.Now().After(deadline) {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// DropConnections force-closes every accepted connection, simulating a peer
// that went away while the writer still believes its stream is healthy.
func (cl *CaptureListener) DropConnections() {
	cl.mu.Lock()
	conns := cl.conns
	cl.conns = nil
	cl.mu.Unlock()
	for _, c := range conns {
		_ = c.Close()
	}
}

// Close stops accepting and closes open connections. Safe to call twice.
func (cl *CaptureListener) Close() {
	_ = cl.ln.Close()
	cl.DropConnections()
	cl.wg.Wait()
}
