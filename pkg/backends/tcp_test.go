package backends_test

import (
	"testing"
	"time"

	internaltesting "github.com/dirtydebug/ddbg/internal/testing"
	"github.com/dirtydebug/ddbg/pkg/backends"
)

func TestNewTCPBackendConnects(t *testing.T) {
	cl := internaltesting.NewCaptureListener(t)

	tb, err := backends.NewTCPBackend(cl.Addr())
	if err != nil {
		t.Fatalf("NewTCPBackend: %v", err)
	}
	defer tb.Close()

	if tb.Addr() != cl.Addr() {
		t.Errorf("Addr() = %q, want %q", tb.Addr(), cl.Addr())
	}
}

func TestNewTCPBackendNoListener(t *testing.T) {
	cl := internaltesting.NewCaptureListener(t)
	addr := cl.Addr()
	cl.Close()

	if _, err := backends.NewTCPBackend(addr); err == nil {
		t.Fatal("connect to closed port succeeded")
	}
}

func TestTCPBackendAppendDeliversBytes(t *testing.T) {
	cl := internaltesting.NewCaptureListener(t)

	tb, err := backends.NewTCPBackend(cl.Addr())
	if err != nil {
		t.Fatalf("NewTCPBackend: %v", err)
	}
	defer tb.Close()

	if err := tb.Append([]byte("[a.go:1] one\n")); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := tb.Append([]byte("[a.go:2] two\n")); err != nil {
		t.Fatalf("second append: %v", err)
	}

	want := "[a.go:1] one\n[a.go:2] two\n"
	got := cl.WaitFor(t, len(want), 2*time.Second)
	if string(got) != want {
		t.Errorf("listener received %q, want %q", got, want)
	}
}

func TestTCPBackendStaysBrokenAfterPeerDrop(t *testing.T) {
	cl := internaltesting.NewCaptureListener(t)

	tb, err := backends.NewTCPBackend(cl.Addr())
	if err != nil {
		t.Fatalf("NewTCPBackend: %v", err)
	}
	defer tb.Close()

	if err := tb.Append([]byte("alive\n")); err != nil {
		t.Fatalf("append: %v", err)
	}
	cl.WaitFor(t, 1, 2*time.Second)
	cl.DropConnections()

	// The reset may take a write or two to surface, but it must surface,
	// and the backend must not reconnect on its own.
	var failed bool
	for i := 0; i < 20; i++ {
		if err := tb.Append([]byte("into the void\n")); err != nil {
			failed = true
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if !failed {
		t.Fatal("append never failed after peer dropped the connection")
	}

	if err := tb.Append([]byte("still broken\n")); err == nil {
		t.Error("append succeeded on a broken stream; backend must not self-reconnect")
	}
}
