package backends

import (
	"bufio"
	"net"

	"github.com/pkg/errors"
)

// TCPBackend writes to a connected TCP stream. The connection is established
// once at construction and reused for every append; nothing is ever read from
// it and it is never closed proactively. There is no reconnect logic here: a
// broken stream stays broken until the caller discards the backend.
type TCPBackend struct {
	conn   net.Conn
	writer *bufio.Writer
	addr   string
}

// NewTCPBackend connects to addr (a dialable "host:port").
func NewTCPBackend(addr string) (*TCPBackend, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, errors.Wrap(err, "dial tcp")
	}

	return &TCPBackend{
		conn:   conn,
		writer: bufio.NewWriter(conn),
		addr:   addr,
	}, nil
}

// Append writes p to the stream and flushes.
func (tb *TCPBackend) Append(p []byte) error {
	if _, err := tb.writer.Write(p); err != nil {
		return errors.Wrap(err, "write")
	}
	if err := tb.writer.Flush(); err != nil {
		return errors.Wrap(err, "flush")
	}
	return nil
}

// Close closes the connection.
func (tb *TCPBackend) Close() error {
	return tb.conn.Close()
}

// Addr returns the remote address the backend dialed.
func (tb *TCPBackend) Addr() string {
	return tb.addr
}
