package backends

import (
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
)

// NATSBackend publishes each appended line as one message on a NATS subject.
// The connection is established once and reused; connect failures are not
// retried here, and reconnection after a failure is the caller's decision,
// the same as for the other variants.
type NATSBackend struct {
	conn    *nats.Conn
	subject string
}

// NewNATSBackend connects to the NATS server at url (e.g. "nats://host:4222")
// and binds the backend to subject.
func NewNATSBackend(url, subject string) (*NATSBackend, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(false),
		nats.NoReconnect(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "connect nats")
	}

	return &NATSBackend{
		conn:    conn,
		subject: subject,
	}, nil
}

// Append publishes p on the subject and flushes the connection.
func (nb *NATSBackend) Append(p []byte) error {
	if err := nb.conn.Publish(nb.subject, p); err != nil {
		return errors.Wrap(err, "publish")
	}
	if err := nb.conn.Flush(); err != nil {
		return errors.Wrap(err, "flush")
	}
	return nil
}

// Close closes the connection.
func (nb *NATSBackend) Close() error {
	nb.conn.Close()
	return nil
}

// Subject returns the subject lines are published on.
func (nb *NATSBackend) Subject() string {
	return nb.subject
}
