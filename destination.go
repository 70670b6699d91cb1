package ddbg

import (
	"net"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DestinationKind selects the writer variant for a destination.
type DestinationKind int

const (
	// KindFile appends to a file on the local filesystem.
	KindFile DestinationKind = iota
	// KindTCP writes to a connected TCP stream.
	KindTCP
	// KindNATS publishes to a NATS subject.
	KindNATS
)

const (
	schemeTCP  = "tcp://"
	schemeNATS = "nats://"
	schemeFile = "file://"
)

// Destination is the parsed form of a destination string. It is an immutable
// value; its Key is what the writer cache indexes on.
type Destination struct {
	Kind DestinationKind

	// Path is the filesystem path, set for KindFile.
	Path string

	// Host and Port are set for KindTCP and KindNATS. Host carries no
	// brackets even for IPv6 literals.
	Host string
	Port uint16

	// Subject is the NATS subject, set for KindNATS.
	Subject string

	raw string
}

// String returns the raw destination string the Destination was parsed from.
func (d Destination) String() string {
	return d.raw
}

// Key returns the normalized cache key. Spellings that name the same resource
// normalize to the same key, so "tcp://[::1]:9000" and "tcp://::1:9000" share
// one writer.
func (d Destination) Key() string {
	switch d.Kind {
	case KindTCP:
		return schemeTCP + net.JoinHostPort(d.Host, strconv.Itoa(int(d.Port)))
	case KindNATS:
		return schemeNATS + net.JoinHostPort(d.Host, strconv.Itoa(int(d.Port))) + "/" + d.Subject
	default:
		return d.Path
	}
}

// Addr returns the dialable host:port form for network destinations.
func (d Destination) Addr() string {
	return net.JoinHostPort(d.Host, strconv.Itoa(int(d.Port)))
}

// ParseDestination parses a raw destination string into a Destination.
//
// Recognized forms:
//
//	tcp://host:port            TCP endpoint; host may be a bracketed IPv6 literal
//	nats://host:port/subject   NATS subject
//	file:///some/path          filesystem path (prefix stripped)
//	anything else              filesystem path, taken verbatim
//
// No I/O happens here; whether a path is writable or an endpoint reachable is
// discovered when the writer is created. A bad tcp:// or nats:// syntax
// yields ErrCodeMalformedDestination.
func ParseDestination(raw string) (Destination, error) {
	switch {
	case strings.HasPrefix(raw, schemeTCP):
		host, port, err := parseEndpoint(raw[len(schemeTCP):])
		if err != nil {
			return Destination{}, newDebugError(ErrCodeMalformedDestination, "parse", raw, err)
		}
		return Destination{Kind: KindTCP, Host: host, Port: port, raw: raw}, nil

	case strings.HasPrefix(raw, schemeNATS):
		rest := raw[len(schemeNATS):]
		endpoint, subject, ok := strings.Cut(rest, "/")
		if !ok || subject == "" {
			return Destination{}, newDebugError(ErrCodeMalformedDestination, "parse", raw,
				errors.New("missing subject"))
		}
		host, port, err := parseEndpoint(endpoint)
		if err != nil {
			return Destination{}, newDebugError(ErrCodeMalformedDestination, "parse", raw, err)
		}
		return Destination{Kind: KindNATS, Host: host, Port: port, Subject: subject, raw: raw}, nil

	default:
		path := strings.TrimPrefix(raw, schemeFile)
		if path == "" {
			return Destination{}, newDebugError(ErrCodeMalformedDestination, "parse", raw,
				errors.New("empty path"))
		}
		return Destination{Kind: KindFile, Path: path, raw: raw}, nil
	}
}

// parseEndpoint splits "host:port", accepting bracketed IPv6 hosts like
// "[::1]:9000" and returning the host without brackets.
func parseEndpoint(endpoint string) (string, uint16, error) {
	host, portStr, found := cutLast(endpoint, ':')
	if !found {
		return "", 0, errors.Errorf("missing port in %q", endpoint)
	}

	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		host = host[1 : len(host)-1]
	}
	if host == "" {
		return "", 0, errors.Errorf("empty host in %q", endpoint)
	}

	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return "", 0, errors.Wrapf(err, "invalid port %q", portStr)
	}
	if port == 0 {
		return "", 0, errors.Errorf("invalid port %q", portStr)
	}

	return host, uint16(port), nil
}

// cutLast splits s around the last occurrence of sep. Splitting on the last
// colon is what makes unbracketed IPv6 hosts come out right.
func cutLast(s string, sep byte) (before, after string, found bool) {
	i := strings.LastIndexByte(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+1:], true
}
