package weave

import (
	"net"
	"strconv"
)

// Transport identifies which listener accepted a Connection.
type Transport uint8

const (
	TransportTCP Transport = iota
	TransportTLS
	TransportUnix
	TransportQUIC
)

func (t Transport) String() string {
	switch t {
	case TransportTCP:
		return "tcp"
	case TransportTLS:
		return "tls"
	case TransportUnix:
		return "unix"
	case TransportQUIC:
		return "quic"
	default:
		return "unknown"
	}
}

// Connection wraps a raw transport connection with the transport tag C3
// needs to decide how to dispatch it.
type Connection struct {
	Transport Transport
	raw net.Conn
}

// Raw returns the underlying net.Conn. QUIC connections are adapted to
// net.Conn by the QUIC listener before reaching here (see quic.go).
func (c *Connection) Raw() net.Conn { return c.raw }

func (c *Connection) Close() error {
	if c.raw == nil {
		return nil
	}
	return c.raw.Close()
}

// PeerAddrKind distinguishes PeerAddr's variants.
type PeerAddrKind uint8

const (
	PeerAddrTCP PeerAddrKind = iota
	PeerAddrUnix
	PeerAddrQUIC
)

// PeerAddr identifies the remote side of a Connection. It carries the raw
// socket address plus, when a trusted reverse proxy is configured
// (middleware/realip), the overridden address it asserted.
type PeerAddr struct {
	Kind PeerAddrKind
	Addr net.Addr

	// Trusted is set by middleware/realip once it has validated that the
	// socket peer is a configured trusted proxy; it never overrides Addr
	// itself, only what RemoteIP() reports.
	Trusted net.IP
}

// RemoteIP returns the trusted override if one is set, otherwise the IP
// portion of the socket address.
func (p PeerAddr) RemoteIP() string {
	if p.Trusted != nil {
		return p.Trusted.String()
	}
	switch a := p.Addr.(type) {
	case *net.TCPAddr:
		return a.IP.String()
	case *net.UnixAddr:
		return a.Name
	default:
		if p.Addr == nil {
			return ""
		}
		host, _, err := net.SplitHostPort(p.Addr.String())
		if err != nil {
			return p.Addr.String()
		}
		return host
	}
}

func peerAddrFromConn(conn net.Conn, kind PeerAddrKind) PeerAddr {
	return PeerAddr{Kind: kind, Addr: conn.RemoteAddr()}
}

// parseHostPort turns net/http's RemoteAddr string ("host:port") into a
// net.TCPAddr, the form PeerAddr.RemoteIP knows how to read directly.
func parseHostPort(remoteAddr string) (*net.TCPAddr, error) {
	host, port, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return nil, err
	}
	p, _ := strconv.Atoi(port)
	return &net.TCPAddr{IP: net.ParseIP(host), Port: p}, nil
}
