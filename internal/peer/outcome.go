// Package peer drives a single bounded handshake attempt against one
// remote address.
package peer

import (
	"net/netip"

	"github.com/goodnatureofminers/btc-handshake-scanner/internal/wire"
)

// Reason classifies why a handshake attempt failed. The set is closed
// so callers can match on kind rather than message text.
type Reason string

const (
	// ReasonConnect covers transport failures: the dial itself, or the
	// connection breaking on a write.
	ReasonConnect Reason = "connect"

	// ReasonTimeout marks an attempt that ran out of its share of the
	// sweep deadline during connect or a read.
	ReasonTimeout Reason = "timeout"

	// ReasonProtocol marks a message that failed to decode: bad magic,
	// bad checksum, unknown command text, or a truncated stream.
	ReasonProtocol Reason = "protocol"

	// ReasonUnexpectedCommand marks a structurally valid message that
	// arrived out of sequence.
	ReasonUnexpectedCommand Reason = "unexpected_command"
)

// Outcome is the terminal result of one handshake attempt. Exactly one
// is produced per session; there are no retries.
type Outcome struct {
	Addr    netip.AddrPort
	Success bool

	// AckOmitted marks a success whose acknowledgment was never
	// observed because the peer closed the stream instead of sending a
	// verack. A deliberate interoperability accommodation, not a
	// protocol requirement.
	AckOmitted bool

	// Reason and Err are set only on failure.
	Reason Reason
	Err    error

	// Remote holds the peer's version message when one was decoded,
	// regardless of how the attempt ended.
	Remote *wire.VersionMsg
}
