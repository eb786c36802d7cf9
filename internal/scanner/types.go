package scanner

import (
	"context"
	"net/netip"
	"time"

	"github.com/goodnatureofminers/btc-handshake-scanner/internal/peer"
)

type (
	// SeedResolver produces candidate peer addresses for a seed host.
	// An empty answer set is valid; an error aborts the whole sweep.
	SeedResolver interface {
		Resolve(ctx context.Context, host string, port uint16) ([]netip.AddrPort, error)
	}

	// HandshakeSession performs one bounded handshake attempt against a
	// single address under the shared absolute deadline.
	HandshakeSession interface {
		Run(ctx context.Context, addr netip.AddrPort, deadline time.Time) peer.Outcome
	}

	// SweepMetrics records one observation per terminal outcome.
	SweepMetrics interface {
		Observe(success bool, reason string, started time.Time)
	}
)
