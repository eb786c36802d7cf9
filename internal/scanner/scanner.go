// Package scanner orchestrates a concurrent handshake sweep across all
// addresses returned by a DNS seed.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"time"

	bclock "github.com/benbjohnson/clock"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/btc-handshake-scanner/internal/peer"
	"github.com/goodnatureofminers/btc-handshake-scanner/pkg/workerpool"
)

const defaultWorkerCount = 16

// Config carries the sweep parameters.
type Config struct {
	Seed    string
	Port    uint16
	Timeout time.Duration

	// Workers bounds concurrent sessions. Defaults to defaultWorkerCount.
	Workers int

	// DialRPS paces handshake attempts per second. Zero means unpaced.
	DialRPS int
}

// Tally aggregates terminal outcomes across a sweep. Exactly one
// counter is incremented per resolved address.
type Tally struct {
	Success int
	Failure int
}

// Scanner fans one handshake session out per resolved address under a
// single deadline computed once at the start of the sweep.
type Scanner struct {
	cfg      Config
	resolver SeedResolver
	session  HandshakeSession
	metrics  SweepMetrics
	logger   *zap.Logger
	clk      bclock.Clock
	rl       ratelimit.Limiter
}

// New builds a scanner.
func New(cfg Config, resolver SeedResolver, session HandshakeSession, metrics SweepMetrics, logger *zap.Logger) (*Scanner, error) {
	if cfg.Seed == "" {
		return nil, errors.New("seed host is required")
	}
	if cfg.Timeout <= 0 {
		return nil, errors.New("timeout must be positive")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkerCount
	}
	rl := ratelimit.NewUnlimited()
	if cfg.DialRPS > 0 {
		rl = ratelimit.New(cfg.DialRPS)
	}
	return &Scanner{
		cfg:      cfg,
		resolver: resolver,
		session:  session,
		metrics:  metrics,
		logger:   logger,
		clk:      bclock.New(),
		rl:       rl,
	}, nil
}

// Run resolves the seed and sweeps every address, returning the final
// tally. A resolution failure is the only error; per-peer failures are
// folded into the tally. The sweep waits for every session to reach a
// terminal state rather than cutting over when the deadline passes;
// sessions bound themselves via the shared deadline.
func (s *Scanner) Run(ctx context.Context) (Tally, error) {
	addrs, err := s.resolver.Resolve(ctx, s.cfg.Seed, s.cfg.Port)
	if err != nil {
		return Tally{}, fmt.Errorf("resolve seed %q: %w", s.cfg.Seed, err)
	}
	s.logger.Info("seed resolved",
		zap.String("seed", s.cfg.Seed),
		zap.Int("peers", len(addrs)))

	deadline := s.clk.Now().Add(s.cfg.Timeout)

	outcomes := workerpool.Collect(ctx, s.cfg.Workers, addrs, func(ctx context.Context, addr netip.AddrPort) peer.Outcome {
		s.rl.Take()
		started := s.clk.Now()
		out := s.session.Run(ctx, addr, deadline)
		s.metrics.Observe(out.Success, string(out.Reason), started)
		s.logOutcome(out)
		return out
	})

	var tally Tally
	for _, out := range outcomes {
		if out.Success {
			tally.Success++
		} else {
			tally.Failure++
		}
	}

	s.logger.Sugar().Infof("Success Count: %d", tally.Success)
	s.logger.Sugar().Infof("Failure Count: %d", tally.Failure)
	return tally, nil
}

func (s *Scanner) logOutcome(out peer.Outcome) {
	fields := []zap.Field{zap.String("peer", out.Addr.String())}
	switch {
	case out.Success && out.AckOmitted:
		s.logger.Info("handshake succeeded; acknowledgment not exchanged", fields...)
	case out.Success:
		s.logger.Info("handshake succeeded", fields...)
	default:
		fields = append(fields,
			zap.String("reason", string(out.Reason)),
			zap.Error(out.Err))
		s.logger.Info("handshake failed", fields...)
	}
}
