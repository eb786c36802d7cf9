package peer

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"net/netip"
	"os"
	"time"

	bclock "github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/btc-handshake-scanner/internal/clock"
	"github.com/goodnatureofminers/btc-handshake-scanner/internal/wire"
)

// Config carries the handshake parameters shared by every session of a
// sweep. All values arrive validated from the CLI layer.
type Config struct {
	Params wire.Params

	// Services advertised by this node in the version message.
	Services wire.ServiceFlag

	// RecvServices is placed in the receiver address record.
	RecvServices wire.ServiceFlag

	UserAgent   string
	StartHeight int32

	// StrictAck demands an explicit verack. When false, a peer closing
	// the stream after the version exchange still counts as success,
	// annotated AckOmitted.
	StrictAck bool
}

// Session performs one bounded handshake attempt per call to Run. It
// owns the connection for the lifetime of the attempt and discards it
// afterwards regardless of outcome.
type Session struct {
	cfg    Config
	logger *zap.Logger
	clk    bclock.Clock
}

// New builds a session runner.
func New(cfg Config, logger *zap.Logger) *Session {
	return &Session{cfg: cfg, logger: logger, clk: bclock.New()}
}

// Run dials addr and drives the handshake to a terminal outcome. Every
// socket operation shares the absolute deadline; the session never
// blocks past it and is never cancelled from outside.
func (s *Session) Run(ctx context.Context, addr netip.AddrPort, deadline time.Time) Outcome {
	logger := s.logger.With(zap.String("peer", addr.String()))

	if clock.Expired(s.clk.Now(), deadline) {
		return Outcome{Addr: addr, Reason: ReasonTimeout, Err: os.ErrDeadlineExceeded}
	}

	dialer := net.Dialer{Deadline: deadline}
	conn, err := dialer.DialContext(ctx, "tcp", addr.String())
	if err != nil {
		reason := ReasonConnect
		if isTimeout(err) {
			reason = ReasonTimeout
		}
		return Outcome{Addr: addr, Reason: reason, Err: fmt.Errorf("dial: %w", err)}
	}
	defer func() {
		_ = conn.Close()
	}()
	_ = conn.SetDeadline(deadline)

	nonce, err := randomNonce()
	if err != nil {
		return Outcome{Addr: addr, Reason: ReasonConnect, Err: fmt.Errorf("generate nonce: %w", err)}
	}

	local, err := s.localVersion(conn, addr, nonce)
	if err != nil {
		return Outcome{Addr: addr, Reason: ReasonConnect, Err: err}
	}
	if out, failed := s.send(conn, addr, wire.CmdVersion, local); failed {
		return out
	}

	// AwaitingPeerVersion: exactly one message, and it must be a version.
	cmd, payload, err := wire.ReadMessage(conn, s.cfg.Params.Magic)
	if err != nil {
		return Outcome{Addr: addr, Reason: readReason(err), Err: fmt.Errorf("await version: %w", err)}
	}
	if cmd != wire.CmdVersion {
		return Outcome{
			Addr:   addr,
			Reason: ReasonUnexpectedCommand,
			Err:    fmt.Errorf("expected version, peer sent %q", cmd),
		}
	}
	remote, err := wire.DecodeVersion(payload)
	if err != nil {
		return Outcome{Addr: addr, Reason: ReasonProtocol, Err: fmt.Errorf("decode version: %w", err)}
	}
	if remote.Nonce == nonce && nonce != 0 {
		logger.Warn("peer echoed our version nonce; possible self connection",
			zap.Uint64("nonce", nonce))
	}
	logger.Debug("version exchanged",
		zap.Int32("version", remote.Version),
		zap.String("user_agent", remote.UserAgent),
		zap.Int32("start_height", remote.StartHeight),
		zap.Stringer("services", remote.Services))

	ack, err := wire.VerackMsg{}.Encode()
	if err != nil {
		return Outcome{Addr: addr, Remote: remote, Reason: ReasonProtocol, Err: err}
	}
	if out, failed := s.send(conn, addr, wire.CmdVerack, ack); failed {
		out.Remote = remote
		return out
	}

	// AwaitingPeerAck: a verack completes the handshake. A clean close
	// with zero bytes read is tolerated unless StrictAck is set.
	cmd, payload, err = wire.ReadMessage(conn, s.cfg.Params.Magic)
	switch {
	case err == nil && cmd == wire.CmdVerack:
		if _, derr := wire.DecodeVerack(payload); derr != nil {
			return Outcome{Addr: addr, Remote: remote, Reason: ReasonProtocol, Err: fmt.Errorf("decode verack: %w", derr)}
		}
		return Outcome{Addr: addr, Success: true, Remote: remote}
	case err == nil:
		return Outcome{
			Addr:   addr,
			Remote: remote,
			Reason: ReasonUnexpectedCommand,
			Err:    fmt.Errorf("expected verack, peer sent %q", cmd),
		}
	case errors.Is(err, io.EOF):
		if s.cfg.StrictAck {
			return Outcome{Addr: addr, Remote: remote, Reason: ReasonProtocol, Err: errors.New("connection closed before verack")}
		}
		return Outcome{Addr: addr, Success: true, AckOmitted: true, Remote: remote}
	default:
		return Outcome{Addr: addr, Remote: remote, Reason: readReason(err), Err: fmt.Errorf("await verack: %w", err)}
	}
}

// localVersion builds the version message announced to addr.
func (s *Session) localVersion(conn net.Conn, addr netip.AddrPort, nonce uint64) ([]byte, error) {
	from := netip.AddrPort{}
	if tcp, ok := conn.LocalAddr().(*net.TCPAddr); ok {
		from = tcp.AddrPort()
	}
	msg := wire.VersionMsg{
		Version:     wire.ProtocolVersion,
		Services:    s.cfg.Services,
		Timestamp:   s.clk.Now().Unix(),
		AddrRecv:    wire.NewNetAddress(addr, s.cfg.RecvServices),
		AddrFrom:    wire.NewNetAddress(from, s.cfg.Services),
		Nonce:       nonce,
		UserAgent:   s.cfg.UserAgent,
		StartHeight: s.cfg.StartHeight,
	}
	payload, err := msg.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode version: %w", err)
	}
	return payload, nil
}

// send frames and writes one message. The bool reports failure so
// callers can return the outcome directly.
func (s *Session) send(conn net.Conn, addr netip.AddrPort, cmd string, payload []byte) (Outcome, bool) {
	msg, err := wire.EncodeMessage(cmd, payload, s.cfg.Params.Magic)
	if err != nil {
		return Outcome{Addr: addr, Reason: ReasonProtocol, Err: fmt.Errorf("encode %s: %w", cmd, err)}, true
	}
	if _, err := conn.Write(msg); err != nil {
		reason := ReasonConnect
		if isTimeout(err) {
			reason = ReasonTimeout
		}
		return Outcome{Addr: addr, Reason: reason, Err: fmt.Errorf("send %s: %w", cmd, err)}, true
	}
	return Outcome{}, false
}

// readReason maps a ReadMessage error to a failure reason. Deadline
// expiry wins over everything; all other read failures are protocol
// level, including a stream that breaks mid-message.
func readReason(err error) Reason {
	if isTimeout(err) {
		return ReasonTimeout
	}
	return ReasonProtocol
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}

func randomNonce() (uint64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}
