package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// VersionMsg is the payload of the "version" message announcing the
// transmitting node to its peer at the start of a connection. No other
// message is accepted until both sides have exchanged one.
type VersionMsg struct {
	// Version is the highest protocol version understood by the
	// transmitting node.
	Version int32

	// Services advertised by the transmitting node.
	Services ServiceFlag

	// Timestamp is the transmitting node's Unix time in seconds.
	Timestamp int64

	// AddrRecv is the receiving node as perceived by the transmitter.
	AddrRecv NetAddress

	// AddrFrom is the transmitting node's own address record.
	AddrFrom NetAddress

	// Nonce lets a node detect a connection to itself. A node should
	// drop the connection on receipt of a nonce it previously sent.
	Nonce uint64

	// UserAgent is the BIP 14 user agent, compact-size length prefixed.
	UserAgent string

	// StartHeight is the height of the transmitting node's best block.
	StartHeight int32

	// Relay asks the peer to announce relayed transactions (BIP 37).
	// Only on the wire for protocol versions at or above RelayVersion.
	Relay bool
}

// Encode serializes the payload. All integers are little-endian except
// the address record ports.
func (m *VersionMsg) Encode() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, 86+len(m.UserAgent)))

	var b [8]byte
	binary.LittleEndian.PutUint32(b[:4], uint32(m.Version))
	buf.Write(b[:4])
	binary.LittleEndian.PutUint64(b[:], uint64(m.Services))
	buf.Write(b[:])
	binary.LittleEndian.PutUint64(b[:], uint64(m.Timestamp))
	buf.Write(b[:])

	m.AddrRecv.encode(buf)
	m.AddrFrom.encode(buf)

	binary.LittleEndian.PutUint64(b[:], m.Nonce)
	buf.Write(b[:])

	if err := WriteCompactUint(buf, uint64(len(m.UserAgent))); err != nil {
		return nil, err
	}
	buf.WriteString(m.UserAgent)

	binary.LittleEndian.PutUint32(b[:4], uint32(m.StartHeight))
	buf.Write(b[:4])

	if m.Version >= RelayVersion {
		relay := byte(0)
		if m.Relay {
			relay = 1
		}
		buf.WriteByte(relay)
	}

	return buf.Bytes(), nil
}

// DecodeVersion parses a version payload. The relay byte is optional
// even for peers past RelayVersion; an absent byte reads as false.
func DecodeVersion(payload []byte) (*VersionMsg, error) {
	r := bytes.NewReader(payload)
	var m VersionMsg

	var b [8]byte
	if _, err := io.ReadFull(r, b[:4]); err != nil {
		return nil, noEOF(err)
	}
	m.Version = int32(binary.LittleEndian.Uint32(b[:4]))

	if _, err := io.ReadFull(r, b[:]); err != nil {
		return nil, noEOF(err)
	}
	m.Services = ServiceFlag(binary.LittleEndian.Uint64(b[:]))

	if _, err := io.ReadFull(r, b[:]); err != nil {
		return nil, noEOF(err)
	}
	m.Timestamp = int64(binary.LittleEndian.Uint64(b[:]))

	var err error
	if m.AddrRecv, err = decodeNetAddress(r); err != nil {
		return nil, err
	}
	if m.AddrFrom, err = decodeNetAddress(r); err != nil {
		return nil, err
	}

	if _, err := io.ReadFull(r, b[:]); err != nil {
		return nil, noEOF(err)
	}
	m.Nonce = binary.LittleEndian.Uint64(b[:])

	uaLen, err := ReadCompactUint(r)
	if err != nil {
		return nil, noEOF(err)
	}
	if uaLen > uint64(r.Len()) {
		return nil, fmt.Errorf("user agent length %d exceeds %d remaining bytes: %w",
			uaLen, r.Len(), io.ErrUnexpectedEOF)
	}
	ua := make([]byte, uaLen)
	if _, err := io.ReadFull(r, ua); err != nil {
		return nil, noEOF(err)
	}
	m.UserAgent = string(ua)

	if _, err := io.ReadFull(r, b[:4]); err != nil {
		return nil, noEOF(err)
	}
	m.StartHeight = int32(binary.LittleEndian.Uint32(b[:4]))

	if m.Version >= RelayVersion && r.Len() > 0 {
		relay, _ := r.ReadByte()
		switch relay {
		case 0:
			m.Relay = false
		case 1:
			m.Relay = true
		default:
			return nil, fmt.Errorf("invalid relay flag encoding 0x%02x", relay)
		}
	}

	return &m, nil
}
