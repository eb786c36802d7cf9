package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/goodnatureofminers/btc-handshake-scanner/pkg/safe"
)

// checksum returns the first 4 bytes of the double SHA-256 of payload.
func checksum(payload []byte) [4]byte {
	var sum [4]byte
	copy(sum[:], chainhash.DoubleHashB(payload))
	return sum
}

// EncodeMessage frames payload with the 24-byte header for the given
// command and network magic.
func EncodeMessage(command string, payload []byte, magic [4]byte) ([]byte, error) {
	if len(command) > CommandSize {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCommand, command)
	}
	length, err := safe.Uint32(len(payload))
	if err != nil {
		return nil, err
	}
	if length > MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooBig, length)
	}

	buf := make([]byte, 0, MessageHeaderSize+len(payload))
	buf = append(buf, magic[:]...)

	var cmd [CommandSize]byte
	copy(cmd[:], command)
	buf = append(buf, cmd[:]...)

	buf = binary.LittleEndian.AppendUint32(buf, length)
	sum := checksum(payload)
	buf = append(buf, sum[:]...)
	buf = append(buf, payload...)

	return buf, nil
}

// ReadMessage reads one framed message from r, verifies the magic and
// checksum, and returns the command name with its payload bytes. A
// stream that ends before the first header byte yields io.EOF; one that
// ends mid-message yields io.ErrUnexpectedEOF.
func ReadMessage(r io.Reader, magic [4]byte) (string, []byte, error) {
	var header [MessageHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return "", nil, err
	}

	if !bytes.Equal(header[:4], magic[:]) {
		return "", nil, fmt.Errorf("%w: got %x, want %x", ErrMagicMismatch, header[:4], magic)
	}

	command, err := parseCommand(header[4:16])
	if err != nil {
		return "", nil, err
	}

	length := binary.LittleEndian.Uint32(header[16:20])
	if length > MaxPayloadSize {
		return "", nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooBig, length)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return "", nil, noEOF(err)
	}

	if sum := checksum(payload); !bytes.Equal(header[20:24], sum[:]) {
		return "", nil, fmt.Errorf("%w: got %x, want %x", ErrChecksumMismatch, header[20:24], sum)
	}

	return command, payload, nil
}

// parseCommand validates the fixed-width command field: printable ASCII
// followed only by NUL padding.
func parseCommand(field []byte) (string, error) {
	end := bytes.IndexByte(field, 0)
	if end == -1 {
		end = len(field)
	}
	if end == 0 {
		return "", fmt.Errorf("%w: empty command field", ErrUnknownCommand)
	}
	for _, b := range field[end:] {
		if b != 0 {
			return "", fmt.Errorf("%w: %x", ErrUnknownCommand, field)
		}
	}
	for _, b := range field[:end] {
		if b < 0x21 || b > 0x7e {
			return "", fmt.Errorf("%w: %x", ErrUnknownCommand, field)
		}
	}
	return string(field[:end]), nil
}
