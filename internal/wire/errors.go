package wire

import (
	"errors"
	"io"
)

// Encode and decode failures form a closed set so callers can classify
// outcomes with errors.Is instead of matching on message text.
var (
	// ErrInvalidCommand is returned when encoding a command name longer
	// than CommandSize bytes.
	ErrInvalidCommand = errors.New("command exceeds 12 bytes")

	// ErrMagicMismatch is returned when a message does not open with the
	// expected network magic.
	ErrMagicMismatch = errors.New("magic value mismatch")

	// ErrChecksumMismatch is returned when the header checksum does not
	// match the checksum recomputed over the payload.
	ErrChecksumMismatch = errors.New("checksum is invalid")

	// ErrUnknownCommand is returned when the header command field is not
	// a NUL-padded ASCII command name.
	ErrUnknownCommand = errors.New("command name unknown")

	// ErrPayloadTooBig is returned when a payload exceeds MaxPayloadSize
	// on either encode or decode.
	ErrPayloadTooBig = errors.New("payload too big")
)

// noEOF maps a bare EOF to ErrUnexpectedEOF for reads that began inside
// a value. Callers that need to distinguish a clean stream end keep the
// EOF from their own leading read.
func noEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
