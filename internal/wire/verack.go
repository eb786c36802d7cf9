package wire

import "fmt"

// VerackMsg is the zero-payload acknowledgment a node sends once it
// accepts a peer's version message.
type VerackMsg struct{}

// Encode returns the empty payload.
func (VerackMsg) Encode() ([]byte, error) {
	return nil, nil
}

// DecodeVerack rejects any payload bytes; the message carries none.
func DecodeVerack(payload []byte) (VerackMsg, error) {
	if len(payload) != 0 {
		return VerackMsg{}, fmt.Errorf("verack carries %d unexpected payload bytes", len(payload))
	}
	return VerackMsg{}, nil
}
