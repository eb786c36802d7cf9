package wire

import (
	"encoding/binary"
	"io"
	"math"
)

// WriteCompactUint writes v using the protocol's variable-width compact
// size encoding. Values below 0xfd occupy a single byte; the markers
// 0xfd, 0xfe and 0xff are followed by 2, 4 and 8 byte little-endian
// values respectively.
func WriteCompactUint(w io.Writer, v uint64) error {
	switch {
	case v < 0xfd:
		_, err := w.Write([]byte{byte(v)})
		return err
	case v <= math.MaxUint16:
		var buf [3]byte
		buf[0] = 0xfd
		binary.LittleEndian.PutUint16(buf[1:], uint16(v))
		_, err := w.Write(buf[:])
		return err
	case v <= math.MaxUint32:
		var buf [5]byte
		buf[0] = 0xfe
		binary.LittleEndian.PutUint32(buf[1:], uint32(v))
		_, err := w.Write(buf[:])
		return err
	default:
		var buf [9]byte
		buf[0] = 0xff
		binary.LittleEndian.PutUint64(buf[1:], v)
		_, err := w.Write(buf[:])
		return err
	}
}

// ReadCompactUint reads one compact size value from r. A stream ending
// inside the multi-byte forms yields io.ErrUnexpectedEOF.
func ReadCompactUint(r io.Reader) (uint64, error) {
	var marker [1]byte
	if _, err := io.ReadFull(r, marker[:]); err != nil {
		return 0, err
	}
	switch marker[0] {
	case 0xfd:
		var buf [2]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, noEOF(err)
		}
		return uint64(binary.LittleEndian.Uint16(buf[:])), nil
	case 0xfe:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, noEOF(err)
		}
		return uint64(binary.LittleEndian.Uint32(buf[:])), nil
	case 0xff:
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, noEOF(err)
		}
		return binary.LittleEndian.Uint64(buf[:]), nil
	default:
		return uint64(marker[0]), nil
	}
}
