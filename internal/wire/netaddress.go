package wire

import (
	"bytes"
	"encoding/binary"
	"io"
	"net/netip"
)

// netAddressSize is the wire size of an address record embedded in a
// version message: services 8 bytes + IP 16 bytes + port 2 bytes.
const netAddressSize = 26

// NetAddress is the address record embedded in version messages. IPv4
// addresses travel in their IPv4-mapped IPv6 form. The port is encoded
// big-endian, the sole big-endian field in the protocol.
type NetAddress struct {
	Services ServiceFlag
	IP       netip.Addr
	Port     uint16
}

// NewNetAddress builds an address record from a socket address.
func NewNetAddress(addr netip.AddrPort, services ServiceFlag) NetAddress {
	return NetAddress{Services: services, IP: addr.Addr(), Port: addr.Port()}
}

func (na *NetAddress) encode(buf *bytes.Buffer) {
	var b [netAddressSize]byte
	binary.LittleEndian.PutUint64(b[0:8], uint64(na.Services))
	ip := na.IP.As16()
	copy(b[8:24], ip[:])
	binary.BigEndian.PutUint16(b[24:26], na.Port)
	buf.Write(b[:])
}

func decodeNetAddress(r io.Reader) (NetAddress, error) {
	var b [netAddressSize]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return NetAddress{}, noEOF(err)
	}
	var ip [16]byte
	copy(ip[:], b[8:24])
	return NetAddress{
		Services: ServiceFlag(binary.LittleEndian.Uint64(b[0:8])),
		IP:       netip.AddrFrom16(ip).Unmap(),
		Port:     binary.BigEndian.Uint16(b[24:26]),
	}, nil
}
