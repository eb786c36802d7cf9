// Package wire implements the subset of the bitcoin p2p wire protocol
// needed to perform a version/verack handshake: the message envelope,
// the version and verack payloads, and the compact size encoding.
package wire

import (
	"fmt"
	"strings"
)

const (
	// ProtocolVersion is the p2p protocol version advertised in outgoing
	// version messages.
	ProtocolVersion int32 = 70015

	// RelayVersion is the first protocol version whose version message
	// carries the trailing relay flag (BIP 37).
	RelayVersion int32 = 70001

	// MessageHeaderSize is the size of a message header. Network (magic)
	// 4 bytes + command 12 bytes + payload length 4 bytes + checksum
	// 4 bytes.
	MessageHeaderSize = 24

	// CommandSize is the fixed size of the command field in the message
	// header. Shorter commands are NUL padded.
	CommandSize = 12

	// MaxPayloadSize is the largest payload accepted on encode or decode.
	MaxPayloadSize = 32 * 1024 * 1024
)

// Commands exchanged during the handshake.
const (
	CmdVersion = "version"
	CmdVerack  = "verack"
)

// Network selects one of the known bitcoin network variants.
type Network string

const (
	Mainnet  Network = "mainnet"
	Testnet3 Network = "testnet3"
	Signet   Network = "signet"
	Regtest  Network = "regtest"
	Namecoin Network = "namecoin"
)

// Params carries the constants that differ between network variants.
type Params struct {
	Net Network

	// Magic is the 4-byte value leading every message on this network.
	Magic [4]byte

	// DefaultPort is the port peers listen on by default.
	DefaultPort uint16
}

var networks = map[Network]Params{
	Mainnet:  {Net: Mainnet, Magic: [4]byte{0xf9, 0xbe, 0xb4, 0xd9}, DefaultPort: 8333},
	Testnet3: {Net: Testnet3, Magic: [4]byte{0x0b, 0x11, 0x09, 0x07}, DefaultPort: 18333},
	Signet:   {Net: Signet, Magic: [4]byte{0x0a, 0x0c, 0xcf, 0x40}, DefaultPort: 38333},
	Regtest:  {Net: Regtest, Magic: [4]byte{0xfa, 0xbf, 0xb5, 0xda}, DefaultPort: 18444},
	Namecoin: {Net: Namecoin, Magic: [4]byte{0xf9, 0xbe, 0xb4, 0xfe}, DefaultPort: 8334},
}

// ParamsFor returns the parameters of the named network.
func ParamsFor(n Network) (Params, error) {
	p, ok := networks[n]
	if !ok {
		return Params{}, fmt.Errorf("unknown network %q", n)
	}
	return p, nil
}

// ServiceFlag identifies services supported by a bitcoin peer, encoded
// as a 64-bit bitfield in version messages and address records.
type ServiceFlag uint64

const (
	// SFNodeNetwork indicates a full node that can serve complete blocks.
	SFNodeNetwork ServiceFlag = 1

	// SFNodeGetUTXO indicates support for the getutxo protocol request.
	SFNodeGetUTXO ServiceFlag = 2

	// SFNodeBloom indicates support for bloom-filtered connections.
	SFNodeBloom ServiceFlag = 4

	// SFNodeWitness indicates blocks and transactions are served
	// including witness data.
	SFNodeWitness ServiceFlag = 8

	// SFNodeXthin indicates support for Xtreme Thinblocks.
	SFNodeXthin ServiceFlag = 16

	// SFNodeCompactFilters indicates support for BIP 157 compact filters.
	SFNodeCompactFilters ServiceFlag = 64

	// SFNodeNetworkLimited indicates a pruned node keeping at least the
	// last 288 blocks.
	SFNodeNetworkLimited ServiceFlag = 1024
)

var serviceFlagNames = []struct {
	flag ServiceFlag
	name string
}{
	{SFNodeNetwork, "NodeNetwork"},
	{SFNodeGetUTXO, "NodeGetUTXO"},
	{SFNodeBloom, "NodeBloom"},
	{SFNodeWitness, "NodeWitness"},
	{SFNodeXthin, "NodeXthin"},
	{SFNodeCompactFilters, "NodeCompactFilters"},
	{SFNodeNetworkLimited, "NodeNetworkLimited"},
}

// String lists the set flags, keeping any unnamed bits as a hex remainder.
func (f ServiceFlag) String() string {
	if f == 0 {
		return "0x0"
	}
	var names []string
	rest := f
	for _, sf := range serviceFlagNames {
		if f&sf.flag != 0 {
			names = append(names, sf.name)
			rest &^= sf.flag
		}
	}
	if rest != 0 {
		names = append(names, fmt.Sprintf("0x%x", uint64(rest)))
	}
	return strings.Join(names, "|")
}
