// Package sizeplan reports the memory footprint of a hashtable
// configuration before it is provisioned — the Go analogue of
// value_size_calculator.cpp, which existed purely to answer "how big a
// region do I need". It also ships a handful of realistic fixed-size
// value types recovered from that calculator, for use in tests and
// benchmarks that want a plausible dataplane record shape rather than
// a bare integer.
package sizeplan

// NeighborValue mirrors neighbor_value: a resolved next-hop's link
// address, flags, and the timestamp of its last refresh.
type NeighborValue struct {
	EtherAddr         [6]byte
	Flags             uint16
	LastUpdateTimeUTC uint32
}

// FWStateKind discriminates FWStateValue's protocol-specific fields —
// Go has no union, so the two shapes (fw_udp_state_value_t carries no
// fields at all, fw_tcp_state_value_t packs two 4-bit flag nibbles)
// share one byte behind this tag instead.
type FWStateKind uint8

const (
	FWStateUDP FWStateKind = 17 // matches fw_state_type::udp's protocol number
	FWStateTCP FWStateKind = 6  // matches fw_state_type::tcp's protocol number
)

// FWStateValue mirrors fw_state_value_t. TCPFlags packs SrcFlags in
// its low nibble and DstFlags in its high nibble, replacing the
// original's anonymous union over an empty UDP struct and a two-nibble
// TCP struct.
type FWStateValue struct {
	Kind                 FWStateKind
	Owner                uint8
	TCPFlags             uint8
	LastSeen             uint32
	StateTimeout         uint32
	FlowID               uint32
	LastSync             uint32
	PacketsSinceLastSync uint32
	PacketsBackward      uint64
	PacketsForward       uint64
	ACLID                uint8
}

// SrcFlags returns the low nibble of TCPFlags. Meaningless for a UDP
// record.
func (v FWStateValue) SrcFlags() uint8 { return v.TCPFlags & 0x0f }

// DstFlags returns the high nibble of TCPFlags. Meaningless for a UDP
// record.
func (v FWStateValue) DstFlags() uint8 { return v.TCPFlags >> 4 }

// NAT64StatefulLANValue mirrors nat64stateful_lan_value: the LAN-side
// mapping a stateful NAT64 session translates through.
type NAT64StatefulLANValue struct {
	IPv4Source          [4]byte
	PortSource          uint16
	TimestampLastPacket uint16
	Flags               uint32
}

// NAT64StatefulWANValue mirrors nat64stateful_wan_value's union of a
// full IPv6 source address against a NAT64-mapped IPv4-in-IPv6 source
// plus destination port, by keeping both interpretations addressable
// over the same 16 bytes via IPv6Source.
type NAT64StatefulWANValue struct {
	IPv6Source          [16]byte // low 4 bytes double as a mapped IPv4 address
	PortDestination     uint16
	TimestampLastPacket uint16
	IPv6Destination     [16]byte
	Flags               uint32
}

// MappedIPv4Source reinterprets the low 4 bytes of IPv6Source as the
// mapped IPv4 address, mirroring the original's anonymous union member.
func (v NAT64StatefulWANValue) MappedIPv4Source() [4]byte {
	var ip [4]byte
	copy(ip[:], v.IPv6Source[12:16])
	return ip
}

// BalancerStateValue mirrors balancer_state_value_t: a load-balanced
// connection's real-server binding and its GC timers.
type BalancerStateValue struct {
	RealUnorderedID     uint32
	TimestampCreate     uint32
	TimestampLastPacket uint32
	TimestampGC         uint32
	StateTimeout        uint32
}

// TransportKey mirrors transport_key_t — a MOD-ID32 value carrying an
// ACL fragment's transport-layer discriminants. Go has no bitfields,
// so the five packed sub-fields collapse to explicit-width members
// occupying the same total 12 bytes the original's bitfield layout
// would round up to.
type TransportKey struct {
	NetworkID    uint32
	Protocol     uint16
	Group1       uint16
	Group2       uint16
	Group3       uint8
	NetworkFlags uint8
}

// TotalKey mirrors total_key_t.
type TotalKey struct {
	ACLID       uint32
	TransportID uint32
}

// Actions mirrors common::Actions, a fixed 4-word action-code vector
// attached to an ACL rule match.
type Actions struct {
	ActionData [4]uint32
}
