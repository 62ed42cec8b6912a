// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package authmask implements the tagged allow/deny mask variant used by
// Location rule lists: a mask matches a peer by local interface membership,
// host/domain name, or IPv4/v6 network.
package authmask

import (
	"encoding/binary"
	"fmt"
	"net"
	"strings"

	"github.com/miekg/dns"
)

// Kind discriminates the three mask variants.
type Kind int

const (
	KindInterface Kind = iota
	KindNamed
	KindIP
)

func (k Kind) String() string {
	switch k {
	case KindInterface:
		return "interface"
	case KindNamed:
		return "named"
	case KindIP:
		return "ip"
	default:
		return "unknown"
	}
}

// Mask is one entry of an allow or deny list. Only the fields relevant to
// its Kind are populated; the rest are zero.
type Mask struct {
	kind Kind

	// Interface / Named share the name+length shape but are never confused:
	// an Interface mask's name is an interface name (or "*" for any local
	// interface), a Named mask's name is a hostname or ".domain" suffix.
	name    string
	nameLen int

	address [4]uint32
	netmask [4]uint32
}

// NewInterfaceMask creates a mask matching the named local interface, or
// every local interface when name is "*" (the @LOCAL token).
func NewInterfaceMask(name string) Mask {
	return Mask{kind: KindInterface, name: name, nameLen: len(name)}
}

// NewNamedMask creates a mask matching a hostname exactly, or as a DNS
// suffix when name begins with '.'.
func NewNamedMask(name string) Mask {
	return Mask{kind: KindNamed, name: name, nameLen: len(name)}
}

// NewIPMask creates a mask matching a 128-bit address/netmask pair. IPv4 is
// embedded in the low word (index 3) with the upper three words zero.
func NewIPMask(address, netmask [4]uint32) Mask {
	return Mask{kind: KindIP, address: address, netmask: netmask}
}

func (m Mask) Kind() Kind { return m.kind }
func (m Mask) Name() string { return m.name }

func (m Mask) String() string {
	switch m.kind {
	case KindInterface:
		return fmt.Sprintf("interface(%s)", m.name)
	case KindNamed:
		return fmt.Sprintf("named(%s)", m.name)
	case KindIP:
		return fmt.Sprintf("ip(%08x:%08x:%08x:%08x/%08x:%08x:%08x:%08x)",
			m.address[0], m.address[1], m.address[2], m.address[3],
			m.netmask[0], m.netmask[1], m.netmask[2], m.netmask[3])
	default:
		return "mask(?)"
	}
}

// Peer is the (address, hostname) pair a mask is evaluated against.
// IP is big representation, host-order words (v4 embedded at index 3).
type Peer struct {
	IP       [4]uint32
	Host     string
	HostLen  int
}

// NewPeer builds a Peer, deriving HostLen from Host.
func NewPeer(ip [4]uint32, host string) Peer {
	return Peer{IP: ip, Host: host, HostLen: len(host)}
}

// NewPeerFromIP normalizes a net.IP into the 4-word big representation
// masks are compared against: v4 addresses occupy the low word with the
// upper three words zero, v6 addresses occupy all four. An unparseable IP
// normalizes to all zeros.
func NewPeerFromIP(ip net.IP, host string) Peer {
	var words [4]uint32

	if v4 := ip.To4(); v4 != nil {
		words[3] = binary.BigEndian.Uint32(v4)
	} else if v6 := ip.To16(); v6 != nil {
		for i := 0; i < 4; i++ {
			words[i] = binary.BigEndian.Uint32(v6[i*4 : i*4+4])
		}
	}

	return NewPeer(words, host)
}

// Family distinguishes the address family of a registered interface.
type Family int

const (
	FamilyV4 Family = iota
	FamilyV6
)

// Iface is the shape the InterfaceRegistry collaborator exposes per interface.
type Iface struct {
	Name    string
	IsLocal bool
	Family  Family

	// Network-order words: interface records hold network-order addresses
	// while Peer.IP holds host-order, and htonl/ntohl bridge the two at
	// comparison time.
	V4Addr uint32
	V4Mask uint32
	V6Addr [4]uint32
	V6Mask [4]uint32
}

// InterfaceRegistry is the injected capability that resolves @LOCAL/@IF(name)
// masks against the host's live network interfaces.
type InterfaceRegistry interface {
	// Refresh re-scans the system's interfaces. Called lazily, only when a
	// wildcard interface mask is evaluated.
	Refresh() error
	// Local returns every interface currently considered local.
	Local() []Iface
	// Lookup finds a single interface by name.
	Lookup(name string) (Iface, bool)
}

func htonl(v uint32) uint32 {
	return (v&0xff)<<24 | (v&0xff00)<<8 | (v&0xff0000)>>8 | (v&0xff000000)>>24
}

// Matches reports whether this single mask matches the peer. registry may be
// nil if m is not an Interface mask.
func (m Mask) Matches(peer Peer, registry InterfaceRegistry) bool {
	switch m.kind {
	case KindIP:
		for i := 0; i < 4; i++ {
			if peer.IP[i]&m.netmask[i] != m.address[i] {
				return false
			}
		}
		return true

	case KindNamed:
		if strings.EqualFold(dns.CanonicalName(peer.Host), dns.CanonicalName(m.name)) {
			return true
		}
		if peer.HostLen >= m.nameLen && m.nameLen > 0 && m.name[0] == '.' {
			suffix := peer.Host[peer.HostLen-m.nameLen:]
			return strings.EqualFold(suffix, m.name)
		}
		return false

	case KindInterface:
		if registry == nil {
			return false
		}
		netip4 := htonl(peer.IP[3])
		var netip6 [4]uint32
		for i := 0; i < 4; i++ {
			netip6[i] = htonl(peer.IP[i])
		}

		if m.name == "*" {
			if err := registry.Refresh(); err != nil {
				return false
			}
			for _, iface := range registry.Local() {
				if !iface.IsLocal {
					continue
				}
				if ifaceMatches(iface, netip4, netip6) {
					return true
				}
			}
			return false
		}

		iface, ok := registry.Lookup(m.name)
		if !ok {
			return false
		}
		return ifaceMatches(iface, netip4, netip6)

	default:
		return false
	}
}

func ifaceMatches(iface Iface, netip4 uint32, netip6 [4]uint32) bool {
	if iface.Family == FamilyV4 {
		return netip4&iface.V4Mask == iface.V4Addr&iface.V4Mask
	}
	for i := 0; i < 4; i++ {
		if netip6[i]&iface.V6Mask[i] != iface.V6Addr[i]&iface.V6Mask[i] {
			return false
		}
	}
	return true
}

// MatchAny scans masks in order and returns true on the first match. A later,
// more specific mask can never override an earlier match — this mirrors the
// Apache-style first-match-wins behavior of the source list evaluator.
func MatchAny(masks []Mask, peer Peer, registry InterfaceRegistry) bool {
	for _, m := range masks {
		if m.Matches(peer, registry) {
			return true
		}
	}
	return false
}
