// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package netif implements the InterfaceRegistry collaborator that
// authmask.Mask consults to resolve @LOCAL and @IF(name) wildcard masks
// against the host's live network interfaces.
package netif

import (
	"encoding/binary"
	"net"
	"sync"

	"github.com/vishvananda/netlink"

	"grimm.is/printgate/internal/authmask"
	"grimm.is/printgate/internal/logging"
)

// Registry enumerates local network interfaces via netlink. It is safe for
// concurrent use: Refresh takes a write lock, the read methods take a read
// lock, matching the single-writer/many-readers discipline the interface
// registry is required to provide.
type Registry struct {
	mu     sync.RWMutex
	ifaces map[string]authmask.Iface
	log    *logging.Logger
}

// NewRegistry returns an empty Registry. Call Refresh before first use, or
// rely on the lazy Refresh triggered by a "*" interface mask.
func NewRegistry() *Registry {
	return &Registry{
		ifaces: make(map[string]authmask.Iface),
		log:    logging.WithComponent("netif"),
	}
}

// Refresh re-scans the system's interfaces and their addresses.
func (r *Registry) Refresh() error {
	links, err := netlink.LinkList()
	if err != nil {
		return err
	}

	next := make(map[string]authmask.Iface, len(links))

	for _, link := range links {
		attrs := link.Attrs()
		isLocal := attrs.Flags&net.FlagUp != 0

		iface := authmask.Iface{Name: attrs.Name, IsLocal: isLocal}

		addrs4, err := netlink.AddrList(link, netlink.FAMILY_V4)
		if err != nil {
			r.log.Warn("Failed to list v4 addresses", "interface", attrs.Name, "error", err)
		}
		if len(addrs4) > 0 {
			iface.Family = authmask.FamilyV4
			iface.V4Addr = ipToUint32(addrs4[0].IP)
			iface.V4Mask = maskToUint32(addrs4[0].Mask)
			next[attrs.Name] = iface
			continue
		}

		addrs6, err := netlink.AddrList(link, netlink.FAMILY_V6)
		if err != nil {
			r.log.Warn("Failed to list v6 addresses", "interface", attrs.Name, "error", err)
		}
		if len(addrs6) > 0 {
			iface.Family = authmask.FamilyV6
			iface.V6Addr = ipToWords(addrs6[0].IP)
			iface.V6Mask = maskToWords(addrs6[0].Mask)
			next[attrs.Name] = iface
			continue
		}

		next[attrs.Name] = iface
	}

	r.mu.Lock()
	r.ifaces = next
	r.mu.Unlock()

	return nil
}

// Local returns every interface currently flagged local (administratively up).
func (r *Registry) Local() []authmask.Iface {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]authmask.Iface, 0, len(r.ifaces))
	for _, i := range r.ifaces {
		if i.IsLocal {
			out = append(out, i)
		}
	}
	return out
}

// Lookup finds a single interface by name.
func (r *Registry) Lookup(name string) (authmask.Iface, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.ifaces[name]
	return i, ok
}

// iface address/mask words are stored network-order, matching authmask.Iface's
// contract (authmask.ifaceMatches compares them against htonl(peer.IP)). A
// net.IP's bytes are already in network order, so reading them back with
// LittleEndian yields the network-order uint32 (equivalently, htonl of the
// host-order value BigEndian would have produced).
func ipToUint32(ip net.IP) uint32 {
	v4 := ip.To4()
	if v4 == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(v4)
}

func maskToUint32(mask net.IPMask) uint32 {
	if len(mask) != net.IPv4len {
		return 0
	}
	return binary.LittleEndian.Uint32(mask)
}

func ipToWords(ip net.IP) [4]uint32 {
	v6 := ip.To16()
	var words [4]uint32
	if v6 == nil {
		return words
	}
	for i := 0; i < 4; i++ {
		words[i] = binary.LittleEndian.Uint32(v6[i*4 : i*4+4])
	}
	return words
}

func maskToWords(mask net.IPMask) [4]uint32 {
	var words [4]uint32
	if len(mask) != net.IPv6len {
		return words
	}
	for i := 0; i < 4; i++ {
		words[i] = binary.LittleEndian.Uint32(mask[i*4 : i*4+4])
	}
	return words
}
