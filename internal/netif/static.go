// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package netif

import "grimm.is/printgate/internal/authmask"

// StaticRegistry is a synthetic InterfaceRegistry for tests: it holds a fixed
// set of interfaces and never touches the live network stack.
type StaticRegistry struct {
	ifaces map[string]authmask.Iface
}

// NewStaticRegistry builds a StaticRegistry from the given interfaces.
func NewStaticRegistry(ifaces ...authmask.Iface) *StaticRegistry {
	m := make(map[string]authmask.Iface, len(ifaces))
	for _, i := range ifaces {
		m[i.Name] = i
	}
	return &StaticRegistry{ifaces: m}
}

// Refresh is a no-op: the set of interfaces is fixed at construction time.
func (s *StaticRegistry) Refresh() error { return nil }

// Local returns every interface marked local.
func (s *StaticRegistry) Local() []authmask.Iface {
	out := make([]authmask.Iface, 0, len(s.ifaces))
	for _, i := range s.ifaces {
		if i.IsLocal {
			out = append(out, i)
		}
	}
	return out
}

// Lookup finds an interface by name.
func (s *StaticRegistry) Lookup(name string) (authmask.Iface, bool) {
	i, ok := s.ifaces[name]
	return i, ok
}

// Set replaces or adds a single interface, useful for tests that mutate
// state mid-scenario (e.g. simulating an interface going down).
func (s *StaticRegistry) Set(iface authmask.Iface) {
	s.ifaces[iface.Name] = iface
}
