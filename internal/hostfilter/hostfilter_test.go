// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package hostfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/printgate/internal/authmask"
	"grimm.is/printgate/internal/location"
)

func admin10_8(t *testing.T, order location.Order) *location.Location {
	t.Helper()
	loc, err := location.New("/admin/")
	require.NoError(t, err)
	loc.Order = order
	loc.AddDeny(authmask.NewIPMask([4]uint32{0, 0, 0, 0}, [4]uint32{0, 0, 0, 0}))
	loc.AddAllow(authmask.NewIPMask([4]uint32{0, 0, 0, 0x7f000000}, [4]uint32{0, 0, 0, 0xff000000}))
	return loc
}

func TestLocalhostAlwaysAllows(t *testing.T) {
	loc := admin10_8(t, location.OrderDenyThenAllow)
	peer := authmask.NewPeer([4]uint32{0, 0, 0, 0x0a000001}, "localhost")
	assert.Equal(t, Allow, Evaluate(loc, peer, nil))
}

func TestOrderAllowThenDenyDefaultAllow(t *testing.T) {
	loc, _ := location.New("/")
	loc.Order = location.OrderAllowThenDeny
	peer := authmask.NewPeer([4]uint32{0, 0, 0, 0x0a010203}, "peer.example.com")
	assert.Equal(t, Allow, Evaluate(loc, peer, nil), "no rules means allow by default under Order Deny,Allow")
}

func TestOrderAllowThenDenyExplicitDenyOverridesDefault(t *testing.T) {
	loc, _ := location.New("/")
	loc.Order = location.OrderAllowThenDeny
	loc.AddDeny(authmask.NewIPMask([4]uint32{0, 0, 0, 0x0a000000}, [4]uint32{0, 0, 0, 0xff000000}))

	peer := authmask.NewPeer([4]uint32{0, 0, 0, 0x0a010203}, "peer.example.com")
	assert.Equal(t, Deny, Evaluate(loc, peer, nil))
}

func TestOrderAllowThenDenyLaterAllowOverridesDeny(t *testing.T) {
	loc, _ := location.New("/")
	loc.Order = location.OrderAllowThenDeny
	loc.AddDeny(authmask.NewIPMask([4]uint32{0, 0, 0, 0x0a000000}, [4]uint32{0, 0, 0, 0xff000000}))
	loc.AddAllow(authmask.NewIPMask([4]uint32{0, 0, 0, 0x0a010000}, [4]uint32{0, 0, 0, 0xffff0000}))

	peer := authmask.NewPeer([4]uint32{0, 0, 0, 0x0a010203}, "peer.example.com")
	assert.Equal(t, Allow, Evaluate(loc, peer, nil))
}

func TestOrderDenyThenAllowDefaultDeny(t *testing.T) {
	loc := admin10_8(t, location.OrderDenyThenAllow)
	peer := authmask.NewPeer([4]uint32{0, 0, 0, 0x0a010203}, "peer.example.com")
	assert.Equal(t, Deny, Evaluate(loc, peer, nil))
}

func TestOrderDenyThenAllowLaterDenyOverridesAllow(t *testing.T) {
	loc := admin10_8(t, location.OrderDenyThenAllow)
	peer := authmask.NewPeer([4]uint32{0, 0, 0, 0x7f000001}, "127.0.0.1")
	assert.Equal(t, Deny, Evaluate(loc, peer, nil), "allow matches, but deny (0.0.0.0/0) is applied last and wins")
}
