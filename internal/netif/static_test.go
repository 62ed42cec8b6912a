// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package netif

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"grimm.is/printgate/internal/authmask"
)

func TestStaticRegistryLookupAndLocal(t *testing.T) {
	reg := NewStaticRegistry(
		authmask.Iface{Name: "eth0", IsLocal: true, Family: authmask.FamilyV4},
		authmask.Iface{Name: "wan0", IsLocal: false, Family: authmask.FamilyV4},
	)

	_, ok := reg.Lookup("eth0")
	assert.True(t, ok)

	_, ok = reg.Lookup("missing")
	assert.False(t, ok)

	local := reg.Local()
	assert.Len(t, local, 1)
	assert.Equal(t, "eth0", local[0].Name)
}

func TestStaticRegistrySetUpdatesInPlace(t *testing.T) {
	reg := NewStaticRegistry(authmask.Iface{Name: "eth0", IsLocal: false})
	reg.Set(authmask.Iface{Name: "eth0", IsLocal: true})

	iface, ok := reg.Lookup("eth0")
	assert.True(t, ok)
	assert.True(t, iface.IsLocal)
}

func TestStaticRegistryRefreshIsNoop(t *testing.T) {
	reg := NewStaticRegistry()
	assert.NoError(t, reg.Refresh())
}
