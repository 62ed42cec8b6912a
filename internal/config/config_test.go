// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/printgate/internal/location"
)

const sample = `
server_name        = "print.example.com"
default_auth_scheme = "basic"
system_groups       = ["sys", "lpadmin"]

location "/" {
  order = "deny,allow"
  allow = ["all"]
}

location "/admin/" {
  verbs       = ["GET", "POST"]
  order       = "allow,deny"
  deny        = ["all"]
  allow       = ["127.0.0.0/8", "@lo"]
  auth_scheme = "basic"
  level       = "user"
  principals  = ["@SYSTEM"]
  satisfy     = "all"
  encryption  = "required"
}
`

func TestLoadBytesBuildsTable(t *testing.T) {
	result, err := LoadBytes("printgate.hcl", []byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "print.example.com", result.ServerName)
	assert.Equal(t, location.AuthBasic, result.DefaultScheme)
	assert.ElementsMatch(t, []string{"sys", "lpadmin"}, result.SystemGroups)

	admin, ok := result.Table.FindByPath("/admin/")
	require.True(t, ok)
	assert.Equal(t, location.OrderDenyThenAllow, admin.Order)
	assert.Equal(t, location.LevelUser, admin.Level)
	assert.Equal(t, location.EncryptionRequired, admin.Encryption)
	assert.Equal(t, location.SatisfyAll, admin.Satisfy)
	assert.Len(t, admin.Allow, 2)
	assert.Len(t, admin.Deny, 1)
	assert.Equal(t, location.VerbGet|location.VerbPost, admin.VerbMask)
}

func TestLoadBytesRejectsUnknownOrder(t *testing.T) {
	_, err := LoadBytes("bad.hcl", []byte(`location "/" { order = "sideways" }`))
	assert.Error(t, err)
}

func TestParseMaskVariants(t *testing.T) {
	_, err := ParseMask("all")
	assert.NoError(t, err)

	_, err = ParseMask("@eth0")
	assert.NoError(t, err)

	_, err = ParseMask("10.0.0.0/8")
	assert.NoError(t, err)

	_, err = ParseMask("print.example.com")
	assert.NoError(t, err)

	_, err = ParseMask("not a cidr/xyz")
	assert.Error(t, err)
}
