// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package credential

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMD5CryptRoundTrip(t *testing.T) {
	hash := md5Crypt("hunter2", "saltsalt")
	assert.True(t, md5CryptVerify("hunter2", hash))
	assert.False(t, md5CryptVerify("wrongpassword", hash))
}

func TestMD5CryptVerifyRejectsNonMD5Hash(t *testing.T) {
	assert.False(t, md5CryptVerify("hunter2", "$6$unsupportedscheme$abcdef"))
	assert.False(t, md5CryptVerify("hunter2", ""))
}

func TestMD5CryptIsDeterministic(t *testing.T) {
	a := md5Crypt("password", "fixedsalt")
	b := md5Crypt("password", "fixedsalt")
	assert.Equal(t, a, b)
}
