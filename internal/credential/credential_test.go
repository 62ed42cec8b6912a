// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package credential

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/printgate/internal/location"
)

type fakeBasicBackend struct {
	ok  bool
	err error
}

func (f *fakeBasicBackend) Authenticate(username, password string) (bool, error) {
	return f.ok, f.err
}

type fakeDigestLookup struct {
	hash string
	ok   bool
}

func (f *fakeDigestLookup) Lookup(user, group string) (string, bool) {
	return f.hash, f.ok
}

func TestVerifyBasicSuccess(t *testing.T) {
	v := NewVerifier(&fakeBasicBackend{ok: true}, nil, location.AuthNone)
	err := v.Verify(Request{Username: "alice", Password: "secret"}, location.AuthBasic)
	assert.NoError(t, err)
}

func TestVerifyBasicFailure(t *testing.T) {
	v := NewVerifier(&fakeBasicBackend{ok: false}, nil, location.AuthNone)
	err := v.Verify(Request{Username: "alice", Password: "wrong"}, location.AuthBasic)
	assert.Error(t, err)
}

func TestVerifyDigestRequiresNonceMatchingPeerHost(t *testing.T) {
	v := NewVerifier(nil, &fakeDigestLookup{hash: "deadbeef", ok: true}, location.AuthNone)
	err := v.Verify(Request{
		Username: "alice",
		Nonce:    "other-host",
		PeerHost: "print.example.com",
	}, location.AuthDigest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonce")
}

func TestVerifyDigestComputesExpectedResponse(t *testing.T) {
	stored := "storeddigest"
	expected := md5Hex(stored, "GET", "/printers/foo", "print.example.com")

	v := NewVerifier(nil, &fakeDigestLookup{hash: stored, ok: true}, location.AuthNone)
	err := v.Verify(Request{
		Username: "alice",
		Nonce:    "print.example.com",
		PeerHost: "print.example.com",
		Verb:     "GET",
		URI:      "/printers/foo",
		Password: expected,
	}, location.AuthDigest)
	assert.NoError(t, err)
}

func TestVerifyDigestNoEntryFailsClosed(t *testing.T) {
	v := NewVerifier(nil, &fakeDigestLookup{ok: false}, location.AuthNone)
	err := v.Verify(Request{
		Username: "alice",
		Nonce:    "host",
		PeerHost: "host",
	}, location.AuthDigest)
	assert.Error(t, err)
}

func TestVerifyBasicDigest(t *testing.T) {
	expected := md5Hex("alice", "CUPS", "secret")
	v := NewVerifier(nil, &fakeDigestLookup{hash: expected, ok: true}, location.AuthNone)

	err := v.Verify(Request{Username: "alice", Password: "secret"}, location.AuthBasicDigest)
	assert.NoError(t, err)

	err = v.Verify(Request{Username: "alice", Password: "wrong"}, location.AuthBasicDigest)
	assert.Error(t, err)
}

func TestSchemeFallsBackToDefaultWhenLocationIsNone(t *testing.T) {
	v := NewVerifier(&fakeBasicBackend{ok: true}, nil, location.AuthBasic)
	err := v.Verify(Request{Username: "alice", Password: "secret"}, location.AuthNone)
	assert.NoError(t, err)
}
