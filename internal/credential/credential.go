// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package credential verifies Basic, Digest, and BasicDigest authorization
// headers against a pluggable OS-auth backend (for Basic) or the digest
// password store (for Digest/BasicDigest).
package credential

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	apperrors "grimm.is/printgate/internal/errors"
	"grimm.is/printgate/internal/location"
	"grimm.is/printgate/internal/logging"
)

// Request is the subset of an incoming request credential verification needs.
type Request struct {
	Scheme   string // "Basic", "Digest", "BasicDigest", or "Local"
	Username string
	Password string // Basic password, or the Digest response
	Nonce    string // Digest subfield; convention: must equal PeerHost
	Verb     string // HTTP verb/state string, e.g. "GET"
	URI      string
	PeerHost string
	Group    string // group to resolve the stored digest against, if any
}

// DigestLookup resolves the stored MD5 digest for (user, group).
type DigestLookup interface {
	Lookup(user, group string) (string, bool)
}

// OSAuthBackend authenticates a username/password pair for Basic auth.
// Exactly one operation: verify(user, password) -> bool. Implementations
// include ShadowBackend (direct shadow/crypt comparison) and ExternalBackend
// (delegates to an external helper, standing in for PAM).
type OSAuthBackend interface {
	Authenticate(username, password string) (bool, error)
}

// Verifier checks credentials against a Location's required scheme.
type Verifier struct {
	Basic         OSAuthBackend
	Digest        DigestLookup
	DefaultScheme location.AuthScheme
	log           *logging.Logger
}

// NewVerifier builds a Verifier. defaultScheme is used whenever a Location's
// AuthScheme is AuthNone but credentials are still required.
func NewVerifier(basic OSAuthBackend, digest DigestLookup, defaultScheme location.AuthScheme) *Verifier {
	return &Verifier{
		Basic:         basic,
		Digest:        digest,
		DefaultScheme: defaultScheme,
		log:           logging.WithComponent("credential"),
	}
}

// schemeFor resolves the effective scheme for a Location.
func (v *Verifier) schemeFor(loc location.AuthScheme) location.AuthScheme {
	if loc != location.AuthNone {
		return loc
	}
	return v.DefaultScheme
}

// Verify checks req against loc's auth scheme, returning nil on success or an
// error describing the failure: KindPermission for rejected credentials,
// KindInternal when Basic is required and no OS auth backend is configured.
func (v *Verifier) Verify(req Request, locScheme location.AuthScheme) error {
	switch v.schemeFor(locScheme) {
	case location.AuthBasic:
		return v.verifyBasic(req)
	case location.AuthDigest:
		return v.verifyDigest(req)
	case location.AuthBasicDigest:
		return v.verifyBasicDigest(req)
	default:
		return apperrors.New(apperrors.KindPermission, "no usable auth scheme configured")
	}
}

func (v *Verifier) verifyBasic(req Request) error {
	if v.Basic == nil {
		return apperrors.New(apperrors.KindInternal, "no OS auth backend configured")
	}
	ok, err := v.Basic.Authenticate(req.Username, req.Password)
	if err != nil {
		return apperrors.Wrap(err, apperrors.KindPermission, "basic auth backend error")
	}
	if !ok {
		return apperrors.New(apperrors.KindPermission, "basic authentication failed")
	}
	return nil
}

// verifyDigest implements the server-bound-nonce convention: the client's
// nonce subfield must equal the peer hostname.
func (v *Verifier) verifyDigest(req Request) error {
	if req.Nonce == "" || req.Nonce != req.PeerHost {
		return apperrors.New(apperrors.KindPermission, "digest nonce mismatch")
	}

	stored, ok := v.lookupDigest(req)
	if !ok {
		return apperrors.New(apperrors.KindPermission, "no digest entry for user")
	}

	expected := md5Hex(stored, req.Verb, req.URI, req.Nonce)
	if expected != req.Password {
		return apperrors.New(apperrors.KindPermission, "digest response mismatch")
	}
	return nil
}

func (v *Verifier) verifyBasicDigest(req Request) error {
	stored, ok := v.lookupDigest(req)
	if !ok {
		return apperrors.New(apperrors.KindPermission, "no digest entry for user")
	}

	expected := md5Hex(req.Username, "CUPS", req.Password)
	if expected != stored {
		return apperrors.New(apperrors.KindPermission, "basic-digest mismatch")
	}
	return nil
}

func (v *Verifier) lookupDigest(req Request) (string, bool) {
	if v.Digest == nil {
		return "", false
	}
	return v.Digest.Lookup(req.Username, req.Group)
}

// md5Hex joins parts with ':' and returns the lowercase hex MD5 digest,
// matching the digest-file password chaining convention.
func md5Hex(parts ...string) string {
	sum := md5.Sum([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(sum[:])
}

// DigestFileHash computes the value stored in a passwd.md5 entry for
// (username, password): MD5(username, "CUPS", password). Used by admin
// tooling that provisions digest password file entries.
func DigestFileHash(username, password string) string {
	return md5Hex(username, "CUPS", password)
}
