// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package credential

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	apperrors "grimm.is/printgate/internal/errors"
)

// PasswordSource supplies the stored crypt hash for a username, standing in
// for getpwnam/getspnam. ok is false for an unknown user or a blank stored
// password, both of which must fail closed.
type PasswordSource interface {
	StoredHash(username string) (hash string, ok bool)
}

// ShadowBackend authenticates against a PasswordSource using MD5-crypt
// comparison, the path the source takes when PAM is unavailable.
type ShadowBackend struct {
	Source PasswordSource
}

// NewShadowBackend builds a ShadowBackend over source.
func NewShadowBackend(source PasswordSource) *ShadowBackend {
	return &ShadowBackend{Source: source}
}

// Authenticate compares password against the stored hash for username. A
// missing user or a blank stored password is treated as failure, never as
// an open door. Both FreeBSD-style MD5-crypt ($1$) and bcrypt ($2a$/$2b$)
// hashes are accepted, since shadow files in the wild carry either.
func (b *ShadowBackend) Authenticate(username, password string) (bool, error) {
	if b.Source == nil {
		return false, apperrors.New(apperrors.KindInternal, "no password source configured")
	}

	hash, ok := b.Source.StoredHash(username)
	if !ok || hash == "" {
		return false, nil
	}

	if strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$") || strings.HasPrefix(hash, "$2y$") {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil, nil
	}

	return md5CryptVerify(password, hash), nil
}

// ExternalBackend delegates Basic authentication to an external helper
// process (e.g. a setuid helper wrapping pam_authenticate) that reads
// "username\npassword\n" on stdin and exits 0 on success.
type ExternalBackend struct {
	Path    string
	Timeout time.Duration
}

// NewExternalBackend builds an ExternalBackend invoking the program at path.
func NewExternalBackend(path string, timeout time.Duration) *ExternalBackend {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ExternalBackend{Path: path, Timeout: timeout}
}

// Authenticate runs the external helper, treating exit code 0 as success and
// any other outcome (including a spawn failure or timeout) as a failed
// authentication rather than an error, since policy should not distinguish
// "helper broken" from "credentials rejected" to the caller.
func (b *ExternalBackend) Authenticate(username, password string) (bool, error) {
	if b.Path == "" {
		return false, apperrors.New(apperrors.KindInternal, "no external auth helper configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, b.Path)
	cmd.Stdin = strings.NewReader(username + "\n" + password + "\n")

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return false, nil
	}
	return true, nil
}
