// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package authorizer implements the top-level request authorization
// decision: find-best Location selection, host filtering, encryption and
// access-level gating, credential verification, and principal/group checks.
package authorizer

import (
	"net"
	"strings"

	"github.com/google/uuid"

	"grimm.is/printgate/internal/authmask"
	"grimm.is/printgate/internal/credential"
	"grimm.is/printgate/internal/group"
	"grimm.is/printgate/internal/hostfilter"
	"grimm.is/printgate/internal/location"
	"grimm.is/printgate/internal/logging"
	"grimm.is/printgate/internal/metrics"
)

// Verdict is the HTTP-status-shaped outcome of an authorization decision.
type Verdict int

const (
	OK Verdict = iota
	Unauthorized
	Forbidden
	UpgradeRequired
)

func (v Verdict) String() string {
	switch v {
	case OK:
		return "ok"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	case UpgradeRequired:
		return "upgrade_required"
	default:
		return "unknown"
	}
}

// AuthHeader is the parsed Authorization header of an incoming request.
type AuthHeader struct {
	Scheme   string
	Username string
	Password string // Basic password, or the Digest response
	Nonce    string
}

// Request is everything the Authorizer needs to reach a decision.
type Request struct {
	Path     string
	Verb     location.VerbMask
	VerbName string // "GET", "POST", etc, used in the Digest hash chain

	PeerIP   net.IP
	PeerHost string
	TLS      bool

	Auth AuthHeader

	// IPPRequestingUserName is set when the IPP payload carries a
	// requesting-user-name attribute, independent of any Authorization header.
	IPPRequestingUserName string

	// Owner is the principal that owns the object being acted upon, if any.
	Owner string
}

// Authorizer ties the Location table, host filter, credential verifier, and
// group resolver together into the single top-level decision.
type Authorizer struct {
	Table        *location.Table
	Registry     authmask.InterfaceRegistry
	Credentials  *credential.Verifier
	Groups       *group.Resolver
	SystemGroups []string
	ServerName   string

	log *logging.Logger
}

// New builds an Authorizer.
func New(table *location.Table, registry authmask.InterfaceRegistry, creds *credential.Verifier, groups *group.Resolver, serverName string, systemGroups []string) *Authorizer {
	return &Authorizer{
		Table:        table,
		Registry:     registry,
		Credentials:  creds,
		Groups:       groups,
		SystemGroups: systemGroups,
		ServerName:   serverName,
		log:          logging.WithComponent("authorizer"),
	}
}

// Authorize runs the top-level decision for req, logging a uuid-tagged debug
// line naming the chosen Location and the resulting verdict.
func (a *Authorizer) Authorize(req Request) Verdict {
	decisionID := uuid.New().String()

	loc, ok := a.Table.FindBest(req.Path, req.Verb)

	// Step 1: no governing Location.
	if !ok {
		verdict := Forbidden
		if strings.EqualFold(req.PeerHost, "localhost") || req.PeerHost == a.ServerName {
			verdict = OK
		}
		a.record(decisionID, "", verdict, "no governing location")
		return verdict
	}

	peer := authmask.NewPeerFromIP(req.PeerIP, req.PeerHost)

	// Step 3: host filter.
	hostVerdict := hostfilter.Evaluate(loc, peer, a.Registry)

	// Step 4.
	if hostVerdict == hostfilter.Deny && loc.Satisfy == location.SatisfyAll {
		a.record(decisionID, loc.Path, Forbidden, "host filter denied, satisfy=all")
		return Forbidden
	}

	// Step 5.
	if loc.Encryption == location.EncryptionRequired && !req.TLS {
		a.record(decisionID, loc.Path, UpgradeRequired, "encryption required")
		return UpgradeRequired
	}

	// Step 6.
	if loc.Level == location.LevelAnonymous || (loc.AuthScheme == location.AuthNone && len(loc.Principals) == 0) {
		a.record(decisionID, loc.Path, OK, "anonymous access permitted")
		return OK
	}

	// Step 7.
	if loc.AuthScheme == location.AuthNone && loc.VerbMask&location.VerbIPP != 0 && req.IPPRequestingUserName != "" {
		a.record(decisionID, loc.Path, OK, "unauthenticated ipp requesting-user-name accepted")
		return OK
	}

	// Local certificate bypass: skip password verification but still run the
	// principal check with the claimed username.
	localCert := strings.EqualFold(req.PeerHost, "localhost") && strings.EqualFold(req.Auth.Scheme, "Local")

	// Step 8.
	if req.Auth.Username == "" {
		if loc.Satisfy == location.SatisfyAll || hostVerdict == hostfilter.Deny {
			a.record(decisionID, loc.Path, Unauthorized, "no username supplied")
			return Unauthorized
		}
		a.record(decisionID, loc.Path, OK, "no username supplied, satisfy=any host-allow")
		return OK
	}

	var matchedGroup string
	if !localCert {
		// Step 9: credential verification.
		credReq := credential.Request{
			Scheme:   req.Auth.Scheme,
			Username: req.Auth.Username,
			Password: req.Auth.Password,
			Nonce:    req.Auth.Nonce,
			Verb:     req.VerbName,
			URI:      req.Path,
			PeerHost: req.PeerHost,
		}

		matched, err := a.verifyWithGroups(loc, credReq)
		if err != nil {
			a.record(decisionID, loc.Path, Unauthorized, "credential verification failed: "+err.Error())
			return Unauthorized
		}
		matchedGroup = matched
	}

	// Step 10: root always matches.
	if req.Auth.Username == "root" {
		a.record(decisionID, loc.Path, OK, "root bypass")
		return OK
	}

	// Step 11: principal check.
	if a.checkPrincipal(loc, req.Auth.Username, req.Owner, matchedGroup) {
		a.record(decisionID, loc.Path, OK, "principal check passed")
		return OK
	}

	a.record(decisionID, loc.Path, Unauthorized, "principal check failed")
	return Unauthorized
}

// verifyWithGroups tries each candidate group for Digest/BasicDigest schemes
// (the (user, group) digest key may match a named principal group or the
// system groups), mirroring the source's "which group's digest entry
// matches" search. Basic auth ignores group entirely. The group whose
// digest entry matched is returned so the principal check doesn't need to
// re-resolve membership that credential verification already proved.
func (a *Authorizer) verifyWithGroups(loc *location.Location, req credential.Request) (matchedGroup string, err error) {
	scheme := loc.AuthScheme

	if scheme != location.AuthDigest && scheme != location.AuthBasicDigest {
		return "", a.Credentials.Verify(req, scheme)
	}

	candidates := digestGroupCandidates(loc, a.SystemGroups)
	if len(candidates) == 0 {
		return "", a.Credentials.Verify(req, scheme)
	}

	var lastErr error
	for _, g := range candidates {
		attempt := req
		attempt.Group = g
		if err := a.Credentials.Verify(attempt, scheme); err == nil {
			return g, nil
		} else {
			lastErr = err
		}
	}
	return "", lastErr
}

// digestGroupCandidates expands a Location's group-level principals into the
// list of group names a digest lookup should try: "@SYSTEM" expands to
// SystemGroups, anything else is used as a bare group name. checkPrincipal's
// LevelGroup branch uses the same bare-name convention via groupPrincipalName.
func digestGroupCandidates(loc *location.Location, systemGroups []string) []string {
	if loc.Level != location.LevelGroup || len(loc.Principals) == 0 {
		return nil
	}

	var out []string
	for _, name := range loc.Principals {
		if strings.EqualFold(name, "@SYSTEM") {
			out = append(out, systemGroups...)
			continue
		}
		out = append(out, groupPrincipalName(name))
	}
	return out
}

// groupPrincipalName strips a LevelGroup principal's optional leading '@' to
// the bare group name digestGroupCandidates and checkPrincipal both resolve
// against.
func groupPrincipalName(name string) string {
	return strings.TrimPrefix(name, "@")
}

// checkPrincipal implements §4.6: for LevelUser, an empty Principals list
// accepts any authenticated user; otherwise the first matching token wins.
// For LevelGroup, Principals are pure group names with "@SYSTEM" expanded.
// matchedGroup is the group a prior Digest/BasicDigest verification already
// proved membership in (see verifyWithGroups); it short-circuits a redundant
// Groups.Resolve call for that one group.
func (a *Authorizer) checkPrincipal(loc *location.Location, username, owner, matchedGroup string) bool {
	if loc.Level == location.LevelGroup {
		for _, name := range loc.Principals {
			if strings.EqualFold(name, "@SYSTEM") {
				if matchedGroup != "" && stringInSlice(matchedGroup, a.SystemGroups) {
					return true
				}
				if a.memberOfAny(username, a.SystemGroups) {
					return true
				}
				continue
			}
			groupName := groupPrincipalName(name)
			if matchedGroup != "" && matchedGroup == groupName {
				return true
			}
			if a.Groups != nil && a.Groups.Resolve(username, groupName) {
				return true
			}
		}
		return false
	}

	if len(loc.Principals) == 0 {
		return true
	}

	for _, name := range loc.Principals {
		switch {
		case strings.EqualFold(name, "@OWNER"):
			if owner != "" && strings.EqualFold(username, owner) {
				return true
			}
		case strings.EqualFold(name, "@SYSTEM"):
			if a.memberOfAny(username, a.SystemGroups) {
				return true
			}
		case strings.HasPrefix(name, "@"):
			if a.Groups != nil && a.Groups.Resolve(username, strings.TrimPrefix(name, "@")) {
				return true
			}
		default:
			if strings.EqualFold(username, name) {
				return true
			}
		}
	}
	return false
}

func (a *Authorizer) memberOfAny(username string, groups []string) bool {
	if a.Groups == nil {
		return false
	}
	for _, g := range groups {
		if a.Groups.Resolve(username, g) {
			return true
		}
	}
	return false
}

func stringInSlice(s string, list []string) bool {
	for _, item := range list {
		if strings.EqualFold(s, item) {
			return true
		}
	}
	return false
}

func (a *Authorizer) record(decisionID, path string, verdict Verdict, reason string) {
	metrics.RecordDecision(verdict.String(), path)
	a.log.Debug("authorization decision",
		"decision_id", decisionID,
		"location", path,
		"verdict", verdict.String(),
		"reason", reason,
	)
}
