// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package hostfilter evaluates a Location's allow/deny mask lists against a
// peer, producing an Apache-style Order Allow,Deny / Order Deny,Allow verdict.
package hostfilter

import (
	"strings"

	"grimm.is/printgate/internal/authmask"
	"grimm.is/printgate/internal/location"
)

// Verdict is the result of evaluating a Location's host filter.
type Verdict int

const (
	Deny Verdict = iota
	Allow
)

// Evaluate returns the host filter verdict for peer against loc's allow/deny
// lists and Order. A peer hostname of "localhost" always allows,
// unconditionally overriding both rule lists.
func Evaluate(loc *location.Location, peer authmask.Peer, registry authmask.InterfaceRegistry) Verdict {
	if strings.EqualFold(peer.Host, "localhost") {
		return Allow
	}

	switch loc.Order {
	case location.OrderDenyThenAllow:
		// Order Allow,Deny: default deny, allow overrides, then a later
		// explicit deny overrides the allow.
		verdict := Deny
		if authmask.MatchAny(loc.Allow, peer, registry) {
			verdict = Allow
		}
		if authmask.MatchAny(loc.Deny, peer, registry) {
			verdict = Deny
		}
		return verdict

	default: // OrderAllowThenDeny
		// Order Deny,Allow: default allow, deny overrides, then a later
		// explicit allow overrides the deny.
		verdict := Allow
		if authmask.MatchAny(loc.Deny, peer, registry) {
			verdict = Deny
		}
		if authmask.MatchAny(loc.Allow, peer, registry) {
			verdict = Allow
		}
		return verdict
	}
}
