// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package group implements principal group-membership resolution: OS group
// membership, primary GID match, and the digest password file, tried in
// that order.
package group

import "strings"

// OSGroup is the shape a group-membership source exposes for one group.
type OSGroup struct {
	Name    string
	GID     int
	Members []string
}

// OSUser is the subset of system user record fields group resolution needs.
type OSUser struct {
	Username string
	GID      int
	Found    bool
}

// OSGroups looks up system group records, the collaborator backing
// GroupResolver's first two resolution steps.
type OSGroups interface {
	// Lookup returns the named group's record, or ok=false if it does not exist.
	Lookup(name string) (OSGroup, bool)
	// LookupUser returns the system user record for username.
	LookupUser(username string) OSUser
}

// DigestMembership is the subset of digest.Store that GroupResolver needs:
// a third, file-backed source of group membership for accounts that are not
// OS users.
type DigestMembership interface {
	HasEntry(user, group string) bool
}

// Resolver implements GroupResolver(user, group) -> bool.
type Resolver struct {
	OS     OSGroups
	Digest DigestMembership
}

// NewResolver builds a Resolver from its two collaborators.
func NewResolver(os OSGroups, digest DigestMembership) *Resolver {
	return &Resolver{OS: os, Digest: digest}
}

// Resolve reports whether username is a member of groupname, trying OS group
// membership, then primary GID match, then the digest password file. This
// ordering intentionally allows the digest file to grant group membership
// for accounts that are not OS users.
func (r *Resolver) Resolve(username, groupname string) bool {
	if username == "" || groupname == "" {
		return false
	}

	var (
		osGroup   OSGroup
		haveGroup bool
	)
	if r.OS != nil {
		osGroup, haveGroup = r.OS.Lookup(groupname)
		if haveGroup {
			for _, member := range osGroup.Members {
				if strings.EqualFold(username, member) {
					return true
				}
			}
		}
	}

	if haveGroup && r.OS != nil {
		user := r.OS.LookupUser(username)
		if user.Found && user.GID == osGroup.GID {
			return true
		}
	}

	if r.Digest != nil && r.Digest.HasEntry(username, groupname) {
		return true
	}

	return false
}
