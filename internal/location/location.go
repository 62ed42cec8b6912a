// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package location implements the policy rule table: path-prefixed Location
// records and the longest-prefix, verb-gated find-best selector that picks
// which Location governs a given request.
package location

import (
	"strings"

	apperrors "grimm.is/printgate/internal/errors"

	"grimm.is/printgate/internal/authmask"
)

// VerbMask is a bitset over the HTTP/IPP methods a Location applies to.
type VerbMask uint32

const (
	VerbOptions VerbMask = 1 << iota
	VerbGet
	VerbHead
	VerbPost
	VerbPut
	VerbDelete
	VerbTrace
	VerbIPP

	VerbAll = VerbOptions | VerbGet | VerbHead | VerbPost | VerbPut | VerbDelete | VerbTrace | VerbIPP
)

// Order selects how the host filter combines allow/deny lists.
type Order int

const (
	// OrderAllowThenDeny evaluates "Order Deny,Allow": default allow, deny
	// overrides, then a later explicit allow overrides the deny.
	OrderAllowThenDeny Order = iota
	// OrderDenyThenAllow evaluates "Order Allow,Deny": default deny, allow
	// overrides, then a later explicit deny overrides the allow.
	OrderDenyThenAllow
)

// AuthScheme is the credential scheme a Location requires.
type AuthScheme int

const (
	AuthNone AuthScheme = iota
	AuthBasic
	AuthDigest
	AuthBasicDigest
)

// Level controls whether any authenticated user suffices or principals must
// be checked.
type Level int

const (
	LevelAnonymous Level = iota
	LevelUser
	LevelGroup
)

// Satisfy controls how the host filter and credential verdicts combine.
type Satisfy int

const (
	// SatisfyAll requires both the host filter and credentials to pass.
	SatisfyAll Satisfy = iota
	// SatisfyAny requires either the host filter or credentials to pass.
	SatisfyAny
)

// Encryption is the transport requirement for a Location.
type Encryption int

const (
	EncryptionIfRequested Encryption = iota
	EncryptionNever
	EncryptionRequired
)

// Location is a policy record governing a path prefix.
type Location struct {
	Path       string
	PathLen    int
	VerbMask   VerbMask
	Order      Order
	Allow      []authmask.Mask
	Deny       []authmask.Mask
	AuthScheme AuthScheme
	Level      Level
	Principals []string
	Satisfy    Satisfy
	Encryption Encryption
	Op         int
}

// New creates a Location for path, defaulting to VerbAll/SatisfyAll/auth
// none: a Location governs every verb and requires all satisfy conditions
// until narrowed.
func New(path string) (*Location, error) {
	if path == "" || path[0] != '/' {
		return nil, apperrors.New(apperrors.KindValidation, "location path must be non-empty and begin with '/'")
	}
	return &Location{
		Path:     path,
		PathLen:  len(path),
		VerbMask: VerbAll,
		Satisfy:  SatisfyAll,
	}, nil
}

// AddAllow appends an allow-list mask.
func (l *Location) AddAllow(m authmask.Mask) {
	l.Allow = append(l.Allow, m)
}

// AddDeny appends a deny-list mask.
func (l *Location) AddDeny(m authmask.Mask) {
	l.Deny = append(l.Deny, m)
}

// AddPrincipal appends a principal token (plain username, "@group", or a
// virtual token such as "@OWNER"/"@SYSTEM").
func (l *Location) AddPrincipal(p string) {
	l.Principals = append(l.Principals, p)
}

// Clone returns a deep copy: no slice or string backing array is shared with
// the receiver, so mutating the copy (or the original) never aliases.
func (l *Location) Clone() *Location {
	c := *l

	if l.Allow != nil {
		c.Allow = make([]authmask.Mask, len(l.Allow))
		copy(c.Allow, l.Allow)
	}
	if l.Deny != nil {
		c.Deny = make([]authmask.Mask, len(l.Deny))
		copy(c.Deny, l.Deny)
	}
	if l.Principals != nil {
		c.Principals = make([]string, len(l.Principals))
		copy(c.Principals, l.Principals)
	}

	return &c
}

// Table is the LocationTable: an insertion-ordered collection of Locations.
// It is read-only once configuration load finishes; reload builds a new
// Table and swaps it in atomically at the call site.
type Table struct {
	entries []*Location
}

// NewTable returns an empty LocationTable.
func NewTable() *Table {
	return &Table{}
}

// Add appends loc, rejecting a second Location whose path equals an existing
// one case-insensitively. Case is folded for every path, including paths
// outside /printers/ and /classes/ that FindBest matches case-sensitively.
// See the Open Question decision recorded for this behavior.
func (t *Table) Add(loc *Location) error {
	for _, existing := range t.entries {
		if existing.PathLen == loc.PathLen && strings.EqualFold(existing.Path, loc.Path) {
			err := apperrors.Errorf(apperrors.KindConflict, "duplicate location path %q", loc.Path)
			return apperrors.Attr(err, "path", loc.Path)
		}
	}
	t.entries = append(t.entries, loc)
	return nil
}

// All returns every Location in insertion order. The caller must not mutate
// the returned slice's elements.
func (t *Table) All() []*Location {
	return t.entries
}

// FindByPath returns the first Location whose Path exactly matches path.
func (t *Table) FindByPath(path string) (*Location, bool) {
	for _, loc := range t.entries {
		if loc.Path == path {
			return loc, true
		}
	}
	return nil, false
}

// DeleteAll discards every Location. The Table instance is otherwise still
// usable: Add may be called again to rebuild it, though in practice reload
// builds a fresh Table via NewTable instead.
func (t *Table) DeleteAll() {
	t.entries = nil
}

// Copy returns a deep copy of the table: every Location is itself cloned, so
// neither table's Locations alias the other's mask or principal slices.
func (t *Table) Copy() *Table {
	out := &Table{entries: make([]*Location, len(t.entries))}
	for i, loc := range t.entries {
		out.entries[i] = loc.Clone()
	}
	return out
}

const (
	printersPrefix = "/printers/"
	classesPrefix  = "/classes/"
	ppdSuffix      = ".ppd"
)

// normalizeRequestPath drops a trailing ".ppd" from /printers/ and /classes/
// resource paths before matching, mirroring the queue-name/file-extension
// split the original resource naming scheme relies on.
func normalizeRequestPath(path string) string {
	if !strings.HasPrefix(path, printersPrefix) && !strings.HasPrefix(path, classesPrefix) {
		return path
	}
	if len(path) > len(ppdSuffix) && strings.HasSuffix(path, ppdSuffix) {
		return path[:len(path)-len(ppdSuffix)]
	}
	return path
}

// FindBest returns the Location with the longest Path that is a prefix of
// path and whose VerbMask intersects verb. Prefix comparison is
// case-insensitive for /printers/ and /classes/ resources (queue names are
// case-insensitive identifiers) and case-sensitive otherwise.
func (t *Table) FindBest(path string, verb VerbMask) (*Location, bool) {
	uri := normalizeRequestPath(path)
	caseInsensitive := strings.HasPrefix(uri, printersPrefix) || strings.HasPrefix(uri, classesPrefix)

	var best *Location
	bestLen := 0

	for _, loc := range t.entries {
		if loc.Path == "" || loc.Path[0] != '/' {
			continue
		}
		if loc.VerbMask&verb == 0 {
			continue
		}
		if loc.PathLen <= bestLen || loc.PathLen > len(uri) {
			continue
		}

		candidate := uri[:loc.PathLen]
		var match bool
		if caseInsensitive {
			match = strings.EqualFold(candidate, loc.Path)
		} else {
			match = candidate == loc.Path
		}

		if match {
			best = loc
			bestLen = loc.PathLen
		}
	}

	return best, best != nil
}
