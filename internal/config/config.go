// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package config loads the HCL2 Location {} block configuration into a
// location.Table, the server name, and the default auth scheme.
package config

import (
	"net"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsimple"

	"grimm.is/printgate/internal/authmask"
	apperrors "grimm.is/printgate/internal/errors"
	"grimm.is/printgate/internal/location"
)

// Result is everything a loaded configuration file produces.
type Result struct {
	ServerName    string
	DefaultScheme location.AuthScheme
	Table         *location.Table
	SystemGroups  []string
}

type fileSchema struct {
	ServerName        string          `hcl:"server_name,optional"`
	DefaultAuthScheme string          `hcl:"default_auth_scheme,optional"`
	SystemGroups      []string        `hcl:"system_groups,optional"`
	Locations         []locationBlock `hcl:"location,block"`
}

type locationBlock struct {
	Path       string   `hcl:"path,label"`
	Verbs      []string `hcl:"verbs,optional"`
	Order      string   `hcl:"order,optional"`
	Allow      []string `hcl:"allow,optional"`
	Deny       []string `hcl:"deny,optional"`
	AuthScheme string   `hcl:"auth_scheme,optional"`
	Level      string   `hcl:"level,optional"`
	Principals []string `hcl:"principals,optional"`
	Satisfy    string   `hcl:"satisfy,optional"`
	Encryption string   `hcl:"encryption,optional"`
}

// LoadFile parses the HCL file at path into a Result.
func LoadFile(path string) (*Result, error) {
	var schema fileSchema
	if err := hclsimple.DecodeFile(path, nil, &schema); err != nil {
		return nil, apperrors.Wrapf(err, apperrors.KindValidation, "failed to decode config %s", path)
	}
	return build(&schema)
}

// LoadBytes parses HCL source held in memory, labeling diagnostics with
// filename. Primarily useful for tests.
func LoadBytes(filename string, data []byte) (*Result, error) {
	var schema fileSchema
	if err := hclsimple.Decode(filename, data, nil, &schema); err != nil {
		return nil, apperrors.Wrapf(err, apperrors.KindValidation, "failed to decode config %s", filename)
	}
	return build(&schema)
}

func build(schema *fileSchema) (*Result, error) {
	defaultScheme, err := parseAuthScheme(schema.DefaultAuthScheme)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.KindValidation, "default_auth_scheme")
	}

	table := location.NewTable()
	for _, block := range schema.Locations {
		loc, err := buildLocation(block)
		if err != nil {
			return nil, apperrors.Wrapf(err, apperrors.KindValidation, "location %q", block.Path)
		}
		if err := table.Add(loc); err != nil {
			return nil, err
		}
	}

	return &Result{
		ServerName:    schema.ServerName,
		DefaultScheme: defaultScheme,
		Table:         table,
		SystemGroups:  schema.SystemGroups,
	}, nil
}

func buildLocation(block locationBlock) (*location.Location, error) {
	loc, err := location.New(block.Path)
	if err != nil {
		return nil, err
	}

	if len(block.Verbs) > 0 {
		mask, err := parseVerbMask(block.Verbs)
		if err != nil {
			return nil, err
		}
		loc.VerbMask = mask
	}

	order, err := parseOrder(block.Order)
	if err != nil {
		return nil, err
	}
	loc.Order = order

	for _, spec := range block.Allow {
		mask, err := ParseMask(spec)
		if err != nil {
			return nil, apperrors.Wrapf(err, apperrors.KindValidation, "allow %q", spec)
		}
		loc.AddAllow(mask)
	}
	for _, spec := range block.Deny {
		mask, err := ParseMask(spec)
		if err != nil {
			return nil, apperrors.Wrapf(err, apperrors.KindValidation, "deny %q", spec)
		}
		loc.AddDeny(mask)
	}

	scheme, err := parseAuthScheme(block.AuthScheme)
	if err != nil {
		return nil, err
	}
	loc.AuthScheme = scheme

	level, err := parseLevel(block.Level)
	if err != nil {
		return nil, err
	}
	loc.Level = level

	for _, p := range block.Principals {
		loc.AddPrincipal(p)
	}

	satisfy, err := parseSatisfy(block.Satisfy)
	if err != nil {
		return nil, err
	}
	loc.Satisfy = satisfy

	encryption, err := parseEncryption(block.Encryption)
	if err != nil {
		return nil, err
	}
	loc.Encryption = encryption

	return loc, nil
}

func parseVerbMask(verbs []string) (location.VerbMask, error) {
	var mask location.VerbMask
	for _, v := range verbs {
		switch strings.ToUpper(v) {
		case "ALL":
			return location.VerbAll, nil
		case "OPTIONS":
			mask |= location.VerbOptions
		case "GET":
			mask |= location.VerbGet
		case "HEAD":
			mask |= location.VerbHead
		case "POST":
			mask |= location.VerbPost
		case "PUT":
			mask |= location.VerbPut
		case "DELETE":
			mask |= location.VerbDelete
		case "TRACE":
			mask |= location.VerbTrace
		case "IPP":
			mask |= location.VerbIPP
		default:
			return 0, apperrors.Errorf(apperrors.KindValidation, "unknown verb %q", v)
		}
	}
	return mask, nil
}

func parseOrder(s string) (location.Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "deny,allow", "allowthendeny":
		return location.OrderAllowThenDeny, nil
	case "allow,deny", "denythenallow":
		return location.OrderDenyThenAllow, nil
	default:
		return 0, apperrors.Errorf(apperrors.KindValidation, "unknown order %q", s)
	}
}

func parseAuthScheme(s string) (location.AuthScheme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return location.AuthNone, nil
	case "basic":
		return location.AuthBasic, nil
	case "digest":
		return location.AuthDigest, nil
	case "basicdigest":
		return location.AuthBasicDigest, nil
	default:
		return 0, apperrors.Errorf(apperrors.KindValidation, "unknown auth_scheme %q", s)
	}
}

func parseLevel(s string) (location.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "anonymous":
		return location.LevelAnonymous, nil
	case "user":
		return location.LevelUser, nil
	case "group":
		return location.LevelGroup, nil
	default:
		return 0, apperrors.Errorf(apperrors.KindValidation, "unknown level %q", s)
	}
}

func parseSatisfy(s string) (location.Satisfy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return location.SatisfyAll, nil
	case "any":
		return location.SatisfyAny, nil
	default:
		return 0, apperrors.Errorf(apperrors.KindValidation, "unknown satisfy %q", s)
	}
}

func parseEncryption(s string) (location.Encryption, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ifrequested":
		return location.EncryptionIfRequested, nil
	case "never":
		return location.EncryptionNever, nil
	case "required":
		return location.EncryptionRequired, nil
	default:
		return 0, apperrors.Errorf(apperrors.KindValidation, "unknown encryption %q", s)
	}
}

// ParseMask parses one allow/deny rule specification:
//   - "all"            -> matches any address (0.0.0.0/0 equivalent)
//   - "@*"             -> any local interface
//   - "@name"          -> the named interface
//   - "a.b.c.d/n"      -> an IPv4 or IPv6 CIDR
//   - ".domain" / host -> a Named mask (DNS suffix when it begins with '.')
func ParseMask(spec string) (authmask.Mask, error) {
	spec = strings.TrimSpace(spec)

	switch {
	case strings.EqualFold(spec, "all"):
		return authmask.NewIPMask([4]uint32{}, [4]uint32{}), nil

	case strings.HasPrefix(spec, "@"):
		return authmask.NewInterfaceMask(spec[1:]), nil

	case strings.Contains(spec, "/"):
		return parseCIDRMask(spec)

	case net.ParseIP(spec) != nil:
		ip := net.ParseIP(spec)
		bits := 32
		if ip.To4() == nil {
			bits = 128
		}
		return parseCIDRMask(spec + "/" + strconv.Itoa(bits))

	default:
		return authmask.NewNamedMask(spec), nil
	}
}

func parseCIDRMask(spec string) (authmask.Mask, error) {
	ip, ipnet, err := net.ParseCIDR(spec)
	if err != nil {
		return authmask.Mask{}, apperrors.Wrapf(err, apperrors.KindValidation, "invalid CIDR %q", spec)
	}

	var address, netmask [4]uint32
	if v4 := ip.To4(); v4 != nil {
		address[3] = beUint32(v4)
		netmask[3] = beUint32(ipnet.Mask)
	} else {
		v6 := ip.To16()
		for i := 0; i < 4; i++ {
			address[i] = beUint32(v6[i*4 : i*4+4])
		}
		full := make(net.IPMask, 16)
		copy(full[16-len(ipnet.Mask):], ipnet.Mask)
		for i := 0; i < 4; i++ {
			netmask[i] = beUint32(full[i*4 : i*4+4])
		}
	}

	return authmask.NewIPMask(address, netmask), nil
}

func beUint32(b []byte) uint32 {
	if len(b) != 4 {
		return 0
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
