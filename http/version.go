package http

import (
	"context"
	"fmt"
)

// Version is an HTTP protocol version requested for a message.
type Version struct {
	Major int
	Minor int
}

// Protocol versions.
var (
	HTTP10 = Version{Major: 1, Minor: 0}
	HTTP11 = Version{Major: 1, Minor: 1}
	HTTP20 = Version{Major: 2, Minor: 0}
	HTTP30 = Version{Major: 3, Minor: 0}
)

// String returns the version in request-line form, e.g. "HTTP/1.1".
func (v Version) String() string {
	return fmt.Sprintf("HTTP/%d.%d", v.Major, v.Minor)
}

// VersionPolicy says how strictly the transport should honor Version.
type VersionPolicy int

const (
	// VersionOrLower allows the transport to downgrade. This is the default.
	VersionOrLower VersionPolicy = iota
	// VersionOrHigher allows the transport to upgrade.
	VersionOrHigher
	// VersionExact requires the requested version.
	VersionExact
)

func (p VersionPolicy) String() string {
	switch p {
	case VersionOrLower:
		return "RequestVersionOrLower"
	case VersionOrHigher:
		return "RequestVersionOrHigher"
	case VersionExact:
		return "RequestVersionExact"
	}
	return fmt.Sprintf("VersionPolicy(%d)", int(p))
}

type versionPolicyKey struct{}

// VersionPolicyFromContext returns the policy a built request carries in its
// context. net/http negotiates versions itself, so custom RoundTrippers that
// care read it from here.
func VersionPolicyFromContext(ctx context.Context) (VersionPolicy, bool) {
	p, ok := ctx.Value(versionPolicyKey{}).(VersionPolicy)
	return p, ok
}
