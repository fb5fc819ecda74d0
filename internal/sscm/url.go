package sscm

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	urlScheme    = "sscm:"
	urlSeparator = "//"
)

// Address is a parsed sscm://<server>:<port>//<branch>//<repository> identifier
type Address struct {
	Server     string
	Port       string
	Branch     string
	Repository string
}

// ParseAddress parses raw into an Address. The second result is false when raw
// is not exactly four "//"-separated segments with the sscm: scheme, a
// host:port pair with a numeric port, and non-empty branch and repository.
func ParseAddress(raw string) (Address, bool) {
	parts := strings.Split(raw, urlSeparator)
	if len(parts) != 4 || parts[0] != urlScheme {
		return Address{}, false
	}

	hostPort := parts[1]
	colon := strings.LastIndex(hostPort, ":")
	if colon < 0 {
		return Address{}, false
	}
	server, port := hostPort[:colon], hostPort[colon+1:]
	if server == "" || !isDecimal(port) {
		return Address{}, false
	}

	branch, repository := parts[2], parts[3]
	if branch == "" || repository == "" {
		return Address{}, false
	}

	return Address{
		Server:     server,
		Port:       port,
		Branch:     branch,
		Repository: repository,
	}, true
}

func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// IsValid reports whether raw parses as an Address
func IsValid(raw string) bool {
	_, ok := ParseAddress(raw)
	return ok
}

// Server returns the server host of raw, or "" if raw is invalid
func Server(raw string) string {
	addr, _ := ParseAddress(raw)
	return addr.Server
}

// Port returns the server port of raw, or "" if raw is invalid
func Port(raw string) string {
	addr, _ := ParseAddress(raw)
	return addr.Port
}

// Branch returns the branch of raw, or "" if raw is invalid
func Branch(raw string) string {
	addr, _ := ParseAddress(raw)
	return addr.Branch
}

// Repository returns the repository path of raw, or "" if raw is invalid
func Repository(raw string) string {
	addr, _ := ParseAddress(raw)
	return addr.Repository
}

// String re-derives the sscm:// identifier
func (a Address) String() string {
	return fmt.Sprintf("sscm://%s:%s//%s//%s", a.Server, a.Port, a.Branch, a.Repository)
}

// ConnectionString returns "server:port" as used by the -z flag
func (a Address) ConnectionString() string {
	return a.Server + ":" + a.Port
}

// CredentialScope returns the sscm://server:port prefix credentials are scoped to
func (a Address) CredentialScope() string {
	return "sscm://" + a.ConnectionString()
}

// Key returns a stable identifier for the server/branch/repository triple
func (a Address) Key() string {
	sum := md5.Sum([]byte(fmt.Sprintf("sscm-%s-%s-%s", a.Server, a.Branch, a.Repository)))
	return hex.EncodeToString(sum[:])
}
