package sscm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAddressScenario(t *testing.T) {
	raw := "sscm://server:4900//branch//Mainline/Path/To/Repository"

	assert.True(t, IsValid(raw))
	assert.Equal(t, "server", Server(raw))
	assert.Equal(t, "4900", Port(raw))
	assert.Equal(t, "branch", Branch(raw))
	assert.Equal(t, "Mainline/Path/To/Repository", Repository(raw))

	addr, ok := ParseAddress(raw)
	assert.True(t, ok)
	assert.Equal(t, raw, addr.String())
	assert.Equal(t, "server:4900", addr.ConnectionString())
	assert.Equal(t, "sscm://server:4900", addr.CredentialScope())
}

func TestParseAddressRoundTrip(t *testing.T) {
	cases := []Address{
		{Server: "s", Port: "1", Branch: "b", Repository: "r"},
		{Server: "build.example.com", Port: "04900", Branch: "Release 2.0", Repository: "Main/Sub/Leaf"},
		{Server: "10.0.0.5", Port: "65535", Branch: "hotfix", Repository: "Mainline"},
	}
	for _, want := range cases {
		raw := want.String()
		got, ok := ParseAddress(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
		assert.Equal(t, want.Server, Server(raw))
		assert.Equal(t, want.Port, Port(raw))
		assert.Equal(t, want.Branch, Branch(raw))
		assert.Equal(t, want.Repository, Repository(raw))
	}
}

func TestParseAddressInvalid(t *testing.T) {
	invalid := []string{
		"",
		"server:4900//branch//repo",
		"http://server:4900//branch//repo",
		"sscm://server:port//branch//repo",
		"sscm://server:49a0//branch//repo",
		"sscm://server://branch//repo",
		"sscm://:4900//branch//repo",
		"sscm://server4900//branch//repo",
		"sscm://server:4900////repo",
		"sscm://server:4900//branch//",
		"sscm://server:4900//bra//nch//repo",
		"sscm://server:4900//branch//Main//Sub",
		"sscm://server:4900//branch",
	}
	for _, raw := range invalid {
		assert.False(t, IsValid(raw), raw)
		assert.Empty(t, Server(raw), raw)
		assert.Empty(t, Port(raw), raw)
		assert.Empty(t, Branch(raw), raw)
		assert.Empty(t, Repository(raw), raw)
	}
}

func TestAccessorsAgreeWithIsValid(t *testing.T) {
	inputs := []string{
		"sscm://a:1//b//c",
		"sscm://a:1//b//c/d/e",
		"sscm://a:x//b//c",
		"sscm://a:1//b////c",
	}
	for _, raw := range inputs {
		nonEmpty := Server(raw) != "" && Port(raw) != "" && Branch(raw) != "" && Repository(raw) != ""
		assert.Equal(t, IsValid(raw), nonEmpty, raw)
	}
}

func TestAddressKeyIsStable(t *testing.T) {
	a := Address{Server: "s", Port: "1", Branch: "b", Repository: "r"}
	b := Address{Server: "s", Port: "2", Branch: "b", Repository: "r"}
	c := Address{Server: "s", Port: "1", Branch: "b2", Repository: "r"}

	assert.Len(t, a.Key(), 32)
	assert.Equal(t, a.Key(), b.Key(), "port is not part of the key")
	assert.NotEqual(t, a.Key(), c.Key())
}
