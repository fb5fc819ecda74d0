package sscm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArgListMasksSecrets(t *testing.T) {
	args := NewArgList("sscm", "cc", "/").Add("-bmain").AddMasked("-ybuilder:hunter2")

	assert.Equal(t, []string{"sscm", "cc", "/", "-bmain", "-ybuilder:hunter2"}, args.Args())
	assert.Equal(t, "sscm cc / -bmain ******", args.String())
	assert.NotContains(t, args.String(), "hunter2")
	assert.Equal(t, 5, args.Len())
}

func TestArgListQuotesSpaces(t *testing.T) {
	args := NewArgList("sscm", "-pMain Line/Repo")
	assert.Equal(t, `sscm "-pMain Line/Repo"`, args.String())
}

func TestArgListArgsIsACopy(t *testing.T) {
	args := NewArgList("a", "b")
	out := args.Args()
	out[0] = "changed"
	assert.Equal(t, []string{"a", "b"}, args.Args())
}
