package sscm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToolResolver(t *testing.T) {
	r := ToolResolver{
		Installations: []Installation{
			{Name: "Legacy", Home: "/opt/legacy/sscm"},
			{Name: "Default", Home: "$SSCM_HOME/sscm"},
		},
		Expand: func(s string) string {
			if s == "$SSCM_HOME/sscm" {
				return "/opt/surround/sscm"
			}
			return s
		},
	}

	assert.Equal(t, "/opt/legacy/sscm", r.Executable("Legacy"))
	assert.Equal(t, "/opt/surround/sscm", r.Executable(""))
	assert.Equal(t, "/opt/surround/sscm", r.Executable("Missing"))
}

func TestToolResolverFallbacks(t *testing.T) {
	first := ToolResolver{Installations: []Installation{{Name: "Only", Home: "/bin/sscm"}}}
	assert.Equal(t, "/bin/sscm", first.Executable(""))

	empty := ToolResolver{}
	inst := empty.Resolve("")
	assert.Equal(t, DefaultInstallationName, inst.Name)
	assert.Equal(t, DefaultExecutable(), inst.Home)
}
