package sscm

import (
	"os"
	"runtime"

	"github.com/rs/zerolog"
)

// DefaultInstallationName is the installation used when none is selected
const DefaultInstallationName = "Default"

// Installation is a named location of the sscm executable
type Installation struct {
	Name string `toml:"name"`
	Home string `toml:"home"`
}

// DefaultExecutable is the binary name looked up on PATH
func DefaultExecutable() string {
	if runtime.GOOS == "windows" {
		return "sscm.exe"
	}
	return "sscm"
}

// ToolResolver picks an Installation. It only reads its fields, so one
// resolver can be shared by concurrent builds.
type ToolResolver struct {
	Installations []Installation
	// Expand substitutes $VAR references in Home (default os.ExpandEnv)
	Expand func(string) string
	Logger zerolog.Logger
}

// Resolve returns the installation called name. Unknown or empty names fall
// back to "Default", then the first installation, then a synthesized
// Default pointing at DefaultExecutable.
func (r ToolResolver) Resolve(name string) Installation {
	if name != "" {
		if inst, ok := r.find(name); ok {
			return r.expand(inst)
		}
		r.Logger.Warn().Str("installation", name).Msg("selected sscm installation does not exist, using default")
	}
	return r.expand(r.defaultInstallation())
}

// Executable is Resolve(name).Home
func (r ToolResolver) Executable(name string) string {
	return r.Resolve(name).Home
}

func (r ToolResolver) defaultInstallation() Installation {
	if inst, ok := r.find(DefaultInstallationName); ok {
		return inst
	}
	if len(r.Installations) > 0 {
		return r.Installations[0]
	}
	return Installation{Name: DefaultInstallationName, Home: DefaultExecutable()}
}

func (r ToolResolver) find(name string) (Installation, bool) {
	for _, inst := range r.Installations {
		if inst.Name == name {
			return inst, true
		}
	}
	return Installation{}, false
}

func (r ToolResolver) expand(inst Installation) Installation {
	expand := r.Expand
	if expand == nil {
		expand = os.ExpandEnv
	}
	inst.Home = expand(inst.Home)
	if inst.Home == "" {
		inst.Home = DefaultExecutable()
	}
	return inst
}
