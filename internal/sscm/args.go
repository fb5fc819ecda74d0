package sscm

import "strings"

const maskedValue = "******"

// ArgList is a command line where some arguments are secrets.
// String masks those; Args returns them in plain text for exec.
type ArgList struct {
	args   []string
	masked []bool
}

// NewArgList creates an ArgList starting with the given arguments
func NewArgList(args ...string) *ArgList {
	l := &ArgList{}
	return l.Add(args...)
}

// Add appends non-sensitive arguments
func (l *ArgList) Add(args ...string) *ArgList {
	for _, a := range args {
		l.args = append(l.args, a)
		l.masked = append(l.masked, false)
	}
	return l
}

// AddMasked appends an argument that must never be logged
func (l *ArgList) AddMasked(arg string) *ArgList {
	l.args = append(l.args, arg)
	l.masked = append(l.masked, true)
	return l
}

// Args returns a copy of the arguments, secrets included
func (l *ArgList) Args() []string {
	out := make([]string, len(l.args))
	copy(out, l.args)
	return out
}

// Len returns the number of arguments
func (l *ArgList) Len() int {
	return len(l.args)
}

// String renders the command line for logs with secrets replaced
func (l *ArgList) String() string {
	parts := make([]string, len(l.args))
	for i, a := range l.args {
		if l.masked[i] {
			parts[i] = maskedValue
			continue
		}
		if strings.ContainsAny(a, " \t\"") {
			a = `"` + strings.ReplaceAll(a, `"`, `\"`) + `"`
		}
		parts[i] = a
	}
	return strings.Join(parts, " ")
}
