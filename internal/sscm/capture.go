package sscm

import "io"

// Mode selects what a capture is for
type Mode int

const (
	// CountOnly is a probe; only the first "total-N" line matters
	CountOnly Mode = iota
	// FullLog captures the whole changelog
	FullLog
)

func (m Mode) String() string {
	if m == CountOnly {
		return "count"
	}
	return "changelog"
}

// Capture is the spooled stdout of one `sscm cc` run
type Capture struct {
	Mode     Mode
	Range    Range
	Command  string
	ExitCode int

	spool *Spool
}

// Open returns a reader over the captured output
func (c *Capture) Open() (io.ReadCloser, error) {
	return c.spool.Open()
}

// Size returns the captured byte count
func (c *Capture) Size() int64 {
	return c.spool.Size()
}

// Close releases the capture buffer
func (c *Capture) Close() error {
	return c.spool.Close()
}
