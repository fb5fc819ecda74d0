package models

import (
	"encoding/json"
	"time"
)

// RevisionState records what a build synced to: when it ran and its number.
// It is immutable; Timestamp returns a copy.
type RevisionState struct {
	timestamp   time.Time
	buildNumber int
}

// NewRevisionState creates a RevisionState truncated to millisecond precision
func NewRevisionState(timestamp time.Time, buildNumber int) RevisionState {
	if buildNumber < 0 {
		buildNumber = 0
	}
	return RevisionState{
		timestamp:   timestamp.Truncate(time.Millisecond),
		buildNumber: buildNumber,
	}
}

// Timestamp returns the build time
func (r RevisionState) Timestamp() time.Time {
	return r.timestamp
}

// BuildNumber returns the build number
func (r RevisionState) BuildNumber() int {
	return r.buildNumber
}

// IsZero reports whether no revision was recorded
func (r RevisionState) IsZero() bool {
	return r.timestamp.IsZero() && r.buildNumber == 0
}

type revisionStateJSON struct {
	Timestamp   time.Time `json:"timestamp"`
	BuildNumber int       `json:"build_number"`
}

func (r RevisionState) MarshalJSON() ([]byte, error) {
	return json.Marshal(revisionStateJSON{Timestamp: r.timestamp, BuildNumber: r.buildNumber})
}

func (r *RevisionState) UnmarshalJSON(data []byte) error {
	var v revisionStateJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = NewRevisionState(v.Timestamp, v.BuildNumber)
	return nil
}
