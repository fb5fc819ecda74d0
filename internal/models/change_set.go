package models

// ChangeSet holds the records parsed from one changelog capture, in tool output order
type ChangeSet struct {
	// Build is the build number the set belongs to (0 if unknown)
	Build int
	// Records in parse order
	Records []ChangeRecord
	// Truncated is true when parsing stopped at a malformed line
	Truncated bool
	// StoppedAtLine is the 1-based line that stopped parsing (0 if not truncated)
	StoppedAtLine int
}

// NewChangeSet creates an empty ChangeSet for a build
func NewChangeSet(build int) *ChangeSet {
	return &ChangeSet{Build: build, Records: []ChangeRecord{}}
}

// Add appends a record
func (s *ChangeSet) Add(r ChangeRecord) {
	s.Records = append(s.Records, r)
}

// IsEmpty reports whether the set has no records
func (s *ChangeSet) IsEmpty() bool {
	return len(s.Records) == 0
}

// Len returns the number of records
func (s *ChangeSet) Len() int {
	return len(s.Records)
}

// Authors returns the distinct author names in first-seen order
func (s *ChangeSet) Authors() []string {
	seen := make(map[string]bool)
	var authors []string
	for _, r := range s.Records {
		if r.Author == "" || seen[r.Author] {
			continue
		}
		seen[r.Author] = true
		authors = append(authors, r.Author)
	}
	return authors
}
