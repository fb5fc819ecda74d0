package models

import "fmt"

// ChangeRecord is one file change reported by `sscm cc`
type ChangeRecord struct {
	// Path is the repository directory of the file
	Path string
	// Name is the file name
	Name string
	// Version is the file version after the change
	Version string
	// Action is the raw action string (e.g. "add", "checkin", "remove")
	Action string
	// Date is kept in the tool's own format
	Date string
	// Comment is the check-in comment
	Comment string
	// Author is the Surround user name
	Author string
	// AuthorEmail is set only when the record carried an address
	AuthorEmail string
}

// AffectedFile returns path and name joined with "/"
func (c ChangeRecord) AffectedFile() string {
	return c.Path + "/" + c.Name
}

// AffectedPaths returns the paths touched by this record
func (c ChangeRecord) AffectedPaths() []string {
	return []string{c.AffectedFile()}
}

// EditType classifies Action
func (c ChangeRecord) EditType() EditType {
	return ParseEditType(c.Action)
}

// Msg returns the one-line summary shown in build changelogs
func (c ChangeRecord) Msg() string {
	return fmt.Sprintf("File: %s Action: %s Version: %s Comment: %s", c.AffectedFile(), c.Action, c.Version, c.Comment)
}
