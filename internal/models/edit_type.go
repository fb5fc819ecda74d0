package models

import "strings"

// EditType is the kind of change a ChangeRecord describes
type EditType int

const (
	// Edit is the default for any action the tool reports
	Edit EditType = iota
	// Add means the file was added to the repository
	Add
	// Delete means the file was deleted or removed
	Delete
)

// ParseEditType maps a tool action string onto an EditType (case-insensitive)
func ParseEditType(action string) EditType {
	switch {
	case strings.EqualFold(action, "delete"), strings.EqualFold(action, "remove"):
		return Delete
	case strings.EqualFold(action, "add"):
		return Add
	default:
		return Edit
	}
}

func (e EditType) String() string {
	switch e {
	case Add:
		return "add"
	case Delete:
		return "delete"
	default:
		return "edit"
	}
}
