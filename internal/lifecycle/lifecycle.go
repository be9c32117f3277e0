package lifecycle

// Item types and their status sets. Every (type, status) pair an item can
// carry must come from this table; type conversion remaps the status in the
// same write so an item is never observed in an invalid pair.

type Type string

const (
	TypeNote    Type = "note"
	TypeTodo    Type = "todo"
	TypeScratch Type = "scratch"
)

// Note statuses.
const (
	StatusFleeting   = "fleeting"
	StatusDeveloping = "developing"
	StatusPermanent  = "permanent"
	StatusExported   = "exported"
)

// Todo statuses.
const (
	StatusActive = "active"
	StatusDone   = "done"
)

// Scratch statuses.
const (
	StatusDraft = "draft"
)

// StatusArchived is shared by all three types.
const StatusArchived = "archived"

// Priorities (todos and notes; scratch is always none).
const (
	PriorityNone   = "none"
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

var statusTable = map[Type][]string{
	TypeNote:    {StatusFleeting, StatusDeveloping, StatusPermanent, StatusExported, StatusArchived},
	TypeTodo:    {StatusActive, StatusDone, StatusArchived},
	TypeScratch: {StatusDraft, StatusArchived},
}

// IsValidType reports whether t is one of the three item types.
func IsValidType(t Type) bool {
	_, ok := statusTable[t]
	return ok
}

// IsValid reports whether (t, status) is a pair from the fixed table.
func IsValid(t Type, status string) bool {
	for _, s := range statusTable[t] {
		if s == status {
			return true
		}
	}
	return false
}

// IsValidPriority reports whether p is a known priority level.
func IsValidPriority(p string) bool {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// DefaultStatus is the entry status a freshly captured item starts in.
func DefaultStatus(t Type) string {
	switch t {
	case TypeTodo:
		return StatusActive
	case TypeScratch:
		return StatusDraft
	default:
		return StatusFleeting
	}
}

// Remap computes the status an item adopts when its type changes from oldType
// to newType. The second return is false when oldType == newType (no type
// change, no remap needed).
//
// Archival is type-agnostic: archived always stays archived. Note that
// exported and permanent both land on done when a note becomes a todo; the
// two substates diverge in the vault-export path, but the conversion table
// deliberately treats them the same.
func Remap(oldType, newType Type, oldStatus string) (string, bool) {
	if oldType == newType {
		return "", false
	}
	if oldStatus == StatusArchived {
		return StatusArchived, true
	}

	switch {
	case oldType == TypeNote && newType == TypeTodo:
		switch oldStatus {
		case StatusFleeting, StatusDeveloping:
			return StatusActive, true
		case StatusPermanent, StatusExported:
			return StatusDone, true
		}
	case oldType == TypeTodo && newType == TypeNote:
		switch oldStatus {
		case StatusActive:
			return StatusFleeting, true
		case StatusDone:
			return StatusPermanent, true
		}
	case newType == TypeScratch:
		// any non-archived status becomes a draft
		return StatusDraft, true
	case oldType == TypeScratch:
		// draft enters the counterpart at its entry status
		return DefaultStatus(newType), true
	}

	// unknown source status: fall back to the destination entry status
	return DefaultStatus(newType), true
}

// Conversion is the full effect of a type change: the new status plus the
// fields that stop meaning anything in the destination type.
type Conversion struct {
	Status        string
	ClearDue      bool // due is a todo-only field
	ClearLink     bool // linked_note_id is a todo-only field
	ClearTags     bool // scratch carries no tags
	ClearPriority bool // scratch is always priority none
	ClearAliases  bool // scratch carries no aliases
}

// Convert combines Remap with the field-clearing rules. The second return is
// false when no conversion is needed (same type).
func Convert(oldType, newType Type, oldStatus string) (Conversion, bool) {
	status, ok := Remap(oldType, newType, oldStatus)
	if !ok {
		return Conversion{}, false
	}
	c := Conversion{Status: status}
	if newType != TypeTodo {
		c.ClearDue = true
		c.ClearLink = true
	}
	if newType == TypeScratch {
		c.ClearTags = true
		c.ClearPriority = true
		c.ClearAliases = true
		c.ClearLink = true
	}
	return c, true
}

// RevertExportIfEdited returns the status a note should hold after a
// title/content update. An exported note whose text actually changed is a
// stale export, so it drops back to permanent; a no-op write keeps exported.
func RevertExportIfEdited(status string, titleChanged, contentChanged bool) string {
	if status == StatusExported && (titleChanged || contentChanged) {
		return StatusPermanent
	}
	return status
}
