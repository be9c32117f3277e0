package items

import (
	"time"

	"notebox-backend/internal/lifecycle"
)

// Item is the unit of capture: a note, todo or scratch record.
type Item struct {
	ID           string         `json:"id"`
	Type         lifecycle.Type `json:"type"`
	Status       string         `json:"status"`
	Title        string         `json:"title"`
	Content      string         `json:"content"`
	Priority     string         `json:"priority"`
	Due          *time.Time     `json:"due,omitempty"`
	Tags         []string       `json:"tags"`
	Aliases      []string       `json:"aliases"`
	Source       string         `json:"source,omitempty"`
	Origin       string         `json:"origin,omitempty"`
	LinkedNoteID string         `json:"linked_note_id,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	ModifiedAt   time.Time      `json:"modified_at"`
}

// NewItem is the payload for a capture.
type NewItem struct {
	Type         lifecycle.Type
	Title        string
	Content      string
	Priority     string
	Tags         []string
	Source       string
	Origin       string
	Due          *time.Time
	LinkedNoteID string
}

// Patch is a partial text update. Nil fields are left untouched.
type Patch struct {
	Title   *string
	Content *string
	Source  *string
}

// Filter narrows a List query. Zero values mean "any".
type Filter struct {
	Type          lifecycle.Type
	Status        string
	NotStatus     string
	Tag           string
	Keyword       string
	DueOnOrBefore *time.Time
	OrderByDue    bool
	Limit         int
}

// Stats maps type -> status -> count.
type Stats map[lifecycle.Type]map[string]int

// Count returns the count for one (type, status) cell.
func (s Stats) Count(t lifecycle.Type, status string) int {
	return s[t][status]
}

// TotalFor sums all statuses of one type.
func (s Stats) TotalFor(t lifecycle.Type) int {
	total := 0
	for _, n := range s[t] {
		total += n
	}
	return total
}
