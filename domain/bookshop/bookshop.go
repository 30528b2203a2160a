// Package bookshop defines the canonical shape of a bookshop record and the
// derivation rules for its lowercase shadow fields. Pure data and pure
// functions; persistence concerns live in infrastructure.
package bookshop

import "strings"

// DayOfWeek is one of the seven weekday names used by operating hours.
type DayOfWeek string

const (
	Sunday    DayOfWeek = "Sunday"
	Monday    DayOfWeek = "Monday"
	Tuesday   DayOfWeek = "Tuesday"
	Wednesday DayOfWeek = "Wednesday"
	Thursday  DayOfWeek = "Thursday"
	Friday    DayOfWeek = "Friday"
	Saturday  DayOfWeek = "Saturday"
)

// Days lists the enumeration in calendar order.
var Days = []DayOfWeek{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// Valid reports whether d is one of the seven enumerated values.
func (d DayOfWeek) Valid() bool {
	for _, day := range Days {
		if d == day {
			return true
		}
	}
	return false
}

// OperatingHours is a weekly recurring open window.
type OperatingHours struct {
	ID        string    `json:"id"`
	DayOfWeek DayOfWeek `json:"dayOfWeek"`
	OpenTime  string    `json:"openTime"`
	CloseTime string    `json:"closeTime"`
}

// Event is a one-off calendar event tied to a bookshop.
type Event struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"` // YYYY-MM-DD
	Time        string `json:"time"`
	EndTime     string `json:"endTime,omitempty"`
}

// Bookshop is the in-memory record. Approved and Deleted are native booleans
// here; the store boundary converts them to the persisted "true"/"false"
// strings.
type Bookshop struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Address     string  `json:"address,omitempty"`
	City        string  `json:"city,omitempty"`
	State       string  `json:"state,omitempty"`
	ZipCode     string  `json:"zipCode,omitempty"`
	Latitude    float64 `json:"latitude,omitempty"`
	Longitude   float64 `json:"longitude,omitempty"`

	Hours      []OperatingHours `json:"hours,omitempty"`
	Events     []Event          `json:"events,omitempty"`
	Categories []string         `json:"categories,omitempty"`

	Website   string `json:"website,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Twitter   string `json:"twitter,omitempty"`

	// Shadow fields for case-insensitive substring search; always the
	// lowercase-trimmed mirror of their source field.
	NameLower        string   `json:"nameLower,omitempty"`
	DescriptionLower string   `json:"descriptionLower,omitempty"`
	CityLower        string   `json:"cityLower,omitempty"`
	CategoriesLower  []string `json:"categoriesLower,omitempty"`

	Approved  bool   `json:"approved"`
	Deleted   bool   `json:"deleted"`
	DeletedAt string `json:"deletedAt,omitempty"`
	DeletedBy string `json:"deletedBy,omitempty"`

	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// Lower normalizes a source string into its shadow form.
func Lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// LowerAll maps Lower over a category list. A nil input yields an empty,
// non-nil slice so the shadow field never diverges into "absent".
func LowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, Lower(v))
	}
	return out
}

// LowerFields is the derived portion of a record.
type LowerFields struct {
	NameLower        string
	DescriptionLower string
	CityLower        string
	CategoriesLower  []string
}

// DeriveLowerFields computes every shadow field from its source field.
// Absent sources yield empty derived values, never an error.
func DeriveLowerFields(b *Bookshop) LowerFields {
	return LowerFields{
		NameLower:        Lower(b.Name),
		DescriptionLower: Lower(b.Description),
		CityLower:        Lower(b.City),
		CategoriesLower:  LowerAll(b.Categories),
	}
}

// ApplyLowerFields writes the derived fields back onto the record.
func (b *Bookshop) ApplyLowerFields() {
	lf := DeriveLowerFields(b)
	b.NameLower = lf.NameLower
	b.DescriptionLower = lf.DescriptionLower
	b.CityLower = lf.CityLower
	b.CategoriesLower = lf.CategoriesLower
}

// PrimaryCategory returns the record's first category in shadow form, the
// value the category index is keyed on. Empty when the record is
// uncategorized.
func (b *Bookshop) PrimaryCategory() string {
	if len(b.Categories) == 0 {
		return ""
	}
	return Lower(b.Categories[0])
}
