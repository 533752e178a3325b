package models

import "time"

// Item is an inventory record owned by an organization and created by one
// of its users.
type Item struct {
	ID             string
	OrganizationID string
	CreatedBy      string
	Name           string
	Description    string
	Value          float64
	TagIDs         []string
	Photos         []Photo
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ItemUpdate is a partial update. A nil field is left unchanged; a non-nil
// pointer to a zero value is a real change.
type ItemUpdate struct {
	Name        *string
	Description *string
	Value       *float64
	TagIDs      *[]string
}

// Empty reports whether the update changes nothing.
func (u ItemUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.Value == nil && u.TagIDs == nil
}

// ItemSort orders item listings.
type ItemSort string

const (
	SortNewest ItemSort = "newest"
	SortOldest ItemSort = "oldest"
	SortAZ     ItemSort = "a-z"
	SortZA     ItemSort = "z-a"
)

// ItemFilter selects a page of items inside one organization.
type ItemFilter struct {
	OrganizationID string
	TagIDs         []string
	SearchTerm     string
	Sort           ItemSort

	// CreatedBy, when set, restricts the listing to one creator.
	CreatedBy string
	Page      int
	Limit     int
}

// ItemPage is one page of a listing with the total match count.
type ItemPage struct {
	Items []Item
	Total int
	Page  int
	Limit int
}
