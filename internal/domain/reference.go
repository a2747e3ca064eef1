package domain

import "time"

// ReferenceKind names one of the reference lists.
type ReferenceKind string

const (
	ReferenceLocations   ReferenceKind = "locations"
	ReferenceRepairTypes ReferenceKind = "repair_types"
)

// IsValid reports whether k is a known reference list.
func (k ReferenceKind) IsValid() bool {
	return k == ReferenceLocations || k == ReferenceRepairTypes
}

// ReferenceItem is a single location or repair type entry.
type ReferenceItem struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
