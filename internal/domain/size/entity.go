// internal/domain/size/entity.go
package size

import (
	"time"
)

// SizeCategory represents the audience a size applies to
type SizeCategory string

const (
	SizeCategoryMen   SizeCategory = "men"
	SizeCategoryWomen SizeCategory = "women"
	SizeCategoryKids  SizeCategory = "kids"
)

// SizeSystem represents the sizing system
type SizeSystem string

const (
	SizeSystemEU       SizeSystem = "EU"
	SizeSystemUS       SizeSystem = "US"
	SizeSystemUK       SizeSystem = "UK"
	SizeSystemCM       SizeSystem = "CM"
	SizeSystemStandard SizeSystem = "Standard"
)

// Size represents immutable sizing reference data
type Size struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	Category  SizeCategory `gorm:"not null;size:10;index" json:"category"`
	System    SizeSystem   `gorm:"not null;size:10" json:"system"`
	Value     string       `gorm:"not null;size:20" json:"value"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// TableName overrides the table name
func (Size) TableName() string {
	return "sizes"
}

// Label returns the human-readable size text captured into order snapshots
func (s *Size) Label() string {
	return string(s.System) + " " + s.Value
}

// ValidCategory reports whether c is a known size category
func ValidCategory(c SizeCategory) bool {
	switch c {
	case SizeCategoryMen, SizeCategoryWomen, SizeCategoryKids:
		return true
	}
	return false
}

// ValidSystem reports whether s is a known sizing system
func ValidSystem(s SizeSystem) bool {
	switch s {
	case SizeSystemEU, SizeSystemUS, SizeSystemUK, SizeSystemCM, SizeSystemStandard:
		return true
	}
	return false
}
