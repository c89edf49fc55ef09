package domain

import (
	"errors"
	"time"

	"github.com/lib/pq"
)

// Well-known location types. The set is open: upstream creators may mint
// types this service has never seen, and those are stored verbatim rather
// than collapsed into a catch-all.
const (
	TypeWarehouse = "warehouse"
	TypeShelf     = "shelf"
	TypeVehicle   = "vehicle"
	TypeBin       = "bin"
)

// PathSeparator joins location ids in the materialized path
const PathSeparator = "/"

// Sentinel errors returned by location operations
var (
	ErrNotFound   = errors.New("location not found")
	ErrValidation = errors.New("invalid location input")
)

// Location represents a node in the container hierarchy (domain model)
type Location struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"not null"`
	Type      string         `json:"type" gorm:"not null;default:'warehouse'"`
	ParentID  *uint          `json:"parent_id" gorm:"index"`
	Path      string         `json:"path" gorm:"not null"`
	IsActive  bool           `json:"is_active" gorm:"default:true"`
	Tags      pq.StringArray `json:"tags" gorm:"type:text[]"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TableName specifies the table name
func (Location) TableName() string {
	return "locations"
}

// IsRoot reports whether the location has no parent
func (l *Location) IsRoot() bool {
	return l.ParentID == nil
}

// IsKnownType reports whether the type is one of the well-known tags.
// A false result does not make the location invalid.
func IsKnownType(t string) bool {
	switch t {
	case TypeWarehouse, TypeShelf, TypeVehicle, TypeBin:
		return true
	}
	return false
}

// LocationRepository defines the contract for location data access
type LocationRepository interface {
	Create(location *Location) error
	FindByID(id uint) (*Location, error)
	FindChildren(parentID uint) ([]Location, error)
	FindRoots() ([]Location, error)
	FindAll(limit, offset int) ([]Location, error)
	Update(location *Location) error
	Deactivate(id uint) (bool, error)
}
