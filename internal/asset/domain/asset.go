package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Asset statuses. Assets leave tracking by entering a terminal status, not
// by row deletion.
const (
	StatusActive   = "active"
	StatusInRepair = "in_repair"
	StatusDisposed = "disposed"
)

// Asset conditions
const (
	ConditionNew  = "new"
	ConditionGood = "good"
	ConditionFair = "fair"
	ConditionPoor = "poor"
)

// Sentinel errors returned by asset operations
var (
	ErrNotFound   = errors.New("asset not found")
	ErrValidation = errors.New("invalid asset input")
	ErrConflict   = errors.New("installation edge conflict")
)

// Asset is one serialized physical instance of a catalog item. Its
// LocationID is the single source of truth for "where is it right now";
// the edge history answers "where was it when".
type Asset struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	ItemID        uint            `json:"item_id" gorm:"not null;index"`
	Serial        string          `json:"serial" gorm:"index"`
	Condition     string          `json:"condition" gorm:"default:'good'"`
	Status        string          `json:"status" gorm:"not null;default:'active';index"`
	LocationID    *uint           `json:"location_id" gorm:"index"`
	PurchaseCost  decimal.Decimal `json:"purchase_cost" gorm:"type:numeric(14,4)"`
	PurchasedAt   *time.Time      `json:"purchased_at"`
	WarrantyUntil *time.Time      `json:"warranty_until"`
	Notes         string          `json:"notes"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (Asset) TableName() string {
	return "assets"
}

// IsAssigned reports whether the asset currently sits in a location
func (a *Asset) IsAssigned() bool {
	return a.LocationID != nil
}

// UnderWarranty reports whether the warranty covers the given instant
func (a *Asset) UnderWarranty(asOf time.Time) bool {
	return a.WarrantyUntil != nil && !a.WarrantyUntil.Before(asOf)
}

// InstallationEdge records that an asset was physically inside a container
// during an interval. Edges are opened on entry and closed on exit by
// setting RemovedAt; they are never deleted. For any (container, asset)
// pair at most one edge is open, and system-wide an installed asset has
// exactly one open edge.
type InstallationEdge struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	ContainerID uint       `json:"container_id" gorm:"not null;index"`
	AssetID     uint       `json:"asset_id" gorm:"not null;index"`
	InstalledAt time.Time  `json:"installed_at" gorm:"not null"`
	RemovedAt   *time.Time `json:"removed_at"`
	IsValid     bool       `json:"is_valid" gorm:"not null;default:true"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TableName specifies the table name
func (InstallationEdge) TableName() string {
	return "installation_edges"
}

// IsOpen reports whether the edge still represents a live containment
func (e *InstallationEdge) IsOpen() bool {
	return e.RemovedAt == nil && e.IsValid
}

// AssetFilter narrows asset listings
type AssetFilter struct {
	Status   string
	Category string
	Search   string
	Limit    int
	Offset   int
}

// AssetRepository defines the contract for asset data access
type AssetRepository interface {
	Create(asset *Asset) error
	FindByID(id uint) (*Asset, error)
	FindBySerial(serial string) (*Asset, error)
	FindByLocation(locationID uint) ([]Asset, error)
	FindUnderWarranty(asOf time.Time) ([]Asset, error)
	FindAll(filter AssetFilter) ([]Asset, error)
	Update(asset *Asset) error
	Delete(id uint) (bool, error)
}

// EdgeRepository defines the contract for installation edge data access.
// Edges are append-and-close only.
type EdgeRepository interface {
	Create(edge *InstallationEdge) error
	FindOpenByAsset(assetID uint) ([]InstallationEdge, error)
	Close(edgeID uint, removedAt time.Time) error
	FindByAsset(assetID uint) ([]InstallationEdge, error)
	FindByContainer(containerID uint, at time.Time) ([]InstallationEdge, error)
}
