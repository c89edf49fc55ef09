package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Movement types
const (
	MovementTransfer   = "transfer"
	MovementAdjustment = "adjustment"
	MovementPurchase   = "purchase"
	MovementSale       = "sale"
)

// Sentinel errors returned by stock operations
var (
	ErrNotFound   = errors.New("stock record not found")
	ErrValidation = errors.New("invalid stock input")
)

// StockRecord is the current on-hand state for one catalog item at one
// location. Exactly one row exists per (item, location) pair; quantity is
// driven to zero rather than the row being deleted.
//
// Negative quantities are stored as-is. Adjustments are trusted input and a
// negative balance is a data-integrity signal for reconciliation, not a
// reason to reject the write.
type StockRecord struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ItemID     uint      `json:"item_id" gorm:"not null;uniqueIndex:idx_stock_item_location"`
	LocationID uint      `json:"location_id" gorm:"not null;uniqueIndex:idx_stock_item_location"`
	Quantity   int       `json:"quantity" gorm:"not null;default:0"`
	Reserved   int       `json:"reserved" gorm:"not null;default:0"`
	MinLevel   int       `json:"min_level" gorm:"not null;default:0"`
	MaxLevel   int       `json:"max_level" gorm:"not null;default:0"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (StockRecord) TableName() string {
	return "stock_records"
}

// Available returns the quantity free for new commitments, never negative.
// Quantity can drop below Reserved through trusted adjustments; that state
// reads as zero available and is left for reconciliation to probe.
func (s *StockRecord) Available() int {
	available := s.Quantity - s.Reserved
	if available < 0 {
		return 0
	}
	return available
}

// IsLow reports whether the record sits at or under its minimum threshold.
// A record with no threshold set is never low.
func (s *StockRecord) IsLow() bool {
	return s.MinLevel > 0 && s.Quantity <= s.MinLevel
}

// Movement is one immutable entry in the quantity evidence trail. Every
// visible change to a StockRecord or an asset's location has exactly one
// Movement describing it, so replaying the log reconstructs current state.
type Movement struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	Reference      string          `json:"reference" gorm:"index"`
	Type           string          `json:"type" gorm:"not null;index"`
	ItemID         uint            `json:"item_id" gorm:"not null;index"`
	AssetID        *uint           `json:"asset_id" gorm:"index"`
	FromLocationID *uint           `json:"from_location_id"`
	ToLocationID   *uint           `json:"to_location_id"`
	Quantity       int             `json:"quantity" gorm:"not null"`
	UnitCost       decimal.Decimal `json:"unit_cost" gorm:"type:numeric(14,4)"`
	Reason         string          `json:"reason"`
	Actor          string          `json:"actor"`
	CreatedAt      time.Time       `json:"created_at" gorm:"index"`
}

// TableName specifies the table name
func (Movement) TableName() string {
	return "movements"
}

// MovementFilter narrows movement queries for reporting
type MovementFilter struct {
	Type    string
	ItemID  uint
	AssetID uint
	From    time.Time
	To      time.Time
	Limit   int
	Offset  int
}

// StockRepository defines the contract for stock record data access
type StockRepository interface {
	FindByItemAndLocation(itemID, locationID uint) (*StockRecord, error)
	FindByItem(itemID uint) ([]StockRecord, error)
	FindAll(limit, offset int) ([]StockRecord, error)
	FindLowStock() ([]StockRecord, error)
	// AdjustQuantities applies deltas atomically with upsert semantics:
	// a missing (item, location) row is created with the delta as its
	// initial quantity. The increment happens in the database, not as a
	// read-modify-write in this process.
	AdjustQuantities(itemID, locationID uint, delta, reservedDelta int) (*StockRecord, error)
	SetLevel(itemID, locationID uint, quantity int) (*StockRecord, error)
	Update(record *StockRecord) error
}

// MovementRepository defines the contract for the append-only movement log.
// There is deliberately no update or delete.
type MovementRepository interface {
	Append(movement *Movement) error
	Find(filter MovementFilter) ([]Movement, error)
	SumByItem(itemID uint) (int64, error)
	TotalsByType(from, to time.Time) (map[string]int64, error)
}
