package kafka

import "time"

// StockAdjustedEvent is emitted after a stock ledger write and its movement
// append have both succeeded
type StockAdjustedEvent struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	Reference  string    `json:"reference"`
	ItemID     uint      `json:"item_id"`
	LocationID uint      `json:"location_id"`
	Delta      int       `json:"delta"`
	Quantity   int       `json:"quantity"`
	Actor      string    `json:"actor"`
	Timestamp  time.Time `json:"timestamp"`
}

// AssetRelocatedEvent is emitted after an asset changed location
type AssetRelocatedEvent struct {
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	AssetID        uint      `json:"asset_id"`
	FromLocationID *uint     `json:"from_location_id"`
	ToLocationID   *uint     `json:"to_location_id"`
	Actor          string    `json:"actor"`
	Timestamp      time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypeStockAdjusted  = "stock.adjusted"
	EventTypeAssetRelocated = "asset.relocated"
)

// Kafka topics
const (
	TopicStockAdjusted  = "stock-adjusted"
	TopicAssetRelocated = "asset-relocated"
)
