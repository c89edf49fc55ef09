package query

import (
	"fmt"
	"time"

	assetdomain "github.com/halvard/stockledger/internal/asset/domain"
	stockdomain "github.com/halvard/stockledger/internal/stock/domain"
)

// AssetHistoryQuery asks for the movement trail of one asset inside an
// optional time window
type AssetHistoryQuery struct {
	AssetID uint
	From    time.Time
	To      time.Time
	Limit   int
}

// AssetHistoryHandler reads an asset's movements out of the movement log
type AssetHistoryHandler struct {
	assets    assetdomain.AssetRepository
	movements stockdomain.MovementRepository
}

// NewAssetHistoryHandler creates a new asset history handler
func NewAssetHistoryHandler(assets assetdomain.AssetRepository, movements stockdomain.MovementRepository) *AssetHistoryHandler {
	return &AssetHistoryHandler{assets: assets, movements: movements}
}

// Handle executes the asset history query
func (h *AssetHistoryHandler) Handle(query AssetHistoryQuery) ([]stockdomain.Movement, error) {
	if _, err := h.assets.FindByID(query.AssetID); err != nil {
		return nil, fmt.Errorf("failed to resolve asset %d: %w", query.AssetID, err)
	}

	if query.Limit == 0 {
		query.Limit = 100
	}

	if query.Limit > 500 {
		query.Limit = 500
	}

	movements, err := h.movements.Find(stockdomain.MovementFilter{
		AssetID: query.AssetID,
		From:    query.From,
		To:      query.To,
		Limit:   query.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read asset history: %w", err)
	}
	return movements, nil
}
