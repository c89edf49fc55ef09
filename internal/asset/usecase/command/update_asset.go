package command

import (
	"fmt"
	"time"

	"github.com/halvard/stockledger/internal/asset/domain"
)

// UpdateAssetCommand represents the command to edit an asset's descriptive
// fields. Location changes go through RelocateAssetHandler so edge
// transitions are never skipped.
type UpdateAssetCommand struct {
	ID            uint
	Condition     string
	Status        string
	Serial        string
	Notes         string
	WarrantyUntil *time.Time
}

// UpdateAssetHandler handles update asset command
type UpdateAssetHandler struct {
	assets domain.AssetRepository
}

// NewUpdateAssetHandler creates a new update asset handler
func NewUpdateAssetHandler(assets domain.AssetRepository) *UpdateAssetHandler {
	return &UpdateAssetHandler{assets: assets}
}

// Handle executes the update asset command
func (h *UpdateAssetHandler) Handle(cmd UpdateAssetCommand) (*domain.Asset, error) {
	if cmd.ID == 0 {
		return nil, fmt.Errorf("%w: id is required", domain.ErrValidation)
	}

	asset, err := h.assets.FindByID(cmd.ID)
	if err != nil {
		return nil, fmt.Errorf("asset %d: %w", cmd.ID, err)
	}

	if cmd.Condition != "" {
		asset.Condition = cmd.Condition
	}
	if cmd.Status != "" {
		asset.Status = cmd.Status
	}
	if cmd.Serial != "" {
		asset.Serial = cmd.Serial
	}
	if cmd.Notes != "" {
		asset.Notes = cmd.Notes
	}
	if cmd.WarrantyUntil != nil {
		asset.WarrantyUntil = cmd.WarrantyUntil
	}

	if err := h.assets.Update(asset); err != nil {
		return nil, fmt.Errorf("failed to update asset: %w", err)
	}

	return asset, nil
}
