package command

import (
	"errors"
	"fmt"
	"time"

	"github.com/halvard/stockledger/internal/asset/domain"
)

// DeleteAssetCommand represents the command to remove an asset from tracking
type DeleteAssetCommand struct {
	ID uint
}

// DeleteAssetHandler handles delete asset command
type DeleteAssetHandler struct {
	assets domain.AssetRepository
	edges  domain.EdgeRepository
}

// NewDeleteAssetHandler creates a new delete asset handler
func NewDeleteAssetHandler(assets domain.AssetRepository, edges domain.EdgeRepository) *DeleteAssetHandler {
	return &DeleteAssetHandler{assets: assets, edges: edges}
}

// Handle executes the delete asset command. Deletion is idempotent: an
// unknown id reports false, never an error. Open edges are closed first so
// no edge keeps pointing at a gone asset.
func (h *DeleteAssetHandler) Handle(cmd DeleteAssetCommand) (bool, error) {
	if cmd.ID == 0 {
		return false, fmt.Errorf("%w: id is required", domain.ErrValidation)
	}

	if _, err := h.assets.FindByID(cmd.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up asset: %w", err)
	}

	now := time.Now()
	open, err := h.edges.FindOpenByAsset(cmd.ID)
	if err != nil {
		return false, fmt.Errorf("failed to read open edges: %w", err)
	}
	for _, edge := range open {
		if err := h.edges.Close(edge.ID, now); err != nil {
			return false, fmt.Errorf("failed to close edge %d: %w", edge.ID, err)
		}
	}

	found, err := h.assets.Delete(cmd.ID)
	if err != nil {
		return false, fmt.Errorf("failed to delete asset: %w", err)
	}

	return found, nil
}
