package command

import (
	"fmt"
	"time"

	"github.com/halvard/stockledger/internal/asset/domain"
	locationdomain "github.com/halvard/stockledger/internal/location/domain"
	stockdomain "github.com/halvard/stockledger/internal/stock/domain"
	stockcommand "github.com/halvard/stockledger/internal/stock/usecase/command"
	"github.com/halvard/stockledger/pkg/logger"
)

// RelocateAssetCommand represents the command to move an asset. A nil
// NewLocationID unassigns the asset.
type RelocateAssetCommand struct {
	AssetID       uint
	NewLocationID *uint
	EffectiveAt   *time.Time
	Reason        string
	Actor         string
}

// RelocateResult carries the asset and the movement the relocation produced
type RelocateResult struct {
	Asset    *domain.Asset
	Movement *stockdomain.Movement
}

// RelocateAssetHandler handles relocate asset command
type RelocateAssetHandler struct {
	assets    domain.AssetRepository
	edges     domain.EdgeRepository
	locations locationdomain.LocationRepository
	movements stockdomain.MovementRepository
}

// NewRelocateAssetHandler creates a new relocate asset handler
func NewRelocateAssetHandler(
	assets domain.AssetRepository,
	edges domain.EdgeRepository,
	locations locationdomain.LocationRepository,
	movements stockdomain.MovementRepository,
) *RelocateAssetHandler {
	return &RelocateAssetHandler{
		assets:    assets,
		edges:     edges,
		locations: locations,
		movements: movements,
	}
}

// Handle executes the relocation. Edge transitions are driven by diffing
// the previous location against the new one:
//
//	unassigned → assigned   opens an edge
//	assigned → unassigned   closes the open edge
//	assigned → elsewhere    closes then opens, in that order
//
// Closing before opening keeps the open-edge count at one or below during
// the transition, never at two. If opening the new edge fails, the edges the
// close step removed are re-created with their original install times so the
// history matches the unchanged asset row, and the aborted attempt is left
// as a zero-delta note in the movement log. The asset row itself stays
// authoritative for "where is it now"; edges are history only.
func (h *RelocateAssetHandler) Handle(cmd RelocateAssetCommand) (*RelocateResult, error) {
	if cmd.AssetID == 0 {
		return nil, fmt.Errorf("%w: asset_id is required", domain.ErrValidation)
	}

	asset, err := h.assets.FindByID(cmd.AssetID)
	if err != nil {
		return nil, fmt.Errorf("asset %d: %w", cmd.AssetID, err)
	}

	// Resolve the destination before touching anything
	if cmd.NewLocationID != nil {
		if _, err := h.locations.FindByID(*cmd.NewLocationID); err != nil {
			return nil, fmt.Errorf("location %d: %w", *cmd.NewLocationID, err)
		}
	}

	previous := asset.LocationID
	if sameLocation(previous, cmd.NewLocationID) {
		return &RelocateResult{Asset: asset}, nil
	}

	effective := time.Now()
	if cmd.EffectiveAt != nil {
		effective = *cmd.EffectiveAt
	}

	var closed []domain.InstallationEdge
	if previous != nil {
		closed, err = h.closeOpenEdges(asset.ID, effective)
		if err != nil {
			return nil, err
		}
	}

	if cmd.NewLocationID != nil {
		// Re-read immediately before opening; a surviving open edge here
		// means a concurrent writer got in between, and opening now would
		// break the at-most-one-open-edge invariant.
		if err := h.ensureNoOpenEdge(asset.ID, effective); err != nil {
			h.restoreClosedEdges(asset, closed, previous, &cmd)
			return nil, err
		}

		edge := &domain.InstallationEdge{
			ContainerID: *cmd.NewLocationID,
			AssetID:     asset.ID,
			InstalledAt: effective,
			IsValid:     true,
		}
		if err := h.edges.Create(edge); err != nil {
			h.restoreClosedEdges(asset, closed, previous, &cmd)
			return nil, fmt.Errorf("failed to open installation edge: %w", err)
		}
	}

	asset.LocationID = cmd.NewLocationID
	if err := h.assets.Update(asset); err != nil {
		return nil, fmt.Errorf("failed to update asset location: %w", err)
	}

	movement := &stockdomain.Movement{
		Reference:      stockcommand.NewReference(),
		Type:           stockdomain.MovementTransfer,
		ItemID:         asset.ItemID,
		AssetID:        &asset.ID,
		FromLocationID: previous,
		ToLocationID:   cmd.NewLocationID,
		Quantity:       1,
		Reason:         cmd.Reason,
		Actor:          cmd.Actor,
	}
	if err := h.movements.Append(movement); err != nil {
		logger.Logger.Error().Err(err).Uint("asset_id", asset.ID).
			Msg("Asset relocated but movement append failed")
		return &RelocateResult{Asset: asset}, fmt.Errorf("asset relocated but movement not recorded: %w", err)
	}

	return &RelocateResult{Asset: asset, Movement: movement}, nil
}

// closeOpenEdges closes every open edge pointing at the asset and returns
// the edges it closed, so a caller that fails later can put them back. The
// invariant says there is at most one, but closing all of them repairs drift
// instead of compounding it.
func (h *RelocateAssetHandler) closeOpenEdges(assetID uint, removedAt time.Time) ([]domain.InstallationEdge, error) {
	open, err := h.edges.FindOpenByAsset(assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to read open edges: %w", err)
	}
	for _, edge := range open {
		if err := h.edges.Close(edge.ID, removedAt); err != nil {
			return nil, fmt.Errorf("failed to close edge %d: %w", edge.ID, err)
		}
	}
	return open, nil
}

// restoreClosedEdges re-creates the edges an aborted relocation closed,
// keeping their original install times, so the history again matches the
// asset row the relocation never got to update. The aborted attempt is
// recorded as a zero-delta movement. Both writes are best effort: errors are
// logged, not returned, because the caller is already surfacing the failure
// that got us here.
func (h *RelocateAssetHandler) restoreClosedEdges(asset *domain.Asset, closed []domain.InstallationEdge, previous *uint, cmd *RelocateAssetCommand) {
	for _, old := range closed {
		edge := &domain.InstallationEdge{
			ContainerID: old.ContainerID,
			AssetID:     old.AssetID,
			InstalledAt: old.InstalledAt,
			IsValid:     true,
		}
		if err := h.edges.Create(edge); err != nil {
			logger.Logger.Error().Err(err).
				Uint("asset_id", asset.ID).
				Uint("container_id", old.ContainerID).
				Msg("Failed to restore installation edge after aborted relocation")
		}
	}

	note := &stockdomain.Movement{
		Reference:      stockcommand.NewReference(),
		Type:           stockdomain.MovementAdjustment,
		ItemID:         asset.ItemID,
		AssetID:        &asset.ID,
		FromLocationID: previous,
		ToLocationID:   cmd.NewLocationID,
		Quantity:       0,
		Reason:         "relocation aborted, prior installation restored",
		Actor:          cmd.Actor,
	}
	if err := h.movements.Append(note); err != nil {
		logger.Logger.Error().Err(err).Uint("asset_id", asset.ID).
			Msg("Failed to record aborted relocation")
	}
}

// ensureNoOpenEdge re-reads open edges and retries the close once before
// giving up with a conflict.
func (h *RelocateAssetHandler) ensureNoOpenEdge(assetID uint, removedAt time.Time) error {
	open, err := h.edges.FindOpenByAsset(assetID)
	if err != nil {
		return fmt.Errorf("failed to re-read open edges: %w", err)
	}
	if len(open) == 0 {
		return nil
	}

	if _, err := h.closeOpenEdges(assetID, removedAt); err != nil {
		return err
	}

	open, err = h.edges.FindOpenByAsset(assetID)
	if err != nil {
		return fmt.Errorf("failed to re-read open edges: %w", err)
	}
	if len(open) > 0 {
		return fmt.Errorf("%w: asset %d still has %d open edges", domain.ErrConflict, assetID, len(open))
	}
	return nil
}

func sameLocation(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
