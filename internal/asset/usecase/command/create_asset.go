package command

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/halvard/stockledger/internal/asset/domain"
	catalogdomain "github.com/halvard/stockledger/internal/catalog/domain"
	locationdomain "github.com/halvard/stockledger/internal/location/domain"
	stockdomain "github.com/halvard/stockledger/internal/stock/domain"
	stockcommand "github.com/halvard/stockledger/internal/stock/usecase/command"
)

// CreateAssetCommand represents the command to bring a serialized instance
// into tracking
type CreateAssetCommand struct {
	ItemID        uint
	Serial        string
	Condition     string
	LocationID    *uint
	PurchaseCost  decimal.Decimal
	PurchasedAt   *time.Time
	WarrantyUntil *time.Time
	Notes         string
	Actor         string
}

// CreateAssetHandler handles create asset command
type CreateAssetHandler struct {
	assets    domain.AssetRepository
	edges     domain.EdgeRepository
	catalog   catalogdomain.CatalogRepository
	locations locationdomain.LocationRepository
	movements stockdomain.MovementRepository
}

// NewCreateAssetHandler creates a new create asset handler
func NewCreateAssetHandler(
	assets domain.AssetRepository,
	edges domain.EdgeRepository,
	catalog catalogdomain.CatalogRepository,
	locations locationdomain.LocationRepository,
	movements stockdomain.MovementRepository,
) *CreateAssetHandler {
	return &CreateAssetHandler{
		assets:    assets,
		edges:     edges,
		catalog:   catalog,
		locations: locations,
		movements: movements,
	}
}

// Handle executes the create asset command. References are resolved before
// anything is written: an unknown catalog item or location aborts with no
// partial state.
func (h *CreateAssetHandler) Handle(cmd CreateAssetCommand) (*domain.Asset, error) {
	if cmd.ItemID == 0 {
		return nil, fmt.Errorf("%w: item_id is required", domain.ErrValidation)
	}

	if _, err := h.catalog.FindByID(cmd.ItemID); err != nil {
		return nil, fmt.Errorf("catalog item %d: %w", cmd.ItemID, err)
	}
	if cmd.LocationID != nil {
		if _, err := h.locations.FindByID(*cmd.LocationID); err != nil {
			return nil, fmt.Errorf("location %d: %w", *cmd.LocationID, err)
		}
	}

	if cmd.Condition == "" {
		cmd.Condition = domain.ConditionGood
	}

	asset := &domain.Asset{
		ItemID:        cmd.ItemID,
		Serial:        cmd.Serial,
		Condition:     cmd.Condition,
		Status:        domain.StatusActive,
		LocationID:    cmd.LocationID,
		PurchaseCost:  cmd.PurchaseCost,
		PurchasedAt:   cmd.PurchasedAt,
		WarrantyUntil: cmd.WarrantyUntil,
		Notes:         cmd.Notes,
	}

	if err := h.assets.Create(asset); err != nil {
		return nil, fmt.Errorf("failed to create asset: %w", err)
	}

	// An asset born inside a container starts its containment history and
	// leaves its arrival in the movement log.
	if cmd.LocationID != nil {
		edge := &domain.InstallationEdge{
			ContainerID: *cmd.LocationID,
			AssetID:     asset.ID,
			InstalledAt: time.Now(),
			IsValid:     true,
		}
		if err := h.edges.Create(edge); err != nil {
			return asset, fmt.Errorf("asset created but edge not opened: %w", err)
		}

		movementType := stockdomain.MovementAdjustment
		if cmd.PurchaseCost.IsPositive() {
			movementType = stockdomain.MovementPurchase
		}
		movement := &stockdomain.Movement{
			Reference:    stockcommand.NewReference(),
			Type:         movementType,
			ItemID:       cmd.ItemID,
			AssetID:      &asset.ID,
			ToLocationID: cmd.LocationID,
			Quantity:     1,
			UnitCost:     cmd.PurchaseCost,
			Reason:       "asset enters tracking",
			Actor:        cmd.Actor,
		}
		if err := h.movements.Append(movement); err != nil {
			return asset, fmt.Errorf("asset created but movement not recorded: %w", err)
		}
	}

	return asset, nil
}
