package command

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/halvard/stockledger/internal/stock/domain"
	"github.com/halvard/stockledger/pkg/logger"
)

// NewReference mints a human-readable correlation code for a movement.
// Codes are for humans chasing receipts, not a uniqueness constraint.
func NewReference() string {
	return fmt.Sprintf("MV-%s", uuid.New().String()[:8])
}

// AdjustStockCommand represents the command to change on-hand quantities
type AdjustStockCommand struct {
	ItemID        uint
	LocationID    uint
	Delta         int
	ReservedDelta int
	Type          string
	UnitCost      decimal.Decimal
	Reason        string
	Actor         string
}

// AdjustStockHandler handles adjust stock command
type AdjustStockHandler struct {
	stocks    domain.StockRepository
	movements domain.MovementRepository
}

// NewAdjustStockHandler creates a new adjust stock handler
func NewAdjustStockHandler(stocks domain.StockRepository, movements domain.MovementRepository) *AdjustStockHandler {
	return &AdjustStockHandler{stocks: stocks, movements: movements}
}

// Handle executes the adjust stock command. Adjustments are trusted input:
// a delta that drives the balance negative is recorded, not rejected, and
// left for reconciliation to flag. The ledger write and the movement append
// are two independent steps; if the second fails the log is the authority
// for detecting the gap.
func (h *AdjustStockHandler) Handle(cmd AdjustStockCommand) (*domain.StockRecord, *domain.Movement, error) {
	if cmd.ItemID == 0 {
		return nil, nil, fmt.Errorf("%w: item_id is required", domain.ErrValidation)
	}
	if cmd.LocationID == 0 {
		return nil, nil, fmt.Errorf("%w: location_id is required", domain.ErrValidation)
	}
	if cmd.Delta == 0 && cmd.ReservedDelta == 0 {
		return nil, nil, fmt.Errorf("%w: nothing to adjust", domain.ErrValidation)
	}
	if cmd.Type == "" {
		cmd.Type = domain.MovementAdjustment
	}

	record, err := h.stocks.AdjustQuantities(cmd.ItemID, cmd.LocationID, cmd.Delta, cmd.ReservedDelta)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to adjust stock: %w", err)
	}

	movement := &domain.Movement{
		Reference: NewReference(),
		Type:      cmd.Type,
		ItemID:    cmd.ItemID,
		Quantity:  cmd.Delta,
		UnitCost:  cmd.UnitCost,
		Reason:    cmd.Reason,
		Actor:     cmd.Actor,
	}
	if cmd.Delta >= 0 {
		movement.ToLocationID = &cmd.LocationID
	} else {
		movement.FromLocationID = &cmd.LocationID
	}

	if err := h.movements.Append(movement); err != nil {
		// The ledger already moved. Surface the failure loudly so the
		// drift is reconciled from the log rather than papered over.
		logger.Logger.Error().
			Err(err).
			Uint("item_id", cmd.ItemID).
			Uint("location_id", cmd.LocationID).
			Int("delta", cmd.Delta).
			Msg("Stock adjusted but movement append failed; ledger and log have diverged")
		return record, nil, fmt.Errorf("stock adjusted but movement not recorded: %w", err)
	}

	return record, movement, nil
}
