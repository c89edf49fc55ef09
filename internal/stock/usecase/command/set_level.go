package command

import (
	"errors"
	"fmt"

	"github.com/halvard/stockledger/internal/stock/domain"
)

// SetLevelCommand represents the command to write an absolute stock level
type SetLevelCommand struct {
	ItemID     uint
	LocationID uint
	Quantity   int
	Reason     string
	Actor      string
}

// SetLevelHandler handles set level command
type SetLevelHandler struct {
	stocks    domain.StockRepository
	movements domain.MovementRepository
}

// NewSetLevelHandler creates a new set level handler
func NewSetLevelHandler(stocks domain.StockRepository, movements domain.MovementRepository) *SetLevelHandler {
	return &SetLevelHandler{stocks: stocks, movements: movements}
}

// Handle executes the set level command. The movement carries the signed
// difference from the previous level so the log still replays to the same
// state an absolute write produced.
func (h *SetLevelHandler) Handle(cmd SetLevelCommand) (*domain.StockRecord, *domain.Movement, error) {
	if cmd.ItemID == 0 {
		return nil, nil, fmt.Errorf("%w: item_id is required", domain.ErrValidation)
	}
	if cmd.LocationID == 0 {
		return nil, nil, fmt.Errorf("%w: location_id is required", domain.ErrValidation)
	}

	previous := 0
	existing, err := h.stocks.FindByItemAndLocation(cmd.ItemID, cmd.LocationID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, nil, fmt.Errorf("failed to read current level: %w", err)
	}
	if existing != nil {
		previous = existing.Quantity
	}

	record, err := h.stocks.SetLevel(cmd.ItemID, cmd.LocationID, cmd.Quantity)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set stock level: %w", err)
	}

	delta := cmd.Quantity - previous
	movement := &domain.Movement{
		Reference: NewReference(),
		Type:      domain.MovementAdjustment,
		ItemID:    cmd.ItemID,
		Quantity:  delta,
		Reason:    cmd.Reason,
		Actor:     cmd.Actor,
	}
	if delta >= 0 {
		movement.ToLocationID = &cmd.LocationID
	} else {
		movement.FromLocationID = &cmd.LocationID
	}

	if err := h.movements.Append(movement); err != nil {
		return record, nil, fmt.Errorf("stock level set but movement not recorded: %w", err)
	}

	return record, movement, nil
}
