package command

import (
	"fmt"

	"github.com/halvard/stockledger/internal/stock/domain"
	"github.com/halvard/stockledger/pkg/logger"
)

// TransferStockCommand represents the command to move quantity between locations
type TransferStockCommand struct {
	ItemID         uint
	FromLocationID uint
	ToLocationID   uint
	Quantity       int
	Reason         string
	Actor          string
}

// TransferResult carries the post-transfer state of both sides
type TransferResult struct {
	Source      *domain.StockRecord
	Destination *domain.StockRecord
	Movements   []domain.Movement
}

// TransferStockHandler handles transfer stock command
type TransferStockHandler struct {
	stocks    domain.StockRepository
	movements domain.MovementRepository
}

// NewTransferStockHandler creates a new transfer stock handler
func NewTransferStockHandler(stocks domain.StockRepository, movements domain.MovementRepository) *TransferStockHandler {
	return &TransferStockHandler{stocks: stocks, movements: movements}
}

// Handle executes the transfer. There is no cross-row transaction: the
// decrement, the increment and the two movement appends are each
// independently retryable steps. A failure between them leaves a partial
// transfer that the movement log exposes for reconciliation; the handler
// stops at the first failed step so nothing is silently skipped.
func (h *TransferStockHandler) Handle(cmd TransferStockCommand) (*TransferResult, error) {
	if cmd.ItemID == 0 {
		return nil, fmt.Errorf("%w: item_id is required", domain.ErrValidation)
	}
	if cmd.FromLocationID == 0 || cmd.ToLocationID == 0 {
		return nil, fmt.Errorf("%w: both locations are required", domain.ErrValidation)
	}
	if cmd.FromLocationID == cmd.ToLocationID {
		return nil, fmt.Errorf("%w: source and destination are the same", domain.ErrValidation)
	}
	if cmd.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}

	reference := NewReference()

	source, err := h.stocks.AdjustQuantities(cmd.ItemID, cmd.FromLocationID, -cmd.Quantity, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to decrement source: %w", err)
	}

	out := domain.Movement{
		Reference:      reference,
		Type:           domain.MovementTransfer,
		ItemID:         cmd.ItemID,
		FromLocationID: &cmd.FromLocationID,
		ToLocationID:   &cmd.ToLocationID,
		Quantity:       -cmd.Quantity,
		Reason:         cmd.Reason,
		Actor:          cmd.Actor,
	}
	if err := h.movements.Append(&out); err != nil {
		logger.Logger.Error().Err(err).Str("reference", reference).
			Msg("Source decremented but outbound movement append failed")
		return nil, fmt.Errorf("source decremented but movement not recorded: %w", err)
	}

	destination, err := h.stocks.AdjustQuantities(cmd.ItemID, cmd.ToLocationID, cmd.Quantity, 0)
	if err != nil {
		// Source already moved. The outbound movement row is the evidence
		// reconciliation needs to finish or revert this transfer.
		logger.Logger.Error().Err(err).Str("reference", reference).
			Msg("Transfer half-applied: destination increment failed")
		return nil, fmt.Errorf("failed to increment destination (transfer %s half-applied): %w", reference, err)
	}

	in := domain.Movement{
		Reference:      reference,
		Type:           domain.MovementTransfer,
		ItemID:         cmd.ItemID,
		FromLocationID: &cmd.FromLocationID,
		ToLocationID:   &cmd.ToLocationID,
		Quantity:       cmd.Quantity,
		Reason:         cmd.Reason,
		Actor:          cmd.Actor,
	}
	if err := h.movements.Append(&in); err != nil {
		logger.Logger.Error().Err(err).Str("reference", reference).
			Msg("Destination incremented but inbound movement append failed")
		return nil, fmt.Errorf("transfer applied but inbound movement not recorded: %w", err)
	}

	return &TransferResult{
		Source:      source,
		Destination: destination,
		Movements:   []domain.Movement{out, in},
	}, nil
}
