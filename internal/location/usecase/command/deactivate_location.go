package command

import (
	"fmt"

	"github.com/halvard/stockledger/internal/location/domain"
)

// DeactivateLocationCommand represents the command to deactivate a location
type DeactivateLocationCommand struct {
	ID uint
}

// DeactivateLocationHandler handles deactivate location command
type DeactivateLocationHandler struct {
	repo domain.LocationRepository
}

// NewDeactivateLocationHandler creates a new deactivate location handler
func NewDeactivateLocationHandler(repo domain.LocationRepository) *DeactivateLocationHandler {
	return &DeactivateLocationHandler{repo: repo}
}

// Handle executes the deactivate location command. Deactivation is a soft
// delete: the row stays so children and stock records keep resolving.
// Returns false when no such location exists.
func (h *DeactivateLocationHandler) Handle(cmd DeactivateLocationCommand) (bool, error) {
	if cmd.ID == 0 {
		return false, fmt.Errorf("%w: id is required", domain.ErrValidation)
	}

	found, err := h.repo.Deactivate(cmd.ID)
	if err != nil {
		return false, fmt.Errorf("failed to deactivate location: %w", err)
	}

	return found, nil
}
