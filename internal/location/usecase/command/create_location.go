package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/halvard/stockledger/internal/location/domain"
)

// CreateLocationCommand represents the command to create a location
type CreateLocationCommand struct {
	Name     string
	Type     string
	ParentID *uint
	Tags     []string
}

// CreateLocationHandler handles create location command
type CreateLocationHandler struct {
	repo domain.LocationRepository
}

// NewCreateLocationHandler creates a new create location handler
func NewCreateLocationHandler(repo domain.LocationRepository) *CreateLocationHandler {
	return &CreateLocationHandler{repo: repo}
}

// Handle executes the create location command. The parent must already be
// persisted, which is what keeps the hierarchy acyclic: a new node can only
// point at an existing one.
func (h *CreateLocationHandler) Handle(cmd CreateLocationCommand) (*domain.Location, error) {
	if strings.TrimSpace(cmd.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}

	// The type set is open, not a fixed enum. Unknown types pass through.
	if cmd.Type == "" {
		cmd.Type = domain.TypeWarehouse
	}

	var parentPath string
	if cmd.ParentID != nil {
		parent, err := h.repo.FindByID(*cmd.ParentID)
		if err != nil {
			return nil, fmt.Errorf("parent location %d: %w", *cmd.ParentID, err)
		}
		parentPath = parent.Path
	}

	location := &domain.Location{
		Name:     strings.TrimSpace(cmd.Name),
		Type:     cmd.Type,
		ParentID: cmd.ParentID,
		IsActive: true,
		Tags:     cmd.Tags,
	}

	if err := h.repo.Create(location); err != nil {
		return nil, fmt.Errorf("failed to create location: %w", err)
	}

	// The materialized path needs the generated id, so it is fixed up with a
	// second write right after the insert.
	location.Path = parentPath + domain.PathSeparator + strconv.FormatUint(uint64(location.ID), 10)
	if err := h.repo.Update(location); err != nil {
		return nil, fmt.Errorf("failed to set location path: %w", err)
	}

	return location, nil
}
