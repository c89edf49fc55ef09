package command

import (
	"fmt"
	"strings"

	"github.com/halvard/stockledger/internal/catalog/domain"
)

// ResolveSkuCommand represents the command to resolve or mint a SKU
type ResolveSkuCommand struct {
	Domain     string
	Kind       string
	Name       string
	Category   string
	PartNumber string
}

// ResolveSkuHandler handles resolve sku command
type ResolveSkuHandler struct {
	repo domain.CatalogRepository
}

// NewResolveSkuHandler creates a new resolve sku handler
func NewResolveSkuHandler(repo domain.CatalogRepository) *ResolveSkuHandler {
	return &ResolveSkuHandler{repo: repo}
}

// Handle executes the resolve sku command. Resolution is idempotent: equal
// inputs after normalization always map to the same row.
func (h *ResolveSkuHandler) Handle(cmd ResolveSkuCommand) (*domain.CatalogItem, error) {
	if strings.TrimSpace(cmd.Domain) == "" {
		return nil, fmt.Errorf("%w: domain is required", domain.ErrValidation)
	}

	if strings.TrimSpace(cmd.Name) == "" && strings.TrimSpace(cmd.PartNumber) == "" {
		return nil, fmt.Errorf("%w: name or part number is required", domain.ErrValidation)
	}

	key := domain.DeriveKey(cmd.Domain, cmd.PartNumber, cmd.Category, cmd.Name)

	item, err := h.repo.Resolve(&domain.CatalogItem{
		Key:        key,
		Domain:     cmd.Domain,
		Kind:       cmd.Kind,
		Name:       strings.TrimSpace(cmd.Name),
		Category:   strings.TrimSpace(cmd.Category),
		PartNumber: strings.TrimSpace(cmd.PartNumber),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve sku: %w", err)
	}

	return item, nil
}
