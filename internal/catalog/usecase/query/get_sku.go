package query

import (
	"fmt"
	"strings"

	"github.com/halvard/stockledger/internal/catalog/domain"
)

// GetSkuQuery represents the query to get a catalog item
type GetSkuQuery struct {
	ID  uint
	Key string
}

// GetSkuHandler handles get sku query
type GetSkuHandler struct {
	repo domain.CatalogRepository
}

// NewGetSkuHandler creates a new get sku handler
func NewGetSkuHandler(repo domain.CatalogRepository) *GetSkuHandler {
	return &GetSkuHandler{repo: repo}
}

// Handle executes the get sku query. Lookup is by id or, failing that, key.
func (h *GetSkuHandler) Handle(query GetSkuQuery) (*domain.CatalogItem, error) {
	if query.ID != 0 {
		item, err := h.repo.FindByID(query.ID)
		if err != nil {
			return nil, fmt.Errorf("catalog item %d: %w", query.ID, err)
		}
		return item, nil
	}

	if strings.TrimSpace(query.Key) == "" {
		return nil, fmt.Errorf("%w: id or key is required", domain.ErrValidation)
	}

	item, err := h.repo.FindByKey(query.Key)
	if err != nil {
		return nil, fmt.Errorf("catalog item %s: %w", query.Key, err)
	}
	return item, nil
}

// ListSkusQuery represents the query to list catalog items
type ListSkusQuery struct {
	Category string
	Limit    int
	Offset   int
}

// ListSkusHandler handles list skus query
type ListSkusHandler struct {
	repo domain.CatalogRepository
}

// NewListSkusHandler creates a new list skus handler
func NewListSkusHandler(repo domain.CatalogRepository) *ListSkusHandler {
	return &ListSkusHandler{repo: repo}
}

// Handle executes the list skus query
func (h *ListSkusHandler) Handle(query ListSkusQuery) ([]domain.CatalogItem, error) {
	if query.Limit == 0 {
		query.Limit = 10
	}

	if query.Limit > 100 {
		query.Limit = 100
	}

	if query.Category != "" {
		items, err := h.repo.FindByCategory(query.Category, query.Limit, query.Offset)
		if err != nil {
			return nil, fmt.Errorf("failed to list catalog items: %w", err)
		}
		return items, nil
	}

	items, err := h.repo.FindAll(query.Limit, query.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog items: %w", err)
	}
	return items, nil
}
