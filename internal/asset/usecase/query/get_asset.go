package query

import (
	"fmt"

	"github.com/halvard/stockledger/internal/asset/domain"
)

// GetAssetQuery represents the query to get an asset
type GetAssetQuery struct {
	ID uint
}

// GetAssetHandler handles get asset query
type GetAssetHandler struct {
	repo domain.AssetRepository
}

// NewGetAssetHandler creates a new get asset handler
func NewGetAssetHandler(repo domain.AssetRepository) *GetAssetHandler {
	return &GetAssetHandler{repo: repo}
}

// Handle executes the get asset query
func (h *GetAssetHandler) Handle(query GetAssetQuery) (*domain.Asset, error) {
	if query.ID == 0 {
		return nil, fmt.Errorf("%w: id is required", domain.ErrValidation)
	}

	asset, err := h.repo.FindByID(query.ID)
	if err != nil {
		return nil, fmt.Errorf("asset %d: %w", query.ID, err)
	}

	return asset, nil
}

// ListAssetsQuery represents the query to list or search assets
type ListAssetsQuery struct {
	Status   string
	Category string
	Search   string
	Limit    int
	Offset   int
}

// ListAssetsHandler handles list assets query
type ListAssetsHandler struct {
	repo domain.AssetRepository
}

// NewListAssetsHandler creates a new list assets handler
func NewListAssetsHandler(repo domain.AssetRepository) *ListAssetsHandler {
	return &ListAssetsHandler{repo: repo}
}

// Handle executes the list assets query
func (h *ListAssetsHandler) Handle(query ListAssetsQuery) ([]domain.Asset, error) {
	if query.Limit == 0 {
		query.Limit = 10
	}

	if query.Limit > 100 {
		query.Limit = 100
	}

	assets, err := h.repo.FindAll(domain.AssetFilter{
		Status:   query.Status,
		Category: query.Category,
		Search:   query.Search,
		Limit:    query.Limit,
		Offset:   query.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	return assets, nil
}
