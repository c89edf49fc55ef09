package query

import (
	"fmt"
	"time"

	"github.com/halvard/stockledger/internal/asset/domain"
)

// ByContainerQuery represents the query for assets inside a container.
// With a zero At the current assignment is answered from the asset rows
// (the hot path); a historical instant walks the edge log instead.
type ByContainerQuery struct {
	ContainerID uint
	At          time.Time
}

// ByContainerHandler handles by container query
type ByContainerHandler struct {
	assets domain.AssetRepository
	edges  domain.EdgeRepository
}

// NewByContainerHandler creates a new by container handler
func NewByContainerHandler(assets domain.AssetRepository, edges domain.EdgeRepository) *ByContainerHandler {
	return &ByContainerHandler{assets: assets, edges: edges}
}

// Handle executes the by container query
func (h *ByContainerHandler) Handle(query ByContainerQuery) ([]domain.Asset, error) {
	if query.ContainerID == 0 {
		return nil, fmt.Errorf("%w: container id is required", domain.ErrValidation)
	}

	if query.At.IsZero() {
		assets, err := h.assets.FindByLocation(query.ContainerID)
		if err != nil {
			return nil, fmt.Errorf("failed to list assets by container: %w", err)
		}
		return assets, nil
	}

	edges, err := h.edges.FindByContainer(query.ContainerID, query.At)
	if err != nil {
		return nil, fmt.Errorf("failed to read container history: %w", err)
	}

	assets := make([]domain.Asset, 0, len(edges))
	for _, edge := range edges {
		asset, err := h.assets.FindByID(edge.AssetID)
		if err != nil {
			// The edge outlived the asset; skip rather than fail the report
			continue
		}
		assets = append(assets, *asset)
	}
	return assets, nil
}

// UnderWarrantyQuery represents the query for assets under warranty
type UnderWarrantyQuery struct {
	AsOf time.Time
}

// UnderWarrantyHandler handles under warranty query
type UnderWarrantyHandler struct {
	repo domain.AssetRepository
}

// NewUnderWarrantyHandler creates a new under warranty handler
func NewUnderWarrantyHandler(repo domain.AssetRepository) *UnderWarrantyHandler {
	return &UnderWarrantyHandler{repo: repo}
}

// Handle executes the under warranty query
func (h *UnderWarrantyHandler) Handle(query UnderWarrantyQuery) ([]domain.Asset, error) {
	asOf := query.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}

	assets, err := h.repo.FindUnderWarranty(asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets under warranty: %w", err)
	}
	return assets, nil
}

// EdgeHistoryQuery represents the query for an asset's containment history
type EdgeHistoryQuery struct {
	AssetID uint
}

// EdgeHistoryHandler handles edge history query
type EdgeHistoryHandler struct {
	edges domain.EdgeRepository
}

// NewEdgeHistoryHandler creates a new edge history handler
func NewEdgeHistoryHandler(edges domain.EdgeRepository) *EdgeHistoryHandler {
	return &EdgeHistoryHandler{edges: edges}
}

// Handle executes the edge history query
func (h *EdgeHistoryHandler) Handle(query EdgeHistoryQuery) ([]domain.InstallationEdge, error) {
	if query.AssetID == 0 {
		return nil, fmt.Errorf("%w: asset id is required", domain.ErrValidation)
	}

	edges, err := h.edges.FindByAsset(query.AssetID)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset history: %w", err)
	}
	return edges, nil
}
