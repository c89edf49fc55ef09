package command

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/halvard/stockledger/internal/asset/domain"
	catalogdomain "github.com/halvard/stockledger/internal/catalog/domain"
	locationdomain "github.com/halvard/stockledger/internal/location/domain"
	stockdomain "github.com/halvard/stockledger/internal/stock/domain"
)

func TestCreateAsset_WithLocationOpensEdgeAndLogsArrival(t *testing.T) {
	assets := newMockAssetRepo()
	edges := newMockEdgeRepo()
	catalog := newMockCatalogRepo(1)
	locations := newMockLocationRepo(100)
	movements := newMockMovementRepo()
	handler := NewCreateAssetHandler(assets, edges, catalog, locations, movements)

	asset, err := handler.Handle(CreateAssetCommand{
		ItemID:       1,
		Serial:       "SN-100",
		LocationID:   ref(100),
		PurchaseCost: decimal.NewFromInt(1200),
		Actor:        "tester",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if asset.Status != domain.StatusActive {
		t.Errorf("expected active status, got %q", asset.Status)
	}
	if asset.Condition != domain.ConditionGood {
		t.Errorf("expected default condition, got %q", asset.Condition)
	}
	if edges.openCount(asset.ID) != 1 {
		t.Errorf("expected one open edge, got %d", edges.openCount(asset.ID))
	}

	if len(movements.movements) != 1 {
		t.Fatalf("expected one movement, got %d", len(movements.movements))
	}
	mv := movements.movements[0]
	if mv.Type != stockdomain.MovementPurchase {
		t.Errorf("a costed asset arrival is a purchase, got %q", mv.Type)
	}
	if mv.Quantity != 1 || mv.AssetID == nil {
		t.Error("arrival movement must be a single serialized unit")
	}
}

func TestCreateAsset_Unassigned(t *testing.T) {
	assets := newMockAssetRepo()
	edges := newMockEdgeRepo()
	catalog := newMockCatalogRepo(1)
	locations := newMockLocationRepo()
	movements := newMockMovementRepo()
	handler := NewCreateAssetHandler(assets, edges, catalog, locations, movements)

	asset, err := handler.Handle(CreateAssetCommand{ItemID: 1, Serial: "SN-101"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if asset.LocationID != nil {
		t.Error("asset must start unassigned")
	}
	if edges.openCount(asset.ID) != 0 {
		t.Error("an unassigned asset has no containment history yet")
	}
	if len(movements.movements) != 0 {
		t.Error("an unassigned asset arrival leaves no movement")
	}
}

func TestCreateAsset_UnknownReferences(t *testing.T) {
	assets := newMockAssetRepo()
	edges := newMockEdgeRepo()
	catalog := newMockCatalogRepo(1)
	locations := newMockLocationRepo(100)
	movements := newMockMovementRepo()
	handler := NewCreateAssetHandler(assets, edges, catalog, locations, movements)

	_, err := handler.Handle(CreateAssetCommand{ItemID: 99})
	if !errors.Is(err, catalogdomain.ErrNotFound) {
		t.Errorf("expected catalog ErrNotFound, got: %v", err)
	}

	_, err = handler.Handle(CreateAssetCommand{ItemID: 1, LocationID: ref(999)})
	if !errors.Is(err, locationdomain.ErrNotFound) {
		t.Errorf("expected location ErrNotFound, got: %v", err)
	}

	if len(assets.assets) != 0 {
		t.Error("no asset may be persisted when a reference fails to resolve")
	}
	if len(movements.movements) != 0 {
		t.Error("no movement may be appended when a reference fails to resolve")
	}
}

func TestCreateAsset_MissingItem(t *testing.T) {
	handler := NewCreateAssetHandler(
		newMockAssetRepo(), newMockEdgeRepo(), newMockCatalogRepo(), newMockLocationRepo(), newMockMovementRepo())

	_, err := handler.Handle(CreateAssetCommand{})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got: %v", err)
	}
}
