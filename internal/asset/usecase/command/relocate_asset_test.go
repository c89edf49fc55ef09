package command

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/halvard/stockledger/internal/asset/domain"
	catalogdomain "github.com/halvard/stockledger/internal/catalog/domain"
	locationdomain "github.com/halvard/stockledger/internal/location/domain"
	stockdomain "github.com/halvard/stockledger/internal/stock/domain"
)

type mockAssetRepo struct {
	assets map[uint]*domain.Asset
	nextID uint
	mu     sync.Mutex
}

func newMockAssetRepo() *mockAssetRepo {
	return &mockAssetRepo{assets: make(map[uint]*domain.Asset), nextID: 1}
}

func (m *mockAssetRepo) Create(asset *domain.Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	asset.ID = m.nextID
	m.nextID++
	clone := *asset
	m.assets[asset.ID] = &clone
	return nil
}

func (m *mockAssetRepo) FindByID(id uint) (*domain.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if asset, ok := m.assets[id]; ok {
		clone := *asset
		return &clone, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockAssetRepo) FindBySerial(serial string) (*domain.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, asset := range m.assets {
		if asset.Serial == serial {
			clone := *asset
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockAssetRepo) FindByLocation(locationID uint) ([]domain.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Asset
	for _, asset := range m.assets {
		if asset.LocationID != nil && *asset.LocationID == locationID {
			out = append(out, *asset)
		}
	}
	return out, nil
}

func (m *mockAssetRepo) FindUnderWarranty(asOf time.Time) ([]domain.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Asset
	for _, asset := range m.assets {
		if asset.WarrantyUntil != nil && asset.WarrantyUntil.After(asOf) {
			out = append(out, *asset)
		}
	}
	return out, nil
}

func (m *mockAssetRepo) FindAll(filter domain.AssetFilter) ([]domain.Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Asset
	for _, asset := range m.assets {
		out = append(out, *asset)
	}
	return out, nil
}

func (m *mockAssetRepo) Update(asset *domain.Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.assets[asset.ID]; !ok {
		return domain.ErrNotFound
	}
	clone := *asset
	m.assets[asset.ID] = &clone
	return nil
}

func (m *mockAssetRepo) Delete(id uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.assets[id]; !ok {
		return false, nil
	}
	delete(m.assets, id)
	return true, nil
}

type mockEdgeRepo struct {
	edges          map[uint]*domain.InstallationEdge
	nextID         uint
	failNextCreate bool
	mu             sync.Mutex
}

func newMockEdgeRepo() *mockEdgeRepo {
	return &mockEdgeRepo{edges: make(map[uint]*domain.InstallationEdge), nextID: 1}
}

func (m *mockEdgeRepo) Create(edge *domain.InstallationEdge) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failNextCreate {
		m.failNextCreate = false
		return errors.New("insert failed")
	}

	edge.ID = m.nextID
	m.nextID++
	clone := *edge
	m.edges[edge.ID] = &clone
	return nil
}

func (m *mockEdgeRepo) FindOpenByAsset(assetID uint) ([]domain.InstallationEdge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.InstallationEdge
	for _, edge := range m.edges {
		if edge.AssetID == assetID && edge.IsOpen() {
			out = append(out, *edge)
		}
	}
	return out, nil
}

func (m *mockEdgeRepo) Close(edgeID uint, removedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	edge, ok := m.edges[edgeID]
	if !ok {
		return domain.ErrNotFound
	}
	edge.RemovedAt = &removedAt
	edge.IsValid = false
	return nil
}

func (m *mockEdgeRepo) FindByAsset(assetID uint) ([]domain.InstallationEdge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.InstallationEdge
	for _, edge := range m.edges {
		if edge.AssetID == assetID {
			out = append(out, *edge)
		}
	}
	return out, nil
}

func (m *mockEdgeRepo) FindByContainer(containerID uint, at time.Time) ([]domain.InstallationEdge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.InstallationEdge
	for _, edge := range m.edges {
		if edge.ContainerID == containerID {
			out = append(out, *edge)
		}
	}
	return out, nil
}

func (m *mockEdgeRepo) openCount(assetID uint) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, edge := range m.edges {
		if edge.AssetID == assetID && edge.IsOpen() {
			count++
		}
	}
	return count
}

type mockLocationRepo struct {
	locations map[uint]*locationdomain.Location
	mu        sync.Mutex
}

func newMockLocationRepo(ids ...uint) *mockLocationRepo {
	repo := &mockLocationRepo{locations: make(map[uint]*locationdomain.Location)}
	for _, id := range ids {
		repo.locations[id] = &locationdomain.Location{ID: id, IsActive: true}
	}
	return repo
}

func (m *mockLocationRepo) Create(location *locationdomain.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations[location.ID] = location
	return nil
}

func (m *mockLocationRepo) FindByID(id uint) (*locationdomain.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if loc, ok := m.locations[id]; ok {
		clone := *loc
		return &clone, nil
	}
	return nil, locationdomain.ErrNotFound
}

func (m *mockLocationRepo) FindChildren(parentID uint) ([]locationdomain.Location, error) {
	return nil, nil
}

func (m *mockLocationRepo) FindRoots() ([]locationdomain.Location, error) {
	return nil, nil
}

func (m *mockLocationRepo) FindAll(limit, offset int) ([]locationdomain.Location, error) {
	return nil, nil
}

func (m *mockLocationRepo) Update(location *locationdomain.Location) error {
	return nil
}

func (m *mockLocationRepo) Deactivate(id uint) (bool, error) {
	return false, nil
}

type mockCatalogRepo struct {
	items map[uint]*catalogdomain.CatalogItem
	mu    sync.Mutex
}

func newMockCatalogRepo(ids ...uint) *mockCatalogRepo {
	repo := &mockCatalogRepo{items: make(map[uint]*catalogdomain.CatalogItem)}
	for _, id := range ids {
		repo.items[id] = &catalogdomain.CatalogItem{ID: id}
	}
	return repo
}

func (m *mockCatalogRepo) Resolve(item *catalogdomain.CatalogItem) (*catalogdomain.CatalogItem, error) {
	return item, nil
}

func (m *mockCatalogRepo) FindByID(id uint) (*catalogdomain.CatalogItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if item, ok := m.items[id]; ok {
		return item, nil
	}
	return nil, catalogdomain.ErrNotFound
}

func (m *mockCatalogRepo) FindByKey(key string) (*catalogdomain.CatalogItem, error) {
	return nil, catalogdomain.ErrNotFound
}

func (m *mockCatalogRepo) FindAll(limit, offset int) ([]catalogdomain.CatalogItem, error) {
	return nil, nil
}

func (m *mockCatalogRepo) FindByCategory(category string, limit, offset int) ([]catalogdomain.CatalogItem, error) {
	return nil, nil
}

type mockMovementRepo struct {
	movements []stockdomain.Movement
	mu        sync.Mutex
}

func newMockMovementRepo() *mockMovementRepo {
	return &mockMovementRepo{}
}

func (m *mockMovementRepo) Append(movement *stockdomain.Movement) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	movement.ID = uint(len(m.movements) + 1)
	m.movements = append(m.movements, *movement)
	return nil
}

func (m *mockMovementRepo) Find(filter stockdomain.MovementFilter) ([]stockdomain.Movement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]stockdomain.Movement{}, m.movements...), nil
}

func (m *mockMovementRepo) SumByItem(itemID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var sum int64
	for _, mv := range m.movements {
		if mv.ItemID == itemID && mv.AssetID == nil {
			sum += int64(mv.Quantity)
		}
	}
	return sum, nil
}

func (m *mockMovementRepo) TotalsByType(from, to time.Time) (map[string]int64, error) {
	return map[string]int64{}, nil
}

func ref(v uint) *uint { return &v }

func seedAsset(t *testing.T, assets *mockAssetRepo, locationID *uint) *domain.Asset {
	t.Helper()
	asset := &domain.Asset{
		ItemID:     1,
		Serial:     "SN-001",
		Condition:  domain.ConditionGood,
		Status:     domain.StatusActive,
		LocationID: locationID,
	}
	if err := assets.Create(asset); err != nil {
		t.Fatalf("failed to seed asset: %v", err)
	}
	return asset
}

func TestRelocateAsset_UnassignedToContainer(t *testing.T) {
	assets := newMockAssetRepo()
	edges := newMockEdgeRepo()
	locations := newMockLocationRepo(100)
	movements := newMockMovementRepo()
	handler := NewRelocateAssetHandler(assets, edges, locations, movements)

	asset := seedAsset(t, assets, nil)

	result, err := handler.Handle(RelocateAssetCommand{
		AssetID:       asset.ID,
		NewLocationID: ref(100),
		Actor:         "tester",
	})
	if err != nil {
		t.Fatalf("relocate failed: %v", err)
	}

	if result.Asset.LocationID == nil || *result.Asset.LocationID != 100 {
		t.Error("asset location pointer must move to the container")
	}
	if edges.openCount(asset.ID) != 1 {
		t.Errorf("expected exactly one open edge, got %d", edges.openCount(asset.ID))
	}
	if result.Movement == nil || result.Movement.Quantity != 1 {
		t.Error("relocation must append a single-unit movement")
	}
	if result.Movement.AssetID == nil || *result.Movement.AssetID != asset.ID {
		t.Error("relocation movement must carry the asset id")
	}
}

func TestRelocateAsset_ReinstallElsewhere(t *testing.T) {
	assets := newMockAssetRepo()
	edges := newMockEdgeRepo()
	locations := newMockLocationRepo(100, 200)
	movements := newMockMovementRepo()
	handler := NewRelocateAssetHandler(assets, edges, locations, movements)

	asset := seedAsset(t, assets, nil)

	if _, err := handler.Handle(RelocateAssetCommand{AssetID: asset.ID, NewLocationID: ref(100)}); err != nil {
		t.Fatalf("first relocate failed: %v", err)
	}
	if _, err := handler.Handle(RelocateAssetCommand{AssetID: asset.ID, NewLocationID: ref(200)}); err != nil {
		t.Fatalf("second relocate failed: %v", err)
	}

	if edges.openCount(asset.ID) != 1 {
		t.Errorf("expected exactly one open edge after reinstall, got %d", edges.openCount(asset.ID))
	}

	history, err := edges.FindByAsset(asset.ID)
	if err != nil {
		t.Fatalf("edge history read failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 edges in history, got %d", len(history))
	}
	for _, edge := range history {
		if edge.ContainerID == 100 && edge.IsOpen() {
			t.Error("old edge must be closed")
		}
		if edge.ContainerID == 200 && !edge.IsOpen() {
			t.Error("new edge must be open")
		}
	}
}

func TestRelocateAsset_FailedReinstallRestoresPriorEdge(t *testing.T) {
	assets := newMockAssetRepo()
	edges := newMockEdgeRepo()
	locations := newMockLocationRepo(100, 200)
	movements := newMockMovementRepo()
	handler := NewRelocateAssetHandler(assets, edges, locations, movements)

	asset := seedAsset(t, assets, nil)

	if _, err := handler.Handle(RelocateAssetCommand{AssetID: asset.ID, NewLocationID: ref(100)}); err != nil {
		t.Fatalf("install failed: %v", err)
	}
	installed, err := edges.FindOpenByAsset(asset.ID)
	if err != nil || len(installed) != 1 {
		t.Fatalf("expected one open edge after install, got %d (%v)", len(installed), err)
	}
	installedAt := installed[0].InstalledAt
	installCount := len(movements.movements)

	edges.failNextCreate = true
	if _, err := handler.Handle(RelocateAssetCommand{AssetID: asset.ID, NewLocationID: ref(200)}); err == nil {
		t.Fatal("reinstall must fail when the new edge cannot be opened")
	}

	got, err := assets.FindByID(asset.ID)
	if err != nil {
		t.Fatalf("asset read failed: %v", err)
	}
	if got.LocationID == nil || *got.LocationID != 100 {
		t.Error("asset location pointer must stay at the old container")
	}

	open, err := edges.FindOpenByAsset(asset.ID)
	if err != nil {
		t.Fatalf("open edge read failed: %v", err)
	}
	if len(open) != 1 {
		t.Fatalf("expected exactly one open edge after aborted reinstall, got %d", len(open))
	}
	if open[0].ContainerID != 100 {
		t.Errorf("open edge must point at the old container, got %d", open[0].ContainerID)
	}
	if !open[0].InstalledAt.Equal(installedAt) {
		t.Error("restored edge must keep the original install time")
	}

	recorded, _ := movements.Find(stockdomain.MovementFilter{})
	if len(recorded) != installCount+1 {
		t.Fatalf("expected one movement note for the aborted attempt, got %d new", len(recorded)-installCount)
	}
	note := recorded[len(recorded)-1]
	if note.Quantity != 0 {
		t.Errorf("aborted-attempt note must carry zero delta, got %d", note.Quantity)
	}
	if note.AssetID == nil || *note.AssetID != asset.ID {
		t.Error("aborted-attempt note must carry the asset id")
	}
}

func TestRelocateAsset_Unassign(t *testing.T) {
	assets := newMockAssetRepo()
	edges := newMockEdgeRepo()
	locations := newMockLocationRepo(100)
	movements := newMockMovementRepo()
	handler := NewRelocateAssetHandler(assets, edges, locations, movements)

	asset := seedAsset(t, assets, nil)

	if _, err := handler.Handle(RelocateAssetCommand{AssetID: asset.ID, NewLocationID: ref(100)}); err != nil {
		t.Fatalf("install failed: %v", err)
	}

	result, err := handler.Handle(RelocateAssetCommand{AssetID: asset.ID, NewLocationID: nil})
	if err != nil {
		t.Fatalf("unassign failed: %v", err)
	}

	if result.Asset.LocationID != nil {
		t.Error("asset must end up unassigned")
	}
	if edges.openCount(asset.ID) != 0 {
		t.Errorf("expected zero open edges, got %d", edges.openCount(asset.ID))
	}
}

func TestRelocateAsset_SameLocationNoOp(t *testing.T) {
	assets := newMockAssetRepo()
	edges := newMockEdgeRepo()
	locations := newMockLocationRepo(100)
	movements := newMockMovementRepo()
	handler := NewRelocateAssetHandler(assets, edges, locations, movements)

	asset := seedAsset(t, assets, nil)

	if _, err := handler.Handle(RelocateAssetCommand{AssetID: asset.ID, NewLocationID: ref(100)}); err != nil {
		t.Fatalf("install failed: %v", err)
	}
	movementsBefore := len(movements.movements)

	result, err := handler.Handle(RelocateAssetCommand{AssetID: asset.ID, NewLocationID: ref(100)})
	if err != nil {
		t.Fatalf("no-op relocate failed: %v", err)
	}

	if result.Movement != nil {
		t.Error("a no-op relocation must not produce a movement")
	}
	if len(movements.movements) != movementsBefore {
		t.Error("movement log grew on a no-op relocation")
	}
	if edges.openCount(asset.ID) != 1 {
		t.Errorf("expected the single open edge to survive, got %d", edges.openCount(asset.ID))
	}
}

func TestRelocateAsset_UnknownDestinationNoPartialState(t *testing.T) {
	assets := newMockAssetRepo()
	edges := newMockEdgeRepo()
	locations := newMockLocationRepo(100)
	movements := newMockMovementRepo()
	handler := NewRelocateAssetHandler(assets, edges, locations, movements)

	asset := seedAsset(t, assets, ref(100))

	_, err := handler.Handle(RelocateAssetCommand{AssetID: asset.ID, NewLocationID: ref(999)})
	if !errors.Is(err, locationdomain.ErrNotFound) {
		t.Fatalf("expected location ErrNotFound, got: %v", err)
	}

	unchanged, _ := assets.FindByID(asset.ID)
	if unchanged.LocationID == nil || *unchanged.LocationID != 100 {
		t.Error("asset location must be untouched after a failed relocate")
	}
	if len(movements.movements) != 0 {
		t.Error("no movement may be appended on a failed relocate")
	}
}

func TestDeleteAsset_Idempotent(t *testing.T) {
	assets := newMockAssetRepo()
	edges := newMockEdgeRepo()
	locations := newMockLocationRepo(100)
	movements := newMockMovementRepo()
	relocate := NewRelocateAssetHandler(assets, edges, locations, movements)
	deleteHandler := NewDeleteAssetHandler(assets, edges)

	asset := seedAsset(t, assets, nil)
	if _, err := relocate.Handle(RelocateAssetCommand{AssetID: asset.ID, NewLocationID: ref(100)}); err != nil {
		t.Fatalf("install failed: %v", err)
	}

	found, err := deleteHandler.Handle(DeleteAssetCommand{ID: asset.ID})
	if err != nil || !found {
		t.Fatalf("expected (true, nil), got (%v, %v)", found, err)
	}
	if edges.openCount(asset.ID) != 0 {
		t.Error("open edges must be closed before the asset goes away")
	}

	found, err = deleteHandler.Handle(DeleteAssetCommand{ID: asset.ID})
	if err != nil {
		t.Fatalf("second delete must not error: %v", err)
	}
	if found {
		t.Error("second delete must report false")
	}
}
