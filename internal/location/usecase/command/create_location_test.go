package command

import (
	"errors"
	"sync"
	"testing"

	"github.com/halvard/stockledger/internal/location/domain"
)

type mockLocationRepo struct {
	locations map[uint]*domain.Location
	nextID    uint
	mu        sync.Mutex
}

func newMockLocationRepo() *mockLocationRepo {
	return &mockLocationRepo{
		locations: make(map[uint]*domain.Location),
		nextID:    1,
	}
}

func (m *mockLocationRepo) Create(location *domain.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	location.ID = m.nextID
	m.nextID++
	clone := *location
	m.locations[location.ID] = &clone
	return nil
}

func (m *mockLocationRepo) FindByID(id uint) (*domain.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if loc, ok := m.locations[id]; ok {
		clone := *loc
		return &clone, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockLocationRepo) FindChildren(parentID uint) ([]domain.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Location
	for _, loc := range m.locations {
		if loc.ParentID != nil && *loc.ParentID == parentID {
			out = append(out, *loc)
		}
	}
	return out, nil
}

func (m *mockLocationRepo) FindRoots() ([]domain.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Location
	for _, loc := range m.locations {
		if loc.ParentID == nil {
			out = append(out, *loc)
		}
	}
	return out, nil
}

func (m *mockLocationRepo) FindAll(limit, offset int) ([]domain.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Location
	for _, loc := range m.locations {
		out = append(out, *loc)
	}
	return out, nil
}

func (m *mockLocationRepo) Update(location *domain.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.locations[location.ID]; !ok {
		return domain.ErrNotFound
	}
	clone := *location
	m.locations[location.ID] = &clone
	return nil
}

func (m *mockLocationRepo) Deactivate(id uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	loc, ok := m.locations[id]
	if !ok {
		return false, nil
	}
	loc.IsActive = false
	return true, nil
}

func TestCreateLocation_Root(t *testing.T) {
	repo := newMockLocationRepo()
	handler := NewCreateLocationHandler(repo)

	loc, err := handler.Handle(CreateLocationCommand{Name: "Main Warehouse"})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if loc.Type != domain.TypeWarehouse {
		t.Errorf("expected default type warehouse, got %q", loc.Type)
	}
	if loc.Path != "/1" {
		t.Errorf("expected path /1, got %q", loc.Path)
	}
	if !loc.IsRoot() {
		t.Error("expected a root location")
	}
}

func TestCreateLocation_ChildExtendsParentPath(t *testing.T) {
	repo := newMockLocationRepo()
	handler := NewCreateLocationHandler(repo)

	parent, err := handler.Handle(CreateLocationCommand{Name: "Warehouse"})
	if err != nil {
		t.Fatalf("failed to create parent: %v", err)
	}

	child, err := handler.Handle(CreateLocationCommand{
		Name:     "Shelf A",
		Type:     domain.TypeShelf,
		ParentID: &parent.ID,
	})
	if err != nil {
		t.Fatalf("failed to create child: %v", err)
	}

	if child.Path != parent.Path+"/2" {
		t.Errorf("expected child path %q, got %q", parent.Path+"/2", child.Path)
	}
}

func TestCreateLocation_UnknownTypeKept(t *testing.T) {
	repo := newMockLocationRepo()
	handler := NewCreateLocationHandler(repo)

	loc, err := handler.Handle(CreateLocationCommand{Name: "Dock 3", Type: "loading-dock"})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if loc.Type != "loading-dock" {
		t.Errorf("custom type was rewritten to %q", loc.Type)
	}
	if domain.IsKnownType(loc.Type) {
		t.Error("loading-dock should not be a well-known type")
	}
}

func TestCreateLocation_MissingParent(t *testing.T) {
	repo := newMockLocationRepo()
	handler := NewCreateLocationHandler(repo)

	missing := uint(42)
	_, err := handler.Handle(CreateLocationCommand{Name: "Orphan", ParentID: &missing})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
	if len(repo.locations) != 0 {
		t.Error("no location should be persisted when the parent is missing")
	}
}

func TestCreateLocation_BlankName(t *testing.T) {
	repo := newMockLocationRepo()
	handler := NewCreateLocationHandler(repo)

	_, err := handler.Handle(CreateLocationCommand{Name: "   "})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got: %v", err)
	}
}

func TestDeactivateLocation_Idempotent(t *testing.T) {
	repo := newMockLocationRepo()
	create := NewCreateLocationHandler(repo)
	deactivate := NewDeactivateLocationHandler(repo)

	loc, err := create.Handle(CreateLocationCommand{Name: "Old Shed"})
	if err != nil {
		t.Fatalf("failed to create location: %v", err)
	}

	found, err := deactivate.Handle(DeactivateLocationCommand{ID: loc.ID})
	if err != nil || !found {
		t.Fatalf("expected (true, nil), got (%v, %v)", found, err)
	}

	found, err = deactivate.Handle(DeactivateLocationCommand{ID: 999})
	if err != nil {
		t.Fatalf("missing location must not error: %v", err)
	}
	if found {
		t.Error("expected false for a missing location")
	}
}
