package query

import (
	"sync"
	"testing"

	"github.com/halvard/stockledger/internal/location/domain"
)

type mockLocationRepo struct {
	locations map[uint]*domain.Location
	mu        sync.Mutex
}

func newMockLocationRepo(locations ...*domain.Location) *mockLocationRepo {
	repo := &mockLocationRepo{locations: make(map[uint]*domain.Location)}
	for _, loc := range locations {
		repo.locations[loc.ID] = loc
	}
	return repo
}

func (m *mockLocationRepo) Create(location *domain.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations[location.ID] = location
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
	m.locations[location.ID] = location
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

func ref(v uint) *uint { return &v }

func TestGetPath_RootToLeaf(t *testing.T) {
	repo := newMockLocationRepo(
		&domain.Location{ID: 1, Name: "Warehouse", Path: "/1"},
		&domain.Location{ID: 2, Name: "Shelf", ParentID: ref(1), Path: "/1/2"},
		&domain.Location{ID: 3, Name: "Bin", ParentID: ref(2), Path: "/1/2/3"},
	)
	handler := NewGetPathHandler(repo)

	chain, err := handler.Handle(GetPathQuery{ID: 3})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if len(chain) != 3 {
		t.Fatalf("expected 3 ancestors, got %d", len(chain))
	}
	if !chain[0].IsRoot() {
		t.Error("first element must be a root")
	}
	if chain[2].ID != 3 {
		t.Errorf("last element must be the requested location, got %d", chain[2].ID)
	}

	seen := map[uint]bool{}
	for _, loc := range chain {
		if seen[loc.ID] {
			t.Errorf("location %d repeated in path", loc.ID)
		}
		seen[loc.ID] = true
	}
}

func TestGetPath_TruncatesOnMissingParent(t *testing.T) {
	// Parent 7 was hard-deleted upstream; the chain must stop there.
	repo := newMockLocationRepo(
		&domain.Location{ID: 2, Name: "Shelf", ParentID: ref(7)},
		&domain.Location{ID: 3, Name: "Bin", ParentID: ref(2)},
	)
	handler := NewGetPathHandler(repo)

	chain, err := handler.Handle(GetPathQuery{ID: 3})
	if err != nil {
		t.Fatalf("expected truncated chain, got error: %v", err)
	}

	if len(chain) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(chain))
	}
	if chain[0].ID != 2 || chain[1].ID != 3 {
		t.Errorf("unexpected chain order: %d, %d", chain[0].ID, chain[1].ID)
	}
}

func TestGetPath_TerminatesOnCycle(t *testing.T) {
	// 2 -> 3 -> 2 is corrupt data; the walk must not loop.
	repo := newMockLocationRepo(
		&domain.Location{ID: 2, Name: "A", ParentID: ref(3)},
		&domain.Location{ID: 3, Name: "B", ParentID: ref(2)},
	)
	handler := NewGetPathHandler(repo)

	chain, err := handler.Handle(GetPathQuery{ID: 2})
	if err != nil {
		t.Fatalf("expected truncated chain, got error: %v", err)
	}

	if len(chain) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(chain))
	}

	seen := map[uint]bool{}
	for _, loc := range chain {
		if seen[loc.ID] {
			t.Errorf("location %d repeated in chain", loc.ID)
		}
		seen[loc.ID] = true
	}
}

func TestGetPath_UnknownLocation(t *testing.T) {
	handler := NewGetPathHandler(newMockLocationRepo())

	_, err := handler.Handle(GetPathQuery{ID: 99})
	if err == nil {
		t.Fatal("expected an error for an unknown location")
	}
}
