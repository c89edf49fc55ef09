package query

import (
	"errors"
	"sync"
	"testing"

	"github.com/halvard/stockledger/internal/stock/domain"
)

type stockKey struct {
	itemID     uint
	locationID uint
}

type mockStockRepo struct {
	records map[stockKey]*domain.StockRecord
	mu      sync.Mutex
}

func newMockStockRepo(records ...*domain.StockRecord) *mockStockRepo {
	repo := &mockStockRepo{records: make(map[stockKey]*domain.StockRecord)}
	for _, rec := range records {
		repo.records[stockKey{rec.ItemID, rec.LocationID}] = rec
	}
	return repo
}

func (m *mockStockRepo) FindByItemAndLocation(itemID, locationID uint) (*domain.StockRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec, ok := m.records[stockKey{itemID, locationID}]; ok {
		clone := *rec
		return &clone, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockStockRepo) FindByItem(itemID uint) ([]domain.StockRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.StockRecord
	for key, rec := range m.records {
		if key.itemID == itemID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (m *mockStockRepo) FindAll(limit, offset int) ([]domain.StockRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.StockRecord
	for _, rec := range m.records {
		out = append(out, *rec)
	}
	return out, nil
}

func (m *mockStockRepo) FindLowStock() ([]domain.StockRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.StockRecord
	for _, rec := range m.records {
		if rec.MinLevel > 0 && rec.IsLow() {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (m *mockStockRepo) AdjustQuantities(itemID, locationID uint, delta, reservedDelta int) (*domain.StockRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := stockKey{itemID, locationID}
	rec, ok := m.records[key]
	if !ok {
		rec = &domain.StockRecord{ItemID: itemID, LocationID: locationID}
		m.records[key] = rec
	}
	rec.Quantity += delta
	rec.Reserved += reservedDelta

	clone := *rec
	return &clone, nil
}

func (m *mockStockRepo) SetLevel(itemID, locationID uint, quantity int) (*domain.StockRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := stockKey{itemID, locationID}
	rec, ok := m.records[key]
	if !ok {
		rec = &domain.StockRecord{ItemID: itemID, LocationID: locationID}
		m.records[key] = rec
	}
	rec.Quantity = quantity

	clone := *rec
	return &clone, nil
}

func (m *mockStockRepo) Update(record *domain.StockRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clone := *record
	m.records[stockKey{record.ItemID, record.LocationID}] = &clone
	return nil
}

func TestAvailableQuantity(t *testing.T) {
	repo := newMockStockRepo(
		&domain.StockRecord{ItemID: 1, LocationID: 10, Quantity: 10, Reserved: 3},
	)
	handler := NewAvailableQuantityHandler(repo)

	available, err := handler.Handle(GetStockQuery{ItemID: 1, LocationID: 10})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if available != 7 {
		t.Errorf("expected 7 available, got %d", available)
	}
}

func TestAvailableQuantity_ClampedAtZero(t *testing.T) {
	repo := newMockStockRepo(
		&domain.StockRecord{ItemID: 1, LocationID: 10, Quantity: 10, Reserved: 3},
	)
	handler := NewAvailableQuantityHandler(repo)

	// Drive quantity below reserved. The record keeps the raw values; only
	// the derived available figure clamps.
	if _, err := repo.AdjustQuantities(1, 10, -7, 0); err != nil {
		t.Fatalf("adjust failed: %v", err)
	}

	available, err := handler.Handle(GetStockQuery{ItemID: 1, LocationID: 10})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if available != 0 {
		t.Errorf("expected 0 available, got %d", available)
	}

	record, err := repo.FindByItemAndLocation(1, 10)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if record.Quantity != 3 || record.Reserved != 3 {
		t.Errorf("raw values must not be auto-corrected, got qty=%d reserved=%d",
			record.Quantity, record.Reserved)
	}
}

func TestAvailableQuantity_MissingRecordReadsAsZero(t *testing.T) {
	handler := NewAvailableQuantityHandler(newMockStockRepo())

	available, err := handler.Handle(GetStockQuery{ItemID: 9, LocationID: 9})
	if err != nil {
		t.Fatalf("missing record must not error: %v", err)
	}
	if available != 0 {
		t.Errorf("expected 0, got %d", available)
	}
}

func TestGetStock_NotFound(t *testing.T) {
	handler := NewGetStockHandler(newMockStockRepo())

	_, err := handler.Handle(GetStockQuery{ItemID: 9, LocationID: 9})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}
