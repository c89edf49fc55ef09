package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// Sentinel errors returned by catalog operations
var (
	ErrNotFound   = errors.New("catalog item not found")
	ErrValidation = errors.New("invalid catalog input")
)

// CatalogItem is the canonical definition of a logical item (SKU). Multiple
// subsystems feed the catalog; the normalized Key is what keeps them from
// minting duplicates for the same physical thing.
type CatalogItem struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Key        string    `json:"key" gorm:"uniqueIndex;not null"`
	Domain     string    `json:"domain" gorm:"not null;index"`
	Kind       string    `json:"kind"`
	Name       string    `json:"name" gorm:"not null"`
	Category   string    `json:"category" gorm:"index"`
	PartNumber string    `json:"part_number"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (CatalogItem) TableName() string {
	return "catalog_skus"
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Normalize lowercases s, collapses every non-alphanumeric run into a single
// hyphen and trims leading/trailing hyphens. "ABC 123" and "abc-123"
// normalize to the same token.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// DeriveKey builds the canonical SKU key. A usable part number wins:
// "domain:part". Otherwise the key falls back to "domain:category:name".
func DeriveKey(domainTag, partNumber, category, name string) string {
	if part := Normalize(partNumber); part != "" {
		return domainTag + ":" + part
	}
	return domainTag + ":" + Normalize(category) + ":" + Normalize(name)
}

// CatalogRepository defines the contract for catalog data access
type CatalogRepository interface {
	// Resolve finds the item for the key or creates it. Two racing
	// first-time resolvers may both attempt the insert; the unique index on
	// the key plus a re-read after conflict keeps the registry single-row
	// per logical item.
	Resolve(item *CatalogItem) (*CatalogItem, error)
	FindByID(id uint) (*CatalogItem, error)
	FindByKey(key string) (*CatalogItem, error)
	FindAll(limit, offset int) ([]CatalogItem, error)
	FindByCategory(category string, limit, offset int) ([]CatalogItem, error)
}
