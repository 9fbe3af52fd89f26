package catalogrepo

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/eclatderm/visage/internal/domain/catalog"
)

// MemoryRepository serves the catalog from an in-memory slice, optionally
// seeded from a YAML file. Used for tests, local dev, and as the fallback
// when Postgres is not configured.
type MemoryRepository struct {
	products []catalog.Product
}

// NewMemoryRepository constructs a repository over the given products.
func NewMemoryRepository(products []catalog.Product) *MemoryRepository {
	return &MemoryRepository{products: products}
}

// NewMemoryRepositoryFromFile loads the catalog seed from a YAML file.
func NewMemoryRepositoryFromFile(path string) (*MemoryRepository, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog seed: %w", err)
	}
	var seed struct {
		Products []catalog.Product `yaml:"products"`
	}
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse catalog seed: %w", err)
	}
	return &MemoryRepository{products: seed.Products}, nil
}

// ListAll implements catalog.Repository.
func (r *MemoryRepository) ListAll(_ context.Context) ([]catalog.Product, error) {
	out := make([]catalog.Product, len(r.products))
	copy(out, r.products)
	return out, nil
}

var _ catalog.Repository = (*MemoryRepository)(nil)
