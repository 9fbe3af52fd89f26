package catalog

import "context"

// Product is one record of the partner product catalog.
type Product struct {
	ID                string   `json:"id" yaml:"id"`
	Name              string   `json:"name" yaml:"name"`
	Brand             string   `json:"brand" yaml:"brand"`
	Category          string   `json:"category" yaml:"category"`
	Price             float64  `json:"price" yaml:"price"`
	Currency          string   `json:"currency" yaml:"currency"`
	ImageURL          string   `json:"imageUrl,omitempty" yaml:"imageUrl"`
	AffiliateLink     string   `json:"affiliateLink,omitempty" yaml:"affiliateLink"`
	ActiveIngredients []string `json:"activeIngredients,omitempty" yaml:"activeIngredients"`
	SkinTypes         []string `json:"skinTypes,omitempty" yaml:"skinTypes"`
	Benefits          []string `json:"benefits,omitempty" yaml:"benefits"`
}

// Placeholder reports whether this is the generic stand-in returned when
// nothing in the catalog matched.
func (p Product) Placeholder() bool {
	return p.ID == placeholderID
}

// Repository lists the catalog contents. The resolver loads the list once
// and serves lookups from its own cache.
type Repository interface {
	ListAll(ctx context.Context) ([]Product, error)
}
