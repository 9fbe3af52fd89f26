package catalog

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"sync"
)

const placeholderID = "PLACEHOLDER"

// placeholderProduct is returned when every resolution strategy misses. A
// miss is never an error: the rest of the pipeline keeps rendering.
var placeholderProduct = Product{
	ID:       placeholderID,
	Name:     "Produit recommandé",
	Brand:    "Sélection Visage",
	Category: "soin",
	Currency: "EUR",
	Benefits: []string{"Adapté à votre profil de peau"},
}

var idPattern = regexp.MustCompile(`[A-Za-z0-9]{10}`)

// patternRule resolves loose identifiers through brand, category and
// ingredient keywords. All identifier keywords must match, then the first
// catalog product satisfying the product predicate wins.
type patternRule struct {
	identifierKeywords []string
	brand              string
	ingredient         string
	category           string
}

var patternRules = []patternRule{
	{identifierKeywords: []string{"rétinol"}, ingredient: "rétinol"},
	{identifierKeywords: []string{"retinol"}, ingredient: "retinol"},
	{identifierKeywords: []string{"niacinamide"}, ingredient: "niacinamide"},
	{identifierKeywords: []string{"vitamine", "c"}, ingredient: "vitamine c"},
	{identifierKeywords: []string{"acide", "hyaluronique"}, ingredient: "acide hyaluronique"},
	{identifierKeywords: []string{"spf"}, category: "protection"},
	{identifierKeywords: []string{"solaire"}, category: "protection"},
	{identifierKeywords: []string{"nettoyant"}, category: "nettoyage"},
}

// Cache holds the catalog snapshot. It is owned by the resolver instance,
// loaded at most once, and only invalidated by process restart.
type Cache struct {
	once     sync.Once
	products []Product
	byID     map[string]Product
	loadErr  error
}

// Resolver maps loose product identifiers onto concrete catalog records.
type Resolver struct {
	repo   Repository
	cache  *Cache
	logger *slog.Logger
}

// NewResolver constructs a resolver with its own cache.
func NewResolver(repo Repository, logger *slog.Logger) *Resolver {
	return &Resolver{
		repo:   repo,
		cache:  &Cache{},
		logger: logger.With("component", "catalog.resolver"),
	}
}

func (r *Resolver) load(ctx context.Context) ([]Product, map[string]Product) {
	r.cache.once.Do(func() {
		products, err := r.repo.ListAll(ctx)
		if err != nil {
			r.cache.loadErr = err
			r.logger.Error("catalog load failed, resolving to placeholders", "error", err)
			return
		}
		index := make(map[string]Product, len(products))
		for _, p := range products {
			index[strings.ToUpper(p.ID)] = p
		}
		r.cache.products = products
		r.cache.byID = index
		r.logger.Info("catalog loaded", "products", len(products))
	})
	return r.cache.products, r.cache.byID
}

// Resolve maps an identifier (catalog ID, product mention, or free text) to
// a product record. Strategies run in order: embedded 10-character ID,
// keyword pattern rules, fuzzy name containment, then the generic
// placeholder. It never fails and never returns a zero Product.
func (r *Resolver) Resolve(ctx context.Context, identifier, fallbackName string) Product {
	products, byID := r.load(ctx)
	if len(products) == 0 {
		return placeholderFor(fallbackName, identifier)
	}

	// (a) exact ID embedded anywhere in the identifier string
	for _, candidate := range idPattern.FindAllString(identifier, -1) {
		if product, ok := byID[strings.ToUpper(candidate)]; ok {
			return product
		}
	}

	normalized := normalize(identifier + " " + fallbackName)

	// (b) brand/category/ingredient pattern rules
	for _, rule := range patternRules {
		if !containsAll(normalized, rule.identifierKeywords) {
			continue
		}
		if product, ok := firstMatch(products, rule); ok {
			return product
		}
	}

	// (c) fuzzy name containment, brand-qualified when possible
	if normalized != "" {
		if product, ok := fuzzyNameMatch(products, normalized); ok {
			return product
		}
	}

	return placeholderFor(fallbackName, identifier)
}

func placeholderFor(fallbackName, identifier string) Product {
	product := placeholderProduct
	if name := strings.TrimSpace(fallbackName); name != "" {
		product.Name = name
	} else if id := strings.TrimSpace(identifier); id != "" {
		product.Name = id
	}
	return product
}

func firstMatch(products []Product, rule patternRule) (Product, bool) {
	for _, product := range products {
		if rule.brand != "" && !strings.Contains(normalize(product.Brand), rule.brand) {
			continue
		}
		if rule.category != "" && !strings.Contains(normalize(product.Category), rule.category) {
			continue
		}
		if rule.ingredient != "" && !hasIngredient(product, rule.ingredient) {
			continue
		}
		return product, true
	}
	return Product{}, false
}

func hasIngredient(product Product, ingredient string) bool {
	for _, candidate := range product.ActiveIngredients {
		if strings.Contains(normalize(candidate), ingredient) {
			return true
		}
	}
	return false
}

func fuzzyNameMatch(products []Product, normalized string) (Product, bool) {
	var (
		best    Product
		bestLen int
	)
	for _, product := range products {
		name := normalize(product.Name)
		if name == "" {
			continue
		}
		if strings.Contains(normalized, name) || strings.Contains(name, normalized) {
			score := len(name)
			if brand := normalize(product.Brand); brand != "" && strings.Contains(normalized, brand) {
				score += len(brand)
			}
			if score > bestLen {
				best = product
				bestLen = score
			}
		}
	}
	return best, bestLen > 0
}

func normalize(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(raw)), " ")
}

func containsAll(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if !strings.Contains(text, keyword) {
			return false
		}
	}
	return true
}
