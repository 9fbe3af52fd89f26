package catalogrepo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eclatderm/visage/internal/domain/catalog"
)

// PostgresRepository implements catalog.Repository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// ListAll fetches the whole catalog. The resolver caches the result, so
// this runs once per process.
func (r *PostgresRepository) ListAll(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, brand, category, price, currency,
		       COALESCE(image_url, ''), COALESCE(affiliate_link, ''),
		       active_ingredients, skin_types, benefits
		FROM products
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.Product
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Brand, &p.Category, &p.Price, &p.Currency,
			&p.ImageURL, &p.AffiliateLink,
			&p.ActiveIngredients, &p.SkinTypes, &p.Benefits,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

var _ catalog.Repository = (*PostgresRepository)(nil)
