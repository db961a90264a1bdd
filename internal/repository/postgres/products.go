package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/fitkart/storefront-api/internal/domain"
	"github.com/fitkart/storefront-api/internal/repository"
	"github.com/fitkart/storefront-api/pkg/errors"
)

type productRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *sql.DB, logger *zap.Logger) repository.ProductRepository {
	return &productRepository{
		db:     db,
		logger: logger,
	}
}

const productColumns = `
	id, slug, name, brand, category, price, image, stock, is_active, created_at, updated_at
`

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	query := `
		INSERT INTO products (id, slug, name, brand, category, price, image, stock, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		product.ID, product.Slug, product.Name, product.Brand, product.Category,
		product.Price, product.Image, product.Stock, product.IsActive,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to insert product", zap.Error(err))
		return err
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return r.getOne(ctx, query, id.String(), id)
}

func (r *productRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE slug = $1`
	return r.getOne(ctx, query, slug, slug)
}

func (r *productRepository) getOne(ctx context.Context, query, label string, arg interface{}) (*domain.Product, error) {
	product, err := scanProduct(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &errors.ErrNotFound{Resource: "product", ID: label}
		}
		r.logger.Error("Failed to query product", zap.Error(err))
		return nil, err
	}
	return product, nil
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var product domain.Product
	var image sql.NullString
	err := row.Scan(
		&product.ID, &product.Slug, &product.Name, &product.Brand, &product.Category,
		&product.Price, &image, &product.Stock, &product.IsActive,
		&product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if image.Valid {
		product.Image = &image.String
	}
	return &product, nil
}

func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Product, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*domain.Product{}, nil
	}

	idStrings := make([]string, len(ids))
	for i, id := range ids {
		idStrings[i] = id.String()
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(idStrings))
	if err != nil {
		r.logger.Error("Failed to query products", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	products := make(map[uuid.UUID]*domain.Product, len(ids))
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products[product.ID] = product
	}
	return products, rows.Err()
}

func (r *productRepository) List(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, int, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	idx := 1

	if filter.ActiveOnly {
		where += " AND is_active = true"
	}
	if filter.Category != "" {
		where += fmt.Sprintf(" AND category = $%d", idx)
		args = append(args, filter.Category)
		idx++
	}
	if filter.Brand != "" {
		where += fmt.Sprintf(" AND brand = $%d", idx)
		args = append(args, filter.Brand)
		idx++
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products "+where, args...).Scan(&total); err != nil {
		r.logger.Error("Failed to count products", zap.Error(err))
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	query := fmt.Sprintf(
		`SELECT %s FROM products %s ORDER BY name LIMIT $%d OFFSET $%d`,
		productColumns, where, idx, idx+1,
	)
	args = append(args, limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query products", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, product)
	}
	return products, total, rows.Err()
}

// DecrementStock applies a conditional decrement: the row only updates when
// enough stock remains, so a lost race shows up as insufficiency instead of
// negative stock.
func (r *productRepository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE products SET stock = stock - $2, updated_at = NOW() WHERE id = $1 AND stock >= $2`,
		id, qty,
	)
	if err != nil {
		r.logger.Error("Failed to decrement stock", zap.Error(err))
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		product, getErr := r.GetByID(ctx, id)
		if getErr != nil {
			return getErr
		}
		return &errors.ErrInsufficientStock{
			ProductID: id.String(),
			Name:      product.Name,
			Required:  qty,
			Available: product.Stock,
		}
	}
	return nil
}

func (r *productRepository) IncrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE products SET stock = stock + $2, updated_at = NOW() WHERE id = $1`,
		id, qty,
	)
	if err != nil {
		r.logger.Error("Failed to increment stock", zap.Error(err))
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &errors.ErrNotFound{Resource: "product", ID: id.String()}
	}
	return nil
}
