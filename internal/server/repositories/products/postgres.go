// Package products provides the PostgreSQL-backed product catalog store.
package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/anypart/marketplace/internal/common"
	"github.com/anypart/marketplace/internal/dbx"
	"github.com/anypart/marketplace/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const productColumns = `p.id, p.seller_id, p.name, p.description, p.price_cents, p.brand, p.model, p.year,
	p.condition, p.tag_1, p.tag_2, p.tag_3, p.image_url_1, p.image_url_2, p.image_url_3, p.is_featured, p.created_at`

// nonEmpty collapses the fixed tag/image columns into a slice without blanks.
func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func pad3(values []string) [3]string {
	var out [3]string
	for i := 0; i < len(values) && i < 3; i++ {
		out[i] = values[i]
	}
	return out
}

func scanProduct(scan func(dest ...any) error) (*models.Product, error) {
	p := &models.Product{}
	var tag1, tag2, tag3, img1, img2, img3 string
	err := scan(&p.ID, &p.SellerID, &p.Name, &p.Description, &p.PriceCents, &p.Brand, &p.Model, &p.Year,
		&p.Condition, &tag1, &tag2, &tag3, &img1, &img2, &img3, &p.IsFeatured, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.Tags = nonEmpty(tag1, tag2, tag3)
	p.ImageURLs = nonEmpty(img1, img2, img3)
	return p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	query := `
		INSERT INTO products (seller_id, name, description, price_cents, brand, model, year, condition,
			tag_1, tag_2, tag_3, image_url_1, image_url_2, image_url_3, is_featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at
	`
	tags := pad3(product.Tags)
	images := pad3(product.ImageURLs)
	err := r.db.QueryRowContext(ctx, query,
		product.SellerID, product.Name, product.Description, product.PriceCents,
		product.Brand, product.Model, product.Year, product.Condition,
		tags[0], tags[1], tags[2], images[0], images[1], images[2], product.IsFeatured).
		Scan(&product.ID, &product.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return product, nil
}

func (r *PostgresRepository) Update(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET name = $1, description = $2, price_cents = $3, brand = $4, model = $5, year = $6, condition = $7,
			tag_1 = $8, tag_2 = $9, tag_3 = $10, image_url_1 = $11, image_url_2 = $12, image_url_3 = $13, is_featured = $14
		WHERE id = $15 AND seller_id = $16
	`
	tags := pad3(product.Tags)
	images := pad3(product.ImageURLs)
	res, err := r.db.ExecContext(ctx, query,
		product.Name, product.Description, product.PriceCents,
		product.Brand, product.Model, product.Year, product.Condition,
		tags[0], tags[1], tags[2], images[0], images[1], images[2], product.IsFeatured,
		product.ID, product.SellerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) GetView(ctx context.Context, productID string) (*models.ProductView, error) {
	query := `
		SELECT ` + productColumns + `,
			s.id, s.name, s.city, s.logo_url, s.tel1, s.tel2, s.address
		FROM products p
		JOIN sellers s ON s.id = p.seller_id
		WHERE p.id = $1
	`
	view := &models.ProductView{}
	var tag1, tag2, tag3, img1, img2, img3 string
	var tel1, tel2, address string
	err := r.db.QueryRowContext(ctx, query, productID).Scan(
		&view.ID, &view.SellerID, &view.Name, &view.Description, &view.PriceCents,
		&view.Brand, &view.Model, &view.Year, &view.Condition,
		&tag1, &tag2, &tag3, &img1, &img2, &img3, &view.IsFeatured, &view.CreatedAt,
		&view.Seller.SellerID, &view.Seller.Name, &view.Seller.City, &view.Seller.LogoURL,
		&tel1, &tel2, &address)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	view.Tags = nonEmpty(tag1, tag2, tag3)
	view.ImageURLs = nonEmpty(img1, img2, img3)
	view.Seller.Tel1 = &tel1
	view.Seller.Tel2 = &tel2
	view.Seller.Address = &address
	return view, nil
}

func (r *PostgresRepository) queryProducts(ctx context.Context, query string, args ...any) ([]*models.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) ListFeatured(ctx context.Context, limit int) ([]*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		WHERE p.is_featured
		ORDER BY p.created_at DESC
		LIMIT $1
	`
	return r.queryProducts(ctx, query, limit)
}

func (r *PostgresRepository) ListBySeller(ctx context.Context, sellerID string) ([]*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		WHERE p.seller_id = $1
		ORDER BY p.created_at DESC
	`
	return r.queryProducts(ctx, query, sellerID)
}

func (r *PostgresRepository) ListUnlockedByBuyer(ctx context.Context, buyerID string) ([]*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM grants g
		JOIN products p ON p.id = g.product_id
		WHERE g.buyer_id = $1
		ORDER BY g.created_at DESC
	`
	return r.queryProducts(ctx, query, buyerID)
}
