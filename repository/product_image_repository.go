package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"product-image-studio/db"
	"product-image-studio/logging"
	"product-image-studio/models"
)

// ProductImageRepository handles database operations for product image lists
// Implements ProductImageRepositoryInterface
type ProductImageRepository struct {
	conn *sql.DB
}

// NewProductImageRepository creates a new ProductImageRepository.
// A nil conn uses the global db.DB.
func NewProductImageRepository(conn *sql.DB) *ProductImageRepository {
	return &ProductImageRepository{conn: conn}
}

// Ensure ProductImageRepository implements ProductImageRepositoryInterface
var _ ProductImageRepositoryInterface = (*ProductImageRepository)(nil)

func (r *ProductImageRepository) db() *sql.DB {
	if r.conn != nil {
		return r.conn
	}
	return db.DB
}

// Exists checks if a product has been created
func (r *ProductImageRepository) Exists(ctx context.Context, productKey string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM products WHERE product_key = $1)`
	if err := r.db().QueryRowContext(ctx, query, productKey).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check product existence: %w", err)
	}
	return exists, nil
}

// Load returns the ordered image list of a product. Duplicates are kept.
func (r *ProductImageRepository) Load(ctx context.Context, productKey string) ([]models.ProductImage, error) {
	query := `
		SELECT product_key, position, image_url, category
		FROM product_images
		WHERE product_key = $1
		ORDER BY position ASC
	`
	rows, err := r.db().QueryContext(ctx, query, productKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query product images: %w", err)
	}
	defer rows.Close()

	images := []models.ProductImage{}
	for rows.Next() {
		var img models.ProductImage
		if err := rows.Scan(&img.ProductKey, &img.Position, &img.ImageURL, &img.Category); err != nil {
			return nil, fmt.Errorf("failed to scan product image: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product images: %w", err)
	}
	return images, nil
}

// Replace overwrites the image list of a product, creating the product if needed
func (r *ProductImageRepository) Replace(ctx context.Context, productKey string, images, categories []string) error {
	if len(images) != len(categories) {
		return fmt.Errorf("images and categories differ in length: %d != %d", len(images), len(categories))
	}

	tx, err := r.db().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO products (product_key, created_at) VALUES ($1, $2) ON CONFLICT (product_key) DO NOTHING`,
		productKey, time.Now().UnixMilli(),
	); err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM product_images WHERE product_key = $1`, productKey); err != nil {
		return fmt.Errorf("failed to clear product images: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO product_images (product_key, position, image_url, category) VALUES ($1, $2, $3, $4)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range images {
		if _, err := stmt.ExecContext(ctx, productKey, i, images[i], categories[i]); err != nil {
			return fmt.Errorf("failed to insert image %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	logging.Default().Debugf("💾 Saved %d images for product %s", len(images), productKey)
	return nil
}

// ListProducts returns every product key in alphabetical order
func (r *ProductImageRepository) ListProducts(ctx context.Context) ([]string, error) {
	rows, err := r.db().QueryContext(ctx, `SELECT product_key FROM products ORDER BY product_key ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan product key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
