package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"product-image-studio/db"
	"product-image-studio/models"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.Open("sqlite", filepath.Join(t.TempDir(), "studio.db"))
	assert.NilError(t, err)
	t.Cleanup(func() { conn.Close() })
	assert.NilError(t, db.Migrate(context.Background(), conn))
	return conn
}

func TestProductImageRepository_ReplaceAndLoad(t *testing.T) {
	repo := NewProductImageRepository(openTestDB(t))
	ctx := context.Background()

	exists, err := repo.Exists(ctx, "sku-1")
	assert.NilError(t, err)
	assert.Assert(t, !exists)

	err = repo.Replace(ctx, "sku-1", []string{"a", "b", "a"}, []string{"main", "side", "side"})
	assert.NilError(t, err)

	images, err := repo.Load(ctx, "sku-1")
	assert.NilError(t, err)
	assert.DeepEqual(t, images, []models.ProductImage{
		{ProductKey: "sku-1", Position: 0, ImageURL: "a", Category: "main"},
		{ProductKey: "sku-1", Position: 1, ImageURL: "b", Category: "side"},
		{ProductKey: "sku-1", Position: 2, ImageURL: "a", Category: "side"},
	})

	err = repo.Replace(ctx, "sku-1", []string{"z"}, []string{"main"})
	assert.NilError(t, err)
	images, err = repo.Load(ctx, "sku-1")
	assert.NilError(t, err)
	assert.Equal(t, len(images), 1)
	assert.Equal(t, images[0].ImageURL, "z")

	exists, err = repo.Exists(ctx, "sku-1")
	assert.NilError(t, err)
	assert.Assert(t, exists)
}

func TestProductImageRepository_EmptyListKeepsProduct(t *testing.T) {
	repo := NewProductImageRepository(openTestDB(t))
	ctx := context.Background()

	assert.NilError(t, repo.Replace(ctx, "sku-2", nil, nil))
	assert.NilError(t, repo.Replace(ctx, "sku-1", []string{"a"}, []string{"main"}))

	images, err := repo.Load(ctx, "sku-2")
	assert.NilError(t, err)
	assert.Equal(t, len(images), 0)

	keys, err := repo.ListProducts(ctx)
	assert.NilError(t, err)
	assert.DeepEqual(t, keys, []string{"sku-1", "sku-2"})
}

func TestProductImageRepository_LengthMismatch(t *testing.T) {
	repo := NewProductImageRepository(openTestDB(t))

	err := repo.Replace(context.Background(), "sku-1", []string{"a"}, nil)
	assert.ErrorContains(t, err, "differ in length")
}

func TestTransferLogRepository(t *testing.T) {
	repo := NewTransferLogRepository(openTestDB(t))
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	first := &models.TransferLog{TargetProduct: "sku-2", Mode: "add_to_end", SelectedCount: 1, ResultCount: 3, CreatedAt: base}
	second := &models.TransferLog{SourceProduct: "sku-1", TargetProduct: "sku-2", Mode: "replace_all", Category: "main", SelectedCount: 2, ResultCount: 2, CreatedAt: base.Add(time.Minute)}
	assert.NilError(t, repo.Record(ctx, first))
	assert.NilError(t, repo.Record(ctx, second))
	assert.NilError(t, repo.Record(ctx, &models.TransferLog{TargetProduct: "other", Mode: "add_to_end"}))
	assert.Assert(t, first.ID != "" && first.ID != second.ID)

	entries, err := repo.ListByProduct(ctx, "sku-2", 10)
	assert.NilError(t, err)
	assert.Equal(t, len(entries), 2)
	assert.Equal(t, entries[0].ID, second.ID)
	assert.Equal(t, entries[0].SourceProduct, "sku-1")
	assert.Assert(t, entries[0].CreatedAt.Equal(second.CreatedAt))
	assert.Equal(t, entries[1].Mode, "add_to_end")
}
