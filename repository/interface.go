package repository

import (
	"context"

	"product-image-studio/models"
)

// ProductImageRepositoryInterface defines the contract for product image list operations
type ProductImageRepositoryInterface interface {
	Exists(ctx context.Context, productKey string) (bool, error)
	Load(ctx context.Context, productKey string) ([]models.ProductImage, error)
	// Replace overwrites the whole ordered list of a product in one transaction.
	Replace(ctx context.Context, productKey string, images, categories []string) error
	ListProducts(ctx context.Context) ([]string, error)
}

// TransferLogRepositoryInterface defines the contract for the transfer log
type TransferLogRepositoryInterface interface {
	Record(ctx context.Context, entry *models.TransferLog) error
	ListByProduct(ctx context.Context, productKey string, limit int) ([]models.TransferLog, error)
}
