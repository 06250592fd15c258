package service

import (
	"context"

	"product-image-studio/models"
)

// ImportServiceInterface defines the contract for Drive folder imports
type ImportServiceInterface interface {
	// ImportFolder appends the images of a Drive folder to a product under one category.
	// Images already in the product are skipped.
	ImportFolder(ctx context.Context, productKey, folderID, category string) (*models.ImportResult, error)
}
