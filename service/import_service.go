package service

import (
	"context"
	"fmt"

	"product-image-studio/logging"
	"product-image-studio/models"
	"product-image-studio/repository"
	"product-image-studio/utils"
)

// ImportService handles imports from Google Drive into product image lists
// Implements ImportServiceInterface
type ImportService struct {
	driveService    DriveServiceInterface
	repository      repository.ProductImageRepositoryInterface
	defaultCategory string
	log             *logging.Logger
}

// NewImportService creates a new ImportService
func NewImportService(driveService DriveServiceInterface, repo repository.ProductImageRepositoryInterface, defaultCategory string, log *logging.Logger) *ImportService {
	if log == nil {
		log = logging.Nop()
	}
	return &ImportService{
		driveService:    driveService,
		repository:      repo,
		defaultCategory: defaultCategory,
		log:             log,
	}
}

// Ensure ImportService implements ImportServiceInterface
var _ ImportServiceInterface = (*ImportService)(nil)

// ImportFolder imports a Drive folder into a product and returns stats.
// inserted = images appended, skipped = already in the product (by image URL), total = images seen in Drive.
func (s *ImportService) ImportFolder(ctx context.Context, productKey, folderID, category string) (*models.ImportResult, error) {
	if productKey == "" || folderID == "" {
		return nil, fmt.Errorf("productKey and folderId are required")
	}
	category = utils.NormalizeCategory(category)
	if category == "" {
		category = s.defaultCategory
	}

	s.log.Infof("🔄 Starting import of folder %s into product %s (category %s)", folderID, productKey, category)

	driveImages, err := s.driveService.ListFolderImages(ctx, folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list images from Drive: %w", err)
	}
	s.log.Infof("📦 Processing %d images from Google Drive", len(driveImages))

	existing, err := s.repository.Load(ctx, productKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load product %s: %w", productKey, err)
	}
	exists, err := s.repository.Exists(ctx, productKey)
	if err != nil {
		return nil, err
	}

	images := make([]string, 0, len(existing)+len(driveImages))
	categories := make([]string, 0, len(existing)+len(driveImages))
	known := make(map[string]bool, len(existing))
	for _, row := range existing {
		images = append(images, row.ImageURL)
		categories = append(categories, row.Category)
		known[row.ImageURL] = true
	}

	result := &models.ImportResult{ProductKey: productKey, Total: len(driveImages), Images: driveImages}
	for _, img := range driveImages {
		if known[img.ImageURL] {
			s.log.Debugf("⏭️  Skipping drive_file_id: %s (already in product)", img.DriveFileID)
			result.Skipped++
			continue
		}
		known[img.ImageURL] = true
		images = append(images, img.ImageURL)
		categories = append(categories, category)
		result.Inserted++
	}

	if result.Inserted == 0 && exists {
		s.log.Infof("⏭️  Nothing new to import into %s", productKey)
		return result, nil
	}

	if err := s.repository.Replace(ctx, productKey, images, categories); err != nil {
		return nil, fmt.Errorf("failed to save product %s: %w", productKey, err)
	}

	s.log.Infof("🎉 Import completed: %d inserted, %d skipped, %d total processed", result.Inserted, result.Skipped, result.Total)
	return result, nil
}
