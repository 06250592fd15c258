package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"product-image-studio/logging"
	"product-image-studio/models"
	"product-image-studio/utils"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// maxDriveDownloadBytes bounds a single image download.
const maxDriveDownloadBytes = 50 << 20

var driveImageMimeTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
	"image/webp": true,
	"image/heic": true,
	"image/heif": true,
}

// DriveService handles Google Drive API operations
type DriveService struct {
	client *drive.Service
}

// Ensure DriveService implements DriveServiceInterface
var _ DriveServiceInterface = (*DriveService)(nil)

// NewDriveService creates a new DriveService instance.
// credentialsJSON takes precedence over credentialsPath, the path to a Service
// Account JSON file.
func NewDriveService(ctx context.Context, credentialsPath, credentialsJSON string) (*DriveService, error) {
	var opt option.ClientOption
	switch {
	case credentialsJSON != "":
		opt = option.WithCredentialsJSON([]byte(credentialsJSON))
	case credentialsPath != "":
		opt = option.WithCredentialsFile(credentialsPath)
	default:
		return nil, fmt.Errorf("GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_APPLICATION_CREDENTIALS_JSON must be set")
	}

	driveService, err := drive.NewService(ctx, opt, option.WithScopes(drive.DriveReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &DriveService{
		client: driveService,
	}, nil
}

// ListFolderImages lists all image files in a Google Drive folder, ordered by name
func (ds *DriveService) ListFolderImages(ctx context.Context, folderID string) ([]models.DriveImage, error) {
	query := fmt.Sprintf("'%s' in parents and trashed=false", folderID)

	var allFiles []*drive.File
	pageToken := ""
	for {
		call := ds.client.Files.List().
			Context(ctx).
			Q(query).
			OrderBy("name").
			Fields("nextPageToken, files(id, name, mimeType)")

		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		r, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list files: %w", err)
		}

		allFiles = append(allFiles, r.Files...)
		pageToken = r.NextPageToken

		if pageToken == "" {
			break
		}
	}

	var images []models.DriveImage
	for _, file := range allFiles {
		if !driveImageMimeTypes[strings.ToLower(file.MimeType)] {
			logging.Default().Debugf("⏭️  Skipping %s (mime type %s)", file.Name, file.MimeType)
			continue
		}
		images = append(images, models.DriveImage{
			DriveFileID: file.Id,
			FileName:    file.Name,
			MimeType:    file.MimeType,
			ImageURL:    utils.DriveImageURL(file.Id),
		})
	}

	return images, nil
}

// DownloadImage downloads the content of a Drive file
func (ds *DriveService) DownloadImage(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := ds.client.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("failed to download drive file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDriveDownloadBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read drive file %s: %w", fileID, err)
	}
	return data, nil
}
