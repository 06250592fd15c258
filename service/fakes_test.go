package service

import (
	"context"
	"errors"

	"product-image-studio/models"
)

type fakeDriveService struct {
	images  []models.DriveImage
	files   map[string][]byte
	listErr error
}

func (d *fakeDriveService) ListFolderImages(context.Context, string) ([]models.DriveImage, error) {
	if d.listErr != nil {
		return nil, d.listErr
	}
	return d.images, nil
}

func (d *fakeDriveService) DownloadImage(_ context.Context, fileID string) ([]byte, error) {
	data, ok := d.files[fileID]
	if !ok {
		return nil, errors.New("file not found")
	}
	return data, nil
}

type memoryProductRepo struct {
	products map[string][]models.ProductImage
	err      error
}

func newMemoryProductRepo() *memoryProductRepo {
	return &memoryProductRepo{products: make(map[string][]models.ProductImage)}
}

func (r *memoryProductRepo) Exists(_ context.Context, key string) (bool, error) {
	_, ok := r.products[key]
	return ok, nil
}

func (r *memoryProductRepo) Load(_ context.Context, key string) ([]models.ProductImage, error) {
	return append([]models.ProductImage(nil), r.products[key]...), nil
}

func (r *memoryProductRepo) Replace(_ context.Context, key string, images, categories []string) error {
	if r.err != nil {
		return r.err
	}
	rows := make([]models.ProductImage, len(images))
	for i := range images {
		rows[i] = models.ProductImage{ProductKey: key, Position: i, ImageURL: images[i], Category: categories[i]}
	}
	r.products[key] = rows
	return nil
}

func (r *memoryProductRepo) ListProducts(context.Context) ([]string, error) {
	var keys []string
	for k := range r.products {
		keys = append(keys, k)
	}
	return keys, nil
}

func (r *memoryProductRepo) seed(key string, pairs ...string) {
	var images, cats []string
	for i := 0; i+1 < len(pairs); i += 2 {
		images = append(images, pairs[i])
		cats = append(cats, pairs[i+1])
	}
	_ = r.Replace(context.Background(), key, images, cats)
}

type memoryTransferLog struct {
	entries []models.TransferLog
	err     error
}

func (l *memoryTransferLog) Record(_ context.Context, entry *models.TransferLog) error {
	if l.err != nil {
		return l.err
	}
	l.entries = append(l.entries, *entry)
	return nil
}

func (l *memoryTransferLog) ListByProduct(_ context.Context, key string, _ int) ([]models.TransferLog, error) {
	var out []models.TransferLog
	for _, e := range l.entries {
		if e.TargetProduct == key {
			out = append(out, e)
		}
	}
	return out, nil
}
