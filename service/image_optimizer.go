package service

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

const (
	SizeThumb  = "thumb"
	SizeMedium = "medium"

	// Quality settings
	qualityThumb  = 60
	qualityMedium = 75
	// Size settings (max dimension)
	maxSizeThumb  = 300
	maxSizeMedium = 800
)

// DecodeImage decodes PNG, JPEG, GIF or WebP bytes, applying EXIF orientation.
// It returns the image and the detected format.
func DecodeImage(imageData []byte) (image.Image, string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(imageData))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	img, err := imaging.Decode(bytes.NewReader(imageData), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// OptimizeImage resizes img to fit the given size and encodes it as JPEG
// size: "thumb" or "medium"; anything else is treated as medium
func OptimizeImage(img image.Image, size string) ([]byte, error) {
	var maxDim int
	var quality int

	switch size {
	case SizeThumb:
		maxDim = maxSizeThumb
		quality = qualityThumb
	default:
		maxDim = maxSizeMedium
		quality = qualityMedium
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxDim || bounds.Dy() > maxDim {
		img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode to JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// isHEICData reports whether data starts with an ISO-BMFF ftyp box of a HEIC/HEIF brand.
func isHEICData(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heix", "hevc", "hevx", "heim", "heis", "mif1", "msf1":
		return true
	}
	return false
}
