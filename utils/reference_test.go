package utils

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestParseReference(t *testing.T) {
	tests := []struct {
		raw  string
		kind ReferenceKind
		want Reference
	}{
		{
			raw:  "https://drive.google.com/uc?id=1AbC_d-9",
			kind: KindDrive,
			want: Reference{DriveFileID: "1AbC_d-9"},
		},
		{
			raw:  "https://drive.google.com/file/d/XYZ123/view?usp=sharing",
			kind: KindDrive,
			want: Reference{DriveFileID: "XYZ123"},
		},
		{
			raw:  "s3://product-media/sku-1/main.jpg",
			kind: KindS3,
			want: Reference{Bucket: "product-media", Key: "sku-1/main.jpg"},
		},
		{
			raw:  "https://studio.blob.core.windows.net/images/sku-1/side.png?sv=2024&sig=x",
			kind: KindAzureBlob,
			want: Reference{ServiceURL: "https://studio.blob.core.windows.net/?sv=2024&sig=x", Container: "images", Blob: "sku-1/side.png"},
		},
		{
			raw:  "https://cdn.example.com/a.webp",
			kind: KindHTTP,
		},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseReference(tt.raw)
			assert.NilError(t, err)
			assert.Equal(t, got.Kind, tt.kind)
			assert.Equal(t, got.Raw, tt.raw)
			assert.Equal(t, got.DriveFileID, tt.want.DriveFileID)
			assert.Equal(t, got.Bucket, tt.want.Bucket)
			assert.Equal(t, got.Key, tt.want.Key)
			assert.Equal(t, got.ServiceURL, tt.want.ServiceURL)
			assert.Equal(t, got.Container, tt.want.Container)
			assert.Equal(t, got.Blob, tt.want.Blob)
		})
	}
}

func TestParseReference_Invalid(t *testing.T) {
	for _, raw := range []string{"", "   ", "ftp://host/a.png", "s3://bucket-only", "https://acct.blob.core.windows.net/container"} {
		_, err := ParseReference(raw)
		assert.Assert(t, err != nil, raw)
	}
}

func TestIsHEIC(t *testing.T) {
	assert.Assert(t, IsHEIC("https://cdn.example.com/photos/IMG_0001.HEIC?x=1"))
	assert.Assert(t, IsHEIC("s3://bucket/a.heif"))
	assert.Assert(t, !IsHEIC("https://cdn.example.com/heic/a.jpg"))
}

func TestDriveImageURL(t *testing.T) {
	ref, err := ParseReference(DriveImageURL("abc"))
	assert.NilError(t, err)
	assert.Equal(t, ref.DriveFileID, "abc")
}
