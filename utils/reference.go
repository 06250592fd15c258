package utils

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
)

// ReferenceKind identifies where an image reference is fetched from.
type ReferenceKind int

const (
	KindHTTP ReferenceKind = iota
	KindDrive
	KindS3
	KindAzureBlob
)

func (k ReferenceKind) String() string {
	switch k {
	case KindDrive:
		return "drive"
	case KindS3:
		return "s3"
	case KindAzureBlob:
		return "azure"
	default:
		return "http"
	}
}

// Reference is a parsed image reference.
type Reference struct {
	Raw  string
	Kind ReferenceKind
	// DriveFileID is set for Drive references.
	DriveFileID string
	// Bucket and Key are set for S3 references.
	Bucket string
	Key    string
	// ServiceURL, Container and Blob are set for Azure blob references.
	ServiceURL string
	Container  string
	Blob       string
}

var (
	driveFilePathRegex = regexp.MustCompile(`/file/d/([A-Za-z0-9_-]+)`)
	driveIDRegex       = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	heicExtRegex       = regexp.MustCompile(`(?i)\.(heic|heif)$`)
)

// DriveImageURL builds the public URL stored for a Drive file.
func DriveImageURL(fileID string) string {
	return fmt.Sprintf("https://drive.google.com/uc?id=%s", fileID)
}

// ParseReference classifies raw. Supported forms:
// s3://bucket/key, https://<account>.blob.core.windows.net/<container>/<blob>,
// Drive links (uc?id=, open?id=, /file/d/<id>/) and any other http(s) URL.
func ParseReference(raw string) (*Reference, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("empty image reference")
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid image reference %q: %w", raw, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "s3":
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return nil, fmt.Errorf("invalid s3 reference %q: expected s3://bucket/key", raw)
		}
		return &Reference{Raw: trimmed, Kind: KindS3, Bucket: u.Host, Key: key}, nil
	case "http", "https":
	default:
		return nil, fmt.Errorf("unsupported image reference scheme %q in %q", u.Scheme, raw)
	}

	host := strings.ToLower(u.Hostname())
	if id, ok := DriveFileID(u); ok {
		return &Reference{Raw: trimmed, Kind: KindDrive, DriveFileID: id}, nil
	}

	if strings.HasSuffix(host, ".blob.core.windows.net") {
		parts := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid azure blob reference %q: expected /container/blob", raw)
		}
		service := url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/", RawQuery: u.RawQuery}
		return &Reference{
			Raw:        trimmed,
			Kind:       KindAzureBlob,
			ServiceURL: service.String(),
			Container:  parts[0],
			Blob:       parts[1],
		}, nil
	}

	return &Reference{Raw: trimmed, Kind: KindHTTP}, nil
}

// DriveFileID extracts the file id of a Drive link.
func DriveFileID(u *url.URL) (string, bool) {
	host := strings.ToLower(u.Hostname())
	if host != "drive.google.com" && host != "docs.google.com" {
		return "", false
	}
	if matches := driveFilePathRegex.FindStringSubmatch(u.Path); len(matches) == 2 {
		return matches[1], true
	}
	if id := u.Query().Get("id"); id != "" && driveIDRegex.MatchString(id) {
		return id, true
	}
	return "", false
}

// IsHEIC reports whether the reference names a HEIC/HEIF image.
func IsHEIC(raw string) bool {
	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.Path
	}
	return heicExtRegex.MatchString(path.Base(p))
}
