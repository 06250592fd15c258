package models

// ProductImage is one persisted position of a product's image list.
type ProductImage struct {
	ProductKey string `json:"productKey"`
	Position   int    `json:"position"`
	ImageURL   string `json:"imageUrl"`
	Category   string `json:"category"`
}

// DriveImage represents an image file listed from a Google Drive folder
type DriveImage struct {
	DriveFileID string `json:"driveFileId"`
	FileName    string `json:"fileName"`
	MimeType    string `json:"mimeType"`
	ImageURL    string `json:"imageUrl"`
}
