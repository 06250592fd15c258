package models

import "time"

// LoadProductRequest represents the request body for POST /admin/workspace/{role}
type LoadProductRequest struct {
	ProductKey string   `json:"productKey"`
	Mode       string   `json:"mode,omitempty"`
	Columns    []string `json:"columns,omitempty"`
}

// HideRequest represents the request body for POST /admin/workspace/{role}/hide
type HideRequest struct {
	Key string `json:"key"`
}

// TransferRequest represents the request body for POST /admin/workspace/transfer
type TransferRequest struct {
	Selected []string `json:"selected"`
	Mode     string   `json:"mode"`
	Position int      `json:"position,omitempty"`
	Category string   `json:"category,omitempty"`
}

// TransferResponse is returned after a persisted transfer
type TransferResponse struct {
	NewImages     []string `json:"newImages"`
	NewCategories []string `json:"newCategories"`
	Category      string   `json:"category"`
}

// UnsavedResponse reports the editing session state
type UnsavedResponse struct {
	Unsaved   bool       `json:"unsaved"`
	Dirty     []string   `json:"dirty,omitempty"`
	LastSaved *time.Time `json:"lastSaved,omitempty"`
}

// ImportRequest represents the request body for POST /admin/products/import
type ImportRequest struct {
	ProductKey string `json:"productKey"`
	FolderID   string `json:"folderId"`
	Category   string `json:"category,omitempty"`
}

// ImportResult reports the outcome of a Drive folder import.
// Inserted = new images appended, skipped = already in the product, total = images seen in Drive.
type ImportResult struct {
	ProductKey string       `json:"productKey"`
	Inserted   int          `json:"inserted"`
	Skipped    int          `json:"skipped"`
	Total      int          `json:"total"`
	Images     []DriveImage `json:"images"`
}

// ExportPayload is the row payload consumed by the spreadsheet generator
type ExportPayload struct {
	Rows [][]string `json:"rows"`
}
