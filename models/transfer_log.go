package models

import "time"

// TransferLog records one persisted transfer into a product.
type TransferLog struct {
	ID            string    `json:"id"`
	SourceProduct string    `json:"sourceProduct,omitempty"`
	TargetProduct string    `json:"targetProduct"`
	Mode          string    `json:"mode"`
	Category      string    `json:"category,omitempty"`
	Position      int       `json:"position,omitempty"`
	SelectedCount int       `json:"selectedCount"`
	ResultCount   int       `json:"resultCount"`
	CreatedAt     time.Time `json:"createdAt"`
}
