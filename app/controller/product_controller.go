package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"product-image-studio/models"
	"product-image-studio/repository"
	"product-image-studio/service"
)

// ProductController handles HTTP requests for stored products
type ProductController struct {
	importService service.ImportServiceInterface
	products      repository.ProductImageRepositoryInterface
	transfers     repository.TransferLogRepositoryInterface
}

// NewProductController creates a new ProductController. importService is nil
// when no Drive credentials are configured.
func NewProductController(importService service.ImportServiceInterface, products repository.ProductImageRepositoryInterface, transfers repository.TransferLogRepositoryInterface) *ProductController {
	return &ProductController{
		importService: importService,
		products:      products,
		transfers:     transfers,
	}
}

// Import handles POST /admin/products/import
// Appends the images of a Drive folder to a product
func (c *ProductController) Import(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if c.importService == nil {
		http.Error(w, "Drive import is not configured", http.StatusServiceUnavailable)
		return
	}

	var req models.ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.ProductKey == "" || req.FolderID == "" {
		http.Error(w, "productKey and folderId are required", http.StatusBadRequest)
		return
	}

	result, err := c.importService.ImportFolder(r.Context(), req.ProductKey, req.FolderID, req.Category)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to import folder: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, result)
}

// ListProducts handles GET /admin/products
func (c *ProductController) ListProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	keys, err := c.products.ListProducts(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to list products: %v", err), http.StatusInternalServerError)
		return
	}
	if keys == nil {
		keys = []string{}
	}
	writeJSON(w, map[string]interface{}{"products": keys})
}

// GetTransfers handles GET /admin/products/{key}/transfers?limit=
func (c *ProductController) GetTransfers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/admin/products/")
	key := strings.TrimSuffix(path, "/transfers")
	if key == "" || strings.Contains(key, "/") {
		http.Error(w, "product key is required", http.StatusBadRequest)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	entries, err := c.transfers.ListByProduct(r.Context(), key, limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to list transfers: %v", err), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []models.TransferLog{}
	}
	writeJSON(w, entries)
}
