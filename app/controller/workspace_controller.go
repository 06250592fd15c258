package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"product-image-studio/collection"
	"product-image-studio/logging"
	"product-image-studio/models"
	"product-image-studio/service"
)

// WorkspaceController handles HTTP requests for the source and target collections
type WorkspaceController struct {
	workspace *service.Workspace
	sheets    *service.SheetService
	log       *logging.Logger
}

// NewWorkspaceController creates a new WorkspaceController
func NewWorkspaceController(workspace *service.Workspace, sheets *service.SheetService, log *logging.Logger) *WorkspaceController {
	if log == nil {
		log = logging.Nop()
	}
	return &WorkspaceController{workspace: workspace, sheets: sheets, log: log}
}

// roleFromPath extracts the role of /admin/workspace/{role}[/...]
func roleFromPath(path string) (service.Role, error) {
	rest := strings.TrimPrefix(path, "/admin/workspace/")
	if i := strings.Index(rest, "/"); i >= 0 {
		rest = rest[:i]
	}
	return service.ParseRole(rest)
}

// LoadProduct handles POST /admin/workspace/{role}
func (c *WorkspaceController) LoadProduct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	role, err := roleFromPath(r.URL.Path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	var req models.LoadProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.ProductKey) == "" {
		http.Error(w, "productKey is required", http.StatusBadRequest)
		return
	}
	mode, err := collection.ParseKeyMode(req.Mode)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := c.workspace.LoadProduct(r.Context(), role, req.ProductKey, mode, req.Columns); err != nil {
		writeError(w, "Failed to load product", err)
		return
	}
	view, err := c.workspace.Page(r.Context(), role, 0)
	if err != nil {
		writeError(w, "Failed to load page", err)
		return
	}
	writeJSON(w, view)
}

// GetPage handles GET /admin/workspace/{role}/page?n=
func (c *WorkspaceController) GetPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	role, err := roleFromPath(r.URL.Path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	n := 0
	if raw := r.URL.Query().Get("n"); raw != "" {
		n, err = strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "n must be an integer", http.StatusBadRequest)
			return
		}
	}

	view, err := c.workspace.Page(r.Context(), role, n)
	if err != nil {
		writeError(w, "Failed to load page", err)
		return
	}
	writeJSON(w, view)
}

// Hide handles POST /admin/workspace/{role}/hide
func (c *WorkspaceController) Hide(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	role, err := roleFromPath(r.URL.Path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	var req models.HideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.Key == "" {
		http.Error(w, "key is required", http.StatusBadRequest)
		return
	}

	hidden, err := c.workspace.Hide(role, req.Key)
	if err != nil {
		writeError(w, "Failed to hide image", err)
		return
	}
	if !hidden {
		http.Error(w, fmt.Sprintf("Image %s not found in %s", req.Key, role), http.StatusNotFound)
		return
	}
	writeJSON(w, c.unsavedResponse())
}

// Restore handles POST /admin/workspace/{role}/restore
func (c *WorkspaceController) Restore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	role, err := roleFromPath(r.URL.Path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err := c.workspace.Restore(role); err != nil {
		writeError(w, "Failed to restore images", err)
		return
	}
	writeJSON(w, c.unsavedResponse())
}

// GetImage handles GET /admin/workspace/{role}/image?key=&size=thumb|full
// Serves the cached artifact bytes; display-only artifacts have none.
func (c *WorkspaceController) GetImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	role, err := roleFromPath(r.URL.Path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	key := r.URL.Query().Get("key")
	if key == "" {
		http.Error(w, "key parameter is required", http.StatusBadRequest)
		return
	}

	artifact, ok := c.workspace.Artifact(role, key)
	if !ok || artifact.DisplayOnly {
		http.Error(w, "Image not available", http.StatusNotFound)
		return
	}
	data := artifact.Data
	if r.URL.Query().Get("size") == service.SizeThumb && len(artifact.Thumbnail) > 0 {
		data = artifact.Thumbnail
	}

	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// GetActive handles GET /admin/workspace/{role}/active
func (c *WorkspaceController) GetActive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	role, err := roleFromPath(r.URL.Path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]interface{}{"references": c.workspace.ActiveReferences(role)})
}

// Export handles GET /admin/workspace/{role}/export?ai=true
func (c *WorkspaceController) Export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	role, err := roleFromPath(r.URL.Path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	ai, _ := strconv.ParseBool(r.URL.Query().Get("ai"))

	payload, err := c.workspace.Export(role, ai)
	if err != nil {
		writeError(w, "Failed to export", err)
		return
	}
	writeJSON(w, payload)
}

// RenderSheet handles GET /admin/workspace/{role}/sheet/render
// Returns the contact sheet HTML that GetSheet prints
func (c *WorkspaceController) RenderSheet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	role, err := roleFromPath(r.URL.Path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	data, err := c.workspace.Sheet(role, c.sheets)
	if err != nil {
		writeError(w, "Failed to build sheet", err)
		return
	}
	html, err := c.sheets.RenderHTML(data)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to render sheet: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

// GetSheet handles GET /admin/workspace/{role}/sheet
func (c *WorkspaceController) GetSheet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	role, err := roleFromPath(r.URL.Path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	ctrl, err := c.workspace.Controller(role)
	if err != nil {
		writeError(w, "Failed to generate sheet", err)
		return
	}

	pdf, err := c.sheets.GeneratePDF(r.Context(), string(role))
	if err != nil {
		c.log.Errorf("❌ Error generating sheet PDF: %v", err)
		http.Error(w, fmt.Sprintf("Failed to generate PDF: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s-%s.pdf\"", ctrl.ProductKey(), role))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

// Transfer handles POST /admin/workspace/transfer
func (c *WorkspaceController) Transfer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	mode, err := collection.ParseTransferMode(req.Mode)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := c.workspace.Transfer(r.Context(), req.Selected, mode, req.Position, req.Category)
	if err != nil {
		writeError(w, "Failed to transfer images", err)
		return
	}
	writeJSON(w, models.TransferResponse{
		NewImages:     result.Images,
		NewCategories: result.Categories,
		Category:      result.Category,
	})
}

// GetUnsaved handles GET /admin/workspace/unsaved
func (c *WorkspaceController) GetUnsaved(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, c.unsavedResponse())
}

func (c *WorkspaceController) unsavedResponse() models.UnsavedResponse {
	session := c.workspace.Session()
	resp := models.UnsavedResponse{
		Unsaved: c.workspace.Unsaved(),
		Dirty:   session.DirtyOwners(),
	}
	if saved := session.LastSaved(); !saved.IsZero() {
		resp.LastSaved = &saved
	}
	return resp
}
