package router

import (
	"net/http"
	"strings"

	"product-image-studio/app/controller"
)

type Controllers struct {
	Workspace *controller.WorkspaceController
	Product   *controller.ProductController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func SetupRoutes(mux *http.ServeMux, controllers *Controllers) {
	// Ping endpoint
	mux.HandleFunc("/ping", pingHandler)

	// Workspace routes
	// Transfer the source selection into the target
	mux.HandleFunc("/admin/workspace/transfer", controllers.Workspace.Transfer)

	// Unsaved changes flag of the editing session
	mux.HandleFunc("/admin/workspace/unsaved", controllers.Workspace.GetUnsaved)

	// Role routes: /admin/workspace/{source|target}[/action]
	mux.HandleFunc("/admin/workspace/", func(w http.ResponseWriter, r *http.Request) {
		path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/admin/workspace/"), "/")

		// Route to specific actions first
		switch {
		case strings.HasSuffix(path, "/sheet/render"):
			controllers.Workspace.RenderSheet(w, r)
			return
		case strings.HasSuffix(path, "/sheet"):
			controllers.Workspace.GetSheet(w, r)
			return
		case strings.HasSuffix(path, "/page"):
			controllers.Workspace.GetPage(w, r)
			return
		case strings.HasSuffix(path, "/hide"):
			controllers.Workspace.Hide(w, r)
			return
		case strings.HasSuffix(path, "/restore"):
			controllers.Workspace.Restore(w, r)
			return
		case strings.HasSuffix(path, "/image"):
			controllers.Workspace.GetImage(w, r)
			return
		case strings.HasSuffix(path, "/export"):
			controllers.Workspace.Export(w, r)
			return
		case strings.HasSuffix(path, "/active"):
			controllers.Workspace.GetActive(w, r)
			return
		}

		// Handle POST /admin/workspace/{role} (load product)
		if !strings.Contains(path, "/") && path != "" {
			if r.Method == http.MethodPost {
				controllers.Workspace.LoadProduct(w, r)
				return
			}
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		http.Error(w, "Not found", http.StatusNotFound)
	})

	// Products routes
	mux.HandleFunc("/admin/products", controllers.Product.ListProducts)

	// Import a Drive folder into a product
	mux.HandleFunc("/admin/products/import", controllers.Product.Import)

	// Transfer history of a product
	mux.HandleFunc("/admin/products/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/transfers") {
			controllers.Product.GetTransfers(w, r)
			return
		}
		http.Error(w, "Not found", http.StatusNotFound)
	})
}
