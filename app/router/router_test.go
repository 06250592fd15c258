package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"product-image-studio/app/controller"
	"product-image-studio/collection"
	"product-image-studio/db"
	"product-image-studio/models"
	"product-image-studio/repository"
	"product-image-studio/service"
)

type fixture struct {
	mux       *http.ServeMux
	products  *repository.ProductImageRepository
	transfers *repository.TransferLogRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	conn, err := db.Open("sqlite", filepath.Join(t.TempDir(), "studio.db"))
	assert.NilError(t, err)
	t.Cleanup(func() { conn.Close() })
	assert.NilError(t, db.Migrate(ctx, conn))

	products := repository.NewProductImageRepository(conn)
	transfers := repository.NewTransferLogRepository(conn)
	assert.NilError(t, products.Replace(ctx, "sku-src", []string{"s1", "s2"}, []string{"main", "side"}))
	assert.NilError(t, products.Replace(ctx, "sku-dst", []string{"t1"}, []string{"main"}))

	workspace := service.NewWorkspace(service.WorkspaceOptions{
		Order:     []string{"main", "side"},
		PageSize:  12,
		Products:  products,
		Transfers: transfers,
	})
	sheets, err := service.NewSheetService("http://studio.test", "", nil)
	assert.NilError(t, err)

	mux := http.NewServeMux()
	SetupRoutes(mux, &Controllers{
		Workspace: controller.NewWorkspaceController(workspace, sheets, nil),
		Product:   controller.NewProductController(nil, products, transfers),
	})
	return &fixture{mux: mux, products: products, transfers: transfers}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func TestPing(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/ping", "")
	assert.Equal(t, rec.Code, http.StatusOK)
	assert.Equal(t, rec.Body.String(), `{"status":"ok"}`)
}

func TestWorkspace_LoadAndPage(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/admin/workspace/source", `{"productKey":"sku-src"}`)
	assert.Equal(t, rec.Code, http.StatusOK, rec.Body.String())

	var view collection.PageView
	assert.NilError(t, json.NewDecoder(rec.Body).Decode(&view))
	assert.Equal(t, view.ProductKey, "sku-src")
	assert.Equal(t, len(view.Items), 2)
	assert.Equal(t, view.Groups[0].Category, "main")

	rec = f.do(t, http.MethodGet, "/admin/workspace/source/page?n=5", "")
	assert.Equal(t, rec.Code, http.StatusOK)

	rec = f.do(t, http.MethodGet, "/admin/workspace/source/page?n=x", "")
	assert.Equal(t, rec.Code, http.StatusBadRequest)
}

func TestWorkspace_Errors(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/admin/workspace/source", `{"productKey":"nope"}`)
	assert.Equal(t, rec.Code, http.StatusNotFound)

	rec = f.do(t, http.MethodPost, "/admin/workspace/middle", `{"productKey":"sku-src"}`)
	assert.Equal(t, rec.Code, http.StatusNotFound)

	rec = f.do(t, http.MethodPost, "/admin/workspace/source", `{`)
	assert.Equal(t, rec.Code, http.StatusBadRequest)

	rec = f.do(t, http.MethodGet, "/admin/workspace/target/export", "")
	assert.Equal(t, rec.Code, http.StatusConflict)

	rec = f.do(t, http.MethodGet, "/admin/workspace/source", "")
	assert.Equal(t, rec.Code, http.StatusMethodNotAllowed)
}

func TestWorkspace_HideAndUnsaved(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/admin/workspace/source", `{"productKey":"sku-src"}`)

	rec := f.do(t, http.MethodPost, "/admin/workspace/source/hide", `{"key":"s1"}`)
	assert.Equal(t, rec.Code, http.StatusOK)

	var unsaved models.UnsavedResponse
	rec = f.do(t, http.MethodGet, "/admin/workspace/unsaved", "")
	assert.NilError(t, json.NewDecoder(rec.Body).Decode(&unsaved))
	assert.Assert(t, unsaved.Unsaved)
	assert.DeepEqual(t, unsaved.Dirty, []string{"source/per_image"})
	assert.Assert(t, unsaved.LastSaved == nil)

	rec = f.do(t, http.MethodPost, "/admin/workspace/source/hide", `{"key":"missing"}`)
	assert.Equal(t, rec.Code, http.StatusNotFound)

	var restored models.UnsavedResponse
	rec = f.do(t, http.MethodPost, "/admin/workspace/source/restore", "")
	assert.Equal(t, rec.Code, http.StatusOK)
	assert.NilError(t, json.NewDecoder(rec.Body).Decode(&restored))
	assert.Assert(t, !restored.Unsaved)
	assert.Check(t, is.Len(restored.Dirty, 0))
	assert.Assert(t, restored.LastSaved != nil)
}

func TestWorkspace_Transfer(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/admin/workspace/source", `{"productKey":"sku-src"}`)
	f.do(t, http.MethodPost, "/admin/workspace/target", `{"productKey":"sku-dst","mode":"per_product"}`)

	rec := f.do(t, http.MethodPost, "/admin/workspace/transfer", `{"selected":[],"mode":"add_to_end"}`)
	assert.Equal(t, rec.Code, http.StatusUnprocessableEntity)

	rec = f.do(t, http.MethodPost, "/admin/workspace/transfer", `{"selected":["s2"],"mode":"sideways"}`)
	assert.Equal(t, rec.Code, http.StatusBadRequest)

	rec = f.do(t, http.MethodPost, "/admin/workspace/transfer", `{"selected":["s2"],"mode":"add_before","position":1,"category":"main"}`)
	assert.Equal(t, rec.Code, http.StatusOK, rec.Body.String())

	var resp models.TransferResponse
	assert.NilError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.DeepEqual(t, resp.NewImages, []string{"s2", "t1"})
	assert.Equal(t, resp.Category, "main")

	rows, err := f.products.Load(context.Background(), "sku-dst")
	assert.NilError(t, err)
	assert.Equal(t, len(rows), 2)
	assert.Equal(t, rows[0].ImageURL, "s2")

	rec = f.do(t, http.MethodGet, "/admin/products/sku-dst/transfers", "")
	assert.Equal(t, rec.Code, http.StatusOK)
	var logs []models.TransferLog
	assert.NilError(t, json.NewDecoder(rec.Body).Decode(&logs))
	assert.Equal(t, len(logs), 1)
	assert.Equal(t, logs[0].SourceProduct, "sku-src")

	rec = f.do(t, http.MethodGet, "/admin/workspace/target/export", "")
	assert.Equal(t, rec.Code, http.StatusOK)
	var payload models.ExportPayload
	assert.NilError(t, json.NewDecoder(rec.Body).Decode(&payload))
	assert.DeepEqual(t, payload.Rows[1], []string{"s2", "t1", ""})
}

func TestWorkspace_SheetRenderAndImage(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/admin/workspace/target", `{"productKey":"sku-dst"}`)

	rec := f.do(t, http.MethodGet, "/admin/workspace/target/sheet/render", "")
	assert.Equal(t, rec.Code, http.StatusOK)
	assert.Assert(t, strings.Contains(rec.Body.String(), "sku-dst"))

	// Without a loader every artifact is display-only.
	rec = f.do(t, http.MethodGet, "/admin/workspace/target/image?key=t1", "")
	assert.Equal(t, rec.Code, http.StatusNotFound)

	rec = f.do(t, http.MethodGet, "/admin/workspace/target/image", "")
	assert.Equal(t, rec.Code, http.StatusBadRequest)
}

func TestProducts(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/admin/products", "")
	assert.Equal(t, rec.Code, http.StatusOK)
	var body struct {
		Products []string `json:"products"`
	}
	assert.NilError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.DeepEqual(t, body.Products, []string{"sku-dst", "sku-src"})

	rec = f.do(t, http.MethodPost, "/admin/products/import", `{"productKey":"sku-src","folderId":"f"}`)
	assert.Equal(t, rec.Code, http.StatusServiceUnavailable)
}
