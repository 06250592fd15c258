package service

import (
	"context"
	"errors"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"product-image-studio/collection"
)

func newTestWorkspace(t *testing.T) (*Workspace, *memoryProductRepo, *memoryTransferLog) {
	t.Helper()
	repo := newMemoryProductRepo()
	repo.seed("sku-src", "s1", "main", "s2", "main", "s3", "side")
	repo.seed("sku-dst", "t1", "main", "t2", "side")
	transfers := &memoryTransferLog{}
	w := NewWorkspace(WorkspaceOptions{
		Order:     []string{"main", "side"},
		PageSize:  4,
		Products:  repo,
		Transfers: transfers,
	})
	return w, repo, transfers
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole(" Target ")
	assert.NilError(t, err)
	assert.Equal(t, role, RoleTarget)

	_, err = ParseRole("middle")
	assert.Assert(t, errors.Is(err, ErrUnknownRole))
}

func TestWorkspace_LoadProduct(t *testing.T) {
	w, _, _ := newTestWorkspace(t)
	ctx := context.Background()

	_, err := w.Controller(RoleSource)
	assert.Assert(t, errors.Is(err, collection.ErrNoProduct))

	_, err = w.LoadProduct(ctx, RoleSource, "sku-missing", collection.PerImage, nil)
	assert.Assert(t, errors.Is(err, ErrUnknownProduct))

	c, err := w.LoadProduct(ctx, RoleSource, "sku-src", collection.PerImage, nil)
	assert.NilError(t, err)
	assert.Equal(t, c.ProductKey(), "sku-src")
	assert.DeepEqual(t, w.ActiveReferences(RoleSource), []string{"s1", "s2", "s3"})

	view, err := w.Page(ctx, RoleSource, 0)
	assert.NilError(t, err)
	assert.Check(t, is.Len(view.Items, 3))
}

func TestWorkspace_HideMarksUnsaved(t *testing.T) {
	w, _, _ := newTestWorkspace(t)
	_, err := w.LoadProduct(context.Background(), RoleSource, "sku-src", collection.PerImage, nil)
	assert.NilError(t, err)

	hidden, err := w.Hide(RoleSource, "s2")
	assert.NilError(t, err)
	assert.Assert(t, hidden)
	assert.Assert(t, w.Unsaved())
	assert.DeepEqual(t, w.ActiveReferences(RoleSource), []string{"s1", "s3"})

	assert.NilError(t, w.Restore(RoleSource))
	assert.Assert(t, !w.Unsaved())
	assert.DeepEqual(t, w.ActiveReferences(RoleSource), []string{"s1", "s2", "s3"})
}

func TestWorkspace_Transfer(t *testing.T) {
	w, repo, transfers := newTestWorkspace(t)
	ctx := context.Background()
	_, err := w.LoadProduct(ctx, RoleSource, "sku-src", collection.PerImage, nil)
	assert.NilError(t, err)
	target, err := w.LoadProduct(ctx, RoleTarget, "sku-dst", collection.PerProduct, nil)
	assert.NilError(t, err)

	result, err := w.Transfer(ctx, []string{"s3", "s1"}, collection.AddToEnd, 1, "Principal")

	assert.NilError(t, err)
	assert.Equal(t, result.Category, "main")
	assert.DeepEqual(t, result.Images, []string{"t1", "s3", "s1", "t2"})

	rows, _ := repo.Load(ctx, "sku-dst")
	assert.Equal(t, len(rows), 4)
	assert.Equal(t, rows[1].ImageURL, "s3")
	assert.Equal(t, rows[1].Category, "main")

	assert.Equal(t, len(transfers.entries), 1)
	assert.Equal(t, transfers.entries[0].SourceProduct, "sku-src")
	assert.Equal(t, transfers.entries[0].SelectedCount, 2)
	assert.Equal(t, transfers.entries[0].Mode, "add_to_end")

	assert.Equal(t, len(target.Entries()), 4)
	assert.DeepEqual(t, w.ActiveReferences(RoleTarget), []string{"t1", "s3", "s1", "t2"})
}

func TestWorkspace_TransferPersistFailure(t *testing.T) {
	w, repo, transfers := newTestWorkspace(t)
	ctx := context.Background()
	_, err := w.LoadProduct(ctx, RoleSource, "sku-src", collection.PerImage, nil)
	assert.NilError(t, err)
	target, err := w.LoadProduct(ctx, RoleTarget, "sku-dst", collection.PerProduct, nil)
	assert.NilError(t, err)
	repo.err = errors.New("disk full")

	_, err = w.Transfer(ctx, []string{"s1"}, collection.AddToEnd, 1, "")

	assert.Assert(t, errors.Is(err, collection.ErrPersist))
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, len(target.Entries()), 2)
	assert.Equal(t, len(transfers.entries), 0)
}

func TestWorkspace_TransferLogFailureIsNotFatal(t *testing.T) {
	w, repo, transfers := newTestWorkspace(t)
	ctx := context.Background()
	_, err := w.LoadProduct(ctx, RoleSource, "sku-src", collection.PerImage, nil)
	assert.NilError(t, err)
	_, err = w.LoadProduct(ctx, RoleTarget, "sku-dst", collection.PerImage, nil)
	assert.NilError(t, err)
	transfers.err = errors.New("log table locked")

	_, err = w.Transfer(ctx, []string{"s2"}, collection.AddToEnd, 1, "")

	assert.NilError(t, err)
	rows, _ := repo.Load(ctx, "sku-dst")
	assert.Equal(t, rows[len(rows)-1].ImageURL, "s2")
}

func TestWorkspace_TransferEmptySelection(t *testing.T) {
	w, _, _ := newTestWorkspace(t)
	ctx := context.Background()
	_, _ = w.LoadProduct(ctx, RoleSource, "sku-src", collection.PerImage, nil)
	_, _ = w.LoadProduct(ctx, RoleTarget, "sku-dst", collection.PerImage, nil)

	_, err := w.Transfer(ctx, nil, collection.AddToEnd, 1, "")
	assert.Assert(t, errors.Is(err, collection.ErrEmptySelection))
}

func TestWorkspace_TransferIntoSameProductRefreshesSource(t *testing.T) {
	w, _, _ := newTestWorkspace(t)
	ctx := context.Background()
	source, err := w.LoadProduct(ctx, RoleSource, "sku-dst", collection.PerImage, nil)
	assert.NilError(t, err)
	_, err = w.LoadProduct(ctx, RoleTarget, "sku-dst", collection.PerProduct, nil)
	assert.NilError(t, err)

	_, err = w.Transfer(ctx, []string{"t2"}, collection.AddToEnd, 1, "main")

	assert.NilError(t, err)
	refs, _ := collection.Split(source.Entries())
	assert.DeepEqual(t, refs, []string{"t1", "t2", "t2"})
}

func TestWorkspace_Export(t *testing.T) {
	w, _, _ := newTestWorkspace(t)
	_, err := w.LoadProduct(context.Background(), RoleTarget, "sku-src", collection.PerImage, []string{"Lateral", "principal"})
	assert.NilError(t, err)
	_, _ = w.Hide(RoleTarget, "s2")

	payload, err := w.Export(RoleTarget, false)

	assert.NilError(t, err)
	assert.DeepEqual(t, payload.Rows, [][]string{
		{"side 1", "main 1"},
		{"s3", "s1"},
	})

	_, err = w.Export(RoleSource, false)
	assert.Assert(t, errors.Is(err, collection.ErrNoProduct))
}

func TestWorkspace_ModeSwitchDropsHiddenOfOtherMode(t *testing.T) {
	w, _, _ := newTestWorkspace(t)
	ctx := context.Background()
	_, err := w.LoadProduct(ctx, RoleSource, "sku-src", collection.PerImage, nil)
	assert.NilError(t, err)
	_, err = w.LoadProduct(ctx, RoleTarget, "sku-dst", collection.PerProduct, nil)
	assert.NilError(t, err)

	_, err = w.Hide(RoleSource, "s1")
	assert.NilError(t, err)
	_, err = w.Hide(RoleTarget, "t1")
	assert.NilError(t, err)
	assert.DeepEqual(t, w.Session().DirtyOwners(), []string{"source/per_image", "target/per_product"})

	_, err = w.LoadProduct(ctx, RoleSource, "sku-src", collection.PerProduct, nil)
	assert.NilError(t, err)
	assert.DeepEqual(t, w.Session().DirtyOwners(), []string{"target/per_product"})

	assert.NilError(t, w.Restore(RoleSource))
	assert.Assert(t, w.Unsaved())
}
