package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"product-image-studio/collection"
	"product-image-studio/logging"
	"product-image-studio/models"
	"product-image-studio/repository"
	"product-image-studio/utils"
)

// Role names a collection of the workspace.
type Role string

const (
	RoleSource Role = "source"
	RoleTarget Role = "target"
)

var (
	// ErrUnknownProduct is returned when a product key has no stored list.
	ErrUnknownProduct = errors.New("unknown product")
	// ErrUnknownRole is returned for roles other than source and target.
	ErrUnknownRole = errors.New("unknown workspace role")
)

// ParseRole accepts "source" and "target".
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleSource:
		return RoleSource, nil
	case RoleTarget:
		return RoleTarget, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// WorkspaceOptions configures a Workspace.
type WorkspaceOptions struct {
	Order           []string
	PageSize        int
	SilentThreshold int
	DefaultCategory string
	Loader          collection.ArtifactLoader
	Products        repository.ProductImageRepositoryInterface
	Transfers       repository.TransferLogRepositoryInterface
	Logger          *logging.Logger
}

// Workspace holds the source and target collections of one editing session.
// Each role keeps one controller per key mode, each with its own fetch cache.
type Workspace struct {
	opts      WorkspaceOptions
	log       *logging.Logger
	session   *collection.Session
	persister *TransferPersister

	mu          sync.RWMutex
	controllers map[Role]map[collection.KeyMode]*collection.Controller
	current     map[Role]collection.KeyMode
	active      map[Role][]string
}

// NewWorkspace creates an empty workspace.
func NewWorkspace(opts WorkspaceOptions) *Workspace {
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	if opts.DefaultCategory == "" {
		opts.DefaultCategory = collection.DefaultCategory
	}
	return &Workspace{
		opts:        opts,
		log:         log,
		session:     collection.NewSession(),
		persister:   NewTransferPersister(opts.Products, opts.Transfers, log.Named("persist")),
		controllers: make(map[Role]map[collection.KeyMode]*collection.Controller),
		current:     make(map[Role]collection.KeyMode),
		active:      make(map[Role][]string),
	}
}

// Session returns the editing session shared by both roles.
func (w *Workspace) Session() *collection.Session {
	return w.session
}

// Unsaved reports whether the session has unsaved changes.
func (w *Workspace) Unsaved() bool {
	return w.session.HasUnsavedChanges()
}

func (w *Workspace) controllerFor(role Role, mode collection.KeyMode) *collection.Controller {
	w.mu.Lock()
	defer w.mu.Unlock()
	byMode, ok := w.controllers[role]
	if !ok {
		byMode = make(map[collection.KeyMode]*collection.Controller)
		w.controllers[role] = byMode
	}
	if c, ok := byMode[mode]; ok {
		return c
	}

	opts := collection.ControllerOptions{
		Name:            controllerName(role, mode),
		Mode:            mode,
		Order:           w.opts.Order,
		PageSize:        w.opts.PageSize,
		SilentThreshold: w.opts.SilentThreshold,
		DefaultCategory: w.opts.DefaultCategory,
		Loader:          w.opts.Loader,
		Session:         w.session,
		OnActiveChange:  func(refs []string) { w.setActive(role, refs) },
		Logger:          w.log.Named(string(role)).With("mode", mode.String()),
	}
	if role == RoleTarget {
		opts.Persister = w.persister
	}
	c := collection.NewController(opts)
	byMode[mode] = c
	return c
}

func controllerName(role Role, mode collection.KeyMode) string {
	return fmt.Sprintf("%s/%s", role, mode)
}

func (w *Workspace) setActive(role Role, refs []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.active[role] = refs
}

// ActiveReferences returns the last active projection reported by role.
func (w *Workspace) ActiveReferences(role Role) []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]string(nil), w.active[role]...)
}

// Controller returns the controller currently showing role.
func (w *Workspace) Controller(role Role) (*collection.Controller, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	mode, ok := w.current[role]
	if !ok {
		return nil, fmt.Errorf("%s: %w", role, collection.ErrNoProduct)
	}
	return w.controllers[role][mode], nil
}

// LoadProduct shows productKey in role. columns, when given, replace the
// template column order of that collection.
func (w *Workspace) LoadProduct(ctx context.Context, role Role, productKey string, mode collection.KeyMode, columns []string) (*collection.Controller, error) {
	exists, err := w.opts.Products.Exists(ctx, productKey)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, productKey)
	}
	rows, err := w.opts.Products.Load(ctx, productKey)
	if err != nil {
		return nil, err
	}

	entries := make([]collection.Entry, len(rows))
	for i, row := range rows {
		entries[i] = collection.Entry{Reference: row.ImageURL, Category: row.Category}
	}

	c := w.controllerFor(role, mode)
	if len(columns) > 0 {
		order := make([]string, 0, len(columns))
		for _, col := range columns {
			if token := utils.NormalizeCategory(col); token != "" {
				order = append(order, token)
			}
		}
		c.SetOrder(order)
	}
	c.SetProduct(productKey, entries)

	w.mu.Lock()
	prev, loaded := w.current[role]
	w.current[role] = mode
	w.mu.Unlock()

	// The controller of the other mode is no longer shown; its hides are dropped.
	if loaded && prev != mode {
		w.session.MarkClean(controllerName(role, prev))
	}
	return c, nil
}

// Page moves role to page n and loads it.
func (w *Workspace) Page(ctx context.Context, role Role, n int) (collection.PageView, error) {
	c, err := w.Controller(role)
	if err != nil {
		return collection.PageView{}, err
	}
	return c.SetPage(ctx, n)
}

// Hide hides key in role.
func (w *Workspace) Hide(role Role, key string) (bool, error) {
	c, err := w.Controller(role)
	if err != nil {
		return false, err
	}
	return c.Hide(key), nil
}

// Restore restores every hidden key of role.
func (w *Workspace) Restore(role Role) error {
	c, err := w.Controller(role)
	if err != nil {
		return err
	}
	c.RestoreAll()
	return nil
}

// Artifact returns the cached artifact of key in role.
func (w *Workspace) Artifact(role Role, key string) (*collection.Artifact, bool) {
	c, err := w.Controller(role)
	if err != nil {
		return nil, false
	}
	entry, ok := c.Cache().Get(key)
	if !ok || entry.Artifact == nil {
		return nil, false
	}
	return entry.Artifact, true
}

// Transfer copies the selected source keys into the target.
func (w *Workspace) Transfer(ctx context.Context, selected []string, mode collection.TransferMode, position int, category string) (collection.TransferResult, error) {
	source, err := w.Controller(RoleSource)
	if err != nil {
		return collection.TransferResult{}, err
	}
	target, err := w.Controller(RoleTarget)
	if err != nil {
		return collection.TransferResult{}, err
	}

	refs := source.ResolveReferences(selected)
	result, err := target.Transfer(ctx, refs, mode, collection.TransferOptions{
		Position:      position,
		Category:      utils.NormalizeCategory(category),
		SourceProduct: source.ProductKey(),
	})
	if err != nil {
		return collection.TransferResult{}, err
	}

	// Same product on both sides: the source must see the persisted list too.
	if source.ProductKey() == target.ProductKey() {
		if _, err := source.ReplaceEntries(target.Entries()); err != nil {
			w.log.Warnf("⚠️  Failed to refresh source after transfer: %v", err)
		}
	}
	return result, nil
}

// Export builds the row payload of role's active projection. ai drops
// display-only artifacts.
func (w *Workspace) Export(role Role, ai bool) (models.ExportPayload, error) {
	c, err := w.Controller(role)
	if err != nil {
		return models.ExportPayload{}, err
	}
	if ai {
		return BuildAIRows(c.Active(), c.Order(), c.Cache(), c.Mode()), nil
	}
	return BuildRows(c.Active(), c.Order()), nil
}

// Sheet builds the contact sheet data of role.
func (w *Workspace) Sheet(role Role, sheets *SheetService) (SheetData, error) {
	c, err := w.Controller(role)
	if err != nil {
		return SheetData{}, err
	}
	return sheets.BuildSheet(string(role), c.ProductKey(), c.Mode(), c.Groups(), c.Cache().Get), nil
}
