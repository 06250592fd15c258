package service

import (
	"context"

	"product-image-studio/collection"
	"product-image-studio/logging"
	"product-image-studio/models"
	"product-image-studio/repository"
)

// TransferPersister writes transfer results through the product image repository
// and records them in the transfer log.
type TransferPersister struct {
	products  repository.ProductImageRepositoryInterface
	transfers repository.TransferLogRepositoryInterface
	log       *logging.Logger
}

// Ensure TransferPersister implements collection.Persister
var _ collection.Persister = (*TransferPersister)(nil)

// NewTransferPersister creates a TransferPersister. transfers may be nil.
func NewTransferPersister(products repository.ProductImageRepositoryInterface, transfers repository.TransferLogRepositoryInterface, log *logging.Logger) *TransferPersister {
	if log == nil {
		log = logging.Nop()
	}
	return &TransferPersister{products: products, transfers: transfers, log: log}
}

// PersistTransfer replaces the product's list. A failure to write the log entry
// does not fail the transfer.
func (p *TransferPersister) PersistTransfer(ctx context.Context, productKey string, images, categories []string, opts collection.PersistOptions) error {
	if err := p.products.Replace(ctx, productKey, images, categories); err != nil {
		return err
	}

	if p.transfers == nil {
		return nil
	}
	entry := &models.TransferLog{
		SourceProduct: opts.SourceProduct,
		TargetProduct: productKey,
		Mode:          opts.Mode.String(),
		Category:      opts.Category,
		Position:      opts.Position,
		SelectedCount: len(opts.Selected),
		ResultCount:   len(images),
	}
	if err := p.transfers.Record(ctx, entry); err != nil {
		p.log.Warnf("⚠️  Transfer into %s saved but not logged: %v", productKey, err)
	}
	return nil
}
