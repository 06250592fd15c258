package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"product-image-studio/db"
	"product-image-studio/models"
)

// TransferLogRepository handles the append-only transfer log
// Implements TransferLogRepositoryInterface
type TransferLogRepository struct {
	conn *sql.DB
}

// NewTransferLogRepository creates a new TransferLogRepository.
// A nil conn uses the global db.DB.
func NewTransferLogRepository(conn *sql.DB) *TransferLogRepository {
	return &TransferLogRepository{conn: conn}
}

// Ensure TransferLogRepository implements TransferLogRepositoryInterface
var _ TransferLogRepositoryInterface = (*TransferLogRepository)(nil)

func (r *TransferLogRepository) db() *sql.DB {
	if r.conn != nil {
		return r.conn
	}
	return db.DB
}

// Record inserts entry, assigning its ID and CreatedAt when unset
func (r *TransferLogRepository) Record(ctx context.Context, entry *models.TransferLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO transfer_log (
			id, source_product, target_product, mode, category, position,
			selected_count, result_count, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db().ExecContext(ctx, query,
		entry.ID,
		entry.SourceProduct,
		entry.TargetProduct,
		entry.Mode,
		entry.Category,
		entry.Position,
		entry.SelectedCount,
		entry.ResultCount,
		entry.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to record transfer: %w", err)
	}
	return nil
}

// ListByProduct returns the latest transfers into productKey, newest first
func (r *TransferLogRepository) ListByProduct(ctx context.Context, productKey string, limit int) ([]models.TransferLog, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, source_product, target_product, mode, category, position,
			selected_count, result_count, created_at
		FROM transfer_log
		WHERE target_product = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db().QueryContext(ctx, query, productKey, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfer log: %w", err)
	}
	defer rows.Close()

	var entries []models.TransferLog
	for rows.Next() {
		var e models.TransferLog
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.SourceProduct, &e.TargetProduct, &e.Mode, &e.Category, &e.Position,
			&e.SelectedCount, &e.ResultCount, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan transfer log: %w", err)
		}
		e.CreatedAt = time.UnixMilli(createdAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transfer log: %w", err)
	}
	return entries, nil
}
