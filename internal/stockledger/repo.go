package stockledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockbill-backend/pkg/db/models"
	"github.com/angelmondragon/stockbill-backend/pkg/enums"
	"github.com/angelmondragon/stockbill-backend/pkg/pagination"
)

// Repository persists the append-only stock journal. There is deliberately no
// update or delete surface here.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.StockLedgerEntry) error
	CreateBatch(ctx context.Context, entries []*models.StockLedgerEntry) error
	// SumByOrgProduct folds the journal into the current stock level.
	SumByOrgProduct(ctx context.Context, orgID, productID uuid.UUID) (int, error)
	ListByProduct(ctx context.Context, orgID, productID uuid.UUID, params pagination.Params) ([]models.StockLedgerEntry, string, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.StockLedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) CreateBatch(ctx context.Context, entries []*models.StockLedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(entries).Error
}

func (r *repository) SumByOrgProduct(ctx context.Context, orgID, productID uuid.UUID) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.StockLedgerEntry{}).
		Select(`COALESCE(SUM(CASE type
			WHEN ? THEN quantity
			WHEN ? THEN -quantity
			ELSE quantity * direction END), 0)`,
			enums.StockMovementTypeIn, enums.StockMovementTypeOut).
		Where("org_id = ? AND product_id = ?", orgID, productID).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return int(total), nil
}

func (r *repository) ListByProduct(ctx context.Context, orgID, productID uuid.UUID, params pagination.Params) ([]models.StockLedgerEntry, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Where("org_id = ? AND product_id = ?", orgID, productID).
		Order("created_at DESC, id DESC").
		Limit(limit + 1)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var entries []models.StockLedgerEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, "", err
	}

	var next string
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return entries, next, nil
}
