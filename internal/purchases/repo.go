package purchases

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockbill-backend/pkg/db/models"
	"github.com/angelmondragon/stockbill-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/stockbill-backend/pkg/errors"
	"github.com/angelmondragon/stockbill-backend/pkg/pagination"
)

// Repository persists purchase bills. Status moves through TransitionStatus
// only, so a transition observed by RowsAffected == 1 is exclusive even under
// concurrent posting.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, bill *models.PurchaseBill) error
	FindByID(ctx context.Context, orgID, billID uuid.UUID) (*models.PurchaseBill, error)
	List(ctx context.Context, orgID uuid.UUID, params pagination.Params) ([]models.PurchaseBill, string, error)
	TransitionStatus(ctx context.Context, orgID, billID uuid.UUID, from, to enums.PurchaseBillStatus, updates map[string]any) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a purchase bill repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, bill *models.PurchaseBill) error {
	return r.db.WithContext(ctx).Create(bill).Error
}

func (r *repository) FindByID(ctx context.Context, orgID, billID uuid.UUID) (*models.PurchaseBill, error) {
	var bill models.PurchaseBill
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("org_id = ? AND id = ?", orgID, billID).
		First(&bill).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase bill not found")
		}
		return nil, err
	}
	return &bill, nil
}

func (r *repository) List(ctx context.Context, orgID uuid.UUID, params pagination.Params) ([]models.PurchaseBill, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
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

	var bills []models.PurchaseBill
	if err := query.Find(&bills).Error; err != nil {
		return nil, "", err
	}

	var next string
	if len(bills) > limit {
		bills = bills[:limit]
		last := bills[len(bills)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return bills, next, nil
}

func (r *repository) TransitionStatus(ctx context.Context, orgID, billID uuid.UUID, from, to enums.PurchaseBillStatus, updates map[string]any) (int64, error) {
	if updates == nil {
		updates = map[string]any{}
	}
	updates["status"] = to
	updates["updated_at"] = time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&models.PurchaseBill{}).
		Where("org_id = ? AND id = ? AND status = ?", orgID, billID, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}
