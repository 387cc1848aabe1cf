package invoices

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

// Repository persists invoices and the org/customer rows the tax snapshot
// needs. Status moves through TransitionStatus only, which makes transitions
// exclusive via the affected-row count.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, invoice *models.Invoice) error
	FindByID(ctx context.Context, orgID, invoiceID uuid.UUID) (*models.Invoice, error)
	List(ctx context.Context, orgID uuid.UUID, params pagination.Params) ([]models.Invoice, string, error)
	ReplaceItems(ctx context.Context, invoiceID uuid.UUID, customerID *uuid.UUID, items []models.InvoiceItem) error
	SaveItem(ctx context.Context, item *models.InvoiceItem) error
	TransitionStatus(ctx context.Context, orgID, invoiceID uuid.UUID, from, to enums.InvoiceStatus, updates map[string]any) (int64, error)
	FindOrg(ctx context.Context, orgID uuid.UUID) (*models.Org, error)
	FindCustomer(ctx context.Context, orgID, customerID uuid.UUID) (*models.Customer, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an invoice repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *repository) FindByID(ctx context.Context, orgID, invoiceID uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("org_id = ? AND id = ?", orgID, invoiceID).
		First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
		}
		return nil, err
	}
	return &invoice, nil
}

func (r *repository) List(ctx context.Context, orgID uuid.UUID, params pagination.Params) ([]models.Invoice, string, error) {
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

	var invoices []models.Invoice
	if err := query.Find(&invoices).Error; err != nil {
		return nil, "", err
	}

	var next string
	if len(invoices) > limit {
		invoices = invoices[:limit]
		last := invoices[len(invoices)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return invoices, next, nil
}

func (r *repository) ReplaceItems(ctx context.Context, invoiceID uuid.UUID, customerID *uuid.UUID, items []models.InvoiceItem) error {
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Delete(&models.InvoiceItem{}).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].InvoiceID = invoiceID
	}
	if len(items) > 0 {
		if err := r.db.WithContext(ctx).Create(&items).Error; err != nil {
			return err
		}
	}
	return r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("id = ?", invoiceID).
		Updates(map[string]any{
			"customer_id": customerID,
			"updated_at":  time.Now().UTC(),
		}).Error
}

func (r *repository) SaveItem(ctx context.Context, item *models.InvoiceItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *repository) TransitionStatus(ctx context.Context, orgID, invoiceID uuid.UUID, from, to enums.InvoiceStatus, updates map[string]any) (int64, error) {
	if updates == nil {
		updates = map[string]any{}
	}
	updates["status"] = to
	updates["updated_at"] = time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("org_id = ? AND id = ? AND status = ?", orgID, invoiceID, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *repository) FindOrg(ctx context.Context, orgID uuid.UUID) (*models.Org, error) {
	var org models.Org
	err := r.db.WithContext(ctx).Where("id = ?", orgID).First(&org).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "org not found")
		}
		return nil, err
	}
	return &org, nil
}

func (r *repository) FindCustomer(ctx context.Context, orgID, customerID uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, customerID).
		First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, err
	}
	return &customer, nil
}
