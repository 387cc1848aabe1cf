package serials

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockbill-backend/pkg/db/models"
	"github.com/angelmondragon/stockbill-backend/pkg/enums"
)

// Repository persists serial units and their invoice-item links. Status flips
// are compare-and-set: the WHERE clause carries the expected current status and
// callers must check the affected-row count.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateBatch(ctx context.Context, serials []*models.ProductSerial) error
	FindByNumbers(ctx context.Context, orgID, productID uuid.UUID, numbers []string) ([]models.ProductSerial, error)
	CountByStatus(ctx context.Context, orgID, productID uuid.UUID, status enums.SerialStatus) (int64, error)
	UpdateStatus(ctx context.Context, serialIDs []uuid.UUID, from, to enums.SerialStatus) (int64, error)
	CreateLinks(ctx context.Context, links []*models.InvoiceItemSerial) error
	FindLinksByInvoiceItems(ctx context.Context, invoiceItemIDs []uuid.UUID) ([]models.InvoiceItemSerial, error)
	DeleteLinks(ctx context.Context, linkIDs []uuid.UUID) error
	MarkLinksUsed(ctx context.Context, linkIDs []uuid.UUID, usedAt time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a serial repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateBatch(ctx context.Context, serials []*models.ProductSerial) error {
	if len(serials) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(serials).Error
}

func (r *repository) FindByNumbers(ctx context.Context, orgID, productID uuid.UUID, numbers []string) ([]models.ProductSerial, error) {
	if len(numbers) == 0 {
		return nil, nil
	}
	var serials []models.ProductSerial
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND product_id = ? AND serial_number IN ?", orgID, productID, numbers).
		Find(&serials).Error
	if err != nil {
		return nil, err
	}
	return serials, nil
}

func (r *repository) CountByStatus(ctx context.Context, orgID, productID uuid.UUID, status enums.SerialStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ProductSerial{}).
		Where("org_id = ? AND product_id = ? AND status = ?", orgID, productID, status).
		Count(&count).Error
	return count, err
}

func (r *repository) UpdateStatus(ctx context.Context, serialIDs []uuid.UUID, from, to enums.SerialStatus) (int64, error) {
	if len(serialIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.ProductSerial{}).
		Where("id IN ? AND status = ?", serialIDs, from).
		Update("status", to)
	return result.RowsAffected, result.Error
}

func (r *repository) CreateLinks(ctx context.Context, links []*models.InvoiceItemSerial) error {
	if len(links) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(links).Error
}

func (r *repository) FindLinksByInvoiceItems(ctx context.Context, invoiceItemIDs []uuid.UUID) ([]models.InvoiceItemSerial, error) {
	if len(invoiceItemIDs) == 0 {
		return nil, nil
	}
	var links []models.InvoiceItemSerial
	err := r.db.WithContext(ctx).
		Where("invoice_item_id IN ?", invoiceItemIDs).
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}

func (r *repository) DeleteLinks(ctx context.Context, linkIDs []uuid.UUID) error {
	if len(linkIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("id IN ?", linkIDs).
		Delete(&models.InvoiceItemSerial{}).Error
}

func (r *repository) MarkLinksUsed(ctx context.Context, linkIDs []uuid.UUID, usedAt time.Time) (int64, error) {
	if len(linkIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.InvoiceItemSerial{}).
		Where("id IN ? AND status = ?", linkIDs, enums.LinkSerialStatusReserved).
		Updates(map[string]any{
			"status":  enums.LinkSerialStatusUsed,
			"used_at": usedAt,
		})
	return result.RowsAffected, result.Error
}
