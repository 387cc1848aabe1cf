package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockbill-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/stockbill-backend/pkg/errors"
)

// Repository reads products and the HSN master for catalog lookups.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindProduct(ctx context.Context, orgID, productID uuid.UUID) (*models.Product, error)
	FindProducts(ctx context.Context, orgID uuid.UUID, productIDs []uuid.UUID) (map[uuid.UUID]*models.Product, error)
	FindHSNCode(ctx context.Context, code string) (*models.HSNCode, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindProduct(ctx context.Context, orgID, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Master").
		Where("org_id = ? AND id = ?", orgID, productID).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindProducts(ctx context.Context, orgID uuid.UUID, productIDs []uuid.UUID) (map[uuid.UUID]*models.Product, error) {
	if len(productIDs) == 0 {
		return map[uuid.UUID]*models.Product{}, nil
	}
	var products []models.Product
	err := r.db.WithContext(ctx).
		Preload("Master").
		Where("org_id = ? AND id IN ?", orgID, productIDs).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]*models.Product, len(products))
	for i := range products {
		out[products[i].ID] = &products[i]
	}
	return out, nil
}

func (r *repository) FindHSNCode(ctx context.Context, code string) (*models.HSNCode, error) {
	var row models.HSNCode
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "hsn code not found")
		}
		return nil, err
	}
	return &row, nil
}
