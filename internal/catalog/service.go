package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockbill-backend/pkg/db/models"
	"github.com/angelmondragon/stockbill-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/stockbill-backend/pkg/errors"
)

// Service exposes catalog reads plus the governance gate used before a product
// may appear on a finalized invoice.
type Service interface {
	WithTx(tx *gorm.DB) Service
	GetProduct(ctx context.Context, orgID, productID uuid.UUID) (*models.Product, error)
	GetProducts(ctx context.Context, orgID uuid.UUID, productIDs []uuid.UUID) (map[uuid.UUID]*models.Product, error)
	// GovernanceIssues reports why the product may not be sold yet. An empty
	// slice means the master-product link is approved and carries a valid,
	// active HSN code.
	GovernanceIssues(ctx context.Context, product *models.Product) ([]enums.ItemIssueKind, error)
	// ValidateHSN checks a declared HSN code and rate against the active master.
	ValidateHSN(ctx context.Context, code string, rate decimal.Decimal) error
	// ResolveHSNRate returns the governed HSN code and GST rate for a product
	// that has cleared governance. Products with open issues get an error.
	ResolveHSNRate(ctx context.Context, product *models.Product) (string, decimal.Decimal, error)
}

type service struct {
	repo Repository
}

// NewService wires a catalog service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx)}
}

func (s *service) GetProduct(ctx context.Context, orgID, productID uuid.UUID) (*models.Product, error) {
	if orgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "org id required")
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	return s.repo.FindProduct(ctx, orgID, productID)
}

func (s *service) GetProducts(ctx context.Context, orgID uuid.UUID, productIDs []uuid.UUID) (map[uuid.UUID]*models.Product, error) {
	if orgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "org id required")
	}
	return s.repo.FindProducts(ctx, orgID, productIDs)
}

func (s *service) GovernanceIssues(ctx context.Context, product *models.Product) ([]enums.ItemIssueKind, error) {
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product required")
	}

	if product.Master == nil {
		return []enums.ItemIssueKind{enums.ItemIssueMasterProductNotLinked}, nil
	}

	var issues []enums.ItemIssueKind
	if product.Master.Status != enums.MasterProductStatusApproved {
		issues = append(issues, enums.ItemIssueMasterProductNotApproved)
	}
	if product.Master.HSNCode == nil || *product.Master.HSNCode == "" {
		issues = append(issues, enums.ItemIssueMasterProductMissingHSN)
		return issues, nil
	}

	row, err := s.repo.FindHSNCode(ctx, *product.Master.HSNCode)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return append(issues, enums.ItemIssueMasterProductInvalidHSN), nil
		}
		return nil, err
	}
	if !row.Active {
		issues = append(issues, enums.ItemIssueMasterProductInvalidHSN)
	}
	return issues, nil
}

func (s *service) ValidateHSN(ctx context.Context, code string, rate decimal.Decimal) error {
	if code == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "hsn code required")
	}
	row, err := s.repo.FindHSNCode(ctx, code)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown hsn code %q", code))
		}
		return err
	}
	if !row.Active {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("hsn code %q is inactive", code))
	}
	if !rate.Equal(row.GSTRate) {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("gst rate %s does not match hsn %q rate %s", rate.String(), code, row.GSTRate.String()))
	}
	return nil
}

func (s *service) ResolveHSNRate(ctx context.Context, product *models.Product) (string, decimal.Decimal, error) {
	issues, err := s.GovernanceIssues(ctx, product)
	if err != nil {
		return "", decimal.Zero, err
	}
	if len(issues) > 0 {
		return "", decimal.Zero, pkgerrors.New(pkgerrors.CodeGovernanceBlocked,
			fmt.Sprintf("product %s has unresolved governance issues", product.ID)).
			WithDetails(map[string]any{"issues": issues})
	}
	row, err := s.repo.FindHSNCode(ctx, *product.Master.HSNCode)
	if err != nil {
		return "", decimal.Zero, err
	}
	return row.Code, row.GSTRate, nil
}
