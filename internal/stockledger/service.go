package stockledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockbill-backend/pkg/db/models"
	"github.com/angelmondragon/stockbill-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/stockbill-backend/pkg/errors"
	"github.com/angelmondragon/stockbill-backend/pkg/pagination"
)

// Service records stock movements and answers stock queries. All writes append;
// correcting a past mistake means writing an adjustment, never editing history.
type Service interface {
	WithTx(tx *gorm.DB) Service
	RecordMovement(ctx context.Context, input RecordMovementInput) (*models.StockLedgerEntry, error)
	RecordMovements(ctx context.Context, inputs []RecordMovementInput) ([]*models.StockLedgerEntry, error)
	CurrentStock(ctx context.Context, orgID, productID uuid.UUID) (int, error)
	AdjustStockLevel(ctx context.Context, input AdjustInput) (*models.StockLedgerEntry, error)
	ListMovements(ctx context.Context, orgID, productID uuid.UUID, params pagination.Params) ([]models.StockLedgerEntry, string, error)
}

// RecordMovementInput captures one in/out movement tied to a source document.
type RecordMovementInput struct {
	OrgID     uuid.UUID
	ProductID uuid.UUID
	Type      enums.StockMovementType
	Quantity  int
	Notes     string
	RefType   *string
	RefID     *uuid.UUID
}

// AdjustInput captures a manual correction. Delta may be negative; Reason is
// mandatory because adjustments are the audit trail for physical counts.
type AdjustInput struct {
	OrgID     uuid.UUID
	ProductID uuid.UUID
	Delta     int
	Reason    string
	ActorID   uuid.UUID
}

type service struct {
	repo Repository
}

// NewService wires a stock ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stock ledger repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx)}
}

func (s *service) RecordMovement(ctx context.Context, input RecordMovementInput) (*models.StockLedgerEntry, error) {
	entry, err := buildEntry(input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) RecordMovements(ctx context.Context, inputs []RecordMovementInput) ([]*models.StockLedgerEntry, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	entries := make([]*models.StockLedgerEntry, 0, len(inputs))
	for _, input := range inputs {
		entry, err := buildEntry(input)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := s.repo.CreateBatch(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *service) CurrentStock(ctx context.Context, orgID, productID uuid.UUID) (int, error) {
	if orgID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "org id required")
	}
	if productID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	return s.repo.SumByOrgProduct(ctx, orgID, productID)
}

func (s *service) AdjustStockLevel(ctx context.Context, input AdjustInput) (*models.StockLedgerEntry, error) {
	if input.OrgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "org id required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.Delta == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "adjustment delta must be non-zero")
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "adjustment reason required")
	}

	quantity := input.Delta
	direction := 1
	if quantity < 0 {
		quantity = -quantity
		direction = -1
	}

	refType := "adjustment"
	var refID *uuid.UUID
	if input.ActorID != uuid.Nil {
		actor := input.ActorID
		refID = &actor
	}

	entry := &models.StockLedgerEntry{
		OrgID:     input.OrgID,
		ProductID: input.ProductID,
		Type:      enums.StockMovementTypeAdjustment,
		Quantity:  quantity,
		Direction: direction,
		Notes:     input.Reason,
		RefType:   &refType,
		RefID:     refID,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) ListMovements(ctx context.Context, orgID, productID uuid.UUID, params pagination.Params) ([]models.StockLedgerEntry, string, error) {
	if orgID == uuid.Nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "org id required")
	}
	if productID == uuid.Nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	return s.repo.ListByProduct(ctx, orgID, productID, params)
}

func buildEntry(input RecordMovementInput) (*models.StockLedgerEntry, error) {
	if input.OrgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "org id required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.Type != enums.StockMovementTypeIn && input.Type != enums.StockMovementTypeOut {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("movement type %q must be %q or %q", input.Type, enums.StockMovementTypeIn, enums.StockMovementTypeOut))
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "movement quantity must be positive")
	}
	return &models.StockLedgerEntry{
		OrgID:     input.OrgID,
		ProductID: input.ProductID,
		Type:      input.Type,
		Quantity:  input.Quantity,
		Direction: 1,
		Notes:     input.Notes,
		RefType:   input.RefType,
		RefID:     input.RefID,
	}, nil
}
