package purchases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockbill-backend/internal/catalog"
	"github.com/angelmondragon/stockbill-backend/internal/serials"
	"github.com/angelmondragon/stockbill-backend/internal/stockledger"
	"github.com/angelmondragon/stockbill-backend/pkg/db/models"
	"github.com/angelmondragon/stockbill-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/stockbill-backend/pkg/errors"
	"github.com/angelmondragon/stockbill-backend/pkg/metrics"
	"github.com/angelmondragon/stockbill-backend/pkg/pagination"
)

const postingWorkflow = "purchase_bill_post"

// RefTypePurchaseBill tags stock ledger rows written by bill posting.
const RefTypePurchaseBill = "purchase_bill"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service drives the purchase bill lifecycle: draft -> approved -> posted.
// Posting is the only operation that touches stock; it appends in-movements
// and registers serial units in one transaction.
type Service interface {
	CreateDraft(ctx context.Context, input CreateBillInput) (*models.PurchaseBill, error)
	GetBill(ctx context.Context, orgID, billID uuid.UUID) (*models.PurchaseBill, error)
	ListBills(ctx context.Context, orgID uuid.UUID, params pagination.Params) ([]models.PurchaseBill, string, error)
	Approve(ctx context.Context, input ApproveInput) (*models.PurchaseBill, error)
	Post(ctx context.Context, input PostInput) (*models.PurchaseBill, error)
}

type service struct {
	tx      txRunner
	repo    Repository
	catalog catalog.Service
	ledger  stockledger.Service
	serials serials.Service
	posting *metrics.PostingMetrics
}

// NewService wires the purchase workflow with its collaborators.
func NewService(
	tx txRunner,
	repo Repository,
	catalogSvc catalog.Service,
	ledgerSvc stockledger.Service,
	serialSvc serials.Service,
	posting *metrics.PostingMetrics,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("purchase bill repository required")
	}
	if catalogSvc == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("stock ledger service required")
	}
	if serialSvc == nil {
		return nil, fmt.Errorf("serial service required")
	}
	return &service{
		tx:      tx,
		repo:    repo,
		catalog: catalogSvc,
		ledger:  ledgerSvc,
		serials: serialSvc,
		posting: posting,
	}, nil
}

func (s *service) CreateDraft(ctx context.Context, input CreateBillInput) (*models.PurchaseBill, error) {
	if input.OrgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "org id required")
	}
	if strings.TrimSpace(input.SupplierName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier name required")
	}
	if strings.TrimSpace(input.BillNumber) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bill number required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase bill requires at least one item")
	}

	items := make([]models.PurchaseBillItem, 0, len(input.Items))
	for i, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d: product id required", i+1))
		}
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d: quantity must be positive", i+1))
		}
		items = append(items, models.PurchaseBillItem{
			ProductID:     item.ProductID,
			Quantity:      item.Quantity,
			UnitCost:      item.UnitCost,
			HSNCode:       strings.TrimSpace(item.HSNCode),
			GSTRate:       item.GSTRate,
			SerialNumbers: item.SerialNumbers,
		})
	}

	bill := &models.PurchaseBill{
		OrgID:        input.OrgID,
		SupplierName: strings.TrimSpace(input.SupplierName),
		BillNumber:   strings.TrimSpace(input.BillNumber),
		Status:       enums.PurchaseBillStatusDraft,
		Items:        items,
	}
	if err := s.repo.Create(ctx, bill); err != nil {
		return nil, err
	}
	return bill, nil
}

func (s *service) GetBill(ctx context.Context, orgID, billID uuid.UUID) (*models.PurchaseBill, error) {
	return s.repo.FindByID(ctx, orgID, billID)
}

func (s *service) ListBills(ctx context.Context, orgID uuid.UUID, params pagination.Params) ([]models.PurchaseBill, string, error) {
	if orgID == uuid.Nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "org id required")
	}
	return s.repo.List(ctx, orgID, params)
}

// Approve validates every line against the HSN master and the catalog, then
// locks the bill's content by moving it to approved. Findings are aggregated
// so the caller sees all problems in one round trip.
func (s *service) Approve(ctx context.Context, input ApproveInput) (*models.PurchaseBill, error) {
	bill, err := s.repo.FindByID(ctx, input.OrgID, input.BillID)
	if err != nil {
		return nil, err
	}
	if bill.Status != enums.PurchaseBillStatusDraft {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("purchase bill is %s, only draft bills can be approved", bill.Status))
	}

	lineErrors, err := s.validateLines(ctx, bill)
	if err != nil {
		return nil, err
	}
	if len(lineErrors) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase bill has invalid lines").
			WithDetails(map[string]any{"line_errors": lineErrors})
	}

	now := time.Now().UTC()
	updates := map[string]any{"approved_at": now}
	if input.ActorID != uuid.Nil {
		updates["approved_by"] = input.ActorID
	}
	affected, err := s.repo.TransitionStatus(ctx, input.OrgID, input.BillID,
		enums.PurchaseBillStatusDraft, enums.PurchaseBillStatusApproved, updates)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "purchase bill changed state during approval")
	}
	return s.repo.FindByID(ctx, input.OrgID, input.BillID)
}

func (s *service) validateLines(ctx context.Context, bill *models.PurchaseBill) ([]LineError, error) {
	productIDs := make([]uuid.UUID, 0, len(bill.Items))
	for _, item := range bill.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	products, err := s.catalog.GetProducts(ctx, bill.OrgID, productIDs)
	if err != nil {
		return nil, err
	}

	var lineErrors []LineError
	for i, item := range bill.Items {
		line := i + 1
		product, ok := products[item.ProductID]
		if !ok {
			lineErrors = append(lineErrors, LineError{Line: line, Message: "product not found"})
			continue
		}
		if err := s.catalog.ValidateHSN(ctx, item.HSNCode, item.GSTRate); err != nil {
			if appErr := pkgerrors.As(err); appErr != nil && appErr.Code() == pkgerrors.CodeValidation {
				lineErrors = append(lineErrors, LineError{Line: line, Message: appErr.Message()})
				continue
			}
			return nil, err
		}
		if product.SerialTracked && len(item.SerialNumbers) > 0 && len(item.SerialNumbers) != item.Quantity {
			lineErrors = append(lineErrors, LineError{
				Line:    line,
				Message: fmt.Sprintf("%d serial numbers supplied for quantity %d", len(item.SerialNumbers), item.Quantity),
			})
		}
		if !product.SerialTracked && len(item.SerialNumbers) > 0 {
			lineErrors = append(lineErrors, LineError{Line: line, Message: "serial numbers supplied for a non-serial-tracked product"})
		}
	}
	return lineErrors, nil
}

// Post claims the approved bill and, in the same transaction, appends one
// in-movement per line and registers serial units for serial-tracked products.
func (s *service) Post(ctx context.Context, input PostInput) (*models.PurchaseBill, error) {
	started := time.Now()

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ledgerSvc := s.ledger.WithTx(tx)
		serialSvc := s.serials.WithTx(tx)
		catalogSvc := s.catalog.WithTx(tx)

		now := time.Now().UTC()
		updates := map[string]any{"posted_at": now}
		if input.ActorID != uuid.Nil {
			updates["posted_by"] = input.ActorID
		}
		affected, err := repo.TransitionStatus(ctx, input.OrgID, input.BillID,
			enums.PurchaseBillStatusApproved, enums.PurchaseBillStatusPosted, updates)
		if err != nil {
			return err
		}
		if affected == 0 {
			bill, ferr := repo.FindByID(ctx, input.OrgID, input.BillID)
			if ferr != nil {
				return ferr
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("purchase bill is %s, only approved bills can be posted", bill.Status))
		}

		bill, err := repo.FindByID(ctx, input.OrgID, input.BillID)
		if err != nil {
			return err
		}

		productIDs := make([]uuid.UUID, 0, len(bill.Items))
		for _, item := range bill.Items {
			productIDs = append(productIDs, item.ProductID)
		}
		products, err := catalogSvc.GetProducts(ctx, bill.OrgID, productIDs)
		if err != nil {
			return err
		}

		refType := RefTypePurchaseBill
		billID := bill.ID
		movements := make([]stockledger.RecordMovementInput, 0, len(bill.Items))
		for _, item := range bill.Items {
			movements = append(movements, stockledger.RecordMovementInput{
				OrgID:     bill.OrgID,
				ProductID: item.ProductID,
				Type:      enums.StockMovementTypeIn,
				Quantity:  item.Quantity,
				Notes:     fmt.Sprintf("purchase bill %s", bill.BillNumber),
				RefType:   &refType,
				RefID:     &billID,
			})
		}
		if _, err := ledgerSvc.RecordMovements(ctx, movements); err != nil {
			return err
		}

		for i, item := range bill.Items {
			product, ok := products[item.ProductID]
			if !ok {
				return pkgerrors.New(pkgerrors.CodeNotFound,
					fmt.Sprintf("line %d: product not found", i+1))
			}
			if !product.SerialTracked {
				continue
			}
			numbers := item.SerialNumbers
			if len(numbers) == 0 {
				numbers = generateSerialNumbers(bill.BillNumber, i+1, item.Quantity)
			}
			if _, err := serialSvc.RegisterSerials(ctx, serials.RegisterInput{
				OrgID:     bill.OrgID,
				ProductID: item.ProductID,
				Numbers:   numbers,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.recordFailure(err)
		return nil, err
	}

	s.posting.ObserveDuration(postingWorkflow, time.Since(started))
	s.posting.IncSuccess(postingWorkflow)
	return s.repo.FindByID(ctx, input.OrgID, input.BillID)
}

func (s *service) recordFailure(err error) {
	reason := "internal"
	if appErr := pkgerrors.As(err); appErr != nil {
		reason = string(appErr.Code())
	}
	s.posting.IncFailure(postingWorkflow, reason)
}

func generateSerialNumbers(billNumber string, line, quantity int) []string {
	numbers := make([]string, 0, quantity)
	for n := 1; n <= quantity; n++ {
		numbers = append(numbers, fmt.Sprintf("%s-%d-%d", billNumber, line, n))
	}
	return numbers
}
