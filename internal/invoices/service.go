package invoices

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockbill-backend/internal/catalog"
	"github.com/angelmondragon/stockbill-backend/internal/serials"
	"github.com/angelmondragon/stockbill-backend/internal/stockledger"
	"github.com/angelmondragon/stockbill-backend/pkg/config"
	"github.com/angelmondragon/stockbill-backend/pkg/db/models"
	"github.com/angelmondragon/stockbill-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/stockbill-backend/pkg/errors"
	"github.com/angelmondragon/stockbill-backend/pkg/gst"
	"github.com/angelmondragon/stockbill-backend/pkg/metrics"
	"github.com/angelmondragon/stockbill-backend/pkg/pagination"
)

const postingWorkflow = "invoice_post"

// RefTypeInvoice tags stock ledger rows written by invoice posting.
const RefTypeInvoice = "invoice"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service drives the invoice lifecycle: draft -> finalized -> posted, with the
// single backward step finalized -> draft. Drafts save anything; finalize is
// the validation gate; posting consumes stock and serials atomically.
type Service interface {
	CreateDraft(ctx context.Context, input SaveDraftInput) (*models.Invoice, error)
	UpdateDraft(ctx context.Context, input UpdateDraftInput) (*models.Invoice, error)
	GetInvoice(ctx context.Context, orgID, invoiceID uuid.UUID) (*models.Invoice, error)
	ListInvoices(ctx context.Context, orgID uuid.UUID, params pagination.Params) ([]models.Invoice, string, error)
	ValidateItems(ctx context.Context, orgID, invoiceID uuid.UUID) ([]ItemIssue, error)
	Finalize(ctx context.Context, input FinalizeInput) (*models.Invoice, error)
	Post(ctx context.Context, input PostInput) (*models.Invoice, error)
	ReopenToDraft(ctx context.Context, input ReopenInput) (*models.Invoice, error)
}

type service struct {
	tx      txRunner
	repo    Repository
	catalog catalog.Service
	ledger  stockledger.Service
	serials serials.Service
	posting *metrics.PostingMetrics
	cfg     config.InvoicingConfig
}

// NewService wires the invoice workflow with its collaborators.
func NewService(
	tx txRunner,
	repo Repository,
	catalogSvc catalog.Service,
	ledgerSvc stockledger.Service,
	serialSvc serials.Service,
	posting *metrics.PostingMetrics,
	cfg config.InvoicingConfig,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("invoice repository required")
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
	if cfg.NumberPrefix == "" {
		cfg.NumberPrefix = "INV"
	}
	return &service{
		tx:      tx,
		repo:    repo,
		catalog: catalogSvc,
		ledger:  ledgerSvc,
		serials: serialSvc,
		posting: posting,
		cfg:     cfg,
	}, nil
}

func (s *service) CreateDraft(ctx context.Context, input SaveDraftInput) (*models.Invoice, error) {
	if input.OrgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "org id required")
	}
	items, err := s.buildItems(ctx, input.OrgID, input.Items)
	if err != nil {
		return nil, err
	}

	number := strings.TrimSpace(input.InvoiceNumber)
	if number == "" {
		number = fmt.Sprintf("%s-%s", s.cfg.NumberPrefix, strings.ToUpper(uuid.NewString()[:8]))
	}

	invoice := &models.Invoice{
		OrgID:         input.OrgID,
		CustomerID:    input.CustomerID,
		InvoiceNumber: number,
		Status:        enums.InvoiceStatusDraft,
		Items:         items,
	}
	if err := s.repo.Create(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *service) UpdateDraft(ctx context.Context, input UpdateDraftInput) (*models.Invoice, error) {
	invoice, err := s.repo.FindByID(ctx, input.OrgID, input.InvoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status != enums.InvoiceStatusDraft {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("invoice is %s, only drafts can be edited", invoice.Status))
	}

	items, err := s.buildItems(ctx, input.OrgID, input.Items)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceItems(ctx, invoice.ID, input.CustomerID, items); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, input.OrgID, input.InvoiceID)
}

// buildItems shapes draft lines. Only structural rules apply here; governance
// and stock problems are deliberately tolerated until finalize.
func (s *service) buildItems(ctx context.Context, orgID uuid.UUID, inputs []InvoiceItemInput) ([]models.InvoiceItem, error) {
	if len(inputs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invoice requires at least one item")
	}

	productIDs := make([]uuid.UUID, 0, len(inputs))
	for _, input := range inputs {
		productIDs = append(productIDs, input.ProductID)
	}
	products, err := s.catalog.GetProducts(ctx, orgID, productIDs)
	if err != nil {
		return nil, err
	}

	items := make([]models.InvoiceItem, 0, len(inputs))
	for i, input := range inputs {
		line := i + 1
		if input.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d: product id required", line))
		}

		quantity := input.Quantity
		if quantity == 0 && len(input.SerialNumbers) > 0 {
			quantity = len(input.SerialNumbers)
		}
		if quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d: quantity must be positive", line))
		}

		unitPrice := decimal.Zero
		if input.UnitPrice != nil {
			unitPrice = *input.UnitPrice
		} else if product, ok := products[input.ProductID]; ok {
			unitPrice = product.SellingPrice
		}
		if unitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d: unit price cannot be negative", line))
		}

		items = append(items, models.InvoiceItem{
			ProductID:     input.ProductID,
			Quantity:      quantity,
			UnitPrice:     unitPrice,
			LineTotal:     unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
			SerialNumbers: input.SerialNumbers,
		})
	}
	return items, nil
}

func (s *service) GetInvoice(ctx context.Context, orgID, invoiceID uuid.UUID) (*models.Invoice, error) {
	return s.repo.FindByID(ctx, orgID, invoiceID)
}

func (s *service) ListInvoices(ctx context.Context, orgID uuid.UUID, params pagination.Params) ([]models.Invoice, string, error) {
	if orgID == uuid.Nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "org id required")
	}
	return s.repo.List(ctx, orgID, params)
}

// ValidateItems reports every finding across the invoice in one pass, for
// draft-time UX. Finalize runs the same checks in blocking mode.
func (s *service) ValidateItems(ctx context.Context, orgID, invoiceID uuid.UUID) ([]ItemIssue, error) {
	invoice, err := s.repo.FindByID(ctx, orgID, invoiceID)
	if err != nil {
		return nil, err
	}
	return s.collectIssues(ctx, s.catalog, s.ledger, s.serials, invoice)
}

func (s *service) collectIssues(
	ctx context.Context,
	catalogSvc catalog.Service,
	ledgerSvc stockledger.Service,
	serialSvc serials.Service,
	invoice *models.Invoice,
) ([]ItemIssue, error) {
	productIDs := make([]uuid.UUID, 0, len(invoice.Items))
	for _, item := range invoice.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	products, err := catalogSvc.GetProducts(ctx, invoice.OrgID, productIDs)
	if err != nil {
		return nil, err
	}

	var issues []ItemIssue
	for i, item := range invoice.Items {
		line := i + 1

		product, ok := products[item.ProductID]
		if !ok {
			issues = append(issues, ItemIssue{
				Line:      line,
				ProductID: item.ProductID,
				Kind:      enums.ItemIssueProductNotFound,
				Message:   "product not found",
			})
			continue
		}

		governance, err := catalogSvc.GovernanceIssues(ctx, product)
		if err != nil {
			return nil, err
		}
		for _, kind := range governance {
			issues = append(issues, ItemIssue{
				Line:      line,
				ProductID: item.ProductID,
				Kind:      kind,
				Message:   governanceMessage(kind),
			})
		}

		if product.SerialTracked {
			issues = append(issues, s.serialIssues(ctx, serialSvc, invoice.OrgID, line, item)...)
			continue
		}

		available, err := ledgerSvc.CurrentStock(ctx, invoice.OrgID, item.ProductID)
		if err != nil {
			return nil, err
		}
		if available < item.Quantity {
			availableCopy := available
			issues = append(issues, ItemIssue{
				Line:         line,
				ProductID:    item.ProductID,
				Kind:         enums.ItemIssueInsufficientStock,
				Message:      fmt.Sprintf("requested %d, %d available", item.Quantity, available),
				AvailableQty: &availableCopy,
			})
		}
	}
	return issues, nil
}

func (s *service) serialIssues(ctx context.Context, serialSvc serials.Service, orgID uuid.UUID, line int, item models.InvoiceItem) []ItemIssue {
	if len(item.SerialNumbers) != item.Quantity {
		return []ItemIssue{{
			Line:      line,
			ProductID: item.ProductID,
			Kind:      enums.ItemIssueSerialNotFound,
			Message:   fmt.Sprintf("expected %d serial numbers, got %d", item.Quantity, len(item.SerialNumbers)),
		}}
	}

	found, err := serialSvc.LookupByNumbers(ctx, orgID, item.ProductID, item.SerialNumbers)
	if err != nil {
		return []ItemIssue{{
			Line:      line,
			ProductID: item.ProductID,
			Kind:      enums.ItemIssueSerialNotFound,
			Message:   err.Error(),
		}}
	}

	var problem []string
	for _, number := range item.SerialNumbers {
		serial, ok := found[strings.TrimSpace(number)]
		if !ok || serial.Status != enums.SerialStatusAvailable {
			problem = append(problem, number)
		}
	}
	if len(problem) > 0 {
		return []ItemIssue{{
			Line:          line,
			ProductID:     item.ProductID,
			Kind:          enums.ItemIssueSerialNotFound,
			Message:       "serials unknown or not available",
			SerialNumbers: problem,
		}}
	}
	return nil
}

func governanceMessage(kind enums.ItemIssueKind) string {
	switch kind {
	case enums.ItemIssueMasterProductNotLinked:
		return "product is not linked to a master product"
	case enums.ItemIssueMasterProductNotApproved:
		return "master product has not cleared review"
	case enums.ItemIssueMasterProductMissingHSN:
		return "master product has no HSN code"
	case enums.ItemIssueMasterProductInvalidHSN:
		return "master product HSN code is unknown or inactive"
	default:
		return string(kind)
	}
}

// blockingError maps a non-empty issue list to the most specific error code:
// all-governance lists surface as GOVERNANCE_BLOCKED, stock shortages as
// INSUFFICIENT_STOCK, anything else as a plain validation failure.
func blockingError(issues []ItemIssue) error {
	allGovernance := true
	hasStock := false
	for _, issue := range issues {
		if !issue.Kind.Governance() {
			allGovernance = false
		}
		if issue.Kind == enums.ItemIssueInsufficientStock {
			hasStock = true
		}
	}

	code := pkgerrors.CodeValidation
	message := "invoice items failed validation"
	switch {
	case allGovernance:
		code = pkgerrors.CodeGovernanceBlocked
		message = "invoice blocked by master product governance"
	case hasStock:
		code = pkgerrors.CodeInsufficientStock
		message = "insufficient stock for one or more items"
	}
	return pkgerrors.New(code, message).WithDetails(map[string]any{"item_issues": issues})
}

// Finalize runs blocking validation, reserves serial units, snapshots the tax
// breakdown and moves the invoice to finalized, all in one transaction.
func (s *service) Finalize(ctx context.Context, input FinalizeInput) (*models.Invoice, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		catalogSvc := s.catalog.WithTx(tx)
		ledgerSvc := s.ledger.WithTx(tx)
		serialSvc := s.serials.WithTx(tx)

		invoice, err := repo.FindByID(ctx, input.OrgID, input.InvoiceID)
		if err != nil {
			return err
		}
		if invoice.Status != enums.InvoiceStatusDraft {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("invoice is %s, only drafts can be finalized", invoice.Status))
		}

		issues, err := s.collectIssues(ctx, catalogSvc, ledgerSvc, serialSvc, invoice)
		if err != nil {
			return err
		}
		if len(issues) > 0 {
			return blockingError(issues)
		}

		productIDs := make([]uuid.UUID, 0, len(invoice.Items))
		for _, item := range invoice.Items {
			productIDs = append(productIDs, item.ProductID)
		}
		products, err := catalogSvc.GetProducts(ctx, invoice.OrgID, productIDs)
		if err != nil {
			return err
		}

		lines := make([]gst.LineItem, 0, len(invoice.Items))
		for i := range invoice.Items {
			item := &invoice.Items[i]
			product := products[item.ProductID]

			code, rate, err := catalogSvc.ResolveHSNRate(ctx, product)
			if err != nil {
				return err
			}
			item.HSNCode = code
			item.GSTRate = rate
			item.LineTotal = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
			if err := repo.SaveItem(ctx, item); err != nil {
				return err
			}

			lines = append(lines, gst.LineItem{
				LineTotal: item.LineTotal,
				TaxRate:   rate,
				HSNCode:   code,
			})

			if product.SerialTracked {
				if err := serialSvc.Reserve(ctx, serials.ReserveInput{
					OrgID:         invoice.OrgID,
					ProductID:     item.ProductID,
					InvoiceItemID: item.ID,
					Numbers:       item.SerialNumbers,
				}); err != nil {
					return err
				}
			}
		}

		org, err := repo.FindOrg(ctx, invoice.OrgID)
		if err != nil {
			return err
		}
		orgCtx := gst.TaxContext{StateCode: org.StateCode, TaxStatus: org.TaxStatus}

		var customerCtx *gst.TaxContext
		if invoice.CustomerID != nil {
			customer, err := repo.FindCustomer(ctx, invoice.OrgID, *invoice.CustomerID)
			if err != nil {
				return err
			}
			customerCtx = &gst.TaxContext{}
			if customer.StateCode != nil {
				customerCtx.StateCode = *customer.StateCode
			}
			if customer.TaxStatus != nil {
				customerCtx.TaxStatus = *customer.TaxStatus
			}
		}

		result := gst.Calculate(orgCtx, customerCtx, lines)

		affected, err := repo.TransitionStatus(ctx, input.OrgID, input.InvoiceID,
			enums.InvoiceStatusDraft, enums.InvoiceStatusFinalized, map[string]any{
				"supply_type":   result.SupplyType,
				"total_taxable": result.TotalTaxable,
				"total_cgst":    result.TotalCGST,
				"total_sgst":    result.TotalSGST,
				"total_igst":    result.TotalIGST,
				"grand_total":   result.GrandTotal,
				"finalized_at":  time.Now().UTC(),
			})
		if err != nil {
			return err
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "invoice changed state during finalize")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, input.OrgID, input.InvoiceID)
}

// Post claims the finalized invoice and, in the same transaction, consumes its
// serial reservations and appends out-movements. Any failure rolls everything
// back, leaving the invoice finalized and its reservations intact.
func (s *service) Post(ctx context.Context, input PostInput) (*models.Invoice, error) {
	started := time.Now()

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		catalogSvc := s.catalog.WithTx(tx)
		ledgerSvc := s.ledger.WithTx(tx)
		serialSvc := s.serials.WithTx(tx)

		now := time.Now().UTC()
		updates := map[string]any{"posted_at": now}
		if input.ActorID != uuid.Nil {
			updates["posted_by"] = input.ActorID
		}
		affected, err := repo.TransitionStatus(ctx, input.OrgID, input.InvoiceID,
			enums.InvoiceStatusFinalized, enums.InvoiceStatusPosted, updates)
		if err != nil {
			return err
		}
		if affected == 0 {
			invoice, ferr := repo.FindByID(ctx, input.OrgID, input.InvoiceID)
			if ferr != nil {
				return ferr
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("invoice is %s, only finalized invoices can be posted", invoice.Status))
		}

		invoice, err := repo.FindByID(ctx, input.OrgID, input.InvoiceID)
		if err != nil {
			return err
		}

		productIDs := make([]uuid.UUID, 0, len(invoice.Items))
		for _, item := range invoice.Items {
			productIDs = append(productIDs, item.ProductID)
		}
		products, err := catalogSvc.GetProducts(ctx, invoice.OrgID, productIDs)
		if err != nil {
			return err
		}

		trackedItemIDs := make([]uuid.UUID, 0, len(invoice.Items))
		expectedSerials := 0
		refType := RefTypeInvoice
		invoiceID := invoice.ID

		for i, item := range invoice.Items {
			product, ok := products[item.ProductID]
			if !ok {
				return pkgerrors.New(pkgerrors.CodeNotFound,
					fmt.Sprintf("line %d: product not found", i+1))
			}

			if product.SerialTracked {
				trackedItemIDs = append(trackedItemIDs, item.ID)
				expectedSerials += item.Quantity
			} else {
				available, err := ledgerSvc.CurrentStock(ctx, invoice.OrgID, item.ProductID)
				if err != nil {
					return err
				}
				if available < item.Quantity {
					return pkgerrors.New(pkgerrors.CodeInsufficientStock,
						fmt.Sprintf("line %d: requested %d, %d available", i+1, item.Quantity, available)).
						WithDetails(map[string]any{"product_id": item.ProductID, "available_qty": available})
				}
			}

			if _, err := ledgerSvc.RecordMovement(ctx, stockledger.RecordMovementInput{
				OrgID:     invoice.OrgID,
				ProductID: item.ProductID,
				Type:      enums.StockMovementTypeOut,
				Quantity:  item.Quantity,
				Notes:     fmt.Sprintf("invoice %s", invoice.InvoiceNumber),
				RefType:   &refType,
				RefID:     &invoiceID,
			}); err != nil {
				return err
			}
		}

		if len(trackedItemIDs) > 0 {
			consumed, err := serialSvc.ConsumeByInvoiceItems(ctx, trackedItemIDs, now)
			if err != nil {
				return err
			}
			if consumed != expectedSerials {
				return pkgerrors.New(pkgerrors.CodeSerialConflict,
					fmt.Sprintf("expected %d reserved serials, consumed %d", expectedSerials, consumed))
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
	return s.repo.FindByID(ctx, input.OrgID, input.InvoiceID)
}

// ReopenToDraft is the single allowed backward step. It releases every serial
// reservation and clears the tax snapshot so the next finalize recomputes it.
func (s *service) ReopenToDraft(ctx context.Context, input ReopenInput) (*models.Invoice, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		serialSvc := s.serials.WithTx(tx)

		affected, err := repo.TransitionStatus(ctx, input.OrgID, input.InvoiceID,
			enums.InvoiceStatusFinalized, enums.InvoiceStatusDraft, map[string]any{
				"supply_type":   nil,
				"total_taxable": decimal.Zero,
				"total_cgst":    decimal.Zero,
				"total_sgst":    decimal.Zero,
				"total_igst":    decimal.Zero,
				"grand_total":   decimal.Zero,
				"finalized_at":  nil,
			})
		if err != nil {
			return err
		}
		if affected == 0 {
			invoice, ferr := repo.FindByID(ctx, input.OrgID, input.InvoiceID)
			if ferr != nil {
				return ferr
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("invoice is %s, only finalized invoices can reopen", invoice.Status))
		}

		invoice, err := repo.FindByID(ctx, input.OrgID, input.InvoiceID)
		if err != nil {
			return err
		}
		itemIDs := make([]uuid.UUID, 0, len(invoice.Items))
		for _, item := range invoice.Items {
			itemIDs = append(itemIDs, item.ID)
		}
		return serialSvc.ReleaseByInvoiceItems(ctx, itemIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, input.OrgID, input.InvoiceID)
}

func (s *service) recordFailure(err error) {
	reason := "internal"
	if appErr := pkgerrors.As(err); appErr != nil {
		reason = string(appErr.Code())
	}
	s.posting.IncFailure(postingWorkflow, reason)
}
