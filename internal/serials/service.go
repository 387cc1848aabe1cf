package serials

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockbill-backend/pkg/db"
	"github.com/angelmondragon/stockbill-backend/pkg/db/models"
	"github.com/angelmondragon/stockbill-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/stockbill-backend/pkg/errors"
)

// Service owns the serial unit lifecycle: available -> reserved -> used, with
// reserved -> available as the only way back. Reserve, Release and Consume are
// meant to run inside the caller's transaction via WithTx so the status flip
// and the link rows commit or roll back together.
type Service interface {
	WithTx(tx *gorm.DB) Service
	RegisterSerials(ctx context.Context, input RegisterInput) ([]*models.ProductSerial, error)
	LookupByNumbers(ctx context.Context, orgID, productID uuid.UUID, numbers []string) (map[string]*models.ProductSerial, error)
	AvailableCount(ctx context.Context, orgID, productID uuid.UUID) (int64, error)
	Reserve(ctx context.Context, input ReserveInput) error
	ReleaseByInvoiceItems(ctx context.Context, invoiceItemIDs []uuid.UUID) error
	ConsumeByInvoiceItems(ctx context.Context, invoiceItemIDs []uuid.UUID, usedAt time.Time) (int, error)
}

// RegisterInput creates new serial units, normally during purchase bill posting.
type RegisterInput struct {
	OrgID     uuid.UUID
	ProductID uuid.UUID
	Numbers   []string
}

// ReserveInput pins specific serial numbers to an invoice item.
type ReserveInput struct {
	OrgID         uuid.UUID
	ProductID     uuid.UUID
	InvoiceItemID uuid.UUID
	Numbers       []string
}

type service struct {
	repo Repository
}

// NewService wires a serial service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("serial repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx)}
}

func (s *service) RegisterSerials(ctx context.Context, input RegisterInput) ([]*models.ProductSerial, error) {
	if input.OrgID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "org id required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	numbers, err := normalizeNumbers(input.Numbers)
	if err != nil {
		return nil, err
	}

	serials := make([]*models.ProductSerial, 0, len(numbers))
	for _, number := range numbers {
		serials = append(serials, &models.ProductSerial{
			OrgID:        input.OrgID,
			ProductID:    input.ProductID,
			SerialNumber: number,
			Status:       enums.SerialStatusAvailable,
		})
	}
	if err := s.repo.CreateBatch(ctx, serials); err != nil {
		if db.IsUniqueViolation(err, "uq_serial_org_product_number") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeSerialConflict, err, "serial number already registered for this product")
		}
		return nil, err
	}
	return serials, nil
}

func (s *service) LookupByNumbers(ctx context.Context, orgID, productID uuid.UUID, numbers []string) (map[string]*models.ProductSerial, error) {
	normalized, err := normalizeNumbers(numbers)
	if err != nil {
		return nil, err
	}
	serials, err := s.repo.FindByNumbers(ctx, orgID, productID, normalized)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*models.ProductSerial, len(serials))
	for i := range serials {
		out[serials[i].SerialNumber] = &serials[i]
	}
	return out, nil
}

func (s *service) AvailableCount(ctx context.Context, orgID, productID uuid.UUID) (int64, error) {
	return s.repo.CountByStatus(ctx, orgID, productID, enums.SerialStatusAvailable)
}

func (s *service) Reserve(ctx context.Context, input ReserveInput) error {
	if input.InvoiceItemID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "invoice item id required")
	}
	numbers, err := normalizeNumbers(input.Numbers)
	if err != nil {
		return err
	}

	found, err := s.LookupByNumbers(ctx, input.OrgID, input.ProductID, numbers)
	if err != nil {
		return err
	}
	if len(found) != len(numbers) {
		missing := make([]string, 0)
		for _, number := range numbers {
			if _, ok := found[number]; !ok {
				missing = append(missing, number)
			}
		}
		return pkgerrors.New(pkgerrors.CodeSerialConflict, "unknown serial numbers").
			WithDetails(map[string]any{"serial_numbers": missing})
	}

	serialIDs := make([]uuid.UUID, 0, len(numbers))
	for _, number := range numbers {
		serialIDs = append(serialIDs, found[number].ID)
	}

	affected, err := s.repo.UpdateStatus(ctx, serialIDs, enums.SerialStatusAvailable, enums.SerialStatusReserved)
	if err != nil {
		return err
	}
	if affected != int64(len(serialIDs)) {
		// Another invoice won the race for at least one unit; the caller's
		// transaction rolls back any flips that did land.
		return pkgerrors.New(pkgerrors.CodeSerialConflict,
			fmt.Sprintf("%d of %d serials are no longer available", int64(len(serialIDs))-affected, len(serialIDs)))
	}

	links := make([]*models.InvoiceItemSerial, 0, len(numbers))
	for _, number := range numbers {
		links = append(links, &models.InvoiceItemSerial{
			InvoiceItemID: input.InvoiceItemID,
			SerialID:      found[number].ID,
			SerialNumber:  number,
			Status:        enums.LinkSerialStatusReserved,
		})
	}
	if err := s.repo.CreateLinks(ctx, links); err != nil {
		if db.IsUniqueViolation(err, "uq_link_serial") {
			return pkgerrors.Wrap(pkgerrors.CodeSerialConflict, err, "serial already linked to another invoice")
		}
		return err
	}
	return nil
}

func (s *service) ReleaseByInvoiceItems(ctx context.Context, invoiceItemIDs []uuid.UUID) error {
	links, err := s.repo.FindLinksByInvoiceItems(ctx, invoiceItemIDs)
	if err != nil {
		return err
	}
	if len(links) == 0 {
		return nil
	}

	serialIDs := make([]uuid.UUID, 0, len(links))
	linkIDs := make([]uuid.UUID, 0, len(links))
	for _, link := range links {
		if link.Status != enums.LinkSerialStatusReserved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot release a consumed serial")
		}
		serialIDs = append(serialIDs, link.SerialID)
		linkIDs = append(linkIDs, link.ID)
	}

	affected, err := s.repo.UpdateStatus(ctx, serialIDs, enums.SerialStatusReserved, enums.SerialStatusAvailable)
	if err != nil {
		return err
	}
	if affected != int64(len(serialIDs)) {
		return pkgerrors.New(pkgerrors.CodeSerialConflict, "serial states changed during release")
	}
	return s.repo.DeleteLinks(ctx, linkIDs)
}

// ConsumeByInvoiceItems flips every reserved serial on the given items to used.
// It returns the number of serials consumed so posting can cross-check against
// the invoice's serial-tracked quantities.
func (s *service) ConsumeByInvoiceItems(ctx context.Context, invoiceItemIDs []uuid.UUID, usedAt time.Time) (int, error) {
	links, err := s.repo.FindLinksByInvoiceItems(ctx, invoiceItemIDs)
	if err != nil {
		return 0, err
	}
	if len(links) == 0 {
		return 0, nil
	}

	serialIDs := make([]uuid.UUID, 0, len(links))
	linkIDs := make([]uuid.UUID, 0, len(links))
	for _, link := range links {
		if link.Status != enums.LinkSerialStatusReserved {
			return 0, pkgerrors.New(pkgerrors.CodeStateConflict, "serial link already consumed")
		}
		serialIDs = append(serialIDs, link.SerialID)
		linkIDs = append(linkIDs, link.ID)
	}

	affected, err := s.repo.UpdateStatus(ctx, serialIDs, enums.SerialStatusReserved, enums.SerialStatusUsed)
	if err != nil {
		return 0, err
	}
	if affected != int64(len(serialIDs)) {
		return 0, pkgerrors.New(pkgerrors.CodeSerialConflict,
			fmt.Sprintf("expected %d reserved serials, flipped %d", len(serialIDs), affected))
	}

	marked, err := s.repo.MarkLinksUsed(ctx, linkIDs, usedAt)
	if err != nil {
		return 0, err
	}
	if marked != int64(len(linkIDs)) {
		return 0, pkgerrors.New(pkgerrors.CodeSerialConflict, "serial links changed during consume")
	}
	return int(affected), nil
}

func normalizeNumbers(numbers []string) ([]string, error) {
	if len(numbers) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one serial number required")
	}
	seen := make(map[string]bool, len(numbers))
	out := make([]string, 0, len(numbers))
	for _, raw := range numbers {
		number := strings.TrimSpace(raw)
		if number == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "serial number cannot be blank")
		}
		if seen[number] {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("duplicate serial number %q", number))
		}
		seen[number] = true
		out = append(out, number)
	}
	return out, nil
}
