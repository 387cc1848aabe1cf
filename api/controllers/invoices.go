package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/stockbill-backend/api/responses"
	"github.com/angelmondragon/stockbill-backend/api/validators"
	"github.com/angelmondragon/stockbill-backend/internal/invoices"
	"github.com/angelmondragon/stockbill-backend/pkg/logger"
)

type saveInvoiceRequest struct {
	CustomerID    *uuid.UUID           `json:"customer_id"`
	InvoiceNumber string               `json:"invoice_number"`
	Items         []invoiceItemRequest `json:"items" validate:"dive"`
}

type invoiceItemRequest struct {
	ProductID     uuid.UUID        `json:"product_id" validate:"required"`
	Quantity      int              `json:"quantity" validate:"required,gt=0"`
	UnitPrice     *decimal.Decimal `json:"unit_price"`
	SerialNumbers []string         `json:"serial_numbers"`
}

func toItemInputs(items []invoiceItemRequest) []invoices.InvoiceItemInput {
	inputs := make([]invoices.InvoiceItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, invoices.InvoiceItemInput{
			ProductID:     item.ProductID,
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			SerialNumbers: item.SerialNumbers,
		})
	}
	return inputs
}

// InvoiceCreate saves a draft. Drafts tolerate every governance and stock
// problem; only finalize enforces them.
func InvoiceCreate(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := orgFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req saveInvoiceRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.CreateDraft(r.Context(), invoices.SaveDraftInput{
			OrgID:         orgID,
			CustomerID:    req.CustomerID,
			InvoiceNumber: req.InvoiceNumber,
			Items:         toItemInputs(req.Items),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, invoice)
	}
}

// InvoiceUpdate replaces the item set of an existing draft.
func InvoiceUpdate(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := orgFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		invoiceID, err := uuidParam(r, "invoiceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req saveInvoiceRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.UpdateDraft(r.Context(), invoices.UpdateDraftInput{
			OrgID:      orgID,
			InvoiceID:  invoiceID,
			CustomerID: req.CustomerID,
			Items:      toItemInputs(req.Items),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, invoice)
	}
}

func InvoiceDetail(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := orgFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		invoiceID, err := uuidParam(r, "invoiceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.GetInvoice(r.Context(), orgID, invoiceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, invoice)
	}
}

func InvoiceList(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := orgFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, nextCursor, err := svc.ListInvoices(r.Context(), orgID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"invoices":    list,
			"next_cursor": nextCursor,
		})
	}
}

// InvoiceValidateItems reports every finding on the draft without mutating it,
// so the UI can surface problems before the user attempts finalize.
func InvoiceValidateItems(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := orgFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		invoiceID, err := uuidParam(r, "invoiceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		issues, err := svc.ValidateItems(r.Context(), orgID, invoiceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"valid":  len(issues) == 0,
			"issues": issues,
		})
	}
}

// InvoiceFinalize reserves serials and snapshots the GST breakdown.
func InvoiceFinalize(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := postingInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.Finalize(r.Context(), invoices.FinalizeInput(input))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, invoice)
	}
}

// InvoicePost consumes stock and serials for a finalized invoice.
func InvoicePost(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := postingInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.Post(r.Context(), invoices.PostInput(input))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, invoice)
	}
}

// InvoiceReopen takes a finalized invoice back to draft, releasing its
// serial reservations and clearing the tax snapshot.
func InvoiceReopen(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := postingInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.ReopenToDraft(r.Context(), invoices.ReopenInput(input))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, invoice)
	}
}

type invoiceActionInput struct {
	OrgID     uuid.UUID
	InvoiceID uuid.UUID
	ActorID   uuid.UUID
}

func postingInput(r *http.Request) (invoiceActionInput, error) {
	orgID, err := orgFromRequest(r)
	if err != nil {
		return invoiceActionInput{}, err
	}
	actorID, err := actorFromRequest(r)
	if err != nil {
		return invoiceActionInput{}, err
	}
	invoiceID, err := uuidParam(r, "invoiceId")
	if err != nil {
		return invoiceActionInput{}, err
	}
	return invoiceActionInput{OrgID: orgID, InvoiceID: invoiceID, ActorID: actorID}, nil
}
