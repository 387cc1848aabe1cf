package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/stockbill-backend/api/responses"
	"github.com/angelmondragon/stockbill-backend/api/validators"
	"github.com/angelmondragon/stockbill-backend/internal/purchases"
	"github.com/angelmondragon/stockbill-backend/pkg/logger"
)

type createBillRequest struct {
	SupplierName string            `json:"supplier_name" validate:"required"`
	BillNumber   string            `json:"bill_number" validate:"required"`
	Items        []billItemRequest `json:"items" validate:"required,min=1,dive"`
}

type billItemRequest struct {
	ProductID     uuid.UUID       `json:"product_id" validate:"required"`
	Quantity      int             `json:"quantity" validate:"required,gt=0"`
	UnitCost      decimal.Decimal `json:"unit_cost" validate:"required"`
	HSNCode       string          `json:"hsn_code"`
	GSTRate       decimal.Decimal `json:"gst_rate"`
	SerialNumbers []string        `json:"serial_numbers"`
}

func (req createBillRequest) toInput(orgID uuid.UUID) purchases.CreateBillInput {
	input := purchases.CreateBillInput{
		OrgID:        orgID,
		SupplierName: req.SupplierName,
		BillNumber:   req.BillNumber,
		Items:        make([]purchases.BillItemInput, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, purchases.BillItemInput{
			ProductID:     item.ProductID,
			Quantity:      item.Quantity,
			UnitCost:      item.UnitCost,
			HSNCode:       item.HSNCode,
			GSTRate:       item.GSTRate,
			SerialNumbers: item.SerialNumbers,
		})
	}
	return input
}

// PurchaseBillCreate records a draft bill. Nothing is validated against the
// HSN master until approval.
func PurchaseBillCreate(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := orgFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createBillRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bill, err := svc.CreateDraft(r.Context(), req.toInput(orgID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, bill)
	}
}

func PurchaseBillDetail(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := orgFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		billID, err := uuidParam(r, "billId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bill, err := svc.GetBill(r.Context(), orgID, billID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, bill)
	}
}

func PurchaseBillList(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
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

		bills, nextCursor, err := svc.ListBills(r.Context(), orgID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"bills":       bills,
			"next_cursor": nextCursor,
		})
	}
}

// PurchaseBillApprove runs line validation and moves the draft to approved.
func PurchaseBillApprove(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := orgFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		billID, err := uuidParam(r, "billId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bill, err := svc.Approve(r.Context(), purchases.ApproveInput{
			OrgID:   orgID,
			BillID:  billID,
			ActorID: actorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, bill)
	}
}

// PurchaseBillPost writes stock and serials for an approved bill.
func PurchaseBillPost(svc purchases.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := orgFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actorID, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		billID, err := uuidParam(r, "billId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bill, err := svc.Post(r.Context(), purchases.PostInput{
			OrgID:   orgID,
			BillID:  billID,
			ActorID: actorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, bill)
	}
}
