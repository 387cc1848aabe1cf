package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/stockbill-backend/api/responses"
	"github.com/angelmondragon/stockbill-backend/api/validators"
	"github.com/angelmondragon/stockbill-backend/internal/stockledger"
	"github.com/angelmondragon/stockbill-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/stockbill-backend/pkg/errors"
	"github.com/angelmondragon/stockbill-backend/pkg/logger"
)

type recordMovementRequest struct {
	ProductID uuid.UUID  `json:"product_id" validate:"required"`
	Type      string     `json:"type" validate:"required"`
	Quantity  int        `json:"quantity" validate:"required,gt=0"`
	Notes     string     `json:"notes"`
	RefType   *string    `json:"ref_type"`
	RefID     *uuid.UUID `json:"ref_id"`
}

type adjustStockRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Delta     int       `json:"delta" validate:"required"`
	Reason    string    `json:"reason" validate:"required"`
}

// StockRecordMovement appends one in/out entry to the ledger.
func StockRecordMovement(svc stockledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := orgFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req recordMovementRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		movementType, err := enums.ParseStockMovementType(req.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid movement type"))
			return
		}

		entry, err := svc.RecordMovement(r.Context(), stockledger.RecordMovementInput{
			OrgID:     orgID,
			ProductID: req.ProductID,
			Type:      movementType,
			Quantity:  req.Quantity,
			Notes:     req.Notes,
			RefType:   req.RefType,
			RefID:     req.RefID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}

// StockAdjust records a signed manual correction with a mandatory reason.
func StockAdjust(svc stockledger.Service, logg *logger.Logger) http.HandlerFunc {
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

		var req adjustStockRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.AdjustStockLevel(r.Context(), stockledger.AdjustInput{
			OrgID:     orgID,
			ProductID: req.ProductID,
			Delta:     req.Delta,
			Reason:    req.Reason,
			ActorID:   actorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}

// StockCurrent folds the ledger into the product's current on-hand quantity.
func StockCurrent(svc stockledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := orgFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := uuidParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quantity, err := svc.CurrentStock(r.Context(), orgID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"product_id": productID,
			"quantity":   quantity,
		})
	}
}

// StockLedger pages through the product's movement history, newest first.
func StockLedger(svc stockledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID, err := orgFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := uuidParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, nextCursor, err := svc.ListMovements(r.Context(), orgID, productID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"entries":     entries,
			"next_cursor": nextCursor,
		})
	}
}
