package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/stockbill-backend/api/responses"
	"github.com/angelmondragon/stockbill-backend/api/validators"
	"github.com/angelmondragon/stockbill-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/stockbill-backend/pkg/errors"
	"github.com/angelmondragon/stockbill-backend/pkg/gst"
	"github.com/angelmondragon/stockbill-backend/pkg/logger"
)

type taxPartyRequest struct {
	StateCode string `json:"state_code"`
	TaxStatus string `json:"tax_status" validate:"required"`
}

type taxLineRequest struct {
	LineTotal decimal.Decimal `json:"line_total" validate:"required"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
	HSNCode   string          `json:"hsn_sac_code"`
}

type taxCalculateRequest struct {
	Seller   taxPartyRequest  `json:"seller" validate:"required"`
	Customer *taxPartyRequest `json:"customer"`
	Lines    []taxLineRequest `json:"lines" validate:"required,min=1,dive"`
}

func (req taxPartyRequest) toContext() (gst.TaxContext, error) {
	status, err := enums.ParseTaxStatus(req.TaxStatus)
	if err != nil {
		return gst.TaxContext{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tax status")
	}
	return gst.TaxContext{StateCode: req.StateCode, TaxStatus: status}, nil
}

// TaxCalculate runs the GST engine over ad-hoc lines without touching any
// invoice, so clients can preview a breakdown.
func TaxCalculate(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req taxCalculateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		seller, err := req.Seller.toContext()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var customer *gst.TaxContext
		if req.Customer != nil {
			parsed, err := req.Customer.toContext()
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			customer = &parsed
		}

		lines := make([]gst.LineItem, 0, len(req.Lines))
		for _, line := range req.Lines {
			lines = append(lines, gst.LineItem{
				LineTotal: line.LineTotal,
				TaxRate:   line.TaxRate,
				HSNCode:   line.HSNCode,
			})
		}

		responses.WriteSuccess(w, gst.Calculate(seller, customer, lines))
	}
}
