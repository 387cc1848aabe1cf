package gst

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/stockbill-backend/pkg/enums"
)

// TaxContext is the slice of a party's profile the engine needs.
type TaxContext struct {
	StateCode string
	TaxStatus enums.TaxStatus
}

// LineItem is one GST-inclusive invoice line.
type LineItem struct {
	LineTotal decimal.Decimal
	TaxRate   decimal.Decimal
	HSNCode   string
}

// LineResult carries the per-line breakdown, already rounded to 2 decimals.
type LineResult struct {
	HSNCode       string          `json:"hsn_sac_code"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	TaxableAmount decimal.Decimal `json:"taxable_amount"`
	CGST          decimal.Decimal `json:"cgst_amount"`
	SGST          decimal.Decimal `json:"sgst_amount"`
	IGST          decimal.Decimal `json:"igst_amount"`
}

// Result is the invoice-level breakdown. Totals are sums of the already-rounded
// per-line amounts; the rate fields are the maximum rate across lines, for
// display only.
type Result struct {
	SupplyType   enums.SupplyType `json:"supply_type"`
	Lines        []LineResult     `json:"lines"`
	TotalTaxable decimal.Decimal  `json:"total_taxable"`
	TotalCGST    decimal.Decimal  `json:"total_cgst"`
	TotalSGST    decimal.Decimal  `json:"total_sgst"`
	TotalIGST    decimal.Decimal  `json:"total_igst"`
	GrandTotal   decimal.Decimal  `json:"grand_total"`
	CGSTRate     decimal.Decimal  `json:"cgst_rate"`
	SGSTRate     decimal.Decimal  `json:"sgst_rate"`
	IGSTRate     decimal.Decimal  `json:"igst_rate"`
}

var (
	one     = decimal.NewFromInt(1)
	two     = decimal.NewFromInt(2)
	hundred = decimal.NewFromInt(100)
)

// ClassifySupply decides the supply type. First match wins; a missing state
// code on either side falls through to interstate as the defensive default.
func ClassifySupply(org TaxContext, customer *TaxContext) enums.SupplyType {
	if org.TaxStatus.IsSEZ() || (customer != nil && customer.TaxStatus.IsSEZ()) {
		return enums.SupplyTypeZeroRated
	}
	if org.TaxStatus == enums.TaxStatusUnregistered || org.TaxStatus == enums.TaxStatusConsumer {
		return enums.SupplyTypeExempt
	}
	if customer != nil && org.StateCode != "" && customer.StateCode != "" &&
		org.StateCode == customer.StateCode {
		return enums.SupplyTypeIntrastate
	}
	return enums.SupplyTypeInterstate
}

// Calculate produces the full tax breakdown for a set of GST-inclusive lines.
// Rounding is applied per line before aggregation; totals must remain the sum
// of the rounded lines so recomputing an existing invoice is byte-stable.
func Calculate(org TaxContext, customer *TaxContext, lines []LineItem) Result {
	supplyType := ClassifySupply(org, customer)

	result := Result{
		SupplyType: supplyType,
		Lines:      make([]LineResult, 0, len(lines)),
	}

	for _, line := range lines {
		lr := calculateLine(supplyType, line)
		result.Lines = append(result.Lines, lr)

		result.TotalTaxable = result.TotalTaxable.Add(lr.TaxableAmount)
		result.TotalCGST = result.TotalCGST.Add(lr.CGST)
		result.TotalSGST = result.TotalSGST.Add(lr.SGST)
		result.TotalIGST = result.TotalIGST.Add(lr.IGST)
		result.GrandTotal = result.GrandTotal.Add(line.LineTotal.Round(2))

		if supplyType.Taxed() && line.TaxRate.GreaterThan(decimal.Zero) {
			rate := line.TaxRate
			switch supplyType {
			case enums.SupplyTypeIntrastate:
				half := rate.Div(two)
				if half.GreaterThan(result.CGSTRate) {
					result.CGSTRate = half
					result.SGSTRate = half
				}
			case enums.SupplyTypeInterstate:
				if rate.GreaterThan(result.IGSTRate) {
					result.IGSTRate = rate
				}
			}
		}
	}

	return result
}

func calculateLine(supplyType enums.SupplyType, line LineItem) LineResult {
	lr := LineResult{
		HSNCode: line.HSNCode,
		TaxRate: line.TaxRate,
	}

	lineTotal := line.LineTotal.Round(2)

	if !supplyType.Taxed() || !line.TaxRate.GreaterThan(decimal.Zero) {
		lr.TaxableAmount = lineTotal
		return lr
	}

	// Back-calculate the taxable base from the inclusive total, rounding the
	// base so base + tax reproduces the line total exactly.
	divisor := one.Add(line.TaxRate.Div(hundred))
	taxable := lineTotal.Div(divisor).Round(2)
	tax := lineTotal.Sub(taxable)

	lr.TaxableAmount = taxable

	switch supplyType {
	case enums.SupplyTypeIntrastate:
		// cgst + sgst must equal tax even when the half does not round cleanly.
		cgst := tax.Div(two).Round(2)
		lr.CGST = cgst
		lr.SGST = tax.Sub(cgst)
	case enums.SupplyTypeInterstate:
		lr.IGST = tax
	}

	return lr
}
