package gst

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/stockbill-backend/pkg/enums"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestClassifySupply(t *testing.T) {
	registered := func(state string) TaxContext {
		return TaxContext{StateCode: state, TaxStatus: enums.TaxStatusRegistered}
	}

	tests := []struct {
		name     string
		org      TaxContext
		customer *TaxContext
		want     enums.SupplyType
	}{
		{
			name:     "sez customer wins over matching states",
			org:      registered("27"),
			customer: &TaxContext{StateCode: "27", TaxStatus: enums.TaxStatusSEZUnit},
			want:     enums.SupplyTypeZeroRated,
		},
		{
			name:     "sez org",
			org:      TaxContext{StateCode: "27", TaxStatus: enums.TaxStatusSEZDeveloper},
			customer: &TaxContext{StateCode: "29", TaxStatus: enums.TaxStatusRegistered},
			want:     enums.SupplyTypeZeroRated,
		},
		{
			name: "unregistered org is exempt",
			org:  TaxContext{StateCode: "27", TaxStatus: enums.TaxStatusUnregistered},
			want: enums.SupplyTypeExempt,
		},
		{
			name: "consumer org is exempt",
			org:  TaxContext{StateCode: "27", TaxStatus: enums.TaxStatusConsumer},
			want: enums.SupplyTypeExempt,
		},
		{
			name:     "same state is intrastate",
			org:      registered("27"),
			customer: &TaxContext{StateCode: "27", TaxStatus: enums.TaxStatusRegistered},
			want:     enums.SupplyTypeIntrastate,
		},
		{
			name:     "different state is interstate",
			org:      registered("27"),
			customer: &TaxContext{StateCode: "29", TaxStatus: enums.TaxStatusRegistered},
			want:     enums.SupplyTypeInterstate,
		},
		{
			name:     "missing customer state defaults to interstate",
			org:      registered("27"),
			customer: &TaxContext{StateCode: "", TaxStatus: enums.TaxStatusRegistered},
			want:     enums.SupplyTypeInterstate,
		},
		{
			name: "missing customer defaults to interstate",
			org:  registered("27"),
			want: enums.SupplyTypeInterstate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifySupply(tt.org, tt.customer); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestCalculateInterstate(t *testing.T) {
	org := TaxContext{StateCode: "27", TaxStatus: enums.TaxStatusRegistered}
	customer := &TaxContext{StateCode: "29", TaxStatus: enums.TaxStatusRegistered}

	result := Calculate(org, customer, []LineItem{
		{LineTotal: dec("118"), TaxRate: dec("18"), HSNCode: "8517"},
	})

	if result.SupplyType != enums.SupplyTypeInterstate {
		t.Fatalf("expected interstate, got %s", result.SupplyType)
	}
	if !result.TotalTaxable.Equal(dec("100.00")) {
		t.Fatalf("expected taxable 100.00, got %s", result.TotalTaxable)
	}
	if !result.TotalIGST.Equal(dec("18.00")) {
		t.Fatalf("expected igst 18.00, got %s", result.TotalIGST)
	}
	if !result.TotalCGST.IsZero() || !result.TotalSGST.IsZero() {
		t.Fatalf("cgst/sgst must be zero on interstate supply")
	}
	if !result.GrandTotal.Equal(dec("118.00")) {
		t.Fatalf("expected grand total 118.00, got %s", result.GrandTotal)
	}
	if !result.IGSTRate.Equal(dec("18")) {
		t.Fatalf("expected igst display rate 18, got %s", result.IGSTRate)
	}
}

func TestCalculateIntrastateSplit(t *testing.T) {
	org := TaxContext{StateCode: "27", TaxStatus: enums.TaxStatusRegistered}
	customer := &TaxContext{StateCode: "27", TaxStatus: enums.TaxStatusRegistered}

	result := Calculate(org, customer, []LineItem{
		{LineTotal: dec("118"), TaxRate: dec("18"), HSNCode: "8517"},
	})

	if result.SupplyType != enums.SupplyTypeIntrastate {
		t.Fatalf("expected intrastate, got %s", result.SupplyType)
	}
	if !result.TotalCGST.Equal(dec("9.00")) || !result.TotalSGST.Equal(dec("9.00")) {
		t.Fatalf("expected 9.00/9.00 split, got %s/%s", result.TotalCGST, result.TotalSGST)
	}
	if !result.TotalIGST.IsZero() {
		t.Fatalf("igst must be zero on intrastate supply")
	}
	if !result.CGSTRate.Equal(dec("9")) || !result.SGSTRate.Equal(dec("9")) {
		t.Fatalf("expected display rates 9/9, got %s/%s", result.CGSTRate, result.SGSTRate)
	}
}

// Per-line rounding happens before aggregation. Three inclusive lines of 100 at
// 18% give 3 x 84.75 = 254.25, while rounding the summed base would give
// round(300/1.18) = 254.24; the engine must produce the former.
func TestCalculatePerLineRoundingBeforeAggregation(t *testing.T) {
	org := TaxContext{StateCode: "27", TaxStatus: enums.TaxStatusRegistered}
	customer := &TaxContext{StateCode: "27", TaxStatus: enums.TaxStatusRegistered}

	lines := []LineItem{
		{LineTotal: dec("100"), TaxRate: dec("18")},
		{LineTotal: dec("100"), TaxRate: dec("18")},
		{LineTotal: dec("100"), TaxRate: dec("18")},
	}

	result := Calculate(org, customer, lines)

	if !result.TotalTaxable.Equal(dec("254.25")) {
		t.Fatalf("expected per-line rounded total 254.25, got %s", result.TotalTaxable)
	}
	roundedSum := dec("300").Div(dec("1.18")).Round(2)
	if result.TotalTaxable.Equal(roundedSum) {
		t.Fatalf("engine must not round the aggregate (got %s)", result.TotalTaxable)
	}

	for _, line := range result.Lines {
		if !line.TaxableAmount.Equal(dec("84.75")) {
			t.Fatalf("expected per-line taxable 84.75, got %s", line.TaxableAmount)
		}
		total := line.TaxableAmount.Add(line.CGST).Add(line.SGST)
		if !total.Equal(dec("100.00")) {
			t.Fatalf("line must reassemble to its inclusive total, got %s", total)
		}
	}
}

func TestCalculateIntrastateHalvesAlwaysSumToTax(t *testing.T) {
	org := TaxContext{StateCode: "27", TaxStatus: enums.TaxStatusRegistered}
	customer := &TaxContext{StateCode: "27", TaxStatus: enums.TaxStatusRegistered}

	// 100 inclusive at 18%: tax = 15.25, which does not halve cleanly.
	result := Calculate(org, customer, []LineItem{
		{LineTotal: dec("100"), TaxRate: dec("18")},
	})

	line := result.Lines[0]
	tax := dec("100").Sub(line.TaxableAmount)
	if !line.CGST.Add(line.SGST).Equal(tax) {
		t.Fatalf("cgst %s + sgst %s must equal tax %s", line.CGST, line.SGST, tax)
	}
}

func TestCalculateZeroRatedAndExempt(t *testing.T) {
	sezCustomer := &TaxContext{StateCode: "29", TaxStatus: enums.TaxStatusSEZUnit}
	org := TaxContext{StateCode: "27", TaxStatus: enums.TaxStatusRegistered}

	zero := Calculate(org, sezCustomer, []LineItem{{LineTotal: dec("118"), TaxRate: dec("18")}})
	if zero.SupplyType != enums.SupplyTypeZeroRated {
		t.Fatalf("expected zero_rated, got %s", zero.SupplyType)
	}
	if !zero.TotalTaxable.Equal(dec("118.00")) {
		t.Fatalf("zero-rated taxable must equal line total, got %s", zero.TotalTaxable)
	}
	if !zero.TotalCGST.IsZero() || !zero.TotalSGST.IsZero() || !zero.TotalIGST.IsZero() {
		t.Fatalf("zero-rated supply must carry no tax")
	}

	exemptOrg := TaxContext{StateCode: "27", TaxStatus: enums.TaxStatusUnregistered}
	exempt := Calculate(exemptOrg, nil, []LineItem{{LineTotal: dec("59"), TaxRate: dec("18")}})
	if exempt.SupplyType != enums.SupplyTypeExempt {
		t.Fatalf("expected exempt, got %s", exempt.SupplyType)
	}
	if !exempt.TotalTaxable.Equal(dec("59.00")) || !exempt.GrandTotal.Equal(dec("59.00")) {
		t.Fatalf("exempt totals must pass through, got %s/%s", exempt.TotalTaxable, exempt.GrandTotal)
	}
}

func TestCalculateIsDeterministic(t *testing.T) {
	org := TaxContext{StateCode: "27", TaxStatus: enums.TaxStatusRegistered}
	customer := &TaxContext{StateCode: "29", TaxStatus: enums.TaxStatusRegistered}
	lines := []LineItem{
		{LineTotal: dec("118"), TaxRate: dec("18")},
		{LineTotal: dec("37.50"), TaxRate: dec("12")},
		{LineTotal: dec("999.99"), TaxRate: dec("5")},
	}

	first := Calculate(org, customer, lines)
	for i := 0; i < 50; i++ {
		again := Calculate(org, customer, lines)
		if !first.TotalTaxable.Equal(again.TotalTaxable) ||
			!first.TotalIGST.Equal(again.TotalIGST) ||
			!first.GrandTotal.Equal(again.GrandTotal) {
			t.Fatalf("calculation is not deterministic: %v vs %v", first, again)
		}
	}
}

func TestCalculateMaxRateForDisplay(t *testing.T) {
	org := TaxContext{StateCode: "27", TaxStatus: enums.TaxStatusRegistered}
	customer := &TaxContext{StateCode: "29", TaxStatus: enums.TaxStatusRegistered}

	result := Calculate(org, customer, []LineItem{
		{LineTotal: dec("112"), TaxRate: dec("12")},
		{LineTotal: dec("128"), TaxRate: dec("28")},
		{LineTotal: dec("105"), TaxRate: dec("5")},
	})

	if !result.IGSTRate.Equal(dec("28")) {
		t.Fatalf("display rate must be the max across lines, got %s", result.IGSTRate)
	}
}
