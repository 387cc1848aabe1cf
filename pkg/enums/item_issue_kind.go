package enums

// ItemIssueKind categorizes a single invoice-item validation finding. The set
// is closed so callers can switch exhaustively instead of matching strings.
type ItemIssueKind string

const (
	ItemIssueProductNotFound           ItemIssueKind = "product_not_found"
	ItemIssueSerialNotFound            ItemIssueKind = "serial_not_found"
	ItemIssueInsufficientStock         ItemIssueKind = "insufficient_stock"
	ItemIssueMasterProductNotApproved  ItemIssueKind = "master_product_not_approved"
	ItemIssueMasterProductMissingHSN   ItemIssueKind = "master_product_missing_hsn"
	ItemIssueMasterProductNotLinked    ItemIssueKind = "master_product_not_linked"
	ItemIssueMasterProductInvalidHSN   ItemIssueKind = "master_product_invalid_hsn"
)

var validItemIssueKinds = []ItemIssueKind{
	ItemIssueProductNotFound,
	ItemIssueSerialNotFound,
	ItemIssueInsufficientStock,
	ItemIssueMasterProductNotApproved,
	ItemIssueMasterProductMissingHSN,
	ItemIssueMasterProductNotLinked,
	ItemIssueMasterProductInvalidHSN,
}

func (k ItemIssueKind) IsValid() bool {
	for _, candidate := range validItemIssueKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// BlocksFinalize reports whether this issue must stop finalize/post. Every kind
// currently blocks; draft saves never consult this.
func (k ItemIssueKind) BlocksFinalize() bool {
	return k.IsValid()
}

// Governance reports whether the issue originates from master-product review
// rather than stock or input data.
func (k ItemIssueKind) Governance() bool {
	switch k {
	case ItemIssueMasterProductNotApproved,
		ItemIssueMasterProductMissingHSN,
		ItemIssueMasterProductNotLinked,
		ItemIssueMasterProductInvalidHSN:
		return true
	default:
		return false
	}
}
