package models

import (
	"encoding/json"
)

// Estimate lifecycle statuses. Status only ever advances in this order; there
// is no reverse transition.
const (
	StatusDraft      = "Draft"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
	StatusPaid       = "Paid"
)

// Estimate is the canonical row for one job estimate. The structured columns
// exist for query and filter; Raw holds the full client document verbatim so
// unknown fields round-trip through sync unchanged.
type Estimate struct {
	ID            string          `json:"id" db:"id"`
	TenantID      string          `json:"tenant_id" db:"company_name"`
	CustomerID    string          `json:"customer_id" db:"customer_id"`
	Date          string          `json:"date" db:"date"`
	TotalValue    float64         `json:"total_value" db:"total_value"`
	Status        string          `json:"status" db:"status"`
	InvoiceNumber string          `json:"invoice_number" db:"invoice_number"`
	PDFLink       string          `json:"pdf_link" db:"pdf_link"`
	Raw           json.RawMessage `json:"-" db:"json_data"`
}

// EstimateFromDoc extracts the canonical columns from a client estimate
// document. The document is kept verbatim in Raw.
func EstimateFromDoc(tenantID string, raw json.RawMessage) (*Estimate, error) {
	doc, err := ParseDocument(raw)
	if err != nil {
		return nil, err
	}
	est := &Estimate{
		ID:            doc.String("id"),
		TenantID:      tenantID,
		Date:          doc.String("date"),
		TotalValue:    doc.Float("totalValue"),
		Status:        doc.String("status"),
		InvoiceNumber: doc.String("invoiceNumber"),
		PDFLink:       doc.String("pdfLink"),
		Raw:           raw,
	}
	if customer := doc.Object("customer"); customer != nil {
		est.CustomerID = customer.String("id")
	}
	if est.Status == "" {
		est.Status = StatusDraft
	}
	return est, nil
}

// ActualInventoryLine is one consumed inventory item reported on completion.
type ActualInventoryLine struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Quantity FlexFloat `json:"quantity"`
	Unit     string    `json:"unit"`
	UnitCost FlexFloat `json:"unitCost"`
}

// Actuals is the typed view over the materials and labor actually used on a
// job. Fields missing from the document read as zero values.
type Actuals struct {
	OpenCellSets   FlexFloat             `json:"openCellSets"`
	ClosedCellSets FlexFloat             `json:"closedCellSets"`
	LaborHours     FlexFloat             `json:"laborHours"`
	CompletionDate string                `json:"completionDate"`
	CompletedBy    string                `json:"completedBy"`
	LastStartedAt  string                `json:"lastStartedAt"`
	Inventory      []ActualInventoryLine `json:"inventory"`
}

// ParseActuals decodes raw into Actuals. Absent or malformed input yields the
// zero value; per-field garbage reads as zero via FlexFloat.
func ParseActuals(raw json.RawMessage) Actuals {
	var a Actuals
	if len(raw) == 0 {
		return a
	}
	_ = json.Unmarshal(raw, &a)
	return a
}

// Expenses is the typed view over an estimate's recorded expense document.
type Expenses struct {
	ManHours      FlexFloat `json:"manHours"`
	LaborRate     FlexFloat `json:"laborRate"`
	TripCharge    FlexFloat `json:"tripCharge"`
	FuelSurcharge FlexFloat `json:"fuelSurcharge"`
}

// ParseExpenses decodes raw into Expenses, tolerating absence and garbage.
func ParseExpenses(raw json.RawMessage) Expenses {
	var e Expenses
	if len(raw) == 0 {
		return e
	}
	_ = json.Unmarshal(raw, &e)
	return e
}

// Financials is the cost-of-goods-sold breakdown computed when a job is paid.
type Financials struct {
	Revenue       float64 `json:"revenue"`
	ChemicalCost  float64 `json:"chemicalCost"`
	LaborCost     float64 `json:"laborCost"`
	InventoryCost float64 `json:"inventoryCost"`
	MiscCost      float64 `json:"miscCost"`
	TotalCOGS     float64 `json:"totalCOGS"`
	NetProfit     float64 `json:"netProfit"`
	Margin        float64 `json:"margin"`
}
