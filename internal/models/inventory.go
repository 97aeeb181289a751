package models

import (
	"encoding/json"
)

// InventoryItem is one stocked material. Quantity is signed and never
// clamped: over-reporting usage drives it negative rather than erroring.
type InventoryItem struct {
	ID       string          `json:"id" db:"id"`
	TenantID string          `json:"tenant_id" db:"company_name"`
	Name     string          `json:"name" db:"name"`
	Quantity float64         `json:"quantity" db:"quantity"`
	Unit     string          `json:"unit" db:"unit"`
	UnitCost float64         `json:"unit_cost" db:"unit_cost"`
	Raw      json.RawMessage `json:"-" db:"json_data"`
}

// InventoryItemFromDoc extracts canonical columns from a client inventory
// document, keeping the document verbatim in Raw.
func InventoryItemFromDoc(tenantID string, raw json.RawMessage) (*InventoryItem, error) {
	doc, err := ParseDocument(raw)
	if err != nil {
		return nil, err
	}
	return &InventoryItem{
		ID:       doc.String("id"),
		TenantID: tenantID,
		Name:     doc.String("name"),
		Quantity: doc.Float("quantity"),
		Unit:     doc.String("unit"),
		UnitCost: doc.Float("unitCost"),
		Raw:      raw,
	}, nil
}
