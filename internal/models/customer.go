package models

import (
	"encoding/json"
)

type Customer struct {
	ID       string          `json:"id" db:"id"`
	TenantID string          `json:"tenant_id" db:"company_name"`
	Name     string          `json:"name" db:"name"`
	Address  string          `json:"address" db:"address"`
	City     string          `json:"city" db:"city"`
	State    string          `json:"state" db:"state"`
	Zip      string          `json:"zip" db:"zip"`
	Phone    string          `json:"phone" db:"phone"`
	Email    string          `json:"email" db:"email"`
	Status   string          `json:"status" db:"status"`
	Raw      json.RawMessage `json:"-" db:"json_data"`
}

// CustomerFromDoc extracts canonical columns from a client customer document,
// keeping the document verbatim in Raw.
func CustomerFromDoc(tenantID string, raw json.RawMessage) (*Customer, error) {
	doc, err := ParseDocument(raw)
	if err != nil {
		return nil, err
	}
	cust := &Customer{
		ID:       doc.String("id"),
		TenantID: tenantID,
		Name:     doc.String("name"),
		Address:  doc.String("address"),
		City:     doc.String("city"),
		State:    doc.String("state"),
		Zip:      doc.String("zip"),
		Phone:    doc.String("phone"),
		Email:    doc.String("email"),
		Status:   doc.String("status"),
		Raw:      raw,
	}
	if cust.Status == "" {
		cust.Status = "Active"
	}
	return cust, nil
}
