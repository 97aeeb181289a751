package models

import (
	"encoding/json"
)

type Equipment struct {
	ID       string          `json:"id" db:"id"`
	TenantID string          `json:"tenant_id" db:"company_name"`
	Name     string          `json:"name" db:"name"`
	Status   string          `json:"status" db:"status"`
	Raw      json.RawMessage `json:"-" db:"json_data"`
}

func EquipmentFromDoc(tenantID string, raw json.RawMessage) (*Equipment, error) {
	doc, err := ParseDocument(raw)
	if err != nil {
		return nil, err
	}
	return &Equipment{
		ID:       doc.String("id"),
		TenantID: tenantID,
		Name:     doc.String("name"),
		Status:   doc.String("status"),
		Raw:      raw,
	}, nil
}
