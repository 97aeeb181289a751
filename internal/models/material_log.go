package models

// MaterialLogEntry records one material consumed by one completed job.
// Entries are append-only: written exactly once per completion event and
// never mutated or deleted afterwards.
type MaterialLogEntry struct {
	ID           string  `json:"id" db:"id"`
	TenantID     string  `json:"-" db:"company_name"`
	Date         string  `json:"date" db:"date"`
	JobID        string  `json:"jobId" db:"job_id"`
	CustomerName string  `json:"customerName" db:"customer_name"`
	MaterialName string  `json:"materialName" db:"material_name"`
	Quantity     float64 `json:"quantity" db:"quantity"`
	Unit         string  `json:"unit" db:"unit"`
	LoggedBy     string  `json:"loggedBy" db:"logged_by"`
}
