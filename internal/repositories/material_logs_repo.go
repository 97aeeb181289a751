package repositories

import (
	"context"
	"encoding/json"

	"foamworks/internal/common"
	"foamworks/internal/models"
)

// MaterialLogsRepository is append-only: entries are inserted once per
// completion event and never updated or deleted.
type MaterialLogsRepository interface {
	Insert(ctx context.Context, entry *models.MaterialLogEntry) error
	List(ctx context.Context, tenantID string) ([]json.RawMessage, error)
}

type materialLogsRepo struct {
	db DB
}

func NewMaterialLogsRepo(db DB) MaterialLogsRepository {
	return &materialLogsRepo{db: db}
}

func (r *materialLogsRepo) Insert(ctx context.Context, entry *models.MaterialLogEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return common.Internal("encode material log entry", err)
	}
	query := `
		INSERT INTO logs (id, company_name, date, job_id, customer_name, material_name, quantity, unit, logged_by, json_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.db.Exec(ctx, query,
		entry.ID, entry.TenantID, entry.Date, entry.JobID, entry.CustomerName,
		entry.MaterialName, entry.Quantity, entry.Unit, entry.LoggedBy, raw)
	if err != nil {
		return common.Internal("insert material log entry", err)
	}
	return nil
}

func (r *materialLogsRepo) List(ctx context.Context, tenantID string) ([]json.RawMessage, error) {
	query := `SELECT json_data FROM logs WHERE company_name = $1`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, common.Internal("list material logs", err)
	}
	defer rows.Close()

	var docs []json.RawMessage
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, common.Internal("scan material log entry", err)
		}
		if !json.Valid(raw) {
			continue
		}
		docs = append(docs, json.RawMessage(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, common.Internal("list material logs", err)
	}
	return docs, nil
}
