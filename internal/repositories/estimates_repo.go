package repositories

import (
	"context"
	"encoding/json"
	"errors"

	"foamworks/internal/common"
	"foamworks/internal/models"

	"github.com/jackc/pgx/v5"
)

type EstimatesRepository interface {
	Get(ctx context.Context, tenantID, id string) (*models.Estimate, error)
	List(ctx context.Context, tenantID string) ([]*models.Estimate, error)
	Put(ctx context.Context, est *models.Estimate) error
	ReplaceAll(ctx context.Context, tenantID string, docs []json.RawMessage) error
	Delete(ctx context.Context, tenantID, id string) error

	// GetDocForUpdate locks the estimate row for the duration of the caller's
	// transaction. Lifecycle transitions go through it so concurrent
	// operations on the same estimate serialize instead of double-applying.
	GetDocForUpdate(ctx context.Context, tenantID, id string) (models.Document, error)
	// UpdateDoc persists a mutated estimate document, re-deriving the
	// canonical columns from it.
	UpdateDoc(ctx context.Context, tenantID, id string, doc models.Document) error
	// ListByStatusAllTenants is for the background reconciliation audit; it is
	// the only read that crosses tenants and it never leaves this process.
	ListByStatusAllTenants(ctx context.Context, status string) ([]*models.Estimate, error)
}

type estimatesRepo struct {
	db DB
}

func NewEstimatesRepo(db DB) EstimatesRepository {
	return &estimatesRepo{db: db}
}

func (r *estimatesRepo) Get(ctx context.Context, tenantID, id string) (*models.Estimate, error) {
	var raw []byte
	query := `SELECT json_data FROM estimates WHERE company_name = $1 AND id = $2`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundf("estimate not found")
		}
		return nil, common.Internal("get estimate", err)
	}
	est, err := models.EstimateFromDoc(tenantID, raw)
	if err != nil {
		return nil, common.Invalidf("stored estimate data is not valid JSON")
	}
	return est, nil
}

func (r *estimatesRepo) List(ctx context.Context, tenantID string) ([]*models.Estimate, error) {
	query := `SELECT json_data FROM estimates WHERE company_name = $1`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, common.Internal("list estimates", err)
	}
	defer rows.Close()

	var estimates []*models.Estimate
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, common.Internal("scan estimate", err)
		}
		est, err := models.EstimateFromDoc(tenantID, raw)
		if err != nil {
			continue
		}
		estimates = append(estimates, est)
	}
	if err := rows.Err(); err != nil {
		return nil, common.Internal("list estimates", err)
	}
	return estimates, nil
}

func (r *estimatesRepo) Put(ctx context.Context, est *models.Estimate) error {
	query := `
		INSERT INTO estimates (id, company_name, customer_id, date, total_value, status, invoice_number, pdf_link, json_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id, company_name) DO UPDATE SET
			customer_id = EXCLUDED.customer_id, date = EXCLUDED.date,
			total_value = EXCLUDED.total_value, status = EXCLUDED.status,
			invoice_number = EXCLUDED.invoice_number, pdf_link = EXCLUDED.pdf_link,
			json_data = EXCLUDED.json_data
	`
	_, err := r.db.Exec(ctx, query,
		est.ID, est.TenantID, est.CustomerID, est.Date, est.TotalValue,
		est.Status, est.InvoiceNumber, est.PDFLink, est.Raw)
	if err != nil {
		return common.Internal("put estimate", err)
	}
	return nil
}

func (r *estimatesRepo) ReplaceAll(ctx context.Context, tenantID string, docs []json.RawMessage) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM estimates WHERE company_name = $1`, tenantID); err != nil {
		return common.Internal("replace estimates", err)
	}
	for _, raw := range docs {
		est, err := models.EstimateFromDoc(tenantID, raw)
		if err != nil {
			return common.Invalidf("estimate record is not a JSON object")
		}
		if err := r.Put(ctx, est); err != nil {
			return err
		}
	}
	return nil
}

func (r *estimatesRepo) Delete(ctx context.Context, tenantID, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM estimates WHERE company_name = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return common.Internal("delete estimate", err)
	}
	return nil
}

func (r *estimatesRepo) GetDocForUpdate(ctx context.Context, tenantID, id string) (models.Document, error) {
	var raw []byte
	query := `SELECT json_data FROM estimates WHERE company_name = $1 AND id = $2 FOR UPDATE`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundf("estimate not found")
		}
		return nil, common.Internal("lock estimate", err)
	}
	doc, err := models.ParseDocument(raw)
	if err != nil {
		return nil, common.Invalidf("stored estimate data is not valid JSON")
	}
	return doc, nil
}

func (r *estimatesRepo) UpdateDoc(ctx context.Context, tenantID, id string, doc models.Document) error {
	raw, err := doc.Marshal()
	if err != nil {
		return common.Internal("encode estimate", err)
	}
	est, err := models.EstimateFromDoc(tenantID, raw)
	if err != nil {
		return common.Internal("encode estimate", err)
	}
	query := `
		UPDATE estimates
		SET customer_id = $1, date = $2, total_value = $3, status = $4,
			invoice_number = $5, pdf_link = $6, json_data = $7
		WHERE company_name = $8 AND id = $9
	`
	_, err = r.db.Exec(ctx, query,
		est.CustomerID, est.Date, est.TotalValue, est.Status,
		est.InvoiceNumber, est.PDFLink, est.Raw, tenantID, id)
	if err != nil {
		return common.Internal("update estimate", err)
	}
	return nil
}

func (r *estimatesRepo) ListByStatusAllTenants(ctx context.Context, status string) ([]*models.Estimate, error) {
	query := `SELECT company_name, json_data FROM estimates WHERE status = $1`
	rows, err := r.db.Query(ctx, query, status)
	if err != nil {
		return nil, common.Internal("list estimates by status", err)
	}
	defer rows.Close()

	var estimates []*models.Estimate
	for rows.Next() {
		var tenantID string
		var raw []byte
		if err := rows.Scan(&tenantID, &raw); err != nil {
			return nil, common.Internal("scan estimate", err)
		}
		est, err := models.EstimateFromDoc(tenantID, raw)
		if err != nil {
			continue
		}
		estimates = append(estimates, est)
	}
	if err := rows.Err(); err != nil {
		return nil, common.Internal("list estimates by status", err)
	}
	return estimates, nil
}
