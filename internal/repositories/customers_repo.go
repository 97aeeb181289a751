package repositories

import (
	"context"
	"encoding/json"
	"errors"

	"foamworks/internal/common"
	"foamworks/internal/models"

	"github.com/jackc/pgx/v5"
)

type CustomersRepository interface {
	Get(ctx context.Context, tenantID, id string) (*models.Customer, error)
	List(ctx context.Context, tenantID string) ([]*models.Customer, error)
	Put(ctx context.Context, customer *models.Customer) error
	ReplaceAll(ctx context.Context, tenantID string, docs []json.RawMessage) error
	Delete(ctx context.Context, tenantID, id string) error
}

type customersRepo struct {
	db DB
}

func NewCustomersRepo(db DB) CustomersRepository {
	return &customersRepo{db: db}
}

func (r *customersRepo) Get(ctx context.Context, tenantID, id string) (*models.Customer, error) {
	var raw []byte
	query := `SELECT json_data FROM customers WHERE company_name = $1 AND id = $2`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundf("customer not found")
		}
		return nil, common.Internal("get customer", err)
	}
	cust, err := models.CustomerFromDoc(tenantID, raw)
	if err != nil {
		return nil, common.Invalidf("stored customer data is not valid JSON")
	}
	return cust, nil
}

// List returns every customer for the tenant. Rows whose stored document no
// longer parses are dropped rather than failing the whole read.
func (r *customersRepo) List(ctx context.Context, tenantID string) ([]*models.Customer, error) {
	query := `SELECT json_data FROM customers WHERE company_name = $1`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, common.Internal("list customers", err)
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, common.Internal("scan customer", err)
		}
		cust, err := models.CustomerFromDoc(tenantID, raw)
		if err != nil {
			continue
		}
		customers = append(customers, cust)
	}
	if err := rows.Err(); err != nil {
		return nil, common.Internal("list customers", err)
	}
	return customers, nil
}

func (r *customersRepo) Put(ctx context.Context, customer *models.Customer) error {
	query := `
		INSERT INTO customers (id, company_name, name, address, city, state, zip, phone, email, status, json_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id, company_name) DO UPDATE SET
			name = EXCLUDED.name, address = EXCLUDED.address, city = EXCLUDED.city,
			state = EXCLUDED.state, zip = EXCLUDED.zip, phone = EXCLUDED.phone,
			email = EXCLUDED.email, status = EXCLUDED.status, json_data = EXCLUDED.json_data
	`
	_, err := r.db.Exec(ctx, query,
		customer.ID, customer.TenantID, customer.Name, customer.Address, customer.City,
		customer.State, customer.Zip, customer.Phone, customer.Email, customer.Status, customer.Raw)
	if err != nil {
		return common.Internal("put customer", err)
	}
	return nil
}

// ReplaceAll wipes the tenant's customers and inserts the pushed documents.
// Callers run it inside one transaction so readers never observe the gap.
func (r *customersRepo) ReplaceAll(ctx context.Context, tenantID string, docs []json.RawMessage) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM customers WHERE company_name = $1`, tenantID); err != nil {
		return common.Internal("replace customers", err)
	}
	for _, raw := range docs {
		cust, err := models.CustomerFromDoc(tenantID, raw)
		if err != nil {
			return common.Invalidf("customer record is not a JSON object")
		}
		if err := r.Put(ctx, cust); err != nil {
			return err
		}
	}
	return nil
}

func (r *customersRepo) Delete(ctx context.Context, tenantID, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM customers WHERE company_name = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return common.Internal("delete customer", err)
	}
	return nil
}
