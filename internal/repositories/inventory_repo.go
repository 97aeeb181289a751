package repositories

import (
	"context"
	"encoding/json"
	"errors"

	"foamworks/internal/common"
	"foamworks/internal/models"

	"github.com/jackc/pgx/v5"
)

type InventoryRepository interface {
	Get(ctx context.Context, tenantID, id string) (*models.InventoryItem, error)
	List(ctx context.Context, tenantID string) ([]*models.InventoryItem, error)
	Put(ctx context.Context, item *models.InventoryItem) error
	ReplaceAll(ctx context.Context, tenantID string, docs []json.RawMessage) error
	Delete(ctx context.Context, tenantID, id string) error
}

type inventoryRepo struct {
	db DB
}

func NewInventoryRepo(db DB) InventoryRepository {
	return &inventoryRepo{db: db}
}

func (r *inventoryRepo) Get(ctx context.Context, tenantID, id string) (*models.InventoryItem, error) {
	var raw []byte
	query := `SELECT json_data FROM inventory WHERE company_name = $1 AND id = $2`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundf("inventory item not found")
		}
		return nil, common.Internal("get inventory item", err)
	}
	item, err := models.InventoryItemFromDoc(tenantID, raw)
	if err != nil {
		return nil, common.Invalidf("stored inventory data is not valid JSON")
	}
	return item, nil
}

func (r *inventoryRepo) List(ctx context.Context, tenantID string) ([]*models.InventoryItem, error) {
	query := `SELECT json_data FROM inventory WHERE company_name = $1`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, common.Internal("list inventory", err)
	}
	defer rows.Close()

	var items []*models.InventoryItem
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, common.Internal("scan inventory item", err)
		}
		item, err := models.InventoryItemFromDoc(tenantID, raw)
		if err != nil {
			continue
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, common.Internal("list inventory", err)
	}
	return items, nil
}

func (r *inventoryRepo) Put(ctx context.Context, item *models.InventoryItem) error {
	query := `
		INSERT INTO inventory (id, company_name, name, quantity, unit, unit_cost, json_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id, company_name) DO UPDATE SET
			name = EXCLUDED.name, quantity = EXCLUDED.quantity, unit = EXCLUDED.unit,
			unit_cost = EXCLUDED.unit_cost, json_data = EXCLUDED.json_data
	`
	_, err := r.db.Exec(ctx, query,
		item.ID, item.TenantID, item.Name, item.Quantity, item.Unit, item.UnitCost, item.Raw)
	if err != nil {
		return common.Internal("put inventory item", err)
	}
	return nil
}

func (r *inventoryRepo) ReplaceAll(ctx context.Context, tenantID string, docs []json.RawMessage) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM inventory WHERE company_name = $1`, tenantID); err != nil {
		return common.Internal("replace inventory", err)
	}
	for _, raw := range docs {
		item, err := models.InventoryItemFromDoc(tenantID, raw)
		if err != nil {
			return common.Invalidf("inventory record is not a JSON object")
		}
		if err := r.Put(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func (r *inventoryRepo) Delete(ctx context.Context, tenantID, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM inventory WHERE company_name = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return common.Internal("delete inventory item", err)
	}
	return nil
}
