package repositories

import (
	"context"
	"encoding/json"
	"errors"

	"foamworks/internal/common"
	"foamworks/internal/models"

	"github.com/jackc/pgx/v5"
)

type EquipmentRepository interface {
	Get(ctx context.Context, tenantID, id string) (*models.Equipment, error)
	List(ctx context.Context, tenantID string) ([]*models.Equipment, error)
	Put(ctx context.Context, eq *models.Equipment) error
	ReplaceAll(ctx context.Context, tenantID string, docs []json.RawMessage) error
	Delete(ctx context.Context, tenantID, id string) error
}

type equipmentRepo struct {
	db DB
}

func NewEquipmentRepo(db DB) EquipmentRepository {
	return &equipmentRepo{db: db}
}

func (r *equipmentRepo) Get(ctx context.Context, tenantID, id string) (*models.Equipment, error) {
	var raw []byte
	query := `SELECT json_data FROM equipment WHERE company_name = $1 AND id = $2`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundf("equipment not found")
		}
		return nil, common.Internal("get equipment", err)
	}
	eq, err := models.EquipmentFromDoc(tenantID, raw)
	if err != nil {
		return nil, common.Invalidf("stored equipment data is not valid JSON")
	}
	return eq, nil
}

func (r *equipmentRepo) List(ctx context.Context, tenantID string) ([]*models.Equipment, error) {
	query := `SELECT json_data FROM equipment WHERE company_name = $1`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, common.Internal("list equipment", err)
	}
	defer rows.Close()

	var list []*models.Equipment
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, common.Internal("scan equipment", err)
		}
		eq, err := models.EquipmentFromDoc(tenantID, raw)
		if err != nil {
			continue
		}
		list = append(list, eq)
	}
	if err := rows.Err(); err != nil {
		return nil, common.Internal("list equipment", err)
	}
	return list, nil
}

func (r *equipmentRepo) Put(ctx context.Context, eq *models.Equipment) error {
	query := `
		INSERT INTO equipment (id, company_name, name, status, json_data)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id, company_name) DO UPDATE SET
			name = EXCLUDED.name, status = EXCLUDED.status, json_data = EXCLUDED.json_data
	`
	_, err := r.db.Exec(ctx, query, eq.ID, eq.TenantID, eq.Name, eq.Status, eq.Raw)
	if err != nil {
		return common.Internal("put equipment", err)
	}
	return nil
}

func (r *equipmentRepo) ReplaceAll(ctx context.Context, tenantID string, docs []json.RawMessage) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM equipment WHERE company_name = $1`, tenantID); err != nil {
		return common.Internal("replace equipment", err)
	}
	for _, raw := range docs {
		eq, err := models.EquipmentFromDoc(tenantID, raw)
		if err != nil {
			return common.Invalidf("equipment record is not a JSON object")
		}
		if err := r.Put(ctx, eq); err != nil {
			return err
		}
	}
	return nil
}

func (r *equipmentRepo) Delete(ctx context.Context, tenantID, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM equipment WHERE company_name = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return common.Internal("delete equipment", err)
	}
	return nil
}
