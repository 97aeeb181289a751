package repositories

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"

	"foamworks/internal/common"
)

type SettingsRepository interface {
	Get(ctx context.Context, tenantID, key string) (json.RawMessage, error)
	Upsert(ctx context.Context, tenantID, key string, value json.RawMessage) error
	List(ctx context.Context, tenantID string) (map[string]json.RawMessage, error)
}

type settingsRepo struct {
	db DB
}

func NewSettingsRepo(db DB) SettingsRepository {
	return &settingsRepo{db: db}
}

func (r *settingsRepo) Get(ctx context.Context, tenantID, key string) (json.RawMessage, error) {
	query := `SELECT config_value FROM settings WHERE company_name = $1 AND config_key = $2`
	var value []byte
	err := r.db.QueryRow(ctx, query, tenantID, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundf("setting %q not found", key)
		}
		return nil, common.Internal("get setting", err)
	}
	if !json.Valid(value) {
		return nil, common.NotFoundf("setting %q not found", key)
	}
	return json.RawMessage(value), nil
}

func (r *settingsRepo) Upsert(ctx context.Context, tenantID, key string, value json.RawMessage) error {
	if !json.Valid(value) {
		return common.Invalidf("setting %q is not valid JSON", key)
	}
	query := `
		INSERT INTO settings (company_name, config_key, config_value)
		VALUES ($1, $2, $3)
		ON CONFLICT (company_name, config_key) DO UPDATE SET config_value = EXCLUDED.config_value
	`
	_, err := r.db.Exec(ctx, query, tenantID, key, []byte(value))
	if err != nil {
		return common.Internal("upsert setting", err)
	}
	return nil
}

// List returns every stored setting for the tenant. Rows whose value is not
// valid JSON are dropped rather than failing the whole read.
func (r *settingsRepo) List(ctx context.Context, tenantID string) (map[string]json.RawMessage, error) {
	query := `SELECT config_key, config_value FROM settings WHERE company_name = $1`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, common.Internal("list settings", err)
	}
	defer rows.Close()

	settings := make(map[string]json.RawMessage)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, common.Internal("scan setting", err)
		}
		if !json.Valid(value) {
			continue
		}
		settings[key] = json.RawMessage(value)
	}
	if err := rows.Err(); err != nil {
		return nil, common.Internal("list settings", err)
	}
	return settings, nil
}
