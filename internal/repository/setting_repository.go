package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/okulsoft/dersplan/internal/models"
)

// SettingRepository provides persistence for string settings.
type SettingRepository struct {
	db *sqlx.DB
}

// NewSettingRepository creates a new setting repository.
func NewSettingRepository(db *sqlx.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// Get returns the value for a key, or the fallback when absent.
func (r *SettingRepository) Get(ctx context.Context, key, fallback string) (string, error) {
	query := r.db.Rebind(`SELECT value FROM settings WHERE key = ?`)
	var value string
	if err := r.db.GetContext(ctx, &value, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fallback, nil
		}
		return "", fmt.Errorf("get setting %s: %w", key, err)
	}
	return value, nil
}

// Put upserts a key/value pair.
func (r *SettingRepository) Put(ctx context.Context, key, value string) error {
	query := r.db.Rebind(`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT (key) DO UPDATE SET value = excluded.value`)
	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("put setting %s: %w", key, err)
	}
	return nil
}

// List returns all settings ordered by key.
func (r *SettingRepository) List(ctx context.Context) ([]models.Setting, error) {
	const query = `SELECT id, key, value FROM settings ORDER BY key ASC`
	var settings []models.Setting
	if err := r.db.SelectContext(ctx, &settings, query); err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	return settings, nil
}

// Map returns all settings as a key/value map.
func (r *SettingRepository) Map(ctx context.Context) (map[string]string, error) {
	settings, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	values := make(map[string]string, len(settings))
	for _, s := range settings {
		values[s.Key] = s.Value
	}
	return values, nil
}
