package repository

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
)

type settingRow struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

// LoadSettings returns every persisted runtime setting as a key/value map.
// Missing keys fall back to config defaults at the service layer.
func (r *Repository) LoadSettings(ctx context.Context) (map[string]string, error) {
	query, args, err := squirrel.
		Select("key", "value").
		From("settings").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []settingRow
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	settings := make(map[string]string, len(rows))
	for _, row := range rows {
		settings[row.Key] = row.Value
	}

	return settings, nil
}

func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	query, args, err := squirrel.
		Insert("settings").
		SetMap(map[string]interface{}{
			"key":   key,
			"value": value,
		}).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build setting upsert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to upsert setting %q: %w", key, err)
	}

	return nil
}
