package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/magabrotheeeer/vpn-store/internal/models"
)

// Настройки сайта хранятся одной строкой с id = 1.
const settingsRowID = 1

// GetSettings возвращает настройки сайта или storage.ErrNotFound, если их ещё нет.
func (s *Storage) GetSettings(ctx context.Context) (*models.Settings, error) {
	const op = "storage.GetSettings"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var data []byte
	var updatedAt time.Time
	err := s.DB.QueryRowContext(ctx, `SELECT data, updated_at FROM settings WHERE id = $1`, settingsRowID).
		Scan(&data, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return decodeSettings(op, data, updatedAt)
}

// UpsertSettings сохраняет настройки целиком.
func (s *Storage) UpsertSettings(ctx context.Context, settings models.Settings) (*models.Settings, error) {
	const op = "storage.UpsertSettings"
	return s.writeSettings(ctx, op, settings, `INSERT INTO settings (id, data, updated_at)
			  VALUES ($1, $2, NOW())
			  ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
			  RETURNING data, updated_at`)
}

// InsertDefaultSettings записывает настройки, только если строки ещё нет,
// и возвращает то, что оказалось в базе.
func (s *Storage) InsertDefaultSettings(ctx context.Context, settings models.Settings) (*models.Settings, error) {
	const op = "storage.InsertDefaultSettings"
	return s.writeSettings(ctx, op, settings, `INSERT INTO settings (id, data, updated_at)
			  VALUES ($1, $2, NOW())
			  ON CONFLICT (id) DO UPDATE SET id = settings.id
			  RETURNING data, updated_at`)
}

func (s *Storage) writeSettings(ctx context.Context, op string, settings models.Settings, query string) (*models.Settings, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	data, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var stored []byte
	var updatedAt time.Time
	if err := s.DB.QueryRowContext(ctx, query, settingsRowID, data).Scan(&stored, &updatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return decodeSettings(op, stored, updatedAt)
}

func decodeSettings(op string, data []byte, updatedAt time.Time) (*models.Settings, error) {
	var result models.Settings
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result.UpdatedAt = updatedAt
	return &result, nil
}
