package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/vpn-store/internal/models"
	"github.com/magabrotheeeer/vpn-store/internal/storage"
)

func TestStorage_Settings(t *testing.T) {
	s := setupTestDatabase(t)
	ctx := context.Background()

	_, err := s.GetSettings(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	defaults := models.DefaultSettings()
	got, err := s.InsertDefaultSettings(ctx, defaults)
	require.NoError(t, err)
	assert.Equal(t, defaults.SiteName, got.SiteName)
	assert.False(t, got.UpdatedAt.IsZero())

	updated := *got
	updated.MaintenanceMode = true
	updated.PaymentMethods = []models.PaymentMethod{{ID: "kbz", Name: "KBZPay", AccountNumber: "0912", IsActive: true}}
	_, err = s.UpsertSettings(ctx, updated)
	require.NoError(t, err)

	// Повторная запись значений по умолчанию не затирает сохранённые настройки.
	got, err = s.InsertDefaultSettings(ctx, defaults)
	require.NoError(t, err)
	assert.True(t, got.MaintenanceMode)

	got, err = s.GetSettings(ctx)
	require.NoError(t, err)
	assert.True(t, got.MaintenanceMode)
	require.Len(t, got.PaymentMethods, 1)
	assert.Equal(t, "0912", got.PaymentMethods[0].AccountNumber)
}
