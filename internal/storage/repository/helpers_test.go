package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/vpn-store/internal/migrations"
	"github.com/magabrotheeeer/vpn-store/internal/models"
)

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции.
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(connStr)
	require.NoError(t, err, "failed to create storage")
	t.Cleanup(func() { _ = storage.Close() })

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))
	require.NoError(t, CheckDatabaseReady(ctx, storage))

	return storage
}

// TestDataFactory создаёт тестовые данные через методы хранилища.
type TestDataFactory struct {
	storage *Storage
}

func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

func (f *TestDataFactory) CreateUser(t *testing.T, email, role string) *models.User {
	t.Helper()
	u, err := f.storage.CreateUser(context.Background(), models.User{
		Name:         "Test " + role,
		Email:        email,
		PasswordHash: "hashedpassword",
		Role:         role,
		IsActive:     true,
	})
	require.NoError(t, err)
	return u
}

func (f *TestDataFactory) CreateProduct(t *testing.T, name string, price int64, active bool) *models.Product {
	t.Helper()
	p, err := f.storage.CreateProduct(context.Background(), models.Product{
		Name:     name,
		Provider: "NordVPN",
		Duration: "1 Month",
		Price:    price,
		Features: []string{"No logs", "5 devices"},
		Category: models.CategoryPremium,
		IsActive: active,
		Stock:    10,
		Rating:   5,
	})
	require.NoError(t, err)
	return p
}

func (f *TestDataFactory) CreateOrder(t *testing.T, userID string, total int64) *models.Order {
	t.Helper()
	o, err := f.storage.CreateOrder(context.Background(), models.Order{
		UserID: userID,
		Items: []models.OrderItem{
			{ProductID: "p1", Name: "NordVPN", Price: total, Duration: "1 Month", Quantity: 1},
		},
		Total: total,
	})
	require.NoError(t, err)
	return o
}

func (f *TestDataFactory) SubmitPayment(t *testing.T, order *models.Order, txID string) *models.Payment {
	t.Helper()
	p, err := f.storage.CreatePayment(context.Background(), newPayment(order, txID))
	require.NoError(t, err)
	return p
}

func newPayment(order *models.Order, txID string) models.Payment {
	return models.Payment{
		OrderID:       order.ID,
		UserID:        order.UserID,
		PaymentMethod: "KBZPay",
		TransactionID: txID,
		SenderName:    "Aung Aung",
		SenderPhone:   "09123456789",
		Amount:        order.Total,
	}
}
