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

	"github.com/magabrotheeeer/subscription-calendar/internal/migrations"
)

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции проекта.
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
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
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(ctx, dsn)
	require.NoError(t, err, "failed to connect storage")

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))

	cleanup := func() {
		_ = storage.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return storage, cleanup
}

// TestDataFactory содержит методы для создания тестовых данных.
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных.
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateCategory создает категорию и возвращает её ID.
func (f *TestDataFactory) CreateCategory(t *testing.T, name string) int64 {
	var id int64
	err := f.storage.DB.QueryRow(`INSERT INTO categories (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name RETURNING id`, name).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateCompany создает компанию и возвращает её ID.
func (f *TestDataFactory) CreateCompany(t *testing.T, name string) int64 {
	var id int64
	err := f.storage.DB.QueryRow(`INSERT INTO companies (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateOffer создает предложение и возвращает его ID.
func (f *TestDataFactory) CreateOffer(t *testing.T, title, price string, categoryID, companyID *int64) int64 {
	var id int64
	err := f.storage.DB.QueryRow(`INSERT INTO offers (title, price, category_id, company_id)
		VALUES ($1, $2::numeric, $3, $4) RETURNING id`, title, price, categoryID, companyID).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateRawSubscription вставляет подписку в обход проверок, например с некорректным правилом.
func (f *TestDataFactory) CreateRawSubscription(t *testing.T, userUID, title, dueType string, dueDay int, start time.Time) int64 {
	var id int64
	err := f.storage.DB.QueryRow(`INSERT INTO subscriptions (user_uid, title, due_type, due_day, start_date)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`, userUID, title, dueType, dueDay, start).Scan(&id)
	require.NoError(t, err)
	return id
}
