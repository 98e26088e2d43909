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

	"github.com/magabrotheeeer/callassist/internal/migrations"
	"github.com/magabrotheeeer/callassist/internal/models"
)

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции.
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
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

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	root, err := filepath.Abs("../../..")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, filepath.Join(root, "migrations")))
	require.NoError(t, CheckDatabaseReady(storage))

	return storage
}

// TestDataFactory создаёт тестовые данные.
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных.
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// Plan возвращает засеянный миграцией тариф по slug.
func (f *TestDataFactory) Plan(t *testing.T, slug string) *models.Plan {
	p, err := f.storage.GetPlanBySlug(context.Background(), slug)
	require.NoError(t, err)
	return p
}

// CreateUser создаёт пользователя без платежа.
func (f *TestDataFactory) CreateUser(t *testing.T, email string) *models.User {
	acc := &models.Account{User: models.User{
		Email:        email,
		Name:         "Test User",
		Timezone:     "UTC",
		PasswordHash: "hashedpassword",
		Role:         models.RoleClient,
		IsActive:     true,
	}}
	require.NoError(t, f.storage.CreateAccount(context.Background(), acc))
	return &acc.User
}

// CountRows считает строки в таблице.
func (f *TestDataFactory) CountRows(t *testing.T, table string) int {
	var n int
	require.NoError(t, f.storage.DB.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}
