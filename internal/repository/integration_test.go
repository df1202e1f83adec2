package repository_test

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/adscout/internal/models"
	"github.com/jonesrussell/adscout/internal/repository"
	"github.com/jonesrussell/adscout/internal/testhelpers"
)

// setupTestDB connects to a local PostgreSQL instance and applies the schema.
// Set ADSCOUT_TEST_DB to customize the connection string. Tests are skipped
// in short mode or when no database is reachable; unit tests use sqlmock.
func setupTestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	connStr := os.Getenv("ADSCOUT_TEST_DB")
	if connStr == "" {
		connStr = "host=localhost port=5432 user=postgres password=postgres dbname=adscout_test sslmode=disable"
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Skipf("Skipping test: could not connect to test database: %v", err)
	}

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		t.Skipf("Skipping test: could not ping test database: %v", err)
	}

	log := testhelpers.NewTestLogger()
	if err := testhelpers.RunMigrations(ctx, db, log); err != nil {
		db.Close()
		t.Skipf("Skipping test: could not run migrations: %v", err)
	}

	cleanup := func() {
		ctx := context.Background()
		_, _ = db.ExecContext(ctx, "TRUNCATE TABLE products CASCADE")
		_, _ = db.ExecContext(ctx, "TRUNCATE TABLE run_logs")
		db.Close()
	}

	return db, cleanup
}

func TestProductRepository_Integration_UpsertIdempotence(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := repository.NewProductRepository(db, testhelpers.NewTestLogger())
	ctx := context.Background()

	firstRun := uuid.New().String()
	first, err := repo.Upsert(ctx, firstRun, newItem())
	require.NoError(t, err)
	require.Len(t, first.Links, 1)

	// Re-discovery of the same URL in a later run updates in place.
	secondRun := uuid.New().String()
	updated := newItem()
	updated.Title = "AeroPress Go Travel Coffee Press"
	price := int64(3495)
	updated.PriceCents = &price

	second, err := repo.Upsert(ctx, secondRun, updated)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	products, err := repo.List(ctx, repository.ListFilter{RunID: secondRun})
	require.NoError(t, err)
	require.Len(t, products, 1)

	got := products[0]
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "AeroPress Go Travel Coffee Press", got.Title)
	require.NotNil(t, got.PriceCents)
	assert.Equal(t, int64(3495), *got.PriceCents)
	assert.Equal(t, secondRun, got.RunID)

	require.Len(t, got.Links, 1)
	assert.Equal(t, repository.NetworkAmazon, got.Links[0].Network)
	assert.Equal(t, repository.SubID(secondRun), got.Links[0].SubID)

	// The earlier run no longer owns the row.
	stale, err := repo.List(ctx, repository.ListFilter{RunID: firstRun})
	require.NoError(t, err)
	assert.Empty(t, stale)
}

func TestRunLogRepository_Integration_AppendAndList(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := repository.NewRunLogRepository(db, testhelpers.NewTestLogger())
	ctx := context.Background()
	runID := uuid.New().String()

	entries := []models.RunLog{
		{RunID: runID, Agent: models.AgentSystem, EventType: models.EventSummary, Message: "Run started."},
		{RunID: runID, Agent: models.AgentDealHunter, EventType: models.EventAction, Message: "opened amazon.com"},
		{RunID: runID, Agent: models.AgentSystem, Level: models.LevelWarn, EventType: models.EventSummary, Message: "Run completed without new products."},
	}
	for i := range entries {
		require.NoError(t, repo.Append(ctx, &entries[i]))
		assert.NotEmpty(t, entries[i].ID)
	}

	logs, err := repo.List(ctx, repository.LogFilter{RunID: runID})
	require.NoError(t, err)
	require.Len(t, logs, 3)

	// Most recent first.
	assert.Equal(t, "Run completed without new products.", logs[0].Message)
	assert.Equal(t, models.LevelWarn, logs[0].Level)
	assert.Equal(t, models.LevelInfo, logs[2].Level)
}
