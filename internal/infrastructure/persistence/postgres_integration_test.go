//go:build integration

package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/matching"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/domain/shared"
	"github.com/madhugraj/transact-ai-nexus-sub002/internal/infrastructure/migration"
	"github.com/madhugraj/transact-ai-nexus-sub002/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newPostgresDB starts a throwaway PostgreSQL container and applies the embedded migrations
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("nexus_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	m, err := migration.New(sqlDB, migrations.FS, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())

	status, err := m.Status()
	require.NoError(t, err)
	assert.False(t, status.Dirty)
	return db
}

func TestPostgres_MatchingRoundTrip(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()
	userID := uuid.New()

	pos := NewGormPurchaseOrderRepository(db)
	invoices := NewGormInvoiceRepository(db)
	results := NewGormComparisonRepository(db)

	po := newTestPO(t, userID, "PO-42", "Acme Corp", "Widgets")
	po.RawData = []byte(`{"source":"vision"}`)
	require.NoError(t, pos.Save(ctx, po))

	inv := newTestInvoice(t, userID, "INV-42", "PO-42")
	require.NoError(t, invoices.Save(ctx, inv))

	unmatched, err := invoices.FindUnmatched(ctx, userID, nil, 10)
	require.NoError(t, err)
	require.Len(t, unmatched, 1)

	result, err := matching.NewResult(userID, po.ID, inv.ID, matching.Comparison{
		Discrepancies: []matching.Discrepancy{{Field: "amount", Message: "Amounts differ by 0.50"}},
	}, 92, matching.StatusAutoApproved)
	require.NoError(t, err)
	result.PONumber = po.PONumber
	result.InvoiceNumber = inv.InvoiceNumber
	require.NoError(t, results.Save(ctx, result))

	unmatched, err = invoices.FindUnmatched(ctx, userID, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, unmatched)

	filter := shared.DefaultFilter()
	filter.Search = "po-42"
	list, err := results.FindAllForUser(ctx, userID, filter)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Amounts differ by 0.50", list[0].Discrepancies[0].Message)

	require.NoError(t, pos.DeleteForUser(ctx, userID, po.ID))
	_, err = results.FindByPair(ctx, userID, po.ID, inv.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
