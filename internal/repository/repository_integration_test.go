//go:build integration

package repository

// Integration tests against a real Postgres via testcontainers.
// Run with: go test -tags integration ./internal/repository/... -v

import (
	"context"
	"testing"
	"time"

	"github.com/fumiakihyodo/meiwaproducts/internal/infra"
	"github.com/fumiakihyodo/meiwaproducts/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("meiwa_test"),
		tcPostgres.WithUsername("meiwa"),
		tcPostgres.WithPassword("meiwa"),
		testcontainers.WithWaitStrategy(
			tcPostgres.BasicWaitStrategies()...,
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := infra.NewDatabase(dsn)
	require.NoError(t, err)
	return db
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func seedPart(t *testing.T, db *gorm.DB, partNumber string) *model.Part {
	t.Helper()
	ctx := context.Background()

	products := NewProductRepository(db)
	product := &model.Product{ProductNumber: "PRD-" + partNumber, ProductName: "Conveyor unit"}
	require.NoError(t, products.Create(ctx, product))

	suppliers := NewSupplierRepository(db)
	supplier := &model.Supplier{SupplierCode: "SUP-" + partNumber, CompanyName: "Meiwa Mfg " + partNumber, IsActive: true}
	require.NoError(t, suppliers.Create(ctx, supplier))
	branch := &model.SupplierBranch{
		SupplierID: supplier.ID,
		BranchCode: "BR-" + partNumber,
		BranchName: "Nagoya Plant",
		BranchType: model.BranchBranch,
		IsActive:   true,
	}
	require.NoError(t, suppliers.CreateBranch(ctx, branch))

	parts := NewPartRepository(db)
	part := &model.Part{
		ProductID:            product.ID,
		SupplierBranchID:     branch.ID,
		PartNumber:           partNumber,
		PartName:             "Mounting bracket",
		Unit:                 "piece",
		MinimumOrderQuantity: 1,
		IsActive:             true,
	}
	require.NoError(t, parts.Create(ctx, part))
	return part
}

func TestPartUniquenessTriple(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	parts := NewPartRepository(db)

	part := seedPart(t, db, "BRKT-001")

	n, err := parts.CountByTriple(ctx, part.ProductID, part.SupplierBranchID, "BRKT-001", uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// Excluding the row itself empties the set (the update path).
	n, err = parts.CountByTriple(ctx, part.ProductID, part.SupplierBranchID, "BRKT-001", part.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	// The schema-level unique index backstops the check.
	dup := &model.Part{
		ProductID:            part.ProductID,
		SupplierBranchID:     part.SupplierBranchID,
		PartNumber:           "BRKT-001",
		PartName:             "Duplicate bracket",
		Unit:                 "piece",
		MinimumOrderQuantity: 1,
		IsActive:             true,
	}
	err = parts.Create(ctx, dup)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestPriceHistoryQueries(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	prices := NewPriceHistoryRepository(db)
	part := seedPart(t, db, "BRKT-001")

	today := date("2026-06-15")
	lapsedEnd := date("2026-03-31")
	futureEnd := date("2026-12-31")

	janOpen := &model.PriceHistory{
		PartID: part.ID, Price: decimal.NewFromInt(1200),
		StartDate: date("2026-01-01"), IsActive: true,
	}
	marLapsed := &model.PriceHistory{
		PartID: part.ID, Price: decimal.NewFromInt(1500),
		StartDate: date("2026-03-01"), EndDate: &lapsedEnd, IsActive: true,
	}
	julFuture := &model.PriceHistory{
		PartID: part.ID, Price: decimal.NewFromInt(1800),
		StartDate: date("2026-07-01"), EndDate: &futureEnd, IsActive: true,
	}
	offRow := &model.PriceHistory{
		PartID: part.ID, Price: decimal.NewFromInt(900),
		StartDate: date("2026-02-01"), IsActive: false,
	}
	for _, h := range []*model.PriceHistory{janOpen, marLapsed, julFuture, offRow} {
		require.NoError(t, prices.Create(ctx, h))
	}

	t.Run("latest started ignores the end date", func(t *testing.T) {
		h, err := prices.LatestStarted(ctx, part.ID, today)
		require.NoError(t, err)
		assert.Equal(t, marLapsed.ID, h.ID)
	})

	t.Run("current listing honors the end date", func(t *testing.T) {
		rows, err := prices.ListCurrent(ctx, part.ID, today)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, janOpen.ID, rows[0].ID)
	})

	t.Run("active set excludes the given row", func(t *testing.T) {
		rows, err := prices.ListActiveByPart(ctx, part.ID, janOpen.ID)
		require.NoError(t, err)
		assert.Len(t, rows, 2) // marLapsed + julFuture; offRow is inactive
	})

	t.Run("lapsed active rows surface for the sweep", func(t *testing.T) {
		rows, err := prices.ListLapsedActive(ctx, today, 100)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, marLapsed.ID, rows[0].ID)
	})

	t.Run("part deletion is blocked by the history count", func(t *testing.T) {
		parts := NewPartRepository(db)
		n, err := parts.PriceHistoryCount(ctx, part.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(4), n)
	})
}

func TestClearPrimaryContact(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	suppliers := NewSupplierRepository(db)

	supplier := &model.Supplier{SupplierCode: "SUP-001", CompanyName: "Meiwa Mfg", IsActive: true}
	require.NoError(t, suppliers.Create(ctx, supplier))
	branch := &model.SupplierBranch{
		SupplierID: supplier.ID, BranchCode: "BR-001", BranchName: "Nagoya Plant",
		BranchType: model.BranchBranch, IsActive: true,
	}
	require.NoError(t, suppliers.CreateBranch(ctx, branch))

	email := "contact@example.com"
	first := &model.SupplierContact{
		BranchID: branch.ID, Name: "Tanaka", Email: &email,
		Responsibility: model.RespGeneral, IsPrimary: true, IsActive: true,
	}
	require.NoError(t, suppliers.CreateContact(ctx, first))
	second := &model.SupplierContact{
		BranchID: branch.ID, Name: "Suzuki", Email: &email,
		Responsibility: model.RespGeneral, IsPrimary: true, IsActive: true,
	}

	require.NoError(t, suppliers.InTx(ctx, func(tx SupplierRepository) error {
		if err := tx.ClearPrimary(ctx, branch.ID, uuid.Nil); err != nil {
			return err
		}
		return tx.CreateContact(ctx, second)
	}))

	demoted, err := suppliers.FindContactByID(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, demoted.IsPrimary)

	kept, err := suppliers.FindContactByID(ctx, second.ID)
	require.NoError(t, err)
	assert.True(t, kept.IsPrimary)
}
