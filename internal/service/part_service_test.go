package service

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/fumiakihyodo/meiwaproducts/internal/apierror"
	"github.com/fumiakihyodo/meiwaproducts/internal/config"
	"github.com/fumiakihyodo/meiwaproducts/internal/dto"
	"github.com/fumiakihyodo/meiwaproducts/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type partFixture struct {
	svc    *partService
	parts  *stubPartRepo
	prices *stubPriceRepo
}

func newPartFixture(t *testing.T) *partFixture {
	t.Helper()
	prices := newStubPriceRepo()
	parts := newStubPartRepo(prices)
	cfg := &config.Config{ReportStoragePath: t.TempDir()}
	svc := NewPartService(parts, prices, cfg).(*partService)
	svc.now = func() time.Time { return mustDate(fixedToday) }
	return &partFixture{svc: svc, parts: parts, prices: prices}
}

func partReq(productID, branchID uuid.UUID, partNumber string) dto.CreatePartRequest {
	return dto.CreatePartRequest{
		ProductID:        productID.String(),
		SupplierBranchID: branchID.String(),
		PartNumber:       partNumber,
		PartName:         "Mounting bracket",
	}
}

func TestCreatePart(t *testing.T) {
	t.Run("applies catalog defaults", func(t *testing.T) {
		f := newPartFixture(t)
		resp, err := f.svc.Create(context.Background(), member(), partReq(uuid.New(), uuid.New(), "BRKT-001"))
		require.NoError(t, err)
		assert.Equal(t, "piece", resp.Unit)
		assert.Equal(t, 1, resp.MinimumOrderQuantity)
		assert.True(t, resp.IsActive)
		assert.Nil(t, resp.CurrentPrice)
	})

	t.Run("rejects minimum order quantity below one", func(t *testing.T) {
		f := newPartFixture(t)
		moq := 0
		req := partReq(uuid.New(), uuid.New(), "BRKT-001")
		req.MinimumOrderQuantity = &moq
		_, err := f.svc.Create(context.Background(), member(), req)
		var ve *apierror.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "minimum_order_quantity", ve.Field)
	})

	t.Run("rejects a duplicate product/branch/part-number triple", func(t *testing.T) {
		f := newPartFixture(t)
		productID, branchID := uuid.New(), uuid.New()
		_, err := f.svc.Create(context.Background(), member(), partReq(productID, branchID, "BRKT-001"))
		require.NoError(t, err)

		_, err = f.svc.Create(context.Background(), member(), partReq(productID, branchID, "BRKT-001"))
		var dke *apierror.DuplicateKeyError
		require.ErrorAs(t, err, &dke)

		// Same part number at a different branch is a different part.
		_, err = f.svc.Create(context.Background(), member(), partReq(productID, uuid.New(), "BRKT-001"))
		require.NoError(t, err)
	})
}

func TestUpdatePart(t *testing.T) {
	t.Run("does not collide with itself", func(t *testing.T) {
		f := newPartFixture(t)
		created, err := f.svc.Create(context.Background(), member(), partReq(uuid.New(), uuid.New(), "BRKT-001"))
		require.NoError(t, err)

		name := "Reinforced mounting bracket"
		resp, err := f.svc.Update(context.Background(), member(), uuid.MustParse(created.ID), dto.UpdatePartRequest{PartName: &name})
		require.NoError(t, err)
		assert.Equal(t, name, resp.PartName)
	})

	t.Run("rejects renaming onto an existing triple", func(t *testing.T) {
		f := newPartFixture(t)
		productID, branchID := uuid.New(), uuid.New()
		_, err := f.svc.Create(context.Background(), member(), partReq(productID, branchID, "BRKT-001"))
		require.NoError(t, err)
		other, err := f.svc.Create(context.Background(), member(), partReq(productID, branchID, "BRKT-002"))
		require.NoError(t, err)

		collide := "BRKT-001"
		_, err = f.svc.Update(context.Background(), member(), uuid.MustParse(other.ID), dto.UpdatePartRequest{PartNumber: &collide})
		var dke *apierror.DuplicateKeyError
		require.ErrorAs(t, err, &dke)
	})
}

func TestDeletePart(t *testing.T) {
	t.Run("requires administrator", func(t *testing.T) {
		f := newPartFixture(t)
		created, err := f.svc.Create(context.Background(), member(), partReq(uuid.New(), uuid.New(), "BRKT-001"))
		require.NoError(t, err)

		err = f.svc.Delete(context.Background(), member(), uuid.MustParse(created.ID))
		assert.ErrorIs(t, err, apierror.ErrForbidden)

		require.NoError(t, f.svc.Delete(context.Background(), admin(), uuid.MustParse(created.ID)))
	})

	t.Run("refused while price history exists", func(t *testing.T) {
		f := newPartFixture(t)
		created, err := f.svc.Create(context.Background(), member(), partReq(uuid.New(), uuid.New(), "BRKT-001"))
		require.NoError(t, err)
		id := uuid.MustParse(created.ID)

		require.NoError(t, f.prices.Create(context.Background(), &model.PriceHistory{
			PartID:    id,
			Price:     decimal.NewFromInt(1200),
			StartDate: mustDate("2026-01-01"),
			IsActive:  false,
		}))

		err = f.svc.Delete(context.Background(), admin(), id)
		var dee *apierror.DependencyExistsError
		require.ErrorAs(t, err, &dee)
	})
}

// The two lookups deliberately differ: the singular current price is the most
// recently started active row regardless of its end date, while the plural
// listing only returns rows whose range covers today.
func TestCurrentPriceLookups(t *testing.T) {
	f := newPartFixture(t)
	ctx := context.Background()
	created, err := f.svc.Create(ctx, member(), partReq(uuid.New(), uuid.New(), "BRKT-001"))
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	lapsedEnd := mustDate("2026-03-31")
	require.NoError(t, f.prices.Create(ctx, &model.PriceHistory{
		PartID:    id,
		Price:     decimal.NewFromInt(1500),
		StartDate: mustDate("2026-03-01"),
		EndDate:   &lapsedEnd,
		IsActive:  true, // legacy row the expiry sweep has not visited yet
	}))
	require.NoError(t, f.prices.Create(ctx, &model.PriceHistory{
		PartID:    id,
		Price:     decimal.NewFromInt(1200),
		StartDate: mustDate("2026-01-01"),
		IsActive:  true,
	}))

	price, err := f.svc.CurrentPrice(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, price)
	// The March row started later, so it wins even though its range lapsed.
	assert.True(t, price.Equal(decimal.NewFromInt(1500)))

	rows, err := f.svc.CurrentPrices(ctx, id)
	require.NoError(t, err)
	// Only the open-ended January row still covers today.
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Price.Equal(decimal.NewFromInt(1200)))

	t.Run("future rows never price today", func(t *testing.T) {
		other, err := f.svc.Create(ctx, member(), partReq(uuid.New(), uuid.New(), "BRKT-002"))
		require.NoError(t, err)
		otherID := uuid.MustParse(other.ID)
		require.NoError(t, f.prices.Create(ctx, &model.PriceHistory{
			PartID:    otherID,
			Price:     decimal.NewFromInt(999),
			StartDate: mustDate("2026-07-01"),
			IsActive:  true,
		}))

		price, err := f.svc.CurrentPrice(ctx, otherID)
		require.NoError(t, err)
		assert.Nil(t, price)
	})
}

func TestPartResponseFlagsMultipleActivePrices(t *testing.T) {
	f := newPartFixture(t)
	ctx := context.Background()
	created, err := f.svc.Create(ctx, member(), partReq(uuid.New(), uuid.New(), "BRKT-001"))
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	for _, price := range []int64{1000, 1100} {
		require.NoError(t, f.prices.Create(ctx, &model.PriceHistory{
			PartID:    id,
			Price:     decimal.NewFromInt(price),
			StartDate: mustDate("2026-01-01"),
			IsActive:  true,
		}))
	}

	resp, err := f.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, resp.HasMultipleActivePrices)
	assert.Equal(t, int64(2), resp.PriceHistoryCount)
}

func TestExportPriceReport(t *testing.T) {
	f := newPartFixture(t)
	ctx := context.Background()
	created, err := f.svc.Create(ctx, member(), partReq(uuid.New(), uuid.New(), "BRKT-001"))
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	require.NoError(t, f.prices.Create(ctx, &model.PriceHistory{
		PartID:    id,
		Price:     decimal.NewFromInt(1200),
		StartDate: mustDate("2026-01-01"),
		IsActive:  true,
	}))

	path, err := f.svc.ExportPriceReport(ctx, id)
	require.NoError(t, err)
	assert.Contains(t, path, "prices_BRKT-001_20260615")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
