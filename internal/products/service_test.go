package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sreejithpv/keralacart-backend/internal/inventory"
	"github.com/sreejithpv/keralacart-backend/internal/ledger"
	"github.com/sreejithpv/keralacart-backend/internal/stores"
	"github.com/sreejithpv/keralacart-backend/pkg/db"
	"github.com/sreejithpv/keralacart-backend/pkg/db/models"
	"github.com/sreejithpv/keralacart-backend/pkg/enums"
	pkgerrors "github.com/sreejithpv/keralacart-backend/pkg/errors"
	"github.com/sreejithpv/keralacart-backend/pkg/pagination"
)

type fixture struct {
	db       *gorm.DB
	svc      Service
	sellerID uuid.UUID
	storeID  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := "file:products_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.Store{}, &models.Product{}, &models.StockHistory{}, &models.Review{},
	))

	sellerID := uuid.New()
	store := &models.Store{ID: uuid.New(), SellerID: sellerID, Name: "Sreeji Stores"}
	require.NoError(t, conn.Create(store).Error)

	guard, err := inventory.NewGuard(ledger.NewRepository(conn))
	require.NoError(t, err)
	svc, err := NewService(
		NewRepository(conn),
		stores.NewRepository(conn),
		guard,
		db.NewFromConn(conn),
	)
	require.NoError(t, err)

	return &fixture{db: conn, svc: svc, sellerID: sellerID, storeID: store.ID}
}

func TestCreateProductWritesLedgerEntry(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	dto, err := f.svc.CreateProduct(ctx, f.sellerID, CreateProductInput{
		Name:        "Kasavu Saree",
		Price:       decimal.NewFromInt(1850),
		TotalStock:  10,
		OnlineStock: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, f.storeID, dto.StoreID)
	assert.Equal(t, "1850.00", dto.Price)
	assert.Equal(t, "1850.00", dto.MRP)
	assert.Equal(t, enums.SaleChannelBoth.String(), dto.SaleChannel)
	assert.True(t, dto.IsActive)

	var entry models.StockHistory
	require.NoError(t, f.db.First(&entry, "product_id = ?", dto.ID).Error)
	assert.Equal(t, enums.StockActionCreated, entry.Action)
	assert.Equal(t, 10, entry.ChangeTotal)
	assert.Equal(t, 10, entry.ChangeOnline)
	assert.Equal(t, enums.ActorKindSeller, entry.ActorKind)
	assert.Equal(t, f.sellerID, entry.ActorID)
}

func TestCreateProductValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateProduct(ctx, f.sellerID, CreateProductInput{
		Name:        "Umbrella",
		Price:       decimal.NewFromInt(250),
		TotalStock:  5,
		OnlineStock: 8,
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	mrp := decimal.NewFromInt(100)
	_, err = f.svc.CreateProduct(ctx, f.sellerID, CreateProductInput{
		Name:  "Umbrella",
		Price: decimal.NewFromInt(250),
		MRP:   &mrp,
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.CreateProduct(ctx, uuid.New(), CreateProductInput{
		Name:  "Umbrella",
		Price: decimal.NewFromInt(250),
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateStockThroughGuard(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	dto, err := f.svc.CreateProduct(ctx, f.sellerID, CreateProductInput{
		Name:        "Coir Doormat",
		Price:       decimal.NewFromInt(320),
		TotalStock:  4,
		OnlineStock: 2,
	})
	require.NoError(t, err)

	total := 50
	online := 40
	updated, err := f.svc.UpdateStock(ctx, f.sellerID, dto.ID, UpdateStockInput{
		TotalStock:  &total,
		OnlineStock: &online,
		Note:        "festival restock",
	})
	require.NoError(t, err)
	assert.Equal(t, 50, updated.TotalStock)
	assert.Equal(t, 40, updated.OnlineStock)

	var entries []models.StockHistory
	require.NoError(t, f.db.
		Where("product_id = ? AND action = ?", dto.ID, enums.StockActionUpdated).
		Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, 46, entries[0].ChangeTotal)
	assert.Equal(t, 38, entries[0].ChangeOnline)
}

func TestUpdateStockForeignProductForbidden(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	otherSeller := uuid.New()
	require.NoError(t, f.db.Create(&models.Store{
		ID: uuid.New(), SellerID: otherSeller, Name: "Rival",
	}).Error)

	dto, err := f.svc.CreateProduct(ctx, f.sellerID, CreateProductInput{
		Name:  "Nettipattam",
		Price: decimal.NewFromInt(990),
	})
	require.NoError(t, err)

	total := 3
	_, err = f.svc.UpdateStock(ctx, otherSeller, dto.ID, UpdateStockInput{TotalStock: &total})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestToggleActiveHidesFromStorefront(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	dto, err := f.svc.CreateProduct(ctx, f.sellerID, CreateProductInput{
		Name:        "Bell Metal Lamp",
		Price:       decimal.NewFromInt(4200),
		TotalStock:  3,
		OnlineStock: 3,
	})
	require.NoError(t, err)

	toggled, err := f.svc.ToggleActive(ctx, f.sellerID, dto.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	_, err = f.svc.GetPublic(ctx, dto.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	toggled, err = f.svc.ToggleActive(ctx, f.sellerID, dto.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsActive)

	public, err := f.svc.GetPublic(ctx, dto.ID)
	require.NoError(t, err)
	assert.True(t, public.InStock)
}

func TestListPublicFilters(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	seed := []CreateProductInput{
		{Name: "Banana Chips", Price: decimal.NewFromInt(120), TotalStock: 10, OnlineStock: 10},
		{Name: "Halwa", Price: decimal.NewFromInt(260), TotalStock: 5, OnlineStock: 0},
		{Name: "Spice Box", Price: decimal.NewFromInt(820), TotalStock: 2, OnlineStock: 2, SaleChannel: enums.SaleChannelOfflineOnly},
	}
	for _, input := range seed {
		_, err := f.svc.CreateProduct(ctx, f.sellerID, input)
		require.NoError(t, err)
	}

	// Offline-only products never show in the storefront.
	rows, _, err := f.svc.ListPublic(ctx, PublicFilters{}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	rows, _, err = f.svc.ListPublic(ctx, PublicFilters{InStockOnly: true}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Banana Chips", rows[0].Name)

	min := decimal.NewFromInt(200)
	rows, _, err = f.svc.ListPublic(ctx, PublicFilters{PriceMin: &min}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Halwa", rows[0].Name)

	rows, _, err = f.svc.ListPublic(ctx, PublicFilters{Query: "chips"}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestPublicListingsCarryReviewAggregates(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	rated, err := f.svc.CreateProduct(ctx, f.sellerID, CreateProductInput{
		Name:        "Uru Model",
		Price:       decimal.NewFromInt(3200),
		TotalStock:  5,
		OnlineStock: 5,
	})
	require.NoError(t, err)
	unrated, err := f.svc.CreateProduct(ctx, f.sellerID, CreateProductInput{
		Name:        "Shell Curio",
		Price:       decimal.NewFromInt(150),
		TotalStock:  5,
		OnlineStock: 5,
	})
	require.NoError(t, err)

	for _, rating := range []int{5, 4, 3} {
		require.NoError(t, f.db.Create(&models.Review{
			ID: uuid.New(), ProductID: rated.ID, BuyerID: uuid.New(), Rating: rating,
		}).Error)
	}

	public, err := f.svc.GetPublic(ctx, rated.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, public.AverageRating, 0.001)
	assert.EqualValues(t, 3, public.ReviewCount)

	rows, _, err := f.svc.ListPublic(ctx, PublicFilters{}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		switch row.ID {
		case rated.ID:
			assert.InDelta(t, 4.0, row.AverageRating, 0.001)
			assert.EqualValues(t, 3, row.ReviewCount)
		case unrated.ID:
			assert.Zero(t, row.AverageRating)
			assert.Zero(t, row.ReviewCount)
		}
	}
}

func TestListForSellerPagination(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := f.svc.CreateProduct(ctx, f.sellerID, CreateProductInput{
			Name:  "Item",
			Price: decimal.NewFromInt(int64(100 + i)),
		})
		require.NoError(t, err)
	}

	first, next, err := f.svc.ListForSeller(ctx, f.sellerID, pagination.Params{Limit: 3})
	require.NoError(t, err)
	require.Len(t, first, 3)
	require.NotEmpty(t, next)

	second, next2, err := f.svc.ListForSeller(ctx, f.sellerID, pagination.Params{Limit: 3, Cursor: next})
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Empty(t, next2)
}
