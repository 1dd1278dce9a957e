package ledger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sreejithpv/keralacart-backend/pkg/db/models"
	"github.com/sreejithpv/keralacart-backend/pkg/enums"
	"github.com/sreejithpv/keralacart-backend/pkg/pagination"
)

func newLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:ledger_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Store{}, &models.Product{}, &models.StockHistory{},
	))
	return db
}

func appendEntry(t *testing.T, repo Repository, productID uuid.UUID, total, online int, action enums.StockAction) {
	t.Helper()
	err := repo.Create(context.Background(), &models.StockHistory{
		ProductID:    productID,
		ActorKind:    enums.ActorKindSeller,
		ActorID:      uuid.New(),
		Action:       action,
		ChangeTotal:  total,
		ChangeOnline: online,
	})
	require.NoError(t, err)
}

func TestSumDeltasReconciles(t *testing.T) {
	t.Parallel()

	db := newLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	productID := uuid.New()

	appendEntry(t, repo, productID, 10, 10, enums.StockActionCreated)
	appendEntry(t, repo, productID, -3, -3, enums.StockActionSale)
	appendEntry(t, repo, productID, -2, 0, enums.StockActionSale)
	appendEntry(t, repo, productID, 4, 4, enums.StockActionReturn)

	total, online, err := repo.SumDeltas(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 9, total)
	assert.Equal(t, 11, online)

	// Unknown products sum to zero rather than erroring.
	total, online, err = repo.SumDeltas(ctx, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Zero(t, online)
}

func TestListByProductPagination(t *testing.T) {
	t.Parallel()

	db := newLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	productID := uuid.New()

	for i := 0; i < 5; i++ {
		appendEntry(t, repo, productID, -1, -1, enums.StockActionSale)
	}
	appendEntry(t, repo, uuid.New(), 7, 7, enums.StockActionCreated)

	first, next, err := repo.ListByProduct(ctx, productID, pagination.Params{Limit: 3})
	require.NoError(t, err)
	require.Len(t, first, 3)
	require.NotEmpty(t, next)

	rest, next2, err := repo.ListByProduct(ctx, productID, pagination.Params{Limit: 3, Cursor: next})
	require.NoError(t, err)
	require.Len(t, rest, 2)
	assert.Empty(t, next2)

	// Pages never overlap.
	seen := map[uuid.UUID]bool{}
	for _, entry := range append(first, rest...) {
		require.False(t, seen[entry.ID])
		seen[entry.ID] = true
	}
}

func TestListBySellerScopesToOwnedProducts(t *testing.T) {
	t.Parallel()

	db := newLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	sellerID := uuid.New()
	store := &models.Store{ID: uuid.New(), SellerID: sellerID, Name: "Mine"}
	require.NoError(t, db.Create(store).Error)
	mine := &models.Product{ID: uuid.New(), StoreID: store.ID, Name: "Mine"}
	require.NoError(t, db.Create(mine).Error)

	otherStore := &models.Store{ID: uuid.New(), SellerID: uuid.New(), Name: "Theirs"}
	require.NoError(t, db.Create(otherStore).Error)
	theirs := &models.Product{ID: uuid.New(), StoreID: otherStore.ID, Name: "Theirs"}
	require.NoError(t, db.Create(theirs).Error)

	appendEntry(t, repo, mine.ID, 5, 5, enums.StockActionCreated)
	appendEntry(t, repo, theirs.ID, 9, 9, enums.StockActionCreated)

	entries, _, err := repo.ListBySeller(ctx, sellerID, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, mine.ID, entries[0].ProductID)
}

func TestServiceListForProduct(t *testing.T) {
	t.Parallel()

	db := newLedgerTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo)
	require.NoError(t, err)
	ctx := context.Background()
	productID := uuid.New()

	appendEntry(t, repo, productID, 10, 10, enums.StockActionCreated)

	entries, _, err := svc.ListForProduct(ctx, productID, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, enums.StockActionCreated, entries[0].Action)
	assert.Equal(t, enums.ActorKindSeller, entries[0].Actor().Kind)
	assert.NotEmpty(t, entries[0].CreatedAt)

	_, _, err = svc.ListForProduct(ctx, uuid.Nil, pagination.Params{})
	require.Error(t, err)
}
