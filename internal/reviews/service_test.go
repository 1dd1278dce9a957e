package reviews

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sreejithpv/keralacart-backend/pkg/db/models"
	"github.com/sreejithpv/keralacart-backend/pkg/enums"
	pkgerrors "github.com/sreejithpv/keralacart-backend/pkg/errors"
	"github.com/sreejithpv/keralacart-backend/pkg/pagination"
)

func newReviewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:reviews_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Order{}, &models.OrderItem{}, &models.Review{},
	))
	return db
}

func seedDeliveredOrder(t *testing.T, db *gorm.DB, buyerID, productID uuid.UUID, status enums.OrderStatus) {
	t.Helper()
	order := &models.Order{
		ID:            uuid.New(),
		StoreID:       uuid.New(),
		BuyerID:       &buyerID,
		CustomerName:  "Test",
		CustomerPhone: "9447000000",
		TotalAmount:   decimal.NewFromInt(100),
		Status:        status,
		Items: []models.OrderItem{{
			ID:          uuid.New(),
			ProductID:   &productID,
			ProductName: "Thing",
			Quantity:    1,
			Price:       decimal.NewFromInt(100),
		}},
	}
	require.NoError(t, db.Create(order).Error)
}

func TestCanReview(t *testing.T) {
	t.Parallel()

	db := newReviewTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	ctx := context.Background()
	buyerID := uuid.New()
	productID := uuid.New()

	// No purchase yet.
	elig, err := svc.CanReview(ctx, buyerID, productID)
	require.NoError(t, err)
	assert.False(t, elig.HasPurchased)
	assert.False(t, elig.AlreadyReviewed)

	// An undelivered order does not count.
	seedDeliveredOrder(t, db, buyerID, productID, enums.OrderStatusShipped)
	elig, err = svc.CanReview(ctx, buyerID, productID)
	require.NoError(t, err)
	assert.False(t, elig.HasPurchased)

	seedDeliveredOrder(t, db, buyerID, productID, enums.OrderStatusDelivered)
	elig, err = svc.CanReview(ctx, buyerID, productID)
	require.NoError(t, err)
	assert.True(t, elig.HasPurchased)
	assert.False(t, elig.AlreadyReviewed)
}

func TestCreateReviewGate(t *testing.T) {
	t.Parallel()

	db := newReviewTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	ctx := context.Background()
	buyerID := uuid.New()
	productID := uuid.New()

	_, err = svc.Create(ctx, buyerID, CreateReviewInput{ProductID: productID, Rating: 5})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	seedDeliveredOrder(t, db, buyerID, productID, enums.OrderStatusDelivered)

	_, err = svc.Create(ctx, buyerID, CreateReviewInput{ProductID: productID, Rating: 0})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = svc.Create(ctx, buyerID, CreateReviewInput{ProductID: productID, Rating: 6})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	comment := "Solid quality, quick delivery."
	review, err := svc.Create(ctx, buyerID, CreateReviewInput{
		ProductID: productID,
		Rating:    4,
		Comment:   &comment,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, review.Rating)

	_, err = svc.Create(ctx, buyerID, CreateReviewInput{ProductID: productID, Rating: 5})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeAlreadyReviewed))

	elig, err := svc.CanReview(ctx, buyerID, productID)
	require.NoError(t, err)
	assert.True(t, elig.AlreadyReviewed)
}

func TestListForProduct(t *testing.T) {
	t.Parallel()

	db := newReviewTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	ctx := context.Background()
	productID := uuid.New()

	for i := 0; i < 3; i++ {
		buyerID := uuid.New()
		seedDeliveredOrder(t, db, buyerID, productID, enums.OrderStatusDelivered)
		_, err := svc.Create(ctx, buyerID, CreateReviewInput{ProductID: productID, Rating: i + 1})
		require.NoError(t, err)
	}

	rows, next, err := svc.ListForProduct(ctx, productID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.NotEmpty(t, next)

	rest, next2, err := svc.ListForProduct(ctx, productID, pagination.Params{Limit: 2, Cursor: next})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Empty(t, next2)
}
