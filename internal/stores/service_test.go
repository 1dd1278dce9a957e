package stores

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sreejithpv/keralacart-backend/pkg/db/models"
	"github.com/sreejithpv/keralacart-backend/pkg/enums"
	pkgerrors "github.com/sreejithpv/keralacart-backend/pkg/errors"
)

func newStoreTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:stores_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Store{}, &models.Product{}, &models.Order{}, &models.OrderItem{}))
	return conn
}

func seedStore(t *testing.T, conn *gorm.DB, sellerID uuid.UUID, name string) *models.Store {
	t.Helper()
	store := &models.Store{ID: uuid.New(), SellerID: sellerID, Name: name}
	require.NoError(t, conn.Create(store).Error)
	return store
}

func seedOrderWithStatus(t *testing.T, conn *gorm.DB, storeID uuid.UUID, status enums.OrderStatus, total string) *models.Order {
	t.Helper()
	amount, err := decimal.NewFromString(total)
	require.NoError(t, err)
	order := &models.Order{
		ID:           uuid.New(),
		StoreID:      storeID,
		CustomerName: "Dashboard Customer",
		TotalAmount:  amount,
		Status:       status,
	}
	require.NoError(t, conn.Create(order).Error)
	return order
}

func seedOrderItem(t *testing.T, conn *gorm.DB, orderID uuid.UUID, product *models.Product, qty int) {
	t.Helper()
	item := &models.OrderItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		ProductID:   &product.ID,
		ProductName: product.Name,
		Quantity:    qty,
		Price:       product.Price,
	}
	require.NoError(t, conn.Create(item).Error)
}

func TestStoreForSellerNotFound(t *testing.T) {
	conn := newStoreTestDB(t)
	svc, err := NewService(NewRepository(conn), conn)
	require.NoError(t, err)

	_, err = svc.StoreForSeller(context.Background(), uuid.New())
	require.Error(t, err)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestDashboardSummaryAggregates(t *testing.T) {
	conn := newStoreTestDB(t)
	sellerID := uuid.New()
	store := seedStore(t, conn, sellerID, "Malabar Electronics")
	other := seedStore(t, conn, uuid.New(), "Other Store")

	products := []models.Product{
		{ID: uuid.New(), StoreID: store.ID, Name: "Mixer", Price: decimal.NewFromInt(2500), MRP: decimal.NewFromInt(2800), TotalStock: 10, OnlineStock: 6, SaleChannel: enums.SaleChannelBoth, IsActive: true},
		{ID: uuid.New(), StoreID: store.ID, Name: "Grinder", Price: decimal.NewFromInt(4200), MRP: decimal.NewFromInt(4200), TotalStock: 4, OnlineStock: 4, SaleChannel: enums.SaleChannelOnlineOnly, IsActive: true},
		{ID: uuid.New(), StoreID: store.ID, Name: "Old Fan", Price: decimal.NewFromInt(900), MRP: decimal.NewFromInt(1200), TotalStock: 1, OnlineStock: 0, SaleChannel: enums.SaleChannelOfflineOnly, IsActive: false},
		{ID: uuid.New(), StoreID: other.ID, Name: "Foreign", Price: decimal.NewFromInt(100), MRP: decimal.NewFromInt(100), TotalStock: 50, OnlineStock: 50, SaleChannel: enums.SaleChannelBoth, IsActive: true},
	}
	for i := range products {
		require.NoError(t, conn.Create(&products[i]).Error)
	}

	held := seedOrderWithStatus(t, conn, store.ID, enums.OrderStatusHeldForSeller, "2500.00")
	seedOrderWithStatus(t, conn, store.ID, enums.OrderStatusHeldForSeller, "4200.00")
	delivered1 := seedOrderWithStatus(t, conn, store.ID, enums.OrderStatusDelivered, "2500.00")
	delivered2 := seedOrderWithStatus(t, conn, store.ID, enums.OrderStatusDelivered, "900.50")
	seedOrderWithStatus(t, conn, store.ID, enums.OrderStatusCancelled, "4200.00")
	foreign := seedOrderWithStatus(t, conn, other.ID, enums.OrderStatusDelivered, "9999.00")

	seedOrderItem(t, conn, delivered1.ID, &products[0], 1)
	seedOrderItem(t, conn, delivered2.ID, &products[0], 2)
	seedOrderItem(t, conn, delivered2.ID, &products[2], 1)
	// Undelivered and foreign-store items must not count toward best sellers.
	seedOrderItem(t, conn, held.ID, &products[1], 9)
	seedOrderItem(t, conn, foreign.ID, &products[3], 9)

	svc, err := NewService(NewRepository(conn), conn)
	require.NoError(t, err)

	summary, err := svc.DashboardSummary(context.Background(), sellerID)
	require.NoError(t, err)

	require.Equal(t, store.ID, summary.StoreID)
	require.Equal(t, "Malabar Electronics", summary.StoreName)
	require.EqualValues(t, 3, summary.ProductCount)
	require.EqualValues(t, 2, summary.ActiveProducts)
	require.EqualValues(t, 15, summary.TotalStockUnits)
	require.Equal(t, 2, summary.OrdersByStatus[enums.OrderStatusHeldForSeller.String()])
	require.Equal(t, 2, summary.OrdersByStatus[enums.OrderStatusDelivered.String()])
	require.Equal(t, 1, summary.OrdersByStatus[enums.OrderStatusCancelled.String()])
	require.EqualValues(t, 2, summary.PendingOrders)
	require.Equal(t, "3400.50", summary.DeliveredTotal)

	require.Len(t, summary.TopProducts, 2)
	require.Equal(t, "Mixer", summary.TopProducts[0].ProductName)
	require.EqualValues(t, 3, summary.TopProducts[0].UnitsSold)
	require.Equal(t, "Old Fan", summary.TopProducts[1].ProductName)
	require.EqualValues(t, 1, summary.TopProducts[1].UnitsSold)
}
