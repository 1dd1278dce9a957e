package stores

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sreejithpv/keralacart-backend/pkg/db/models"
	"github.com/sreejithpv/keralacart-backend/pkg/enums"
	pkgerrors "github.com/sreejithpv/keralacart-backend/pkg/errors"
)

// Service exposes store lookups and the seller dashboard rollup.
type Service interface {
	StoreForSeller(ctx context.Context, sellerID uuid.UUID) (*models.Store, error)
	DashboardSummary(ctx context.Context, sellerID uuid.UUID) (*DashboardSummaryDTO, error)
}

// DashboardSummaryDTO is the seller home screen rollup.
type DashboardSummaryDTO struct {
	StoreID         uuid.UUID       `json:"store_id"`
	StoreName       string          `json:"store_name"`
	ProductCount    int64           `json:"product_count"`
	ActiveProducts  int64           `json:"active_products"`
	TotalStockUnits int64           `json:"total_stock_units"`
	OrdersByStatus  map[string]int  `json:"orders_by_status"`
	PendingOrders   int64           `json:"pending_orders"`
	DeliveredTotal  string          `json:"delivered_total"`
	TopProducts     []TopProductDTO `json:"top_products"`
}

// TopProductDTO is one row of the best-sellers list, ranked by units sold
// across delivered orders.
type TopProductDTO struct {
	ProductID   *uuid.UUID `json:"product_id,omitempty"`
	ProductName string     `json:"product_name"`
	UnitsSold   int64      `json:"units_sold"`
}

const topProductLimit = 5

type service struct {
	repo Repository
	db   *gorm.DB
}

// NewService constructs a store service instance.
func NewService(repo Repository, db *gorm.DB) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	return &service{repo: repo, db: db}, nil
}

// StoreForSeller loads the seller's store or reports NOT_FOUND.
func (s *service) StoreForSeller(ctx context.Context, sellerID uuid.UUID) (*models.Store, error) {
	store, err := s.repo.FindBySellerID(ctx, sellerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found for seller")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return store, nil
}

// DashboardSummary aggregates product and order counts for the seller's store.
func (s *service) DashboardSummary(ctx context.Context, sellerID uuid.UUID) (*DashboardSummaryDTO, error) {
	store, err := s.StoreForSeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	summary := &DashboardSummaryDTO{
		StoreID:        store.ID,
		StoreName:      store.Name,
		OrdersByStatus: map[string]int{},
	}

	db := s.db.WithContext(ctx)
	if err := db.Model(&models.Product{}).
		Where("store_id = ?", store.ID).
		Count(&summary.ProductCount).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products")
	}
	if err := db.Model(&models.Product{}).
		Where("store_id = ? AND is_active = ?", store.ID, true).
		Count(&summary.ActiveProducts).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active products")
	}

	var units struct{ Units int64 }
	if err := db.Model(&models.Product{}).
		Select("COALESCE(SUM(total_stock), 0) AS units").
		Where("store_id = ?", store.ID).
		Scan(&units).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum stock units")
	}
	summary.TotalStockUnits = units.Units

	var rows []struct {
		Status enums.OrderStatus
		N      int
	}
	if err := db.Model(&models.Order{}).
		Select("status, COUNT(*) AS n").
		Where("store_id = ?", store.ID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders by status")
	}
	for _, row := range rows {
		summary.OrdersByStatus[row.Status.String()] = row.N
		if row.Status == enums.OrderStatusHeldForSeller {
			summary.PendingOrders = int64(row.N)
		}
	}

	var revenue struct{ Total decimal.Decimal }
	if err := db.Model(&models.Order{}).
		Select("COALESCE(SUM(total_amount), 0) AS total").
		Where("store_id = ? AND status = ?", store.ID, enums.OrderStatusDelivered).
		Scan(&revenue).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum delivered revenue")
	}
	summary.DeliveredTotal = revenue.Total.StringFixed(2)

	var top []struct {
		ProductID   *uuid.UUID
		ProductName string
		Units       int64
	}
	if err := db.Model(&models.OrderItem{}).
		Select("order_items.product_id, order_items.product_name, SUM(order_items.quantity) AS units").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.store_id = ? AND orders.status = ?", store.ID, enums.OrderStatusDelivered).
		Group("order_items.product_id, order_items.product_name").
		Order("units DESC").
		Limit(topProductLimit).
		Scan(&top).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rank top products")
	}
	for _, row := range top {
		summary.TopProducts = append(summary.TopProducts, TopProductDTO{
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			UnitsSold:   row.Units,
		})
	}

	return summary, nil
}
