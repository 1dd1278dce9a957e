package products

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sreejithpv/keralacart-backend/pkg/db/models"
	"github.com/sreejithpv/keralacart-backend/pkg/pagination"
)

// PublicFilters describe the filter knobs for the public browse endpoint.
type PublicFilters struct {
	StoreID     *uuid.UUID
	Query       string
	PriceMin    *decimal.Decimal
	PriceMax    *decimal.Decimal
	InStockOnly bool
}

// ReviewStats is the aggregate rating shown on a storefront listing.
type ReviewStats struct {
	AverageRating float64
	ReviewCount   int64
}

// Repository exposes product persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListByStore(ctx context.Context, storeID uuid.UUID, params pagination.Params) ([]models.Product, string, error)
	ListPublic(ctx context.Context, filters PublicFilters, params pagination.Params) ([]models.Product, string, error)
	ReviewStatsFor(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]ReviewStats, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// ListByStore returns the seller view of a store's catalog, newest first.
func (r *repository) ListByStore(ctx context.Context, storeID uuid.UUID, params pagination.Params) ([]models.Product, string, error) {
	query := r.db.WithContext(ctx).Where("store_id = ?", storeID)
	return r.page(query, params)
}

// ListPublic returns active products visible in the online storefront.
func (r *repository) ListPublic(ctx context.Context, filters PublicFilters, params pagination.Params) ([]models.Product, string, error) {
	query := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("sale_channel IN ?", []string{"BOTH", "ONLINE_ONLY"})

	if filters.StoreID != nil {
		query = query.Where("store_id = ?", *filters.StoreID)
	}
	if filters.Query != "" {
		like := "%" + filters.Query + "%"
		query = query.Where("name LIKE ? OR model_name LIKE ?", like, like)
	}
	if filters.PriceMin != nil {
		query = query.Where("price >= ?", *filters.PriceMin)
	}
	if filters.PriceMax != nil {
		query = query.Where("price <= ?", *filters.PriceMax)
	}
	if filters.InStockOnly {
		query = query.Where("online_stock > 0")
	}

	return r.page(query, params)
}

// ReviewStatsFor aggregates review ratings per product. Products without
// reviews simply have no entry in the result.
func (r *repository) ReviewStatsFor(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]ReviewStats, error) {
	stats := make(map[uuid.UUID]ReviewStats, len(productIDs))
	if len(productIDs) == 0 {
		return stats, nil
	}

	var rows []struct {
		ProductID uuid.UUID
		Average   float64
		Count     int64
	}
	if err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("product_id, AVG(rating) AS average, COUNT(*) AS count").
		Where("product_id IN ?", productIDs).
		Group("product_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats[row.ProductID] = ReviewStats{AverageRating: row.Average, ReviewCount: row.Count}
	}
	return stats, nil
}

func (r *repository) page(query *gorm.DB, params pagination.Params) ([]models.Product, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	limit := pagination.NormalizeLimit(params.Limit)
	var rows []models.Product
	if err := query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error; err != nil {
		return nil, "", err
	}

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, next, nil
}
