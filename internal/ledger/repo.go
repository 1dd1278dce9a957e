package ledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sreejithpv/keralacart-backend/pkg/db/models"
	"github.com/sreejithpv/keralacart-backend/pkg/pagination"
)

// Repository manages persistence for stock history entries. The write surface
// is append-only: there is no update or delete on purpose.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.StockHistory) error
	ListByProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) ([]models.StockHistory, string, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) ([]models.StockHistory, string, error)
	SumDeltas(ctx context.Context, productID uuid.UUID) (total int, online int, err error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.StockHistory) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListByProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) ([]models.StockHistory, string, error) {
	query := r.db.WithContext(ctx).
		Model(&models.StockHistory{}).
		Where("product_id = ?", productID)
	return r.page(query, params)
}

func (r *repository) ListBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) ([]models.StockHistory, string, error) {
	query := r.db.WithContext(ctx).
		Model(&models.StockHistory{}).
		Joins("JOIN products ON products.id = stock_histories.product_id").
		Joins("JOIN stores ON stores.id = products.store_id").
		Where("stores.seller_id = ?", sellerID)
	return r.page(query, params)
}

func (r *repository) SumDeltas(ctx context.Context, productID uuid.UUID) (int, int, error) {
	var sums struct {
		Total  int
		Online int
	}
	err := r.db.WithContext(ctx).
		Model(&models.StockHistory{}).
		Select("COALESCE(SUM(change_total), 0) AS total, COALESCE(SUM(change_online), 0) AS online").
		Where("product_id = ?", productID).
		Scan(&sums).Error
	if err != nil {
		return 0, 0, err
	}
	return sums.Total, sums.Online, nil
}

func (r *repository) page(query *gorm.DB, params pagination.Params) ([]models.StockHistory, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where(
			"(stock_histories.created_at < ?) OR (stock_histories.created_at = ? AND stock_histories.id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	limit := pagination.NormalizeLimit(params.Limit)
	var entries []models.StockHistory
	err = query.
		Order("stock_histories.created_at DESC, stock_histories.id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&entries).Error
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return entries, next, nil
}
