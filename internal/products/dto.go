package products

import (
	"time"

	"github.com/google/uuid"

	"github.com/sreejithpv/keralacart-backend/pkg/db/models"
)

// ProductDTO represents the seller product payload returned to clients.
type ProductDTO struct {
	ID          uuid.UUID `json:"id"`
	StoreID     uuid.UUID `json:"store_id"`
	Name        string    `json:"name"`
	ModelName   *string   `json:"model_name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Price       string    `json:"price"`
	MRP         string    `json:"mrp"`
	TotalStock  int       `json:"total_stock"`
	OnlineStock int       `json:"online_stock"`
	SaleChannel string    `json:"sale_channel"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PublicProductDTO hides counters the storefront has no business seeing.
// Buyers only learn whether an item can be added to a cart.
type PublicProductDTO struct {
	ID            uuid.UUID `json:"id"`
	StoreID       uuid.UUID `json:"store_id"`
	Name          string    `json:"name"`
	ModelName     *string   `json:"model_name,omitempty"`
	Description   *string   `json:"description,omitempty"`
	Price         string    `json:"price"`
	MRP           string    `json:"mrp"`
	InStock       bool      `json:"in_stock"`
	AverageRating float64   `json:"average_rating"`
	ReviewCount   int64     `json:"review_count"`
}

// NewProductDTO builds the seller DTO from the persisted model.
func NewProductDTO(product *models.Product) *ProductDTO {
	return &ProductDTO{
		ID:          product.ID,
		StoreID:     product.StoreID,
		Name:        product.Name,
		ModelName:   product.ModelName,
		Description: product.Description,
		Price:       product.Price.StringFixed(2),
		MRP:         product.MRP.StringFixed(2),
		TotalStock:  product.TotalStock,
		OnlineStock: product.OnlineStock,
		SaleChannel: product.SaleChannel.String(),
		IsActive:    product.IsActive,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

// NewPublicProductDTO builds the storefront DTO from the persisted model and
// its review aggregate. An unreviewed product reads as rating 0, count 0.
func NewPublicProductDTO(product *models.Product, stats ReviewStats) *PublicProductDTO {
	return &PublicProductDTO{
		ID:            product.ID,
		StoreID:       product.StoreID,
		Name:          product.Name,
		ModelName:     product.ModelName,
		Description:   product.Description,
		Price:         product.Price.StringFixed(2),
		MRP:           product.MRP.StringFixed(2),
		InStock:       product.OnlineStock > 0,
		AverageRating: stats.AverageRating,
		ReviewCount:   stats.ReviewCount,
	}
}

func mapProductDTOs(rows []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewProductDTO(&rows[i]))
	}
	return out
}

func mapPublicProductDTOs(rows []models.Product, stats map[uuid.UUID]ReviewStats) []PublicProductDTO {
	out := make([]PublicProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewPublicProductDTO(&rows[i], stats[rows[i].ID]))
	}
	return out
}
