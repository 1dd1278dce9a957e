package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/sreejithpv/keralacart-backend/pkg/db/models"
)

// OrderDTO is the order payload returned to sellers and buyers.
type OrderDTO struct {
	ID               uuid.UUID      `json:"id"`
	StoreID          uuid.UUID      `json:"store_id"`
	BuyerID          *uuid.UUID     `json:"buyer_id,omitempty"`
	CustomerName     string         `json:"customer_name"`
	CustomerPhone    string         `json:"customer_phone"`
	ShippingAddress  string         `json:"shipping_address"`
	TotalAmount      string         `json:"total_amount"`
	Status           string         `json:"status"`
	ShippingProvider *string        `json:"shipping_provider,omitempty"`
	TrackingID       *string        `json:"tracking_id,omitempty"`
	PaymentReference *string        `json:"payment_reference,omitempty"`
	PaidAt           *time.Time     `json:"paid_at,omitempty"`
	AcceptedAt       *time.Time     `json:"accepted_at,omitempty"`
	ShippedAt        *time.Time     `json:"shipped_at,omitempty"`
	Items            []OrderItemDTO `json:"items"`
	CreatedAt        time.Time      `json:"created_at"`
}

// OrderItemDTO is one snapshotted cart line.
type OrderItemDTO struct {
	ID          uuid.UUID  `json:"id"`
	ProductID   *uuid.UUID `json:"product_id,omitempty"`
	ProductName string     `json:"product_name"`
	Quantity    int        `json:"quantity"`
	Price       string     `json:"price"`
}

// NewOrderDTO builds a DTO from the persisted model.
func NewOrderDTO(order *models.Order) *OrderDTO {
	items := make([]OrderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemDTO{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price.StringFixed(2),
		})
	}
	return &OrderDTO{
		ID:               order.ID,
		StoreID:          order.StoreID,
		BuyerID:          order.BuyerID,
		CustomerName:     order.CustomerName,
		CustomerPhone:    order.CustomerPhone,
		ShippingAddress:  order.ShippingAddress,
		TotalAmount:      order.TotalAmount.StringFixed(2),
		Status:           order.Status.String(),
		ShippingProvider: order.ShippingProvider,
		TrackingID:       order.TrackingID,
		PaymentReference: order.PaymentReference,
		PaidAt:           order.PaidAt,
		AcceptedAt:       order.AcceptedAt,
		ShippedAt:        order.ShippedAt,
		Items:            items,
		CreatedAt:        order.CreatedAt,
	}
}

func mapOrderDTOs(rows []models.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewOrderDTO(&rows[i]))
	}
	return out
}
