package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/sreejithpv/keralacart-backend/api/middleware"
	"github.com/sreejithpv/keralacart-backend/api/responses"
	"github.com/sreejithpv/keralacart-backend/api/validators"
	ordersvc "github.com/sreejithpv/keralacart-backend/internal/orders"
	"github.com/sreejithpv/keralacart-backend/pkg/enums"
	pkgerrors "github.com/sreejithpv/keralacart-backend/pkg/errors"
	"github.com/sreejithpv/keralacart-backend/pkg/logger"
)

// Checkout assembles an online order from the buyer's cart. Stock is
// decremented line by line inside one transaction; any shortfall rolls the
// whole order back.
func Checkout(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		if !actor.IsBuyer() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "buyer context missing"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.CreateBuyerOrder(r.Context(), actor.ID, ordersvc.CreateBuyerOrderInput{
			Items:           payload.toCartItems(),
			CustomerName:    validators.SanitizeString(payload.CustomerName, 255),
			CustomerPhone:   validators.SanitizeString(payload.CustomerPhone, 32),
			ShippingAddress: validators.SanitizeString(payload.ShippingAddress, 1024),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// SellerCreateLocalOrder records a point-of-sale purchase made at the
// counter. The order is born DELIVERED and decrements total stock only.
func SellerCreateLocalOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		if !actor.IsSeller() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "seller context missing"))
			return
		}

		var payload localOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.CreateLocalOrder(r.Context(), actor.ID, ordersvc.CreateLocalOrderInput{
			Items:         payload.toCartItems(),
			CustomerName:  validators.SanitizeString(payload.CustomerName, 255),
			CustomerPhone: validators.SanitizeString(payload.CustomerPhone, 32),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// SellerOrderTransition drives an order to the target lifecycle state. The
// target is fixed per route so accept/ship/deliver/cancel/refund each get
// their own idempotency scope.
func SellerOrderTransition(svc ordersvc.Service, target enums.OrderStatus, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		if !actor.IsSeller() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "seller context missing"))
			return
		}

		orderID, err := parseIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var meta *ordersvc.ShippingMeta
		if target == enums.OrderStatusShipped {
			var payload shipOrderRequest
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			meta = &ordersvc.ShippingMeta{
				Provider:   validators.SanitizeString(payload.Provider, 255),
				TrackingID: validators.SanitizeString(payload.TrackingID, 255),
			}
		}

		order, err := svc.Transition(r.Context(), actor.ID, orderID, target, meta)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// BuyerCancelOrder lets the buyer back out before the seller accepts.
func BuyerCancelOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		if !actor.IsBuyer() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "buyer context missing"))
			return
		}

		orderID, err := parseIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.CancelByBuyer(r.Context(), actor.ID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// OrderDetail returns one order to its buyer or to the seller who owns the
// store it was placed against.
func OrderDetail(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		if err := actor.Validate(); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "actor context missing"))
			return
		}

		orderID, err := parseIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), actor, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// BuyerListOrders pages the buyer's own orders, newest first.
func BuyerListOrders(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		if !actor.IsBuyer() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "buyer context missing"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, next, err := svc.ListForBuyer(r.Context(), actor.ID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, pagedResponse{Items: items, NextCursor: next})
	}
}

// SellerListOrders pages orders against the seller's store, newest first.
func SellerListOrders(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		if !actor.IsSeller() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "seller context missing"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, next, err := svc.ListForSeller(r.Context(), actor.ID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, pagedResponse{Items: items, NextCursor: next})
	}
}

type cartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type checkoutRequest struct {
	Items           []cartItemRequest `json:"items" validate:"required,min=1,dive"`
	CustomerName    string            `json:"customer_name" validate:"required,min=1,max=255"`
	CustomerPhone   string            `json:"customer_phone" validate:"required,min=1,max=32"`
	ShippingAddress string            `json:"shipping_address" validate:"required,min=1"`
}

func (p checkoutRequest) toCartItems() []ordersvc.CartItem {
	return toCartItems(p.Items)
}

type localOrderRequest struct {
	Items         []cartItemRequest `json:"items" validate:"required,min=1,dive"`
	CustomerName  string            `json:"customer_name" validate:"required,min=1,max=255"`
	CustomerPhone string            `json:"customer_phone,omitempty" validate:"omitempty,max=32"`
}

func (p localOrderRequest) toCartItems() []ordersvc.CartItem {
	return toCartItems(p.Items)
}

type shipOrderRequest struct {
	Provider   string `json:"provider" validate:"required,min=1,max=255"`
	TrackingID string `json:"tracking_id" validate:"required,min=1,max=255"`
}

func toCartItems(items []cartItemRequest) []ordersvc.CartItem {
	out := make([]ordersvc.CartItem, 0, len(items))
	for _, item := range items {
		out = append(out, ordersvc.CartItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return out
}
