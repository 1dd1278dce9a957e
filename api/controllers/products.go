package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sreejithpv/keralacart-backend/api/middleware"
	"github.com/sreejithpv/keralacart-backend/api/responses"
	"github.com/sreejithpv/keralacart-backend/api/validators"
	productsvc "github.com/sreejithpv/keralacart-backend/internal/products"
	"github.com/sreejithpv/keralacart-backend/pkg/enums"
	pkgerrors "github.com/sreejithpv/keralacart-backend/pkg/errors"
	"github.com/sreejithpv/keralacart-backend/pkg/logger"
)

// SellerCreateProduct creates a listing under the seller's store and writes
// the opening ledger entry in the same transaction.
func SellerCreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		if !actor.IsSeller() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "seller context missing"))
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), actor.ID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// SellerUpdateProduct patches listing metadata. Stock counters are rejected
// here; they only move through the stock endpoint.
func SellerUpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		if !actor.IsSeller() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "seller context missing"))
			return
		}

		productID, err := parseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), actor.ID, productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// SellerDeleteProduct removes a listing. Past order lines keep their frozen
// name and price; their product reference goes null.
func SellerDeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		if !actor.IsSeller() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "seller context missing"))
			return
		}

		productID, err := parseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), actor.ID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// SellerToggleProduct flips the listing between visible and hidden.
func SellerToggleProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		if !actor.IsSeller() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "seller context missing"))
			return
		}

		productID, err := parseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.ToggleActive(r.Context(), actor.ID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// SellerUpdateStock sets absolute counter targets through the inventory
// guard, producing an UPDATED ledger entry when anything moves.
func SellerUpdateStock(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		if !actor.IsSeller() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "seller context missing"))
			return
		}

		productID, err := parseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateStock(r.Context(), actor.ID, productID, productsvc.UpdateStockInput{
			TotalStock:  payload.TotalStock,
			OnlineStock: payload.OnlineStock,
			Note:        validators.SanitizeString(payload.Note, 255),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// SellerListProducts pages through every listing owned by the seller's
// store, active or not.
func SellerListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
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

type createProductRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=255"`
	ModelName   *string `json:"model_name,omitempty" validate:"omitempty,max=255"`
	Description *string `json:"description,omitempty"`
	Price       string  `json:"price" validate:"required"`
	MRP         *string `json:"mrp,omitempty"`
	TotalStock  int     `json:"total_stock" validate:"min=0"`
	OnlineStock int     `json:"online_stock" validate:"min=0"`
	SaleChannel *string `json:"sale_channel,omitempty"`
}

func (p createProductRequest) toInput() (productsvc.CreateProductInput, error) {
	price, err := parseMoney(p.Price, "price")
	if err != nil {
		return productsvc.CreateProductInput{}, err
	}

	var mrp *decimal.Decimal
	if p.MRP != nil {
		parsed, err := parseMoney(*p.MRP, "mrp")
		if err != nil {
			return productsvc.CreateProductInput{}, err
		}
		mrp = &parsed
	}

	channel := enums.SaleChannelBoth
	if p.SaleChannel != nil {
		channel, err = enums.ParseSaleChannel(strings.TrimSpace(*p.SaleChannel))
		if err != nil {
			return productsvc.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sale channel")
		}
	}

	return productsvc.CreateProductInput{
		Name:        validators.SanitizeString(p.Name, 255),
		ModelName:   p.ModelName,
		Description: p.Description,
		Price:       price,
		MRP:         mrp,
		TotalStock:  p.TotalStock,
		OnlineStock: p.OnlineStock,
		SaleChannel: channel,
	}, nil
}

type updateProductRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	ModelName   *string `json:"model_name,omitempty" validate:"omitempty,max=255"`
	Description *string `json:"description,omitempty"`
	Price       *string `json:"price,omitempty"`
	MRP         *string `json:"mrp,omitempty"`
	SaleChannel *string `json:"sale_channel,omitempty"`
}

func (p updateProductRequest) toInput() (productsvc.UpdateProductInput, error) {
	input := productsvc.UpdateProductInput{
		Name:        p.Name,
		ModelName:   p.ModelName,
		Description: p.Description,
	}

	if p.Price != nil {
		price, err := parseMoney(*p.Price, "price")
		if err != nil {
			return productsvc.UpdateProductInput{}, err
		}
		input.Price = &price
	}

	if p.MRP != nil {
		mrp, err := parseMoney(*p.MRP, "mrp")
		if err != nil {
			return productsvc.UpdateProductInput{}, err
		}
		input.MRP = &mrp
	}

	if p.SaleChannel != nil {
		channel, err := enums.ParseSaleChannel(strings.TrimSpace(*p.SaleChannel))
		if err != nil {
			return productsvc.UpdateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sale channel")
		}
		input.SaleChannel = &channel
	}

	return input, nil
}

type updateStockRequest struct {
	TotalStock  *int   `json:"total_stock,omitempty" validate:"omitempty,min=0"`
	OnlineStock *int   `json:"online_stock,omitempty" validate:"omitempty,min=0"`
	Note        string `json:"note,omitempty" validate:"omitempty,max=255"`
}

func parseMoney(raw, field string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount").WithDetails(map[string]any{"field": field})
	}
	if value.IsNegative() {
		return decimal.Decimal{}, pkgerrors.New(pkgerrors.CodeValidation, "amount must not be negative").WithDetails(map[string]any{"field": field})
	}
	return value, nil
}

func parseIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id").WithDetails(map[string]any{"param": name})
	}
	return id, nil
}
