package controllers

import (
	"net/http"

	"github.com/sreejithpv/keralacart-backend/api/middleware"
	"github.com/sreejithpv/keralacart-backend/api/responses"
	ledgersvc "github.com/sreejithpv/keralacart-backend/internal/ledger"
	productsvc "github.com/sreejithpv/keralacart-backend/internal/products"
	pkgerrors "github.com/sreejithpv/keralacart-backend/pkg/errors"
	"github.com/sreejithpv/keralacart-backend/pkg/logger"
)

// SellerStockHistory pages ledger entries across every product the seller's
// store owns, newest first.
func SellerStockHistory(svc ledgersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
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

// SellerProductStockHistory pages the ledger for one owned product. The
// product service checks ownership before the ledger is read.
func SellerProductStockHistory(ledgers ledgersvc.Service, products productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ledgers == nil || products == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
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

		if err := products.VerifyOwnership(r.Context(), actor.ID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, next, err := ledgers.ListForProduct(r.Context(), productID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, pagedResponse{Items: items, NextCursor: next})
	}
}
