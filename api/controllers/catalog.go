package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/sreejithpv/keralacart-backend/api/responses"
	"github.com/sreejithpv/keralacart-backend/api/validators"
	productsvc "github.com/sreejithpv/keralacart-backend/internal/products"
	pkgerrors "github.com/sreejithpv/keralacart-backend/pkg/errors"
	"github.com/sreejithpv/keralacart-backend/pkg/logger"
)

// PublicListProducts serves the storefront catalog. Only active listings on
// an online sale channel appear; stock counters stay hidden.
func PublicListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := publicFiltersFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, next, err := svc.ListPublic(r.Context(), filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, pagedResponse{Items: items, NextCursor: next})
	}
}

// PublicGetProduct returns one storefront listing or 404 when it is hidden,
// offline-only, or gone.
func PublicGetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := parseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetPublic(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

func publicFiltersFromQuery(r *http.Request) (productsvc.PublicFilters, error) {
	filters := productsvc.PublicFilters{
		Query:       validators.SanitizeString(r.URL.Query().Get("q"), 255),
		InStockOnly: r.URL.Query().Get("in_stock") == "true",
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("store_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return productsvc.PublicFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid store id")
		}
		filters.StoreID = &id
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("price_min")); raw != "" {
		value, err := parseMoney(raw, "price_min")
		if err != nil {
			return productsvc.PublicFilters{}, err
		}
		filters.PriceMin = &value
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("price_max")); raw != "" {
		value, err := parseMoney(raw, "price_max")
		if err != nil {
			return productsvc.PublicFilters{}, err
		}
		filters.PriceMax = &value
	}

	return filters, nil
}
