package controllers

import (
	"net/http"

	"github.com/sreejithpv/keralacart-backend/api/middleware"
	"github.com/sreejithpv/keralacart-backend/api/responses"
	storesvc "github.com/sreejithpv/keralacart-backend/internal/stores"
	pkgerrors "github.com/sreejithpv/keralacart-backend/pkg/errors"
	"github.com/sreejithpv/keralacart-backend/pkg/logger"
)

// SellerDashboard returns the store rollup for the seller home screen.
func SellerDashboard(svc storesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}

		actor := middleware.ActorFromContext(r.Context())
		if !actor.IsSeller() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "seller context missing"))
			return
		}

		summary, err := svc.DashboardSummary(r.Context(), actor.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}
