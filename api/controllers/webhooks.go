package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/sreejithpv/keralacart-backend/api/responses"
	"github.com/sreejithpv/keralacart-backend/api/validators"
	ordersvc "github.com/sreejithpv/keralacart-backend/internal/orders"
	pkgerrors "github.com/sreejithpv/keralacart-backend/pkg/errors"
	"github.com/sreejithpv/keralacart-backend/pkg/logger"
)

// PaymentWebhook consumes the payment provider's confirmation callback and
// moves the order out of PENDING_PAYMENT. Replays with the same reference
// return the current order unchanged.
func PaymentWebhook(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var payload paymentWebhookRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithFields(r.Context(), map[string]any{
			"order_id":          payload.OrderID.String(),
			"payment_reference": payload.PaymentReference,
		})

		order, err := svc.MarkPaid(ctx, payload.OrderID, payload.PaymentReference)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		logg.Info(ctx, "webhook.payment.confirmed")
		responses.WriteSuccess(w, order)
	}
}

type paymentWebhookRequest struct {
	OrderID          uuid.UUID `json:"order_id" validate:"required"`
	PaymentReference string    `json:"payment_reference" validate:"required,min=1,max=255"`
}
