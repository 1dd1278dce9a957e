package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sreejithpv/keralacart-backend/pkg/db/models"
	"github.com/sreejithpv/keralacart-backend/pkg/enums"
	pkgerrors "github.com/sreejithpv/keralacart-backend/pkg/errors"
)

func TestApplyTransitionHappyPath(t *testing.T) {
	t.Parallel()

	order := &models.Order{Status: enums.OrderStatusPendingPayment}
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	require.NoError(t, ApplyTransition(order, enums.OrderStatusHeldForSeller, nil, now))
	require.NotNil(t, order.PaidAt)
	assert.Equal(t, now, *order.PaidAt)

	later := now.Add(time.Hour)
	require.NoError(t, ApplyTransition(order, enums.OrderStatusAccepted, nil, later))
	require.NotNil(t, order.AcceptedAt)
	assert.Equal(t, later, *order.AcceptedAt)

	meta := &ShippingMeta{Provider: "India Post", TrackingID: "RK123456789IN"}
	require.NoError(t, ApplyTransition(order, enums.OrderStatusShipped, meta, later.Add(time.Hour)))
	require.NotNil(t, order.ShippedAt)
	require.NotNil(t, order.ShippingProvider)
	assert.Equal(t, "India Post", *order.ShippingProvider)

	require.NoError(t, ApplyTransition(order, enums.OrderStatusDelivered, nil, later.Add(2*time.Hour)))
	assert.Equal(t, enums.OrderStatusDelivered, order.Status)
}

func TestApplyTransitionRejectsBackwardMoves(t *testing.T) {
	t.Parallel()

	cases := []struct {
		from, to enums.OrderStatus
	}{
		{enums.OrderStatusShipped, enums.OrderStatusPendingPayment},
		{enums.OrderStatusDelivered, enums.OrderStatusShipped},
		{enums.OrderStatusDelivered, enums.OrderStatusCancelled},
		{enums.OrderStatusCancelled, enums.OrderStatusAccepted},
		{enums.OrderStatusRefunded, enums.OrderStatusPendingPayment},
		{enums.OrderStatusPendingPayment, enums.OrderStatusAccepted},
		{enums.OrderStatusPendingPayment, enums.OrderStatusShipped},
		{enums.OrderStatusHeldForSeller, enums.OrderStatusDelivered},
	}
	for _, tc := range cases {
		order := &models.Order{Status: tc.from}
		err := ApplyTransition(order, tc.to, &ShippingMeta{Provider: "x", TrackingID: "y"}, time.Now())
		require.Error(t, err, "%s -> %s", tc.from, tc.to)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeInvalidTransition, typed.Code())
		assert.Equal(t, tc.from, order.Status)
	}
}

func TestApplyTransitionShippedRequiresMeta(t *testing.T) {
	t.Parallel()

	order := &models.Order{Status: enums.OrderStatusAccepted}
	err := ApplyTransition(order, enums.OrderStatusShipped, nil, time.Now())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition))

	err = ApplyTransition(order, enums.OrderStatusShipped, &ShippingMeta{Provider: "DTDC"}, time.Now())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition))
	assert.Equal(t, enums.OrderStatusAccepted, order.Status)
}

func TestApplyTransitionReEntryIsNoOp(t *testing.T) {
	t.Parallel()

	shipped := time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC)
	order := &models.Order{Status: enums.OrderStatusAccepted}
	meta := &ShippingMeta{Provider: "DTDC", TrackingID: "D100"}
	require.NoError(t, ApplyTransition(order, enums.OrderStatusShipped, meta, shipped))
	require.NotNil(t, order.ShippedAt)

	// A replayed courier callback lands on SHIPPED again; the milestone and
	// the tracking details stay as first recorded.
	replay := &ShippingMeta{Provider: "India Post", TrackingID: "R999"}
	require.NoError(t, ApplyTransition(order, enums.OrderStatusShipped, replay, shipped.Add(time.Hour)))
	assert.Equal(t, enums.OrderStatusShipped, order.Status)
	assert.Equal(t, shipped, *order.ShippedAt)
	assert.Equal(t, "DTDC", *order.ShippingProvider)
	assert.Equal(t, "D100", *order.TrackingID)

	// Re-entry works without meta too; the order is already shipped.
	require.NoError(t, ApplyTransition(order, enums.OrderStatusShipped, nil, shipped.Add(2*time.Hour)))
	assert.Equal(t, shipped, *order.ShippedAt)
}

func TestApplyTransitionTimestampsSetOnce(t *testing.T) {
	t.Parallel()

	paid := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	order := &models.Order{Status: enums.OrderStatusPendingPayment}
	require.NoError(t, ApplyTransition(order, enums.OrderStatusHeldForSeller, nil, paid))

	// A cancelled order that had already been paid keeps its paid timestamp.
	require.NoError(t, ApplyTransition(order, enums.OrderStatusCancelled, nil, paid.Add(time.Hour)))
	require.NotNil(t, order.PaidAt)
	assert.Equal(t, paid, *order.PaidAt)
}
