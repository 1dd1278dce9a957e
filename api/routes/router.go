package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sreejithpv/keralacart-backend/api/controllers"
	"github.com/sreejithpv/keralacart-backend/api/middleware"
	ledgersvc "github.com/sreejithpv/keralacart-backend/internal/ledger"
	ordersvc "github.com/sreejithpv/keralacart-backend/internal/orders"
	productsvc "github.com/sreejithpv/keralacart-backend/internal/products"
	reviewsvc "github.com/sreejithpv/keralacart-backend/internal/reviews"
	storesvc "github.com/sreejithpv/keralacart-backend/internal/stores"
	"github.com/sreejithpv/keralacart-backend/pkg/config"
	"github.com/sreejithpv/keralacart-backend/pkg/db"
	"github.com/sreejithpv/keralacart-backend/pkg/enums"
	"github.com/sreejithpv/keralacart-backend/pkg/logger"
	"github.com/sreejithpv/keralacart-backend/pkg/redis"
)

// Services bundles everything the router hands to controllers.
type Services struct {
	Products productsvc.Service
	Orders   ordersvc.Service
	Reviews  reviewsvc.Service
	Stores   storesvc.Service
	Ledger   ledgersvc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()

	// Keep typed-nil clients out of the interface params so the nil checks
	// downstream still work.
	var redisP redis.Pinger
	var idemStore redis.IdempotencyStore
	if redisClient != nil {
		redisP = redisClient
		idemStore = redisClient
	}

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	// Public storefront surface. No auth, no idempotency. Registered flat so
	// the authenticated review routes can share the /api/v1/products prefix.
	r.Get("/api/v1/products", controllers.PublicListProducts(svcs.Products, logg))
	r.Get("/api/v1/products/{productId}", controllers.PublicGetProduct(svcs.Products, logg))
	r.Get("/api/v1/products/{productId}/reviews", controllers.PublicListReviews(svcs.Reviews, logg))

	// Payment provider callback. Unauthenticated by design; MarkPaid is
	// idempotent on the payment reference so replays are harmless.
	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/payment", controllers.PaymentWebhook(svcs.Orders, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		// Buyer surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireKind(enums.ActorKindBuyer, logg))

			r.Post("/api/v1/checkout", controllers.Checkout(svcs.Orders, logg))
			r.Get("/api/v1/orders", controllers.BuyerListOrders(svcs.Orders, logg))
			r.Post("/api/v1/orders/{orderId}/cancel", controllers.BuyerCancelOrder(svcs.Orders, logg))
			r.Get("/api/v1/products/{productId}/can-review", controllers.BuyerCanReview(svcs.Reviews, logg))
			r.Post("/api/v1/products/{productId}/reviews", controllers.BuyerCreateReview(svcs.Reviews, logg))
		})

		// Order detail is shared: the buyer who placed it or the seller
		// whose store it was placed against.
		r.Get("/api/v1/orders/{orderId}", controllers.OrderDetail(svcs.Orders, logg))

		// Seller surface.
		r.Route("/api/v1/seller", func(r chi.Router) {
			r.Use(middleware.RequireKind(enums.ActorKindSeller, logg))

			r.Get("/dashboard", controllers.SellerDashboard(svcs.Stores, logg))
			r.Get("/stock-history", controllers.SellerStockHistory(svcs.Ledger, logg))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.SellerListProducts(svcs.Products, logg))
				r.Post("/", controllers.SellerCreateProduct(svcs.Products, logg))
				r.Patch("/{productId}", controllers.SellerUpdateProduct(svcs.Products, logg))
				r.Delete("/{productId}", controllers.SellerDeleteProduct(svcs.Products, logg))
				r.Post("/{productId}/toggle-active", controllers.SellerToggleProduct(svcs.Products, logg))
				r.Put("/{productId}/stock", controllers.SellerUpdateStock(svcs.Products, logg))
				r.Get("/{productId}/stock-history", controllers.SellerProductStockHistory(svcs.Ledger, svcs.Products, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.SellerListOrders(svcs.Orders, logg))
				r.Post("/local", controllers.SellerCreateLocalOrder(svcs.Orders, logg))
				r.Post("/{orderId}/accept", controllers.SellerOrderTransition(svcs.Orders, enums.OrderStatusAccepted, logg))
				r.Post("/{orderId}/ship", controllers.SellerOrderTransition(svcs.Orders, enums.OrderStatusShipped, logg))
				r.Post("/{orderId}/deliver", controllers.SellerOrderTransition(svcs.Orders, enums.OrderStatusDelivered, logg))
				r.Post("/{orderId}/cancel", controllers.SellerOrderTransition(svcs.Orders, enums.OrderStatusCancelled, logg))
				r.Post("/{orderId}/refund", controllers.SellerOrderTransition(svcs.Orders, enums.OrderStatusRefunded, logg))
			})
		})
	})

	return r
}
