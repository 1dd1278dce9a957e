package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	ledgersvc "github.com/sreejithpv/keralacart-backend/internal/ledger"
	ordersvc "github.com/sreejithpv/keralacart-backend/internal/orders"
	productsvc "github.com/sreejithpv/keralacart-backend/internal/products"
	reviewsvc "github.com/sreejithpv/keralacart-backend/internal/reviews"
	storesvc "github.com/sreejithpv/keralacart-backend/internal/stores"
	pkgauth "github.com/sreejithpv/keralacart-backend/pkg/auth"
	"github.com/sreejithpv/keralacart-backend/pkg/config"
	"github.com/sreejithpv/keralacart-backend/pkg/db/models"
	"github.com/sreejithpv/keralacart-backend/pkg/enums"
	"github.com/sreejithpv/keralacart-backend/pkg/logger"
	"github.com/sreejithpv/keralacart-backend/pkg/pagination"
	"github.com/sreejithpv/keralacart-backend/pkg/types"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubProductService struct{}

func (stubProductService) CreateProduct(ctx context.Context, sellerID uuid.UUID, input productsvc.CreateProductInput) (*productsvc.ProductDTO, error) {
	panic("unimplemented")
}

func (stubProductService) UpdateProduct(ctx context.Context, sellerID, productID uuid.UUID, input productsvc.UpdateProductInput) (*productsvc.ProductDTO, error) {
	panic("unimplemented")
}

func (stubProductService) DeleteProduct(ctx context.Context, sellerID, productID uuid.UUID) error {
	panic("unimplemented")
}

func (stubProductService) ToggleActive(ctx context.Context, sellerID, productID uuid.UUID) (*productsvc.ProductDTO, error) {
	panic("unimplemented")
}

func (stubProductService) UpdateStock(ctx context.Context, sellerID, productID uuid.UUID, input productsvc.UpdateStockInput) (*productsvc.ProductDTO, error) {
	panic("unimplemented")
}

func (stubProductService) VerifyOwnership(ctx context.Context, sellerID, productID uuid.UUID) error {
	panic("unimplemented")
}

func (stubProductService) ListForSeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) ([]productsvc.ProductDTO, string, error) {
	return nil, "", nil
}

func (stubProductService) ListPublic(ctx context.Context, filters productsvc.PublicFilters, params pagination.Params) ([]productsvc.PublicProductDTO, string, error) {
	return nil, "", nil
}

func (stubProductService) GetPublic(ctx context.Context, productID uuid.UUID) (*productsvc.PublicProductDTO, error) {
	panic("unimplemented")
}

type stubOrderService struct{}

func (stubOrderService) CreateBuyerOrder(ctx context.Context, buyerID uuid.UUID, input ordersvc.CreateBuyerOrderInput) (*ordersvc.OrderDTO, error) {
	panic("unimplemented")
}

func (stubOrderService) CreateLocalOrder(ctx context.Context, sellerID uuid.UUID, input ordersvc.CreateLocalOrderInput) (*ordersvc.OrderDTO, error) {
	panic("unimplemented")
}

func (stubOrderService) MarkPaid(ctx context.Context, orderID uuid.UUID, paymentReference string) (*ordersvc.OrderDTO, error) {
	panic("unimplemented")
}

func (stubOrderService) Transition(ctx context.Context, sellerID, orderID uuid.UUID, target enums.OrderStatus, meta *ordersvc.ShippingMeta) (*ordersvc.OrderDTO, error) {
	panic("unimplemented")
}

func (stubOrderService) CancelByBuyer(ctx context.Context, buyerID, orderID uuid.UUID) (*ordersvc.OrderDTO, error) {
	panic("unimplemented")
}

func (stubOrderService) GetOrder(ctx context.Context, actor types.Actor, orderID uuid.UUID) (*ordersvc.OrderDTO, error) {
	panic("unimplemented")
}

func (stubOrderService) ListForSeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) ([]ordersvc.OrderDTO, string, error) {
	return nil, "", nil
}

func (stubOrderService) ListForBuyer(ctx context.Context, buyerID uuid.UUID, params pagination.Params) ([]ordersvc.OrderDTO, string, error) {
	return nil, "", nil
}

type stubReviewService struct{}

func (stubReviewService) CanReview(ctx context.Context, buyerID, productID uuid.UUID) (*reviewsvc.EligibilityDTO, error) {
	panic("unimplemented")
}

func (stubReviewService) Create(ctx context.Context, buyerID uuid.UUID, input reviewsvc.CreateReviewInput) (*reviewsvc.ReviewDTO, error) {
	panic("unimplemented")
}

func (stubReviewService) ListForProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) ([]reviewsvc.ReviewDTO, string, error) {
	return nil, "", nil
}

type stubStoreService struct{}

func (stubStoreService) StoreForSeller(ctx context.Context, sellerID uuid.UUID) (*models.Store, error) {
	panic("unimplemented")
}

func (stubStoreService) DashboardSummary(ctx context.Context, sellerID uuid.UUID) (*storesvc.DashboardSummaryDTO, error) {
	panic("unimplemented")
}

type stubLedgerService struct{}

func (stubLedgerService) ListForSeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) ([]ledgersvc.EntryDTO, string, error) {
	return nil, "", nil
}

func (stubLedgerService) ListForProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) ([]ledgersvc.EntryDTO, string, error) {
	panic("unimplemented")
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{Secret: "router-test-secret", Issuer: "keralacart", ExpirationMinutes: 15},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(cfg, logg, stubPinger{}, nil, Services{
		Products: stubProductService{},
		Orders:   stubOrderService{},
		Reviews:  stubReviewService{},
		Stores:   stubStoreService{},
		Ledger:   stubLedgerService{},
	})
}

func mintToken(t *testing.T, cfg *config.Config, kind enums.ActorKind) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		ActorID:   uuid.New(),
		ActorKind: kind,
	})
	require.NoError(t, err)
	return token
}

func TestPublicCatalogNeedsNoAuth(t *testing.T) {
	router := newTestRouter(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCheckoutRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSellerSurfaceRequiresSellerKind(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	asBuyer := httptest.NewRequest(http.MethodGet, "/api/v1/seller/products", nil)
	asBuyer.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, enums.ActorKindBuyer))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asBuyer)
	require.Equal(t, http.StatusForbidden, rec.Code)

	asSeller := httptest.NewRequest(http.MethodGet, "/api/v1/seller/products", nil)
	asSeller.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, enums.ActorKindSeller))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, asSeller)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestBuyerSurfaceRequiresBuyerKind(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	asSeller := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	asSeller.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, enums.ActorKindSeller))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asSeller)
	require.Equal(t, http.StatusForbidden, rec.Code)

	asBuyer := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	asBuyer.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, enums.ActorKindBuyer))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, asBuyer)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthLiveAlwaysUp(t *testing.T) {
	router := newTestRouter(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "test", rec.Header().Get("X-KeralaCart-Env"))
}
