package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/propnest/pdc-engine/internal/notifications"
	"github.com/propnest/pdc-engine/internal/pdc"
	pkgAuth "github.com/propnest/pdc-engine/pkg/auth"
	"github.com/propnest/pdc-engine/pkg/config"
	"github.com/propnest/pdc-engine/pkg/db/models"
	"github.com/propnest/pdc-engine/pkg/enums"
	"github.com/propnest/pdc-engine/pkg/logger"
	"github.com/propnest/pdc-engine/pkg/pagination"
)

type stubPDCService struct{}

func (stubPDCService) Create(ctx context.Context, input pdc.CreateInput) (*models.PDC, error) {
	return &models.PDC{ID: uuid.New(), TenantID: input.TenantID}, nil
}

func (stubPDCService) BulkCreate(ctx context.Context, input pdc.BulkCreateInput) ([]models.PDC, error) {
	return make([]models.PDC, len(input.Cheques)), nil
}

func (stubPDCService) Get(ctx context.Context, id uuid.UUID) (*models.PDC, error) {
	return &models.PDC{ID: id}, nil
}

func (stubPDCService) List(ctx context.Context, params pagination.Params, filters pdc.ListFilters) (*pdc.PDCList, error) {
	return &pdc.PDCList{}, nil
}

func (stubPDCService) Deposit(ctx context.Context, input pdc.DepositInput) (*models.PDC, error) {
	return &models.PDC{ID: input.PDCID}, nil
}

func (stubPDCService) Clear(ctx context.Context, input pdc.ClearInput) (*models.PDC, error) {
	return &models.PDC{ID: input.PDCID}, nil
}

func (stubPDCService) Bounce(ctx context.Context, input pdc.BounceInput) (*models.PDC, error) {
	return &models.PDC{ID: input.PDCID}, nil
}

func (stubPDCService) Replace(ctx context.Context, input pdc.ReplaceInput) (*pdc.ReplaceResult, error) {
	return &pdc.ReplaceResult{}, nil
}

func (stubPDCService) Withdraw(ctx context.Context, input pdc.WithdrawInput) (*models.PDC, error) {
	return &models.PDC{ID: input.PDCID}, nil
}

func (stubPDCService) Cancel(ctx context.Context, input pdc.CancelInput) (*models.PDC, error) {
	return &models.PDC{ID: input.PDCID}, nil
}

func (stubPDCService) Dashboard(ctx context.Context) (*pdc.DashboardSnapshot, error) {
	return &pdc.DashboardSnapshot{GeneratedAt: time.Now()}, nil
}

func (stubPDCService) WithdrawalHistory(ctx context.Context, params pagination.Params, filters pdc.WithdrawalFilters) (*pdc.PDCList, error) {
	return &pdc.PDCList{}, nil
}

func (stubPDCService) TenantHistory(ctx context.Context, tenantID uuid.UUID, params pagination.Params) (*pdc.TenantHistory, error) {
	return &pdc.TenantHistory{}, nil
}

func (stubPDCService) Chain(ctx context.Context, id uuid.UUID) ([]models.PDC, error) {
	return nil, nil
}

func (stubPDCService) PromoteDue(ctx context.Context, asOf time.Time, batchSize int) (int, error) {
	return 0, nil
}

type stubNotificationsService struct{}

func (stubNotificationsService) List(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
	return &notifications.ListResult{}, nil
}

func (stubNotificationsService) MarkRead(ctx context.Context, recipientID, notificationID uuid.UUID) error {
	return nil
}

func (stubNotificationsService) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	return 0, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(Deps{
		Config:               cfg,
		Logger:               logg,
		PDCService:           stubPDCService{},
		NotificationsService: stubNotificationsService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.ActorRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		ActorID: uuid.New(),
		Role:    role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestChequeRoutesRequireJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/pdcs", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestChequeListSucceedsWithViewerToken(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/pdcs", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleViewer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestMutationsRejectViewerRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	body := `{"tenantId":"` + uuid.NewString() + `","chequeNumber":"CHQ-1","bankName":"ADCB","amount":"100","chequeDate":"2026-10-01T00:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pdcs", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleViewer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for viewer got %d", resp.Code)
	}
}

func TestMutationsAllowAccountantRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	body := `{"tenantId":"` + uuid.NewString() + `","chequeNumber":"CHQ-1","bankName":"ADCB","amount":"100","chequeDate":"2026-10-01T00:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pdcs", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleAccountant))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestDashboardRouteIsNotShadowedByIDRoute(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/pdcs/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleViewer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestNotificationsRouteMounted(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleViewer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
