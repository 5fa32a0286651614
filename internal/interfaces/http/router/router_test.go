package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appcash "github.com/erp/pos/internal/application/cashregister"
	appshift "github.com/erp/pos/internal/application/shift"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/domain/shift"
	"github.com/erp/pos/internal/infrastructure/auth"
	"github.com/erp/pos/internal/infrastructure/config"
	"github.com/erp/pos/internal/interfaces/http/dto"
	"github.com/erp/pos/internal/interfaces/http/handler"
	"github.com/erp/pos/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIVersion(t *testing.T) {
	r := NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	group := NewDomainGroup("test", "/test")
	group.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.Register(group).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/test/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestRouterUseAppliesToAPIGroupOnly(t *testing.T) {
	engine := gin.New()
	engine.GET("/outside", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("mark")) })

	r := NewRouter(engine).Use(func(c *gin.Context) {
		c.Set("mark", "api")
		c.Next()
	})
	g := NewDomainGroup("test", "/test")
	g.GET("/inside", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("mark")) })
	r.Register(g).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/test/inside", nil))
	assert.Equal(t, "api", w.Body.String())

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/outside", nil))
	assert.Equal(t, "", w.Body.String())
}

func TestDomainGroupMiddlewareAndSubgroups(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	var order []string
	g := NewDomainGroup("parent", "/parent").Use(func(c *gin.Context) {
		order = append(order, "parent")
		c.Next()
	})
	g.Group("child", "/child").GET("/leaf", func(c *gin.Context) {
		order = append(order, "leaf")
		c.Status(http.StatusOK)
	})
	r.Register(g).Setup()

	assert.Equal(t, "parent", g.Name())
	assert.Equal(t, "/parent", g.Prefix())

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/parent/child/leaf", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"parent", "leaf"}, order)
}

type stubShiftService struct {
	handler.ShiftService
	deleted bool
}

func (s *stubShiftService) GetCurrentShift(_ context.Context, tenantID, branchID, userID uuid.UUID) (*appshift.ShiftResponse, error) {
	return &appshift.ShiftResponse{ID: uuid.New(), TenantID: tenantID, BranchID: branchID, UserID: userID}, nil
}

func (s *stubShiftService) ForceClose(_ context.Context, in appshift.ForceCloseShiftInput) (*appshift.ShiftResponse, error) {
	return &appshift.ShiftResponse{ID: in.ShiftID, IsClosed: true, IsForceClosed: true}, nil
}

func (s *stubShiftService) Delete(context.Context, uuid.UUID, uuid.UUID) error {
	s.deleted = true
	return shift.ErrShiftDeleteNotAllowed
}

type stubCashService struct {
	handler.CashRegisterService
}

func (stubCashService) GetCurrentBalance(_ context.Context, _, branchID uuid.UUID) (*appcash.BalanceResponse, error) {
	return &appcash.BalanceResponse{BranchID: branchID, Balance: decimal.NewFromInt(42)}, nil
}

func (stubCashService) ListTransactions(context.Context, uuid.UUID, uuid.UUID, appcash.TransactionListFilter) (*shared.Paginated[appcash.TransactionResponse], error) {
	page := shared.NewPaginated([]appcash.TransactionResponse{}, 0, 1, 20)
	return &page, nil
}

type engineFixture struct {
	engine *gin.Engine
	jwt    *auth.JWTService
	shifts *stubShiftService
}

func newEngineFixture(t *testing.T) engineFixture {
	t.Helper()
	jwtSvc := auth.NewJWTService(config.JWTConfig{
		Secret:                "router-test-secret-at-least-32-characters",
		Issuer:                "pos-test",
		AccessTokenExpiration: time.Hour,
	})
	shifts := &stubShiftService{}
	engine, err := NewEngine(EngineConfig{
		ServiceName: "pos-test",
		CORS:        middleware.DefaultCORSConfig(),
		MaxBodySize: 1 << 10,
		Validator:   jwtSvc,
	}, Handlers{
		Shift:        handler.NewShiftHandler(shifts),
		CashRegister: handler.NewCashRegisterHandler(stubCashService{}),
		Health:       handler.NewHealthHandler("test"),
	})
	require.NoError(t, err)
	return engineFixture{engine: engine, jwt: jwtSvc, shifts: shifts}
}

func (f engineFixture) token(t *testing.T, role string) string {
	t.Helper()
	tok, _, err := f.jwt.GenerateAccessToken(auth.GenerateTokenInput{
		TenantID: uuid.New(),
		BranchID: uuid.New(),
		UserID:   uuid.New(),
		Username: "tester",
		Role:     role,
	})
	require.NoError(t, err)
	return tok
}

func (f engineFixture) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func TestNewEngine_HealthNeedsNoAuth(t *testing.T) {
	f := newEngineFixture(t)

	for _, path := range []string{"/health", "/health/ready"} {
		w := f.do(http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader), path)
	}
}

func TestNewEngine_APIRequiresToken(t *testing.T) {
	f := newEngineFixture(t)

	w := f.do(http.MethodGet, "/api/v1/shifts/current", "", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
}

func TestNewEngine_AuthenticatedRoutes(t *testing.T) {
	f := newEngineFixture(t)
	tok := f.token(t, "cashier")

	w := f.do(http.MethodGet, "/api/v1/shifts/current", tok, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, "/api/v1/cash-register/balance", tok, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"balance":"42"`)

	w = f.do(http.MethodGet, "/api/v1/cash-register/transactions", tok, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewEngine_ForceCloseNeedsSupervisor(t *testing.T) {
	f := newEngineFixture(t)
	path := "/api/v1/shifts/" + uuid.NewString() + "/force-close"
	body := `{"reason":"left without closing"}`

	w := f.do(http.MethodPost, path, f.token(t, "cashier"), body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	for _, role := range middleware.SupervisorRoles {
		w = f.do(http.MethodPost, path, f.token(t, role), body)
		assert.Equal(t, http.StatusOK, w.Code, role)
	}
}

func TestNewEngine_DeleteShiftIsRejected(t *testing.T) {
	f := newEngineFixture(t)

	w := f.do(http.MethodDelete, "/api/v1/shifts/"+uuid.NewString(), f.token(t, "admin"), "")

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.True(t, f.shifts.deleted)
}

func TestNewEngine_BodyLimit(t *testing.T) {
	f := newEngineFixture(t)
	big := `{"notes":"` + strings.Repeat("x", 2<<10) + `"}`

	w := f.do(http.MethodPost, "/api/v1/shifts/close", f.token(t, "cashier"), big)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
