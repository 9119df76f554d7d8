package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/middleware"
	"storefront/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type mwErrorResponse struct {
	Error string `json:"error"`
}

type mwOKResponse struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) FindByID(ctx context.Context, id int64) (model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

// =====================
// helper
// =====================

func issue(t *testing.T, userID int64, role model.Role) string {
	t.Helper()
	tok, _, err := middleware.IssueToken(testSecret, userID, role, time.Now(), time.Hour)
	require.NoError(t, err)
	return tok
}

func mustMakeJWT(t *testing.T, claims jwt.MapClaims, method jwt.SigningMethod, key interface{}) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func protectedEcho(userRepo repository.UserRepository, admin bool) *echo.Echo {
	e := echo.New()
	mws := []echo.MiddlewareFunc{middleware.AuthJWT(config.Config{JWTSecret: testSecret})}
	if userRepo != nil {
		mws = append(mws, middleware.ActiveUserGuard(userRepo))
	}
	if admin {
		mws = append(mws, middleware.AdminRoleGuard())
	}

	e.GET("/protected", func(c echo.Context) error {
		id, _ := c.Get(middleware.CtxUserIDKey).(int64)
		role, _ := c.Get(middleware.CtxUserRoleKey).(string)
		return c.JSON(http.StatusOK, mwOKResponse{UserID: id, Role: role})
	}, mws...)
	return e
}

func runRequest(e *echo.Echo, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeMWError(t *testing.T, rec *httptest.ResponseRecorder) mwErrorResponse {
	t.Helper()
	var r mwErrorResponse
	_ = json.NewDecoder(rec.Body).Decode(&r)
	return r
}

// =====================
// AuthJWT
// =====================

func TestAuthJWT_ValidToken(t *testing.T) {
	e := protectedEcho(nil, false)

	rec := runRequest(e, "Bearer "+issue(t, 42, model.RoleCustomer))
	require.Equal(t, http.StatusOK, rec.Code)

	var body mwOKResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, int64(42), body.UserID)
	assert.Equal(t, "Customer", body.Role)
}

func TestAuthJWT_NumericSubClaim(t *testing.T) {
	e := protectedEcho(nil, false)

	tok := mustMakeJWT(t, jwt.MapClaims{
		"sub":  7,
		"role": "Admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}, jwt.SigningMethodHS256, []byte(testSecret))

	rec := runRequest(e, "Bearer "+tok)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthJWT_Rejects(t *testing.T) {
	expired := mustMakeJWT(t, jwt.MapClaims{
		"sub":  "1",
		"role": "Customer",
		"exp":  time.Now().Add(-time.Minute).Unix(),
	}, jwt.SigningMethodHS256, []byte(testSecret))

	wrongSecret := mustMakeJWT(t, jwt.MapClaims{
		"sub":  "1",
		"role": "Customer",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}, jwt.SigningMethodHS256, []byte("other-secret"))

	hs512 := mustMakeJWT(t, jwt.MapClaims{
		"sub":  "1",
		"role": "Customer",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}, jwt.SigningMethodHS512, []byte(testSecret))

	unknownRole := mustMakeJWT(t, jwt.MapClaims{
		"sub":  "1",
		"role": "Staff",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}, jwt.SigningMethodHS256, []byte(testSecret))

	badSub := mustMakeJWT(t, jwt.MapClaims{
		"sub":  "abc",
		"role": "Customer",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}, jwt.SigningMethodHS256, []byte(testSecret))

	tests := []struct {
		name   string
		header string
	}{
		{name: "no header", header: ""},
		{name: "not bearer", header: "Basic abc"},
		{name: "empty token", header: "Bearer "},
		{name: "garbage", header: "Bearer not-a-jwt"},
		{name: "expired", header: "Bearer " + expired},
		{name: "wrong secret", header: "Bearer " + wrongSecret},
		{name: "unexpected alg", header: "Bearer " + hs512},
		{name: "unknown role", header: "Bearer " + unknownRole},
		{name: "non numeric sub", header: "Bearer " + badSub},
	}

	e := protectedEcho(nil, false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := runRequest(e, tt.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "unauthorized", decodeMWError(t, rec).Error)
		})
	}
}

// =====================
// AdminRoleGuard
// =====================

func TestAdminRoleGuard(t *testing.T) {
	e := protectedEcho(nil, true)

	rec := runRequest(e, "Bearer "+issue(t, 1, model.RoleCustomer))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "admin only", decodeMWError(t, rec).Error)

	rec = runRequest(e, "Bearer "+issue(t, 1, model.RoleAdmin))
	assert.Equal(t, http.StatusOK, rec.Code)
}

// =====================
// ActiveUserGuard
// =====================

func TestActiveUserGuard(t *testing.T) {
	users := new(MockUserRepo)
	users.On("FindByID", mock.Anything, int64(1)).Return(model.User{ID: 1}, nil)
	users.On("FindByID", mock.Anything, int64(2)).Return(model.User{}, repository.ErrNotFound)
	users.On("FindByID", mock.Anything, int64(3)).Return(model.User{}, errors.New("db down"))

	e := protectedEcho(users, false)

	rec := runRequest(e, "Bearer "+issue(t, 1, model.RoleCustomer))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = runRequest(e, "Bearer "+issue(t, 2, model.RoleCustomer))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = runRequest(e, "Bearer "+issue(t, 3, model.RoleCustomer))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	users.AssertExpectations(t)
}
