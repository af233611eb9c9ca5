package echoServer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"rentaladmin/access"
	"rentaladmin/app/echoServer/principal"
	"rentaladmin/model"
	jwtutil "rentaladmin/util/jwt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type blacklistMock struct {
	revoked map[string]bool
}

func (m *blacklistMock) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	return m.revoked[token], nil
}

func newCtx(t *testing.T, token string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/bookings", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func parsedToken(t *testing.T, raw string) *jwt.Token {
	t.Helper()
	tok, err := jwt.Parse(raw, func(tk *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	return tok
}

func TestBuildPrincipal(t *testing.T) {
	raw, err := jwtutil.Issue("secret", 42, "clerk", model.RoleStaff, 1)
	require.NoError(t, err)

	c, _ := newCtx(t, raw)
	c.Set("user", parsedToken(t, raw))

	var got *access.Principal
	h := BuildPrincipal(&blacklistMock{})(func(c echo.Context) error {
		got = principal.From(c)
		return nil
	})
	require.NoError(t, h(c))
	require.NotNil(t, got)
	require.Equal(t, int64(42), got.ID)
	require.Equal(t, "clerk", got.Username)
	require.Equal(t, model.RoleStaff, got.Role)
}

func TestBuildPrincipal_RevokedToken(t *testing.T) {
	raw, err := jwtutil.Issue("secret", 42, "clerk", model.RoleStaff, 1)
	require.NoError(t, err)

	c, _ := newCtx(t, raw)
	c.Set("user", parsedToken(t, raw))

	h := BuildPrincipal(&blacklistMock{revoked: map[string]bool{raw: true}})(func(c echo.Context) error {
		t.Fatal("handler must not run")
		return nil
	})
	err = h(c)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRequireAdmin(t *testing.T) {
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	c, _ := newCtx(t, "")
	principal.Set(c, &access.Principal{ID: 1, Role: model.RoleAdmin})
	require.NoError(t, RequireAdmin()(ok)(c))

	c, _ = newCtx(t, "")
	principal.Set(c, &access.Principal{ID: 2, Role: model.RoleStaff})
	err := RequireAdmin()(ok)(c)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, http.StatusForbidden, he.Code)

	// no principal at all
	c, _ = newCtx(t, "")
	err = RequireAdmin()(ok)(c)
	require.ErrorAs(t, err, &he)
	require.Equal(t, http.StatusForbidden, he.Code)
}
