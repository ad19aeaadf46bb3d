package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/bookhive/lending-service/pkg/auth"
	md "github.com/bookhive/lending-service/pkg/middleware"
)

var testSecret = []byte("middleware-test-secret")

func signToken(t *testing.T, secret []byte, expiresAt time.Time) string {
	t.Helper()
	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	claims.Profile.UserID = 42
	claims.Profile.Username = "user_one"

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return token
}

func TestJwtAuthentication(t *testing.T) {
	t.Parallel()

	var tests = []struct {
		name          string
		authorization string
		expectedCode  int
		expectedBody  string
	}{
		{
			name:          "ok",
			authorization: "Bearer " + signToken(t, testSecret, time.Now().Add(time.Hour)),
			expectedCode:  http.StatusOK,
			expectedBody:  "user_one:42",
		},
		{
			name:          "err. no header",
			authorization: "",
			expectedCode:  http.StatusUnauthorized,
			expectedBody:  `{"message":"No Authorization Header"}`,
		},
		{
			name:          "err. not bearer",
			authorization: "Basic dXNlcjpwYXNz",
			expectedCode:  http.StatusUnauthorized,
			expectedBody:  `{"message":"Invalid Authorization Header"}`,
		},
		{
			name:          "err. wrong secret",
			authorization: "Bearer " + signToken(t, []byte("other-secret"), time.Now().Add(time.Hour)),
			expectedCode:  http.StatusUnauthorized,
			expectedBody:  `{"message":"JwtAccessDenied"}`,
		},
		{
			name:          "err. expired",
			authorization: "Bearer " + signToken(t, testSecret, time.Now().Add(-time.Hour)),
			expectedCode:  http.StatusUnauthorized,
			expectedBody:  `{"message":"JwtAccessDenied"}`,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := echo.New()
			e.GET("/whoami", func(c echo.Context) error {
				id, ok := auth.IdentityFromContext(c.Request().Context())
				require.True(t, ok)
				return c.String(http.StatusOK, id.Username+":"+strconv.Itoa(id.UserID))
			}, md.JwtAuthentication(testSecret))

			r := httptest.NewRequest(http.MethodGet, "/whoami", http.NoBody)
			if tt.authorization != "" {
				r.Header.Set(md.AuthorizationHeader, tt.authorization)
			}
			w := httptest.NewRecorder()

			e.ServeHTTP(w, r)

			require.Equal(t, tt.expectedCode, w.Code)
			require.Equal(t, tt.expectedBody, trimNewline(w.Body.String()))
		})
	}
}

func TestDeprecatedVersion(t *testing.T) {
	t.Parallel()
	e := echo.New()
	e.GET("/api/v1/books", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, md.DeprecatedVersion("/api/v2"))

	r := httptest.NewRequest(http.MethodGet, "/api/v1/books", http.NoBody)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "true", w.Header().Get("Deprecation"))
	require.Contains(t, w.Header().Get("Warning"), "/api/v2")
}

func trimNewline(s string) string {
	if len(s) > 0 && s[len(s)-1] == '\n' {
		return s[:len(s)-1]
	}
	return s
}
