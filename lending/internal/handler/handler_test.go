package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v4"
	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bookhive/lending-service/lending/internal/errs"
	"github.com/bookhive/lending-service/lending/internal/handler"
	"github.com/bookhive/lending-service/lending/internal/model"
	"github.com/bookhive/lending-service/pkg/auth"
	md "github.com/bookhive/lending-service/pkg/middleware"
	"github.com/bookhive/lending-service/pkg/validate"

	service_mocks "github.com/bookhive/lending-service/lending/internal/handler/mocks"
)

var testSecret = []byte("handler-test-secret")

func signToken(t *testing.T, userID int, username string) string {
	t.Helper()
	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	claims.Profile.UserID = userID
	claims.Profile.Username = username

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	return token
}

func TestHandler_BorrowBook(t *testing.T) {
	t.Parallel()
	const bookUid = "f7cdc58f-2caf-4b15-9727-f89dcc629b27"
	identity := auth.Identity{UserID: 1, Username: "user_one"}

	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockLendingService)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		body         string
		withToken    bool
		response     response
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockLendingService) {
				r.EXPECT().
					Borrow(gomock.Any(), bookUid, identity).
					Return(model.BorrowRecord{
						RecordUid:  "83575e12-7ce0-48ee-9931-51919ff3c9ee",
						BookUid:    bookUid,
						BookTitle:  "The Little Prince",
						Username:   "user_one",
						BorrowDate: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
					}, nil)
			},
			body:      `{"bookUid":"` + bookUid + `"}`,
			withToken: true,
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"record":{"recordUid":"83575e12-7ce0-48ee-9931-51919ff3c9ee","bookUid":"` + bookUid + `","bookTitle":"The Little Prince","username":"user_one","borrowDate":"2024-01-15T10:00:00Z","returned":false,"returnDate":null}}`,
			},
		},
		{
			name: "err. book not found",
			mockBehavior: func(r *service_mocks.MockLendingService) {
				r.EXPECT().
					Borrow(gomock.Any(), bookUid, identity).
					Return(model.BorrowRecord{}, errs.ErrNotFound)
			},
			body:      `{"bookUid":"` + bookUid + `"}`,
			withToken: true,
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"not found"}`,
			},
		},
		{
			name: "err. out of stock",
			mockBehavior: func(r *service_mocks.MockLendingService) {
				r.EXPECT().
					Borrow(gomock.Any(), bookUid, identity).
					Return(model.BorrowRecord{}, errs.ErrBookUnavailable)
			},
			body:      `{"bookUid":"` + bookUid + `"}`,
			withToken: true,
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"book is out of stock"}`,
			},
		},
		{
			name:         "err. bookUid required",
			mockBehavior: func(r *service_mocks.MockLendingService) {},
			body:         `{}`,
			withToken:    true,
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"code=400, message=Key: 'BorrowRequest.BookUid' Error:Field validation for 'BookUid' failed on the 'required' tag"}`,
			},
		},
		{
			name:         "err. no token",
			mockBehavior: func(r *service_mocks.MockLendingService) {},
			body:         `{"bookUid":"` + bookUid + `"}`,
			withToken:    false,
			response: response{
				expectedCode: http.StatusUnauthorized,
				expectedBody: `{"message":"No Authorization Header"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockLendingService(c)
			log := zap.NewExample().Named("test")
			h := handler.New(svc, service_mocks.NewMockAuthService(c), service_mocks.NewMockStatsService(c), log)

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.POST("/api/v2/borrow-records", h.BorrowBook, md.JwtAuthentication(testSecret))

			r := httptest.NewRequest(http.MethodPost, "/api/v2/borrow-records", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			if tt.withToken {
				r.Header.Set(md.AuthorizationHeader, "Bearer "+signToken(t, identity.UserID, identity.Username))
			}
			w := httptest.NewRecorder()

			tt.mockBehavior(svc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_ReturnBook(t *testing.T) {
	t.Parallel()
	const recordUid = "83575e12-7ce0-48ee-9931-51919ff3c9ee"
	identity := auth.Identity{UserID: 1, Username: "user_one"}

	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockLendingService)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockLendingService) {
				r.EXPECT().
					Return(gomock.Any(), recordUid, identity).
					Return(nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"ok":true}`,
			},
		},
		{
			name: "err. record not found",
			mockBehavior: func(r *service_mocks.MockLendingService) {
				r.EXPECT().
					Return(gomock.Any(), recordUid, identity).
					Return(errs.ErrNotFound)
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"not found"}`,
			},
		},
		{
			name: "err. foreign record",
			mockBehavior: func(r *service_mocks.MockLendingService) {
				r.EXPECT().
					Return(gomock.Any(), recordUid, identity).
					Return(errs.ErrForbidden)
			},
			response: response{
				expectedCode: http.StatusForbidden,
				expectedBody: `{"message":"record belongs to another user"}`,
			},
		},
		{
			name: "err. internal",
			mockBehavior: func(r *service_mocks.MockLendingService) {
				r.EXPECT().
					Return(gomock.Any(), recordUid, identity).
					Return(errors.New("db internal"))
			},
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"message":"db internal"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockLendingService(c)
			log := zap.NewExample().Named("test")
			h := handler.New(svc, service_mocks.NewMockAuthService(c), service_mocks.NewMockStatsService(c), log)

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.PUT("/api/v2/borrow-records/:recordUid/return", h.ReturnBook, md.JwtAuthentication(testSecret))

			r := httptest.NewRequest(http.MethodPut, "/api/v2/borrow-records/"+recordUid+"/return", http.NoBody)
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			r.Header.Set(md.AuthorizationHeader, "Bearer "+signToken(t, identity.UserID, identity.Username))
			w := httptest.NewRecorder()

			tt.mockBehavior(svc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_GetBooks(t *testing.T) {
	t.Parallel()
	identity := auth.Identity{UserID: 1, Username: "user_one"}

	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockLendingService)

	var tests = []struct {
		name         string
		target       string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name:   "ok",
			target: "/api/v2/books?title=prince&page=1&limit=5",
			mockBehavior: func(r *service_mocks.MockLendingService) {
				r.EXPECT().
					ListBooks(gomock.Any(), model.BookFilter{Title: "prince", Page: 1, Limit: 5}).
					Return(model.ListBooks{
						Items: []model.Book{
							{
								BookUid:  "f7cdc58f-2caf-4b15-9727-f89dcc629b27",
								Title:    "The Little Prince",
								Author:   "Antoine de Saint-Exupéry",
								Quantity: 3,
							},
						},
						Pagination: model.Paging{
							CurrentPage: 1,
							Limit:       5,
							TotalItems:  1,
							TotalPages:  1,
						},
					}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"items":[{"bookUid":"f7cdc58f-2caf-4b15-9727-f89dcc629b27","title":"The Little Prince","author":"Antoine de Saint-Exupéry","quantity":3}],"pagination":{"currentPage":1,"limit":5,"totalItems":1,"totalPages":1}}`,
			},
		},
		{
			name:         "err. page invalid",
			target:       "/api/v2/books?page=abc",
			mockBehavior: func(r *service_mocks.MockLendingService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"page is invalid"}`,
			},
		},
		{
			name:   "err. internal",
			target: "/api/v2/books",
			mockBehavior: func(r *service_mocks.MockLendingService) {
				r.EXPECT().
					ListBooks(gomock.Any(), model.BookFilter{}).
					Return(model.ListBooks{}, errors.New("db internal"))
			},
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"message":"db internal"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockLendingService(c)
			log := zap.NewExample().Named("test")
			h := handler.New(svc, service_mocks.NewMockAuthService(c), service_mocks.NewMockStatsService(c), log)

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.GET("/api/v2/books", h.GetBooks, md.JwtAuthentication(testSecret))

			r := httptest.NewRequest(http.MethodGet, tt.target, http.NoBody)
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			r.Header.Set(md.AuthorizationHeader, "Bearer "+signToken(t, identity.UserID, identity.Username))
			w := httptest.NewRecorder()

			tt.mockBehavior(svc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_Login(t *testing.T) {
	t.Parallel()

	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockAuthService)

	var tests = []struct {
		name         string
		body         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			body: `{"username":"user_one","password":"password1"}`,
			mockBehavior: func(r *service_mocks.MockAuthService) {
				r.EXPECT().
					Login(gomock.Any(), model.AuthRequest{Username: "user_one", Password: "password1"}).
					Return(model.AuthResponse{AccessToken: "token123", ExpiresIn: 1705312800}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"accessToken":"token123","expiresIn":1705312800}`,
			},
		},
		{
			name: "err. invalid credentials",
			body: `{"username":"user_one","password":"wrong1"}`,
			mockBehavior: func(r *service_mocks.MockAuthService) {
				r.EXPECT().
					Login(gomock.Any(), model.AuthRequest{Username: "user_one", Password: "wrong1"}).
					Return(model.AuthResponse{}, errs.ErrInvalidCredentials)
			},
			response: response{
				expectedCode: http.StatusUnauthorized,
				expectedBody: `{"message":"Invalid credentials"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			authSvc := service_mocks.NewMockAuthService(c)
			log := zap.NewExample().Named("test")
			h := handler.New(service_mocks.NewMockLendingService(c), authSvc, service_mocks.NewMockStatsService(c), log)

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.POST("/api/v2/login", h.Login)

			r := httptest.NewRequest(http.MethodPost, "/api/v2/login", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(authSvc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}
