package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bookhive/lending-service/lending/internal/errs"
	"github.com/bookhive/lending-service/lending/internal/model"
	"github.com/bookhive/lending-service/pkg/auth"
	md "github.com/bookhive/lending-service/pkg/middleware"
	"github.com/bookhive/lending-service/pkg/validate"
)

type Handler struct {
	lendingSvc LendingService
	authSvc    AuthService
	statsSvc   StatsService
	log        *zap.Logger
}

func New(lendingSvc LendingService, authSvc AuthService, statsSvc StatsService, log *zap.Logger) *Handler {
	h := &Handler{
		lendingSvc: lendingSvc,
		authSvc:    authSvc,
		statsSvc:   statsSvc,
		log:        log,
	}
	return h
}

func (h *Handler) NewRouter(secret []byte) *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)

	e.Validator = validate.NewCustomValidator()
	common := []echo.MiddlewareFunc{
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig()),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
	}

	// v1 still serves every lending route, it just warns clients away
	v1 := e.Group("/api/v1", append(common, md.DeprecatedVersion("/api/v2"))...)
	v2 := e.Group("/api/v2", common...)
	h.registerRoutes(v1, secret)
	h.registerRoutes(v2, secret)

	v2.GET("/stats", h.GetStats, md.JwtAuthentication(secret))

	return e
}

func (h *Handler) registerRoutes(api *echo.Group, secret []byte) {
	api.POST("/register", h.Register)
	api.POST("/login", h.Login)

	authed := api.Group("", md.JwtAuthentication(secret))
	authed.GET("/books", h.GetBooks)
	authed.POST("/books", h.AddBook)
	authed.GET("/borrow-records", h.GetBorrowRecords)
	authed.POST("/borrow-records", h.BorrowBook)
	authed.PUT("/borrow-records/:recordUid/return", h.ReturnBook)
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (h *Handler) Register(c echo.Context) error {
	var req model.UserCreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authSvc.Register(c.Request().Context(), req); err != nil {
		if errors.Is(err, errs.ErrUserExists) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.String(http.StatusCreated, "ok")
}

func (h *Handler) Login(c echo.Context) error {
	var credentials model.AuthRequest
	if err := c.Bind(&credentials); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&credentials); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	resp, err := h.authSvc.Login(c.Request().Context(), credentials)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetBooks(c echo.Context) error {
	ctx := c.Request().Context()

	var (
		err   error
		page  int
		limit int
	)
	if pageParam := c.QueryParam("page"); pageParam != "" {
		if page, err = strconv.Atoi(pageParam); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.New("page is invalid"))
		}
	}
	if limitParam := c.QueryParam("limit"); limitParam != "" {
		if limit, err = strconv.Atoi(limitParam); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.New("limit is invalid"))
		}
	}

	books, err := h.lendingSvc.ListBooks(ctx, model.BookFilter{
		Title:  c.QueryParam("title"),
		Author: c.QueryParam("author"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, books)
}

func (h *Handler) AddBook(c echo.Context) error {
	var req model.CreateBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	book, err := h.lendingSvc.AddBook(c.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, book)
}

func (h *Handler) GetBorrowRecords(c echo.Context) error {
	id, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "no identity")
	}

	records, err := h.lendingSvc.ListRecords(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"records": records})
}

func (h *Handler) BorrowBook(c echo.Context) error {
	var req model.BorrowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	id, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "no identity")
	}

	rec, err := h.lendingSvc.Borrow(c.Request().Context(), req.BookUid, id)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, errs.ErrBookUnavailable):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, echo.Map{"record": rec})
}

func (h *Handler) ReturnBook(c echo.Context) error {
	recordUid := c.Param("recordUid")
	if recordUid == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "recordUid is empty")
	}
	id, ok := auth.IdentityFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "no identity")
	}

	if err := h.lendingSvc.Return(c.Request().Context(), recordUid, id); err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, errs.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

func (h *Handler) GetStats(c echo.Context) error {
	stats, err := h.statsSvc.GetStats(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}
