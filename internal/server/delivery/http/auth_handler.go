package http

import (
	"net/http"

	"papertrade/internal/server/dto"
	"papertrade/internal/server/service"
	"papertrade/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AuthHandler handles registration, login, and profile requests.
type AuthHandler struct {
	authService service.AuthService
	logger      *logger.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

// RegisterPublicRoutes registers the unauthenticated auth routes.
func (h *AuthHandler) RegisterPublicRoutes(g *echo.Group) {
	g.POST("/auth/register", h.Register)
	g.POST("/auth/login", h.Login)
}

// RegisterRoutes registers the authenticated auth routes.
func (h *AuthHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/me", h.Profile)
	g.GET("/users/search", h.SearchUsers)
}

// Register creates a new account and returns a session token.
func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.Fail("Invalid request payload"))
	}

	resp, err := h.authService.Register(c.Request().Context(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.OK(resp))
}

// Login returns a session token for an existing account.
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.Fail("Invalid request payload"))
	}

	resp, err := h.authService.Login(c.Request().Context(), req.NetID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK(resp))
}

// Profile returns the authenticated user's own profile.
func (h *AuthHandler) Profile(c echo.Context) error {
	resp, err := h.authService.GetProfile(c.Request().Context(), authedUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK(resp))
}

// SearchUsers finds accounts by net id substring.
func (h *AuthHandler) SearchUsers(c echo.Context) error {
	users, err := h.authService.SearchUsers(c.Request().Context(), c.QueryParam("q"), authedUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.OK(users))
}
