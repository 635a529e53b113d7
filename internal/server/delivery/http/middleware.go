package http

import (
	"net/http"
	"strings"

	"papertrade/internal/server/dto"
	"papertrade/pkg/jwtauth"

	"github.com/labstack/echo/v4"
)

const (
	contextKeyUserID = "user_id"
	contextKeyNetID  = "net_id"
)

// JWTMiddleware verifies the Bearer token and stores the authenticated
// identity on the request context.
func JWTMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				return c.JSON(http.StatusUnauthorized, dto.Fail("Missing or malformed authorization header"))
			}

			claims, err := jwtauth.ParseToken(token, secret)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, dto.Fail("Invalid or expired token"))
			}

			c.Set(contextKeyUserID, claims.UserID)
			c.Set(contextKeyNetID, claims.NetID)
			return next(c)
		}
	}
}

// authedUserID returns the user id set by JWTMiddleware.
func authedUserID(c echo.Context) uint {
	id, _ := c.Get(contextKeyUserID).(uint)
	return id
}
