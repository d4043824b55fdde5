package middleware

import (
	"net/http"

	"github.com/damacus/bucket-drop/internal/utils"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// CSRF requires the token header on every state-changing request. The
// page's htmx hook copies the token from the csrf-token meta tag into the
// header.
func CSRF() echo.MiddlewareFunc {
	return echoMiddleware.CSRFWithConfig(echoMiddleware.CSRFConfig{
		TokenLookup:    "header:" + utils.HeaderCSRFToken,
		CookieName:     utils.CSRFCookieName,
		CookiePath:     "/",
		CookieSameSite: http.SameSiteStrictMode,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health" || c.Path() == "/metrics"
		},
	})
}
