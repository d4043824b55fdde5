package handlers

import (
	"net/http"

	"github.com/damacus/bucket-drop/internal/models"
	"github.com/damacus/bucket-drop/internal/utils"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// IsHTMX reports whether the request was issued by htmx
func IsHTMX(c echo.Context) bool {
	return c.Request().Header.Get(utils.HeaderHXRequest) == "true"
}

// CSRFToken returns the token the CSRF middleware stored for this request,
// or "" when the middleware is not installed.
func CSRFToken(c echo.Context) string {
	token, _ := c.Get(echoMiddleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}

// BindForm reads the upload form from the request body
func BindForm(c echo.Context) (models.FormState, error) {
	var form models.FormState
	if err := c.Bind(&form); err != nil {
		return models.FormState{}, echo.NewHTTPError(http.StatusBadRequest, "Invalid form")
	}
	return form, nil
}
