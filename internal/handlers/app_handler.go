package handlers

import (
	"net/http"

	"github.com/damacus/bucket-drop/internal/logger"
	"github.com/labstack/echo/v4"
)

type AppHandler struct {
	quit func()
}

// NewAppHandler creates the handler for process-level routes. quit is called
// when the page asks the program to stop.
func NewAppHandler(quit func()) *AppHandler {
	return &AppHandler{quit: quit}
}

func (h *AppHandler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// Quit stops the program. The response is still delivered because shutdown
// waits for in-flight requests.
func (h *AppHandler) Quit(c echo.Context) error {
	logger.Ctx(c.Request().Context()).Info().Msg("quit requested from the page")
	if h.quit != nil {
		h.quit()
	}
	return c.HTML(http.StatusOK, `<main style="text-align:center;margin-top:4rem"><p>The uploader has stopped. You can close this tab.</p></main>`)
}
