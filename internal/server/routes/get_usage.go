package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mapstead/skiptrace/internal/server/middleware"
)

// GetUsageHandler reports how the shared storage medium is split
// between sessions and the rest of the product.
func GetUsageHandler(c echo.Context) error {
	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	report, err := app.Sessions.MeasureUsage(ctx)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, report)
}
