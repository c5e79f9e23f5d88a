package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mapstead/skiptrace/internal/server/middleware"
	"github.com/mapstead/skiptrace/pkg/store"
)

// DeleteSessionHandler deletes a whole session. Individual nodes are
// never deleted; this is the only way investigation data goes away
// explicitly. Lookups still in flight for the session will no-op when
// they resolve.
func DeleteSessionHandler(c echo.Context) error {
	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App
	id := c.Param("id")

	if _, err := app.Sessions.Storage().GetSession(ctx, id); err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "Session not found"})
		}
		return c.String(http.StatusInternalServerError, err.Error())
	}

	if err := app.Sessions.Storage().DeleteSession(ctx, id); err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Session deleted"})
}
