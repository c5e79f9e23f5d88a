package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mapstead/skiptrace/internal/server/middleware"
	"github.com/mapstead/skiptrace/pkg/graph"
	"github.com/mapstead/skiptrace/pkg/store"
)

// GetSubtreeHandler returns a node and all of its descendants in
// creation order, for rendering one branch of the investigation as a
// connected map or list.
func GetSubtreeHandler(c echo.Context) error {
	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	session, err := app.Sessions.Storage().GetSession(ctx, c.Param("id"))
	if errors.Is(err, store.ErrSessionNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Session not found"})
	}
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	st := graph.NewStore(session)
	nodes := st.GetSubtree(c.Param("node_id"))
	if nodes == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Node not found"})
	}

	return c.JSON(http.StatusOK, nodes)
}
