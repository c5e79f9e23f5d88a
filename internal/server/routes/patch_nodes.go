package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mapstead/skiptrace/internal/server/middleware"
	"github.com/mapstead/skiptrace/pkg/common"
	"github.com/mapstead/skiptrace/pkg/graph"
	"github.com/mapstead/skiptrace/pkg/store"
)

// EditNodeTitleHandler sets or clears a node's custom title. A blank
// title clears the override and re-enables automatic derivation; it is
// never stored as a literal empty title.
func EditNodeTitleHandler(c echo.Context) error {
	type editNodeBody struct {
		Title string `json:"title"`
	}

	type editNodeResponse struct {
		Message string       `json:"message"`
		Node    *common.Node `json:"node,omitempty"`
	}

	data := new(editNodeBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, editNodeResponse{
			Message: "Invalid request body",
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	session, err := app.Sessions.Storage().GetSession(ctx, c.Param("id"))
	if errors.Is(err, store.ErrSessionNotFound) {
		return c.JSON(http.StatusNotFound, editNodeResponse{Message: "Session not found"})
	}
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	st := graph.NewStore(session)
	node := st.SetCustomTitle(c.Param("node_id"), data.Title)
	if node == nil {
		// Stale reference: the node went away with a concurrent session
		// change. Quiet no-op by contract.
		return c.JSON(http.StatusOK, editNodeResponse{
			Message: "Node no longer present",
		})
	}

	if err := app.Sessions.Persist(ctx, session); err != nil {
		var writeErr *store.StorageWriteError
		if errors.As(err, &writeErr) {
			return c.JSON(http.StatusInsufficientStorage, editNodeResponse{
				Message: writeErr.Error(),
			})
		}
		return c.JSON(http.StatusInternalServerError, editNodeResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, editNodeResponse{
		Message: "Node updated",
		Node:    node,
	})
}
