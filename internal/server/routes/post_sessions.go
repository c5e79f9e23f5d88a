package routes

import (
	"errors"
	"net/http"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/mapstead/skiptrace/internal/server/middleware"
	"github.com/mapstead/skiptrace/pkg/common"
	"github.com/mapstead/skiptrace/pkg/graph"
	"github.com/mapstead/skiptrace/pkg/store"
)

// CreateSessionHandler creates a new, empty investigation session.
func CreateSessionHandler(c echo.Context) error {
	type createSessionBody struct {
		Name string `json:"name" validate:"required"`
	}

	type createSessionResponse struct {
		Message string          `json:"message"`
		Session *common.Session `json:"session,omitempty"`
	}

	data := new(createSessionBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createSessionResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, createSessionResponse{
			Message: "Invalid request body",
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	session, err := graph.NewSession(data.Name)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, createSessionResponse{
			Message: "Internal server error",
		})
	}

	if err := app.Sessions.Persist(ctx, session); err != nil {
		var writeErr *store.StorageWriteError
		if errors.As(err, &writeErr) {
			return c.JSON(http.StatusInsufficientStorage, createSessionResponse{
				Message: writeErr.Error(),
			})
		}
		return c.JSON(http.StatusInternalServerError, createSessionResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusCreated, createSessionResponse{
		Message: "Session created",
		Session: session,
	})
}

// ClearEmptySessionsHandler evicts every session with zero nodes.
func ClearEmptySessionsHandler(c echo.Context) error {
	type cleanupResponse struct {
		Message      string `json:"message"`
		DeletedCount int    `json:"deleted_count"`
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	deleted, err := app.Sessions.ClearEmptySessions(ctx)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, cleanupResponse{
		Message:      "Empty sessions cleared",
		DeletedCount: deleted,
	})
}
