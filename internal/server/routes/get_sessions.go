package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mapstead/skiptrace/internal/server/middleware"
	"github.com/mapstead/skiptrace/pkg/store"
)

// GetSessionsHandler lists all sessions as summaries for the session
// picker.
func GetSessionsHandler(c echo.Context) error {
	type sessionSummary struct {
		SessionID string `json:"session_id"`
		Name      string `json:"name"`
		CreatedAt int64  `json:"created_at"`
		NodeCount int    `json:"node_count"`
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	sessions, err := app.Sessions.Storage().ListSessions(ctx)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	summaries := make([]sessionSummary, 0, len(sessions))
	for _, s := range sessions {
		summaries = append(summaries, sessionSummary{
			SessionID: s.ID,
			Name:      s.Name,
			CreatedAt: s.CreatedAt,
			NodeCount: len(s.Nodes),
		})
	}

	return c.JSON(http.StatusOK, summaries)
}

// GetSessionHandler returns one full session document, the same shape
// the map and list views consume.
func GetSessionHandler(c echo.Context) error {
	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	session, err := app.Sessions.Storage().GetSession(ctx, c.Param("id"))
	if errors.Is(err, store.ErrSessionNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Session not found"})
	}
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, session)
}
