package server

import (
	"github.com/labstack/echo/v4"

	"github.com/mapstead/skiptrace/internal/server/routes"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api")

	// Session routes
	apiRoutes.GET("/sessions", routes.GetSessionsHandler)
	apiRoutes.POST("/sessions", routes.CreateSessionHandler)
	apiRoutes.POST("/sessions/cleanup", routes.ClearEmptySessionsHandler)
	apiRoutes.GET("/sessions/:id", routes.GetSessionHandler)
	apiRoutes.DELETE("/sessions/:id", routes.DeleteSessionHandler)

	// Node routes
	apiRoutes.POST("/sessions/:id/nodes", routes.CreateNodeHandler)
	apiRoutes.PATCH("/sessions/:id/nodes/:node_id", routes.EditNodeTitleHandler)
	apiRoutes.GET("/sessions/:id/nodes/:node_id/subtree", routes.GetSubtreeHandler)

	// Storage usage routes
	apiRoutes.GET("/usage", routes.GetUsageHandler)
}
