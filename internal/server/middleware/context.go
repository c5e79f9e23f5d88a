package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/mapstead/skiptrace/pkg/store"
)

// App bundles the shared handles every route needs: the session/quota
// manager over the configured storage backend, and the channel used to
// dispatch lookup jobs.
type App struct {
	Sessions *store.Manager
	Queue    *amqp091.Channel
}

// AppContext wraps the echo context with the application handle.
type AppContext struct {
	echo.Context
	App *App
}

// AppContextMiddleware attaches the App to every request context.
func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}
