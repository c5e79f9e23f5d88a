package routes

import (
	"errors"
	"net/http"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/mapstead/skiptrace/internal/queue"
	"github.com/mapstead/skiptrace/internal/server/middleware"
	"github.com/mapstead/skiptrace/pkg/common"
	"github.com/mapstead/skiptrace/pkg/graph"
	"github.com/mapstead/skiptrace/pkg/logger"
	"github.com/mapstead/skiptrace/pkg/store"
)

// CreateNodeHandler appends a node to a session. Nodes backed by an
// asynchronous lookup (api-result, people-result) additionally get a
// lookup job dispatched; their result attaches later by node id.
func CreateNodeHandler(c echo.Context) error {
	type addressBody struct {
		Street string `json:"street"`
		City   string `json:"city"`
		State  string `json:"state"`
		Zip    string `json:"zip"`
	}

	type coordinatesBody struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	}

	type createNodeBody struct {
		Type        string            `json:"type" validate:"required,oneof=start userFound api-result people-result"`
		ParentID    string            `json:"parent_id"`
		APIName     string            `json:"api_name"`
		Params      map[string]string `json:"params"`
		Address     *addressBody      `json:"address"`
		Coordinates *coordinatesBody  `json:"coordinates"`
	}

	type createNodeResponse struct {
		Message string       `json:"message"`
		Node    *common.Node `json:"node,omitempty"`
	}

	data := new(createNodeBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createNodeResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, createNodeResponse{
			Message: "Invalid request body",
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App
	sessionID := c.Param("id")

	session, err := app.Sessions.Storage().GetSession(ctx, sessionID)
	if errors.Is(err, store.ErrSessionNotFound) {
		return c.JSON(http.StatusNotFound, createNodeResponse{Message: "Session not found"})
	}
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	payload := common.Payload{APIName: data.APIName}
	if data.Address != nil {
		payload.Address = &common.Address{
			Street: data.Address.Street,
			City:   data.Address.City,
			State:  data.Address.State,
			Zip:    data.Address.Zip,
		}
	}
	if data.Coordinates != nil {
		payload.Coordinates = &common.LatLng{
			Lat: data.Coordinates.Lat,
			Lng: data.Coordinates.Lng,
		}
	}

	st := graph.NewStore(session)
	node, err := st.CreateNode(common.NodeType(data.Type), payload, data.ParentID)
	if err != nil {
		var orphan *graph.OrphanNodeError
		if errors.As(err, &orphan) {
			return c.JSON(http.StatusUnprocessableEntity, createNodeResponse{
				Message: orphan.Error(),
			})
		}
		return c.JSON(http.StatusInternalServerError, createNodeResponse{
			Message: "Internal server error",
		})
	}

	if err := app.Sessions.Persist(ctx, session); err != nil {
		var writeErr *store.StorageWriteError
		if errors.As(err, &writeErr) {
			return c.JSON(http.StatusInsufficientStorage, createNodeResponse{
				Message: writeErr.Error(),
			})
		}
		return c.JSON(http.StatusInternalServerError, createNodeResponse{
			Message: "Internal server error",
		})
	}

	if node.Type == common.NodeAPIResult || node.Type == common.NodePeopleResult {
		err := queue.PublishLookup(app.Queue, queue.LookupJob{
			SessionID: session.ID,
			NodeID:    node.ID,
			APIName:   data.APIName,
			Params:    data.Params,
		})
		if err != nil {
			// The node exists and persists either way; the lookup just never
			// resolves, which the UI shows as an incomplete node.
			logger.Error("Failed to dispatch lookup job",
				"session_id", session.ID, "node_id", node.ID, "err", err)
		}
	}

	return c.JSON(http.StatusCreated, createNodeResponse{
		Message: "Node created",
		Node:    node,
	})
}
