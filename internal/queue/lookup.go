package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rabbitmq/amqp091-go"

	"github.com/mapstead/skiptrace/pkg/graph"
	"github.com/mapstead/skiptrace/pkg/logger"
	"github.com/mapstead/skiptrace/pkg/lookup"
	"github.com/mapstead/skiptrace/pkg/store"
)

// LookupJob is the message published when a node is created for an
// asynchronous lookup. Each in-flight job carries its own node id, so
// interleaved searches attach independently and in any order.
type LookupJob struct {
	SessionID string            `json:"session_id"`
	NodeID    string            `json:"node_id"`
	APIName   string            `json:"api_name"`
	Params    map[string]string `json:"params,omitempty"`
}

// PublishLookup enqueues one lookup job.
func PublishLookup(ch *amqp091.Channel, job LookupJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode lookup job: %w", err)
	}
	return PublishFIFO(ch, LookupQueue, data)
}

// ProcessLookupMessage resolves one lookup job: call the provider,
// attach the raw result to the owning node, persist the session.
//
// A session or node that disappeared while the lookup was in flight is
// the supported cancellation path — the job is dropped without error so
// the message acks instead of retrying.
func ProcessLookupMessage(
	ctx context.Context,
	provider lookup.Provider,
	manager *store.Manager,
	body string,
) error {
	var job LookupJob
	if err := json.Unmarshal([]byte(body), &job); err != nil {
		return fmt.Errorf("failed to decode lookup job: %w", err)
	}

	raw, err := provider.Lookup(ctx, job.APIName, job.Params)
	if err != nil {
		return fmt.Errorf("lookup %q failed for node %q: %w", job.APIName, job.NodeID, err)
	}

	session, err := manager.Storage().GetSession(ctx, job.SessionID)
	if errors.Is(err, store.ErrSessionNotFound) {
		logger.Debug("Session deleted while lookup in flight, dropping result",
			"session_id", job.SessionID, "node_id", job.NodeID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load session %q: %w", job.SessionID, err)
	}

	st := graph.NewStore(session)
	node := st.AttachResult(job.NodeID, raw)
	if node == nil {
		logger.Debug("Node no longer present, dropping result",
			"session_id", job.SessionID, "node_id", job.NodeID)
		return nil
	}

	if err := manager.Persist(ctx, session); err != nil {
		return err
	}

	logger.Info("Lookup result attached",
		"session_id", job.SessionID,
		"node_id", job.NodeID,
		"api", job.APIName,
		"entities", len(node.Payload.Entities),
	)
	return nil
}
