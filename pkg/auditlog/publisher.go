package auditlog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/schoolfleet/schoolfleet/pkg/fleet"
	"github.com/schoolfleet/schoolfleet/pkg/redis_client"
)

const QueueName = "route-logs-queue"

// QueuePublisher pushes audit records onto the Redis queue for the batch
// consumer to drain. When the queue is unavailable it falls back to the
// direct store sink.
type QueuePublisher struct {
	queue    rmq.Queue
	fallback *StoreSink
}

func NewQueuePublisher(fallback *StoreSink) (*QueuePublisher, error) {
	queue, err := redis_client.QueueConnection.OpenQueue(QueueName)
	if err != nil {
		return nil, err
	}

	return &QueuePublisher{
		queue:    queue,
		fallback: fallback,
	}, nil
}

func (p *QueuePublisher) RecordSimulation(ctx context.Context, routeLog *fleet.RouteLog) error {
	if routeLog.PrimaryIdentifier == "" {
		routeLog.PrimaryIdentifier = uuid.NewString()
	}
	if routeLog.CreationDateTime.IsZero() {
		routeLog.CreationDateTime = time.Now()
	}

	routeLogBytes, err := json.Marshal(routeLog)
	if err != nil {
		return err
	}

	if err := p.queue.PublishBytes(routeLogBytes); err != nil {
		log.Warn().Err(err).Msg("Failed to publish audit record, writing directly")
		return p.fallback.RecordSimulation(ctx, routeLog)
	}

	return nil
}
