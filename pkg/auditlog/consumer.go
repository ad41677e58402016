package auditlog

import (
	"context"
	"encoding/json"

	"github.com/adjust/rmq/v5"
	"github.com/rs/zerolog/log"
	"github.com/schoolfleet/schoolfleet/pkg/fleet"
	"github.com/schoolfleet/schoolfleet/pkg/store"
)

type BatchConsumer struct {
	routeLogs store.RouteLogRepository
}

func NewBatchConsumer(routeLogs store.RouteLogRepository) *BatchConsumer {
	return &BatchConsumer{routeLogs: routeLogs}
}

func (consumer *BatchConsumer) Consume(batch rmq.Deliveries) {
	payloads := batch.Payloads()

	for _, payload := range payloads {
		var routeLog fleet.RouteLog
		if err := json.Unmarshal([]byte(payload), &routeLog); err != nil {
			log.Error().Err(err).Msg("Failed to decode audit record")
			continue
		}

		if err := consumer.routeLogs.Insert(context.Background(), &routeLog); err != nil {
			log.Error().Err(err).Str("route", routeLog.RouteRef).Msg("Failed to write audit record")
		}
	}

	if ackErrors := batch.Ack(); len(ackErrors) > 0 {
		for _, err := range ackErrors {
			log.Error().Err(err).Msg("Failed to ack audit record batch")
		}
	}
}
