// Package auditlog persists simulation runs into the route_logs collection,
// normally through a Redis queue drained by a batch consumer, with a direct
// store write as fallback.
package auditlog

import (
	"context"

	"github.com/google/uuid"
	"github.com/schoolfleet/schoolfleet/pkg/fleet"
	"github.com/schoolfleet/schoolfleet/pkg/store"
)

// StoreSink writes audit records straight into the store.
type StoreSink struct {
	RouteLogs store.RouteLogRepository
}

func (s *StoreSink) RecordSimulation(ctx context.Context, routeLog *fleet.RouteLog) error {
	if routeLog.PrimaryIdentifier == "" {
		routeLog.PrimaryIdentifier = uuid.NewString()
	}
	return s.RouteLogs.Insert(ctx, routeLog)
}
