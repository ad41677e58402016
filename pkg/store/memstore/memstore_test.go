package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/schoolfleet/schoolfleet/pkg/fleet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionedUpdateRejectsStaleWriters(t *testing.T) {
	ctx := context.Background()
	entityStore := NewMemoryStore()

	require.NoError(t, entityStore.Routes().Insert(ctx, &fleet.Route{PrimaryIdentifier: "R1"}))

	first, err := entityStore.Routes().Get(ctx, "R1")
	require.NoError(t, err)
	second, err := entityStore.Routes().Get(ctx, "R1")
	require.NoError(t, err)

	first.Name = "Northside Morning"
	require.NoError(t, entityStore.Routes().Update(ctx, first))
	assert.Equal(t, int64(2), first.Version)

	// The second reader still holds version 1 and must lose.
	second.Name = "Southside Morning"
	err = entityStore.Routes().Update(ctx, second)

	var stale *fleet.StaleVersionError
	require.ErrorAs(t, err, &stale)

	current, err := entityStore.Routes().Get(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, "Northside Morning", current.Name)

	// Re-reading picks up the bumped version and the retry goes through.
	second, err = entityStore.Routes().Get(ctx, "R1")
	require.NoError(t, err)
	second.Name = "Southside Morning"
	require.NoError(t, entityStore.Routes().Update(ctx, second))
}

func TestGetReturnsIsolatedCopies(t *testing.T) {
	ctx := context.Background()
	entityStore := NewMemoryStore()

	require.NoError(t, entityStore.Routes().Insert(ctx, &fleet.Route{
		PrimaryIdentifier: "R1",
		Stops:             []fleet.Stop{{Name: "Oak & 1st", StudentRefs: []string{"s1"}}},
	}))

	snapshot, err := entityStore.Routes().Get(ctx, "R1")
	require.NoError(t, err)
	snapshot.Stops[0].StudentRefs[0] = "tampered"

	fresh, err := entityStore.Routes().Get(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, fresh.Stops[0].StudentRefs)
}

func TestReplaceForRouteStampsRouteRef(t *testing.T) {
	ctx := context.Background()
	entityStore := NewMemoryStore()

	require.NoError(t, entityStore.StudentRoutes().ReplaceForRoute(ctx, "R1", []fleet.StudentRouteAssignment{
		{StudentRef: "student-1", StopIndex: 0},
	}))

	assignments, err := entityStore.StudentRoutes().FindByRoute(ctx, "R1")
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, "R1", assignments[0].RouteRef)
	assert.False(t, assignments[0].CreationDateTime.IsZero())
}

func TestIncidentsFindSince(t *testing.T) {
	ctx := context.Background()
	entityStore := NewMemoryStore()
	now := time.Now()

	entityStore.SeedIncident(fleet.Incident{PrimaryIdentifier: "I1", CreationDateTime: now.Add(-time.Hour)})
	entityStore.SeedIncident(fleet.Incident{PrimaryIdentifier: "I2", CreationDateTime: now.Add(-40 * 24 * time.Hour)})

	recent, err := entityStore.Incidents().FindSince(ctx, now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "I1", recent[0].PrimaryIdentifier)
}

func TestSagaLogsFindRunning(t *testing.T) {
	ctx := context.Background()
	entityStore := NewMemoryStore()

	require.NoError(t, entityStore.SagaLogs().Insert(ctx, &fleet.SagaLog{
		PrimaryIdentifier: "saga-1",
		State:             fleet.SagaStateRunning,
	}))
	require.NoError(t, entityStore.SagaLogs().Insert(ctx, &fleet.SagaLog{
		PrimaryIdentifier: "saga-2",
		State:             fleet.SagaStateCompleted,
	}))

	running, err := entityStore.SagaLogs().FindRunning(ctx)
	require.NoError(t, err)
	require.Len(t, running, 1)
	assert.Equal(t, "saga-1", running[0].PrimaryIdentifier)
}
