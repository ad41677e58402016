package assignment_test

import (
	"context"
	"errors"
	"testing"

	"github.com/schoolfleet/schoolfleet/pkg/assignment"
	"github.com/schoolfleet/schoolfleet/pkg/fleet"
	"github.com/schoolfleet/schoolfleet/pkg/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedTriad is the baseline fixture: bus B1 and driver D1 bound to each other
// and running route R1, with a spare driver D2 and an unbound route R2.
func seedTriad(t *testing.T) *memstore.MemoryStore {
	t.Helper()
	ctx := context.Background()
	entityStore := memstore.NewMemoryStore()

	require.NoError(t, entityStore.Buses().Insert(ctx, &fleet.Bus{
		PrimaryIdentifier: "B1",
		BusNumber:         "101",
		Capacity:          50,
		DriverRef:         "D1",
		Status:            fleet.BusStatusActive,
	}))
	require.NoError(t, entityStore.Buses().Insert(ctx, &fleet.Bus{
		PrimaryIdentifier: "B2",
		BusNumber:         "102",
		Capacity:          25,
		Status:            fleet.BusStatusInactive,
	}))

	require.NoError(t, entityStore.Drivers().Insert(ctx, &fleet.Driver{
		PrimaryIdentifier: "D1",
		Name:              "Pat Reyes",
		LicenseNumber:     "CDL-448",
		Status:            fleet.DriverStatusApproved,
		AssignedBusRef:    "B1",
	}))
	require.NoError(t, entityStore.Drivers().Insert(ctx, &fleet.Driver{
		PrimaryIdentifier: "D2",
		Name:              "Sam Okafor",
		LicenseNumber:     "CDL-951",
		Status:            fleet.DriverStatusApproved,
	}))

	require.NoError(t, entityStore.Routes().Insert(ctx, &fleet.Route{
		PrimaryIdentifier: "R1",
		Name:              "Northside Morning",
		BusRef:            "B1",
		DriverRef:         "D1",
		Status:            fleet.RouteStatusActive,
		Schedule:          fleet.ScheduleWindow{MorningStart: "07:00", AfternoonStart: "15:00"},
		Stops: []fleet.Stop{
			{Name: "Oak & 1st", Order: 0},
			{Name: "Elm & 2nd", Order: 1},
		},
	}))
	require.NoError(t, entityStore.Routes().Insert(ctx, &fleet.Route{
		PrimaryIdentifier: "R2",
		Name:              "Southside Morning",
		Status:            fleet.RouteStatusInactive,
		Stops: []fleet.Stop{
			{Name: "Pine & 9th", Order: 0},
		},
	}))

	return entityStore
}

func TestAssignValidatesInput(t *testing.T) {
	ctx := context.Background()
	coordinator := assignment.NewCoordinator(seedTriad(t))

	var validationError *fleet.ValidationError

	err := coordinator.Assign(ctx, assignment.AssignInput{DriverRef: "D1", RouteRef: "R1"})
	require.ErrorAs(t, err, &validationError, "missing bus")

	err = coordinator.Assign(ctx, assignment.AssignInput{BusRef: "B1", DriverRef: "D1"})
	require.ErrorAs(t, err, &validationError, "missing route")

	err = coordinator.Assign(ctx, assignment.AssignInput{
		BusRef:   "B1",
		RouteRef: "R1",
		Schedule: fleet.ScheduleWindow{MorningStart: "7 o'clock"},
	})
	require.ErrorAs(t, err, &validationError, "malformed schedule")
}

func TestAssignUnknownRecords(t *testing.T) {
	ctx := context.Background()
	coordinator := assignment.NewCoordinator(seedTriad(t))

	var notFound *fleet.NotFoundError

	err := coordinator.Assign(ctx, assignment.AssignInput{BusRef: "B9", RouteRef: "R1"})
	require.ErrorAs(t, err, &notFound)

	err = coordinator.Assign(ctx, assignment.AssignInput{BusRef: "B1", RouteRef: "R9"})
	require.ErrorAs(t, err, &notFound)

	err = coordinator.Assign(ctx, assignment.AssignInput{BusRef: "B1", DriverRef: "D9", RouteRef: "R1"})
	require.ErrorAs(t, err, &notFound)
}

func TestAssignScheduleConflictLeavesRecordsUntouched(t *testing.T) {
	ctx := context.Background()
	entityStore := seedTriad(t)
	coordinator := assignment.NewCoordinator(entityStore)

	busBefore, _ := entityStore.Buses().Get(ctx, "B2")
	driverBefore, _ := entityStore.Drivers().Get(ctx, "D1")
	routeBefore, _ := entityStore.Routes().Get(ctx, "R2")

	// D1 already starts a route at 07:00; a different afternoon time does not
	// save the assignment.
	err := coordinator.Assign(ctx, assignment.AssignInput{
		BusRef:    "B2",
		DriverRef: "D1",
		RouteRef:  "R2",
		Schedule:  fleet.ScheduleWindow{MorningStart: "07:00", AfternoonStart: "16:00"},
	})

	var conflict *fleet.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "D1", conflict.DriverRef)
	assert.Equal(t, []string{"R1"}, conflict.ConflictingRoutes)

	busAfter, _ := entityStore.Buses().Get(ctx, "B2")
	driverAfter, _ := entityStore.Drivers().Get(ctx, "D1")
	routeAfter, _ := entityStore.Routes().Get(ctx, "R2")
	assert.Equal(t, busBefore, busAfter)
	assert.Equal(t, driverBefore, driverAfter)
	assert.Equal(t, routeBefore, routeAfter)

	assert.Empty(t, entityStore.AllSagaLogs(), "a conflict should be caught before the saga starts")
}

func TestAssignReassignmentReleasesPreviousDriver(t *testing.T) {
	ctx := context.Background()
	entityStore := seedTriad(t)
	coordinator := assignment.NewCoordinator(entityStore)

	err := coordinator.Assign(ctx, assignment.AssignInput{
		BusRef:    "B1",
		DriverRef: "D2",
		RouteRef:  "R1",
		Schedule:  fleet.ScheduleWindow{MorningStart: "07:00", AfternoonStart: "15:00"},
	})
	require.NoError(t, err)

	previousDriver, err := entityStore.Drivers().Get(ctx, "D1")
	require.NoError(t, err)
	assert.Empty(t, previousDriver.AssignedBusRef)

	newDriver, err := entityStore.Drivers().Get(ctx, "D2")
	require.NoError(t, err)
	assert.Equal(t, "B1", newDriver.AssignedBusRef)

	bus, err := entityStore.Buses().Get(ctx, "B1")
	require.NoError(t, err)
	assert.Equal(t, "D2", bus.DriverRef)

	route, err := entityStore.Routes().Get(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, "B1", route.BusRef)
	assert.Equal(t, "D2", route.DriverRef)
	assert.Equal(t, fleet.RouteStatusActive, route.Status)
}

func TestAssignDeactivatesOtherActiveRoutes(t *testing.T) {
	ctx := context.Background()
	entityStore := seedTriad(t)
	coordinator := assignment.NewCoordinator(entityStore)

	// Moving B1 onto R2 must leave R1, its current active route, unbound and
	// inactive.
	err := coordinator.Assign(ctx, assignment.AssignInput{
		BusRef:    "B1",
		DriverRef: "D2",
		RouteRef:  "R2",
		Schedule:  fleet.ScheduleWindow{MorningStart: "08:00", AfternoonStart: "16:00"},
	})
	require.NoError(t, err)

	displaced, err := entityStore.Routes().Get(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, fleet.RouteStatusInactive, displaced.Status)
	assert.Empty(t, displaced.BusRef)
	assert.Empty(t, displaced.DriverRef)
	assert.True(t, displaced.Schedule.Empty())

	bound, err := entityStore.Routes().Get(ctx, "R2")
	require.NoError(t, err)
	assert.Equal(t, fleet.RouteStatusActive, bound.Status)
	assert.Equal(t, "B1", bound.BusRef)
}

func TestAssignIsIdempotent(t *testing.T) {
	ctx := context.Background()
	entityStore := seedTriad(t)
	coordinator := assignment.NewCoordinator(entityStore)

	input := assignment.AssignInput{
		BusRef:    "B1",
		DriverRef: "D2",
		RouteRef:  "R1",
		Schedule:  fleet.ScheduleWindow{MorningStart: "07:30", AfternoonStart: "15:30"},
	}

	require.NoError(t, coordinator.Assign(ctx, input))

	busAfterFirst, _ := entityStore.Buses().Get(ctx, "B1")
	driverAfterFirst, _ := entityStore.Drivers().Get(ctx, "D2")
	routeAfterFirst, _ := entityStore.Routes().Get(ctx, "R1")

	require.NoError(t, coordinator.Assign(ctx, input))

	busAfterSecond, _ := entityStore.Buses().Get(ctx, "B1")
	driverAfterSecond, _ := entityStore.Drivers().Get(ctx, "D2")
	routeAfterSecond, _ := entityStore.Routes().Get(ctx, "R1")

	assert.Equal(t, busAfterFirst.DriverRef, busAfterSecond.DriverRef)
	assert.Equal(t, busAfterFirst.Status, busAfterSecond.Status)
	assert.Equal(t, driverAfterFirst.AssignedBusRef, driverAfterSecond.AssignedBusRef)
	assert.Equal(t, routeAfterFirst.BusRef, routeAfterSecond.BusRef)
	assert.Equal(t, routeAfterFirst.DriverRef, routeAfterSecond.DriverRef)
	assert.Equal(t, routeAfterFirst.Schedule, routeAfterSecond.Schedule)
	assert.Equal(t, routeAfterFirst.Status, routeAfterSecond.Status)
}

func TestAssignWritesCompletedSagaLog(t *testing.T) {
	ctx := context.Background()
	entityStore := seedTriad(t)
	coordinator := assignment.NewCoordinator(entityStore)

	require.NoError(t, coordinator.Assign(ctx, assignment.AssignInput{
		BusRef:    "B1",
		DriverRef: "D1",
		RouteRef:  "R1",
		Schedule:  fleet.ScheduleWindow{MorningStart: "07:00", AfternoonStart: "15:00"},
	}))

	sagaLogs := entityStore.AllSagaLogs()
	require.Len(t, sagaLogs, 1)
	assert.Equal(t, "assign-route", sagaLogs[0].Name)
	assert.Equal(t, fleet.SagaStateCompleted, sagaLogs[0].State)
	assert.Equal(t, "R1", sagaLogs[0].RouteRef)
	assert.Contains(t, sagaLogs[0].CompletedSteps, "bind-bus")
	assert.Contains(t, sagaLogs[0].CompletedSteps, "bind-route")
}

func TestAssignCompensatesOnMidSequenceFailure(t *testing.T) {
	ctx := context.Background()
	entityStore := seedTriad(t)
	coordinator := assignment.NewCoordinator(entityStore)

	// The final bind-route write fails, after the driver release, bus bind,
	// driver bind and route deactivation have all been applied.
	entityStore.FailUpdateFor = map[string]error{"R2": errors.New("connection reset")}

	err := coordinator.Assign(ctx, assignment.AssignInput{
		BusRef:    "B1",
		DriverRef: "D2",
		RouteRef:  "R2",
		Schedule:  fleet.ScheduleWindow{MorningStart: "08:00", AfternoonStart: "16:00"},
	})
	require.Error(t, err)

	bus, _ := entityStore.Buses().Get(ctx, "B1")
	assert.Equal(t, "D1", bus.DriverRef, "bus should be back on its original driver")

	previousDriver, _ := entityStore.Drivers().Get(ctx, "D1")
	assert.Equal(t, "B1", previousDriver.AssignedBusRef)

	newDriver, _ := entityStore.Drivers().Get(ctx, "D2")
	assert.Empty(t, newDriver.AssignedBusRef)

	displaced, _ := entityStore.Routes().Get(ctx, "R1")
	assert.Equal(t, fleet.RouteStatusActive, displaced.Status)
	assert.Equal(t, "B1", displaced.BusRef)
	assert.Equal(t, "D1", displaced.DriverRef)

	target, _ := entityStore.Routes().Get(ctx, "R2")
	assert.Equal(t, fleet.RouteStatusInactive, target.Status)
	assert.Empty(t, target.BusRef)

	sagaLogs := entityStore.AllSagaLogs()
	require.Len(t, sagaLogs, 1)
	assert.Equal(t, fleet.SagaStateCompensated, sagaLogs[0].State)
	assert.Equal(t, "connection reset", sagaLogs[0].Error)
}
