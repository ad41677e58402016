package assignment_test

import (
	"context"
	"testing"

	"github.com/schoolfleet/schoolfleet/pkg/assignment"
	"github.com/schoolfleet/schoolfleet/pkg/fleet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceStudentAssignments(t *testing.T) {
	ctx := context.Background()
	entityStore := seedTriad(t)
	coordinator := assignment.NewCoordinator(entityStore)

	err := coordinator.ReplaceStudentAssignments(ctx, "R1", []fleet.StudentRouteAssignment{
		{StudentRef: "student-1", StopIndex: 0, StudentName: "Ada"},
		{StudentRef: "student-2", StopIndex: 1, StudentName: "Ben"},
		{StudentRef: "student-3", StopIndex: 1, StudentName: "Cal"},
	})
	require.NoError(t, err)

	assignments, err := entityStore.StudentRoutes().FindByRoute(ctx, "R1")
	require.NoError(t, err)
	require.Len(t, assignments, 3)
	for _, studentAssignment := range assignments {
		assert.Equal(t, "R1", studentAssignment.RouteRef)
	}

	route, err := entityStore.Routes().Get(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, []string{"student-1"}, route.Stops[0].StudentRefs)
	assert.Equal(t, []string{"student-2", "student-3"}, route.Stops[1].StudentRefs)
	assert.Equal(t, 3, route.StudentCount())
}

func TestReplaceStudentAssignmentsSwapsTheFullSet(t *testing.T) {
	ctx := context.Background()
	entityStore := seedTriad(t)
	coordinator := assignment.NewCoordinator(entityStore)

	require.NoError(t, coordinator.ReplaceStudentAssignments(ctx, "R1", []fleet.StudentRouteAssignment{
		{StudentRef: "student-1", StopIndex: 0},
		{StudentRef: "student-2", StopIndex: 1},
	}))

	// The second call replaces, never appends.
	require.NoError(t, coordinator.ReplaceStudentAssignments(ctx, "R1", []fleet.StudentRouteAssignment{
		{StudentRef: "student-9", StopIndex: 1},
	}))

	assignments, err := entityStore.StudentRoutes().FindByRoute(ctx, "R1")
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, "student-9", assignments[0].StudentRef)

	route, err := entityStore.Routes().Get(ctx, "R1")
	require.NoError(t, err)
	assert.Empty(t, route.Stops[0].StudentRefs)
	assert.Equal(t, []string{"student-9"}, route.Stops[1].StudentRefs)
}

func TestReplaceStudentAssignmentsValidation(t *testing.T) {
	ctx := context.Background()
	entityStore := seedTriad(t)
	coordinator := assignment.NewCoordinator(entityStore)

	var validationError *fleet.ValidationError

	err := coordinator.ReplaceStudentAssignments(ctx, "R1", []fleet.StudentRouteAssignment{
		{StopIndex: 0},
	})
	require.ErrorAs(t, err, &validationError, "missing student reference")

	err = coordinator.ReplaceStudentAssignments(ctx, "R1", []fleet.StudentRouteAssignment{
		{StudentRef: "student-1", StopIndex: 2},
	})
	require.ErrorAs(t, err, &validationError, "stop index out of range")

	err = coordinator.ReplaceStudentAssignments(ctx, "R1", []fleet.StudentRouteAssignment{
		{StudentRef: "student-1", StopIndex: -1},
	})
	require.ErrorAs(t, err, &validationError, "negative stop index")

	// A rejected batch leaves the existing set alone.
	assignments, err := entityStore.StudentRoutes().FindByRoute(ctx, "R1")
	require.NoError(t, err)
	assert.Empty(t, assignments)

	var notFound *fleet.NotFoundError
	err = coordinator.ReplaceStudentAssignments(ctx, "R9", nil)
	require.ErrorAs(t, err, &notFound)
}
