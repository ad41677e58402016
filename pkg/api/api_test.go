package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/schoolfleet/schoolfleet/pkg/api"
	"github.com/schoolfleet/schoolfleet/pkg/api/routes"
	"github.com/schoolfleet/schoolfleet/pkg/assignment"
	"github.com/schoolfleet/schoolfleet/pkg/auditlog"
	"github.com/schoolfleet/schoolfleet/pkg/fleet"
	"github.com/schoolfleet/schoolfleet/pkg/scoring"
	"github.com/schoolfleet/schoolfleet/pkg/simulation"
	"github.com/schoolfleet/schoolfleet/pkg/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*fiber.App, *memstore.MemoryStore) {
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
	require.NoError(t, entityStore.Drivers().Insert(ctx, &fleet.Driver{
		PrimaryIdentifier: "D1",
		Name:              "Pat Reyes",
		LicenseNumber:     "CDL-448",
		Status:            fleet.DriverStatusApproved,
		TrainingCompleted: true,
		AssignedBusRef:    "B1",
	}))
	require.NoError(t, entityStore.Routes().Insert(ctx, &fleet.Route{
		PrimaryIdentifier: "R1",
		Name:              "Northside Morning",
		BusRef:            "B1",
		DriverRef:         "D1",
		Status:            fleet.RouteStatusActive,
		Schedule:          fleet.ScheduleWindow{MorningStart: "07:00", AfternoonStart: "15:00"},
		Stops: []fleet.Stop{
			{Name: "Oak & 1st", Order: 0, Location: fleet.NewLocation(-73.99, 40.75)},
			{Name: "Elm & 2nd", Order: 1, Location: fleet.NewLocation(-73.98, 40.76)},
		},
	}))
	require.NoError(t, entityStore.Routes().Insert(ctx, &fleet.Route{
		PrimaryIdentifier: "R2",
		Name:              "Southside Morning",
		Status:            fleet.RouteStatusInactive,
		Stops:             []fleet.Stop{{Name: "Pine & 9th", Order: 0}},
	}))

	dependencies := &routes.Dependencies{
		Store:       entityStore,
		Coordinator: assignment.NewCoordinator(entityStore),
		Simulator:   simulation.NewSimulator(&auditlog.StoreSink{RouteLogs: entityStore.RouteLogs()}),
		Aggregator:  scoring.NewAggregator(entityStore),
	}

	return api.NewServer(dependencies), entityStore
}

func jsonRequest(method string, target string, body any) *http.Request {
	var buffer bytes.Buffer
	if body != nil {
		json.NewEncoder(&buffer).Encode(body)
	}
	request := httptest.NewRequest(method, target, &buffer)
	request.Header.Set("Content-Type", "application/json")
	return request
}

func decodeBody(t *testing.T, response *http.Response) map[string]any {
	t.Helper()
	bodyBytes, err := io.ReadAll(response.Body)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(bodyBytes, &decoded))
	return decoded
}

func TestVersionEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	response, err := server.Test(httptest.NewRequest(http.MethodGet, "/core/version", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, response.StatusCode)

	body := decodeBody(t, response)
	assert.Equal(t, "v0.1", body["version"])
}

func TestAssignEndpoint(t *testing.T) {
	server, entityStore := newTestServer(t)

	response, err := server.Test(jsonRequest(http.MethodPost, "/core/assignments", map[string]string{
		"busRef":         "B1",
		"driverRef":      "D1",
		"routeRef":       "R1",
		"morningStart":   "07:00",
		"afternoonStart": "15:00",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, response.StatusCode)

	route, err := entityStore.Routes().Get(context.Background(), "R1")
	require.NoError(t, err)
	assert.Equal(t, "B1", route.BusRef)
	assert.Equal(t, fleet.RouteStatusActive, route.Status)
}

func TestAssignEndpointConflict(t *testing.T) {
	server, _ := newTestServer(t)

	// D1 already starts R1 at 07:00.
	response, err := server.Test(jsonRequest(http.MethodPost, "/core/assignments", map[string]string{
		"busRef":         "B1",
		"driverRef":      "D1",
		"routeRef":       "R2",
		"morningStart":   "07:00",
		"afternoonStart": "16:00",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, response.StatusCode)

	body := decodeBody(t, response)
	assert.Contains(t, body["error"], "R1")
}

func TestAssignEndpointValidation(t *testing.T) {
	server, _ := newTestServer(t)

	response, err := server.Test(jsonRequest(http.MethodPost, "/core/assignments", map[string]string{
		"driverRef": "D1",
		"routeRef":  "R1",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, response.StatusCode)
}

func TestGetRouteEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	response, err := server.Test(httptest.NewRequest(http.MethodGet, "/core/routes/R1", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, response.StatusCode)

	body := decodeBody(t, response)
	assert.Equal(t, "R1", body["PrimaryIdentifier"])
	assert.NotContains(t, body, "Version", "detailed fields stay out of the basic view")

	response, err = server.Test(httptest.NewRequest(http.MethodGet, "/core/routes/R9", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, response.StatusCode)
}

func TestSimulateEndpoint(t *testing.T) {
	server, entityStore := newTestServer(t)

	response, err := server.Test(jsonRequest(http.MethodPost, "/core/routes/R1/simulate", map[string]string{
		"weather":           "CLEAR",
		"trafficConditions": "LIGHT",
		"driverExperience":  "EXPERT",
		"busType":           "STANDARD",
		"timeOfDay":         "EARLY_MORNING",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, response.StatusCode)

	body := decodeBody(t, response)
	assert.Equal(t, "LOW", body["RiskLevel"])
	assert.Equal(t, 1, entityStore.RouteLogCount(), "the run should be recorded in the audit trail")

	response, err = server.Test(jsonRequest(http.MethodPost, "/core/routes/R1/simulate", map[string]string{
		"weather": "DRIZZLE",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, response.StatusCode)
}

func TestReplaceStudentsEndpoint(t *testing.T) {
	server, entityStore := newTestServer(t)

	response, err := server.Test(jsonRequest(http.MethodPut, "/core/routes/R1/students", []map[string]any{
		{"studentRef": "student-1", "stopIndex": 0, "studentName": "Ada"},
		{"studentRef": "student-2", "stopIndex": 1, "studentName": "Ben"},
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, response.StatusCode)

	route, err := entityStore.Routes().Get(context.Background(), "R1")
	require.NoError(t, err)
	assert.Equal(t, 2, route.StudentCount())

	response, err = server.Test(jsonRequest(http.MethodPut, "/core/routes/R1/students", []map[string]any{
		{"studentRef": "student-1", "stopIndex": 7},
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, response.StatusCode)
}

func TestSafetyScoreEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	response, err := server.Test(httptest.NewRequest(http.MethodGet, "/core/safety-score", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, response.StatusCode)

	body := decodeBody(t, response)
	assert.Contains(t, body, "Total")
	assert.Contains(t, body, "Breakdown")
}

func TestIntegrityEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	response, err := server.Test(httptest.NewRequest(http.MethodGet, "/core/integrity", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, response.StatusCode)

	bodyBytes, err := io.ReadAll(response.Body)
	require.NoError(t, err)

	var findings []any
	require.NoError(t, json.Unmarshal(bodyBytes, &findings))
	assert.Empty(t, findings)
}
