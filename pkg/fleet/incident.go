package fleet

import "time"

type IncidentSeverity string

const (
	IncidentSeverityLow    IncidentSeverity = "LOW"
	IncidentSeverityMedium IncidentSeverity = "MEDIUM"
	IncidentSeverityHigh   IncidentSeverity = "HIGH"
)

type IncidentType string

const (
	IncidentTypeMechanical IncidentType = "MECHANICAL"
	IncidentTypeWeather    IncidentType = "WEATHER"
	IncidentTypeTraffic    IncidentType = "TRAFFIC"
	IncidentTypeViolation  IncidentType = "VIOLATION"
	IncidentTypeAccident   IncidentType = "ACCIDENT"
)

// Incident records are written by the incident-log screens (out of scope) and
// read by the scoring aggregator.
type Incident struct {
	PrimaryIdentifier string `groups:"basic"`

	CreationDateTime time.Time `groups:"basic"`

	SchoolRef string `groups:"basic"`
	BusRef    string `groups:"basic"`
	DriverRef string `groups:"basic"`
	RouteRef  string `groups:"basic"`

	Severity    IncidentSeverity `groups:"basic"`
	Type        IncidentType     `groups:"basic"`
	Description string           `groups:"basic"`
}
