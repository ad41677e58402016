package fleet

import "time"

// RouteLog is the audit record written for every simulation run.
type RouteLog struct {
	PrimaryIdentifier string `groups:"basic"`

	CreationDateTime time.Time `groups:"basic"`

	RouteRef string `groups:"basic"`

	Conditions map[string]string  `groups:"basic"`
	Results    map[string]float64 `groups:"basic"`
}
