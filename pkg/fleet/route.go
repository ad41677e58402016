package fleet

import "time"

type RouteStatus string

const (
	RouteStatusActive   RouteStatus = "ACTIVE"
	RouteStatusInactive RouteStatus = "INACTIVE"
)

type Route struct {
	PrimaryIdentifier string `groups:"basic"`

	CreationDateTime     time.Time `groups:"detailed"`
	ModificationDateTime time.Time `groups:"detailed"`
	Version              int64     `groups:"detailed"`

	Name      string `groups:"basic"`
	SchoolRef string `groups:"basic"`

	Stops []Stop `groups:"basic"`

	Schedule ScheduleWindow `groups:"basic"`

	BusRef    string `groups:"basic"`
	DriverRef string `groups:"basic"`

	Status         RouteStatus `groups:"basic"`
	IsSpecialEvent bool        `groups:"basic"`
}

// StudentCount is the number of student assignments across every stop.
func (r *Route) StudentCount() int {
	count := 0
	for _, stop := range r.Stops {
		count += len(stop.StudentRefs)
	}
	return count
}

// ReindexStops rewrites stop order values into a contiguous 0-based sequence,
// preserving the current relative order.
func (r *Route) ReindexStops() {
	for index := range r.Stops {
		r.Stops[index].Order = index
	}
}
