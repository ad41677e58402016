package fleet

import "time"

// StudentRouteAssignment binds a student to a stop on a route. The student
// name and grade are denormalised for list views.
type StudentRouteAssignment struct {
	PrimaryIdentifier string `groups:"basic"`

	CreationDateTime     time.Time `groups:"detailed"`
	ModificationDateTime time.Time `groups:"detailed"`

	StudentRef string `groups:"basic"`
	RouteRef   string `groups:"basic"`
	StopIndex  int    `groups:"basic"`

	StudentName  string `groups:"basic"`
	StudentGrade string `groups:"basic"`
}
