package fleet

import "time"

type DriverStatus string

const (
	DriverStatusPending  DriverStatus = "PENDING"
	DriverStatusApproved DriverStatus = "APPROVED"
	DriverStatusRejected DriverStatus = "REJECTED"
)

type Driver struct {
	PrimaryIdentifier string `groups:"basic"`

	CreationDateTime     time.Time `groups:"detailed"`
	ModificationDateTime time.Time `groups:"detailed"`
	Version              int64     `groups:"detailed"`

	Name          string       `groups:"basic"`
	LicenseNumber string       `groups:"basic"`
	Status        DriverStatus `groups:"basic"`

	SchoolRefs []string `groups:"basic"`

	// Inverse of Bus.DriverRef. Invariant: if set, the referenced bus points
	// back at this driver.
	AssignedBusRef string `groups:"basic"`

	TrainingCompleted  bool      `groups:"detailed"`
	HoursWorked        float64   `groups:"detailed"`
	LastRestPeriodEnds time.Time `groups:"detailed"`
}
