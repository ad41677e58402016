package fleet

import "time"

type BusStatus string

const (
	BusStatusActive      BusStatus = "ACTIVE"
	BusStatusInactive    BusStatus = "INACTIVE"
	BusStatusMaintenance BusStatus = "MAINTENANCE"
)

type Bus struct {
	PrimaryIdentifier string `groups:"basic"`

	CreationDateTime     time.Time `groups:"detailed"`
	ModificationDateTime time.Time `groups:"detailed"`
	Version              int64     `groups:"detailed"`

	BusNumber string `groups:"basic"`
	Capacity  int    `groups:"basic"`

	DriverRef string `groups:"basic"`

	Status BusStatus `groups:"basic"`

	LastMaintenanceDate time.Time `groups:"detailed"`
	NextMaintenanceDate time.Time `groups:"detailed"`
}
