package fleet

import "time"

type SagaState string

const (
	SagaStateRunning     SagaState = "RUNNING"
	SagaStateCompleted   SagaState = "COMPLETED"
	SagaStateCompensated SagaState = "COMPENSATED"
	SagaStateFailed      SagaState = "FAILED"
)

// SagaLog is the durable record of a multi-document update sequence. A log
// left in RUNNING state marks a sequence interrupted mid-flight; the recover
// pass compensates it.
type SagaLog struct {
	PrimaryIdentifier string

	CreationDateTime     time.Time
	ModificationDateTime time.Time

	Name  string
	State SagaState

	CompletedSteps []string

	BusRef    string
	DriverRef string
	RouteRef  string

	Error string
}
