package assignment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/schoolfleet/schoolfleet/pkg/fleet"
	"github.com/schoolfleet/schoolfleet/pkg/store"
)

// Step is one forward mutation of the multi-record sequence paired with the
// action that undoes it.
type Step struct {
	Name       string
	Forward    func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Saga executes steps in order against a durable log. On a forward failure
// the compensations of the already-completed steps run in reverse, so a lost
// race or store outage mid-sequence does not leave half-applied triad links.
type Saga struct {
	Name  string
	Steps []Step

	BusRef    string
	DriverRef string
	RouteRef  string

	sagaLogs store.SagaLogRepository
}

func NewSaga(name string, sagaLogs store.SagaLogRepository) *Saga {
	return &Saga{
		Name:     name,
		sagaLogs: sagaLogs,
	}
}

func (s *Saga) AddStep(step Step) {
	s.Steps = append(s.Steps, step)
}

func (s *Saga) Execute(ctx context.Context) error {
	sagaLog := &fleet.SagaLog{
		PrimaryIdentifier: uuid.NewString(),
		Name:              s.Name,
		State:             fleet.SagaStateRunning,
		BusRef:            s.BusRef,
		DriverRef:         s.DriverRef,
		RouteRef:          s.RouteRef,
	}

	// The log is what makes a crashed sequence discoverable, so refusing to
	// start without it is the safer failure.
	if err := s.sagaLogs.Insert(ctx, sagaLog); err != nil {
		return &fleet.ExternalServiceError{Operation: "start saga " + s.Name, Err: err}
	}

	var completed []Step
	for _, step := range s.Steps {
		if err := step.Forward(ctx); err != nil {
			s.compensate(ctx, sagaLog, completed, err)
			return err
		}

		completed = append(completed, step)
		sagaLog.CompletedSteps = append(sagaLog.CompletedSteps, step.Name)
		if err := s.sagaLogs.Update(ctx, sagaLog); err != nil {
			log.Warn().Err(err).Str("saga", s.Name).Msg("Failed to update saga log")
		}
	}

	sagaLog.State = fleet.SagaStateCompleted
	if err := s.sagaLogs.Update(ctx, sagaLog); err != nil {
		log.Warn().Err(err).Str("saga", s.Name).Msg("Failed to close saga log")
	}

	return nil
}

func (s *Saga) compensate(ctx context.Context, sagaLog *fleet.SagaLog, completed []Step, cause error) {
	sagaLog.Error = cause.Error()

	compensated := true
	for index := len(completed) - 1; index >= 0; index-- {
		step := completed[index]
		if step.Compensate == nil {
			continue
		}

		if err := step.Compensate(ctx); err != nil {
			compensated = false
			log.Error().Err(err).
				Str("saga", s.Name).
				Str("step", step.Name).
				Msg("Saga compensation failed")
		}
	}

	if compensated {
		sagaLog.State = fleet.SagaStateCompensated
	} else {
		sagaLog.State = fleet.SagaStateFailed
	}

	if err := s.sagaLogs.Update(ctx, sagaLog); err != nil {
		log.Warn().Err(err).Str("saga", s.Name).Msg("Failed to update saga log after compensation")
	}
}

// Recover marks sagas left RUNNING by a crashed process as failed so they
// stop looking in-flight. The triad state they may have damaged is surfaced
// by the reconciliation pass; the remedy is re-running the original
// operation, which is idempotent with respect to final state.
func Recover(ctx context.Context, sagaLogs store.SagaLogRepository) ([]fleet.SagaLog, error) {
	dangling, err := sagaLogs.FindRunning(ctx)
	if err != nil {
		return nil, err
	}

	for index := range dangling {
		dangling[index].State = fleet.SagaStateFailed
		if dangling[index].Error == "" {
			dangling[index].Error = "saga interrupted before completion"
		}

		if err := sagaLogs.Update(ctx, &dangling[index]); err != nil {
			return nil, fmt.Errorf("marking saga %s failed: %w", dangling[index].PrimaryIdentifier, err)
		}

		log.Warn().
			Str("saga", dangling[index].Name).
			Str("route", dangling[index].RouteRef).
			Strs("completedSteps", dangling[index].CompletedSteps).
			Msg("Recovered dangling saga, re-run the assignment to restore the triad")
	}

	return dangling, nil
}
