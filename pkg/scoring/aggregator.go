// Package scoring rolls incident history, maintenance compliance, driver
// compliance and route safety up into one composite 0-100 safety score.
package scoring

import (
	"context"
	"math"
	"time"

	"github.com/schoolfleet/schoolfleet/pkg/fleet"
	"github.com/schoolfleet/schoolfleet/pkg/store"
	"github.com/sourcegraph/conc/pool"
)

const incidentWindow = 30 * 24 * time.Hour

// Component bases. The four together sum to the perfect score of 100.
const (
	incidentBase         = 40.0
	maintenanceBase      = 20.0
	driverComplianceBase = 20.0
	routeSafetyBase      = 20.0
)

type Breakdown struct {
	Incidents        float64 `groups:"basic"`
	Maintenance      float64 `groups:"basic"`
	DriverCompliance float64 `groups:"basic"`
	RouteSafety      float64 `groups:"basic"`
}

type Score struct {
	Total int `groups:"basic"`

	Breakdown Breakdown `groups:"basic"`

	GeneratedAt time.Time `groups:"basic"`
}

type Aggregator struct {
	store store.Store
	cache *ScoreCache

	now func() time.Time
}

func NewAggregator(entityStore store.Store) *Aggregator {
	return &Aggregator{
		store: entityStore,
		now:   time.Now,
	}
}

func (a *Aggregator) WithCache(scoreCache *ScoreCache) *Aggregator {
	a.cache = scoreCache
	return a
}

// CompositeScore returns the current safety score, serving a cached rollup
// when one is fresh enough and recomputing otherwise.
func (a *Aggregator) CompositeScore(ctx context.Context) (*Score, error) {
	if a.cache != nil {
		if cached := a.cache.Get(ctx); cached != nil {
			return cached, nil
		}
	}

	score, err := a.Compute(ctx)
	if err != nil {
		return nil, err
	}

	if a.cache != nil {
		a.cache.Set(ctx, score)
	}

	return score, nil
}

type componentResult struct {
	value float64
	err   error
}

// Compute fans the four component rollups out over the store and clamps their
// sum into [0, 100]. Each component is also clamped on its own so one bad
// dimension cannot eat the others' contribution.
func (a *Aggregator) Compute(ctx context.Context) (*Score, error) {
	resultsPool := pool.NewWithResults[componentResult]()

	components := []func(context.Context) (float64, error){
		a.incidentComponent,
		a.maintenanceComponent,
		a.driverComplianceComponent,
		a.routeSafetyComponent,
	}

	for _, component := range components {
		component := component
		resultsPool.Go(func() componentResult {
			value, err := component(ctx)
			return componentResult{value: value, err: err}
		})
	}

	results := resultsPool.Wait()
	for _, result := range results {
		if result.err != nil {
			return nil, result.err
		}
	}

	breakdown := Breakdown{
		Incidents:        results[0].value,
		Maintenance:      results[1].value,
		DriverCompliance: results[2].value,
		RouteSafety:      results[3].value,
	}

	total := breakdown.Incidents + breakdown.Maintenance + breakdown.DriverCompliance + breakdown.RouteSafety

	return &Score{
		Total:       int(math.Round(clamp(total, 0, 100))),
		Breakdown:   breakdown,
		GeneratedAt: a.now(),
	}, nil
}

func (a *Aggregator) incidentComponent(ctx context.Context) (float64, error) {
	incidents, err := a.store.Incidents().FindSince(ctx, a.now().Add(-incidentWindow))
	if err != nil {
		return 0, err
	}

	score := incidentBase
	for _, incident := range incidents {
		score -= severityPoints(incident.Severity) * typeMultiplier(incident.Type)
	}

	return clamp(score, 0, incidentBase), nil
}

func (a *Aggregator) maintenanceComponent(ctx context.Context) (float64, error) {
	buses, err := a.store.Buses().All(ctx)
	if err != nil {
		return 0, err
	}

	now := a.now()
	score := maintenanceBase
	for _, bus := range buses {
		if !bus.NextMaintenanceDate.IsZero() {
			if bus.NextMaintenanceDate.Before(now) {
				score -= 5
			} else if bus.NextMaintenanceDate.Before(now.Add(7 * 24 * time.Hour)) {
				score -= 2
			}
		}
		if !bus.LastMaintenanceDate.IsZero() && now.Sub(bus.LastMaintenanceDate) <= 90*24*time.Hour {
			score += 1
		}
	}

	return clamp(score, 0, maintenanceBase), nil
}

func (a *Aggregator) driverComplianceComponent(ctx context.Context) (float64, error) {
	drivers, err := a.store.Drivers().All(ctx)
	if err != nil {
		return 0, err
	}

	now := a.now()
	score := driverComplianceBase
	for _, driver := range drivers {
		if driver.LicenseNumber == "" || driver.Status != fleet.DriverStatusApproved {
			score -= 5
		}
		if driver.TrainingCompleted {
			score += 2
		}
		// Rest-period rule: over 8 hours worked needs 8 hours off the clock.
		if driver.HoursWorked > 8 && now.Sub(driver.LastRestPeriodEnds) < 8*time.Hour {
			score -= 3
		}
	}

	return clamp(score, 0, driverComplianceBase), nil
}

func (a *Aggregator) routeSafetyComponent(ctx context.Context) (float64, error) {
	routes, err := a.store.Routes().All(ctx)
	if err != nil {
		return 0, err
	}
	buses, err := a.store.Buses().All(ctx)
	if err != nil {
		return 0, err
	}

	busCapacities := map[string]int{}
	for _, bus := range buses {
		busCapacities[bus.PrimaryIdentifier] = bus.Capacity
	}

	score := routeSafetyBase
	for _, route := range routes {
		if capacity, ok := busCapacities[route.BusRef]; ok && route.StudentCount() > capacity {
			score -= 3
		}
		if len(route.Stops) == 0 {
			score -= 2
		}
		if route.Schedule.MorningStart == "" || route.Schedule.AfternoonStart == "" {
			score -= 1
		}
	}

	return clamp(score, 0, routeSafetyBase), nil
}

func severityPoints(severity fleet.IncidentSeverity) float64 {
	switch severity {
	case fleet.IncidentSeverityLow:
		return 2
	case fleet.IncidentSeverityMedium:
		return 5
	case fleet.IncidentSeverityHigh:
		return 10
	}
	return 0
}

func typeMultiplier(incidentType fleet.IncidentType) float64 {
	switch incidentType {
	case fleet.IncidentTypeMechanical:
		return 1.0
	case fleet.IncidentTypeWeather:
		return 0.7
	case fleet.IncidentTypeTraffic:
		return 0.8
	case fleet.IncidentTypeViolation:
		return 1.2
	case fleet.IncidentTypeAccident:
		return 1.5
	}
	return 1.0
}

func clamp(value float64, low float64, high float64) float64 {
	return math.Min(math.Max(value, low), high)
}
