// Package simulation scores a route under hypothetical operating conditions:
// estimated duration, risk level, reliability, per-factor impacts and textual
// recommendations.
package simulation

import (
	"context"
	"math"

	"github.com/rs/zerolog/log"
	"github.com/schoolfleet/schoolfleet/pkg/fleet"
	"github.com/schoolfleet/schoolfleet/pkg/optimizer"
)

type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "LOW"
	RiskLevelMedium RiskLevel = "MEDIUM"
	RiskLevelHigh   RiskLevel = "HIGH"
)

type Result struct {
	RouteRef string `groups:"basic"`

	Conditions Conditions `groups:"basic"`

	BaselineDurationMinutes  float64 `groups:"basic"`
	EstimatedDurationMinutes int     `groups:"basic"`

	RiskLevel        RiskLevel `groups:"basic"`
	ReliabilityScore int       `groups:"basic"`

	Impacts Impacts `groups:"basic"`

	Recommendations []string `groups:"basic"`
}

// Impacts are display-only 0-100 factor scores; they do not feed back into
// the duration estimate.
type Impacts struct {
	Weather          int `groups:"basic"`
	Traffic          int `groups:"basic"`
	DriverEfficiency int `groups:"basic"`
	TimeOfDay        int `groups:"basic"`
	Load             int `groups:"basic"`
}

// AuditSink records a completed simulation run for later analytics.
type AuditSink interface {
	RecordSimulation(ctx context.Context, routeLog *fleet.RouteLog) error
}

type Simulator struct {
	audit AuditSink
}

func NewSimulator(audit AuditSink) *Simulator {
	return &Simulator{audit: audit}
}

// Simulate runs the condition model over the route and records the run in the
// audit trail. An audit failure never fails the simulation itself.
func (s *Simulator) Simulate(ctx context.Context, route *fleet.Route, conditions Conditions) (*Result, error) {
	if err := conditions.Validate(); err != nil {
		return nil, err
	}

	result := Run(route, conditions)

	if s.audit != nil {
		if err := s.audit.RecordSimulation(ctx, result.auditRecord()); err != nil {
			log.Warn().Err(err).Str("route", route.PrimaryIdentifier).Msg("Failed to record simulation run")
		}
	}

	return result, nil
}

// Run is the pure condition model: the same route stops and conditions always
// produce the same result.
func Run(route *fleet.Route, conditions Conditions) *Result {
	studentCount := route.StudentCount()
	baseline := optimizer.TotalDurationMinutes(route.Stops)

	estimated := baseline *
		conditions.Weather.durationMultiplier() *
		conditions.TrafficConditions.durationMultiplier() *
		conditions.DriverExperience.durationMultiplier() *
		conditions.TimeOfDay.durationMultiplier() *
		busLoadFactor(conditions.BusType, studentCount)

	return &Result{
		RouteRef:   route.PrimaryIdentifier,
		Conditions: conditions,

		BaselineDurationMinutes:  baseline,
		EstimatedDurationMinutes: int(math.Round(estimated)),

		RiskLevel:        riskLevel(conditions),
		ReliabilityScore: reliabilityScore(conditions, studentCount),

		Impacts: Impacts{
			Weather:          conditions.Weather.impactScore(),
			Traffic:          conditions.TrafficConditions.impactScore(),
			DriverEfficiency: conditions.DriverExperience.efficiencyScore(),
			TimeOfDay:        conditions.TimeOfDay.impactScore(),
			Load:             loadImpactScore(conditions.BusType, studentCount),
		},

		Recommendations: recommendations(conditions, studentCount),
	}
}

// busLoadFactor combines the bus type's base speed multiplier with a load
// penalty of up to 20% at full capacity.
func busLoadFactor(busType BusType, studentCount int) float64 {
	loadRatio := float64(studentCount) / float64(busType.NominalCapacity())
	return busType.baseSpeedMultiplier() * (1 + math.Min(loadRatio, 1)*0.2)
}

func riskLevel(conditions Conditions) RiskLevel {
	score := conditions.Weather.riskPoints() +
		conditions.TrafficConditions.riskPoints() +
		conditions.DriverExperience.riskPoints()

	switch {
	case score <= 2:
		return RiskLevelLow
	case score <= 5:
		return RiskLevelMedium
	default:
		return RiskLevelHigh
	}
}

func reliabilityScore(conditions Conditions, studentCount int) int {
	score := 100
	score -= conditions.Weather.reliabilityDeduction()
	score -= conditions.TrafficConditions.reliabilityDeduction()
	score += conditions.DriverExperience.reliabilityBonus()
	score -= studentCount / 10

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

func loadImpactScore(busType BusType, studentCount int) int {
	loadPercentage := float64(studentCount) / float64(busType.NominalCapacity()) * 100

	switch {
	case loadPercentage <= 50:
		return 100
	case loadPercentage <= 75:
		return 90
	case loadPercentage <= 90:
		return 80
	case loadPercentage <= 100:
		return 70
	default:
		return 60
	}
}

// Rules are evaluated independently and concatenated in fixed order: weather,
// traffic, driver experience, load.
func recommendations(conditions Conditions, studentCount int) []string {
	var advice []string

	if conditions.Weather == WeatherSnow || conditions.Weather == WeatherStorm {
		advice = append(advice, "Severe weather expected, consider rescheduling the route")
	}
	if conditions.Weather == WeatherFog {
		advice = append(advice, "Reduced visibility, instruct the driver to reduce speed")
	}

	if conditions.TrafficConditions == TrafficHeavy || conditions.TrafficConditions == TrafficSevere {
		advice = append(advice, "Heavy traffic expected, consider an alternate route")
	}

	if conditions.DriverExperience == ExperienceNovice {
		advice = append(advice, "Novice driver assigned, consider reassigning an experienced driver for these conditions")
	}

	if float64(studentCount) > float64(conditions.BusType.NominalCapacity())*0.9 {
		advice = append(advice, "Student load is near capacity, consider splitting the route or using a larger bus")
	}

	return advice
}

func (r *Result) auditRecord() *fleet.RouteLog {
	return &fleet.RouteLog{
		RouteRef: r.RouteRef,
		Conditions: map[string]string{
			"weather":           string(r.Conditions.Weather),
			"trafficConditions": string(r.Conditions.TrafficConditions),
			"driverExperience":  string(r.Conditions.DriverExperience),
			"busType":           string(r.Conditions.BusType),
			"timeOfDay":         string(r.Conditions.TimeOfDay),
		},
		Results: map[string]float64{
			"baselineDurationMinutes":  r.BaselineDurationMinutes,
			"estimatedDurationMinutes": float64(r.EstimatedDurationMinutes),
			"reliabilityScore":         float64(r.ReliabilityScore),
			"riskScore":                float64(riskScoreValue(r.RiskLevel)),
		},
	}
}

func riskScoreValue(level RiskLevel) int {
	switch level {
	case RiskLevelLow:
		return 0
	case RiskLevelMedium:
		return 1
	default:
		return 2
	}
}
