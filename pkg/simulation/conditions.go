package simulation

import (
	"fmt"

	"github.com/schoolfleet/schoolfleet/pkg/fleet"
)

// Operating conditions are closed enums so an unrecognised value is rejected
// at parse time instead of silently defaulting a multiplier.

type Weather string

const (
	WeatherClear Weather = "CLEAR"
	WeatherRain  Weather = "RAIN"
	WeatherSnow  Weather = "SNOW"
	WeatherFog   Weather = "FOG"
	WeatherStorm Weather = "STORM"
)

type TrafficConditions string

const (
	TrafficLight  TrafficConditions = "LIGHT"
	TrafficNormal TrafficConditions = "NORMAL"
	TrafficHeavy  TrafficConditions = "HEAVY"
	TrafficSevere TrafficConditions = "SEVERE"
)

type DriverExperience string

const (
	ExperienceNovice       DriverExperience = "NOVICE"
	ExperienceIntermediate DriverExperience = "INTERMEDIATE"
	ExperienceExperienced  DriverExperience = "EXPERIENCED"
	ExperienceExpert       DriverExperience = "EXPERT"
)

type BusType string

const (
	BusTypeStandard     BusType = "STANDARD"
	BusTypeMini         BusType = "MINI"
	BusTypeLarge        BusType = "LARGE"
	BusTypeSpecialNeeds BusType = "SPECIAL_NEEDS"
)

type TimeOfDay string

const (
	TimeEarlyMorning TimeOfDay = "EARLY_MORNING"
	TimeMorning      TimeOfDay = "MORNING"
	TimeAfternoon    TimeOfDay = "AFTERNOON"
	TimeEvening      TimeOfDay = "EVENING"
)

type Conditions struct {
	Weather           Weather           `groups:"basic"`
	TrafficConditions TrafficConditions `groups:"basic"`
	DriverExperience  DriverExperience  `groups:"basic"`
	BusType           BusType           `groups:"basic"`
	TimeOfDay         TimeOfDay         `groups:"basic"`
}

func (c Conditions) Validate() error {
	if !c.Weather.known() {
		return fleet.NewValidationError(fmt.Sprintf("unknown weather condition %q", string(c.Weather)))
	}
	if !c.TrafficConditions.known() {
		return fleet.NewValidationError(fmt.Sprintf("unknown traffic condition %q", string(c.TrafficConditions)))
	}
	if !c.DriverExperience.known() {
		return fleet.NewValidationError(fmt.Sprintf("unknown driver experience level %q", string(c.DriverExperience)))
	}
	if !c.BusType.known() {
		return fleet.NewValidationError(fmt.Sprintf("unknown bus type %q", string(c.BusType)))
	}
	if !c.TimeOfDay.known() {
		return fleet.NewValidationError(fmt.Sprintf("unknown time of day %q", string(c.TimeOfDay)))
	}
	return nil
}

func (w Weather) known() bool {
	switch w {
	case WeatherClear, WeatherRain, WeatherSnow, WeatherFog, WeatherStorm:
		return true
	}
	return false
}

func (w Weather) durationMultiplier() float64 {
	switch w {
	case WeatherClear:
		return 1.0
	case WeatherRain:
		return 1.3
	case WeatherSnow:
		return 1.6
	case WeatherFog:
		return 1.4
	case WeatherStorm:
		return 1.8
	}
	return 1.0
}

func (w Weather) riskPoints() int {
	switch w {
	case WeatherClear:
		return 0
	case WeatherRain:
		return 2
	case WeatherSnow:
		return 4
	case WeatherFog:
		return 3
	case WeatherStorm:
		return 5
	}
	return 0
}

func (w Weather) reliabilityDeduction() int {
	switch w {
	case WeatherClear:
		return 0
	case WeatherRain:
		return 5
	case WeatherSnow:
		return 15
	case WeatherFog:
		return 10
	case WeatherStorm:
		return 20
	}
	return 0
}

func (w Weather) impactScore() int {
	switch w {
	case WeatherClear:
		return 100
	case WeatherRain:
		return 70
	case WeatherSnow:
		return 40
	case WeatherFog:
		return 60
	case WeatherStorm:
		return 30
	}
	return 0
}

func (t TrafficConditions) known() bool {
	switch t {
	case TrafficLight, TrafficNormal, TrafficHeavy, TrafficSevere:
		return true
	}
	return false
}

func (t TrafficConditions) durationMultiplier() float64 {
	switch t {
	case TrafficLight:
		return 0.8
	case TrafficNormal:
		return 1.0
	case TrafficHeavy:
		return 1.4
	case TrafficSevere:
		return 1.8
	}
	return 1.0
}

func (t TrafficConditions) riskPoints() int {
	switch t {
	case TrafficLight:
		return 0
	case TrafficNormal:
		return 1
	case TrafficHeavy:
		return 3
	case TrafficSevere:
		return 5
	}
	return 0
}

func (t TrafficConditions) reliabilityDeduction() int {
	switch t {
	case TrafficLight:
		return 0
	case TrafficNormal:
		return 5
	case TrafficHeavy:
		return 15
	case TrafficSevere:
		return 25
	}
	return 0
}

func (t TrafficConditions) impactScore() int {
	switch t {
	case TrafficLight:
		return 100
	case TrafficNormal:
		return 80
	case TrafficHeavy:
		return 50
	case TrafficSevere:
		return 30
	}
	return 0
}

func (e DriverExperience) known() bool {
	switch e {
	case ExperienceNovice, ExperienceIntermediate, ExperienceExperienced, ExperienceExpert:
		return true
	}
	return false
}

func (e DriverExperience) durationMultiplier() float64 {
	switch e {
	case ExperienceNovice:
		return 1.2
	case ExperienceIntermediate:
		return 1.1
	case ExperienceExperienced:
		return 1.0
	case ExperienceExpert:
		return 0.9
	}
	return 1.0
}

// riskPoints can go negative, an expert driver mitigates other factors.
func (e DriverExperience) riskPoints() int {
	switch e {
	case ExperienceNovice:
		return 2
	case ExperienceIntermediate:
		return 1
	case ExperienceExperienced:
		return 0
	case ExperienceExpert:
		return -1
	}
	return 0
}

func (e DriverExperience) reliabilityBonus() int {
	switch e {
	case ExperienceNovice:
		return 0
	case ExperienceIntermediate:
		return 5
	case ExperienceExperienced:
		return 10
	case ExperienceExpert:
		return 15
	}
	return 0
}

func (e DriverExperience) efficiencyScore() int {
	switch e {
	case ExperienceNovice:
		return 70
	case ExperienceIntermediate:
		return 85
	case ExperienceExperienced:
		return 95
	case ExperienceExpert:
		return 100
	}
	return 0
}

func (b BusType) known() bool {
	switch b {
	case BusTypeStandard, BusTypeMini, BusTypeLarge, BusTypeSpecialNeeds:
		return true
	}
	return false
}

func (b BusType) NominalCapacity() int {
	switch b {
	case BusTypeStandard:
		return 50
	case BusTypeMini:
		return 25
	case BusTypeLarge:
		return 75
	case BusTypeSpecialNeeds:
		return 30
	}
	return 0
}

func (b BusType) baseSpeedMultiplier() float64 {
	switch b {
	case BusTypeStandard:
		return 1.0
	case BusTypeMini:
		return 0.9
	case BusTypeLarge:
		return 1.2
	case BusTypeSpecialNeeds:
		return 1.3
	}
	return 1.0
}

func (t TimeOfDay) known() bool {
	switch t {
	case TimeEarlyMorning, TimeMorning, TimeAfternoon, TimeEvening:
		return true
	}
	return false
}

func (t TimeOfDay) durationMultiplier() float64 {
	switch t {
	case TimeEarlyMorning:
		return 0.9
	case TimeMorning:
		return 1.2
	case TimeAfternoon:
		return 1.1
	case TimeEvening:
		return 1.0
	}
	return 1.0
}

func (t TimeOfDay) impactScore() int {
	switch t {
	case TimeEarlyMorning:
		return 90
	case TimeMorning:
		return 70
	case TimeAfternoon:
		return 80
	case TimeEvening:
		return 85
	}
	return 0
}
