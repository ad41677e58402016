// Package optimizer orders a route's stops and estimates per-stop arrival and
// departure times. Ordering is a load heuristic (busiest stops first), not a
// geographic optimisation.
package optimizer

import (
	"sort"
	"time"

	"github.com/schoolfleet/schoolfleet/pkg/fleet"
)

// Travel model: 30mph average speed with a fixed dwell at every stop.
const MilesPerMinute = 0.5
const StopDwellMinutes = 3

type OrderedStop struct {
	fleet.Stop `groups:"basic"`

	OptimizedOrder int `groups:"basic"`

	EstimatedArrival   time.Time `groups:"basic"`
	EstimatedDeparture time.Time `groups:"basic"`
}

// Optimize returns the stops ordered by descending assigned-student count,
// ties keeping their original relative order, with cumulative travel-time
// estimates starting from routeStart.
func Optimize(stops []fleet.Stop, routeStart time.Time) []OrderedStop {
	if len(stops) == 0 {
		return []OrderedStop{}
	}

	ordered := make([]OrderedStop, 0, len(stops))
	for _, stop := range stops {
		ordered = append(ordered, OrderedStop{Stop: stop})
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i].StudentRefs) > len(ordered[j].StudentRefs)
	})

	currentTime := routeStart
	for index := range ordered {
		ordered[index].OptimizedOrder = index

		if index > 0 {
			travelMinutes := travelMinutesBetween(ordered[index-1].Stop, ordered[index].Stop)
			currentTime = currentTime.Add(time.Duration(travelMinutes * float64(time.Minute)))
		}

		ordered[index].EstimatedArrival = currentTime
		currentTime = currentTime.Add(StopDwellMinutes * time.Minute)
		ordered[index].EstimatedDeparture = currentTime
	}

	return ordered
}

// TotalDurationMinutes is the baseline running time over the stop sequence as
// given: consecutive-pair travel plus one dwell per segment. This is the
// figure the simulator applies its condition multipliers to.
func TotalDurationMinutes(stops []fleet.Stop) float64 {
	duration := 0.0
	for index := 1; index < len(stops); index++ {
		duration += travelMinutesBetween(stops[index-1], stops[index]) + StopDwellMinutes
	}
	return duration
}

// A stop without a geolocation contributes zero travel time to its segment
// rather than failing the whole route.
func travelMinutesBetween(from fleet.Stop, to fleet.Stop) float64 {
	if from.Location == nil || to.Location == nil {
		return 0
	}
	return from.Location.DistanceMiles(to.Location) / MilesPerMinute
}
