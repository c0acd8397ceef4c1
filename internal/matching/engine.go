package matching

import (
	"sort"

	"carpool/internal/models"
	"carpool/internal/utils"
)

// RankedRide is the per-subscriber view of a candidate ride: the ride
// itself annotated with its score and the distances to the searcher's
// endpoints.
type RankedRide struct {
	*models.Ride
	MatchPercentage int     `json:"match_percentage"`
	PickupDistance  float64 `json:"pickup_distance"`
	DropoffDistance float64 `json:"dropoff_distance"`
}

// Rank scores and orders candidate rides for one search profile.
// Candidates whose pickup or dropoff lies beyond the cutoff distance are
// excluded. The sort on match percentage is stable, so ties keep their
// input order; that is the ranking contract, not an accident.
// Rank never mutates its inputs and is safe to call concurrently
// against a shared snapshot.
func Rank(profile *SearchProfile, candidates []*models.Ride) []RankedRide {
	ranked := make([]RankedRide, 0, len(candidates))

	for _, ride := range candidates {
		pickupDistance := utils.CalculateDistance(profile.Pickup, ride.PickupLocation)
		dropoffDistance := utils.CalculateDistance(profile.Dropoff, ride.DropoffLocation)

		if pickupDistance > utils.MaxPickupDistanceKM || dropoffDistance > utils.MaxDropoffDistanceKM {
			continue
		}

		ranked = append(ranked, RankedRide{
			Ride:            ride,
			MatchPercentage: MatchPercentage(profile, ride),
			PickupDistance:  pickupDistance,
			DropoffDistance: dropoffDistance,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].MatchPercentage > ranked[j].MatchPercentage
	})

	return ranked
}
