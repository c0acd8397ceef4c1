package matching

import (
	"math"

	"carpool/internal/models"
	"carpool/internal/utils"
)

// SearchProfile is a subscriber's current search criteria. Preferences
// is keyed by wire flag name so riders can search with any subset of
// the ride preference flags.
type SearchProfile struct {
	Pickup      models.Location `json:"pickup_location"`
	Dropoff     models.Location `json:"dropoff_location"`
	Preferences map[string]bool `json:"preferences"`
}

// MatchPercentage scores a ride against a search profile in [0,100].
// Each preference flag agreement counts once; pickup and dropoff
// proximity each count as one additional virtual criterion.
func MatchPercentage(profile *SearchProfile, ride *models.Ride) int {
	totalCriteria := len(profile.Preferences) + 2
	score := 0

	flags := ride.RidePreferences.Flags()
	for key, want := range profile.Preferences {
		if got, ok := flags[key]; ok && got == want {
			score++
		}
	}

	if utils.IsWithinRadius(profile.Pickup, ride.PickupLocation, utils.ProximityThresholdKM) {
		score++
	}
	if utils.IsWithinRadius(profile.Dropoff, ride.DropoffLocation, utils.ProximityThresholdKM) {
		score++
	}

	return int(math.Round(float64(score) / float64(totalCriteria) * 100))
}
