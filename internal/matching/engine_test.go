package matching

import (
	"reflect"
	"testing"

	"carpool/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRank_ExcludesRidesBeyondPickupCutoff(t *testing.T) {
	origin := models.Location{Latitude: 0, Longitude: 0}
	profile := &SearchProfile{Pickup: origin, Dropoff: origin}

	// 0.2 degrees of longitude at the equator is roughly 22 km.
	far := testRide(models.Location{Latitude: 0, Longitude: 0.2}, origin, models.RidePreferences{})
	near := testRide(origin, origin, models.RidePreferences{})

	ranked := Rank(profile, []*models.Ride{far, near})

	if len(ranked) != 1 {
		t.Fatalf("expected 1 ranked ride, got %d", len(ranked))
	}
	if ranked[0].Ride != near {
		t.Fatalf("expected the nearby ride to survive the cutoff")
	}
}

func TestRank_ExcludesRidesBeyondDropoffCutoff(t *testing.T) {
	origin := models.Location{Latitude: 0, Longitude: 0}
	profile := &SearchProfile{Pickup: origin, Dropoff: origin}

	ride := testRide(origin, models.Location{Latitude: 0.2, Longitude: 0}, models.RidePreferences{})

	if ranked := Rank(profile, []*models.Ride{ride}); len(ranked) != 0 {
		t.Fatalf("expected no ranked rides, got %d", len(ranked))
	}
}

func TestRank_OrdersByMatchPercentageDescending(t *testing.T) {
	origin := models.Location{Latitude: 0, Longitude: 0}
	profile := &SearchProfile{
		Pickup:      origin,
		Dropoff:     origin,
		Preferences: map[string]bool{"music": true},
	}

	worse := testRide(origin, origin, models.RidePreferences{})
	better := testRide(origin, origin, models.RidePreferences{Music: true})

	ranked := Rank(profile, []*models.Ride{worse, better})

	if len(ranked) != 2 {
		t.Fatalf("expected 2 ranked rides, got %d", len(ranked))
	}
	if ranked[0].Ride != better || ranked[1].Ride != worse {
		t.Fatalf("expected the better match first, got %d%% then %d%%",
			ranked[0].MatchPercentage, ranked[1].MatchPercentage)
	}
}

func TestRank_TiesKeepInputOrder(t *testing.T) {
	origin := models.Location{Latitude: 0, Longitude: 0}
	profile := &SearchProfile{Pickup: origin, Dropoff: origin}

	first := testRide(origin, origin, models.RidePreferences{})
	first.ID = primitive.NewObjectID()
	second := testRide(origin, origin, models.RidePreferences{})
	second.ID = primitive.NewObjectID()

	ranked := Rank(profile, []*models.Ride{first, second})

	if ranked[0].Ride.ID != first.ID || ranked[1].Ride.ID != second.ID {
		t.Fatalf("tied rides should keep their input order")
	}
}

func TestRank_DoesNotMutateCandidates(t *testing.T) {
	origin := models.Location{Latitude: 0, Longitude: 0}
	profile := &SearchProfile{Pickup: origin, Dropoff: origin}

	ride := testRide(origin, origin, models.RidePreferences{Music: true})
	before := *ride

	Rank(profile, []*models.Ride{ride})

	if !reflect.DeepEqual(*ride, before) {
		t.Fatalf("Rank must not mutate its candidates")
	}
}
