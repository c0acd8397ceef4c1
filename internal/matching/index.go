package matching

import (
	"sync"

	"carpool/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActiveRideIndex is the process-wide cache of rides currently on
// offer. It is populated once at startup and thereafter mutated only by
// the ride lifecycle's post-commit hooks, so its staleness window is
// bounded by the hook running synchronously after each commit.
type ActiveRideIndex struct {
	mu    sync.RWMutex
	rides map[primitive.ObjectID]*models.Ride
}

func NewActiveRideIndex() *ActiveRideIndex {
	return &ActiveRideIndex{
		rides: make(map[primitive.ObjectID]*models.Ride),
	}
}

// Load replaces the index contents with the given rides.
func (idx *ActiveRideIndex) Load(rides []*models.Ride) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.rides = make(map[primitive.ObjectID]*models.Ride, len(rides))
	for _, ride := range rides {
		idx.rides[ride.ID] = ride
	}
}

func (idx *ActiveRideIndex) Add(ride *models.Ride) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.rides[ride.ID] = ride
}

// Update replaces the entry by id. It is a no-op for rides the index
// does not hold.
func (idx *ActiveRideIndex) Update(ride *models.Ride) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if _, ok := idx.rides[ride.ID]; ok {
		idx.rides[ride.ID] = ride
	}
}

func (idx *ActiveRideIndex) Remove(rideID primitive.ObjectID) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.rides, rideID)
}

func (idx *ActiveRideIndex) Get(rideID primitive.ObjectID) (*models.Ride, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	ride, ok := idx.rides[rideID]
	return ride, ok
}

// Snapshot returns a copied slice so callers can rank without holding
// the index lock for the duration of a fan-out.
func (idx *ActiveRideIndex) Snapshot() []*models.Ride {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	rides := make([]*models.Ride, 0, len(idx.rides))
	for _, ride := range idx.rides {
		rides = append(rides, ride)
	}
	return rides
}

func (idx *ActiveRideIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.rides)
}
