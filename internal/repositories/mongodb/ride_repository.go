package mongodb

import (
	"context"
	"fmt"
	"time"

	"carpool/internal/models"
	"carpool/internal/repositories/interfaces"
	"carpool/internal/services"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const rideCacheTTL = 5 * time.Minute

type rideRepository struct {
	collection *mongo.Collection
	cache      services.CacheService
}

func NewRideRepository(db *mongo.Database, cache services.CacheService) interfaces.RideRepository {
	return &rideRepository{
		collection: db.Collection("rides"),
		cache:      cache,
	}
}

func (r *rideRepository) Create(ctx context.Context, ride *models.Ride) error {
	ride.ID = primitive.NewObjectID()
	ride.CreatedAt = time.Now()
	ride.UpdatedAt = ride.CreatedAt

	_, err := r.collection.InsertOne(ctx, ride)
	if err != nil {
		return fmt.Errorf("failed to create ride: %w", err)
	}

	// The cache is populated by GetByID after commit, never from
	// inside the transaction: the surrounding session may still abort.
	return nil
}

func (r *rideRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	if ride := r.getRideFromCache(ctx, id.Hex()); ride != nil {
		return ride, nil
	}

	var ride models.Ride
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&ride)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ride: %w", err)
	}

	if ride.Status == models.RideStatusActive {
		r.cacheRide(ctx, &ride)
	}

	return &ride, nil
}

func (r *rideRepository) GetActiveRides(ctx context.Context) ([]*models.Ride, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"status": models.RideStatusActive})
	if err != nil {
		return nil, fmt.Errorf("failed to find active rides: %w", err)
	}
	defer cursor.Close(ctx)

	var rides []*models.Ride
	if err := cursor.All(ctx, &rides); err != nil {
		return nil, fmt.Errorf("failed to decode active rides: %w", err)
	}

	return rides, nil
}

func (r *rideRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.RideStatus, departureTime *time.Time) error {
	set := bson.M{"status": to, "updated_at": time.Now()}
	if departureTime != nil {
		set["departure_time"] = *departureTime
	}

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": set},
	)
	if err != nil {
		return fmt.Errorf("failed to update ride status: %w", err)
	}
	if result.MatchedCount == 0 {
		return interfaces.ErrConflict
	}

	r.invalidateRideCache(ctx, id.Hex())

	return nil
}

func (r *rideRepository) AddPendingPassenger(ctx context.Context, id primitive.ObjectID, passenger models.PassengerSummary) error {
	// The filter restates the preconditions so a concurrent commit
	// between the caller's read and this write matches nothing instead
	// of overbooking.
	filter := bson.M{
		"_id":                      id,
		"status":                   models.RideStatusActive,
		"pending_passengers._id":   bson.M{"$ne": passenger.ID},
		"approved_passengers._id":  bson.M{"$ne": passenger.ID},
		"$expr": bson.M{
			"$lt": bson.A{bson.M{"$size": "$approved_passengers"}, "$available_seats"},
		},
	}
	update := bson.M{
		"$push": bson.M{"pending_passengers": passenger},
		"$set":  bson.M{"updated_at": time.Now()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to add pending passenger: %w", err)
	}
	if result.MatchedCount == 0 {
		return interfaces.ErrConflict
	}

	r.invalidateRideCache(ctx, id.Hex())

	return nil
}

func (r *rideRepository) ApprovePassenger(ctx context.Context, id primitive.ObjectID, passenger models.PassengerSummary) error {
	filter := bson.M{
		"_id":                    id,
		"status":                 models.RideStatusActive,
		"pending_passengers._id": passenger.ID,
		"$expr": bson.M{
			"$lt": bson.A{bson.M{"$size": "$approved_passengers"}, "$available_seats"},
		},
	}
	update := bson.M{
		"$pull": bson.M{"pending_passengers": bson.M{"_id": passenger.ID}},
		"$push": bson.M{"approved_passengers": passenger},
		"$set":  bson.M{"updated_at": time.Now()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to approve passenger: %w", err)
	}
	if result.MatchedCount == 0 {
		return interfaces.ErrConflict
	}

	r.invalidateRideCache(ctx, id.Hex())

	return nil
}

func (r *rideRepository) cacheRide(ctx context.Context, ride *models.Ride) {
	if r.cache == nil {
		return
	}
	r.cache.Set(ctx, rideCacheKey(ride.ID.Hex()), ride, rideCacheTTL)
}

func (r *rideRepository) getRideFromCache(ctx context.Context, id string) *models.Ride {
	if r.cache == nil {
		return nil
	}

	var ride models.Ride
	if err := r.cache.Get(ctx, rideCacheKey(id), &ride); err != nil {
		return nil
	}
	return &ride
}

func (r *rideRepository) invalidateRideCache(ctx context.Context, id string) {
	if r.cache == nil {
		return
	}
	r.cache.Delete(ctx, rideCacheKey(id))
}

func rideCacheKey(id string) string {
	return "ride:" + id
}
