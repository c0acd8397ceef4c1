package interfaces

import (
	"context"
	"time"

	"carpool/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RideRepository interface {
	Create(ctx context.Context, ride *models.Ride) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error)
	GetActiveRides(ctx context.Context) ([]*models.Ride, error)

	// UpdateStatus transitions a ride from one status to another. The
	// write is guarded by the expected current status; it returns
	// ErrConflict when the ride is no longer in that status. A non-nil
	// departureTime is written together with the status.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.RideStatus, departureTime *time.Time) error

	// AddPendingPassenger appends the passenger to the pending set. The
	// write is guarded so it fails with ErrConflict unless the ride is
	// still ACTIVE, has an open seat, and the passenger sits in neither
	// passenger set.
	AddPendingPassenger(ctx context.Context, id primitive.ObjectID, passenger models.PassengerSummary) error

	// ApprovePassenger moves the passenger from pending to approved in
	// a single document update, guarded by ACTIVE status, seat
	// availability, and the passenger's presence in the pending set.
	ApprovePassenger(ctx context.Context, id primitive.ObjectID, passenger models.PassengerSummary) error
}
