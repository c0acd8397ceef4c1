package interfaces

import (
	"context"
	"errors"

	"carpool/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sentinel errors shared by all repository implementations.
var (
	// ErrNotFound means the requested document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrConflict means a guarded write matched no document, i.e. a
	// concurrent operation changed the document between the caller's
	// read and this write.
	ErrConflict = errors.New("document changed concurrently")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// FindByUsernameOrEmail returns the existing user matching either
	// value, or ErrNotFound when both are free.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	UpdateRideStatus(ctx context.Context, id primitive.ObjectID, status models.RideActivityStatus) error
	// ClaimRiding flips the driver from OFFLINE to RIDING. The write
	// is guarded by the current OFFLINE status and returns ErrConflict
	// when the driver already has a ride on offer, so two concurrent
	// creates can never both claim the driver.
	ClaimRiding(ctx context.Context, id primitive.ObjectID) error
	SetVehicle(ctx context.Context, id, vehicleID primitive.ObjectID) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error
}
