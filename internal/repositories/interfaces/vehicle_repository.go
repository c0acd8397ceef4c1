package interfaces

import (
	"context"

	"carpool/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VehicleRepository interface {
	Create(ctx context.Context, vehicle *models.Vehicle) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Vehicle, error)
	GetByNumber(ctx context.Context, vehicleNumber string) (*models.Vehicle, error)
	Update(ctx context.Context, vehicle *models.Vehicle) error
}
