package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Vehicle struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	VehicleNumber string             `json:"vehicle_number" bson:"vehicle_number" validate:"required,min=6,max=15"`
	VehicleType   string             `json:"vehicle_type" bson:"vehicle_type" validate:"required,min=3,max=20"`
	Model         string             `json:"model" bson:"model" validate:"required,min=3,max=20"`
	Color         string             `json:"color" bson:"color" validate:"required,min=3,max=20"`
	Capacity      int                `json:"capacity" bson:"capacity" validate:"required,min=1,max=10"`
	DriverID      primitive.ObjectID `json:"driver_id" bson:"driver_id"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}
