package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RideStatus string

const (
	RideStatusActive     RideStatus = "ACTIVE"
	RideStatusInProgress RideStatus = "IN_PROGRESS"
	RideStatusFinished   RideStatus = "RIDE_FINISHED"
	RideStatusCancelled  RideStatus = "CANCELLED"
)

// RidePreferences are the flags a driver declares for a ride offer.
// Riders search with a subset of the same flags.
type RidePreferences struct {
	WomenOnly      bool `json:"women_only" bson:"women_only"`
	Music          bool `json:"music" bson:"music"`
	AirConditioner bool `json:"air_conditioner" bson:"air_conditioner"`
	Pets           bool `json:"pets" bson:"pets"`
	Smoking        bool `json:"smoking" bson:"smoking"`
	Luggage        bool `json:"luggage" bson:"luggage"`
}

// Flags returns the preference set keyed the way riders submit search
// criteria over the wire.
func (p RidePreferences) Flags() map[string]bool {
	return map[string]bool{
		"women_only":      p.WomenOnly,
		"music":           p.Music,
		"air_conditioner": p.AirConditioner,
		"pets":            p.Pets,
		"smoking":         p.Smoking,
		"luggage":         p.Luggage,
	}
}

type Ride struct {
	ID                 primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Driver             DriverSummary      `json:"driver" bson:"driver" validate:"required"`
	VehicleDetails     Vehicle            `json:"vehicle_details" bson:"vehicle_details" validate:"required"`
	ApprovedPassengers []PassengerSummary `json:"approved_passengers" bson:"approved_passengers"`
	PendingPassengers  []PassengerSummary `json:"pending_passengers" bson:"pending_passengers"`
	PickupLocation     Location           `json:"pickup_location" bson:"pickup_location" validate:"required"`
	DropoffLocation    Location           `json:"dropoff_location" bson:"dropoff_location" validate:"required"`
	DepartureTime      time.Time          `json:"departure_time" bson:"departure_time" validate:"required"`
	RideFare           float64            `json:"ride_fare" bson:"ride_fare" validate:"min=0"`
	RidePreferences    RidePreferences    `json:"ride_preferences" bson:"ride_preferences"`
	AvailableSeats     int                `json:"available_seats" bson:"available_seats" validate:"required,min=1"`
	Status             RideStatus         `json:"status" bson:"status"`
	CreatedAt          time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at" bson:"updated_at"`
}

func (r *Ride) IsActive() bool {
	return r.Status == RideStatusActive
}

func (r *Ride) IsFull() bool {
	return len(r.ApprovedPassengers) >= r.AvailableSeats
}

func (r *Ride) IsDriver(userID primitive.ObjectID) bool {
	return r.Driver.ID == userID
}

// HasPassenger reports whether the user already sits in either the
// pending or the approved set.
func (r *Ride) HasPassenger(userID primitive.ObjectID) bool {
	for _, p := range r.PendingPassengers {
		if p.ID == userID {
			return true
		}
	}
	for _, p := range r.ApprovedPassengers {
		if p.ID == userID {
			return true
		}
	}
	return false
}

func (r *Ride) IsApprovedPassenger(userID primitive.ObjectID) bool {
	for _, p := range r.ApprovedPassengers {
		if p.ID == userID {
			return true
		}
	}
	return false
}
