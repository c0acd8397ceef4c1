package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string
type Gender string
type RideActivityStatus string

const (
	RoleRider  UserRole = "RIDER"
	RoleDriver UserRole = "DRIVER"
	RoleAdmin  UserRole = "ADMIN"

	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"

	// RideActivityStatus tracks whether a driver currently has a ride on
	// offer. RIDING is set atomically with ride creation and cleared with
	// cancellation or completion.
	RideStatusOffline RideActivityStatus = "OFFLINE"
	RideStatusRiding  RideActivityStatus = "RIDING"
)

type Contact struct {
	Email string `json:"email" bson:"email" validate:"required,email"`
	Phone string `json:"phone" bson:"phone" validate:"required"`
}

type Address struct {
	Street     string `json:"street" bson:"street" validate:"required,min=10,max=100"`
	City       string `json:"city" bson:"city" validate:"required,min=2,max=50"`
	State      string `json:"state" bson:"state" validate:"required,min=2,max=50"`
	PostalCode string `json:"postal_code" bson:"postal_code" validate:"required,len=6"`
}

type User struct {
	ID         primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Name       string              `json:"name" bson:"name" validate:"required,min=3,max=50"`
	Nickname   string              `json:"nickname" bson:"nickname" validate:"omitempty,min=3,max=30"`
	Username   string              `json:"username" bson:"username" validate:"required,min=3,max=20"`
	Password   string              `json:"-" bson:"password"`
	Role       UserRole            `json:"role" bson:"role" validate:"required"`
	Gender     Gender              `json:"gender" bson:"gender" validate:"required"`
	Contact    Contact             `json:"contact" bson:"contact" validate:"required"`
	Address    Address             `json:"address" bson:"address" validate:"required"`
	VehicleID  *primitive.ObjectID `json:"vehicle_id" bson:"vehicle_id,omitempty"`
	RideStatus RideActivityStatus  `json:"ride_status" bson:"ride_status" default:"OFFLINE"`
	CreatedAt  time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at" bson:"updated_at"`
}

func (u *User) IsDriver() bool {
	return u.Role == RoleDriver
}

func (u *User) HasVehicle() bool {
	return u.VehicleID != nil && !u.VehicleID.IsZero()
}

// PassengerSummary is the slice of a user embedded by value inside a
// ride's pending/approved passenger sets.
type PassengerSummary struct {
	ID       primitive.ObjectID `json:"id" bson:"_id"`
	Nickname string             `json:"nickname" bson:"nickname"`
	Gender   Gender             `json:"gender" bson:"gender"`
}

// DriverSummary is the driver snapshot embedded in a ride at creation.
type DriverSummary struct {
	ID      primitive.ObjectID `json:"id" bson:"_id"`
	Name    string             `json:"name" bson:"name"`
	Gender  Gender             `json:"gender" bson:"gender"`
	Contact Contact            `json:"contact" bson:"contact"`
}

func (u *User) PassengerSummary() PassengerSummary {
	return PassengerSummary{ID: u.ID, Nickname: u.Nickname, Gender: u.Gender}
}

func (u *User) DriverSummary() DriverSummary {
	return DriverSummary{ID: u.ID, Name: u.Name, Gender: u.Gender, Contact: u.Contact}
}
