package models

// Location is a geocoded point as supplied by clients.
type Location struct {
	Latitude  float64 `json:"latitude" bson:"latitude" validate:"required,min=-90,max=90"`
	Longitude float64 `json:"longitude" bson:"longitude" validate:"required,min=-180,max=180"`
	Address   string  `json:"address" bson:"address" validate:"required"`
}
