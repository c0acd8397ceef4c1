package utils

import "time"

// Application Constants
const (
	AppName    = "Carpool"
	AppVersion = "1.0.0"

	// Authentication
	JWTAccessTokenTTL = 30 * 24 * time.Hour
	BcryptCost        = 12
	PasswordMinLength = 8
	PasswordMaxLength = 16

	// Matching Constants
	EarthRadiusKM        = 6371.0
	ProximityThresholdKM = 5.0  // counts toward the match percentage
	MaxPickupDistanceKM  = 10.0 // rides further than this never rank
	MaxDropoffDistanceKM = 10.0

	// Vehicle Constants
	MinVehicleCapacity = 1
	MaxVehicleCapacity = 10
)

// Response status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error codes surfaced through the API envelope
const (
	CodeValidationError      = "VALIDATION_ERROR"
	CodeAuthFailure          = "AUTH_FAILURE"
	CodePreconditionViolated = "PRECONDITION_VIOLATION"
	CodeTransactionAbort     = "TRANSACTION_ABORT"
	CodeNotFound             = "NOT_FOUND"
	CodeInternalError        = "INTERNAL_ERROR"
)

// Common error messages
const (
	ErrValidationFailed = "Request validation failed"
	ErrInternalServer   = "Internal server error"
	ErrUnauthorized     = "Unauthorized"
)
