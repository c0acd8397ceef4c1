package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carpool/internal/models"
	"carpool/internal/observability"
	"carpool/internal/repositories/interfaces"
	"carpool/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RideBroadcaster receives the post-commit hooks of the ride lifecycle.
// The websocket hub implements it; every call reflects a transaction
// that has already committed, so implementations must never fail the
// operation that triggered them.
type RideBroadcaster interface {
	RideAdded(ride *models.Ride)
	RideUpdated(ride *models.Ride)
	RideRemoved(rideID primitive.ObjectID)
}

type RideCreateRequest struct {
	PickupLocation  models.Location        `json:"pickup_location"`
	DropoffLocation models.Location        `json:"dropoff_location"`
	DepartureTime   time.Time              `json:"departure_time"`
	RideFare        float64                `json:"ride_fare"`
	RidePreferences models.RidePreferences `json:"ride_preferences"`
	AvailableSeats  int                    `json:"available_seats"`
}

// RideService is the transactional state machine over ride status:
// ACTIVE -> IN_PROGRESS -> RIDE_FINISHED, ACTIVE -> CANCELLED. Each
// operation runs as one store transaction spanning the ride and, where
// required, the driver's identity record, and triggers the broadcaster
// only after commit.
type RideService interface {
	Create(ctx context.Context, driver *models.User, req *RideCreateRequest) (*models.Ride, error)
	Start(ctx context.Context, rideID, driverID primitive.ObjectID) (*models.Ride, error)
	Finish(ctx context.Context, rideID, driverID primitive.ObjectID) (*models.Ride, error)
	Cancel(ctx context.Context, rideID, driverID primitive.ObjectID) (*models.Ride, error)
	RequestSeat(ctx context.Context, rideID primitive.ObjectID, rider *models.User) (*models.Ride, error)
	AcceptRequest(ctx context.Context, rideID, driverID, passengerID primitive.ObjectID) (*models.Ride, error)
	GetDetails(ctx context.Context, rideID, requesterID primitive.ObjectID) (*models.Ride, error)
}

type rideService struct {
	rideRepo    interfaces.RideRepository
	userRepo    interfaces.UserRepository
	vehicleRepo interfaces.VehicleRepository
	tx          TxRunner
	broadcaster RideBroadcaster
	logger      *logger.Logger
}

func NewRideService(
	rideRepo interfaces.RideRepository,
	userRepo interfaces.UserRepository,
	vehicleRepo interfaces.VehicleRepository,
	tx TxRunner,
	broadcaster RideBroadcaster,
	log *logger.Logger,
) RideService {
	return &rideService{
		rideRepo:    rideRepo,
		userRepo:    userRepo,
		vehicleRepo: vehicleRepo,
		tx:          tx,
		broadcaster: broadcaster,
		logger:      log,
	}
}

func (s *rideService) Create(ctx context.Context, driver *models.User, req *RideCreateRequest) (*models.Ride, error) {
	if driver.RideStatus == models.RideStatusRiding {
		return nil, s.reject(CodeDriverBusy, "Driver already has an active ride. Cannot create a new ride")
	}
	if !driver.HasVehicle() {
		return nil, s.reject(CodeNoVehicle, "Driver has not registered any vehicle. Please register a vehicle before creating a ride")
	}

	result, err := s.tx.RunTransaction(ctx, func(ctx context.Context) (interface{}, error) {
		// The guarded OFFLINE-to-RIDING flip is the authority on one
		// active ride per driver; the read check above only shapes the
		// friendly error for the common case.
		if err := s.userRepo.ClaimRiding(ctx, driver.ID); err != nil {
			if errors.Is(err, interfaces.ErrConflict) {
				return nil, s.reject(CodeDriverBusy, "Driver already has an active ride. Cannot create a new ride")
			}
			return nil, err
		}

		vehicle, err := s.vehicleRepo.GetByID(ctx, *driver.VehicleID)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				return nil, s.reject(CodeNoVehicle, "Registered vehicle no longer exists")
			}
			return nil, err
		}

		seats := req.AvailableSeats
		if seats == 0 {
			seats = vehicle.Capacity
		}

		ride := &models.Ride{
			Driver:             driver.DriverSummary(),
			VehicleDetails:     *vehicle,
			ApprovedPassengers: []models.PassengerSummary{},
			PendingPassengers:  []models.PassengerSummary{},
			PickupLocation:     req.PickupLocation,
			DropoffLocation:    req.DropoffLocation,
			DepartureTime:      req.DepartureTime,
			RideFare:           req.RideFare,
			RidePreferences:    req.RidePreferences,
			AvailableSeats:     seats,
			Status:             models.RideStatusActive,
		}

		if err := s.rideRepo.Create(ctx, ride); err != nil {
			return nil, err
		}

		return ride, nil
	})
	if err != nil {
		return nil, s.classify("create ride", err)
	}

	ride := result.(*models.Ride)
	observability.RidesCreatedTotal.Inc()
	s.logger.WithRideID(ride.ID).WithUserID(driver.ID).Info("Ride created")

	if s.broadcaster != nil {
		s.broadcaster.RideAdded(ride)
	}

	return ride, nil
}

func (s *rideService) Start(ctx context.Context, rideID, driverID primitive.ObjectID) (*models.Ride, error) {
	result, err := s.tx.RunTransaction(ctx, func(ctx context.Context) (interface{}, error) {
		ride, err := s.loadRide(ctx, rideID)
		if err != nil {
			return nil, err
		}
		if !ride.IsDriver(driverID) {
			return nil, s.reject(CodeNotRideDriver, "Unauthorized to start ride")
		}
		if !ride.IsActive() {
			return nil, s.reject(CodeRideNotActive, "Ride is not active")
		}

		now := time.Now()
		if err := s.rideRepo.UpdateStatus(ctx, rideID, models.RideStatusActive, models.RideStatusInProgress, &now); err != nil {
			return nil, err
		}

		ride.Status = models.RideStatusInProgress
		ride.DepartureTime = now
		return ride, nil
	})
	if err != nil {
		return nil, s.classify("start ride", err)
	}

	ride := result.(*models.Ride)
	observability.RidesStartedTotal.Inc()
	s.logger.WithRideID(rideID).Info("Ride started")

	// An in-progress ride is no longer on offer.
	if s.broadcaster != nil {
		s.broadcaster.RideRemoved(rideID)
	}

	return ride, nil
}

func (s *rideService) Finish(ctx context.Context, rideID, driverID primitive.ObjectID) (*models.Ride, error) {
	result, err := s.tx.RunTransaction(ctx, func(ctx context.Context) (interface{}, error) {
		ride, err := s.loadRide(ctx, rideID)
		if err != nil {
			return nil, err
		}
		if !ride.IsDriver(driverID) {
			return nil, s.reject(CodeNotRideDriver, "Unauthorized to finish ride")
		}
		if ride.Status != models.RideStatusInProgress {
			return nil, s.reject(CodeRideNotStarted, "Ride is not in progress")
		}

		if err := s.rideRepo.UpdateStatus(ctx, rideID, models.RideStatusInProgress, models.RideStatusFinished, nil); err != nil {
			return nil, err
		}
		if err := s.userRepo.UpdateRideStatus(ctx, driverID, models.RideStatusOffline); err != nil {
			return nil, err
		}

		ride.Status = models.RideStatusFinished
		return ride, nil
	})
	if err != nil {
		return nil, s.classify("finish ride", err)
	}

	observability.RidesFinishedTotal.Inc()
	s.logger.WithRideID(rideID).Info("Ride finished")

	// No index event: the ride left the index when it started.
	return result.(*models.Ride), nil
}

func (s *rideService) Cancel(ctx context.Context, rideID, driverID primitive.ObjectID) (*models.Ride, error) {
	result, err := s.tx.RunTransaction(ctx, func(ctx context.Context) (interface{}, error) {
		ride, err := s.loadRide(ctx, rideID)
		if err != nil {
			return nil, err
		}
		if !ride.IsDriver(driverID) {
			return nil, s.reject(CodeNotRideDriver, "Unauthorized to cancel ride")
		}
		if !ride.IsActive() {
			return nil, s.reject(CodeRideNotActive, "Ride is not active")
		}

		if err := s.rideRepo.UpdateStatus(ctx, rideID, models.RideStatusActive, models.RideStatusCancelled, nil); err != nil {
			return nil, err
		}
		if err := s.userRepo.UpdateRideStatus(ctx, driverID, models.RideStatusOffline); err != nil {
			return nil, err
		}

		ride.Status = models.RideStatusCancelled
		return ride, nil
	})
	if err != nil {
		return nil, s.classify("cancel ride", err)
	}

	observability.RidesCancelledTotal.Inc()
	s.logger.WithRideID(rideID).Info("Ride cancelled")

	if s.broadcaster != nil {
		s.broadcaster.RideRemoved(rideID)
	}

	return result.(*models.Ride), nil
}

func (s *rideService) RequestSeat(ctx context.Context, rideID primitive.ObjectID, rider *models.User) (*models.Ride, error) {
	result, err := s.tx.RunTransaction(ctx, func(ctx context.Context) (interface{}, error) {
		ride, err := s.loadRide(ctx, rideID)
		if err != nil {
			return nil, err
		}
		if ride.IsDriver(rider.ID) {
			return nil, s.reject(CodeDriverIsRider, "Driver cannot request ride")
		}
		if !ride.IsActive() {
			return nil, s.reject(CodeRideNotActive, "Ride is not active")
		}
		if ride.RidePreferences.WomenOnly && rider.Gender == models.GenderMale {
			return nil, s.reject(CodeWomenOnly, "This ride is for women only")
		}
		if ride.IsFull() {
			return nil, s.reject(CodeRideFull, "Ride is full")
		}
		if ride.HasPassenger(rider.ID) {
			return nil, s.reject(CodeAlreadyRequested, "Ride already requested")
		}

		passenger := rider.PassengerSummary()
		if err := s.rideRepo.AddPendingPassenger(ctx, rideID, passenger); err != nil {
			return nil, err
		}

		ride.PendingPassengers = append(ride.PendingPassengers, passenger)
		return ride, nil
	})
	if err != nil {
		return nil, s.classify("request seat", err)
	}

	ride := result.(*models.Ride)
	observability.SeatRequestsTotal.Inc()
	s.logger.WithRideID(rideID).WithUserID(rider.ID).Info("Seat requested")

	if s.broadcaster != nil {
		s.broadcaster.RideUpdated(ride)
	}

	return ride, nil
}

func (s *rideService) AcceptRequest(ctx context.Context, rideID, driverID, passengerID primitive.ObjectID) (*models.Ride, error) {
	result, err := s.tx.RunTransaction(ctx, func(ctx context.Context) (interface{}, error) {
		ride, err := s.loadRide(ctx, rideID)
		if err != nil {
			return nil, err
		}
		if !ride.IsDriver(driverID) {
			return nil, s.reject(CodeNotRideDriver, "Unauthorized to accept ride request")
		}
		if !ride.IsActive() {
			return nil, s.reject(CodeRideNotActive, "Ride is not active")
		}
		if ride.IsFull() {
			return nil, s.reject(CodeRideFull, "Ride is full")
		}

		var passenger *models.PassengerSummary
		for i := range ride.PendingPassengers {
			if ride.PendingPassengers[i].ID == passengerID {
				passenger = &ride.PendingPassengers[i]
				break
			}
		}
		if passenger == nil {
			return nil, s.reject(CodePassengerMissing, "Passenger not found")
		}

		if err := s.rideRepo.ApprovePassenger(ctx, rideID, *passenger); err != nil {
			return nil, err
		}

		approved := *passenger
		pending := ride.PendingPassengers[:0]
		for _, p := range ride.PendingPassengers {
			if p.ID != passengerID {
				pending = append(pending, p)
			}
		}
		ride.PendingPassengers = pending
		ride.ApprovedPassengers = append(ride.ApprovedPassengers, approved)
		return ride, nil
	})
	if err != nil {
		return nil, s.classify("accept request", err)
	}

	ride := result.(*models.Ride)
	observability.SeatApprovalsTotal.Inc()
	s.logger.WithRideID(rideID).WithUserID(passengerID).Info("Seat request accepted")

	if s.broadcaster != nil {
		s.broadcaster.RideUpdated(ride)
	}

	return ride, nil
}

func (s *rideService) GetDetails(ctx context.Context, rideID, requesterID primitive.ObjectID) (*models.Ride, error) {
	ride, err := s.loadRide(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if !ride.IsDriver(requesterID) && !ride.IsApprovedPassenger(requesterID) {
		return nil, NewPreconditionError("NOT_RIDE_MEMBER", "Unauthorized to view ride details")
	}

	return ride, nil
}

func (s *rideService) loadRide(ctx context.Context, rideID primitive.ObjectID) (*models.Ride, error) {
	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrRideNotFound
		}
		return nil, err
	}
	return ride, nil
}

func (s *rideService) reject(code, message string) error {
	observability.PreconditionFailuresTotal.WithLabelValues(code).Inc()
	return NewPreconditionError(code, message)
}

// classify keeps precondition failures as-is and wraps everything else
// so storage-layer detail never reaches the protocol boundary. A
// guarded write that matched nothing means another transaction got
// there first; the caller's read no longer holds, which is a
// precondition failure, not an internal fault.
func (s *rideService) classify(op string, err error) error {
	if _, ok := AsPreconditionError(err); ok {
		return err
	}
	if errors.Is(err, interfaces.ErrConflict) {
		return s.reject(CodeRideNotActive, "Ride changed concurrently, please retry")
	}
	s.logger.WithError(err).Errorf("Error while trying to %s", op)
	return fmt.Errorf("failed to %s: %w", op, err)
}
