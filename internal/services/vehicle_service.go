package services

import (
	"context"
	"errors"
	"fmt"

	"carpool/internal/models"
	"carpool/internal/repositories/interfaces"
	"carpool/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VehicleRequest struct {
	VehicleNumber string `json:"vehicle_number"`
	VehicleType   string `json:"vehicle_type"`
	Model         string `json:"model"`
	Color         string `json:"color"`
	Capacity      int    `json:"capacity"`
}

type VehicleService interface {
	// Register inserts the vehicle and links it to the driver's
	// identity record in one transaction.
	Register(ctx context.Context, driver *models.User, req *VehicleRequest) (*models.Vehicle, error)
	Update(ctx context.Context, driver *models.User, vehicleID primitive.ObjectID, req *VehicleRequest) (*models.Vehicle, error)
}

type vehicleService struct {
	vehicleRepo interfaces.VehicleRepository
	userRepo    interfaces.UserRepository
	tx          TxRunner
	logger      *logger.Logger
}

func NewVehicleService(vehicleRepo interfaces.VehicleRepository, userRepo interfaces.UserRepository, tx TxRunner, log *logger.Logger) VehicleService {
	return &vehicleService{
		vehicleRepo: vehicleRepo,
		userRepo:    userRepo,
		tx:          tx,
		logger:      log,
	}
}

func (s *vehicleService) Register(ctx context.Context, driver *models.User, req *VehicleRequest) (*models.Vehicle, error) {
	if driver.HasVehicle() {
		return nil, NewPreconditionError(CodeVehicleExists, "Vehicle already registered for this driver. You cannot register more than one vehicle")
	}

	existing, err := s.vehicleRepo.GetByNumber(ctx, req.VehicleNumber)
	if err != nil && !errors.Is(err, interfaces.ErrNotFound) {
		return nil, fmt.Errorf("failed to check vehicle number: %w", err)
	}
	if existing != nil {
		return nil, NewPreconditionError("VEHICLE_NUMBER_IN_USE", "Vehicle with this number already exists")
	}

	vehicle := &models.Vehicle{
		VehicleNumber: req.VehicleNumber,
		VehicleType:   req.VehicleType,
		Model:         req.Model,
		Color:         req.Color,
		Capacity:      req.Capacity,
		DriverID:      driver.ID,
	}

	_, err = s.tx.RunTransaction(ctx, func(ctx context.Context) (interface{}, error) {
		if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
			return nil, err
		}
		if err := s.userRepo.SetVehicle(ctx, driver.ID, vehicle.ID); err != nil {
			return nil, err
		}
		return vehicle, nil
	})
	if err != nil {
		return nil, fmt.Errorf("vehicle registration failed: %w", err)
	}

	s.logger.WithUserID(driver.ID).WithField("vehicle_number", vehicle.VehicleNumber).Info("Vehicle registered")

	return vehicle, nil
}

func (s *vehicleService) Update(ctx context.Context, driver *models.User, vehicleID primitive.ObjectID, req *VehicleRequest) (*models.Vehicle, error) {
	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}

	if vehicle.DriverID != driver.ID {
		return nil, NewPreconditionError(CodeNotVehicleOwner, "Unauthorized to update this vehicle")
	}

	vehicle.VehicleNumber = req.VehicleNumber
	vehicle.VehicleType = req.VehicleType
	vehicle.Model = req.Model
	vehicle.Color = req.Color
	vehicle.Capacity = req.Capacity

	if err := s.vehicleRepo.Update(ctx, vehicle); err != nil {
		return nil, fmt.Errorf("vehicle update failed: %w", err)
	}

	s.logger.WithUserID(driver.ID).WithField("vehicle_number", vehicle.VehicleNumber).Info("Vehicle updated")

	return vehicle, nil
}
