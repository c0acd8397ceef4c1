package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"carpool/internal/models"
	"carpool/internal/repositories/interfaces"
	"carpool/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeTxRunner runs the callback directly; the fakes below apply writes
// immediately, so commit/abort semantics are not modelled.
type fakeTxRunner struct{}

func (fakeTxRunner) RunTransaction(ctx context.Context, fn func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	return fn(ctx)
}

// fakeRideRepo holds rides in memory and enforces the same guarded
// write semantics as the real repository.
type fakeRideRepo struct {
	rides map[primitive.ObjectID]*models.Ride

	// forceConflict makes every guarded write fail the way it would
	// when a concurrent transaction changed the document first.
	forceConflict bool

	// failCreate makes the insert error so tests can abort the
	// surrounding transaction mid-flight.
	failCreate bool
}

func newFakeRideRepo() *fakeRideRepo {
	return &fakeRideRepo{rides: make(map[primitive.ObjectID]*models.Ride)}
}

func (r *fakeRideRepo) Create(ctx context.Context, ride *models.Ride) error {
	if r.failCreate {
		return errors.New("insert failed")
	}
	ride.ID = primitive.NewObjectID()
	r.rides[ride.ID] = cloneRide(ride)
	return nil
}

func (r *fakeRideRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error) {
	ride, ok := r.rides[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return cloneRide(ride), nil
}

func (r *fakeRideRepo) GetActiveRides(ctx context.Context) ([]*models.Ride, error) {
	var active []*models.Ride
	for _, ride := range r.rides {
		if ride.Status == models.RideStatusActive {
			active = append(active, cloneRide(ride))
		}
	}
	return active, nil
}

func (r *fakeRideRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.RideStatus, departureTime *time.Time) error {
	ride, ok := r.rides[id]
	if r.forceConflict || !ok || ride.Status != from {
		return interfaces.ErrConflict
	}
	ride.Status = to
	if departureTime != nil {
		ride.DepartureTime = *departureTime
	}
	return nil
}

func (r *fakeRideRepo) AddPendingPassenger(ctx context.Context, id primitive.ObjectID, passenger models.PassengerSummary) error {
	ride, ok := r.rides[id]
	if !ok || ride.Status != models.RideStatusActive || ride.IsFull() || ride.HasPassenger(passenger.ID) {
		return interfaces.ErrConflict
	}
	ride.PendingPassengers = append(ride.PendingPassengers, passenger)
	return nil
}

func (r *fakeRideRepo) ApprovePassenger(ctx context.Context, id primitive.ObjectID, passenger models.PassengerSummary) error {
	ride, ok := r.rides[id]
	if !ok || ride.Status != models.RideStatusActive || ride.IsFull() {
		return interfaces.ErrConflict
	}
	idx := -1
	for i, p := range ride.PendingPassengers {
		if p.ID == passenger.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return interfaces.ErrConflict
	}
	ride.PendingPassengers = append(ride.PendingPassengers[:idx], ride.PendingPassengers[idx+1:]...)
	ride.ApprovedPassengers = append(ride.ApprovedPassengers, passenger)
	return nil
}

func cloneRide(ride *models.Ride) *models.Ride {
	out := *ride
	out.ApprovedPassengers = append([]models.PassengerSummary(nil), ride.ApprovedPassengers...)
	out.PendingPassengers = append([]models.PassengerSummary(nil), ride.PendingPassengers...)
	return &out
}

type fakeUserRepo struct {
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (r *fakeUserRepo) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	for _, user := range r.users {
		if user.Username == username || user.Contact.Email == email {
			return user, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (r *fakeUserRepo) UpdateRideStatus(ctx context.Context, id primitive.ObjectID, status models.RideActivityStatus) error {
	user, ok := r.users[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	user.RideStatus = status
	return nil
}

func (r *fakeUserRepo) ClaimRiding(ctx context.Context, id primitive.ObjectID) error {
	user, ok := r.users[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	if user.RideStatus != models.RideStatusOffline {
		return interfaces.ErrConflict
	}
	user.RideStatus = models.RideStatusRiding
	return nil
}

func (r *fakeUserRepo) SetVehicle(ctx context.Context, id, vehicleID primitive.ObjectID) error {
	user, ok := r.users[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	user.VehicleID = &vehicleID
	return nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	user, ok := r.users[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	user.Password = passwordHash
	return nil
}

type fakeVehicleRepo struct {
	vehicles map[primitive.ObjectID]*models.Vehicle
}

func newFakeVehicleRepo() *fakeVehicleRepo {
	return &fakeVehicleRepo{vehicles: make(map[primitive.ObjectID]*models.Vehicle)}
}

func (r *fakeVehicleRepo) Create(ctx context.Context, vehicle *models.Vehicle) error {
	vehicle.ID = primitive.NewObjectID()
	r.vehicles[vehicle.ID] = vehicle
	return nil
}

func (r *fakeVehicleRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Vehicle, error) {
	vehicle, ok := r.vehicles[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return vehicle, nil
}

func (r *fakeVehicleRepo) GetByNumber(ctx context.Context, vehicleNumber string) (*models.Vehicle, error) {
	for _, vehicle := range r.vehicles {
		if vehicle.VehicleNumber == vehicleNumber {
			return vehicle, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (r *fakeVehicleRepo) Update(ctx context.Context, vehicle *models.Vehicle) error {
	if _, ok := r.vehicles[vehicle.ID]; !ok {
		return interfaces.ErrNotFound
	}
	r.vehicles[vehicle.ID] = vehicle
	return nil
}

// fakeBroadcaster records the post-commit hooks in arrival order.
type fakeBroadcaster struct {
	added   []primitive.ObjectID
	updated []primitive.ObjectID
	removed []primitive.ObjectID
}

func (b *fakeBroadcaster) RideAdded(ride *models.Ride)   { b.added = append(b.added, ride.ID) }
func (b *fakeBroadcaster) RideUpdated(ride *models.Ride) { b.updated = append(b.updated, ride.ID) }
func (b *fakeBroadcaster) RideRemoved(rideID primitive.ObjectID) {
	b.removed = append(b.removed, rideID)
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger(&logger.Config{Level: "error", Format: "text", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

type fixture struct {
	rides    *fakeRideRepo
	users    *fakeUserRepo
	vehicles *fakeVehicleRepo
	hub      *fakeBroadcaster
	service  RideService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		rides:    newFakeRideRepo(),
		users:    newFakeUserRepo(),
		vehicles: newFakeVehicleRepo(),
		hub:      &fakeBroadcaster{},
	}
	f.service = NewRideService(f.rides, f.users, f.vehicles, fakeTxRunner{}, f.hub, testLogger(t))
	return f
}

func (f *fixture) driver(t *testing.T, capacity int) *models.User {
	t.Helper()
	ctx := context.Background()

	driver := &models.User{
		Name:       "Test Driver",
		Username:   "driver-" + primitive.NewObjectID().Hex(),
		Role:       models.RoleDriver,
		Gender:     models.GenderMale,
		RideStatus: models.RideStatusOffline,
	}
	if err := f.users.Create(ctx, driver); err != nil {
		t.Fatalf("create driver: %v", err)
	}

	vehicle := &models.Vehicle{
		VehicleNumber: "KA01-" + primitive.NewObjectID().Hex()[:6],
		VehicleType:   "Sedan",
		Capacity:      capacity,
		DriverID:      driver.ID,
	}
	if err := f.vehicles.Create(ctx, vehicle); err != nil {
		t.Fatalf("create vehicle: %v", err)
	}
	driver.VehicleID = &vehicle.ID
	return driver
}

func (f *fixture) rider(t *testing.T, gender models.Gender) *models.User {
	t.Helper()
	rider := &models.User{
		Nickname:   "rider",
		Username:   "rider-" + primitive.NewObjectID().Hex(),
		Role:       models.RoleRider,
		Gender:     gender,
		RideStatus: models.RideStatusOffline,
	}
	if err := f.users.Create(context.Background(), rider); err != nil {
		t.Fatalf("create rider: %v", err)
	}
	return rider
}

func (f *fixture) createRide(t *testing.T, driver *models.User, req *RideCreateRequest) *models.Ride {
	t.Helper()
	if req == nil {
		req = &RideCreateRequest{
			PickupLocation:  models.Location{Latitude: 12.97, Longitude: 77.59, Address: "A"},
			DropoffLocation: models.Location{Latitude: 13.03, Longitude: 77.62, Address: "B"},
			DepartureTime:   time.Now().Add(time.Hour),
			RideFare:        150,
		}
	}
	ride, err := f.service.Create(context.Background(), driver, req)
	if err != nil {
		t.Fatalf("create ride: %v", err)
	}
	return ride
}

func expectPrecondition(t *testing.T, err error, code string) {
	t.Helper()
	pe, ok := AsPreconditionError(err)
	if !ok {
		t.Fatalf("expected precondition error, got %v", err)
	}
	if pe.Code != code {
		t.Fatalf("expected code %s, got %s (%s)", code, pe.Code, pe.Message)
	}
}

func TestCreate_DefaultsSeatsToVehicleCapacityAndMarksDriverRiding(t *testing.T) {
	f := newFixture(t)
	driver := f.driver(t, 3)

	ride := f.createRide(t, driver, nil)

	if ride.AvailableSeats != 3 {
		t.Fatalf("expected seats to default to capacity 3, got %d", ride.AvailableSeats)
	}
	if ride.Status != models.RideStatusActive {
		t.Fatalf("expected ACTIVE, got %s", ride.Status)
	}
	stored, _ := f.users.GetByID(context.Background(), driver.ID)
	if stored.RideStatus != models.RideStatusRiding {
		t.Fatalf("expected driver RIDING, got %s", stored.RideStatus)
	}
	if len(f.hub.added) != 1 || f.hub.added[0] != ride.ID {
		t.Fatalf("expected one RideAdded hook for %s", ride.ID.Hex())
	}
}

func TestCreate_RejectsBusyDriver(t *testing.T) {
	f := newFixture(t)
	driver := f.driver(t, 3)
	f.createRide(t, driver, nil)

	driver.RideStatus = models.RideStatusRiding
	_, err := f.service.Create(context.Background(), driver, &RideCreateRequest{
		DepartureTime: time.Now().Add(time.Hour),
	})
	expectPrecondition(t, err, CodeDriverBusy)
}

func TestCreate_RejectsDriverWithoutVehicle(t *testing.T) {
	f := newFixture(t)
	driver := &models.User{Role: models.RoleDriver, RideStatus: models.RideStatusOffline}
	if err := f.users.Create(context.Background(), driver); err != nil {
		t.Fatal(err)
	}

	_, err := f.service.Create(context.Background(), driver, &RideCreateRequest{})
	expectPrecondition(t, err, CodeNoVehicle)
}

func TestRequestSeat_WomenOnlyRejectsMaleRider(t *testing.T) {
	f := newFixture(t)
	driver := f.driver(t, 3)
	ride := f.createRide(t, driver, &RideCreateRequest{
		DepartureTime:   time.Now().Add(time.Hour),
		RidePreferences: models.RidePreferences{WomenOnly: true},
	})

	_, err := f.service.RequestSeat(context.Background(), ride.ID, f.rider(t, models.GenderMale))
	expectPrecondition(t, err, CodeWomenOnly)

	_, err = f.service.RequestSeat(context.Background(), ride.ID, f.rider(t, models.GenderFemale))
	if err != nil {
		t.Fatalf("expected female rider to be accepted, got %v", err)
	}
}

func TestRequestSeat_RejectsDriverAndDuplicates(t *testing.T) {
	f := newFixture(t)
	driver := f.driver(t, 3)
	ride := f.createRide(t, driver, nil)

	_, err := f.service.RequestSeat(context.Background(), ride.ID, driver)
	expectPrecondition(t, err, CodeDriverIsRider)

	rider := f.rider(t, models.GenderFemale)
	if _, err := f.service.RequestSeat(context.Background(), ride.ID, rider); err != nil {
		t.Fatalf("first request: %v", err)
	}
	_, err = f.service.RequestSeat(context.Background(), ride.ID, rider)
	expectPrecondition(t, err, CodeAlreadyRequested)
}

func TestAcceptRequest_MovesPassengerBetweenSets(t *testing.T) {
	f := newFixture(t)
	driver := f.driver(t, 2)
	ride := f.createRide(t, driver, nil)
	rider := f.rider(t, models.GenderFemale)

	if _, err := f.service.RequestSeat(context.Background(), ride.ID, rider); err != nil {
		t.Fatal(err)
	}
	updated, err := f.service.AcceptRequest(context.Background(), ride.ID, driver.ID, rider.ID)
	if err != nil {
		t.Fatal(err)
	}

	if updated.HasPassenger(rider.ID) && !updated.IsApprovedPassenger(rider.ID) {
		t.Fatalf("expected passenger approved, still pending")
	}
	for _, p := range updated.PendingPassengers {
		if p.ID == rider.ID {
			t.Fatalf("passenger must not sit in both sets")
		}
	}
	if len(updated.ApprovedPassengers) != 1 {
		t.Fatalf("expected 1 approved passenger, got %d", len(updated.ApprovedPassengers))
	}
}

func TestAcceptRequest_FailsForUnknownPassenger(t *testing.T) {
	f := newFixture(t)
	driver := f.driver(t, 2)
	ride := f.createRide(t, driver, nil)

	_, err := f.service.AcceptRequest(context.Background(), ride.ID, driver.ID, primitive.NewObjectID())
	expectPrecondition(t, err, CodePassengerMissing)
}

func TestAcceptRequest_FullRideRejectsWithoutStateChange(t *testing.T) {
	f := newFixture(t)
	driver := f.driver(t, 1)
	ride := f.createRide(t, driver, nil)

	first := f.rider(t, models.GenderFemale)
	second := f.rider(t, models.GenderFemale)
	ctx := context.Background()

	if _, err := f.service.RequestSeat(ctx, ride.ID, first); err != nil {
		t.Fatal(err)
	}
	if _, err := f.service.RequestSeat(ctx, ride.ID, second); err != nil {
		t.Fatal(err)
	}
	if _, err := f.service.AcceptRequest(ctx, ride.ID, driver.ID, first.ID); err != nil {
		t.Fatal(err)
	}

	_, err := f.service.AcceptRequest(ctx, ride.ID, driver.ID, second.ID)
	expectPrecondition(t, err, CodeRideFull)

	stored, _ := f.rides.GetByID(ctx, ride.ID)
	if len(stored.ApprovedPassengers) != 1 {
		t.Fatalf("failed accept must not change state, got %d approved", len(stored.ApprovedPassengers))
	}
	if len(stored.ApprovedPassengers) > stored.AvailableSeats {
		t.Fatalf("seat invariant violated: %d approved, %d seats", len(stored.ApprovedPassengers), stored.AvailableSeats)
	}
}

func TestRequestSeat_TwoSeatRideFillsThenRejects(t *testing.T) {
	f := newFixture(t)
	driver := f.driver(t, 2)
	ride := f.createRide(t, driver, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		rider := f.rider(t, models.GenderFemale)
		if _, err := f.service.RequestSeat(ctx, ride.ID, rider); err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		if _, err := f.service.AcceptRequest(ctx, ride.ID, driver.ID, rider.ID); err != nil {
			t.Fatalf("accept %d: %v", i, err)
		}
	}

	_, err := f.service.RequestSeat(ctx, ride.ID, f.rider(t, models.GenderFemale))
	expectPrecondition(t, err, CodeRideFull)
}

func TestStart_RemovesRideFromBroadcast(t *testing.T) {
	f := newFixture(t)
	driver := f.driver(t, 2)
	ride := f.createRide(t, driver, nil)
	ctx := context.Background()

	started, err := f.service.Start(ctx, ride.ID, driver.ID)
	if err != nil {
		t.Fatal(err)
	}
	if started.Status != models.RideStatusInProgress {
		t.Fatalf("expected IN_PROGRESS, got %s", started.Status)
	}
	if len(f.hub.removed) != 1 || f.hub.removed[0] != ride.ID {
		t.Fatalf("expected RideRemoved hook after start")
	}

	// Joining after departure is too late.
	_, err = f.service.RequestSeat(ctx, ride.ID, f.rider(t, models.GenderFemale))
	expectPrecondition(t, err, CodeRideNotActive)
}

func TestStart_OnlyTheDriverMayStart(t *testing.T) {
	f := newFixture(t)
	driver := f.driver(t, 2)
	ride := f.createRide(t, driver, nil)

	_, err := f.service.Start(context.Background(), ride.ID, primitive.NewObjectID())
	expectPrecondition(t, err, CodeNotRideDriver)
}

func TestFinish_RequiresInProgressAndResetsDriver(t *testing.T) {
	f := newFixture(t)
	driver := f.driver(t, 2)
	ride := f.createRide(t, driver, nil)
	ctx := context.Background()

	_, err := f.service.Finish(ctx, ride.ID, driver.ID)
	expectPrecondition(t, err, CodeRideNotStarted)

	if _, err := f.service.Start(ctx, ride.ID, driver.ID); err != nil {
		t.Fatal(err)
	}
	finished, err := f.service.Finish(ctx, ride.ID, driver.ID)
	if err != nil {
		t.Fatal(err)
	}
	if finished.Status != models.RideStatusFinished {
		t.Fatalf("expected RIDE_FINISHED, got %s", finished.Status)
	}

	stored, _ := f.users.GetByID(ctx, driver.ID)
	if stored.RideStatus != models.RideStatusOffline {
		t.Fatalf("expected driver back OFFLINE after finish, got %s", stored.RideStatus)
	}
}

func TestCancel_SecondCancelFailsAndKeepsState(t *testing.T) {
	f := newFixture(t)
	driver := f.driver(t, 2)
	ride := f.createRide(t, driver, nil)
	ctx := context.Background()

	cancelled, err := f.service.Cancel(ctx, ride.ID, driver.ID)
	if err != nil {
		t.Fatal(err)
	}
	if cancelled.Status != models.RideStatusCancelled {
		t.Fatalf("expected CANCELLED, got %s", cancelled.Status)
	}

	_, err = f.service.Cancel(ctx, ride.ID, driver.ID)
	expectPrecondition(t, err, CodeRideNotActive)

	stored, _ := f.rides.GetByID(ctx, ride.ID)
	if stored.Status != models.RideStatusCancelled {
		t.Fatalf("second cancel must not change state, got %s", stored.Status)
	}
	if len(f.hub.removed) != 1 {
		t.Fatalf("expected exactly one RideRemoved hook, got %d", len(f.hub.removed))
	}
}

func TestRideOps_UnknownRideFails(t *testing.T) {
	f := newFixture(t)
	driver := f.driver(t, 2)

	_, err := f.service.Start(context.Background(), primitive.NewObjectID(), driver.ID)
	expectPrecondition(t, err, CodeRideNotFound)
}

func TestClassify_ConflictBecomesPreconditionFailure(t *testing.T) {
	f := newFixture(t)
	driver := f.driver(t, 2)
	ride := f.createRide(t, driver, nil)
	ctx := context.Background()

	// The read inside the transaction sees an ACTIVE ride, then the
	// guarded write loses the race.
	f.rides.forceConflict = true

	err := f.rides.UpdateStatus(ctx, ride.ID, models.RideStatusActive, models.RideStatusInProgress, nil)
	if !errors.Is(err, interfaces.ErrConflict) {
		t.Fatalf("expected ErrConflict from guarded write, got %v", err)
	}

	_, err = f.service.Start(ctx, ride.ID, driver.ID)
	expectPrecondition(t, err, CodeRideNotActive)
}

func TestCreate_ConcurrentCreateLosesGuardedStatusFlip(t *testing.T) {
	f := newFixture(t)
	driver := f.driver(t, 3)
	f.createRide(t, driver, nil)
	ctx := context.Background()

	// A second create racing the first still carries the stale OFFLINE
	// status from its earlier read, so it passes the friendly check and
	// must lose on the guarded flip inside the transaction.
	stale := *driver
	stale.RideStatus = models.RideStatusOffline

	_, err := f.service.Create(ctx, &stale, &RideCreateRequest{
		DepartureTime: time.Now().Add(time.Hour),
	})
	expectPrecondition(t, err, CodeDriverBusy)

	active, _ := f.rides.GetActiveRides(ctx)
	if len(active) != 1 {
		t.Fatalf("expected exactly one active ride per driver, got %d", len(active))
	}
	if len(f.hub.added) != 1 {
		t.Fatalf("the losing create must not broadcast, got %d RideAdded hooks", len(f.hub.added))
	}
}

func TestCreate_FailedTransactionHasNoPostCommitEffects(t *testing.T) {
	f := newFixture(t)
	driver := f.driver(t, 3)
	f.rides.failCreate = true

	_, err := f.service.Create(context.Background(), driver, &RideCreateRequest{
		DepartureTime: time.Now().Add(time.Hour),
	})
	if err == nil {
		t.Fatalf("expected the create to fail")
	}
	if _, ok := AsPreconditionError(err); ok {
		t.Fatalf("an insert failure is not a precondition failure: %v", err)
	}
	if len(f.hub.added) != 0 {
		t.Fatalf("an aborted create must leave no observable effects, got %d RideAdded hooks", len(f.hub.added))
	}
}

func TestGetDetails_OnlyRideMembersMaySee(t *testing.T) {
	f := newFixture(t)
	driver := f.driver(t, 2)
	ride := f.createRide(t, driver, nil)
	rider := f.rider(t, models.GenderFemale)
	ctx := context.Background()

	if _, err := f.service.GetDetails(ctx, ride.ID, driver.ID); err != nil {
		t.Fatalf("driver must see details: %v", err)
	}

	if _, err := f.service.GetDetails(ctx, ride.ID, rider.ID); err == nil {
		t.Fatalf("pending outsider must not see details")
	}

	if _, err := f.service.RequestSeat(ctx, ride.ID, rider); err != nil {
		t.Fatal(err)
	}
	if _, err := f.service.AcceptRequest(ctx, ride.ID, driver.ID, rider.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.service.GetDetails(ctx, ride.ID, rider.ID); err != nil {
		t.Fatalf("approved passenger must see details: %v", err)
	}
}
