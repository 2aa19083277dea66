package lifecycle

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amanmaurya/corporate-rideshare-platform/internal/domain/notification"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/domain/ride"
)

// seatPassenger creates a ride, requests a seat and accepts it, leaving
// the ride confirmed with one passenger.
func (f *fixture) seatPassenger(t *testing.T) *ride.Ride {
	t.Helper()
	r := f.createRide(t)
	req := f.requestSeat(t, f.employee, r.ID)
	_, err := f.svc.Accept(context.Background(), f.driver, req.ID)
	require.NoError(t, err)
	return r
}

func TestStart(t *testing.T) {
	f := newFixture(t, 1.0)
	r := f.seatPassenger(t)

	started, err := f.svc.Start(context.Background(), f.driver, r.ID)
	require.NoError(t, err)
	assert.Equal(t, ride.StatusInProgress, started.Status)
	require.NotNil(t, started.ActualStartTime)
	assert.Zero(t, started.RideProgress)

	notes := f.notifier.byType(notification.TypeRideStarted)
	require.Len(t, notes, 1)
	assert.Equal(t, f.employee.UserID, notes[0].UserID)
}

func TestStart_WithoutPassengersInvalidState(t *testing.T) {
	f := newFixture(t, 1.0)
	r := f.createRide(t)

	_, err := f.svc.Start(context.Background(), f.driver, r.ID)
	assertAppError(t, err, http.StatusUnprocessableEntity, "INVALID_STATE")
}

func TestUpdateProgress(t *testing.T) {
	f := newFixture(t, 1.0)
	r := f.seatPassenger(t)
	_, err := f.svc.Start(context.Background(), f.driver, r.ID)
	require.NoError(t, err)

	lat, lon, progress := 37.70, -122.40, 0.4
	updated, err := f.svc.UpdateProgress(context.Background(), f.driver, r.ID, ProgressInput{
		CurrentLatitude:  &lat,
		CurrentLongitude: &lon,
		Progress:         &progress,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.CurrentLatitude)
	assert.Equal(t, lat, *updated.CurrentLatitude)
	assert.Equal(t, 0.4, updated.RideProgress)

	// progress is clamped to the unit interval
	over := 1.7
	updated, err = f.svc.UpdateProgress(context.Background(), f.driver, r.ID, ProgressInput{Progress: &over})
	require.NoError(t, err)
	assert.Equal(t, 1.0, updated.RideProgress)
}

func TestUpdateProgress_RequiresInProgress(t *testing.T) {
	f := newFixture(t, 1.0)
	r := f.seatPassenger(t)

	p := 0.2
	_, err := f.svc.UpdateProgress(context.Background(), f.driver, r.ID, ProgressInput{Progress: &p})
	assertAppError(t, err, http.StatusUnprocessableEntity, "INVALID_STATE")
}

func TestPickup(t *testing.T) {
	f := newFixture(t, 1.0)
	r := f.seatPassenger(t)
	_, err := f.svc.Start(context.Background(), f.driver, r.ID)
	require.NoError(t, err)

	picked, err := f.svc.Pickup(context.Background(), f.driver, r.ID)
	require.NoError(t, err)
	require.NotNil(t, picked.PickupTime)
	assert.Equal(t, 0.5, picked.RideProgress)
}

func TestComplete(t *testing.T) {
	f := newFixture(t, 1.0)
	r := f.seatPassenger(t)
	_, err := f.svc.Start(context.Background(), f.driver, r.ID)
	require.NoError(t, err)

	done, err := f.svc.Complete(context.Background(), f.driver, r.ID)
	require.NoError(t, err)
	assert.Equal(t, ride.StatusCompleted, done.Status)
	assert.Equal(t, 1.0, done.RideProgress)
	require.NotNil(t, done.ActualEndTime)
	require.NotNil(t, done.Fare)
	assert.Greater(t, *done.Fare, 0.0)
	assert.Equal(t, ride.PaymentPaid, done.PaymentStatus)

	completions := f.notifier.byType(notification.TypeRideCompleted)
	require.Len(t, completions, 1)
	payments := f.notifier.byType(notification.TypePaymentProcessed)
	require.Len(t, payments, 1)
	assert.Equal(t, f.employee.UserID, payments[0].UserID)
}

func TestComplete_PaymentFailureDoesNotBlockCompletion(t *testing.T) {
	f := newFixture(t, 0.0) // every simulated charge declines
	r := f.seatPassenger(t)
	_, err := f.svc.Start(context.Background(), f.driver, r.ID)
	require.NoError(t, err)

	done, err := f.svc.Complete(context.Background(), f.driver, r.ID)
	require.NoError(t, err, "a declined payment must not block the ride transition")
	assert.Equal(t, ride.StatusCompleted, done.Status)
	assert.Equal(t, ride.PaymentFailed, done.PaymentStatus)

	failures := f.notifier.byType(notification.TypePaymentFailed)
	require.Len(t, failures, 1)
	assert.Equal(t, notification.PriorityUrgent, failures[0].Priority)
}

func TestComplete_RequiresInProgress(t *testing.T) {
	f := newFixture(t, 1.0)
	r := f.seatPassenger(t)

	_, err := f.svc.Complete(context.Background(), f.driver, r.ID)
	assertAppError(t, err, http.StatusUnprocessableEntity, "INVALID_STATE")
}

func TestCancelRide_FromAvailableAndConfirmed(t *testing.T) {
	f := newFixture(t, 1.0)

	available := f.createRide(t)
	cancelled, err := f.svc.CancelRide(context.Background(), f.driver, available.ID)
	require.NoError(t, err)
	assert.Equal(t, ride.StatusCancelled, cancelled.Status)

	confirmed := f.seatPassenger(t)
	cancelled, err = f.svc.CancelRide(context.Background(), f.driver, confirmed.ID)
	require.NoError(t, err)
	assert.Equal(t, ride.StatusCancelled, cancelled.Status)

	notes := f.notifier.byType(notification.TypeRideCancelled)
	require.Len(t, notes, 1)
	assert.Equal(t, f.employee.UserID, notes[0].UserID)
}

func TestCancelRide_InProgressInvalidState(t *testing.T) {
	f := newFixture(t, 1.0)
	r := f.seatPassenger(t)
	_, err := f.svc.Start(context.Background(), f.driver, r.ID)
	require.NoError(t, err)

	_, err = f.svc.CancelRide(context.Background(), f.driver, r.ID)
	assertAppError(t, err, http.StatusUnprocessableEntity, "INVALID_STATE")
}

func TestCancelRide_TerminalInvalidState(t *testing.T) {
	f := newFixture(t, 1.0)
	r := f.createRide(t)
	_, err := f.svc.CancelRide(context.Background(), f.driver, r.ID)
	require.NoError(t, err)

	_, err = f.svc.CancelRide(context.Background(), f.driver, r.ID)
	assertAppError(t, err, http.StatusUnprocessableEntity, "INVALID_STATE")
}

func TestCancelRide_CascadesPendingRequests(t *testing.T) {
	f := newFixture(t, 1.0)
	r := f.createRide(t)
	req := f.requestSeat(t, f.employee, r.ID)

	_, err := f.svc.CancelRide(context.Background(), f.driver, r.ID)
	require.NoError(t, err)

	got, err := f.requests.GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, ride.RequestCancelled, got.Status)
}

func (f *fixture) completeRide(t *testing.T) *ride.Ride {
	t.Helper()
	r := f.seatPassenger(t)
	_, err := f.svc.Start(context.Background(), f.driver, r.ID)
	require.NoError(t, err)
	done, err := f.svc.Complete(context.Background(), f.driver, r.ID)
	require.NoError(t, err)
	return done
}

func TestRate(t *testing.T) {
	f := newFixture(t, 1.0)
	r := f.completeRide(t)

	rated, err := f.svc.Rate(context.Background(), f.employee, r.ID, 4.5, "smooth ride")
	require.NoError(t, err)
	require.NotNil(t, rated.Rating)
	assert.Equal(t, 4.5, *rated.Rating)
	assert.Equal(t, "smooth ride", rated.Feedback)
}

func TestRate_OnceOnly(t *testing.T) {
	f := newFixture(t, 1.0)
	r := f.completeRide(t)

	_, err := f.svc.Rate(context.Background(), f.employee, r.ID, 5, "")
	require.NoError(t, err)

	_, err = f.svc.Rate(context.Background(), f.employee, r.ID, 3, "")
	assertAppError(t, err, http.StatusConflict, "CONFLICT")
}

func TestRate_OutOfRange(t *testing.T) {
	f := newFixture(t, 1.0)
	r := f.completeRide(t)

	_, err := f.svc.Rate(context.Background(), f.employee, r.ID, 0.5, "")
	assertAppError(t, err, http.StatusBadRequest, "BAD_REQUEST")

	_, err = f.svc.Rate(context.Background(), f.employee, r.ID, 5.5, "")
	assertAppError(t, err, http.StatusBadRequest, "BAD_REQUEST")
}

func TestRate_PassengerOnly(t *testing.T) {
	f := newFixture(t, 1.0)
	r := f.completeRide(t)

	_, err := f.svc.Rate(context.Background(), f.employee2, r.ID, 4, "")
	assertAppError(t, err, http.StatusForbidden, "FORBIDDEN")
}

func TestRate_CompletedOnly(t *testing.T) {
	f := newFixture(t, 1.0)
	r := f.seatPassenger(t)

	_, err := f.svc.Rate(context.Background(), f.employee, r.ID, 4, "")
	assertAppError(t, err, http.StatusUnprocessableEntity, "INVALID_STATE")
}
