package lifecycle

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/amanmaurya/corporate-rideshare-platform/internal/auth"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/domain/notification"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/domain/ride"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/observability"
	"github.com/amanmaurya/corporate-rideshare-platform/pkg/errors"
	"github.com/amanmaurya/corporate-rideshare-platform/pkg/logger"
	"github.com/amanmaurya/corporate-rideshare-platform/pkg/realtime"
)

// RequestSeat files a pending seat request on an available ride. One
// request per (ride, user) pair; the ride's own driver cannot join.
func (s *Service) RequestSeat(ctx context.Context, id auth.Identity, rideID uuid.UUID, message string) (*ride.Request, error) {
	unlock := s.lockRide(rideID)
	defer unlock()

	r, err := s.getVisible(ctx, id, rideID)
	if err != nil {
		return nil, err
	}
	if r.DriverID == id.UserID {
		return nil, errors.Forbidden("drivers cannot request a seat on their own ride", ride.ErrDriverCannotJoin)
	}
	if !r.CanAcceptRequests() {
		return nil, errors.InvalidState("ride is not accepting seat requests", ride.ErrNotAvailable)
	}
	if !r.HasCapacity() {
		return nil, errors.Full("ride has no free seats", ride.ErrRideFull)
	}

	existing, err := s.requests.GetByRideAndUser(ctx, rideID, id.UserID)
	if err != nil && !stderrors.Is(err, ride.ErrRequestNotFound) {
		return nil, errors.Internal("could not check existing requests", err)
	}
	if existing != nil {
		return nil, errors.Conflict("a request for this ride already exists", ride.ErrDuplicateRequest)
	}

	now := time.Now().UTC()
	req := &ride.Request{
		ID:        uuid.New(),
		RideID:    rideID,
		UserID:    id.UserID,
		Status:    ride.RequestPending,
		Message:   message,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, errors.Internal("could not create seat request", err)
	}

	observability.SeatRequestsTotal.WithLabelValues("requested").Inc()
	if s.offers != nil {
		s.offers.OfferRide(realtime.RideOffer{
			RideID:         r.ID,
			RequestID:      req.ID,
			RequesterID:    id.UserID,
			RequesterName:  id.Name,
			CompanyID:      r.CompanyID,
			PickupLocation: r.PickupLocation,
			Destination:    r.Destination,
			Note:           message,
		})
	}
	s.notify(ctx, &notification.Notification{
		UserID:    r.DriverID,
		CompanyID: r.CompanyID,
		Type:      notification.TypeRideRequest,
		Title:     "New seat request",
		Message:   fmt.Sprintf("%s requested a seat on your ride to %s", id.Name, r.Destination),
		Priority:  notification.PriorityHigh,
		Payload: notification.Payload{
			RideID:         &r.ID,
			RequestID:      &req.ID,
			ActionRequired: true,
		},
		CreatedAt: now,
	})
	s.log.Info("seat requested",
		logger.String("ride_id", rideID.String()),
		logger.String("user_id", id.UserID.String()),
	)
	return req, nil
}

// Accept seats a pending request. The first acceptance confirms the
// ride; later ones fill remaining seats. Runs under the ride lock so
// concurrent acceptances cannot exceed capacity.
func (s *Service) Accept(ctx context.Context, id auth.Identity, requestID uuid.UUID) (*ride.Request, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if stderrors.Is(err, ride.ErrRequestNotFound) {
			return nil, errors.NotFound("seat request not found", err)
		}
		return nil, errors.Internal("could not load seat request", err)
	}

	unlock := s.lockRide(req.RideID)
	defer unlock()

	// reload under the lock; another acceptance may have won the race
	req, err = s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, errors.Internal("could not load seat request", err)
	}
	r, err := s.getVisible(ctx, id, req.RideID)
	if err != nil {
		return nil, err
	}
	if r.DriverID != id.UserID {
		return nil, errors.Forbidden("only the ride's driver can accept requests", ride.ErrNotRideDriver)
	}
	if !req.IsPending() {
		return nil, errors.InvalidState("seat request is no longer pending", ride.ErrRequestNotPending)
	}
	if r.Status.IsTerminal() || r.Status == ride.StatusInProgress {
		return nil, errors.InvalidState("ride is no longer accepting passengers", ride.ErrTerminalState)
	}
	if !r.HasCapacity() {
		observability.SeatRequestsTotal.WithLabelValues("rejected_full").Inc()
		return nil, errors.Full("ride has no free seats", ride.ErrRideFull)
	}

	req.Status = ride.RequestAccepted
	req.UpdatedAt = time.Now().UTC()
	r.ConfirmedPassengers++
	confirmed := r.TryConfirm()
	r.UpdatedAt = req.UpdatedAt

	if err := s.rides.Update(ctx, r); err != nil {
		return nil, errors.Internal("could not update ride", err)
	}
	if err := s.requests.Update(ctx, req); err != nil {
		return nil, errors.Internal("could not update seat request", err)
	}

	observability.SeatRequestsTotal.WithLabelValues("accepted").Inc()
	if confirmed {
		observability.RideTransitionsTotal.WithLabelValues(string(ride.StatusConfirmed)).Inc()
		s.publish(ctx, "ride.confirmed", r, id.UserID)
	}
	s.notify(ctx, &notification.Notification{
		UserID:    req.UserID,
		CompanyID: r.CompanyID,
		Type:      notification.TypeRideAccepted,
		Title:     "Seat confirmed",
		Message:   fmt.Sprintf("%s accepted your request for the ride to %s", id.Name, r.Destination),
		Priority:  notification.PriorityHigh,
		Payload: notification.Payload{
			RideID:     &r.ID,
			RequestID:  &req.ID,
			DriverID:   &r.DriverID,
			DriverName: id.Name,
		},
		CreatedAt: req.UpdatedAt,
	})
	s.log.Info("seat request accepted",
		logger.String("ride_id", r.ID.String()),
		logger.String("request_id", req.ID.String()),
		logger.Int("confirmed_passengers", r.ConfirmedPassengers),
	)
	return req, nil
}

// Reject declines a pending request. Declined is terminal for the
// request; rejecting it again is an invalid-state error, not a no-op.
func (s *Service) Reject(ctx context.Context, id auth.Identity, requestID uuid.UUID) (*ride.Request, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if stderrors.Is(err, ride.ErrRequestNotFound) {
			return nil, errors.NotFound("seat request not found", err)
		}
		return nil, errors.Internal("could not load seat request", err)
	}

	unlock := s.lockRide(req.RideID)
	defer unlock()

	r, err := s.getVisible(ctx, id, req.RideID)
	if err != nil {
		return nil, err
	}
	if r.DriverID != id.UserID {
		return nil, errors.Forbidden("only the ride's driver can reject requests", ride.ErrNotRideDriver)
	}
	if !req.IsPending() {
		return nil, errors.InvalidState("seat request is no longer pending", ride.ErrRequestNotPending)
	}

	req.Status = ride.RequestDeclined
	req.UpdatedAt = time.Now().UTC()
	if err := s.requests.Update(ctx, req); err != nil {
		return nil, errors.Internal("could not update seat request", err)
	}

	observability.SeatRequestsTotal.WithLabelValues("declined").Inc()
	s.notify(ctx, &notification.Notification{
		UserID:    req.UserID,
		CompanyID: r.CompanyID,
		Type:      notification.TypeRideDeclined,
		Title:     "Seat request declined",
		Message:   fmt.Sprintf("Your request for the ride to %s was declined", r.Destination),
		Payload: notification.Payload{
			RideID:    &r.ID,
			RequestID: &req.ID,
		},
		CreatedAt: req.UpdatedAt,
	})
	return req, nil
}

// CancelRequest withdraws the caller's own pending request. Accepted
// seats cannot be withdrawn this way; the request record is removed.
func (s *Service) CancelRequest(ctx context.Context, id auth.Identity, requestID uuid.UUID) error {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if stderrors.Is(err, ride.ErrRequestNotFound) {
			return errors.NotFound("seat request not found", err)
		}
		return errors.Internal("could not load seat request", err)
	}
	if req.UserID != id.UserID {
		return errors.Forbidden("only the requester can cancel a seat request", nil)
	}

	unlock := s.lockRide(req.RideID)
	defer unlock()

	req, err = s.requests.GetByID(ctx, requestID)
	if err != nil {
		if stderrors.Is(err, ride.ErrRequestNotFound) {
			return errors.NotFound("seat request not found", err)
		}
		return errors.Internal("could not load seat request", err)
	}
	if !req.IsPending() {
		return errors.InvalidState("only pending seat requests can be cancelled", ride.ErrRequestNotPending)
	}

	if err := s.requests.Delete(ctx, requestID); err != nil {
		return errors.Internal("could not delete seat request", err)
	}
	observability.SeatRequestsTotal.WithLabelValues("cancelled").Inc()
	s.log.Info("seat request cancelled",
		logger.String("ride_id", req.RideID.String()),
		logger.String("request_id", requestID.String()),
	)
	return nil
}

// ListRequests returns all requests on a ride, driver only.
func (s *Service) ListRequests(ctx context.Context, id auth.Identity, rideID uuid.UUID) ([]*ride.Request, error) {
	r, err := s.getVisible(ctx, id, rideID)
	if err != nil {
		return nil, err
	}
	if r.DriverID != id.UserID && !id.IsAdmin {
		return nil, errors.Forbidden("only the ride's driver can list its requests", ride.ErrNotRideDriver)
	}
	reqs, err := s.requests.ListByRide(ctx, rideID)
	if err != nil {
		return nil, errors.Internal("could not list seat requests", err)
	}
	return reqs, nil
}
