package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/amanmaurya/corporate-rideshare-platform/internal/auth"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/domain/notification"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/domain/payment"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/domain/ride"
	"github.com/amanmaurya/corporate-rideshare-platform/internal/observability"
	"github.com/amanmaurya/corporate-rideshare-platform/pkg/errors"
	"github.com/amanmaurya/corporate-rideshare-platform/pkg/logger"
)

// Start moves a confirmed ride with at least one passenger into
// in_progress.
func (s *Service) Start(ctx context.Context, id auth.Identity, rideID uuid.UUID) (*ride.Ride, error) {
	unlock := s.lockRide(rideID)
	defer unlock()

	r, err := s.getVisible(ctx, id, rideID)
	if err != nil {
		return nil, err
	}
	if r.DriverID != id.UserID {
		return nil, errors.Forbidden("only the ride's driver can start it", ride.ErrNotRideDriver)
	}
	if !r.CanStart() {
		return nil, errors.InvalidState("ride must be confirmed with at least one passenger before starting", ride.ErrNotConfirmed)
	}

	now := time.Now().UTC()
	r.Status = ride.StatusInProgress
	r.ActualStartTime = &now
	r.RideProgress = 0
	r.UpdatedAt = now

	if err := s.rides.Update(ctx, r); err != nil {
		return nil, errors.Internal("could not update ride", err)
	}

	observability.RideTransitionsTotal.WithLabelValues(string(ride.StatusInProgress)).Inc()
	s.publish(ctx, "ride.started", r, id.UserID)
	s.notifyPassengers(ctx, r, notification.TypeRideStarted, "Ride started",
		fmt.Sprintf("Your ride to %s is underway", r.Destination), nil)
	s.log.Info("ride started", logger.String("ride_id", r.ID.String()))
	return r, nil
}

// ProgressInput patches in-flight tracking fields. Nil pointers leave
// the field untouched; Progress is a 0..1 fraction of the route.
type ProgressInput struct {
	CurrentLatitude      *float64
	CurrentLongitude     *float64
	Progress             *float64
	EstimatedPickupTime  *time.Time
	EstimatedDropoffTime *time.Time
}

// UpdateProgress patches position and progress while the ride is
// underway.
func (s *Service) UpdateProgress(ctx context.Context, id auth.Identity, rideID uuid.UUID, in ProgressInput) (*ride.Ride, error) {
	unlock := s.lockRide(rideID)
	defer unlock()

	r, err := s.getVisible(ctx, id, rideID)
	if err != nil {
		return nil, err
	}
	if r.DriverID != id.UserID {
		return nil, errors.Forbidden("only the ride's driver can report progress", ride.ErrNotRideDriver)
	}
	if r.Status != ride.StatusInProgress {
		return nil, errors.InvalidState("ride must be in progress to report progress", ride.ErrNotInProgress)
	}

	if in.CurrentLatitude != nil {
		r.CurrentLatitude = in.CurrentLatitude
	}
	if in.CurrentLongitude != nil {
		r.CurrentLongitude = in.CurrentLongitude
	}
	if in.Progress != nil {
		p := *in.Progress
		if p < 0 {
			p = 0
		}
		if p > 1 {
			p = 1
		}
		r.RideProgress = p
	}
	if in.EstimatedPickupTime != nil {
		r.EstimatedPickupTime = in.EstimatedPickupTime
	}
	if in.EstimatedDropoffTime != nil {
		r.EstimatedDropoffTime = in.EstimatedDropoffTime
	}
	r.UpdatedAt = time.Now().UTC()

	if err := s.rides.Update(ctx, r); err != nil {
		return nil, errors.Internal("could not update ride", err)
	}
	return r, nil
}

// Pickup marks passengers as collected: progress jumps to the halfway
// point and the pickup time is stamped.
func (s *Service) Pickup(ctx context.Context, id auth.Identity, rideID uuid.UUID) (*ride.Ride, error) {
	unlock := s.lockRide(rideID)
	defer unlock()

	r, err := s.getVisible(ctx, id, rideID)
	if err != nil {
		return nil, err
	}
	if r.DriverID != id.UserID {
		return nil, errors.Forbidden("only the ride's driver can record pickup", ride.ErrNotRideDriver)
	}
	if r.Status != ride.StatusInProgress {
		return nil, errors.InvalidState("ride must be in progress to record pickup", ride.ErrNotInProgress)
	}

	now := time.Now().UTC()
	r.PickupTime = &now
	r.RideProgress = 0.5
	r.UpdatedAt = now

	if err := s.rides.Update(ctx, r); err != nil {
		return nil, errors.Internal("could not update ride", err)
	}
	return r, nil
}

// Complete finishes an in-progress ride: the fare is settled against
// every seated passenger and completion is fanned out. Payment and
// notification failures never fail the transition.
func (s *Service) Complete(ctx context.Context, id auth.Identity, rideID uuid.UUID) (*ride.Ride, error) {
	unlock := s.lockRide(rideID)
	defer unlock()

	r, err := s.getVisible(ctx, id, rideID)
	if err != nil {
		return nil, err
	}
	if r.DriverID != id.UserID {
		return nil, errors.Forbidden("only the ride's driver can complete it", ride.ErrNotRideDriver)
	}
	if !r.CanComplete() {
		return nil, errors.InvalidState("ride must be in progress before completing", ride.ErrNotInProgress)
	}

	now := time.Now().UTC()
	duration := 0
	if r.ActualStartTime != nil {
		duration = int(now.Sub(*r.ActualStartTime).Minutes())
	} else if r.DurationMinutes != nil {
		duration = *r.DurationMinutes
	}
	fare := s.fares.QuoteFare(r.DistanceKM, duration)

	r.Status = ride.StatusCompleted
	r.ActualEndTime = &now
	r.DropoffTime = &now
	r.RideProgress = 1
	r.DurationMinutes = &duration
	r.Fare = &fare
	r.UpdatedAt = now

	passengers, err := s.acceptedPassengers(ctx, rideID)
	if err != nil {
		return nil, err
	}
	r.PaymentStatus = s.settleFares(ctx, r, passengers, fare)

	if err := s.rides.Update(ctx, r); err != nil {
		return nil, errors.Internal("could not update ride", err)
	}

	observability.RideTransitionsTotal.WithLabelValues(string(ride.StatusCompleted)).Inc()
	s.nr.RecordRideCompleted(r.ID.String(), fare, r.DistanceKM, duration)
	s.publish(ctx, "ride.completed", r, id.UserID)
	s.notifyPassengers(ctx, r, notification.TypeRideCompleted, "Ride completed",
		fmt.Sprintf("Your ride to %s is complete", r.Destination),
		&notification.Payload{RideID: &r.ID, Amount: &fare})
	s.log.Info("ride completed",
		logger.String("ride_id", r.ID.String()),
		logger.Float64("fare", fare),
		logger.Int("duration_minutes", duration),
	)
	return r, nil
}

// CancelRide cancels an offered or confirmed ride and soft-cancels its
// pending requests.
func (s *Service) CancelRide(ctx context.Context, id auth.Identity, rideID uuid.UUID) (*ride.Ride, error) {
	unlock := s.lockRide(rideID)
	defer unlock()

	r, err := s.getVisible(ctx, id, rideID)
	if err != nil {
		return nil, err
	}
	if r.DriverID != id.UserID && !id.IsAdmin {
		return nil, errors.Forbidden("only the ride's driver can cancel it", ride.ErrNotRideDriver)
	}
	if !r.CanCancel() {
		if r.Status == ride.StatusInProgress {
			return nil, errors.InvalidState("an in-progress ride cannot be cancelled", ride.ErrNotInProgress)
		}
		return nil, errors.InvalidState("ride is already finished", ride.ErrTerminalState)
	}

	now := time.Now().UTC()
	r.Status = ride.StatusCancelled
	r.UpdatedAt = now

	if err := s.rides.Update(ctx, r); err != nil {
		return nil, errors.Internal("could not update ride", err)
	}

	// cascade: open requests are closed out, accepted passengers notified
	reqs, err := s.requests.ListByRide(ctx, rideID)
	if err != nil {
		s.log.Warn("listing requests for cancel cascade failed", logger.Err(err))
		reqs = nil
	}
	for _, req := range reqs {
		if req.IsPending() {
			req.Status = ride.RequestCancelled
			req.UpdatedAt = now
			if err := s.requests.Update(ctx, req); err != nil {
				s.log.Warn("request cascade update failed",
					logger.String("request_id", req.ID.String()),
					logger.Err(err),
				)
			}
		}
		if req.Status == ride.RequestAccepted || req.Status == ride.RequestCancelled {
			s.notify(ctx, &notification.Notification{
				UserID:    req.UserID,
				CompanyID: r.CompanyID,
				Type:      notification.TypeRideCancelled,
				Title:     "Ride cancelled",
				Message:   fmt.Sprintf("The ride to %s was cancelled", r.Destination),
				Priority:  notification.PriorityHigh,
				Payload:   notification.Payload{RideID: &r.ID},
				CreatedAt: now,
			})
		}
	}

	observability.RideTransitionsTotal.WithLabelValues(string(ride.StatusCancelled)).Inc()
	s.publish(ctx, "ride.cancelled", r, id.UserID)
	s.log.Info("ride cancelled", logger.String("ride_id", r.ID.String()))
	return r, nil
}

// Rate records a completed ride's rating. Only a seated passenger may
// rate, once.
func (s *Service) Rate(ctx context.Context, id auth.Identity, rideID uuid.UUID, rating float64, feedback string) (*ride.Ride, error) {
	if rating < 1 || rating > 5 {
		return nil, errors.BadRequest("rating must be between 1 and 5", ride.ErrInvalidRating)
	}

	unlock := s.lockRide(rideID)
	defer unlock()

	r, err := s.getVisible(ctx, id, rideID)
	if err != nil {
		return nil, err
	}
	if r.Status != ride.StatusCompleted {
		return nil, errors.InvalidState("only completed rides can be rated", ride.ErrTerminalState)
	}
	if r.Rating != nil {
		return nil, errors.Conflict("ride has already been rated", ride.ErrAlreadyRated)
	}

	req, err := s.requests.GetByRideAndUser(ctx, rideID, id.UserID)
	if err != nil || req.Status != ride.RequestAccepted {
		return nil, errors.Forbidden("only a seated passenger can rate the ride", ride.ErrNotPassenger)
	}

	r.Rating = &rating
	r.Feedback = feedback
	r.UpdatedAt = time.Now().UTC()

	if err := s.rides.Update(ctx, r); err != nil {
		return nil, errors.Internal("could not update ride", err)
	}
	s.log.Info("ride rated",
		logger.String("ride_id", r.ID.String()),
		logger.Float64("rating", rating),
	)
	return r, nil
}

// acceptedPassengers returns the requests currently holding seats.
func (s *Service) acceptedPassengers(ctx context.Context, rideID uuid.UUID) ([]*ride.Request, error) {
	reqs, err := s.requests.ListByRide(ctx, rideID)
	if err != nil {
		return nil, errors.Internal("could not list seat requests", err)
	}
	seated := reqs[:0:0]
	for _, req := range reqs {
		if req.Status == ride.RequestAccepted {
			seated = append(seated, req)
		}
	}
	return seated, nil
}

// settleFares charges every seated passenger and reports the aggregate
// outcome. Gateway failures mark the ride's payment failed but never
// block completion.
func (s *Service) settleFares(ctx context.Context, r *ride.Ride, passengers []*ride.Request, fare float64) ride.PaymentStatus {
	if s.processor == nil || len(passengers) == 0 {
		return ride.PaymentPending
	}

	status := ride.PaymentPaid
	for _, req := range passengers {
		p, err := s.processor.Process(ctx, payment.Charge{
			RideID:      r.ID,
			UserID:      req.UserID,
			CompanyID:   r.CompanyID,
			Amount:      fare,
			Method:      payment.Method(r.PaymentMethod),
			Description: fmt.Sprintf("Ride to %s", r.Destination),
		})
		if err != nil {
			s.log.Warn("payment processing failed",
				logger.String("ride_id", r.ID.String()),
				logger.String("user_id", req.UserID.String()),
				logger.Err(err),
			)
			status = ride.PaymentFailed
			continue
		}

		s.nr.RecordPaymentProcessed(p.Amount, string(p.Method), string(p.Status))
		if p.Status == payment.StatusCompleted {
			s.notify(ctx, &notification.Notification{
				UserID:    req.UserID,
				CompanyID: r.CompanyID,
				Type:      notification.TypePaymentProcessed,
				Title:     "Payment processed",
				Message:   fmt.Sprintf("Your fare of %.2f %s was charged", p.Amount, p.Currency),
				Payload: notification.Payload{
					RideID:    &r.ID,
					PaymentID: p.ID.String(),
					Amount:    &p.Amount,
				},
				CreatedAt: p.CreatedAt,
			})
		} else {
			status = ride.PaymentFailed
			s.notify(ctx, &notification.Notification{
				UserID:    req.UserID,
				CompanyID: r.CompanyID,
				Type:      notification.TypePaymentFailed,
				Title:     "Payment failed",
				Message:   "Your fare could not be charged; please update your payment method",
				Priority:  notification.PriorityUrgent,
				Payload: notification.Payload{
					RideID:        &r.ID,
					PaymentID:     p.ID.String(),
					FailureReason: p.FailureReason,
				},
				CreatedAt: p.CreatedAt,
			})
		}
	}
	return status
}

// notifyPassengers fans a notification out to every seated passenger.
func (s *Service) notifyPassengers(ctx context.Context, r *ride.Ride, typ notification.Type, title, message string, payload *notification.Payload) {
	passengers, err := s.acceptedPassengers(ctx, r.ID)
	if err != nil {
		s.log.Warn("listing passengers for notification failed", logger.Err(err))
		return
	}
	body := notification.Payload{RideID: &r.ID}
	if payload != nil {
		body = *payload
	}
	for _, req := range passengers {
		s.notify(ctx, &notification.Notification{
			UserID:    req.UserID,
			CompanyID: r.CompanyID,
			Type:      typ,
			Title:     title,
			Message:   message,
			Payload:   body,
			CreatedAt: time.Now().UTC(),
		})
	}
}
