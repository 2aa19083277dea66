package ride

import "errors"

var (
	ErrRideNotFound    = errors.New("ride not found")
	ErrRequestNotFound = errors.New("ride request not found")

	ErrNotDriver        = errors.New("caller is not a driver")
	ErrNotRideDriver    = errors.New("caller is not the ride's driver")
	ErrDriverCannotJoin = errors.New("drivers cannot request seats")

	ErrRideFull          = errors.New("ride capacity exhausted")
	ErrDuplicateRequest  = errors.New("request already exists for this ride and user")
	ErrRequestNotPending = errors.New("request is not pending")

	ErrNotAvailable  = errors.New("ride is not accepting requests")
	ErrNotConfirmed  = errors.New("ride is not confirmed")
	ErrNotInProgress = errors.New("ride is not in progress")
	ErrTerminalState = errors.New("ride is in a terminal state")

	ErrAlreadyRated = errors.New("ride already rated")
	ErrNotPassenger = errors.New("caller was not a confirmed passenger")

	ErrInvalidCapacity = errors.New("vehicle capacity must be at least 1")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
)
