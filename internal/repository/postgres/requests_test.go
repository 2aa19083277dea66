package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amanmaurya/corporate-rideshare-platform/internal/domain/ride"
)

func sampleRequest() *ride.Request {
	now := time.Now().UTC()
	return &ride.Request{
		ID:        uuid.New(),
		RideID:    uuid.New(),
		UserID:    uuid.New(),
		Status:    ride.RequestPending,
		Message:   "room for one more?",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestRequestRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRequestRepository(db)
	req := sampleRequest()

	mock.ExpectExec("INSERT INTO ride_requests").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), req))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepository_GetByRideAndUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRequestRepository(db)
	req := sampleRequest()

	rows := sqlmock.NewRows([]string{"id", "ride_id", "user_id", "status", "message"}).
		AddRow(req.ID.String(), req.RideID.String(), req.UserID.String(), string(req.Status), req.Message)
	mock.ExpectQuery("SELECT (.+) FROM ride_requests WHERE ride_id = \\$1 AND user_id = \\$2").
		WithArgs(req.RideID, req.UserID).
		WillReturnRows(rows)

	got, err := repo.GetByRideAndUser(context.Background(), req.RideID, req.UserID)

	require.NoError(t, err)
	assert.Equal(t, req.ID, got.ID)
	assert.Equal(t, ride.RequestPending, got.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepository_GetByRideAndUser_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRequestRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM ride_requests WHERE ride_id").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByRideAndUser(context.Background(), uuid.New(), uuid.New())

	assert.ErrorIs(t, err, ride.ErrRequestNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepository_Update(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRequestRepository(db)
	req := sampleRequest()
	req.Status = ride.RequestAccepted

	mock.ExpectExec("UPDATE ride_requests SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), req))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepository_Delete_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRequestRepository(db)
	id := uuid.New()

	mock.ExpectExec("DELETE FROM ride_requests WHERE id").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), id)

	assert.ErrorIs(t, err, ride.ErrRequestNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepository_ListByRide(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRequestRepository(db)
	rideID := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "ride_id", "status"}).
		AddRow(uuid.NewString(), rideID.String(), string(ride.RequestPending)).
		AddRow(uuid.NewString(), rideID.String(), string(ride.RequestAccepted))
	mock.ExpectQuery("SELECT (.+) FROM ride_requests WHERE ride_id").
		WithArgs(rideID).
		WillReturnRows(rows)

	reqs, err := repo.ListByRide(context.Background(), rideID)

	require.NoError(t, err)
	assert.Len(t, reqs, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
