package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amanmaurya/corporate-rideshare-platform/internal/domain/ride"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func sampleRide() *ride.Ride {
	now := time.Now().UTC()
	return &ride.Ride{
		ID:                   uuid.New(),
		CompanyID:            uuid.New(),
		DriverID:             uuid.New(),
		PickupLocation:       "HQ",
		Destination:          "Airport",
		PickupLatitude:       37.7749,
		PickupLongitude:      -122.4194,
		DestinationLatitude:  37.6213,
		DestinationLongitude: -122.3790,
		VehicleCapacity:      3,
		Status:               ride.StatusAvailable,
		PaymentStatus:        ride.PaymentPending,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

func TestRideRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRideRepository(db)
	r := sampleRide()

	mock.ExpectExec("INSERT INTO rides").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), r)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRideRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRideRepository(db)
	r := sampleRide()

	rows := sqlmock.NewRows([]string{"id", "company_id", "driver_id", "status", "vehicle_capacity", "confirmed_passengers"}).
		AddRow(r.ID.String(), r.CompanyID.String(), r.DriverID.String(), string(r.Status), r.VehicleCapacity, 1)
	mock.ExpectQuery("SELECT (.+) FROM rides WHERE id").
		WithArgs(r.ID).
		WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), r.ID)

	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, ride.StatusAvailable, got.Status)
	assert.Equal(t, 1, got.ConfirmedPassengers)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRideRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRideRepository(db)
	id := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM rides WHERE id").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), id)

	assert.ErrorIs(t, err, ride.ErrRideNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRideRepository_Update_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRideRepository(db)
	r := sampleRide()

	mock.ExpectExec("UPDATE rides SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), r)

	assert.ErrorIs(t, err, ride.ErrRideNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRideRepository_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRideRepository(db)
	id := uuid.New()

	mock.ExpectExec("DELETE FROM rides WHERE id").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRideRepository_ListByCompany_StatusFilter(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRideRepository(db)
	companyID := uuid.New()
	status := ride.StatusAvailable

	rows := sqlmock.NewRows([]string{"id", "company_id", "status"}).
		AddRow(uuid.NewString(), companyID.String(), string(status)).
		AddRow(uuid.NewString(), companyID.String(), string(status))
	mock.ExpectQuery("SELECT (.+) FROM rides WHERE company_id = \\$1 AND status = \\$2").
		WithArgs(companyID, status).
		WillReturnRows(rows)

	rides, err := repo.ListByCompany(context.Background(), companyID, ride.ListFilter{Status: &status})

	require.NoError(t, err)
	assert.Len(t, rides, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRideRepository_ListByDriver(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRideRepository(db)
	driverID := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "driver_id"}).
		AddRow(uuid.NewString(), driverID.String())
	mock.ExpectQuery("SELECT (.+) FROM rides WHERE driver_id").
		WithArgs(driverID).
		WillReturnRows(rows)

	rides, err := repo.ListByDriver(context.Background(), driverID)

	require.NoError(t, err)
	assert.Len(t, rides, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
