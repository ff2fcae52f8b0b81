package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/courtside-api/internal/models"
)

func newEnrollmentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func enrollmentAggregate() *models.Enrollment {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return &models.Enrollment{
		ID:        "enr-1",
		StudentID: "stu-1",
		CoachID:   "coach-1",
		ProgramID: "prog-1",
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 30),
		Status:    models.EnrollmentStatusActive,
		Payment: models.Payment{
			PaymentType:   models.PaymentTypePerSession,
			PaymentStatus: models.PaymentStatusPending,
			TotalAmount:   decimal.RequireFromString("500.00"),
		},
		Sessions: []models.Session{
			{Index: 1, Slot: "morning", Status: models.SessionStatusPending},
			{Index: 2, Slot: "morning", Status: models.SessionStatusPending},
		},
		Version:   1,
		CreatedAt: start,
		UpdatedAt: start,
	}
}

func TestEnrollmentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)
	enrollment := enrollmentAggregate()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO enrollments").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO sessions").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO sessions").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), enrollment)
	require.NoError(t, err)
	for i := range enrollment.Sessions {
		assert.NotEmpty(t, enrollment.Sessions[i].ID)
		assert.Equal(t, enrollment.ID, enrollment.Sessions[i].EnrollmentID)
		assert.Equal(t, enrollment.CoachID, enrollment.Sessions[i].CoachID)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositorySaveBumpsVersion(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)
	enrollment := enrollmentAggregate()
	enrollment.Sessions[0].ID = "sess-1"
	enrollment.Sessions[1].ID = "sess-2"
	enrollment.Payment.Transactions = []models.Transaction{
		{Amount: decimal.RequireFromString("50.00"), Date: time.Now().UTC(), Type: models.TransactionTypePayment},
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE enrollments").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE sessions").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE sessions").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO payment_transactions").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Save(context.Background(), enrollment)
	require.NoError(t, err)
	assert.Equal(t, 2, enrollment.Version)
	assert.NotEmpty(t, enrollment.Payment.Transactions[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositorySaveVersionConflict(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)
	enrollment := enrollmentAggregate()
	enrollment.Sessions = nil

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE enrollments").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Save(context.Background(), enrollment)
	require.ErrorIs(t, err, ErrVersionConflict)
	assert.Equal(t, 1, enrollment.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositorySaveSlotUniqueViolation(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)
	enrollment := enrollmentAggregate()
	enrollment.Sessions = enrollment.Sessions[:1]
	enrollment.Sessions[0].ID = "sess-1"
	date := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	enrollment.Sessions[0].SessionDate = &date

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE enrollments").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE sessions").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "uq_sessions_coach_day_slot"})
	mock.ExpectRollback()

	err := repo.Save(context.Background(), enrollment)
	require.ErrorIs(t, err, ErrSlotTaken)
	assert.Equal(t, 1, enrollment.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCoachSlotTaken(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)
	day := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM sessions s")).
		WithArgs("coach-1", models.EnrollmentStatusActive, "morning", day, day.Add(24*time.Hour)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	taken, err := repo.CoachSlotTaken(context.Background(), "coach-1", day, "morning")
	require.NoError(t, err)
	assert.True(t, taken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCoachSlotFree(t *testing.T) {
	db, mock, cleanup := newEnrollmentRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)
	day := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM sessions s")).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	taken, err := repo.CoachSlotTaken(context.Background(), "coach-1", day, "evening")
	require.NoError(t, err)
	assert.False(t, taken)
	assert.NoError(t, mock.ExpectationsWereMet())
}
