package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/courtside-api/internal/models"
)

func newTournamentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func storedTournament() *models.Tournament {
	return &models.Tournament{
		ID:           "trn-1",
		Title:        "Spring Open",
		Sport:        "tennis",
		Status:       models.TournamentStatusUpcoming,
		Format:       models.FormatSolo,
		CurrentRound: 1,
		Version:      1,
	}
}

func TestTournamentRepositoryList(t *testing.T) {
	db, mock, cleanup := newTournamentRepoMock(t)
	defer cleanup()
	repo := NewTournamentRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "title", "description", "sport", "venue_name", "venue_city", "start_date", "end_date",
		"registration_open_at", "registration_close_at", "max_participants", "entry_fee", "currency",
		"status", "visibility", "format", "current_round", "created_by", "version", "created_at", "updated_at",
	}).AddRow(
		"trn-1", "Spring Open", "", "tennis", "Center Court", "Austin", now, now.AddDate(0, 0, 2),
		nil, nil, 16, "100.00", "USD",
		models.TournamentStatusUpcoming, models.VisibilityPublic, models.FormatSolo, 1, "admin-1", 1, now, now,
	)
	mock.ExpectQuery("SELECT (.+) FROM tournaments WHERE status = \\$1 ORDER BY start_date ASC").
		WithArgs(models.TournamentStatusUpcoming).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM tournaments WHERE status = $1")).
		WithArgs(models.TournamentStatusUpcoming).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	tournaments, total, err := repo.List(context.Background(), models.TournamentFilter{Status: models.TournamentStatusUpcoming})
	require.NoError(t, err)
	assert.Len(t, tournaments, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Spring Open", tournaments[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTournamentRepositoryAppendRegistrationVersionConflict(t *testing.T) {
	db, mock, cleanup := newTournamentRepoMock(t)
	defer cleanup()
	repo := NewTournamentRepository(db)
	tournament := storedTournament()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE tournaments").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	reg := &models.Registration{Student: "stu-1", FullName: "A Student", Format: models.FormatSolo}
	err := repo.AppendRegistration(context.Background(), tournament, reg)
	require.ErrorIs(t, err, ErrVersionConflict)
	assert.Equal(t, 1, tournament.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTournamentRepositoryAppendSoloRegistrationNullTeamName(t *testing.T) {
	db, mock, cleanup := newTournamentRepoMock(t)
	defer cleanup()
	repo := NewTournamentRepository(db)
	tournament := storedTournament()

	registeredAt := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE tournaments").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO tournament_registrations").
		WithArgs(sqlmock.AnyArg(), tournament.ID, "stu-1", "A Student", "a@example.com", "555-0100", "2005-01-15",
			"", "", nil, models.FormatSolo, registeredAt, models.RegistrationStatusRegistered).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	reg := &models.Registration{
		Student:      "stu-1",
		FullName:     "A Student",
		Email:        "a@example.com",
		Phone:        "555-0100",
		DOB:          "2005-01-15",
		Format:       models.FormatSolo,
		RegisteredAt: registeredAt,
		Status:       models.RegistrationStatusRegistered,
	}
	err := repo.AppendRegistration(context.Background(), tournament, reg)
	require.NoError(t, err)
	assert.Equal(t, 2, tournament.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTournamentRepositoryInsertMatches(t *testing.T) {
	db, mock, cleanup := newTournamentRepoMock(t)
	defer cleanup()
	repo := NewTournamentRepository(db)
	tournament := storedTournament()
	tournament.Status = models.TournamentStatusOngoing

	matches := []models.Match{
		{Round: 1, MatchNumber: 1, SlotIndex: 0, Court: "TBD", Status: models.MatchStatusUpcoming,
			PlayerA: &models.Entrant{Kind: models.EntrantIndividual, ID: "stu-1"},
			PlayerB: &models.Entrant{Kind: models.EntrantIndividual, ID: "stu-2"}},
		{Round: 2, MatchNumber: 2, SlotIndex: 0, Court: "TBD", Status: models.MatchStatusUpcoming},
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE tournaments").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO tournament_matches").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO tournament_matches").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.InsertMatches(context.Background(), tournament, matches)
	require.NoError(t, err)
	assert.Equal(t, 2, tournament.Version)
	for i := range matches {
		assert.NotEmpty(t, matches[i].ID)
		assert.Equal(t, tournament.ID, matches[i].TournamentID)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTournamentRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newTournamentRepoMock(t)
	defer cleanup()
	repo := NewTournamentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM tournament_matches").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM tournament_registrations").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM tournaments").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
