package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/courtside/courtside-api/internal/models"
	"github.com/courtside/courtside-api/internal/repository"
	appErrors "github.com/courtside/courtside-api/pkg/errors"
)

type mockTournamentRepo struct {
	items     map[string]*models.Tournament
	appendErr error
	insertErr error
	updateErr error
}

func (m *mockTournamentRepo) Create(ctx context.Context, t *models.Tournament) error {
	if m.items == nil {
		m.items = make(map[string]*models.Tournament)
	}
	cp := *t
	m.items[t.ID] = &cp
	return nil
}

func (m *mockTournamentRepo) FindByID(ctx context.Context, id string) (*models.Tournament, error) {
	t, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *t
	cp.Registrations = append([]models.Registration(nil), t.Registrations...)
	cp.Matches = append([]models.Match(nil), t.Matches...)
	return &cp, nil
}

func (m *mockTournamentRepo) List(ctx context.Context, filter models.TournamentFilter) ([]models.Tournament, int, error) {
	return nil, 0, nil
}

func (m *mockTournamentRepo) ListByStudent(ctx context.Context, studentID string) ([]models.Tournament, error) {
	return nil, nil
}

func (m *mockTournamentRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

func (m *mockTournamentRepo) AppendRegistration(ctx context.Context, t *models.Tournament, reg *models.Registration) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	stored := m.items[t.ID]
	stored.Registrations = append(stored.Registrations, *reg)
	stored.Version++
	t.Version++
	return nil
}

func (m *mockTournamentRepo) InsertMatches(ctx context.Context, t *models.Tournament, matches []models.Match) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	for i := range matches {
		if matches[i].ID == "" {
			matches[i].ID = matches[i].Court + "-" + string(rune('a'+i))
		}
	}
	stored := m.items[t.ID]
	stored.Status = t.Status
	stored.CurrentRound = t.CurrentRound
	stored.Matches = append([]models.Match(nil), matches...)
	stored.Version++
	t.Version++
	return nil
}

func (m *mockTournamentRepo) UpdateMatches(ctx context.Context, t *models.Tournament, matches ...*models.Match) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	stored := m.items[t.ID]
	stored.Status = t.Status
	stored.CurrentRound = t.CurrentRound
	for _, match := range matches {
		for i := range stored.Matches {
			if stored.Matches[i].ID == match.ID {
				stored.Matches[i] = *match
			}
		}
	}
	stored.Version++
	t.Version++
	return nil
}

func noShuffle(n int, swap func(i, j int)) {}

func newTournamentFixture(t *testing.T, format models.TournamentFormat, maxParticipants int) (*TournamentService, *mockTournamentRepo, *models.Tournament) {
	t.Helper()
	repo := &mockTournamentRepo{}
	service := NewTournamentService(repo, nil, zap.NewNop())
	service.shuffle = noShuffle

	tournament, err := service.Create(context.Background(), "admin-1", CreateTournamentRequest{
		Title:               "City Open",
		Sport:               "badminton",
		VenueName:           "Central Arena",
		StartDate:           time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:             time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		RegistrationOpenAt:  time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		RegistrationCloseAt: time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		MaxParticipants:     maxParticipants,
		EntryFee:            decimal.RequireFromString("25.00"),
		Format:              format,
	})
	require.NoError(t, err)
	return service, repo, tournament
}

func soloRegistration(student string) RegisterRequest {
	return RegisterRequest{
		Student:  student,
		FullName: "Player " + student,
		Email:    student + "@example.com",
		Phone:    "555-0100",
		DOB:      "2005-01-15",
		Format:   models.FormatSolo,
	}
}

func registerN(t *testing.T, service *TournamentService, tournamentID string, n int) {
	t.Helper()
	names := []string{"alice", "bob", "carol", "dave", "erin", "frank", "grace", "henry"}
	for i := 0; i < n; i++ {
		_, err := service.Register(context.Background(), tournamentID, soloRegistration(names[i]))
		require.NoError(t, err)
	}
}

func TestTournamentCreateDefaults(t *testing.T) {
	_, _, tournament := newTournamentFixture(t, models.FormatSolo, 16)
	assert.Equal(t, models.TournamentStatusUpcoming, tournament.Status)
	assert.Equal(t, models.VisibilityPublic, tournament.Visibility)
	assert.Equal(t, "USD", tournament.Currency)
	assert.Equal(t, 1, tournament.CurrentRound)
}

func TestRegisterDuplicateStudent(t *testing.T) {
	service, _, tournament := newTournamentFixture(t, models.FormatSolo, 16)

	_, err := service.Register(context.Background(), tournament.ID, soloRegistration("alice"))
	require.NoError(t, err)

	_, err = service.Register(context.Background(), tournament.ID, soloRegistration("alice"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestRegisterCapacity(t *testing.T) {
	service, _, tournament := newTournamentFixture(t, models.FormatSolo, 2)
	registerN(t, service, tournament.ID, 2)

	_, err := service.Register(context.Background(), tournament.ID, soloRegistration("carol"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTournamentFull.Code, appErrors.FromError(err).Code)
}

func TestRegisterFormatMismatch(t *testing.T) {
	service, _, tournament := newTournamentFixture(t, models.FormatSolo, 16)

	req := soloRegistration("alice")
	req.Format = models.FormatTeam
	team := "Smashers"
	req.TeamName = &team

	_, err := service.Register(context.Background(), tournament.ID, req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRegisterTeamFormatRequiresTeamName(t *testing.T) {
	service, _, tournament := newTournamentFixture(t, models.FormatDuo, 16)

	req := soloRegistration("alice")
	req.Format = models.FormatDuo

	_, err := service.Register(context.Background(), tournament.ID, req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGenerateBracketNeedsTwoEntrants(t *testing.T) {
	service, _, tournament := newTournamentFixture(t, models.FormatSolo, 16)
	registerN(t, service, tournament.ID, 1)

	_, err := service.GenerateBracket(context.Background(), tournament.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGenerateBracketOnlyOnce(t *testing.T) {
	service, _, tournament := newTournamentFixture(t, models.FormatSolo, 16)
	registerN(t, service, tournament.ID, 4)

	generated, err := service.GenerateBracket(context.Background(), tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TournamentStatusOngoing, generated.Status)
	assert.Len(t, generated.Matches, 3)

	_, err = service.GenerateBracket(context.Background(), tournament.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
}

func TestReportResultAdvancesWinner(t *testing.T) {
	service, repo, tournament := newTournamentFixture(t, models.FormatSolo, 16)
	registerN(t, service, tournament.ID, 4)

	generated, err := service.GenerateBracket(context.Background(), tournament.ID)
	require.NoError(t, err)

	var first *models.Match
	for i := range generated.Matches {
		if generated.Matches[i].Round == 1 && generated.Matches[i].SlotIndex == 0 {
			first = &generated.Matches[i]
		}
	}
	require.NotNil(t, first)

	updated, err := service.ReportResult(context.Background(), tournament.ID, first.ID, ReportResultRequest{
		ScoreA: 21,
		ScoreB: 15,
		Winner: first.PlayerA.ID,
	})
	require.NoError(t, err)

	reported := updated.MatchByID(first.ID)
	assert.Equal(t, models.MatchStatusCompleted, reported.Status)
	require.NotNil(t, reported.Winner)
	assert.Equal(t, first.PlayerA.ID, reported.Winner.ID)
	assert.Equal(t, models.EntrantIndividual, reported.Winner.Kind)

	// winner lands in round 2 slot 0
	var final *models.Match
	for i := range updated.Matches {
		if updated.Matches[i].Round == 2 {
			final = &updated.Matches[i]
		}
	}
	require.NotNil(t, final)
	require.NotNil(t, final.PlayerA)
	assert.Equal(t, first.PlayerA.ID, final.PlayerA.ID)
	assert.Equal(t, 2, updated.CurrentRound)

	stored := repo.items[tournament.ID]
	assert.Equal(t, 2, stored.CurrentRound)
}

func TestReportResultOddBracketAdvancesIntoFinal(t *testing.T) {
	service, _, tournament := newTournamentFixture(t, models.FormatSolo, 16)
	registerN(t, service, tournament.ID, 6)

	generated, err := service.GenerateBracket(context.Background(), tournament.ID)
	require.NoError(t, err)
	require.Len(t, generated.Matches, 5)

	byMatch := func(tr *models.Tournament, round, slot int) *models.Match {
		for i := range tr.Matches {
			if tr.Matches[i].Round == round && tr.Matches[i].SlotIndex == slot {
				return &tr.Matches[i]
			}
		}
		return nil
	}

	// round 1 slot 2 has no round-2 opponent; its winner must land in the
	// final, and reporting it must not close the tournament
	odd := byMatch(generated, 1, 2)
	require.NotNil(t, odd)
	updated, err := service.ReportResult(context.Background(), tournament.ID, odd.ID, ReportResultRequest{
		ScoreA: 21, ScoreB: 12, Winner: odd.PlayerA.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TournamentStatusOngoing, updated.Status)

	final := byMatch(updated, 3, 0)
	require.NotNil(t, final)
	require.NotNil(t, final.PlayerA)
	assert.Equal(t, odd.PlayerA.ID, final.PlayerA.ID)

	// play out the rest; only the final closes the tournament
	for _, coord := range [][2]int{{1, 0}, {1, 1}, {2, 0}} {
		match := byMatch(updated, coord[0], coord[1])
		require.NotNil(t, match)
		updated, err = service.ReportResult(context.Background(), tournament.ID, match.ID, ReportResultRequest{
			ScoreA: 21, ScoreB: 18, Winner: match.PlayerA.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, models.TournamentStatusOngoing, updated.Status)
	}

	final = byMatch(updated, 3, 0)
	require.NotNil(t, final.PlayerA)
	require.NotNil(t, final.PlayerB)
	updated, err = service.ReportResult(context.Background(), tournament.ID, final.ID, ReportResultRequest{
		ScoreA: 21, ScoreB: 16, Winner: final.PlayerB.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TournamentStatusCompleted, updated.Status)
}

func TestReportResultRejectsNonParticipant(t *testing.T) {
	service, _, tournament := newTournamentFixture(t, models.FormatSolo, 16)
	registerN(t, service, tournament.ID, 2)

	generated, err := service.GenerateBracket(context.Background(), tournament.ID)
	require.NoError(t, err)
	match := generated.Matches[0]

	_, err = service.ReportResult(context.Background(), tournament.ID, match.ID, ReportResultRequest{
		ScoreA: 21,
		ScoreB: 10,
		Winner: "someone-else",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReportResultFinalCompletesTournament(t *testing.T) {
	service, _, tournament := newTournamentFixture(t, models.FormatSolo, 16)
	registerN(t, service, tournament.ID, 2)

	generated, err := service.GenerateBracket(context.Background(), tournament.ID)
	require.NoError(t, err)
	match := generated.Matches[0]

	updated, err := service.ReportResult(context.Background(), tournament.ID, match.ID, ReportResultRequest{
		ScoreA: 21,
		ScoreB: 19,
		Winner: match.PlayerB.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TournamentStatusCompleted, updated.Status)
}

func TestReportResultTwiceRejected(t *testing.T) {
	service, _, tournament := newTournamentFixture(t, models.FormatSolo, 16)
	registerN(t, service, tournament.ID, 2)

	generated, err := service.GenerateBracket(context.Background(), tournament.ID)
	require.NoError(t, err)
	match := generated.Matches[0]

	_, err = service.ReportResult(context.Background(), tournament.ID, match.ID, ReportResultRequest{
		ScoreA: 21, ScoreB: 19, Winner: match.PlayerA.ID,
	})
	require.NoError(t, err)

	_, err = service.ReportResult(context.Background(), tournament.ID, match.ID, ReportResultRequest{
		ScoreA: 21, ScoreB: 19, Winner: match.PlayerA.ID,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
}

func TestReportResultVersionConflict(t *testing.T) {
	service, repo, tournament := newTournamentFixture(t, models.FormatSolo, 16)
	registerN(t, service, tournament.ID, 2)

	generated, err := service.GenerateBracket(context.Background(), tournament.ID)
	require.NoError(t, err)
	repo.updateErr = repository.ErrVersionConflict

	_, err = service.ReportResult(context.Background(), tournament.ID, generated.Matches[0].ID, ReportResultRequest{
		ScoreA: 21, ScoreB: 19, Winner: generated.Matches[0].PlayerA.ID,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestScheduleMatch(t *testing.T) {
	service, _, tournament := newTournamentFixture(t, models.FormatSolo, 16)
	registerN(t, service, tournament.ID, 2)

	generated, err := service.GenerateBracket(context.Background(), tournament.ID)
	require.NoError(t, err)
	match := generated.Matches[0]

	when := time.Date(2026, 9, 2, 14, 0, 0, 0, time.UTC)
	updated, err := service.ScheduleMatch(context.Background(), tournament.ID, match.ID, ScheduleMatchRequest{
		Court:       "Court 3",
		ScheduledAt: when,
	})
	require.NoError(t, err)

	scheduled := updated.MatchByID(match.ID)
	assert.Equal(t, "Court 3", scheduled.Court)
	require.NotNil(t, scheduled.ScheduledAt)
	assert.Equal(t, when, *scheduled.ScheduledAt)
}

func TestGetMissingTournamentMapsNotFound(t *testing.T) {
	service := NewTournamentService(&mockTournamentRepo{}, nil, zap.NewNop())
	_, err := service.Get(context.Background(), "missing")
	require.Error(t, err)
	got := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, got.Code)
	assert.Equal(t, appErrors.ErrNotFound.Status, got.Status)
}

func TestDeleteMissingTournament(t *testing.T) {
	service, _, _ := newTournamentFixture(t, models.FormatSolo, 16)
	err := service.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
