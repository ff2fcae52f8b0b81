package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/courtside/courtside-api/internal/models"
	"github.com/courtside/courtside-api/internal/repository"
	appErrors "github.com/courtside/courtside-api/pkg/errors"
)

// TournamentRepository is the persistence surface the tournament service
// depends on.
type TournamentRepository interface {
	Create(ctx context.Context, t *models.Tournament) error
	FindByID(ctx context.Context, id string) (*models.Tournament, error)
	List(ctx context.Context, filter models.TournamentFilter) ([]models.Tournament, int, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Tournament, error)
	Delete(ctx context.Context, id string) error
	AppendRegistration(ctx context.Context, t *models.Tournament, reg *models.Registration) error
	InsertMatches(ctx context.Context, t *models.Tournament, matches []models.Match) error
	UpdateMatches(ctx context.Context, t *models.Tournament, matches ...*models.Match) error
}

type CreateTournamentRequest struct {
	Title               string                  `json:"title" validate:"required"`
	Description         string                  `json:"description"`
	Sport               string                  `json:"sport" validate:"required"`
	VenueName           string                  `json:"venue_name" validate:"required"`
	VenueCity           string                  `json:"venue_city"`
	StartDate           time.Time               `json:"start_date" validate:"required"`
	EndDate             time.Time               `json:"end_date" validate:"required,gtefield=StartDate"`
	RegistrationOpenAt  time.Time               `json:"registration_open_at" validate:"required"`
	RegistrationCloseAt time.Time               `json:"registration_close_at" validate:"required"`
	MaxParticipants     int                     `json:"max_participants" validate:"required,gt=1"`
	EntryFee            decimal.Decimal         `json:"entry_fee"`
	Currency            string                  `json:"currency"`
	Visibility          models.Visibility       `json:"visibility"`
	Format              models.TournamentFormat `json:"format" validate:"required"`
}

type RegisterRequest struct {
	Student               string                  `json:"student" validate:"required"`
	FullName              string                  `json:"full_name" validate:"required"`
	Email                 string                  `json:"email" validate:"required,email"`
	Phone                 string                  `json:"phone" validate:"required"`
	DOB                   string                  `json:"dob" validate:"required"`
	EmergencyContactName  string                  `json:"emergency_contact_name"`
	EmergencyContactPhone string                  `json:"emergency_contact_phone"`
	TeamName              *string                 `json:"team_name,omitempty"`
	Format                models.TournamentFormat `json:"format" validate:"required"`
}

type ReportResultRequest struct {
	ScoreA int    `json:"score_a" validate:"gte=0"`
	ScoreB int    `json:"score_b" validate:"gte=0"`
	Winner string `json:"winner" validate:"required"`
}

type ScheduleMatchRequest struct {
	Court       string    `json:"court" validate:"required"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
}

// TournamentService owns the tournament lifecycle: creation, registration,
// bracket generation, match results and winner advancement.
type TournamentService struct {
	repo     TournamentRepository
	cache    *CacheService
	validate *validator.Validate
	logger   *zap.Logger
	shuffle  func(n int, swap func(i, j int))
}

func NewTournamentService(repo TournamentRepository, cache *CacheService, logger *zap.Logger) *TournamentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TournamentService{
		repo:     repo,
		cache:    cache,
		validate: validator.New(),
		logger:   logger,
		shuffle:  rand.Shuffle,
	}
}

// Create stores a new tournament in upcoming state.
func (s *TournamentService) Create(ctx context.Context, createdBy string, req CreateTournamentRequest) (*models.Tournament, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid tournament request")
	}
	if !req.Format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be solo, duo or team")
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = models.VisibilityPublic
	}
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	now := time.Now().UTC()
	openAt := req.RegistrationOpenAt
	closeAt := req.RegistrationCloseAt
	t := &models.Tournament{
		ID:                  uuid.NewString(),
		Title:               req.Title,
		Description:         req.Description,
		Sport:               req.Sport,
		VenueName:           req.VenueName,
		VenueCity:           req.VenueCity,
		StartDate:           req.StartDate,
		EndDate:             req.EndDate,
		RegistrationOpenAt:  &openAt,
		RegistrationCloseAt: &closeAt,
		MaxParticipants:     req.MaxParticipants,
		EntryFee:            req.EntryFee,
		Currency:            currency,
		Status:              models.TournamentStatusUpcoming,
		Visibility:          visibility,
		Format:              req.Format,
		CurrentRound:        1,
		CreatedBy:           createdBy,
		Version:             1,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.invalidateListings(ctx)

	s.logger.Info("tournament created",
		zap.String("tournament_id", t.ID),
		zap.String("sport", t.Sport),
		zap.String("format", string(t.Format)))
	return t, nil
}

// Get returns the full tournament aggregate.
func (s *TournamentService) Get(ctx context.Context, id string) (*models.Tournament, error) {
	return s.find(ctx, id)
}

func (s *TournamentService) find(ctx context.Context, id string) (*models.Tournament, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "tournament not found")
		}
		return nil, err
	}
	return t, nil
}

// List returns tournaments matching the filter, served from cache when warm.
func (s *TournamentService) List(ctx context.Context, filter models.TournamentFilter) ([]models.Tournament, int, error) {
	type listing struct {
		Items []models.Tournament `json:"items"`
		Total int                 `json:"total"`
	}

	key := fmt.Sprintf("tournaments:list:%s:%s:%d:%d", filter.Status, filter.Sport, filter.Page, filter.PageSize)
	var cached listing
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached.Items, cached.Total, nil
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	_ = s.cache.Set(ctx, key, listing{Items: items, Total: total}, 0)
	return items, total, nil
}

// ListByStudent returns tournaments the student has registered for.
func (s *TournamentService) ListByStudent(ctx context.Context, studentID string) ([]models.Tournament, error) {
	return s.repo.ListByStudent(ctx, studentID)
}

// Delete removes a tournament and everything under it.
func (s *TournamentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "tournament not found")
		}
		return err
	}
	s.invalidateListings(ctx)
	return nil
}

// Register enters a student into a tournament. One registration per student;
// duo and team formats require a team name.
func (s *TournamentService) Register(ctx context.Context, tournamentID string, req RegisterRequest) (*models.Registration, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration request")
	}
	if !req.Format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be solo, duo or team")
	}

	t, err := s.find(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	if req.Format != t.Format {
		return nil, appErrors.Clone(appErrors.ErrValidation, "registration format does not match tournament format")
	}
	if t.Status != models.TournamentStatusUpcoming {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "registration is closed for this tournament")
	}
	if t.RegistrationByStudent(req.Student) != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student is already registered")
	}
	if len(t.Registrations) >= t.MaxParticipants {
		return nil, appErrors.Clone(appErrors.ErrTournamentFull, "tournament has reached max participants")
	}
	if t.Format.RequiresTeam() && (req.TeamName == nil || *req.TeamName == "") {
		return nil, appErrors.Clone(appErrors.ErrValidation, "team name is required for this format")
	}

	reg := &models.Registration{
		ID:                    uuid.NewString(),
		TournamentID:          t.ID,
		Student:               req.Student,
		FullName:              req.FullName,
		Email:                 req.Email,
		Phone:                 req.Phone,
		DOB:                   req.DOB,
		EmergencyContactName:  req.EmergencyContactName,
		EmergencyContactPhone: req.EmergencyContactPhone,
		TeamName:              req.TeamName,
		Format:                req.Format,
		RegisteredAt:          time.Now().UTC(),
		Status:                models.RegistrationStatusRegistered,
	}

	if err := s.repo.AppendRegistration(ctx, t, reg); err != nil {
		return nil, s.mapConflict(err)
	}
	return reg, nil
}

// GenerateBracket shuffles the entrants and persists the full
// single-elimination bracket. Can only happen once per tournament.
func (s *TournamentService) GenerateBracket(ctx context.Context, tournamentID string) (*models.Tournament, error) {
	t, err := s.find(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if len(t.Matches) > 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "bracket has already been generated")
	}

	entrants := t.Entrants()
	if len(entrants) < 2 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least two entrants are required to generate a bracket")
	}

	s.shuffle(len(entrants), func(i, j int) {
		entrants[i], entrants[j] = entrants[j], entrants[i]
	})

	matches := buildBracket(entrants)
	t.Status = models.TournamentStatusOngoing
	t.CurrentRound = 1

	if err := s.repo.InsertMatches(ctx, t, matches); err != nil {
		return nil, s.mapConflict(err)
	}
	t.Matches = matches

	s.logger.Info("bracket generated",
		zap.String("tournament_id", t.ID),
		zap.Int("entrants", len(entrants)),
		zap.Int("matches", len(matches)))
	return t, nil
}

// ReportResult records a match result and advances the winner into the next
// round. Completing the final completes the tournament.
func (s *TournamentService) ReportResult(ctx context.Context, tournamentID, matchID string, req ReportResultRequest) (*models.Tournament, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid result request")
	}

	t, err := s.find(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	match := t.MatchByID(matchID)
	if match == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "match not found in tournament")
	}
	if match.Status == models.MatchStatusCompleted {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "match result already reported")
	}
	if match.PlayerA == nil || match.PlayerB == nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "match is waiting on earlier results")
	}
	if req.Winner != match.PlayerA.ID && req.Winner != match.PlayerB.ID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "winner is not a participant of this match")
	}

	match.ScoreA = req.ScoreA
	match.ScoreB = req.ScoreB
	match.Winner = &models.Entrant{Kind: t.Format.EntrantKind(), ID: req.Winner}
	match.Status = models.MatchStatusCompleted

	changed := []*models.Match{match}
	next := nextRoundMatch(t, match)
	switch {
	case next != nil:
		if next.PlayerA == nil {
			next.PlayerA = match.Winner
		} else {
			next.PlayerB = match.Winner
		}
		changed = append(changed, next)
		if next.Round > t.CurrentRound {
			t.CurrentRound = next.Round
		}
	default:
		// final decided
		t.Status = models.TournamentStatusCompleted
	}

	if err := s.repo.UpdateMatches(ctx, t, changed...); err != nil {
		return nil, s.mapConflict(err)
	}
	return t, nil
}

// ScheduleMatch assigns a court and start time to one match.
func (s *TournamentService) ScheduleMatch(ctx context.Context, tournamentID, matchID string, req ScheduleMatchRequest) (*models.Tournament, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule request")
	}

	t, err := s.find(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	match := t.MatchByID(matchID)
	if match == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "match not found in tournament")
	}
	if match.Status == models.MatchStatusCompleted {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "completed matches cannot be rescheduled")
	}

	scheduledAt := req.ScheduledAt.UTC()
	match.Court = req.Court
	match.ScheduledAt = &scheduledAt

	if err := s.repo.UpdateMatches(ctx, t, match); err != nil {
		return nil, s.mapConflict(err)
	}
	return t, nil
}

func (s *TournamentService) mapConflict(err error) error {
	if errors.Is(err, repository.ErrVersionConflict) {
		return appErrors.Clone(appErrors.ErrConflict, "tournament was modified concurrently, retry")
	}
	return err
}

func (s *TournamentService) invalidateListings(ctx context.Context) {
	_ = s.cache.Invalidate(ctx, "tournaments:list:*")
}
