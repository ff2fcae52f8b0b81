package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/courtside/courtside-api/internal/models"
	appErrors "github.com/courtside/courtside-api/pkg/errors"
)

// ProgramRepository is the persistence surface the program service depends on.
type ProgramRepository interface {
	Create(ctx context.Context, program *models.TrainingProgram) error
	FindByID(ctx context.Context, id string) (*models.TrainingProgram, error)
	List(ctx context.Context, coachID string) ([]models.TrainingProgram, error)
	SoftDelete(ctx context.Context, id string) error
}

type CreateProgramRequest struct {
	Title         string          `json:"title" validate:"required"`
	Sport         string          `json:"sport" validate:"required"`
	Level         string          `json:"level" validate:"required"`
	DurationDays  int             `json:"duration_days" validate:"required,gt=0"`
	TotalSessions int             `json:"total_sessions" validate:"required,gt=0"`
	Frequency     int             `json:"frequency" validate:"gte=0"`
	Price         decimal.Decimal `json:"price"`
	Slots         []string        `json:"slots" validate:"required,min=1,dive,required"`
	Description   string          `json:"description"`
	CoachID       string          `json:"coach_id" validate:"required"`
	CoachName     string          `json:"coach_name"`
}

// ProgramService manages the training program catalog.
type ProgramService struct {
	repo     ProgramRepository
	cache    *CacheService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewProgramService(repo ProgramRepository, cache *CacheService, logger *zap.Logger) *ProgramService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgramService{
		repo:     repo,
		cache:    cache,
		validate: validator.New(),
		logger:   logger,
	}
}

// Create publishes a new training program.
func (s *ProgramService) Create(ctx context.Context, req CreateProgramRequest) (*models.TrainingProgram, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid program request")
	}
	if req.Price.IsNegative() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "price cannot be negative")
	}

	program := &models.TrainingProgram{
		ID:            uuid.NewString(),
		Title:         req.Title,
		Sport:         req.Sport,
		Level:         models.ProgramLevel(req.Level),
		DurationDays:  req.DurationDays,
		TotalSessions: req.TotalSessions,
		Frequency:     req.Frequency,
		Price:         req.Price,
		Slots:         pq.StringArray(req.Slots),
		Description:   req.Description,
		CoachID:       req.CoachID,
		CoachName:     req.CoachName,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, program); err != nil {
		return nil, err
	}
	_ = s.cache.Invalidate(ctx, "programs:list:*")

	s.logger.Info("program created",
		zap.String("program_id", program.ID),
		zap.String("coach_id", program.CoachID))
	return program, nil
}

// Get returns one program by id.
func (s *ProgramService) Get(ctx context.Context, id string) (*models.TrainingProgram, error) {
	program, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, err
	}
	return program, nil
}

// List returns the program catalog, optionally filtered by coach, served
// from cache when warm.
func (s *ProgramService) List(ctx context.Context, coachID string) ([]models.TrainingProgram, error) {
	key := fmt.Sprintf("programs:list:%s", coachID)
	var cached []models.TrainingProgram
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	items, err := s.repo.List(ctx, coachID)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, items, 0)
	return items, nil
}

// Delete retires a program from the catalog. Existing enrollments keep
// running; only new enrollments are blocked.
func (s *ProgramService) Delete(ctx context.Context, id string) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return err
	}
	_ = s.cache.Invalidate(ctx, "programs:list:*")
	return nil
}
