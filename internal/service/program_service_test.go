package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/courtside/courtside-api/internal/models"
	appErrors "github.com/courtside/courtside-api/pkg/errors"
)

type mockProgramRepo struct {
	items   map[string]*models.TrainingProgram
	deleted []string
}

func (m *mockProgramRepo) Create(ctx context.Context, program *models.TrainingProgram) error {
	if m.items == nil {
		m.items = make(map[string]*models.TrainingProgram)
	}
	cp := *program
	m.items[program.ID] = &cp
	return nil
}

func (m *mockProgramRepo) FindByID(ctx context.Context, id string) (*models.TrainingProgram, error) {
	if program, ok := m.items[id]; ok {
		cp := *program
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockProgramRepo) List(ctx context.Context, coachID string) ([]models.TrainingProgram, error) {
	out := make([]models.TrainingProgram, 0, len(m.items))
	for _, program := range m.items {
		if coachID == "" || program.CoachID == coachID {
			out = append(out, *program)
		}
	}
	return out, nil
}

func (m *mockProgramRepo) SoftDelete(ctx context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func TestProgramCreate(t *testing.T) {
	repo := &mockProgramRepo{}
	service := NewProgramService(repo, nil, zap.NewNop())

	program, err := service.Create(context.Background(), CreateProgramRequest{
		Title:         "Junior Tennis",
		Sport:         "tennis",
		Level:         "beginner",
		DurationDays:  60,
		TotalSessions: 10,
		Price:         decimal.RequireFromString("500.00"),
		Slots:         []string{"morning", "evening"},
		CoachID:       "coach-1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, program.ID)
	assert.Len(t, repo.items, 1)
}

func TestProgramCreateRejectsZeroSessions(t *testing.T) {
	repo := &mockProgramRepo{}
	service := NewProgramService(repo, nil, zap.NewNop())

	_, err := service.Create(context.Background(), CreateProgramRequest{
		Title:         "Junior Tennis",
		Sport:         "tennis",
		Level:         "beginner",
		DurationDays:  60,
		TotalSessions: 0,
		Slots:         []string{"morning"},
		CoachID:       "coach-1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestProgramCreateRejectsNegativePrice(t *testing.T) {
	repo := &mockProgramRepo{}
	service := NewProgramService(repo, nil, zap.NewNop())

	_, err := service.Create(context.Background(), CreateProgramRequest{
		Title:         "Junior Tennis",
		Sport:         "tennis",
		Level:         "beginner",
		DurationDays:  60,
		TotalSessions: 10,
		Price:         decimal.RequireFromString("-1"),
		Slots:         []string{"morning"},
		CoachID:       "coach-1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestProgramGetMissingMapsNotFound(t *testing.T) {
	repo := &mockProgramRepo{}
	service := NewProgramService(repo, nil, zap.NewNop())

	_, err := service.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestProgramDeleteMissingMapsNotFound(t *testing.T) {
	repo := &mockProgramRepo{}
	service := NewProgramService(repo, nil, zap.NewNop())

	err := service.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestProgramDelete(t *testing.T) {
	repo := &mockProgramRepo{}
	service := NewProgramService(repo, nil, zap.NewNop())

	program, err := service.Create(context.Background(), CreateProgramRequest{
		Title:         "Junior Tennis",
		Sport:         "tennis",
		Level:         "beginner",
		DurationDays:  60,
		TotalSessions: 10,
		Slots:         []string{"morning"},
		CoachID:       "coach-1",
	})
	require.NoError(t, err)

	require.NoError(t, service.Delete(context.Background(), program.ID))
	assert.Equal(t, []string{program.ID}, repo.deleted)
}
