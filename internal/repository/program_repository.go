package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/courtside/courtside-api/internal/models"
)

// ProgramRepository handles persistence of training program definitions.
type ProgramRepository struct {
	db *sqlx.DB
}

// NewProgramRepository constructs the repository.
func NewProgramRepository(db *sqlx.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

const programColumns = `id, title, sport, level, duration_days, total_sessions, frequency, price, slots,
        description, coach_id, coach_name, deleted_at, created_at`

// Create persists a new training program.
func (r *ProgramRepository) Create(ctx context.Context, program *models.TrainingProgram) error {
	if program.ID == "" {
		program.ID = uuid.NewString()
	}
	if program.CreatedAt.IsZero() {
		program.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO training_programs (id, title, sport, level, duration_days, total_sessions, frequency, price, slots,
        description, coach_id, coach_name, deleted_at, created_at)
        VALUES (:id, :title, :sport, :level, :duration_days, :total_sessions, :frequency, :price, :slots,
        :description, :coach_id, :coach_name, :deleted_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, program); err != nil {
		return fmt.Errorf("create program: %w", err)
	}
	return nil
}

// FindByID returns a program by its ID, excluding soft-deleted ones.
func (r *ProgramRepository) FindByID(ctx context.Context, id string) (*models.TrainingProgram, error) {
	query := fmt.Sprintf(`SELECT %s FROM training_programs WHERE id = $1 AND deleted_at IS NULL`, programColumns)
	var program models.TrainingProgram
	if err := r.db.GetContext(ctx, &program, query, id); err != nil {
		return nil, err
	}
	return &program, nil
}

// List returns live programs, optionally filtered by coach.
func (r *ProgramRepository) List(ctx context.Context, coachID string) ([]models.TrainingProgram, error) {
	query := fmt.Sprintf(`SELECT %s FROM training_programs WHERE deleted_at IS NULL`, programColumns)
	args := []interface{}{}
	if coachID != "" {
		query += " AND coach_id = $1"
		args = append(args, coachID)
	}
	query += " ORDER BY created_at DESC"

	var programs []models.TrainingProgram
	if err := r.db.SelectContext(ctx, &programs, query, args...); err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	return programs, nil
}

// SoftDelete marks a program deleted without removing it; existing
// enrollments keep referencing it.
func (r *ProgramRepository) SoftDelete(ctx context.Context, id string) error {
	const query = `UPDATE training_programs SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("delete program: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete program rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
