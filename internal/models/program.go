package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// ProgramLevel grades the target audience of a training program.
type ProgramLevel string

// Supported program levels.
const (
	ProgramLevelBeginner     ProgramLevel = "Beginner"
	ProgramLevelIntermediate ProgramLevel = "Intermediate"
	ProgramLevelAdvanced     ProgramLevel = "Advanced"
)

// TrainingProgram defines a coach's purchasable training package. An
// enrollment's session schedule is derived from TotalSessions and Price at
// enrollment time.
type TrainingProgram struct {
	ID            string          `db:"id" json:"id"`
	Title         string          `db:"title" json:"title"`
	Sport         string          `db:"sport" json:"sport"`
	Level         ProgramLevel    `db:"level" json:"level"`
	DurationDays  int             `db:"duration_days" json:"duration_days"`
	TotalSessions int             `db:"total_sessions" json:"total_sessions"`
	Frequency     int             `db:"frequency" json:"frequency"`
	Price         decimal.Decimal `db:"price" json:"price"`
	Slots         pq.StringArray  `db:"slots" json:"slots"`
	Description   string          `db:"description" json:"description"`
	CoachID       string          `db:"coach_id" json:"coach_id"`
	CoachName     string          `db:"coach_name" json:"coach_name"`
	DeletedAt     *time.Time      `db:"deleted_at" json:"deleted_at,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}
