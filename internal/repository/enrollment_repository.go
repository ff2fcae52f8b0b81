package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/courtside/courtside-api/internal/models"
)

// ErrVersionConflict signals that an aggregate save lost an optimistic
// concurrency race. Callers should surface it as a conflict.
var ErrVersionConflict = errors.New("aggregate version conflict")

// ErrSlotTaken signals that dating a session collided with another session
// already holding the coach's day and slot. The database enforces this with
// the uq_sessions_coach_day_slot partial unique index, so the guarantee holds
// even when two bookings race past the advisory CoachSlotTaken check.
var ErrSlotTaken = errors.New("coach slot already taken")

// EnrollmentRepository persists the Enrollment aggregate: the enrollment row
// with embedded payment columns, its sessions, and the append-only payment
// transaction log. All mutation happens inside a single transaction guarded
// by a version compare-and-set on the enrollments row.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

type enrollmentRow struct {
	ID                 string                  `db:"id"`
	StudentID          string                  `db:"student_id"`
	CoachID            string                  `db:"coach_id"`
	ProgramID          string                  `db:"program_id"`
	StartDate          time.Time               `db:"start_date"`
	EndDate            time.Time               `db:"end_date"`
	Status             models.EnrollmentStatus `db:"status"`
	CancellationReason *string                 `db:"cancellation_reason"`
	Version            int                     `db:"version"`
	CreatedAt          time.Time               `db:"created_at"`
	UpdatedAt          time.Time               `db:"updated_at"`
	models.Payment
}

func (row *enrollmentRow) toModel() models.Enrollment {
	return models.Enrollment{
		ID:                 row.ID,
		StudentID:          row.StudentID,
		CoachID:            row.CoachID,
		ProgramID:          row.ProgramID,
		StartDate:          row.StartDate,
		EndDate:            row.EndDate,
		Status:             row.Status,
		CancellationReason: row.CancellationReason,
		Payment:            row.Payment,
		Version:            row.Version,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
}

const enrollmentColumns = `id, student_id, coach_id, program_id, start_date, end_date, status, cancellation_reason,
        payment_type, payment_status, total_amount, paid_amount, refund_amount, version, created_at, updated_at`

// Create persists a new enrollment aggregate in one transaction.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if enrollment.CreatedAt.IsZero() {
		enrollment.CreatedAt = now
	}
	enrollment.UpdatedAt = now
	enrollment.Version = 1

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create enrollment: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertEnrollment = `INSERT INTO enrollments (id, student_id, coach_id, program_id, start_date, end_date, status, cancellation_reason,
        payment_type, payment_status, total_amount, paid_amount, refund_amount, version, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	if _, err = tx.ExecContext(ctx, insertEnrollment,
		enrollment.ID, enrollment.StudentID, enrollment.CoachID, enrollment.ProgramID,
		enrollment.StartDate, enrollment.EndDate, enrollment.Status, enrollment.CancellationReason,
		enrollment.Payment.PaymentType, enrollment.Payment.PaymentStatus,
		enrollment.Payment.TotalAmount, enrollment.Payment.PaidAmount, enrollment.Payment.RefundAmount,
		enrollment.Version, enrollment.CreatedAt, enrollment.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert enrollment: %w", err)
	}

	const insertSession = `INSERT INTO sessions (id, enrollment_id, coach_id, idx, slot, session_date, status, attendance)
        VALUES (:id, :enrollment_id, :coach_id, :idx, :slot, :session_date, :status, :attendance)`
	for i := range enrollment.Sessions {
		session := &enrollment.Sessions[i]
		if session.ID == "" {
			session.ID = uuid.NewString()
		}
		session.EnrollmentID = enrollment.ID
		session.CoachID = enrollment.CoachID
		if _, err = sqlx.NamedExecContext(ctx, tx, insertSession, session); err != nil {
			return fmt.Errorf("insert session %d: %w", session.Index, err)
		}
	}

	if err = insertTransactions(ctx, tx, enrollment); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create enrollment: %w", err)
	}
	return nil
}

// FindByID loads the full aggregate.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	query := fmt.Sprintf(`SELECT %s FROM enrollments WHERE id = $1`, enrollmentColumns)
	var row enrollmentRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	enrollment := row.toModel()
	if err := r.loadChildren(ctx, []*models.Enrollment{&enrollment}); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// ListByStudent returns all of a student's enrollments with program info.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	return r.listDetails(ctx, "e.student_id = $1", studentID)
}

// ListByCoach returns all of a coach's enrollments with program info.
func (r *EnrollmentRepository) ListByCoach(ctx context.Context, coachID string) ([]models.EnrollmentDetail, error) {
	return r.listDetails(ctx, "e.coach_id = $1", coachID)
}

func (r *EnrollmentRepository) listDetails(ctx context.Context, where string, arg interface{}) ([]models.EnrollmentDetail, error) {
	query := fmt.Sprintf(`SELECT e.id, e.student_id, e.coach_id, e.program_id, e.start_date, e.end_date, e.status, e.cancellation_reason,
        e.payment_type, e.payment_status, e.total_amount, e.paid_amount, e.refund_amount, e.version, e.created_at, e.updated_at,
        p.title AS program_title, p.sport AS program_sport
        FROM enrollments e
        LEFT JOIN training_programs p ON p.id = e.program_id
        WHERE %s ORDER BY e.created_at DESC`, where)

	type detailRow struct {
		enrollmentRow
		ProgramTitle sql.NullString `db:"program_title"`
		ProgramSport sql.NullString `db:"program_sport"`
	}
	var rows []detailRow
	if err := r.db.SelectContext(ctx, &rows, query, arg); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}

	details := make([]models.EnrollmentDetail, len(rows))
	refs := make([]*models.Enrollment, len(rows))
	for i := range rows {
		details[i] = models.EnrollmentDetail{
			Enrollment:   rows[i].toModel(),
			ProgramTitle: rows[i].ProgramTitle.String,
			ProgramSport: rows[i].ProgramSport.String,
		}
		refs[i] = &details[i].Enrollment
	}
	if err := r.loadChildren(ctx, refs); err != nil {
		return nil, err
	}
	return details, nil
}

func (r *EnrollmentRepository) loadChildren(ctx context.Context, enrollments []*models.Enrollment) error {
	if len(enrollments) == 0 {
		return nil
	}
	ids := make([]string, len(enrollments))
	byID := make(map[string]*models.Enrollment, len(enrollments))
	for i, e := range enrollments {
		ids[i] = e.ID
		byID[e.ID] = e
	}

	query, args, err := sqlx.In(`SELECT id, enrollment_id, coach_id, idx, slot, session_date, status, attendance
        FROM sessions WHERE enrollment_id IN (?) ORDER BY idx ASC`, ids)
	if err != nil {
		return fmt.Errorf("build sessions query: %w", err)
	}
	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("load sessions: %w", err)
	}
	for _, session := range sessions {
		if owner, ok := byID[session.EnrollmentID]; ok {
			owner.Sessions = append(owner.Sessions, session)
		}
	}

	query, args, err = sqlx.In(`SELECT id, enrollment_id, amount, occurred_at, type
        FROM payment_transactions WHERE enrollment_id IN (?) ORDER BY occurred_at ASC, id ASC`, ids)
	if err != nil {
		return fmt.Errorf("build transactions query: %w", err)
	}
	var transactions []models.Transaction
	if err := r.db.SelectContext(ctx, &transactions, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	for _, txn := range transactions {
		if owner, ok := byID[txn.EnrollmentID]; ok {
			owner.Payment.Transactions = append(owner.Payment.Transactions, txn)
		}
	}
	return nil
}

// Save writes back a mutated aggregate. The enrollment row update carries a
// version compare-and-set; losing the race returns ErrVersionConflict and the
// whole transaction rolls back, so refund bookkeeping and status transitions
// are applied atomically or not at all.
func (r *EnrollmentRepository) Save(ctx context.Context, enrollment *models.Enrollment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save enrollment: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	const updateEnrollment = `UPDATE enrollments
        SET status = $3, cancellation_reason = $4, payment_status = $5, paid_amount = $6, refund_amount = $7,
            updated_at = $8, version = version + 1
        WHERE id = $1 AND version = $2`
	result, err := tx.ExecContext(ctx, updateEnrollment,
		enrollment.ID, enrollment.Version,
		enrollment.Status, enrollment.CancellationReason,
		enrollment.Payment.PaymentStatus, enrollment.Payment.PaidAmount, enrollment.Payment.RefundAmount,
		now,
	)
	if err != nil {
		return fmt.Errorf("update enrollment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update enrollment rows: %w", err)
	}
	if affected == 0 {
		err = ErrVersionConflict
		return err
	}

	const updateSession = `UPDATE sessions SET session_date = $3, status = $4, attendance = $5
        WHERE id = $1 AND enrollment_id = $2`
	for i := range enrollment.Sessions {
		session := &enrollment.Sessions[i]
		if _, err = tx.ExecContext(ctx, updateSession,
			session.ID, enrollment.ID, session.SessionDate, session.Status, session.Attendance,
		); err != nil {
			if isSlotUniqueViolation(err) {
				err = ErrSlotTaken
				return err
			}
			return fmt.Errorf("update session %d: %w", session.Index, err)
		}
	}

	if err = insertTransactions(ctx, tx, enrollment); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit save enrollment: %w", err)
	}
	enrollment.Version++
	enrollment.UpdatedAt = now
	return nil
}

// isSlotUniqueViolation recognizes the coach day/slot unique index firing.
func isSlotUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) &&
		pqErr.Code == "23505" &&
		pqErr.Constraint == "uq_sessions_coach_day_slot"
}

// insertTransactions appends log entries that have no id yet. Existing
// entries are never touched; the log is append-only.
func insertTransactions(ctx context.Context, tx *sqlx.Tx, enrollment *models.Enrollment) error {
	const insertTxn = `INSERT INTO payment_transactions (id, enrollment_id, amount, occurred_at, type)
        VALUES (:id, :enrollment_id, :amount, :occurred_at, :type)`
	for i := range enrollment.Payment.Transactions {
		txn := &enrollment.Payment.Transactions[i]
		if txn.ID != "" {
			continue
		}
		txn.ID = uuid.NewString()
		txn.EnrollmentID = enrollment.ID
		if _, err := sqlx.NamedExecContext(ctx, tx, insertTxn, txn); err != nil {
			return fmt.Errorf("insert payment transaction: %w", err)
		}
	}
	return nil
}

// CoachSlotTaken reports whether the coach already has a session booked on
// the given calendar day and slot across any active enrollment. This is the
// advisory pre-check; the uq_sessions_coach_day_slot index is the authority
// when two bookings race.
func (r *EnrollmentRepository) CoachSlotTaken(ctx context.Context, coachID string, day time.Time, slot string) (bool, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	const query = `SELECT 1 FROM sessions s
        JOIN enrollments e ON e.id = s.enrollment_id
        WHERE s.coach_id = $1 AND e.status = $2 AND s.slot = $3
          AND s.session_date >= $4 AND s.session_date < $5
        LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, coachID, models.EnrollmentStatusActive, slot, dayStart, dayEnd); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check coach slot: %w", err)
	}
	return true, nil
}
