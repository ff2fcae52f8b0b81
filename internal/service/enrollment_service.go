package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/courtside/courtside-api/internal/models"
	"github.com/courtside/courtside-api/internal/repository"
	appErrors "github.com/courtside/courtside-api/pkg/errors"
)

// EnrollmentRepository is the persistence surface the enrollment service
// depends on.
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)
	Save(ctx context.Context, enrollment *models.Enrollment) error
	ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error)
	ListByCoach(ctx context.Context, coachID string) ([]models.EnrollmentDetail, error)
	CoachSlotTaken(ctx context.Context, coachID string, day time.Time, slot string) (bool, error)
}

// ProgramReader provides program lookups for enrollment creation.
type ProgramReader interface {
	FindByID(ctx context.Context, id string) (*models.TrainingProgram, error)
}

type EnrollRequest struct {
	StudentID   string             `json:"student_id" validate:"required"`
	ProgramID   string             `json:"program_id" validate:"required"`
	Slot        string             `json:"slot" validate:"required"`
	PaymentType models.PaymentType `json:"payment_type" validate:"required"`
	StartDate   time.Time          `json:"start_date" validate:"required"`
}

type MarkAttendanceRequest struct {
	SessionID  string                 `json:"session_id" validate:"required"`
	Attendance models.AttendanceValue `json:"attendance" validate:"required"`
	Date       time.Time              `json:"date" validate:"required"`
}

type CancelEnrollmentRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type EnrollmentService struct {
	repo     EnrollmentRepository
	programs ProgramReader
	validate *validator.Validate
	logger   *zap.Logger
}

func NewEnrollmentService(repo EnrollmentRepository, programs ProgramReader, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		repo:     repo,
		programs: programs,
		validate: validator.New(),
		logger:   logger,
	}
}

// Enroll creates an active enrollment with its full undated session plan and
// initial payment state.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollRequest) (*models.Enrollment, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment request")
	}
	if !req.PaymentType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "payment_type must be per_session or full_advance")
	}

	program, err := s.programs.FindByID(ctx, req.ProgramID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, err
	}

	slotOK := false
	for _, slot := range program.Slots {
		if slot == req.Slot {
			slotOK = true
			break
		}
	}
	if !slotOK {
		return nil, appErrors.Clone(appErrors.ErrValidation, "slot is not offered by this program")
	}

	now := time.Now().UTC()
	enrollment := &models.Enrollment{
		ID:        uuid.NewString(),
		StudentID: req.StudentID,
		ProgramID: program.ID,
		CoachID:   program.CoachID,
		Status:    models.EnrollmentStatusActive,
		StartDate: req.StartDate,
		EndDate:   ComputeEndDate(req.StartDate, program.DurationDays),
		Sessions:  GenerateSessions(program.TotalSessions, req.Slot),
		Payment: models.Payment{
			PaymentType:   req.PaymentType,
			PaymentStatus: models.PaymentStatusPending,
			TotalAmount:   program.Price,
			PaidAmount:    decimal.Zero,
			RefundAmount:  decimal.Zero,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	for i := range enrollment.Sessions {
		enrollment.Sessions[i].EnrollmentID = enrollment.ID
	}

	if req.PaymentType == models.PaymentTypeFullAdvance {
		enrollment.Payment.PaidAmount = program.Price
		enrollment.Payment.PaymentStatus = models.PaymentStatusPaid
		enrollment.Payment.Transactions = append(enrollment.Payment.Transactions, models.Transaction{
			EnrollmentID: enrollment.ID,
			Amount:       program.Price,
			Date:         now,
			Type:         models.TransactionTypePayment,
		})
	}

	if err := s.repo.Create(ctx, enrollment); err != nil {
		return nil, err
	}

	s.logger.Info("enrollment created",
		zap.String("enrollment_id", enrollment.ID),
		zap.String("program_id", program.ID),
		zap.String("student_id", req.StudentID))
	return enrollment, nil
}

// Get returns one enrollment aggregate.
func (s *EnrollmentService) Get(ctx context.Context, id string) (*models.Enrollment, error) {
	return s.find(ctx, id)
}

func (s *EnrollmentService) find(ctx context.Context, id string) (*models.Enrollment, error) {
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, err
	}
	return enrollment, nil
}

// MarkAttendance records attendance for a session. Marking a still-undated
// session also fixes its date, which is when the coach double-booking check
// runs.
func (s *EnrollmentService) MarkAttendance(ctx context.Context, enrollmentID string, req MarkAttendanceRequest) (*models.Enrollment, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance request")
	}
	if !req.Attendance.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "attendance must be present or absent")
	}

	enrollment, err := s.find(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "enrollment is no longer active")
	}

	session := enrollment.SessionByID(req.SessionID)
	if session == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found in enrollment")
	}
	if session.Status == models.SessionStatusCancelled {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "session is cancelled")
	}

	if session.SessionDate == nil {
		day := req.Date.UTC().Truncate(24 * time.Hour)
		taken, err := s.repo.CoachSlotTaken(ctx, enrollment.CoachID, day, session.Slot)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, appErrors.Clone(appErrors.ErrConflict, "coach already has a session in this slot on this date")
		}
		date := req.Date.UTC()
		session.SessionDate = &date
	}

	firstCompletion := session.Status != models.SessionStatusCompleted

	attendance := req.Attendance
	session.Attendance = &attendance
	session.Status = models.SessionStatusCompleted

	if firstCompletion && enrollment.Payment.PaymentType == models.PaymentTypePerSession {
		s.recordPerSessionPayment(enrollment)
	}

	if err := s.save(ctx, enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

// recordPerSessionPayment charges one session's share after it completes.
func (s *EnrollmentService) recordPerSessionPayment(enrollment *models.Enrollment) {
	total := len(enrollment.Sessions)
	if total == 0 {
		return
	}
	perSession := enrollment.Payment.TotalAmount.Div(decimal.NewFromInt(int64(total))).Round(2)
	enrollment.Payment.PaidAmount = enrollment.Payment.PaidAmount.Add(perSession)
	enrollment.Payment.Transactions = append(enrollment.Payment.Transactions, models.Transaction{
		EnrollmentID: enrollment.ID,
		Amount:       perSession,
		Date:         time.Now().UTC(),
		Type:         models.TransactionTypePayment,
	})
	if enrollment.Payment.PaidAmount.GreaterThanOrEqual(enrollment.Payment.TotalAmount) {
		enrollment.Payment.PaymentStatus = models.PaymentStatusPaid
	} else {
		enrollment.Payment.PaymentStatus = models.PaymentStatusPartiallyPaid
	}
}

// CancelSession marks a single pending session cancelled. Cancelled sessions
// still count toward a later refund.
func (s *EnrollmentService) CancelSession(ctx context.Context, enrollmentID, sessionID string) (*models.Enrollment, error) {
	enrollment, err := s.find(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "enrollment is no longer active")
	}

	session := enrollment.SessionByID(sessionID)
	if session == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found in enrollment")
	}
	if session.Status != models.SessionStatusPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "only pending sessions can be cancelled")
	}

	session.Status = models.SessionStatusCancelled
	if err := s.save(ctx, enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

// Cancel terminates an enrollment and computes the pro-rated refund for all
// sessions that did not complete.
func (s *EnrollmentService) Cancel(ctx context.Context, enrollmentID string, req CancelEnrollmentRequest) (*models.Enrollment, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid cancellation request")
	}

	enrollment, err := s.find(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "enrollment is already closed")
	}

	refund := CalculateRefund(enrollment)
	now := time.Now().UTC()

	enrollment.Status = models.EnrollmentStatusCancelled
	enrollment.CancellationReason = &req.Reason
	enrollment.Payment.RefundAmount = refund
	enrollment.Payment.PaymentStatus = models.PaymentStatusRefunded
	if refund.IsPositive() {
		enrollment.Payment.Transactions = append(enrollment.Payment.Transactions, models.Transaction{
			EnrollmentID: enrollment.ID,
			Amount:       refund,
			Date:         now,
			Type:         models.TransactionTypeRefund,
		})
	}

	if err := s.save(ctx, enrollment); err != nil {
		return nil, err
	}

	s.logger.Info("enrollment cancelled",
		zap.String("enrollment_id", enrollment.ID),
		zap.String("refund", refund.StringFixed(2)))
	return enrollment, nil
}

// MarkComplete closes an enrollment once every session has completed.
func (s *EnrollmentService) MarkComplete(ctx context.Context, enrollmentID string) (*models.Enrollment, error) {
	enrollment, err := s.find(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "enrollment is already closed")
	}
	if !enrollment.AllSessionsCompleted() {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "not all sessions are completed")
	}

	enrollment.Status = models.EnrollmentStatusCompleted
	if err := s.save(ctx, enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

func (s *EnrollmentService) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	return s.repo.ListByStudent(ctx, studentID)
}

func (s *EnrollmentService) ListByCoach(ctx context.Context, coachID string) ([]models.EnrollmentDetail, error) {
	return s.repo.ListByCoach(ctx, coachID)
}

func (s *EnrollmentService) save(ctx context.Context, enrollment *models.Enrollment) error {
	enrollment.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, enrollment); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return appErrors.Clone(appErrors.ErrConflict, "enrollment was modified concurrently, retry")
		}
		if errors.Is(err, repository.ErrSlotTaken) {
			return appErrors.Clone(appErrors.ErrConflict, "coach already has a session booked for this day and slot")
		}
		return err
	}
	return nil
}
