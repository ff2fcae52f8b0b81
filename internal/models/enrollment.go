package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusPending   EnrollmentStatus = "pending"
	EnrollmentStatusActive    EnrollmentStatus = "active"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
	EnrollmentStatusCancelled EnrollmentStatus = "cancelled"
)

// SessionStatus represents the lifecycle of a single session.
type SessionStatus string

// Possible session statuses.
const (
	SessionStatusPending   SessionStatus = "pending"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusCancelled SessionStatus = "cancelled"
)

// AttendanceValue records whether the student showed up.
type AttendanceValue string

// Possible attendance values. A nil pointer means not yet marked.
const (
	AttendancePresent AttendanceValue = "present"
	AttendanceAbsent  AttendanceValue = "absent"
)

// Valid reports whether the attendance value is one of the known constants.
func (a AttendanceValue) Valid() bool {
	return a == AttendancePresent || a == AttendanceAbsent
}

// Session is one scheduled occurrence within an enrollment's program. It is
// owned exclusively by its enrollment; all mutation goes through the
// aggregate.
type Session struct {
	ID           string           `db:"id" json:"id"`
	EnrollmentID string           `db:"enrollment_id" json:"-"`
	CoachID      string           `db:"coach_id" json:"-"`
	Index        int              `db:"idx" json:"index"`
	Slot         string           `db:"slot" json:"slot"`
	SessionDate  *time.Time       `db:"session_date" json:"session_date,omitempty"`
	Status       SessionStatus    `db:"status" json:"status"`
	Attendance   *AttendanceValue `db:"attendance" json:"attendance,omitempty"`
}

// PaymentType distinguishes how the program is paid for.
type PaymentType string

// Supported payment types.
const (
	PaymentTypePerSession  PaymentType = "per_session"
	PaymentTypeFullAdvance PaymentType = "full_advance"
)

// Valid reports whether the payment type is known.
func (p PaymentType) Valid() bool {
	return p == PaymentTypePerSession || p == PaymentTypeFullAdvance
}

// PaymentStatus tracks the settlement state of an enrollment's payment.
type PaymentStatus string

// Possible payment statuses.
const (
	PaymentStatusPending       PaymentStatus = "pending"
	PaymentStatusPaid          PaymentStatus = "paid"
	PaymentStatusRefunded      PaymentStatus = "refunded"
	PaymentStatusPartiallyPaid PaymentStatus = "partially_paid"
)

// TransactionType labels entries in the payment transaction log.
type TransactionType string

// Transaction types.
const (
	TransactionTypePayment TransactionType = "payment"
	TransactionTypeRefund  TransactionType = "refund"
)

// Transaction is one append-only entry in an enrollment's payment log.
type Transaction struct {
	ID           string          `db:"id" json:"id"`
	EnrollmentID string          `db:"enrollment_id" json:"-"`
	Amount       decimal.Decimal `db:"amount" json:"amount"`
	Date         time.Time       `db:"occurred_at" json:"date"`
	Type         TransactionType `db:"type" json:"type"`
}

// Payment is the payment record embedded in an enrollment. Its monetary
// columns live on the enrollments row; transactions live in their own
// append-only table.
type Payment struct {
	PaymentType   PaymentType     `db:"payment_type" json:"payment_type"`
	PaymentStatus PaymentStatus   `db:"payment_status" json:"payment_status"`
	TotalAmount   decimal.Decimal `db:"total_amount" json:"total_amount"`
	PaidAmount    decimal.Decimal `db:"paid_amount" json:"paid_amount"`
	RefundAmount  decimal.Decimal `db:"refund_amount" json:"refund_amount"`
	Transactions  []Transaction   `db:"-" json:"transactions"`
}

// Enrollment is a student's booking of a training program together with its
// generated session schedule and payment record. Terminal states (completed,
// cancelled) freeze the aggregate; nothing is ever deleted.
type Enrollment struct {
	ID                 string           `db:"id" json:"id"`
	StudentID          string           `db:"student_id" json:"student_id"`
	CoachID            string           `db:"coach_id" json:"coach_id"`
	ProgramID          string           `db:"program_id" json:"program_id"`
	StartDate          time.Time        `db:"start_date" json:"start_date"`
	EndDate            time.Time        `db:"end_date" json:"end_date"`
	Status             EnrollmentStatus `db:"status" json:"enrollment_status"`
	CancellationReason *string          `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	Payment            Payment          `db:"-" json:"payment"`
	Sessions           []Session        `db:"-" json:"sessions"`
	Version            int              `db:"version" json:"-"`
	CreatedAt          time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time        `db:"updated_at" json:"updated_at"`
}

// SessionByID locates a session within the aggregate. Returns nil when the
// session does not belong to this enrollment.
func (e *Enrollment) SessionByID(sessionID string) *Session {
	for i := range e.Sessions {
		if e.Sessions[i].ID == sessionID {
			return &e.Sessions[i]
		}
	}
	return nil
}

// CompletedSessionCount counts sessions delivered so far.
func (e *Enrollment) CompletedSessionCount() int {
	count := 0
	for i := range e.Sessions {
		if e.Sessions[i].Status == SessionStatusCompleted {
			count++
		}
	}
	return count
}

// AllSessionsCompleted reports whether every session has been delivered.
func (e *Enrollment) AllSessionsCompleted() bool {
	for i := range e.Sessions {
		if e.Sessions[i].Status != SessionStatusCompleted {
			return false
		}
	}
	return len(e.Sessions) > 0
}

// Terminal reports whether the enrollment no longer accepts session mutation.
func (e *Enrollment) Terminal() bool {
	return e.Status == EnrollmentStatusCompleted || e.Status == EnrollmentStatusCancelled
}

// EnrollmentDetail enriches Enrollment with program info for listings.
type EnrollmentDetail struct {
	Enrollment
	ProgramTitle string `db:"program_title" json:"program_title"`
	ProgramSport string `db:"program_sport" json:"program_sport"`
}
