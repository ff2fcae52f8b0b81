package service

import (
	"github.com/shopspring/decimal"

	"github.com/courtside/courtside-api/internal/models"
)

// CalculateRefund computes the pro-rated refund for a program cancellation.
// The student is charged only for sessions actually delivered: cancelled and
// pending sessions both count as refundable, only completed ones reduce the
// refund. Decimal arithmetic keeps the currency math drift-free.
func CalculateRefund(enrollment *models.Enrollment) decimal.Decimal {
	total := len(enrollment.Sessions)
	if total == 0 {
		return decimal.Zero
	}

	completed := enrollment.CompletedSessionCount()
	perSession := enrollment.Payment.TotalAmount.Div(decimal.NewFromInt(int64(total)))
	refundable := decimal.NewFromInt(int64(total - completed))

	return refundable.Mul(perSession).Round(2)
}
