package payment

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/trezcool/escola/core"
)

// StudentPaymentInfo is the financial situation of a student, derived from their payments. Never stored.
type StudentPaymentInfo struct {
	StudentID       int             `json:"student_id"`
	StudentName     string          `json:"student_name"`
	ClassName       string          `json:"class_name"`
	MonthlyFee      decimal.Decimal `json:"monthly_fee"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	TotalDue        decimal.Decimal `json:"total_due"`
	CurrentBalance  decimal.Decimal `json:"current_balance"` // positive: credit, negative: debt
	OverduePayments []Payment       `json:"overdue_payments"`
	AdvancePayments []Payment       `json:"advance_payments"`
	PaymentHistory  []Payment       `json:"payment_history"`
}

// ComputePaymentInfo aggregates a student's payments.
// The subsets keep the input order and payments is left untouched.
func ComputePaymentInfo(payments []Payment, monthlyFee decimal.Decimal) StudentPaymentInfo {
	info := StudentPaymentInfo{
		MonthlyFee:      monthlyFee,
		TotalPaid:       decimal.Zero,
		TotalDue:        decimal.Zero,
		OverduePayments: make([]Payment, 0),
		AdvancePayments: make([]Payment, 0),
		PaymentHistory:  make([]Payment, 0, len(payments)),
	}

	for _, p := range payments {
		info.PaymentHistory = append(info.PaymentHistory, p)

		switch p.Status {
		case StatusPaid:
			info.TotalPaid = info.TotalPaid.Add(p.Amount)
		case StatusAdvance:
			info.TotalPaid = info.TotalPaid.Add(p.Amount)
			info.AdvancePayments = append(info.AdvancePayments, p)
		case StatusPending, StatusPartial:
			info.TotalDue = info.TotalDue.Add(p.Amount)
		case StatusOverdue:
			info.TotalDue = info.TotalDue.Add(p.Amount)
			info.OverduePayments = append(info.OverduePayments, p)
		}
	}

	info.CurrentBalance = info.TotalPaid.Sub(info.TotalDue)
	return info
}

// DeriveStatuses returns a copy of payments where every pending payment due before today
// and without a paid date is reported as overdue.
func DeriveStatuses(payments []Payment, today time.Time) []Payment {
	today = core.Today(today)
	derived := make([]Payment, len(payments))
	for i, p := range payments {
		if IsPastDue(p, today) {
			p.Status = StatusOverdue
		}
		derived[i] = p
	}
	return derived
}

// IsPastDue reports whether a pending, unpaid payment is due before today.
func IsPastDue(p Payment, today time.Time) bool {
	y, m, d := p.DueDate.Date() // date granularity, in the due date's own location
	due := time.Date(y, m, d, 0, 0, 0, 0, today.Location())
	return p.Status == StatusPending && !p.PaidDate.Valid && due.Before(core.Today(today))
}
