package payment

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/escola/core"
)

type Status string

const (
	StatusPaid    Status = "paid"
	StatusPending Status = "pending"
	StatusOverdue Status = "overdue"
	StatusPartial Status = "partial"
	StatusAdvance Status = "advance"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPaid, StatusPending, StatusOverdue, StatusPartial, StatusAdvance:
		return true
	}
	return false
}

// Settled statuses count towards TotalPaid, the others towards TotalDue.
func (s Status) Settled() bool {
	return s == StatusPaid || s == StatusAdvance
}

type Method string

const (
	MethodCash     Method = "cash"
	MethodTransfer Method = "transfer"
	MethodCard     Method = "card"
	MethodMpesa    Method = "mpesa"
	MethodCheck    Method = "check"
	MethodOther    Method = "other"
)

// MonthLayout formats month references.
const MonthLayout = "2006-01"

type Payment struct {
	ID             string          `json:"id"`
	StudentID      int             `json:"student_id"`
	Amount         decimal.Decimal `json:"amount"`
	DueDate        time.Time       `json:"due_date"`
	PaidDate       null.Time       `json:"paid_date"`
	Status         Status          `json:"status"`
	Method         Method          `json:"method"`
	MonthReference string          `json:"month_reference"`
	Description    string          `json:"description,omitempty"`
	ReceiptNumber  string          `json:"receipt_number,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// CanTransitionTo checks if the payment status can be changed to newStatus by an explicit update.
func (p Payment) CanTransitionTo(newStatus Status) bool {
	validTransitions := map[Status][]Status{
		StatusPending: {StatusPaid, StatusPartial, StatusOverdue, StatusAdvance},
		StatusOverdue: {StatusPaid, StatusPartial, StatusPending},
		StatusPartial: {StatusPaid, StatusOverdue, StatusPending},
		StatusAdvance: {StatusPaid, StatusPending},
		StatusPaid:    {StatusPending}, // reversal
	}
	if p.Status == newStatus {
		return true
	}
	for _, s := range validTransitions[p.Status] {
		if s == newStatus {
			return true
		}
	}
	return false
}

// NewPayment contains information needed to record a Payment.
type NewPayment struct {
	Amount         decimal.Decimal `json:"amount" validate:"decgt0"`
	Method         Method          `json:"method" validate:"required,oneof=cash transfer card mpesa check other"`
	MonthReference string          `json:"month_reference" validate:"required,monthref"`
	Description    string          `json:"description"`
}

func (np *NewPayment) Validate(validate *validator.Validate) error {
	np.MonthReference = core.CleanString(np.MonthReference)
	np.Description = core.CleanString(np.Description)
	return validate.Struct(np)
}

// UpdatePayment defines what may be changed on an existing Payment. Nil fields are left untouched.
type UpdatePayment struct {
	Status        *Status   `json:"status" validate:"omitempty,oneof=paid pending overdue partial advance"`
	PaidDate      null.Time `json:"paid_date"`
	ReceiptNumber *string   `json:"receipt_number"`
}

func (up *UpdatePayment) Validate(validate *validator.Validate) error {
	if up.ReceiptNumber != nil {
		rn := core.CleanString(*up.ReceiptNumber)
		up.ReceiptNumber = &rn
	}
	return validate.Struct(up)
}

type QueryFilter struct {
	StudentID int
	Statuses  []Status
}
