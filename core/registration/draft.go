package registration

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/trezcool/escola/core"
)

type Tab string

const (
	TabStudent     Tab = "student"
	TabCredentials Tab = "credentials"
	TabCourse      Tab = "course"
	TabPayment     Tab = "payment"
)

var Tabs = []Tab{TabStudent, TabCredentials, TabCourse, TabPayment}

func (t Tab) index() int {
	for i, tab := range Tabs {
		if tab == t {
			return i
		}
	}
	return -1
}

func (t Tab) Valid() bool { return t.index() >= 0 }

// Draft is the wizard state: the registration being built plus the form state around it.
// Drafts are values: Reduce returns a new Draft and never mutates its input.
type Draft struct {
	Registration      Registration      `json:"registration"`
	Tab               Tab               `json:"tab"`
	Open              bool              `json:"open"`
	Search            string            `json:"search"`
	StudentSelected   bool              `json:"student_selected"`
	IncludeFirstMonth bool              `json:"include_first_month"`
	PaidAmount        decimal.Decimal   `json:"paid_amount"`
	Message           string            `json:"message,omitempty"`
	FieldErrors       map[string]string `json:"field_errors,omitempty"`
}

// NewDraft opens an empty draft on the student tab.
func NewDraft(today time.Time) Draft {
	today = core.Today(today)
	return Draft{
		Registration: Registration{
			Period:         DefaultPeriod(today),
			EnrollmentDate: today,
			Status:         StatusActive,
			PaymentStatus:  PaymentPending,
			EnrollmentFee:  decimal.Zero,
			MonthlyFee:     decimal.Zero,
			PaidAmount:     decimal.Zero,
		},
		Tab:        TabStudent,
		Open:       true,
		PaidAmount: decimal.Zero,
	}
}

// DefaultPeriod is the school semester of t: YYYY/1 until June, YYYY/2 after.
func DefaultPeriod(t time.Time) string {
	semester := 1
	if t.Month() > time.June {
		semester = 2
	}
	return fmt.Sprintf("%d/%d", t.Year(), semester)
}

// TotalToPay is the enrollment fee, plus the first monthly fee when included.
func (d Draft) TotalToPay() decimal.Decimal {
	total := d.Registration.EnrollmentFee
	if d.IncludeFirstMonth {
		total = total.Add(d.Registration.MonthlyFee)
	}
	return total
}

func (d Draft) IsEnrollmentPaid() bool {
	return d.PaidAmount.GreaterThanOrEqual(d.Registration.EnrollmentFee)
}

// PaymentStatus is paid once the paid amount covers the total to pay.
func (d Draft) PaymentStatus() PaymentStatus {
	if d.PaidAmount.GreaterThanOrEqual(d.TotalToPay()) {
		return PaymentPaid
	}
	return PaymentPending
}

func (d Draft) withoutFieldErrors(fields ...string) Draft {
	if len(d.FieldErrors) == 0 {
		return d
	}
	errs := make(map[string]string, len(d.FieldErrors))
	for k, v := range d.FieldErrors {
		errs[k] = v
	}
	for _, f := range fields {
		delete(errs, f)
	}
	if len(errs) == 0 {
		errs = nil
	}
	d.FieldErrors = errs
	return d
}
