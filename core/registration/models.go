package registration

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusSuspended, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPending PaymentStatus = "pending"
	PaymentOverdue PaymentStatus = "overdue"
)

// DateLayout formats enrollment dates.
const DateLayout = "2006-01-02"

// Registration is the enrollment of a student in a course for a period.
// Senha only travels from the wizard to the save call; it is never stored in clear.
type Registration struct {
	ID             int             `json:"id"`
	StudentID      int             `json:"student_id"`
	StudentName    string          `json:"student_name"`
	StudentCode    string          `json:"student_code"`
	StudentEmail   string          `json:"student_email,omitempty"`
	CourseID       string          `json:"course_id"`
	CourseName     string          `json:"course_name"`
	ClassID        int             `json:"class_id,omitempty"`
	ClassName      string          `json:"class_name,omitempty"`
	Period         string          `json:"period"`
	EnrollmentDate time.Time       `json:"enrollment_date"`
	Status         Status          `json:"status"`
	PaymentStatus  PaymentStatus   `json:"payment_status"`
	EnrollmentFee  decimal.Decimal `json:"enrollment_fee"`
	MonthlyFee     decimal.Decimal `json:"monthly_fee"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	Usuario        string          `json:"usuario"`
	Senha          string          `json:"senha,omitempty"`
	UserID         string          `json:"user_id,omitempty"`
	Observations   string          `json:"observations,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Validation messages
const (
	msgSelectStudent = "Selecione um aluno"
	msgSelectCourse  = "Selecione um curso"
	msgRequired      = "Campo obrigatório"
	msgFixFields     = "Preencha os campos obrigatórios"
	msgEnrollmentDue = "O valor pago não cobre a taxa de matrícula"
	msgSaveFailed    = "Erro ao salvar a matrícula"
)

// FieldErrors reports the missing fields of a registration about to be committed, keyed by JSON name.
func (r Registration) FieldErrors() map[string]string {
	errs := make(map[string]string)
	if r.StudentID <= 0 {
		errs["student_id"] = msgSelectStudent
	}
	if r.CourseID == "" {
		errs["course_id"] = msgSelectCourse
	}
	if r.Usuario == "" {
		errs["usuario"] = msgRequired
	}
	if r.Senha == "" {
		errs["senha"] = msgRequired
	}
	if r.Period == "" {
		errs["period"] = msgRequired
	}
	if r.EnrollmentDate.IsZero() {
		errs["enrollment_date"] = msgRequired
	}
	return errs
}

type QueryFilter struct {
	StudentID int    `query:"student_id"`
	Status    Status `query:"status"`
	Period    string `query:"period"`
}
