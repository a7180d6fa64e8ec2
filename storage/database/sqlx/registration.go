package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/escola/core"
	"github.com/trezcool/escola/core/registration"
)

const registrationColumns = `id, student_id, student_name, student_code, student_email, course_id, course_name, class_id,
class_name, period, enrollment_date, status, payment_status, enrollment_fee, monthly_fee, paid_amount, usuario, user_id,
observations, created_at`

var (
	registrationOrderFields  = map[string]bool{"id": true, "student_name": true, "period": true, "enrollment_date": true}
	registrationDefaultOrder = []core.DBOrdering{{Field: "enrollment_date"}, {Field: "id"}}
)

type registrationRow struct {
	ID             int             `db:"id"`
	StudentID      int             `db:"student_id"`
	StudentName    string          `db:"student_name"`
	StudentCode    string          `db:"student_code"`
	StudentEmail   null.String     `db:"student_email"`
	CourseID       string          `db:"course_id"`
	CourseName     string          `db:"course_name"`
	ClassID        null.Int        `db:"class_id"`
	ClassName      null.String     `db:"class_name"`
	Period         string          `db:"period"`
	EnrollmentDate time.Time       `db:"enrollment_date"`
	Status         string          `db:"status"`
	PaymentStatus  string          `db:"payment_status"`
	EnrollmentFee  decimal.Decimal `db:"enrollment_fee"`
	MonthlyFee     decimal.Decimal `db:"monthly_fee"`
	PaidAmount     decimal.Decimal `db:"paid_amount"`
	Usuario        string          `db:"usuario"`
	UserID         null.String     `db:"user_id"`
	Observations   null.String     `db:"observations"`
	CreatedAt      time.Time       `db:"created_at"`
}

func (r registrationRow) registration() registration.Registration {
	return registration.Registration{
		ID:             r.ID,
		StudentID:      r.StudentID,
		StudentName:    r.StudentName,
		StudentCode:    r.StudentCode,
		StudentEmail:   r.StudentEmail.String,
		CourseID:       r.CourseID,
		CourseName:     r.CourseName,
		ClassID:        r.ClassID.Int,
		ClassName:      r.ClassName.String,
		Period:         r.Period,
		EnrollmentDate: r.EnrollmentDate.UTC(),
		Status:         registration.Status(r.Status),
		PaymentStatus:  registration.PaymentStatus(r.PaymentStatus),
		EnrollmentFee:  r.EnrollmentFee,
		MonthlyFee:     r.MonthlyFee,
		PaidAmount:     r.PaidAmount,
		Usuario:        r.Usuario,
		UserID:         r.UserID.String,
		Observations:   r.Observations.String,
		CreatedAt:      r.CreatedAt.UTC(),
	}
}

type registrationRepository struct {
	repository
}

var _ registration.Repository = (*registrationRepository)(nil) // interface compliance check

func NewRegistrationRepository(exec core.DBExecutor) registration.Repository {
	return &registrationRepository{repository{exec: exec}}
}

func (repo registrationRepository) CreateRegistration(ctx context.Context, reg registration.Registration, exec ...core.DBExecutor) (registration.Registration, error) {
	reg.Senha = ""
	err := repo.getExec(exec).QueryRowContext(
		ctx,
		`INSERT INTO registration (`+strings.TrimPrefix(registrationColumns, "id, ")+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id`,
		reg.StudentID, reg.StudentName, reg.StudentCode, null.NewString(reg.StudentEmail, reg.StudentEmail != ""),
		reg.CourseID, reg.CourseName, null.NewInt(reg.ClassID, reg.ClassID != 0), null.NewString(reg.ClassName, reg.ClassName != ""),
		reg.Period, reg.EnrollmentDate, string(reg.Status), string(reg.PaymentStatus),
		reg.EnrollmentFee, reg.MonthlyFee, reg.PaidAmount, reg.Usuario,
		null.NewString(reg.UserID, reg.UserID != ""), null.NewString(reg.Observations, reg.Observations != ""),
		reg.CreatedAt.UTC(),
	).Scan(&reg.ID)
	if err != nil {
		return registration.Registration{}, errors.Wrap(err, "inserting registration")
	}
	return reg, nil
}

func (repo registrationRepository) QueryRegistrations(
	ctx context.Context,
	filter registration.QueryFilter,
	ordering []core.DBOrdering,
	exec ...core.DBExecutor,
) ([]registration.Registration, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.StudentID != 0 {
		conds = append(conds, "student_id = ?")
		args = append(args, filter.StudentID)
	}
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Period != "" {
		conds = append(conds, "period = ?")
		args = append(args, filter.Period)
	}

	q := `SELECT ` + registrationColumns + ` FROM registration`
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}

	if len(ordering) == 0 {
		ordering = registrationDefaultOrder
	}
	orderBy := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		if registrationOrderFields[ord.Field] {
			orderBy = append(orderBy, ord.String())
		}
	}
	if len(orderBy) > 0 {
		q += ` ORDER BY ` + strings.Join(orderBy, ", ")
	}

	q, args, err := in(q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "building registrations query")
	}

	var rows []registrationRow
	if err = selectRows(ctx, repo.getExec(exec), &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying registrations")
	}
	regs := make([]registration.Registration, 0, len(rows))
	for _, r := range rows {
		regs = append(regs, r.registration())
	}
	return regs, nil
}

func (repo registrationRepository) UsuarioExists(ctx context.Context, usuario string, exec ...core.DBExecutor) (bool, error) {
	ok, err := exists(ctx, repo.getExec(exec), `SELECT 1 FROM registration WHERE usuario = $1`, usuario)
	return ok, errors.Wrap(err, "checking usuario")
}
