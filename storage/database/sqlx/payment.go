package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/escola/core"
	"github.com/trezcool/escola/core/payment"
)

const paymentColumns = `id, student_id, amount, due_date, paid_date, status, method, month_reference, description,
receipt_number, created_at, updated_at`

type paymentRow struct {
	ID             string          `db:"id"`
	StudentID      int             `db:"student_id"`
	Amount         decimal.Decimal `db:"amount"`
	DueDate        time.Time       `db:"due_date"`
	PaidDate       null.Time       `db:"paid_date"`
	Status         string          `db:"status"`
	Method         string          `db:"method"`
	MonthReference string          `db:"month_reference"`
	Description    null.String     `db:"description"`
	ReceiptNumber  null.String     `db:"receipt_number"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

func (r *paymentRow) dest() []interface{} {
	return []interface{}{
		&r.ID, &r.StudentID, &r.Amount, &r.DueDate, &r.PaidDate, &r.Status, &r.Method, &r.MonthReference,
		&r.Description, &r.ReceiptNumber, &r.CreatedAt, &r.UpdatedAt,
	}
}

func (r paymentRow) payment() payment.Payment {
	return payment.Payment{
		ID:             r.ID,
		StudentID:      r.StudentID,
		Amount:         r.Amount,
		DueDate:        r.DueDate.UTC(),
		PaidDate:       r.PaidDate,
		Status:         payment.Status(r.Status),
		Method:         payment.Method(r.Method),
		MonthReference: r.MonthReference,
		Description:    r.Description.String,
		ReceiptNumber:  r.ReceiptNumber.String,
		CreatedAt:      r.CreatedAt.UTC(),
		UpdatedAt:      r.UpdatedAt.UTC(),
	}
}

type paymentRepository struct {
	repository
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(exec core.DBExecutor) payment.Repository {
	return &paymentRepository{repository{exec: exec}}
}

func (repo paymentRepository) CreatePayment(ctx context.Context, p payment.Payment, exec ...core.DBExecutor) (payment.Payment, error) {
	_, err := repo.getExec(exec).ExecContext(
		ctx,
		`INSERT INTO payment (`+paymentColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.ID, p.StudentID, p.Amount, p.DueDate, p.PaidDate, string(p.Status), string(p.Method), p.MonthReference,
		null.NewString(p.Description, p.Description != ""), null.NewString(p.ReceiptNumber, p.ReceiptNumber != ""),
		p.CreatedAt.UTC(), p.UpdatedAt.UTC(),
	)
	if err != nil {
		return payment.Payment{}, errors.Wrap(err, "inserting payment")
	}
	return p, nil
}

func (repo paymentRepository) GetPayment(ctx context.Context, id string, exec ...core.DBExecutor) (payment.Payment, error) {
	var r paymentRow
	err := repo.getExec(exec).
		QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payment WHERE id::text = $1`, id).
		Scan(r.dest()...)
	if err != nil {
		return payment.Payment{}, trapNoRowsErr(err, payment.ErrNotFound, "getting payment")
	}
	return r.payment(), nil
}

func (repo paymentRepository) UpdatePayment(ctx context.Context, p payment.Payment, exec ...core.DBExecutor) (payment.Payment, error) {
	res, err := repo.getExec(exec).ExecContext(
		ctx,
		`UPDATE payment SET status = $2, paid_date = $3, receipt_number = $4, updated_at = $5 WHERE id = $1`,
		p.ID, string(p.Status), p.PaidDate, null.NewString(p.ReceiptNumber, p.ReceiptNumber != ""), p.UpdatedAt.UTC(),
	)
	if err != nil {
		return payment.Payment{}, errors.Wrap(err, "updating payment")
	}
	if err = rowsAffected(res, payment.ErrNotFound); err != nil {
		return payment.Payment{}, err
	}
	return repo.GetPayment(ctx, p.ID, exec...)
}

func (repo paymentRepository) QueryPayments(ctx context.Context, filter payment.QueryFilter, exec ...core.DBExecutor) ([]payment.Payment, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.StudentID != 0 {
		conds = append(conds, "student_id = ?")
		args = append(args, filter.StudentID)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		conds = append(conds, "status IN (?)")
		args = append(args, statuses)
	}

	q := `SELECT ` + paymentColumns + ` FROM payment`
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}
	q += ` ORDER BY due_date ASC, created_at ASC`

	q, args, err := in(q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "building payments query")
	}

	var rows []paymentRow
	if err = selectRows(ctx, repo.getExec(exec), &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying payments")
	}
	payments := make([]payment.Payment, 0, len(rows))
	for _, r := range rows {
		payments = append(payments, r.payment())
	}
	return payments, nil
}

func (repo paymentRepository) MarkOverdue(ctx context.Context, today time.Time, exec ...core.DBExecutor) (int, error) {
	res, err := repo.getExec(exec).ExecContext(
		ctx,
		`UPDATE payment SET status = $1, updated_at = $2
		WHERE status = $3 AND paid_date IS NULL AND due_date < $4`,
		string(payment.StatusOverdue), time.Now().UTC(), string(payment.StatusPending), core.Today(today),
	)
	if err != nil {
		return 0, errors.Wrap(err, "marking overdue payments")
	}
	n, err := res.RowsAffected()
	return int(n), errors.Wrap(err, "counting overdue payments")
}
