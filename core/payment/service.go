package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kat-co/vala"
	pkgerrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/escola/core"
)

var (
	// errors
	ErrNotFound          = errors.New("payment not found")
	ErrUnknownStudent    = errors.New("student has no active registration")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type (
	// Account is what the payments of a student are aggregated against.
	Account struct {
		StudentID   int
		StudentName string
		ClassName   string
		MonthlyFee  decimal.Decimal
	}

	// AccountLookup resolves student accounts. Unknown students yield ErrUnknownStudent.
	AccountLookup interface {
		GetAccount(ctx context.Context, studentID int) (Account, error)
		Accounts(ctx context.Context) ([]Account, error)
	}

	Repository interface {
		CreatePayment(ctx context.Context, p Payment, exec ...core.DBExecutor) (Payment, error)
		GetPayment(ctx context.Context, id string, exec ...core.DBExecutor) (Payment, error)
		UpdatePayment(ctx context.Context, p Payment, exec ...core.DBExecutor) (Payment, error)
		// QueryPayments returns the matching payments ordered by due date, then creation date.
		QueryPayments(ctx context.Context, filter QueryFilter, exec ...core.DBExecutor) ([]Payment, error)
		// MarkOverdue persists pending → overdue for unpaid payments due before today.
		MarkOverdue(ctx context.Context, today time.Time, exec ...core.DBExecutor) (int, error)
	}
)

type Service struct {
	repo     Repository
	accounts AccountLookup
	dueDay   int
	now      func() time.Time
}

func NewService(repo Repository, accounts AccountLookup, conf *core.Config) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(accounts, "accounts"),
		vala.IsNotNil(conf, "conf"),
	).CheckAndPanic()

	return &Service{
		repo:     repo,
		accounts: accounts,
		dueDay:   conf.Payments.DueDay,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the service's clock.
func (svc *Service) SetClock(now func() time.Time) {
	svc.now = now
}

// DueDate returns the configured due day of the reference month, clamped to the month's length.
func (svc *Service) DueDate(ref time.Time) time.Time {
	day := svc.dueDay
	if day < 1 {
		day = 1
	}
	lastDay := time.Date(ref.Year(), ref.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(ref.Year(), ref.Month(), day, 0, 0, 0, 0, time.UTC)
}

// RecordPayment records a payment received now for the given month reference.
// Payments for a month after the current one are advance payments.
func (svc *Service) RecordPayment(ctx context.Context, studentID int, np NewPayment) (Payment, error) {
	if _, err := svc.accounts.GetAccount(ctx, studentID); err != nil {
		return Payment{}, err
	}

	ref, err := time.Parse(MonthLayout, np.MonthReference)
	if err != nil {
		return Payment{}, core.NewValidationError(err, core.FieldError{Field: "month_reference", Error: "invalid month reference"})
	}

	now := svc.now()
	status := StatusPaid
	if ref.After(time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)) {
		status = StatusAdvance
	}

	id := uuid.New().String()
	p := Payment{
		ID:             id,
		StudentID:      studentID,
		Amount:         np.Amount,
		DueDate:        svc.DueDate(ref),
		PaidDate:       null.TimeFrom(core.Today(now)),
		Status:         status,
		Method:         np.Method,
		MonthReference: np.MonthReference,
		Description:    np.Description,
		ReceiptNumber:  fmt.Sprintf("REC-%s-%s", now.Format("20060102"), strings.ToUpper(id[:8])),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	p, err = svc.repo.CreatePayment(ctx, p)
	return p, pkgerrors.Wrap(err, "creating payment")
}

// UpdatePayment applies a partial update: only the status, paid date and receipt number may change.
func (svc *Service) UpdatePayment(ctx context.Context, id string, up UpdatePayment) (Payment, error) {
	p, err := svc.repo.GetPayment(ctx, id)
	if err != nil {
		return Payment{}, err
	}
	now := svc.now()
	p = DeriveStatuses([]Payment{p}, now)[0]

	if up.Status != nil {
		newStatus := *up.Status
		if !p.CanTransitionTo(newStatus) {
			return Payment{}, core.NewValidationError(ErrInvalidTransition, core.FieldError{
				Field: "status",
				Error: fmt.Sprintf("cannot change status from %s to %s", p.Status, newStatus),
			})
		}
		p.Status = newStatus

		switch newStatus {
		case StatusPending, StatusOverdue:
			p.PaidDate = null.Time{}
		case StatusPaid, StatusAdvance:
			if !p.PaidDate.Valid {
				p.PaidDate = null.TimeFrom(core.Today(now))
			}
		}
	}
	if up.PaidDate.Valid {
		p.PaidDate = null.TimeFrom(core.Today(up.PaidDate.Time.UTC()))
	}
	if up.ReceiptNumber != nil {
		p.ReceiptNumber = *up.ReceiptNumber
	}
	p.UpdatedAt = now

	p, err = svc.repo.UpdatePayment(ctx, p)
	return p, pkgerrors.Wrap(err, "updating payment")
}

// StudentInfo aggregates the payments of a student, with overdue statuses derived as of now.
func (svc *Service) StudentInfo(ctx context.Context, studentID int) (StudentPaymentInfo, error) {
	acc, err := svc.accounts.GetAccount(ctx, studentID)
	if err != nil {
		return StudentPaymentInfo{}, err
	}
	payments, err := svc.repo.QueryPayments(ctx, QueryFilter{StudentID: studentID})
	if err != nil {
		return StudentPaymentInfo{}, pkgerrors.Wrap(err, "querying payments")
	}
	return svc.aggregate(acc, payments), nil
}

// Summaries aggregates the payments of every registered student.
func (svc *Service) Summaries(ctx context.Context) ([]StudentPaymentInfo, error) {
	accounts, err := svc.accounts.Accounts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying accounts")
	}
	payments, err := svc.repo.QueryPayments(ctx, QueryFilter{})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying payments")
	}

	byStudent := make(map[int][]Payment, len(accounts))
	for _, p := range payments {
		byStudent[p.StudentID] = append(byStudent[p.StudentID], p)
	}

	infos := make([]StudentPaymentInfo, 0, len(accounts))
	for _, acc := range accounts {
		infos = append(infos, svc.aggregate(acc, byStudent[acc.StudentID]))
	}
	return infos, nil
}

// RefreshOverdue persists the overdue transitions of past-due payments.
func (svc *Service) RefreshOverdue(ctx context.Context) (int, error) {
	n, err := svc.repo.MarkOverdue(ctx, core.Today(svc.now()))
	return n, pkgerrors.Wrap(err, "marking overdue payments")
}

func (svc *Service) aggregate(acc Account, payments []Payment) StudentPaymentInfo {
	info := ComputePaymentInfo(DeriveStatuses(payments, svc.now()), acc.MonthlyFee)
	info.StudentID = acc.StudentID
	info.StudentName = acc.StudentName
	info.ClassName = acc.ClassName
	return info
}
