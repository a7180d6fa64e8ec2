package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/escola/core"
	"github.com/trezcool/escola/core/payment"
)

type paymentRepository struct {
	db *paymentTable
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(db *DB) payment.Repository {
	return &paymentRepository{db: db.payment}
}

func (repo *paymentRepository) CreatePayment(_ context.Context, p payment.Payment, _ ...core.DBExecutor) (payment.Payment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[p.ID] = &p
	repo.db.seq = append(repo.db.seq, p.ID)
	return p, nil
}

func (repo *paymentRepository) GetPayment(_ context.Context, id string, _ ...core.DBExecutor) (payment.Payment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if p, ok := repo.db.table[id]; ok {
		return *p, nil
	}
	return payment.Payment{}, payment.ErrNotFound
}

func (repo *paymentRepository) UpdatePayment(_ context.Context, p payment.Payment, _ ...core.DBExecutor) (payment.Payment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[p.ID]
	if !ok {
		return payment.Payment{}, payment.ErrNotFound
	}
	// only the mutable fields
	orig.Status = p.Status
	orig.PaidDate = p.PaidDate
	orig.ReceiptNumber = p.ReceiptNumber
	orig.UpdatedAt = p.UpdatedAt
	return *orig, nil
}

func (repo *paymentRepository) QueryPayments(_ context.Context, filter payment.QueryFilter, _ ...core.DBExecutor) ([]payment.Payment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	statuses := make(map[payment.Status]bool, len(filter.Statuses))
	for _, s := range filter.Statuses {
		statuses[s] = true
	}

	payments := make([]payment.Payment, 0)
	for _, id := range repo.db.seq {
		p := repo.db.table[id]
		if filter.StudentID != 0 && p.StudentID != filter.StudentID {
			continue
		}
		if len(statuses) > 0 && !statuses[p.Status] {
			continue
		}
		payments = append(payments, *p)
	}
	sort.SliceStable(payments, func(i, j int) bool { return payments[i].DueDate.Before(payments[j].DueDate) })
	return payments, nil
}

func (repo *paymentRepository) MarkOverdue(_ context.Context, today time.Time, _ ...core.DBExecutor) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var n int
	for _, p := range repo.db.table {
		if payment.IsPastDue(*p, today) {
			p.Status = payment.StatusOverdue
			p.UpdatedAt = time.Now().UTC()
			n++
		}
	}
	return n, nil
}
