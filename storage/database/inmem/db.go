package inmemdb

import (
	"sync"

	"github.com/trezcool/escola/core/grade"
	"github.com/trezcool/escola/core/payment"
	"github.com/trezcool/escola/core/registration"
	"github.com/trezcool/escola/core/user"
)

type (
	DB struct {
		user         *userTable
		payment      *paymentTable
		registration *registrationTable
		grade        *gradeTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	paymentTable struct {
		sync.RWMutex
		table map[string]*payment.Payment
		seq   []string // insertion order
	}

	registrationTable struct {
		sync.RWMutex
		table map[int]*registration.Registration
		pk    int
	}

	gradeTable struct {
		sync.RWMutex
		table map[int]*grade.Record
	}
)

func Open() *DB {
	return &DB{
		user:         &userTable{table: make(map[string]*user.User)},
		payment:      &paymentTable{table: make(map[string]*payment.Payment)},
		registration: &registrationTable{table: make(map[int]*registration.Registration)},
		grade:        &gradeTable{table: make(map[int]*grade.Record)},
	}
}
