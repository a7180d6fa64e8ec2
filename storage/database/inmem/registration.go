package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/escola/core"
	"github.com/trezcool/escola/core/registration"
)

type registrationRepository struct {
	db *registrationTable
}

var _ registration.Repository = (*registrationRepository)(nil) // interface compliance check

func NewRegistrationRepository(db *DB) registration.Repository {
	return &registrationRepository{db: db.registration}
}

func (repo *registrationRepository) CreateRegistration(_ context.Context, reg registration.Registration, _ ...core.DBExecutor) (registration.Registration, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pk++
	reg.ID = repo.db.pk
	reg.Senha = ""
	repo.db.table[reg.ID] = &reg
	return reg, nil
}

func (repo *registrationRepository) QueryRegistrations(
	_ context.Context,
	filter registration.QueryFilter,
	ordering []core.DBOrdering,
	_ ...core.DBExecutor,
) ([]registration.Registration, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	regs := make([]registration.Registration, 0)
	for _, reg := range repo.db.table {
		if filter.StudentID != 0 && reg.StudentID != filter.StudentID {
			continue
		}
		if filter.Status != "" && reg.Status != filter.Status {
			continue
		}
		if filter.Period != "" && reg.Period != filter.Period {
			continue
		}
		regs = append(regs, *reg)
	}

	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "enrollment_date"}, {Field: "id"}}
	}
	sort.SliceStable(regs, func(i, j int) bool {
		for _, ord := range ordering {
			c := compareRegistrations(regs[i], regs[j], ord.Field)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
	return regs, nil
}

func compareRegistrations(a, b registration.Registration, field string) int {
	switch field {
	case "id":
		return a.ID - b.ID
	case "student_name":
		return strings.Compare(a.StudentName, b.StudentName)
	case "period":
		return strings.Compare(a.Period, b.Period)
	case "enrollment_date":
		switch {
		case a.EnrollmentDate.Before(b.EnrollmentDate):
			return -1
		case a.EnrollmentDate.After(b.EnrollmentDate):
			return 1
		}
	}
	return 0
}

func (repo *registrationRepository) UsuarioExists(_ context.Context, usuario string, _ ...core.DBExecutor) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, reg := range repo.db.table {
		if reg.Usuario == usuario {
			return true, nil
		}
	}
	return false, nil
}
