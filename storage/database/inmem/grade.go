package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/escola/core"
	"github.com/trezcool/escola/core/grade"
)

type gradeRepository struct {
	db *gradeTable
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *DB) grade.Repository {
	return &gradeRepository{db: db.grade}
}

func (repo *gradeRepository) GetRecord(_ context.Context, studentID int, _ ...core.DBExecutor) (grade.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if r, ok := repo.db.table[studentID]; ok {
		return *r, nil
	}
	return grade.Record{}, grade.ErrNotFound
}

func (repo *gradeRepository) SaveRecord(_ context.Context, r grade.Record, _ ...core.DBExecutor) (grade.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[r.StudentID] = &r
	return r, nil
}

func (repo *gradeRepository) QueryRecords(_ context.Context, _ ...core.DBExecutor) ([]grade.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	recs := make([]grade.Record, 0, len(repo.db.table))
	for _, r := range repo.db.table {
		recs = append(recs, *r)
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].StudentName != recs[j].StudentName {
			return recs[i].StudentName < recs[j].StudentName
		}
		return recs[i].StudentID < recs[j].StudentID
	})
	return recs, nil
}
