package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/escola/core"
	"github.com/trezcool/escola/core/grade"
)

const gradeColumns = `student_id, student_name, evaluation1, evaluation2, evaluation3, evaluation4, final_result, updated_at`

type gradeRow struct {
	StudentID   int                 `db:"student_id"`
	StudentName string              `db:"student_name"`
	Evaluation1 decimal.NullDecimal `db:"evaluation1"`
	Evaluation2 decimal.NullDecimal `db:"evaluation2"`
	Evaluation3 decimal.NullDecimal `db:"evaluation3"`
	Evaluation4 decimal.NullDecimal `db:"evaluation4"`
	FinalResult decimal.NullDecimal `db:"final_result"`
	UpdatedAt   time.Time           `db:"updated_at"`
}

func (r *gradeRow) dest() []interface{} {
	return []interface{}{
		&r.StudentID, &r.StudentName, &r.Evaluation1, &r.Evaluation2, &r.Evaluation3, &r.Evaluation4, &r.FinalResult, &r.UpdatedAt,
	}
}

func (r gradeRow) record() grade.Record {
	return grade.Record{
		StudentID:   r.StudentID,
		StudentName: r.StudentName,
		Evaluations: [4]decimal.NullDecimal{r.Evaluation1, r.Evaluation2, r.Evaluation3, r.Evaluation4},
		FinalResult: r.FinalResult,
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

type gradeRepository struct {
	repository
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(exec core.DBExecutor) grade.Repository {
	return &gradeRepository{repository{exec: exec}}
}

func (repo gradeRepository) GetRecord(ctx context.Context, studentID int, exec ...core.DBExecutor) (grade.Record, error) {
	var r gradeRow
	err := repo.getExec(exec).
		QueryRowContext(ctx, `SELECT `+gradeColumns+` FROM grade WHERE student_id = $1`, studentID).
		Scan(r.dest()...)
	if err != nil {
		return grade.Record{}, trapNoRowsErr(err, grade.ErrNotFound, "getting grade record")
	}
	return r.record(), nil
}

func (repo gradeRepository) SaveRecord(ctx context.Context, rec grade.Record, exec ...core.DBExecutor) (grade.Record, error) {
	_, err := repo.getExec(exec).ExecContext(
		ctx,
		`INSERT INTO grade (`+gradeColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (student_id) DO UPDATE SET
			student_name = EXCLUDED.student_name,
			evaluation1 = EXCLUDED.evaluation1,
			evaluation2 = EXCLUDED.evaluation2,
			evaluation3 = EXCLUDED.evaluation3,
			evaluation4 = EXCLUDED.evaluation4,
			final_result = EXCLUDED.final_result,
			updated_at = EXCLUDED.updated_at`,
		rec.StudentID, rec.StudentName,
		rec.Evaluations[0], rec.Evaluations[1], rec.Evaluations[2], rec.Evaluations[3],
		rec.FinalResult, rec.UpdatedAt.UTC(),
	)
	if err != nil {
		return grade.Record{}, errors.Wrap(err, "saving grade record")
	}
	return rec, nil
}

func (repo gradeRepository) QueryRecords(ctx context.Context, exec ...core.DBExecutor) ([]grade.Record, error) {
	var rows []gradeRow
	err := selectRows(ctx, repo.getExec(exec), &rows, `SELECT `+gradeColumns+` FROM grade ORDER BY student_name, student_id`)
	if err != nil {
		return nil, errors.Wrap(err, "querying grade records")
	}
	recs := make([]grade.Record, 0, len(rows))
	for _, r := range rows {
		recs = append(recs, r.record())
	}
	return recs, nil
}
