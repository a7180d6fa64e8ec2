package grade_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/escola/core"
	"github.com/trezcool/escola/core/grade"
	inmemdb "github.com/trezcool/escola/storage/database/inmem"
)

var errUnregistered = errors.New("student not registered")

type rosterMock map[int]string

func (m rosterMock) StudentName(_ context.Context, studentID int) (string, error) {
	if name, ok := m[studentID]; ok {
		return name, nil
	}
	return "", errUnregistered
}

func TestService_Enter(t *testing.T) {
	ctx := context.Background()
	repo := inmemdb.NewGradeRepository(inmemdb.Open())
	svc := grade.NewService(repo, rosterMock{1: "Maria Santos", 2: "João Machava"})

	t.Run("unknown field", func(t *testing.T) {
		_, _, err := svc.Enter(ctx, 1, map[string]string{"evaluation5": "10"})
		require.Error(t, err)
		assert.True(t, core.IsValidationError(err))
	})

	t.Run("unregistered student", func(t *testing.T) {
		_, _, err := svc.Enter(ctx, 9, map[string]string{grade.FieldEvaluation1: "10"})
		assert.Equal(t, errUnregistered, err)
	})

	t.Run("new record", func(t *testing.T) {
		rec, rejected, err := svc.Enter(ctx, 1, map[string]string{
			grade.FieldEvaluation1: "16",
			grade.FieldEvaluation2: "14.5",
			grade.FieldEvaluation3: "21",
			grade.FieldEvaluation4: "1.25",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{grade.FieldEvaluation3, grade.FieldEvaluation4}, rejected)
		assert.Equal(t, "Maria Santos", rec.StudentName)
		assert.True(t, rec.Evaluations[0].Valid)
		assert.True(t, rec.Evaluations[1].Decimal.Equal(decimal.RequireFromString("14.5")))
		assert.False(t, rec.Evaluations[2].Valid)
		assert.False(t, rec.Evaluations[3].Valid)
		assert.False(t, rec.FinalResult.Valid)
		// (16 + 14.5) / 4
		assert.True(t, rec.Average().Equal(decimal.RequireFromString("7.6")), "Average = %s", rec.Average())
		assert.Equal(t, grade.BandFailed, rec.Status())
	})

	t.Run("update keeps other fields", func(t *testing.T) {
		rec, rejected, err := svc.Enter(ctx, 1, map[string]string{
			grade.FieldEvaluation3: "15",
			grade.FieldEvaluation4: "15.5",
			grade.FieldFinalResult: "18",
		})
		require.NoError(t, err)
		assert.Empty(t, rejected)
		assert.True(t, rec.Evaluations[0].Decimal.Equal(decimal.NewFromInt(16)))
		assert.True(t, rec.Average().Equal(decimal.RequireFromString("15.3")), "Average = %s", rec.Average())
		assert.Equal(t, grade.BandExcellent, rec.Status())
	})

	t.Run("clearing a field", func(t *testing.T) {
		rec, _, err := svc.Enter(ctx, 1, map[string]string{grade.FieldFinalResult: ""})
		require.NoError(t, err)
		assert.False(t, rec.FinalResult.Valid)
		assert.Equal(t, grade.BandGood, rec.Status())
	})

	t.Run("query", func(t *testing.T) {
		_, _, err := svc.Enter(ctx, 2, map[string]string{grade.FieldEvaluation1: "10"})
		require.NoError(t, err)

		recs, err := svc.Query(ctx)
		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Equal(t, "João Machava", recs[0].StudentName)
		assert.Equal(t, "Maria Santos", recs[1].StudentName)
	})
}
