package grade

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status bands
const (
	BandExcellent = "Excelente"
	BandGood      = "Bom"
	BandPassed    = "Aprovado"
	BandFailed    = "Reprovado"
)

var (
	MaxScore = decimal.NewFromInt(20)

	excellentMin = decimal.NewFromInt(18)
	goodMin      = decimal.NewFromInt(14)
	passedMin    = decimal.NewFromInt(10)
	evalCount    = decimal.NewFromInt(4)
)

type Record struct {
	StudentID   int                    `json:"student_id"`
	StudentName string                 `json:"student_name"`
	Evaluations [4]decimal.NullDecimal `json:"evaluations"`
	FinalResult decimal.NullDecimal    `json:"final_result"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// Average is round(sum/4, 1). Blank evaluations count as 0 and still count in the divisor.
func Average(evals [4]decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range evals {
		sum = sum.Add(e)
	}
	return sum.DivRound(evalCount, 8).Round(1)
}

// Band classifies a score.
func Band(score decimal.Decimal) string {
	switch {
	case score.GreaterThanOrEqual(excellentMin):
		return BandExcellent
	case score.GreaterThanOrEqual(goodMin):
		return BandGood
	case score.GreaterThanOrEqual(passedMin):
		return BandPassed
	default:
		return BandFailed
	}
}

func (r Record) Average() decimal.Decimal {
	var evals [4]decimal.Decimal
	for i, e := range r.Evaluations {
		if e.Valid {
			evals[i] = e.Decimal
		}
	}
	return Average(evals)
}

// Status bands the final result when there is one, the average otherwise.
func (r Record) Status() string {
	if r.FinalResult.Valid {
		return Band(r.FinalResult.Decimal)
	}
	return Band(r.Average())
}

// View is the JSON representation of a Record, with its derived values.
type View struct {
	Record
	Average decimal.Decimal `json:"average"`
	Status  string          `json:"status"`
}

func (r Record) View() View {
	return View{Record: r, Average: r.Average(), Status: r.Status()}
}
