package grade

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Sheet fields
const (
	FieldEvaluation1 = "evaluation1"
	FieldEvaluation2 = "evaluation2"
	FieldEvaluation3 = "evaluation3"
	FieldEvaluation4 = "evaluation4"
	FieldFinalResult = "final_result"
)

var (
	Fields = []string{FieldEvaluation1, FieldEvaluation2, FieldEvaluation3, FieldEvaluation4, FieldFinalResult}

	entryRegex = regexp.MustCompile(`^\d*\.?\d{0,1}$`)
)

// AcceptEntry returns next when it is a score of at most one decimal not above 20, current otherwise.
func AcceptEntry(current, next string) string {
	if !entryRegex.MatchString(next) {
		return current
	}
	if next == "" || next == "." {
		return next
	}
	val, err := decimal.NewFromString(strings.TrimSuffix(next, "."))
	if err != nil || val.GreaterThan(MaxScore) {
		return current
	}
	return next
}

// Sheet holds the text being typed for each field of a Record.
type Sheet struct {
	values map[string]string
}

func NewSheet(r Record) *Sheet {
	s := &Sheet{values: make(map[string]string, len(Fields))}
	for i, e := range r.Evaluations {
		s.values[Fields[i]] = formatScore(e)
	}
	s.values[FieldFinalResult] = formatScore(r.FinalResult)
	return s
}

func formatScore(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

// Enter types value into field. It reports false, leaving the field unchanged, when value is rejected.
func (s *Sheet) Enter(field, value string) bool {
	current, ok := s.values[field]
	if !ok {
		return false
	}
	value = strings.TrimSpace(value)
	if AcceptEntry(current, value) != value {
		return false
	}
	s.values[field] = value
	return true
}

func (s *Sheet) Value(field string) string {
	return s.values[field]
}

// Apply writes the sheet's values into r. Blank fields are stored as null.
func (s *Sheet) Apply(r *Record) {
	for i := range r.Evaluations {
		r.Evaluations[i] = parseScore(s.values[Fields[i]])
	}
	r.FinalResult = parseScore(s.values[FieldFinalResult])
}

func parseScore(v string) decimal.NullDecimal {
	v = strings.TrimSuffix(v, ".")
	if v == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
