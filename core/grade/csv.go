package grade

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

var gradesCSVHeader = []string{
	"ID", "Nome", "Avaliação 1", "Avaliação 2", "Avaliação 3", "Avaliação 4", "Média", "Resultado Final", "Situação",
}

// WriteGradesCSV writes one line per record. Blank scores are written as empty cells.
func WriteGradesCSV(w io.Writer, recs []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(gradesCSVHeader); err != nil {
		return errors.Wrap(err, "writing header")
	}
	for _, r := range recs {
		rec := make([]string, 0, len(gradesCSVHeader))
		rec = append(rec, strconv.Itoa(r.StudentID), r.StudentName)
		for _, e := range r.Evaluations {
			rec = append(rec, formatScore(e))
		}
		rec = append(rec, r.Average().StringFixed(1), formatScore(r.FinalResult), r.Status())
		if err := cw.Write(rec); err != nil {
			return errors.Wrap(err, "writing record")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing csv")
}
