package grade

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteGradesCSV(t *testing.T) {
	recs := []Record{
		{StudentID: 1, StudentName: "Maria Santos", Evaluations: [4]decimal.NullDecimal{nd("18"), nd("17"), nd("19"), nd("18")}},
		{StudentID: 2, StudentName: "João Pedro", Evaluations: [4]decimal.NullDecimal{nd("8"), {}, {}, {}}, FinalResult: nd("10")},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteGradesCSV(&buf, recs))

	want := "ID,Nome,Avaliação 1,Avaliação 2,Avaliação 3,Avaliação 4,Média,Resultado Final,Situação\n" +
		"1,Maria Santos,18,17,19,18,18.0,,Excelente\n" +
		"2,João Pedro,8,,,,2.0,10,Aprovado\n"
	assert.Equal(t, want, buf.String())
}
