package payment

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// Summary statuses
const (
	SummaryOverdue  = "Em Atraso"
	SummaryAdvance  = "Adiantado"
	SummaryPending  = "Pendente"
	SummaryUpToDate = "Em Dia"
)

var paymentsCSVHeader = []string{"ID", "Nome", "Turma", "Mensalidade", "Total Pago", "Saldo", "Status"}

// SummaryStatus labels the situation of a student.
func SummaryStatus(info StudentPaymentInfo) string {
	switch {
	case len(info.OverduePayments) > 0:
		return SummaryOverdue
	case len(info.AdvancePayments) > 0 && info.CurrentBalance.IsPositive():
		return SummaryAdvance
	case info.CurrentBalance.IsNegative():
		return SummaryPending
	default:
		return SummaryUpToDate
	}
}

// WritePaymentsCSV writes one line per student.
func WritePaymentsCSV(w io.Writer, infos []StudentPaymentInfo) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(paymentsCSVHeader); err != nil {
		return errors.Wrap(err, "writing header")
	}
	for _, info := range infos {
		rec := []string{
			strconv.Itoa(info.StudentID),
			info.StudentName,
			info.ClassName,
			info.MonthlyFee.StringFixed(2),
			info.TotalPaid.StringFixed(2),
			info.CurrentBalance.StringFixed(2),
			SummaryStatus(info),
		}
		if err := cw.Write(rec); err != nil {
			return errors.Wrap(err, "writing record")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing csv")
}
