package tests

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/escola/apps/api/echo"
	"github.com/trezcool/escola/core/payment"
)

func Test_paymentApi(t *testing.T) {
	ta := newTestApp(t)
	token := getToken(t, ta.conf, ta.createAdmin(t))
	ta.register(t, 1, "Maria Santos", "maria.santos")

	thisMonth := time.Now().UTC().Format(payment.MonthLayout)
	nextMonth := time.Now().UTC().AddDate(0, 1, -time.Now().UTC().Day()+1).Format(payment.MonthLayout)

	runHTTPTests(t, ta, []httpTest{
		{name: "auth required", path: "/v1/students/1/payments", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "invalid student id", path: "/v1/students/lol/payments", token: token, wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "invalid id"})},
		{
			name: "unregistered student", path: "/v1/students/2/payments", token: token,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: payment.ErrUnknownStudent.Error()}),
		},
		{
			name: "record: invalid", method: http.MethodPost, path: "/v1/students/1/payments", body: []byte(`{"amount": "0", "method": "bitcoin", "month_reference": "2024-13"}`),
			token: token, wantCode: http.StatusBadRequest,
			wantData: []byte(`{
				"amount": "must be greater than 0",
				"method": "method must be one of [cash transfer card mpesa check other]",
				"month_reference": "must be a month reference formatted as YYYY-MM"
			}`),
		},
		{
			name: "record: zero amount", method: http.MethodPost, path: "/v1/students/1/payments",
			body:  []byte(`{"amount": "0", "method": "cash", "month_reference": "2024-03"}`),
			token: token, wantCode: http.StatusBadRequest, wantData: []byte(`{"amount": "must be greater than 0"}`),
		},
		{
			name: "record: unregistered student", method: http.MethodPost, path: "/v1/students/2/payments",
			body:  []byte(`{"amount": "2500", "method": "cash", "month_reference": "` + thisMonth + `"}`),
			token: token, wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: payment.ErrUnknownStudent.Error()}),
		},
	})

	var paid PaymentResponse
	t.Run("record", func(t *testing.T) {
		body := []byte(`{"amount": "2500", "method": "mpesa", "month_reference": "` + thisMonth + `", "description": " Mensalidade "}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/students/1/payments", token, body)
		ta.serve(req, rec)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		unmarshal(t, rec, &paid)
		assert.Equal(t, payment.StatusPaid, paid.Payment.Status)
		assert.Equal(t, "Mensalidade", paid.Payment.Description)
		assert.True(t, paid.Payment.PaidDate.Valid)
		assert.NotEmpty(t, paid.Payment.ReceiptNumber)
		assert.Equal(t, "Maria Santos", paid.Info.StudentName)
		assert.True(t, paid.Info.TotalPaid.Equal(decimal.NewFromInt(2500)), "TotalPaid = %s", paid.Info.TotalPaid)
		assert.Len(t, paid.Info.PaymentHistory, 1)
	})

	t.Run("record in advance", func(t *testing.T) {
		body := []byte(`{"amount": "2500", "method": "cash", "month_reference": "` + nextMonth + `"}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/students/1/payments", token, body)
		ta.serve(req, rec)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp PaymentResponse
		unmarshal(t, rec, &resp)
		assert.Equal(t, payment.StatusAdvance, resp.Payment.Status)
		assert.Len(t, resp.Info.AdvancePayments, 1)
		assert.True(t, resp.Info.CurrentBalance.Equal(decimal.NewFromInt(5000)))
	})

	t.Run("update", func(t *testing.T) {
		runHTTPTests(t, ta, []httpTest{
			{
				name: "not found", method: http.MethodPatch, path: "/v1/payments/lol", body: []byte(`{"status": "pending"}`),
				token: token, wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
			},
			{
				name: "invalid status", method: http.MethodPatch, path: "/v1/payments/" + paid.Payment.ID, body: []byte(`{"status": "lol"}`),
				token: token, wantCode: http.StatusBadRequest, wantData: []byte(`{"status": "status must be one of [paid pending overdue partial advance]"}`),
			},
			{
				name: "invalid transition", method: http.MethodPatch, path: "/v1/payments/" + paid.Payment.ID, body: []byte(`{"status": "overdue"}`),
				token: token, wantCode: http.StatusBadRequest, wantData: []byte(`{"status": "cannot change status from paid to overdue"}`),
			},
		})

		req, rec := newAuthRequest(http.MethodPatch, "/v1/payments/"+paid.Payment.ID, token, []byte(`{"status": "pending", "receipt_number": " R-0001 "}`))
		ta.serve(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp PaymentResponse
		unmarshal(t, rec, &resp)
		assert.Equal(t, payment.StatusPending, resp.Payment.Status)
		assert.False(t, resp.Payment.PaidDate.Valid)
		assert.Equal(t, "R-0001", resp.Payment.ReceiptNumber)
		assert.True(t, resp.Info.TotalDue.Equal(decimal.NewFromInt(2500)))
	})

	t.Run("summaries", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/payments", token)
		ta.serve(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var infos []payment.StudentPaymentInfo
		unmarshal(t, rec, &infos)
		require.Len(t, infos, 1)
		assert.Equal(t, 1, infos[0].StudentID)
		assert.Len(t, infos[0].PaymentHistory, 2)
	})

	t.Run("export", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/payments/export", token)
		ta.serve(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Disposition"), `attachment; filename="pagamentos_`))

		lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
		require.Len(t, lines, 2)
		assert.Contains(t, lines[1], "Maria Santos")
	})
}
