package tests

import (
	"net/http"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/escola/apps/api/echo"
	"github.com/trezcool/escola/core/grade"
)

func Test_gradeApi(t *testing.T) {
	ta := newTestApp(t)
	token := getToken(t, ta.conf, ta.createAdmin(t))
	ta.register(t, 1, "Maria Santos", "maria.santos")

	runHTTPTests(t, ta, []httpTest{
		{name: "auth required", path: "/v1/grades", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "empty", path: "/v1/grades", token: token, wantCode: http.StatusOK, wantData: []byte(`[]`)},
		{
			name: "invalid student id", method: http.MethodPut, path: "/v1/grades/0", body: []byte(`{}`),
			token: token, wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "invalid studentId"}),
		},
		{
			name: "unregistered student", method: http.MethodPut, path: "/v1/grades/2", body: []byte(`{"evaluation1": "10"}`),
			token: token, wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "unknown field", method: http.MethodPut, path: "/v1/grades/1", body: []byte(`{"evaluation9": "10"}`),
			token: token, wantCode: http.StatusBadRequest, wantData: []byte(`{"evaluation9": "unknown grade field"}`),
		},
		{
			name: "malformed body", method: http.MethodPut, path: "/v1/grades/1", body: []byte(`["10"]`),
			token: token, wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "invalid grade entries"}),
		},
	})

	t.Run("enter", func(t *testing.T) {
		body := []byte(`{"evaluation1": "16", "evaluation2": "14.5", "evaluation3": "20.5", "evaluation4": "abc"}`)
		req, rec := newAuthRequest(http.MethodPut, "/v1/grades/1", token, body)
		ta.serve(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp GradeResponse
		unmarshal(t, rec, &resp)
		assert.Equal(t, []string{grade.FieldEvaluation3, grade.FieldEvaluation4}, resp.Rejected)
		assert.Equal(t, "Maria Santos", resp.StudentName)
		assert.True(t, resp.Average.Equal(decimal.RequireFromString("7.6")), "average = %s", resp.Average)
		assert.Equal(t, grade.BandFailed, resp.Status)
	})

	t.Run("final result", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/grades/1", token, []byte(`{"final_result": "14"}`))
		ta.serve(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp GradeResponse
		unmarshal(t, rec, &resp)
		assert.Empty(t, resp.Rejected)
		assert.True(t, resp.Evaluations[0].Valid, "other fields kept")
		assert.Equal(t, grade.BandGood, resp.Status)
	})

	t.Run("query", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/grades", token)
		ta.serve(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var views []grade.View
		unmarshal(t, rec, &views)
		require.Len(t, views, 1)
		assert.Equal(t, 1, views[0].StudentID)
		assert.Equal(t, grade.BandGood, views[0].Status)
	})

	t.Run("export", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/grades/export", token)
		ta.serve(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Disposition"), `attachment; filename="notas_`))
		assert.Contains(t, rec.Body.String(), "Maria Santos")
	})
}
