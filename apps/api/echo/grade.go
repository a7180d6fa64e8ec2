package echoapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/escola/core/grade"
)

type gradeApi struct {
	svc *grade.Service
}

func registerGradeAPI(g *echo.Group, jwt, staff echo.MiddlewareFunc, svc *grade.Service) {
	api := gradeApi{svc: svc}

	gg := g.Group("/grades", jwt, staff)
	gg.GET("", api.query)
	gg.GET("/export", api.export)
	gg.PUT("/:studentId", api.enter)
}

// Handlers

func (api *gradeApi) query(ctx echo.Context) error {
	recs, err := api.svc.Query(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying grades")
	}
	views := make([]grade.View, 0, len(recs))
	for _, r := range recs {
		views = append(views, r.View())
	}
	return ctx.JSON(http.StatusOK, views)
}

func (api *gradeApi) enter(ctx echo.Context) error {
	studentID, err := intParam(ctx, "studentId")
	if err != nil {
		return err
	}

	// {field: value}; decoded directly since echo would also bind the path params into a map
	data := make(map[string]string)
	if err = json.NewDecoder(ctx.Request().Body).Decode(&data); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid grade entries").SetInternal(err)
	}

	rec, rejected, err := api.svc.Enter(ctx.Request().Context(), studentID, data)
	if err != nil {
		return errors.Wrap(err, "entering grades")
	}
	return ctx.JSON(http.StatusOK, GradeResponse{View: rec.View(), Rejected: rejected})
}

func (api *gradeApi) export(ctx echo.Context) error {
	recs, err := api.svc.Query(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying grades")
	}

	var buf bytes.Buffer
	if err = grade.WriteGradesCSV(&buf, recs); err != nil {
		return errors.Wrap(err, "writing grades csv")
	}
	return sendCSV(ctx, fmt.Sprintf("notas_%s.csv", time.Now().Format("2006-01-02")), buf.Bytes())
}

// Requests & Responses

type GradeResponse struct {
	grade.View
	Rejected []string `json:"rejected"`
}
