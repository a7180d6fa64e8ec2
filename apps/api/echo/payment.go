package echoapi

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/escola/core/payment"
)

const csvContentType = "text/csv; charset=utf-8"

type paymentApi struct {
	svc      *payment.Service
	validate *validator.Validate
}

func registerPaymentAPI(g *echo.Group, jwt, staff echo.MiddlewareFunc, svc *payment.Service, validate *validator.Validate) {
	api := paymentApi{svc: svc, validate: validate}

	ag := g.Group("", jwt, staff)
	ag.GET("/students/:id/payments", api.studentInfo)
	ag.POST("/students/:id/payments", api.record)
	ag.GET("/payments", api.summaries)
	ag.GET("/payments/export", api.export)
	ag.PATCH("/payments/:id", api.update)
}

// Handlers

func (api *paymentApi) studentInfo(ctx echo.Context) error {
	studentID, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	info, err := api.svc.StudentInfo(ctx.Request().Context(), studentID)
	if err != nil {
		return errors.Wrap(err, "getting student payment info")
	}
	return ctx.JSON(http.StatusOK, info)
}

func (api *paymentApi) record(ctx echo.Context) error {
	studentID, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	var data payment.NewPayment
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPayment")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.svc.RecordPayment(ctx.Request().Context(), studentID, data)
	if err != nil {
		return errors.Wrap(err, "recording payment")
	}
	return api.respond(ctx, http.StatusCreated, p)
}

func (api *paymentApi) update(ctx echo.Context) error {
	var data payment.UpdatePayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdatePayment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.svc.UpdatePayment(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating payment")
	}
	return api.respond(ctx, http.StatusOK, p)
}

// respond sends the payment along with the freshly re-aggregated info of its student.
func (api *paymentApi) respond(ctx echo.Context, code int, p payment.Payment) error {
	info, err := api.svc.StudentInfo(ctx.Request().Context(), p.StudentID)
	if err != nil {
		return errors.Wrap(err, "getting student payment info")
	}
	return ctx.JSON(code, PaymentResponse{Payment: p, Info: info})
}

func (api *paymentApi) summaries(ctx echo.Context) error {
	infos, err := api.svc.Summaries(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "summarizing payments")
	}
	return ctx.JSON(http.StatusOK, infos)
}

func (api *paymentApi) export(ctx echo.Context) error {
	infos, err := api.svc.Summaries(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "summarizing payments")
	}

	var buf bytes.Buffer
	if err = payment.WritePaymentsCSV(&buf, infos); err != nil {
		return errors.Wrap(err, "writing payments csv")
	}
	return sendCSV(ctx, fmt.Sprintf("pagamentos_%s.csv", time.Now().Format("2006-01-02")), buf.Bytes())
}

func sendCSV(ctx echo.Context, filename string, data []byte) error {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return ctx.Blob(http.StatusOK, csvContentType, data)
}

// Requests & Responses

type PaymentResponse struct {
	Payment payment.Payment            `json:"payment"`
	Info    payment.StudentPaymentInfo `json:"info"`
}
