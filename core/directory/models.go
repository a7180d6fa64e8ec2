// Package directory holds the typed records served by the student/course/class directory API.
package directory

import (
	"context"

	"github.com/shopspring/decimal"
)

type (
	Student struct {
		ID             int    `json:"id" validate:"gt=0"`
		Name           string `json:"nome" validate:"notblank"`
		Email          string `json:"email" validate:"omitempty,email"`
		EnrollmentCode string `json:"numero_matricula"`
	}

	Course struct {
		Code          string          `json:"codigo" validate:"notblank"`
		Name          string          `json:"nome" validate:"notblank"`
		MonthlyFee    decimal.Decimal `json:"mensalidade" validate:"decgte0"`
		EnrollmentFee decimal.Decimal `json:"taxa_matricula" validate:"decgte0"`
	}

	Class struct {
		ID         int      `json:"id" validate:"gt=0"`
		Name       string   `json:"nome" validate:"notblank"`
		Code       string   `json:"codigo"`
		CourseCode string   `json:"curso"`
		Weekdays   []string `json:"dias_semana"`
	}

	// Directory is the external collaborator listing students, courses and classes.
	Directory interface {
		Students(ctx context.Context) ([]Student, error)
		Courses(ctx context.Context) ([]Course, error)
		Classes(ctx context.Context) ([]Class, error)
	}
)
