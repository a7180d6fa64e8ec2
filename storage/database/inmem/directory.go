package inmemdb

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/trezcool/escola/core/directory"
)

// Directory is a static directory, seeded for local development and tests.
type Directory struct {
	mu       sync.RWMutex
	students []directory.Student
	courses  []directory.Course
	classes  []directory.Class
}

var _ directory.Directory = (*Directory)(nil) // interface compliance check

func NewDirectory(students []directory.Student, courses []directory.Course, classes []directory.Class) *Directory {
	return &Directory{students: students, courses: courses, classes: classes}
}

// NewSeededDirectory returns a Directory holding a handful of students, courses and classes.
func NewSeededDirectory() *Directory {
	return NewDirectory(
		[]directory.Student{
			{ID: 1, Name: "Maria Santos", Email: "maria.santos@example.com", EnrollmentCode: "2024001"},
			{ID: 2, Name: "João Machava", Email: "joao.machava@example.com", EnrollmentCode: "2024002"},
			{ID: 3, Name: "Ana Conceição Mondlane", Email: "", EnrollmentCode: "2024003"},
			{ID: 4, Name: "Carlos Nhantumbo", Email: "carlos.n@example.com", EnrollmentCode: "2024004"},
		},
		[]directory.Course{
			{Code: "ING-B1", Name: "Inglês Básico", MonthlyFee: decimal.NewFromInt(2500), EnrollmentFee: decimal.NewFromInt(5000)},
			{Code: "INF-01", Name: "Informática na Óptica do Utilizador", MonthlyFee: decimal.NewFromInt(3000), EnrollmentFee: decimal.NewFromInt(4000)},
			{Code: "CTB-01", Name: "Contabilidade Geral", MonthlyFee: decimal.NewFromInt(3500), EnrollmentFee: decimal.NewFromInt(6000)},
		},
		[]directory.Class{
			{ID: 1, Name: "Inglês Básico A", Code: "ING-B1-A", CourseCode: "ING-B1", Weekdays: []string{"seg", "qua"}},
			{ID: 2, Name: "Inglês Básico B", Code: "ING-B1-B", CourseCode: "ING-B1", Weekdays: []string{"ter", "qui"}},
			{ID: 3, Name: "Informática Manhã", Code: "INF-01-M", CourseCode: "INF-01", Weekdays: []string{"seg", "sex"}},
		},
	)
}

func (d *Directory) Students(_ context.Context) ([]directory.Student, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]directory.Student(nil), d.students...), nil
}

func (d *Directory) Courses(_ context.Context) ([]directory.Course, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]directory.Course(nil), d.courses...), nil
}

func (d *Directory) Classes(_ context.Context) ([]directory.Class, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]directory.Class(nil), d.classes...), nil
}

// AddStudent makes a student available to subsequent listings.
func (d *Directory) AddStudent(s directory.Student) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.students = append(d.students, s)
}
