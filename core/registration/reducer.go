package registration

import (
	"strings"

	"github.com/trezcool/escola/core"
)

// Reduce applies action to d and returns the resulting draft. It has no side effects.
func Reduce(d Draft, action Action) Draft {
	if _, ok := action.(ShowErrors); !ok {
		d.Message = ""
	}
	reg := d.Registration

	switch a := action.(type) {
	case SelectTab:
		if a.Tab.Valid() {
			d.Tab = a.Tab
		}

	case Next:
		switch d.Tab {
		case TabStudent:
			if reg.StudentID == 0 {
				return d.block("student_id", msgSelectStudent)
			}
		case TabCourse:
			if reg.CourseID == "" {
				return d.block("course_id", msgSelectCourse)
			}
		}
		if i := d.Tab.index(); i >= 0 && i < len(Tabs)-1 {
			d.Tab = Tabs[i+1]
		}

	case Back:
		if i := d.Tab.index(); i > 0 {
			d.Tab = Tabs[i-1]
		}

	case Search:
		d.Search = a.Query

	case SelectStudent:
		reg.StudentID = a.Student.ID
		reg.StudentName = a.Student.Name
		reg.StudentCode = a.Student.EnrollmentCode
		reg.StudentEmail = a.Student.Email
		reg.Usuario, reg.Senha = "", ""
		d.StudentSelected = true
		d.Search = ""
		d = d.withoutFieldErrors("student_id")

	case ClearStudent:
		reg.StudentID = 0
		reg.StudentName, reg.StudentCode, reg.StudentEmail = "", "", ""
		reg.Usuario, reg.Senha = "", ""
		d.StudentSelected = false

	case SetCredentials:
		reg.Usuario = core.CleanString(a.Usuario, true /* lower */)
		reg.Senha = a.Senha
		d = d.withoutFieldErrors("usuario", "senha")

	case SelectCourse:
		if reg.CourseID != a.Course.Code {
			reg.ClassID, reg.ClassName = 0, ""
		}
		reg.CourseID = a.Course.Code
		reg.CourseName = a.Course.Name
		reg.EnrollmentFee = a.Course.EnrollmentFee
		reg.MonthlyFee = a.Course.MonthlyFee
		d = d.withoutFieldErrors("course_id")

	case SelectClass:
		reg.ClassID = a.Class.ID
		reg.ClassName = a.Class.Name

	case SetPeriod:
		reg.Period = strings.TrimSpace(a.Period)
		d = d.withoutFieldErrors("period")

	case SetEnrollmentDate:
		if !a.Date.IsZero() {
			reg.EnrollmentDate = core.Today(a.Date)
		} else {
			reg.EnrollmentDate = a.Date
		}
		d = d.withoutFieldErrors("enrollment_date")

	case SetStatus:
		if a.Status.Valid() {
			reg.Status = a.Status
		}

	case SetObservations:
		reg.Observations = strings.TrimSpace(a.Text)

	case SetPaidAmount:
		if !a.Amount.IsNegative() {
			d.PaidAmount = a.Amount
			d = d.withoutFieldErrors("paid_amount")
		}

	case ToggleFirstMonth:
		d.IncludeFirstMonth = !d.IncludeFirstMonth

	case ShowErrors:
		if a.Tab.Valid() {
			d.Tab = a.Tab
		}
		d.Message = a.Message
		d.FieldErrors = copyErrors(a.Fields)

	case Reset:
		return Draft{Tab: TabStudent}
	}

	d.Registration = reg
	return d
}

// block keeps the current tab and reports why it cannot be left.
func (d Draft) block(field, msg string) Draft {
	errs := copyErrors(d.FieldErrors)
	if errs == nil {
		errs = make(map[string]string, 1)
	}
	errs[field] = msg
	d.Message = msg
	d.FieldErrors = errs
	return d
}

func copyErrors(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
