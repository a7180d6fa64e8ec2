package registration

import (
	"context"
	"errors"
	"time"

	"github.com/kat-co/vala"
	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/escola/core"
	"github.com/trezcool/escola/core/directory"
)

var (
	// errors
	ErrWizardClosed     = errors.New("registration wizard is closed")
	ErrIncompleteDraft  = errors.New("registration is incomplete")
	ErrEnrollmentUnpaid = errors.New("enrollment fee not paid")
	ErrStudentNotFound  = errors.New("student not found in directory")
	ErrCourseNotFound   = errors.New("course not found in directory")
	ErrClassNotFound    = errors.New("class not found in directory")
)

// SaveFunc commits a confirmed registration.
type SaveFunc func(ctx context.Context, reg Registration) (Registration, error)

// Wizard drives a Draft through the registration tabs.
// Side effects (directory loading, credential generation, saving) only happen in its methods, never in Reduce.
// A Wizard is not safe for concurrent use.
type Wizard struct {
	dir   directory.Directory
	creds CredentialGenerator
	save  SaveFunc
	now   func() time.Time

	draft    Draft
	students []directory.Student
	courses  []directory.Course
	classes  []directory.Class
}

func NewWizard(dir directory.Directory, creds CredentialGenerator, save SaveFunc) *Wizard {
	vala.BeginValidation().Validate(
		vala.IsNotNil(dir, "dir"),
		vala.IsNotNil(creds, "creds"),
		vala.IsNotNil(save, "save"),
	).CheckAndPanic()

	return &Wizard{
		dir:   dir,
		creds: creds,
		save:  save,
		now:   time.Now,
		draft: Reduce(Draft{}, Reset{}),
	}
}

// SetClock replaces the wizard's clock.
func (w *Wizard) SetClock(now func() time.Time) {
	w.now = now
}

// Open loads the directory and starts an empty draft.
// When a fetch fails, the error is returned and the wizard is left as it was.
func (w *Wizard) Open(ctx context.Context) error {
	students, err := w.dir.Students(ctx)
	if err != nil {
		return pkgerrors.Wrap(err, "fetching students")
	}
	courses, err := w.dir.Courses(ctx)
	if err != nil {
		return pkgerrors.Wrap(err, "fetching courses")
	}
	classes, err := w.dir.Classes(ctx)
	if err != nil {
		return pkgerrors.Wrap(err, "fetching classes")
	}

	w.students, w.courses, w.classes = students, courses, classes
	w.draft = NewDraft(w.now())
	return nil
}

func (w *Wizard) Draft() Draft { return w.draft }

// Dispatch reduces action into the current draft.
func (w *Wizard) Dispatch(action Action) Draft {
	w.draft = Reduce(w.draft, action)
	return w.draft
}

// Students lists the directory students matching the current search.
func (w *Wizard) Students() []directory.Student {
	return directory.FilterStudents(w.students, w.draft.Search)
}

func (w *Wizard) Courses() []directory.Course {
	return w.courses
}

// Classes lists the classes of the selected course, or every class when none is selected.
func (w *Wizard) Classes() []directory.Class {
	if code := w.draft.Registration.CourseID; code != "" {
		return directory.ClassesOf(w.classes, code)
	}
	return w.classes
}

// SelectStudent selects s and generates their credentials.
// When generation fails the draft is left untouched.
func (w *Wizard) SelectStudent(s directory.Student) error {
	if !w.draft.Open {
		return ErrWizardClosed
	}
	creds, err := w.creds.Generate(s.Name)
	if err != nil {
		return pkgerrors.Wrap(err, "generating credentials")
	}

	w.Dispatch(SelectStudent{Student: s})
	w.Dispatch(SetCredentials{Usuario: creds.Usuario, Senha: creds.Senha})
	return nil
}

// SelectStudentByID selects a student of the loaded directory.
func (w *Wizard) SelectStudentByID(id int) error {
	for _, s := range w.students {
		if s.ID == id {
			return w.SelectStudent(s)
		}
	}
	return ErrStudentNotFound
}

// SelectCourse selects a course of the loaded directory, copying its fees.
func (w *Wizard) SelectCourse(code string) error {
	if !w.draft.Open {
		return ErrWizardClosed
	}
	c, ok := directory.FindCourse(w.courses, code)
	if !ok {
		return ErrCourseNotFound
	}
	w.Dispatch(SelectCourse{Course: c})
	return nil
}

// SelectClass selects a class of the loaded directory. id 0 clears the class.
func (w *Wizard) SelectClass(id int) error {
	if !w.draft.Open {
		return ErrWizardClosed
	}
	if id == 0 {
		w.Dispatch(SelectClass{})
		return nil
	}
	for _, c := range w.classes {
		if c.ID == id {
			w.Dispatch(SelectClass{Class: c})
			return nil
		}
	}
	return ErrClassNotFound
}

// Confirm validates the whole draft and commits it through the save callback.
// Invalid drafts go back to the student tab (or stay on payment when the enrollment fee is not covered)
// and nothing is committed. A save failure leaves the draft intact.
func (w *Wizard) Confirm(ctx context.Context) (Registration, error) {
	d := w.draft
	if !d.Open {
		return Registration{}, ErrWizardClosed
	}

	if errs := d.Registration.FieldErrors(); len(errs) > 0 {
		w.Dispatch(ShowErrors{Tab: TabStudent, Message: msgFixFields, Fields: errs})
		return Registration{}, core.NewValidationError(ErrIncompleteDraft, fieldErrors(errs)...)
	}
	if d.Registration.Status == StatusActive && !d.IsEnrollmentPaid() {
		errs := map[string]string{"paid_amount": msgEnrollmentDue}
		w.Dispatch(ShowErrors{Tab: TabPayment, Message: msgEnrollmentDue, Fields: errs})
		return Registration{}, core.NewValidationError(ErrEnrollmentUnpaid, fieldErrors(errs)...)
	}

	reg := d.Registration
	reg.PaidAmount = d.PaidAmount
	reg.PaymentStatus = d.PaymentStatus()

	saved, err := w.save(ctx, reg)
	if err != nil {
		w.draft.Message = msgSaveFailed
		return Registration{}, err
	}

	w.Dispatch(Reset{})
	return saved, nil
}

// Cancel discards the draft.
func (w *Wizard) Cancel() {
	w.Dispatch(Reset{})
}

func fieldErrors(errs map[string]string) []core.FieldError {
	flds := make([]core.FieldError, 0, len(errs))
	for _, f := range fieldOrder {
		if msg, ok := errs[f]; ok {
			flds = append(flds, core.FieldError{Field: f, Error: msg})
		}
	}
	return flds
}

var fieldOrder = []string{"student_id", "usuario", "senha", "course_id", "period", "enrollment_date", "paid_amount"}
