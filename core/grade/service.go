package grade

import (
	"context"
	"errors"
	"time"

	"github.com/kat-co/vala"
	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/escola/core"
)

var (
	// errors
	ErrNotFound     = errors.New("grade record not found")
	ErrUnknownField = errors.New("unknown grade field")
)

type (
	Repository interface {
		GetRecord(ctx context.Context, studentID int, exec ...core.DBExecutor) (Record, error)
		SaveRecord(ctx context.Context, r Record, exec ...core.DBExecutor) (Record, error)
		QueryRecords(ctx context.Context, exec ...core.DBExecutor) ([]Record, error)
	}

	// Roster resolves the name of a registered student.
	Roster interface {
		StudentName(ctx context.Context, studentID int) (string, error)
	}
)

type Service struct {
	repo   Repository
	roster Roster
}

func NewService(repo Repository, roster Roster) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(roster, "roster"),
	).CheckAndPanic()

	return &Service{repo: repo, roster: roster}
}

// Enter applies the field entries to the student's record and saves it.
// Rejected entries leave their field unchanged and are returned by name.
func (svc *Service) Enter(ctx context.Context, studentID int, entries map[string]string) (Record, []string, error) {
	for field := range entries {
		if !isField(field) {
			return Record{}, nil, core.NewValidationError(ErrUnknownField, core.FieldError{Field: field, Error: ErrUnknownField.Error()})
		}
	}

	name, err := svc.roster.StudentName(ctx, studentID)
	if err != nil {
		return Record{}, nil, err
	}

	rec, err := svc.repo.GetRecord(ctx, studentID)
	if err != nil {
		if pkgerrors.Cause(err) != ErrNotFound {
			return Record{}, nil, pkgerrors.Wrap(err, "getting grade record")
		}
		rec = Record{StudentID: studentID}
	}
	rec.StudentName = name

	sheet := NewSheet(rec)
	rejected := make([]string, 0)
	for _, field := range Fields { // stable order
		value, ok := entries[field]
		if !ok {
			continue
		}
		if !sheet.Enter(field, value) {
			rejected = append(rejected, field)
		}
	}
	sheet.Apply(&rec)
	rec.UpdatedAt = time.Now().UTC()

	rec, err = svc.repo.SaveRecord(ctx, rec)
	if err != nil {
		return Record{}, nil, pkgerrors.Wrap(err, "saving grade record")
	}
	return rec, rejected, nil
}

func (svc *Service) Query(ctx context.Context) ([]Record, error) {
	recs, err := svc.repo.QueryRecords(ctx)
	return recs, pkgerrors.Wrap(err, "querying grade records")
}

func isField(field string) bool {
	for _, f := range Fields {
		if f == field {
			return true
		}
	}
	return false
}
