package directory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/trezcool/escola/core"
)

// Record kinds
const (
	KindStudent = "student"
	KindCourse  = "course"
	KindClass   = "class"
)

var validate, translator = core.NewValidator()

// ParseError reports a directory payload (Index < 0) or a single record that could not be used.
type ParseError struct {
	Kind  string
	Index int
	Err   error
}

func (e *ParseError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("parsing %s list: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("parsing %s #%d: %v", e.Kind, e.Index, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// check validates a decoded record. Field errors are reported as a *core.ValidationError.
func check(kind string, index int, record interface{}) error {
	if err := validate.Struct(record); err != nil {
		return &ParseError{Kind: kind, Index: index, Err: core.TranslateValidationErrors(err, translator)}
	}
	return nil
}

// splitRecords accepts a bare JSON array or an object wrapping it under "data".
func splitRecords(kind string, data []byte) ([]json.RawMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var envelope struct {
			Data []json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			return nil, &ParseError{Kind: kind, Index: -1, Err: err}
		}
		return envelope.Data, nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, &ParseError{Kind: kind, Index: -1, Err: err}
	}
	return raws, nil
}

func ParseStudents(data []byte) ([]Student, error) {
	raws, err := splitRecords(KindStudent, data)
	if err != nil {
		return nil, err
	}
	students := make([]Student, 0, len(raws))
	for i, raw := range raws {
		var s Student
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, &ParseError{Kind: KindStudent, Index: i, Err: err}
		}
		s.Name = strings.TrimSpace(s.Name)
		s.Email = strings.TrimSpace(s.Email)
		s.EnrollmentCode = strings.TrimSpace(s.EnrollmentCode)

		if err := check(KindStudent, i, s); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, nil
}

func ParseCourses(data []byte) ([]Course, error) {
	raws, err := splitRecords(KindCourse, data)
	if err != nil {
		return nil, err
	}
	courses := make([]Course, 0, len(raws))
	for i, raw := range raws {
		var c Course
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, &ParseError{Kind: KindCourse, Index: i, Err: err}
		}
		c.Code = strings.TrimSpace(c.Code)
		c.Name = strings.TrimSpace(c.Name)

		if err := check(KindCourse, i, c); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, nil
}

func ParseClasses(data []byte) ([]Class, error) {
	raws, err := splitRecords(KindClass, data)
	if err != nil {
		return nil, err
	}
	classes := make([]Class, 0, len(raws))
	for i, raw := range raws {
		var c Class
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, &ParseError{Kind: KindClass, Index: i, Err: err}
		}
		c.Name = strings.TrimSpace(c.Name)
		c.Code = strings.TrimSpace(c.Code)
		c.CourseCode = strings.TrimSpace(c.CourseCode)

		if err := check(KindClass, i, c); err != nil {
			return nil, err
		}
		if c.Weekdays == nil {
			c.Weekdays = []string{}
		}
		classes = append(classes, c)
	}
	return classes, nil
}
