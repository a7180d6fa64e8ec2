package directory

import "strings"

// FilterStudents keeps the students whose name, email or enrollment code contains query (case-insensitive).
// An empty query keeps everyone. Input order is preserved.
func FilterStudents(students []Student, query string) []Student {
	q := strings.ToLower(strings.TrimSpace(query))
	filtered := make([]Student, 0, len(students))
	for _, s := range students {
		if q == "" ||
			strings.Contains(strings.ToLower(s.Name), q) ||
			strings.Contains(strings.ToLower(s.Email), q) ||
			strings.Contains(strings.ToLower(s.EnrollmentCode), q) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// FindCourse returns the course with the given code.
func FindCourse(courses []Course, code string) (Course, bool) {
	for _, c := range courses {
		if c.Code == code {
			return c, true
		}
	}
	return Course{}, false
}

// ClassesOf returns the classes of the given course.
func ClassesOf(classes []Class, courseCode string) []Class {
	res := make([]Class, 0)
	for _, c := range classes {
		if c.CourseCode == courseCode {
			res = append(res, c)
		}
	}
	return res
}
