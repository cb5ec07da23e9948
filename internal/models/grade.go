package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// PassingPercent is the grade threshold for a passing mark.
const PassingPercent = 75.0

// GradeEntry is one (teacher, subject) mark inside a student's grade
// record. The pair is unique within the record.
type GradeEntry struct {
	TeacherID  string    `json:"teacher_ref"`
	SubjectID  string    `json:"subject_ref"`
	Percent    float64   `json:"percent"`
	GradedDate time.Time `json:"graded_date"`
}

// GradeEntries is stored as a JSONB column.
type GradeEntries []GradeEntry

// Value implements driver.Valuer.
func (g GradeEntries) Value() (driver.Value, error) {
	if g == nil {
		return "[]", nil
	}
	return json.Marshal(g)
}

// Scan implements sql.Scanner.
func (g *GradeEntries) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*g = nil
		return nil
	case []byte:
		return json.Unmarshal(v, g)
	case string:
		return json.Unmarshal([]byte(v), g)
	}
	return fmt.Errorf("cannot scan %T into GradeEntries", src)
}

// GradeRecord is one student's marks for a semester of an academic year.
type GradeRecord struct {
	ID            string       `db:"id" json:"id"`
	StudentID     string       `db:"student_id" json:"student_ref"`
	StudentNumber string       `db:"student_number" json:"student_number"`
	Semester      int          `db:"semester" json:"semester"`
	AcadYear      string       `db:"acad_year" json:"acad_year"`
	Entries       GradeEntries `db:"entries" json:"grades"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at" json:"updated_at"`
}

// GradeFilter narrows grade listings to one student.
type GradeFilter struct {
	StudentID     string
	StudentNumber string
}

// GradedStudent is a roster row for a teacher's subject: the enrolled
// student plus their mark, when one exists.
type GradedStudent struct {
	StudentID     string     `json:"student_id"`
	StudentNumber string     `json:"student_number"`
	FirstName     string     `json:"firstname"`
	LastName      string     `json:"lastname"`
	Photo         string     `json:"photo"`
	Course        string     `json:"course"`
	Phone         string     `json:"phone"`
	Percent       *float64   `json:"percent"`
	GradedDate    *time.Time `json:"graded_date"`
	Status        string     `json:"status"`
}
