package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ScheduleEntry is one class a student attends during the term. The
// teacher reference is optional; schedules are maintained independently
// of teacher subject assignments and are not cross-validated against
// them.
type ScheduleEntry struct {
	TeacherID string `json:"teacher_id,omitempty"`
	SubjectID string `json:"subject_id"`
	Room      string `json:"room"`
	Day       string `json:"day"`
	Time      string `json:"time"`
}

// ScheduleEntries is stored as a JSONB column.
type ScheduleEntries []ScheduleEntry

// Value implements driver.Valuer.
func (s ScheduleEntries) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner.
func (s *ScheduleEntries) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	}
	return fmt.Errorf("cannot scan %T into ScheduleEntries", src)
}

// Schedule is one student's class list for a semester of an academic year.
type Schedule struct {
	ID            string          `db:"id" json:"id"`
	StudentNumber string          `db:"student_number" json:"student_number"`
	Semester      string          `db:"semester" json:"semester"`
	AcadYear      string          `db:"acad_year" json:"acad_year"`
	Entries       ScheduleEntries `db:"entries" json:"schedules"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// ScheduleFilter describes query params for listing schedules.
type ScheduleFilter struct {
	StudentNumber string
	Semester      string
	AcadYear      string
	Page          int
	PageSize      int
}
