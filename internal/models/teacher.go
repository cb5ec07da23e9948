package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// SubjectAssignment is a teacher's claim on a recurring weekly time slot
// for one subject.
type SubjectAssignment struct {
	SubjectID   string `json:"subject_id"`
	Day         string `json:"day"`
	Time        string `json:"time"`
	Room        string `json:"room"`
	Slots       int    `json:"slots"`
	NumStudents int    `json:"num_students"`
}

// SubjectAssignments is stored as a JSONB column so the embedded document
// shape of the teacher record survives in the relational store.
type SubjectAssignments []SubjectAssignment

// Value implements driver.Valuer.
func (s SubjectAssignments) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner.
func (s *SubjectAssignments) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	}
	return fmt.Errorf("cannot scan %T into SubjectAssignments", src)
}

// Teacher holds the role specific attributes of a teacher account.
// Departments is stored as a list for historical reasons; validation
// guarantees it always carries exactly one entry.
type Teacher struct {
	ID          string             `db:"id" json:"id"`
	AccountID   string             `db:"account_id" json:"account_id"`
	TeacherUID  string             `db:"teacher_uid" json:"teacher_uid"`
	Departments pq.StringArray     `db:"departments" json:"departments"`
	Subjects    SubjectAssignments `db:"subjects" json:"subjects"`
	CreatedAt   time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `db:"updated_at" json:"updated_at"`
}

// TeacherDetail is a teacher joined with identity fields from the account.
type TeacherDetail struct {
	Teacher
	FirstName string `db:"firstname" json:"firstname"`
	LastName  string `db:"lastname" json:"lastname"`
	Email     string `db:"email" json:"email"`
	Photo     string `db:"photo" json:"photo"`
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Department string
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
