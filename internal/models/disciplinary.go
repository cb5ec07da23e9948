package models

import "time"

// DisciplinaryRecord documents a student violation filed by a teacher.
// TeacherID always stores the teacher record's own identity; callers
// passing an account identity are resolved before persistence.
type DisciplinaryRecord struct {
	ID            string    `db:"id" json:"id"`
	TeacherID     string    `db:"teacher_id" json:"teachers_id"`
	StudentNumber string    `db:"student_number" json:"student_number"`
	Violation     string    `db:"violation" json:"violation"`
	Sanction      string    `db:"sanction" json:"sanction"`
	Severity      int       `db:"severity" json:"severity"`
	Remarks       string    `db:"remarks" json:"remarks"`
	Date          time.Time `db:"date" json:"date"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// DisciplinaryRecordDetail joins the filing teacher's identity fields.
type DisciplinaryRecordDetail struct {
	DisciplinaryRecord
	TeacherFirstName string `db:"teacher_firstname" json:"teacher_firstname"`
	TeacherLastName  string `db:"teacher_lastname" json:"teacher_lastname"`
	TeacherPhoto     string `db:"teacher_photo" json:"teacher_photo"`
}
