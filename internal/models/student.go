package models

import "time"

// Departments recognised by the institution.
var Departments = []string{"CCS", "COS", "COE", "IS"}

// ValidDepartment reports whether dept is a recognised department code.
func ValidDepartment(dept string) bool {
	for _, d := range Departments {
		if d == dept {
			return true
		}
	}
	return false
}

// Student holds the role specific attributes of a student account.
// AccountID points at exactly one Account whose role is Student.
type Student struct {
	ID            string     `db:"id" json:"id"`
	AccountID     string     `db:"account_id" json:"account_id"`
	StudentNumber string     `db:"student_number" json:"student_number"`
	YearLevel     int        `db:"year_level" json:"year_level"`
	Department    string     `db:"department" json:"department"`
	Course        string     `db:"course" json:"course"`
	Birthday      *time.Time `db:"birthday" json:"birthday,omitempty"`
	Address       string     `db:"address" json:"address"`
	Phone         string     `db:"phone" json:"phone"`
	Mother        string     `db:"mother" json:"mother"`
	Father        string     `db:"father" json:"father"`
	GuardianPhone string     `db:"guardian_phone" json:"guardian_phone"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// StudentDetail is a student joined with identity fields from the account.
type StudentDetail struct {
	Student
	FirstName string `db:"firstname" json:"firstname"`
	LastName  string `db:"lastname" json:"lastname"`
	Email     string `db:"email" json:"email"`
	Photo     string `db:"photo" json:"photo"`
}

// StudentFilter encapsulates search parameters for listing students.
type StudentFilter struct {
	Department string
	YearLevel  *int
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
