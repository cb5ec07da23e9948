package models

import "time"

// AccountRole represents the user types supported by the portal.
type AccountRole string

const (
	RoleStudent AccountRole = "Student"
	RoleTeacher AccountRole = "Teacher"
	RoleAdmin   AccountRole = "Admin"
)

// Valid reports whether the role is one of the supported user types.
func (r AccountRole) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// Account statuses.
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
	StatusBanned   = "Banned"
)

// Account is the root identity record for any user of the system. Role
// specific attributes live on the matching Student, Teacher or Admin
// record, keyed back to the account by AccountID.
type Account struct {
	ID           string      `db:"id" json:"id"`
	AccountID    string      `db:"account_id" json:"account_id"`
	Email        string      `db:"email" json:"email"`
	PasswordHash string      `db:"password_hash" json:"-"`
	FirstName    string      `db:"firstname" json:"firstname"`
	LastName     string      `db:"lastname" json:"lastname"`
	Photo        string      `db:"photo" json:"photo"`
	Role         AccountRole `db:"user_type" json:"user_type"`
	Department   string      `db:"department" json:"department"`
	Status       string      `db:"status" json:"status"`
	LastLogin    *time.Time  `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

// AccountSummary is an account enriched with the teacher's department list
// when the account belongs to a teacher.
type AccountSummary struct {
	Account
	TeacherDepartments []string `json:"teacher_departments,omitempty"`
}

// AccountFilter captures filtering criteria for listing accounts.
type AccountFilter struct {
	Role      *AccountRole
	Status    string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
