package models

import "time"

// Subject is a course offering a teacher may be assigned to.
type Subject struct {
	ID         string    `db:"id" json:"id"`
	Code       string    `db:"code" json:"code"`
	Name       string    `db:"subject_name" json:"subject_name"`
	Units      int       `db:"units" json:"units"`
	Department string    `db:"department" json:"department"`
	YearLevel  int       `db:"year_level" json:"year_level"`
	Semester   int       `db:"semester" json:"semester"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// SubjectFilter describes query params for listing subjects.
type SubjectFilter struct {
	Department string
	YearLevel  *int
	Semester   *int
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
