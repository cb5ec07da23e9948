package models

import "time"

// AdminLevelDepartment is the only admin level currently issued.
const AdminLevelDepartment = "department_admin"

// Admin holds the role specific attributes of an admin account.
type Admin struct {
	ID         string    `db:"id" json:"id"`
	AccountID  string    `db:"account_id" json:"account_id"`
	AdminID    string    `db:"admin_id" json:"admin_id"`
	AdminLevel string    `db:"admin_level" json:"admin_level"`
	Department string    `db:"department" json:"department"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
