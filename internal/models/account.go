package models

import "time"

// AccountRole represents the portal roles.
type AccountRole string

const (
	RoleStudent AccountRole = "student"
	RoleAdmin   AccountRole = "admin"
)

// Account represents a portal identity stored in the accounts table.
// Student profile fields are kept on the account itself; there is no
// separate student entity.
type Account struct {
	ID            string      `db:"id" json:"id"`
	Name          string      `db:"name" json:"name"`
	Email         string      `db:"email" json:"email"`
	PasswordHash  string      `db:"password_hash" json:"-"`
	Role          AccountRole `db:"role" json:"role"`
	Age           int         `db:"age" json:"age"`
	City          string      `db:"city" json:"city"`
	ContactNumber string      `db:"contact_number" json:"contactNumber"`
	FatherName    string      `db:"father_name" json:"fatherName"`
	ERPNumber     string      `db:"erp_number" json:"erpNumber"`
	CreatedAt     time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updatedAt"`
}

// AccountFilter captures filtering criteria for listing accounts.
type AccountFilter struct {
	Role      *AccountRole
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
