package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleTeacher UserRole = "TEACHER"
	RoleStudent UserRole = "STUDENT"
)

// User represents an application user stored in the users table.
type User struct {
	ID                   string    `db:"id" json:"id"`
	Nickname             string    `db:"nickname" json:"nickname"`
	Role                 UserRole  `db:"role" json:"role"`
	ProfileImageURL      string    `db:"profile_image_url" json:"profile_image_url"`
	ProfileImageURLSmall string    `db:"profile_image_url_small" json:"profile_image_url_small"`
	Active               bool      `db:"active" json:"active"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
