package model

import "time"

// User maps to users. Rows are upserted by email on login and never deleted here.
type User struct {
	ID        uint      `gorm:"primaryKey"                                json:"id"`
	Email     string    `gorm:"type:varchar(255);not null;uniqueIndex"    json:"email"`
	Name      string    `gorm:"type:varchar(255)"                         json:"name"`
	Role      string    `gorm:"type:varchar(50);not null;default:'user'" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
