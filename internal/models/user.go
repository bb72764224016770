package models

import "time"

// Role is the access level of an account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a registered account. Password holds the bcrypt hash and is
// never serialized.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	Username  string    `json:"username" gorm:"uniqueIndex;type:varchar(30);not null" bson:"username"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null" bson:"email"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null" bson:"password"`
	Role      Role      `json:"role" gorm:"type:varchar(10);not null;default:user;index" bson:"role"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// PublicUser is the sanitized projection of a User sent to clients.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// Public strips sensitive fields.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}
