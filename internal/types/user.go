package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	UserRoleStudent = "student"
	UserRoleFaculty = "faculty"
)

type User struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email      string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Name       string    `gorm:"column:name" json:"name"`
	Role       string    `gorm:"not null;default:student;column:role" json:"role"`
	Password   string    `gorm:"column:password" json:"-"`
	Title      string    `gorm:"column:title" json:"title,omitempty"`
	Department string    `gorm:"column:department" json:"department,omitempty"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
