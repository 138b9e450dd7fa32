package model

const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

type User struct {
	Base
	Name         string `json:"name" gorm:"not null"`
	Email        string `json:"email" gorm:"not null;uniqueIndex"`
	PasswordHash string `json:"-" gorm:"column:password_hash;not null"`
	Role         string `json:"role" gorm:"not null;default:'student'"` // student, instructor, admin
	Avatar       string `json:"avatar,omitempty"`
	Bio          string `json:"bio,omitempty" gorm:"type:text"`
	IsActive     bool   `json:"is_active" gorm:"not null;default:true"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// IsStaffRole reports whether the user may author course content at all.
func (u *User) IsStaffRole() bool { return u.Role == RoleInstructor || u.Role == RoleAdmin }
