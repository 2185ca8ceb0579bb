// internal/domain/user/entity.go
package user

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// User represents the user entity
type User struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Name       string `gorm:"not null;size:100" json:"name"`
	Email      string `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Password   string `gorm:"not null;size:255" json:"-"` // Don't return in JSON
	IsAdmin    bool   `gorm:"default:false" json:"is_admin"`
	IsVerified bool   `gorm:"default:false" json:"is_verified"`

	// Email verification; only the OTP hash is stored
	VerificationOTP       string     `gorm:"size:64" json:"-"`
	VerificationOTPExpiry *time.Time `json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (User) TableName() string {
	return "users"
}

// BeforeCreate hook to handle business logic before user creation
func (u *User) BeforeCreate(tx *gorm.DB) error {
	// Email should be lowercase
	u.Email = strings.ToLower(u.Email)
	return nil
}

// OTPExpired reports whether the pending verification code has expired
func (u *User) OTPExpired(now time.Time) bool {
	return u.VerificationOTPExpiry == nil || now.After(*u.VerificationOTPExpiry)
}
