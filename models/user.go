package models

import "time"

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName    string `gorm:"not null" json:"first_name"`
	LastName     string `gorm:"not null" json:"last_name"`
	Email        string `gorm:"unique;not null" json:"email"`
	Phone        string `json:"phone"`
	PasswordHash string `gorm:"not null" json:"-"`
	IsAdmin      bool   `gorm:"default:false" json:"is_admin"`
	IsVerified   bool   `gorm:"default:false" json:"is_verified"`

	// Pending email verification code; both nil once verified.
	OTPCode    *string    `json:"-"`
	OTPExpires *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
}
