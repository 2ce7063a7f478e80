package models

import (
	"errors"
	"strings"
	"time"
)

type ClaimStatus string

const (
	ClaimStatusPending  ClaimStatus = "pending"
	ClaimStatusApproved ClaimStatus = "approved"
	ClaimStatusRejected ClaimStatus = "rejected"
)

// Claim is a post-purchase defect report with photographic evidence.
// ImagePath is stored relative to the uploads root so the tree stays
// portable across deployments.
type Claim struct {
	ID          uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint        `gorm:"index;not null" json:"user_id"`
	OrderID     *uint       `json:"order_id,omitempty"`
	ProductID   *uint       `json:"product_id,omitempty"`
	ImagePath   string      `gorm:"not null" json:"image_path"`
	Description string      `gorm:"not null" json:"description"`
	Status      ClaimStatus `gorm:"type:VARCHAR(20);default:'pending'" json:"status"`
	AdminNotes  string      `json:"admin_notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ErrInvalidClaimStatus reports a status string outside the claim enum.
var ErrInvalidClaimStatus = errors.New("invalid claim status")

// ParseClaimStatus maps a client string onto the claim status enum.
func ParseClaimStatus(status string) (ClaimStatus, error) {
	switch ClaimStatus(strings.ToLower(status)) {
	case ClaimStatusPending:
		return ClaimStatusPending, nil
	case ClaimStatusApproved:
		return ClaimStatusApproved, nil
	case ClaimStatusRejected:
		return ClaimStatusRejected, nil
	default:
		return "", ErrInvalidClaimStatus
	}
}
