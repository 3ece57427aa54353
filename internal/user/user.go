package user

import (
	"fmt"
	"time"

	"github.com/festflow/festflow/internal"
)

// Role is the fixed role set the workflow engines recognize. There is no
// permission graph behind it; every authorization decision is a lookup
// against the table in internal/auth.
type Role string

const (
	RoleStudent   Role = "student"
	RoleTeamLead  Role = "team_lead"
	RoleTreasurer Role = "treasurer"
)

// ParseRole rejects anything outside the fixed role set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStudent, RoleTeamLead, RoleTreasurer:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// DisplayName renders the role the way the activity log and approval
// chain present it, e.g. "Team Lead".
func (r Role) DisplayName() string {
	switch r {
	case RoleTeamLead:
		return "Team Lead"
	case RoleTreasurer:
		return "Treasurer"
	case RoleStudent:
		return "Student"
	default:
		return string(r)
	}
}

type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null"`
	DisplayName  string    `json:"display_name" gorm:"column:display_name;not null"`
	Role         Role      `json:"role" gorm:"not null"`
	// PayoutID is the UPI handle reimbursements are sent to. Empty means
	// the user cannot be reimbursed yet.
	PayoutID  string    `json:"payout_id" gorm:"column:payout_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) HasPayoutID() bool {
	return u.PayoutID != ""
}

var (
	ErrNotFound = internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
)
