package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	TelegramID       int64
	Username         string
	FirstName        string
	LastName         string
	TelegramUsername string
	TwitterUsername  string
	WalletAddress    string
	Balance          int
	ProfileCompleted bool
	ReferredBy       *int64
	CompletedTasks   []uuid.UUID
	RegistrationDate time.Time
	LastActive       time.Time
}

// DisplayName is what other users see in referral notifications.
func (u *User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return u.FirstName
}

// Clone returns an independent copy. Handlers mutate the user they resolved,
// so shared stores must never hand the same record to two goroutines.
func (u *User) Clone() *User {
	c := *u
	c.CompletedTasks = append([]uuid.UUID(nil), u.CompletedTasks...)
	return &c
}

func (u *User) HasCompleted(taskID uuid.UUID) bool {
	for _, id := range u.CompletedTasks {
		if id == taskID {
			return true
		}
	}
	return false
}

type ReferralEdge struct {
	ReferrerID  int64
	UserID      int64
	Username    string
	Completed   bool
	Claimed     bool
	ReferredAt  time.Time
	CompletedAt *time.Time
}
