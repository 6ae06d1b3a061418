package model

import (
	"time"

	"github.com/google/uuid"
)

type WithdrawalStatus string

const (
	WithdrawalPending   WithdrawalStatus = "pending"
	WithdrawalPaid      WithdrawalStatus = "paid"
	WithdrawalRejected  WithdrawalStatus = "rejected"
	WithdrawalCancelled WithdrawalStatus = "cancelled"
)

type Withdrawal struct {
	ID             uuid.UUID
	UserTelegramID int64
	Amount         int
	WalletAddress  string
	Status         WithdrawalStatus
	CreatedAt      time.Time
}
