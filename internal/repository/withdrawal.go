package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"TR_telegram_taskbot/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type withdrawal struct {
	ID             uuid.UUID `db:"id"`
	UserTelegramID int64     `db:"user_telegram_id"`
	Amount         int       `db:"amount"`
	WalletAddress  string    `db:"wallet_address"`
	Status         string    `db:"status"`
	CreatedAt      time.Time `db:"created_at"`
}

func (w *withdrawal) toModel() *model.Withdrawal {
	return &model.Withdrawal{
		ID:             w.ID,
		UserTelegramID: w.UserTelegramID,
		Amount:         w.Amount,
		WalletAddress:  w.WalletAddress,
		Status:         model.WithdrawalStatus(w.Status),
		CreatedAt:      w.CreatedAt,
	}
}

// CreateWithdrawal debits the balance and records the pending withdrawal in one
// transaction. The balance guard is part of the UPDATE itself so two racing
// requests cannot both succeed against the same funds.
func (r *Repository) CreateWithdrawal(ctx context.Context, w *model.Withdrawal) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		debitQuery, debitArgs, err := squirrel.
			Update("users").
			Set("balance", squirrel.Expr("balance - ?", w.Amount)).
			Where(squirrel.And{
				squirrel.Eq{"telegram_id": w.UserTelegramID},
				squirrel.GtOrEq{"balance": w.Amount},
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build debit query: %w", err)
		}

		result, err := tx.ExecContext(ctx, debitQuery, debitArgs...)
		if err != nil {
			return fmt.Errorf("failed to debit balance: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrInsufficientBalance
		}

		insertQuery, insertArgs, err := squirrel.
			Insert("withdrawals").
			SetMap(map[string]interface{}{
				"id":               w.ID,
				"user_telegram_id": w.UserTelegramID,
				"amount":           w.Amount,
				"wallet_address":   w.WalletAddress,
				"status":           string(w.Status),
				"created_at":       w.CreatedAt,
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build withdrawal insert query: %w", err)
		}

		_, err = tx.ExecContext(ctx, insertQuery, insertArgs...)
		if err != nil {
			return fmt.Errorf("failed to insert withdrawal: %w", err)
		}

		return nil
	})
}

func (r *Repository) GetLastWithdrawal(ctx context.Context, telegramID int64) (*model.Withdrawal, error) {
	query, args, err := squirrel.
		Select("id", "user_telegram_id", "amount", "wallet_address", "status", "created_at").
		From("withdrawals").
		Where(squirrel.Eq{"user_telegram_id": telegramID}).
		OrderBy("created_at DESC").
		Limit(1).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var w withdrawal
	err = r.db.GetContext(ctx, &w, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return w.toModel(), nil
}

func (r *Repository) ListWithdrawals(ctx context.Context, telegramID int64) ([]*model.Withdrawal, error) {
	query, args, err := squirrel.
		Select("id", "user_telegram_id", "amount", "wallet_address", "status", "created_at").
		From("withdrawals").
		Where(squirrel.Eq{"user_telegram_id": telegramID}).
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []*withdrawal
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list withdrawals: %w", err)
	}

	out := make([]*model.Withdrawal, len(rows))
	for i, w := range rows {
		out[i] = w.toModel()
	}

	return out, nil
}

func (r *Repository) ListPendingWithdrawals(ctx context.Context) ([]*model.Withdrawal, error) {
	query, args, err := squirrel.
		Select("id", "user_telegram_id", "amount", "wallet_address", "status", "created_at").
		From("withdrawals").
		Where(squirrel.Eq{"status": string(model.WithdrawalPending)}).
		OrderBy("created_at ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []*withdrawal
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending withdrawals: %w", err)
	}

	out := make([]*model.Withdrawal, len(rows))
	for i, w := range rows {
		out[i] = w.toModel()
	}

	return out, nil
}

// ResolveWithdrawal moves a pending withdrawal to its final status. Rejection
// refunds the debited amount in the same transaction; a withdrawal that is no
// longer pending resolves to ErrNotFound so double reviews cannot refund twice.
func (r *Repository) ResolveWithdrawal(ctx context.Context, id uuid.UUID, status model.WithdrawalStatus) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		query, args, err := squirrel.
			Update("withdrawals").
			Set("status", string(status)).
			Where(squirrel.And{
				squirrel.Eq{"id": id},
				squirrel.Eq{"status": string(model.WithdrawalPending)},
			}).
			Suffix("RETURNING user_telegram_id, amount").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build withdrawal update query: %w", err)
		}

		var row struct {
			UserTelegramID int64 `db:"user_telegram_id"`
			Amount         int   `db:"amount"`
		}
		err = tx.GetContext(ctx, &row, query, args...)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to update withdrawal status: %w", err)
		}

		if status != model.WithdrawalRejected && status != model.WithdrawalCancelled {
			return nil
		}

		refundQuery, refundArgs, err := squirrel.
			Update("users").
			Set("balance", squirrel.Expr("balance + ?", row.Amount)).
			Where(squirrel.Eq{"telegram_id": row.UserTelegramID}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build refund query: %w", err)
		}

		_, err = tx.ExecContext(ctx, refundQuery, refundArgs...)
		if err != nil {
			return fmt.Errorf("failed to refund balance: %w", err)
		}

		return nil
	})
}
