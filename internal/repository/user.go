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
	"github.com/lib/pq"
)

type user struct {
	TelegramID       int64          `db:"telegram_id"`
	Username         string         `db:"username"`
	FirstName        string         `db:"first_name"`
	LastName         string         `db:"last_name"`
	TelegramUsername string         `db:"telegram_username"`
	TwitterUsername  string         `db:"twitter_username"`
	WalletAddress    string         `db:"wallet_address"`
	Balance          int            `db:"balance"`
	ProfileCompleted bool           `db:"profile_completed"`
	ReferredBy       *int64         `db:"referred_by"`
	CompletedTaskIDs pq.StringArray `db:"completed_task_ids"`
	RegistrationDate time.Time      `db:"registration_date"`
	LastActive       time.Time      `db:"last_active"`
}

func (u *user) toModel() (*model.User, error) {
	completed := make([]uuid.UUID, 0, len(u.CompletedTaskIDs))
	for _, raw := range u.CompletedTaskIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse completed task id %q: %w", raw, err)
		}
		completed = append(completed, id)
	}

	return &model.User{
		TelegramID:       u.TelegramID,
		Username:         u.Username,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		TelegramUsername: u.TelegramUsername,
		TwitterUsername:  u.TwitterUsername,
		WalletAddress:    u.WalletAddress,
		Balance:          u.Balance,
		ProfileCompleted: u.ProfileCompleted,
		ReferredBy:       u.ReferredBy,
		CompletedTasks:   completed,
		RegistrationDate: u.RegistrationDate,
		LastActive:       u.LastActive,
	}, nil
}

var userColumns = []string{
	"u.telegram_id",
	"u.username",
	"u.first_name",
	"u.last_name",
	"u.telegram_username",
	"u.twitter_username",
	"u.wallet_address",
	"u.balance",
	"u.profile_completed",
	"u.referred_by",
	"array_agg(ct.task_id) FILTER (WHERE ct.task_id IS NOT NULL) as completed_task_ids",
	"u.registration_date",
	"u.last_active",
}

// UpsertUser creates the user on first contact or refreshes last_active and the
// telegram username on every subsequent one, returning the current record.
func (r *Repository) UpsertUser(ctx context.Context, u *model.User) (*model.User, error) {
	query, args, err := squirrel.
		Insert("users").
		SetMap(map[string]interface{}{
			"telegram_id":       u.TelegramID,
			"username":          u.Username,
			"first_name":        u.FirstName,
			"last_name":         u.LastName,
			"telegram_username": u.TelegramUsername,
			"balance":           0,
			"profile_completed": false,
			"registration_date": u.RegistrationDate,
			"last_active":       u.LastActive,
		}).
		Suffix(`ON CONFLICT (telegram_id) DO UPDATE SET
			last_active = EXCLUDED.last_active,
			username = EXCLUDED.username,
			telegram_username = CASE
				WHEN EXCLUDED.telegram_username <> '' THEN EXCLUDED.telegram_username
				ELSE users.telegram_username
			END`).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build user upsert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	return r.GetUserByTelegramID(ctx, u.TelegramID)
}

func (r *Repository) GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	var u user
	query, args, err := squirrel.
		Select(userColumns...).
		From("users u").
		LeftJoin("completed_tasks ct ON ct.user_telegram_id = u.telegram_id").
		Where(squirrel.Eq{"u.telegram_id": telegramID}).
		GroupBy("u.telegram_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &u, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return u.toModel()
}

func (r *Repository) UpdateTelegramUsername(ctx context.Context, telegramID int64, handle string) error {
	return r.updateUserField(ctx, telegramID, "telegram_username", handle)
}

func (r *Repository) UpdateTwitterUsername(ctx context.Context, telegramID int64, handle string) error {
	return r.updateUserField(ctx, telegramID, "twitter_username", handle)
}

func (r *Repository) updateUserField(ctx context.Context, telegramID int64, column string, value interface{}) error {
	query, args, err := squirrel.
		Update("users").
		Set(column, value).
		Where(squirrel.Eq{"telegram_id": telegramID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// CompleteProfile stores the wallet address, marks the profile complete and,
// when the user arrived through a referral link, records the back-reference.
func (r *Repository) CompleteProfile(ctx context.Context, telegramID int64, walletAddress string, referredBy *int64) error {
	builder := squirrel.
		Update("users").
		Set("wallet_address", walletAddress).
		Set("profile_completed", true).
		Where(squirrel.Eq{"telegram_id": telegramID})

	if referredBy != nil {
		builder = builder.Set("referred_by", referredBy)
	}

	query, args, err := builder.PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *Repository) IncrementBalance(ctx context.Context, telegramID int64, amount int) error {
	query, args, err := squirrel.
		Update("users").
		Set("balance", squirrel.Expr("balance + ?", amount)).
		Where(squirrel.Eq{"telegram_id": telegramID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

// CreditTaskCompletion records the completion and awards the reward in one
// transaction. The (user, task) primary key makes the credit idempotent: a
// replayed completion inserts no row and leaves the balance untouched.
func (r *Repository) CreditTaskCompletion(ctx context.Context, telegramID int64, taskID uuid.UUID, reward int) (bool, int, error) {
	var credited bool
	var totalCompleted int

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		insertQuery, insertArgs, err := squirrel.
			Insert("completed_tasks").
			SetMap(map[string]interface{}{
				"user_telegram_id": telegramID,
				"task_id":          taskID,
				"completed_at":     time.Now(),
			}).
			Suffix("ON CONFLICT (user_telegram_id, task_id) DO NOTHING").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build completion insert query: %w", err)
		}

		result, err := tx.ExecContext(ctx, insertQuery, insertArgs...)
		if err != nil {
			return fmt.Errorf("failed to insert completion: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		credited = rows > 0

		if credited {
			updateQuery, updateArgs, err := squirrel.
				Update("users").
				Set("balance", squirrel.Expr("balance + ?", reward)).
				Where(squirrel.Eq{"telegram_id": telegramID}).
				PlaceholderFormat(squirrel.Dollar).
				ToSql()
			if err != nil {
				return err
			}

			_, err = tx.ExecContext(ctx, updateQuery, updateArgs...)
			if err != nil {
				return fmt.Errorf("failed to credit reward: %w", err)
			}
		}

		countQuery, countArgs, err := squirrel.
			Select("count(*)").
			From("completed_tasks").
			Where(squirrel.Eq{"user_telegram_id": telegramID}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		err = tx.GetContext(ctx, &totalCompleted, countQuery, countArgs...)
		if err != nil {
			return fmt.Errorf("failed to count completions: %w", err)
		}

		return nil
	})
	if err != nil {
		return false, 0, err
	}

	return credited, totalCompleted, nil
}

func (r *Repository) ListUserIDs(ctx context.Context) ([]int64, error) {
	query, args, err := squirrel.
		Select("telegram_id").
		From("users").
		OrderBy("registration_date").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var ids []int64
	err = r.db.SelectContext(ctx, &ids, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list user ids: %w", err)
	}

	return ids, nil
}

type UserStats struct {
	TotalUsers        int `db:"total_users"`
	CompletedProfiles int `db:"completed_profiles"`
	TotalBalance      int `db:"total_balance"`
}

func (r *Repository) GetUserStats(ctx context.Context) (*UserStats, error) {
	query, args, err := squirrel.
		Select(
			"count(*) as total_users",
			"count(*) FILTER (WHERE profile_completed) as completed_profiles",
			"coalesce(sum(balance), 0) as total_balance",
		).
		From("users").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var stats UserStats
	err = r.db.GetContext(ctx, &stats, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}

	return &stats, nil
}
