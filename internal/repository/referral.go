package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"TR_telegram_taskbot/internal/model"

	"github.com/Masterminds/squirrel"
)

type referralEdge struct {
	ReferrerID  int64      `db:"referrer_id"`
	UserID      int64      `db:"user_id"`
	Username    string     `db:"username"`
	Completed   bool       `db:"completed"`
	Claimed     bool       `db:"claimed"`
	ReferredAt  time.Time  `db:"referred_at"`
	CompletedAt *time.Time `db:"completed_at"`
}

// AddReferralEdge inserts the inviter→invitee edge. The (referrer, invitee)
// primary key guarantees at most one edge per pair; a replayed insert reports
// false without error.
func (r *Repository) AddReferralEdge(ctx context.Context, edge *model.ReferralEdge) (bool, error) {
	query, args, err := squirrel.
		Insert("referrals").
		SetMap(map[string]interface{}{
			"referrer_id": edge.ReferrerID,
			"user_id":     edge.UserID,
			"username":    edge.Username,
			"completed":   edge.Completed,
			"claimed":     edge.Claimed,
			"referred_at": edge.ReferredAt,
		}).
		Suffix("ON CONFLICT (referrer_id, user_id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build referral insert query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to insert referral edge: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func (r *Repository) GetReferralEdges(ctx context.Context, referrerID int64) ([]*model.ReferralEdge, error) {
	query, args, err := squirrel.
		Select("referrer_id", "user_id", "username", "completed", "claimed", "referred_at", "completed_at").
		From("referrals").
		Where(squirrel.Eq{"referrer_id": referrerID}).
		OrderBy("referred_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var edges []*referralEdge
	err = r.db.SelectContext(ctx, &edges, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get referral edges: %w", err)
	}

	out := make([]*model.ReferralEdge, len(edges))
	for i, e := range edges {
		out[i] = &model.ReferralEdge{
			ReferrerID:  e.ReferrerID,
			UserID:      e.UserID,
			Username:    e.Username,
			Completed:   e.Completed,
			Claimed:     e.Claimed,
			ReferredAt:  e.ReferredAt,
			CompletedAt: e.CompletedAt,
		}
	}

	return out, nil
}

// CompleteReferralEdge flips the invitee's edge to completed exactly once and
// returns the inviter to credit. The WHERE completed = false guard makes the
// transition atomic: of any number of concurrent callers, one gets the inviter
// id back and the rest get (0, false).
func (r *Repository) CompleteReferralEdge(ctx context.Context, inviteeID int64) (int64, bool, error) {
	query, args, err := squirrel.
		Update("referrals").
		Set("completed", true).
		Set("claimed", true).
		Set("completed_at", time.Now()).
		Where(squirrel.Eq{
			"user_id":   inviteeID,
			"completed": false,
		}).
		Suffix("RETURNING referrer_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, false, fmt.Errorf("failed to build referral completion query: %w", err)
	}

	var referrerID int64
	err = r.db.GetContext(ctx, &referrerID, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to complete referral edge: %w", err)
	}

	return referrerID, true, nil
}
