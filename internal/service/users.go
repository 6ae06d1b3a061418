package service

import (
	"context"
	"time"

	"TR_telegram_taskbot/internal/cache"
	"TR_telegram_taskbot/internal/model"
	"TR_telegram_taskbot/internal/repository"
	"TR_telegram_taskbot/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Identity is what the platform tells us about the sender of an update.
type Identity struct {
	TelegramID int64
	Username   string
	FirstName  string
	LastName   string
}

type UserService struct {
	repo  UserRepository
	cache *cache.UserCache
}

func NewUserService(repo UserRepository, userCache *cache.UserCache) *UserService {
	return &UserService{
		repo:  repo,
		cache: userCache,
	}
}

// Resolve maps an inbound identity to the user record: cache first, then an
// upsert that refreshes last_active. If the store is unreachable the
// conversation continues on a synthesized record that is neither cached nor
// written back.
func (s *UserService) Resolve(ctx context.Context, id Identity, callback bool) *model.User {
	if u, ok := s.cache.Get(id.TelegramID, callback); ok {
		u.LastActive = time.Now()
		return u
	}

	now := time.Now()
	seed := &model.User{
		TelegramID:       id.TelegramID,
		Username:         id.Username,
		FirstName:        id.FirstName,
		LastName:         id.LastName,
		RegistrationDate: now,
		LastActive:       now,
	}
	if id.Username != "" {
		seed.TelegramUsername = "@" + id.Username
	}

	resolved, err := s.repo.UpsertUser(ctx, seed)
	if err != nil {
		logger.Logger().Warn("store unreachable, using temporary user record",
			zap.Int64("telegram_id", id.TelegramID), zap.Error(err))
		seed.CompletedTasks = []uuid.UUID{}
		return seed
	}

	s.cache.Set(resolved)
	return resolved
}

func (s *UserService) GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	user, err := s.repo.GetUserByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Refresh re-reads the user from the store and updates the cache, used after
// mutations so the next update in the same chat sees the new balance.
func (s *UserService) Refresh(ctx context.Context, telegramID int64) (*model.User, error) {
	user, err := s.repo.GetUserByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(user)
	return user, nil
}

func (s *UserService) Invalidate(telegramID int64) {
	s.cache.Delete(telegramID)
}

func (s *UserService) Stats(ctx context.Context) (*repository.UserStats, error) {
	return s.repo.GetUserStats(ctx)
}
