package bot

import (
	"context"
	"fmt"
	"time"

	"TR_telegram_taskbot/internal/model"
	"TR_telegram_taskbot/internal/service"
	"TR_telegram_taskbot/internal/session"
	"TR_telegram_taskbot/pkg/logger"

	"github.com/google/uuid"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Callbacks older than this are past the platform's answer deadline; we
// acknowledge them silently instead of attempting a doomed response.
const staleInteractionCutoff = 60 * time.Second

// callbackAge estimates how old a callback interaction is from the timestamp
// of the message it is attached to.
func callbackAge(cb *tgbotapi.CallbackQuery, now time.Time) time.Duration {
	if cb.Message == nil || cb.Message.Date == 0 {
		return 0
	}
	return now.Sub(time.Unix(int64(cb.Message.Date), 0))
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	chatID := updateChatID(update)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic in update handler: %v", r)
			logger.Logger().Error("update handler panicked",
				zap.Int64("chat_id", chatID),
				zap.Int("update_id", update.UpdateID),
				zap.Time("timestamp", time.Now()),
				zap.Any("panic", r))
			b.reply(chatID, "❌ An error occurred. Please try again later.")
			b.alertAdmins(err)
		}
	}()

	from := update.SentFrom()
	if from == nil {
		return
	}

	if cb := update.CallbackQuery; cb != nil {
		if callbackAge(cb, time.Now()) > staleInteractionCutoff {
			b.answerCallback(cb.ID, "⌛ This action expired. Please try again.", false)
			return
		}
	}

	sess := b.sessions.Get(chatID)
	user := b.svc.Users.Resolve(ctx, service.Identity{
		TelegramID: from.ID,
		Username:   from.UserName,
		FirstName:  from.FirstName,
		LastName:   from.LastName,
	}, update.CallbackQuery != nil)

	if user.ProfileCompleted {
		sess.CaptchaSolved = true
	}

	// Settle any outstanding referral credit in the background; crediting is
	// idempotent so racing the proof-submission path is harmless. The handler
	// keeps mutating its own record, so the goroutine gets a snapshot.
	snapshot := &model.User{
		TelegramID:     user.TelegramID,
		Username:       user.Username,
		ReferredBy:     user.ReferredBy,
		CompletedTasks: append([]uuid.UUID(nil), user.CompletedTasks...),
	}
	go func() {
		if err := b.svc.Referrals.CheckCompletion(context.Background(), snapshot); err != nil {
			logger.Logger().Error("referral check failed",
				zap.Int64("telegram_id", snapshot.TelegramID), zap.Error(err))
		}
	}()

	var err error
	switch {
	case update.CallbackQuery != nil:
		err = b.handleCallback(ctx, sess, user, update.CallbackQuery)
	case update.Message != nil:
		err = b.handleMessage(ctx, sess, user, update.Message)
	}

	if err != nil {
		if isStaleInteractionErr(err) {
			logger.Logger().Info("stale interaction dropped", zap.Int64("chat_id", chatID), zap.Error(err))
			return
		}
		logger.Logger().Error("update handling failed",
			zap.Int64("chat_id", chatID),
			zap.Int("update_id", update.UpdateID),
			zap.Time("timestamp", time.Now()),
			zap.Error(err))
		b.reply(chatID, "❌ An error occurred. Please try again later.")
		b.alertAdmins(err)
	}
}

func (b *Bot) handleMessage(ctx context.Context, sess *session.Session, user *model.User, msg *tgbotapi.Message) error {
	if msg.IsCommand() {
		return b.handleCommand(ctx, sess, user, msg)
	}

	if len(msg.Photo) > 0 {
		return b.handlePhoto(ctx, sess, user, msg)
	}

	if handled, err := b.handleMenu(ctx, sess, user, msg.Text); handled {
		return err
	}

	if sess.IsAdmin {
		if handled, err := b.handleAdminMenu(ctx, sess, msg.Text); handled {
			return err
		}
	}

	return b.handleText(ctx, sess, user, msg)
}

func (b *Bot) handleCommand(ctx context.Context, sess *session.Session, user *model.User, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, sess, user, msg.CommandArguments())
	case "admin_login":
		return b.handleAdminLogin(sess, user)
	default:
		return nil
	}
}
