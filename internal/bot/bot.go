package bot

import (
	"context"
	"fmt"
	"strings"

	"TR_telegram_taskbot/internal/service"
	"TR_telegram_taskbot/internal/session"
	"TR_telegram_taskbot/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type Config struct {
	Token         string `yaml:"token"`
	AdminIDs      []int64 `yaml:"adminIds"`
	AdminPassword string `yaml:"adminPassword"`

	// Channels every new user must join before the profile wizard starts.
	VerifyChannel1 string `yaml:"verifyChannel1"`
	VerifyChannel2 string `yaml:"verifyChannel2"`
	VerifyGroup    string `yaml:"verifyGroup"`

	Debug bool `yaml:"debug"`
}

type Services struct {
	Users        *service.UserService
	Profile      *service.ProfileService
	Referrals    *service.ReferralService
	Tasks        *service.TaskService
	Verification *service.VerificationService
	Withdraw     *service.WithdrawService
	Settings     *service.SettingsService
	Broadcaster  *service.Broadcaster
}

type Bot struct {
	api      *tgbotapi.BotAPI
	cfg      Config
	sessions *session.Store
	svc      Services

	dispatcher *dispatcher
}

// NewAPI connects the long-poll client. Created separately from the Bot so
// the services that need a Telegram client can be wired before the Bot is.
func NewAPI(token string, debug bool) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bot: %w", err)
	}
	api.Debug = debug
	return api, nil
}

func New(api *tgbotapi.BotAPI, cfg Config, sessions *session.Store, svc Services) *Bot {
	b := &Bot{
		api:      api,
		cfg:      cfg,
		sessions: sessions,
		svc:      svc,
	}
	b.dispatcher = newDispatcher(b.handleUpdate)
	return b
}

func (b *Bot) Username() string {
	return b.api.Self.UserName
}

// Run consumes the long-poll update stream until the context is cancelled.
// Updates are fanned out to per-chat queues so one chat's wizard steps are
// handled strictly in arrival order while distinct chats run concurrently.
func (b *Bot) Run(ctx context.Context) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := b.api.GetUpdatesChan(updateConfig)
	logger.Logger().Info("bot update loop started", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case update := <-updates:
			chatID := updateChatID(update)
			if chatID == 0 {
				continue
			}
			b.dispatcher.enqueue(ctx, chatID, update)

		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.dispatcher.wait()
			return
		}
	}
}

func updateChatID(update tgbotapi.Update) int64 {
	switch {
	case update.Message != nil:
		return update.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		return update.CallbackQuery.Message.Chat.ID
	default:
		return 0
	}
}

// isStaleInteractionErr recognizes the platform's "too late to respond" error
// family. These are swallowed rather than surfaced to the user.
func isStaleInteractionErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "query is too old") ||
		strings.Contains(msg, "response timeout expired") ||
		strings.Contains(msg, "query ID is invalid")
}

// TelegramClient adapts the raw API client to the service-layer Notifier and
// MembershipChecker interfaces.
type TelegramClient struct {
	api *tgbotapi.BotAPI
}

func NewTelegramClient(api *tgbotapi.BotAPI) *TelegramClient {
	return &TelegramClient{api: api}
}

func (c *TelegramClient) Notify(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := c.api.Send(msg)
	return err
}

func (c *TelegramClient) GetChatMemberStatus(ctx context.Context, chat string, userID int64) (string, error) {
	member, err := c.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			SuperGroupUsername: chat,
			UserID:             userID,
		},
	})
	if err != nil {
		return "", err
	}
	return member.Status, nil
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	b.send(msg)
}

func (b *Bot) replyWithKeyboard(chatID int64, text string, keyboard interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = keyboard
	b.send(msg)
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		if isStaleInteractionErr(err) {
			logger.Logger().Debug("stale interaction while sending", zap.Error(err))
			return
		}
		logger.Logger().Error("failed to send message", zap.Error(err))
	}
}

func (b *Bot) answerCallback(callbackID, text string, alert bool) {
	cb := tgbotapi.NewCallback(callbackID, text)
	cb.ShowAlert = alert
	if _, err := b.api.Request(cb); err != nil && !isStaleInteractionErr(err) {
		logger.Logger().Warn("failed to answer callback", zap.Error(err))
	}
}

func (b *Bot) deleteMessage(chatID int64, messageID int) {
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		logger.Logger().Debug("failed to delete message", zap.Error(err))
	}
}

func (b *Bot) isAdminID(telegramID int64) bool {
	for _, id := range b.cfg.AdminIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}

// alertAdmins forwards unexpected errors to the configured admins. Stale
// interaction noise is excluded.
func (b *Bot) alertAdmins(err error) {
	if isStaleInteractionErr(err) {
		return
	}
	for _, id := range b.cfg.AdminIDs {
		msg := tgbotapi.NewMessage(id, fmt.Sprintf("🚨 Bot error: %v", err))
		if _, sendErr := b.api.Send(msg); sendErr != nil {
			logger.Logger().Warn("failed to alert admin", zap.Int64("admin_id", id), zap.Error(sendErr))
		}
	}
}
