package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"TR_telegram_taskbot/internal/model"
	"TR_telegram_taskbot/internal/service"
	"TR_telegram_taskbot/internal/session"

	"github.com/google/uuid"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var requiredVerifications = []string{"channel_1", "channel_2", "group"}

func (b *Bot) handleCallback(ctx context.Context, sess *session.Session, user *model.User, cb *tgbotapi.CallbackQuery) error {
	data := cb.Data

	switch {
	case strings.HasPrefix(data, "verify_task_"):
		return b.handleTaskVerification(ctx, sess, user, cb, strings.TrimPrefix(data, "verify_task_"))
	case strings.HasPrefix(data, "edit_task_"):
		return b.adminCallback(sess, cb, func() error {
			return b.handleEditTask(sess, cb, strings.TrimPrefix(data, "edit_task_"))
		})
	case strings.HasPrefix(data, "toggle_task_"):
		return b.adminCallback(sess, cb, func() error {
			return b.handleToggleTask(ctx, cb, strings.TrimPrefix(data, "toggle_task_"))
		})
	case strings.HasPrefix(data, "delete_task_"):
		return b.adminCallback(sess, cb, func() error {
			return b.handleDeleteTask(ctx, cb, strings.TrimPrefix(data, "delete_task_"))
		})
	case data == "verify_telegram_membership":
		return b.handleMembershipVerification(ctx, sess, user, cb)
	case strings.HasPrefix(data, "verify_"):
		name := strings.TrimPrefix(data, "verify_")
		for _, known := range requiredVerifications {
			if name == known {
				sess.Verified[name] = true
				b.answerCallback(cb.ID, fmt.Sprintf("✅ %s verified!", strings.ReplaceAll(name, "_", " ")), false)
				return nil
			}
		}
		return nil
	}

	switch data {
	case "continue_after_verify":
		if !sess.AllVerified(requiredVerifications) {
			b.answerCallback(cb.ID, "⚠️ Please complete all verification steps first!", false)
			return nil
		}
		b.answerCallback(cb.ID, "✅ Verification complete!", false)
		if cb.Message != nil {
			b.deleteMessage(sess.ChatID, cb.Message.MessageID)
		}
		b.startProfileWizard(sess)
		return nil

	case "edit_profile":
		b.answerCallback(cb.ID, "", false)
		sess.State = session.ProfileState{Step: session.ProfileStepTelegram}
		b.reply(sess.ChatID,
			"📝 <b>Edit Profile</b>\n\nPlease enter your Telegram username (with @):\n<i>Example: @username</i>")
		return nil

	case "refresh_referrals":
		b.answerCallback(cb.ID, "🔄 Refreshing...", false)
		return b.showReferral(ctx, sess.ChatID, user)

	case "confirm_withdraw":
		return b.handleConfirmWithdraw(ctx, sess, user, cb)

	case "cancel_withdraw":
		b.answerCallback(cb.ID, "", false)
		if cb.Message != nil {
			b.deleteMessage(sess.ChatID, cb.Message.MessageID)
		}
		b.reply(sess.ChatID, "❌ Withdrawal cancelled.")
		return nil

	case "cancel_add_task", "cancel_edit_task", "cancel_setting_update":
		b.answerCallback(cb.ID, "", false)
		sess.ClearState()
		if cb.Message != nil {
			b.deleteMessage(sess.ChatID, cb.Message.MessageID)
		}
		b.reply(sess.ChatID, "❌ Cancelled.")
		if data == "cancel_add_task" && sess.IsAdmin {
			b.showAdminPanel(sess.ChatID)
		}
		return nil

	case "show_settings", "back_to_settings":
		return b.adminCallback(sess, cb, func() error {
			b.showSettings(sess.ChatID)
			return nil
		})

	case "set_currency":
		return b.adminSettingPrompt(sess, cb, model.SettingCurrencyName, "💱 Enter the new currency name:")
	case "set_min_withdraw":
		return b.adminSettingPrompt(sess, cb, model.SettingMinWithdraw, "📉 Enter the new minimum withdrawal amount:")
	case "set_referral_bonus":
		return b.adminSettingPrompt(sess, cb, model.SettingReferralBonus, "🎁 Enter the new referral bonus amount:")
	}

	b.answerCallback(cb.ID, "", false)
	return nil
}

func (b *Bot) adminCallback(sess *session.Session, cb *tgbotapi.CallbackQuery, fn func() error) error {
	if !sess.IsAdmin {
		b.answerCallback(cb.ID, "❌ Admin access required", true)
		return nil
	}
	return fn()
}

func (b *Bot) adminSettingPrompt(sess *session.Session, cb *tgbotapi.CallbackQuery, key, prompt string) error {
	return b.adminCallback(sess, cb, func() error {
		b.answerCallback(cb.ID, "", false)
		sess.State = session.SettingState{Key: key}
		b.replyWithKeyboard(sess.ChatID, prompt, cancelKeyboard("cancel_setting_update"))
		return nil
	})
}

// handleTaskVerification starts the verification flow for the tapped task:
// a membership check for telegram tasks, the handle-then-screenshot proof
// flow for everything else.
func (b *Bot) handleTaskVerification(ctx context.Context, sess *session.Session, user *model.User, cb *tgbotapi.CallbackQuery, rawID string) error {
	b.answerCallback(cb.ID, "🔄 Processing...", false)

	taskID, err := uuid.Parse(rawID)
	if err != nil {
		b.answerCallback(cb.ID, "❌ Task not found", true)
		return nil
	}

	task, err := b.svc.Tasks.GetTask(ctx, taskID)
	if err != nil {
		b.answerCallback(cb.ID, "❌ Task not found", true)
		return nil
	}

	if user.HasCompleted(task.ID) {
		b.answerCallback(cb.ID, "ℹ️ You have already completed this task", true)
		return nil
	}

	switch task.Type {
	case model.TaskTypeTelegram:
		target := service.TargetChat(task.Link)
		if target == "" {
			// Private invite links cannot be membership-checked; fall back
			// to manual proof.
			sess.State = session.VerificationState{TaskID: task.ID, Step: session.VerificationStepScreenshot}
			b.reply(sess.ChatID, fmt.Sprintf(
				"🔗 %s\n\n📸 Join, then submit a screenshot as proof:", task.Link))
			return nil
		}

		sess.State = session.VerificationState{
			TaskID:     task.ID,
			TargetChat: target,
			Step:       session.VerificationStepMembership,
		}
		b.replyWithKeyboard(sess.ChatID, fmt.Sprintf(
			"<b>%s</b>\n%s\n\n🔗 %s\n\nJoin, then tap the button below:",
			task.Title, task.Description, task.Link),
			tgbotapi.NewInlineKeyboardMarkup(
				tgbotapi.NewInlineKeyboardRow(
					tgbotapi.NewInlineKeyboardButtonData("✅ I've Joined", "verify_telegram_membership"),
				),
			))
		return nil

	case model.TaskTypeTwitter:
		sess.State = session.VerificationState{TaskID: task.ID, Step: session.VerificationStepTwitterHandle}
		b.reply(sess.ChatID, fmt.Sprintf(
			"<b>%s</b>\n%s\n\n🔗 %s\n\n🐦 Enter your Twitter username (without @):",
			task.Title, task.Description, task.Link))
		return nil

	default:
		sess.State = session.VerificationState{TaskID: task.ID, Step: session.VerificationStepScreenshot}
		b.reply(sess.ChatID, fmt.Sprintf(
			"<b>%s</b>\n%s\n\n🔗 %s\n\n📸 Complete the task, then submit a screenshot as proof:",
			task.Title, task.Description, task.Link))
		return nil
	}
}

func (b *Bot) handleMembershipVerification(ctx context.Context, sess *session.Session, user *model.User, cb *tgbotapi.CallbackQuery) error {
	state, ok := sess.State.(session.VerificationState)
	if !ok || state.Step != session.VerificationStepMembership || state.TargetChat == "" {
		b.answerCallback(cb.ID, "❌ No active verification process", false)
		return nil
	}

	err := b.svc.Verification.VerifyMembership(ctx, state.TargetChat, user.TelegramID)
	if err != nil {
		if errors.Is(err, service.ErrNotMember) {
			b.answerCallback(cb.ID, "❌ You still need to join the channel/group", false)
			return nil
		}
		b.answerCallback(cb.ID, "❌ Verification failed. Please try again later.", false)
		return fmt.Errorf("membership verification failed: %w", err)
	}

	result, err := b.svc.Verification.CompleteTask(ctx, user, state.TaskID)
	if err != nil {
		return fmt.Errorf("failed to credit task: %w", err)
	}

	sess.ClearState()

	if !result.Credited {
		b.answerCallback(cb.ID, "ℹ️ You have already completed this task", true)
		return nil
	}

	b.svc.Users.Invalidate(user.TelegramID)
	b.answerCallback(cb.ID, "✅ Verified!", false)
	b.reply(sess.ChatID, fmt.Sprintf(
		"✅ Task completed! <b>+%s</b> added to your balance.",
		b.svc.Settings.FormatAmount(result.Task.Reward)))
	return nil
}

func (b *Bot) handleConfirmWithdraw(ctx context.Context, sess *session.Session, user *model.User, cb *tgbotapi.CallbackQuery) error {
	withdrawal, err := b.svc.Withdraw.Confirm(ctx, user)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInsufficientBalance),
			errors.Is(err, service.ErrBelowMinWithdraw):
			b.answerCallback(cb.ID, "⚠️ Balance too low to withdraw.", true)
			return nil
		case errors.Is(err, service.ErrProfileIncomplete):
			b.answerCallback(cb.ID, "⚠️ Complete your profile first.", true)
			return nil
		default:
			return fmt.Errorf("withdrawal failed: %w", err)
		}
	}

	b.svc.Users.Invalidate(user.TelegramID)
	b.answerCallback(cb.ID, "✅ Withdrawal requested!", false)
	if cb.Message != nil {
		b.deleteMessage(sess.ChatID, cb.Message.MessageID)
	}
	b.reply(sess.ChatID, fmt.Sprintf(
		"✅ Withdrawal of <b>%s</b> requested.\nIt will be sent to <code>%s</code> after review.",
		b.svc.Settings.FormatAmount(withdrawal.Amount), withdrawal.WalletAddress))
	return nil
}
