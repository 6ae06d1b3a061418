package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"TR_telegram_taskbot/internal/model"
	"TR_telegram_taskbot/internal/service"
	"TR_telegram_taskbot/internal/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleStart(ctx context.Context, sess *session.Session, user *model.User, payload string) error {
	if payload != "" && user.ReferredBy == nil && !user.ProfileCompleted {
		if referrerID, err := strconv.ParseInt(strings.TrimSpace(payload), 10, 64); err == nil && referrerID != user.TelegramID {
			sess.ReferralID = &referrerID
		}
	}

	if user.ProfileCompleted {
		b.showMainMenu(sess.ChatID)
		return nil
	}

	if !sess.CaptchaSolved {
		question, answer := newCaptcha()
		sess.CaptchaAnswer = answer
		b.reply(sess.ChatID,
			"👋 Welcome! Complete a few quick steps to start earning.\n\n"+question)
		return nil
	}

	b.showVerificationTasks(sess.ChatID)
	return nil
}

func (b *Bot) handleAdminLogin(sess *session.Session, user *model.User) error {
	if !b.isAdminID(user.TelegramID) {
		b.reply(sess.ChatID, "❌ Unauthorized access")
		return nil
	}

	if sess.IsAdmin {
		b.showAdminPanel(sess.ChatID)
		return nil
	}

	sess.AwaitingPassword = true
	b.reply(sess.ChatID, "🔐 Please enter admin password:")
	return nil
}

func (b *Bot) showMainMenu(chatID int64) {
	b.replyWithKeyboard(chatID, "🏠 Main menu — pick an option:", mainMenuKeyboard())
}

func (b *Bot) showVerificationTasks(chatID int64) {
	b.replyWithKeyboard(chatID,
		"📋 Before you start, join our channels and group, then hit Continue:",
		b.verificationKeyboard())
}

// startProfileWizard begins collecting the profile fields once the join
// checklist is done.
func (b *Bot) startProfileWizard(sess *session.Session) {
	prompt := b.svc.Profile.Start(sess)
	b.reply(sess.ChatID,
		"📝 <b>Profile Setup</b>\n\n"+prompt+"\n<i>Example: @username</i>")
}

func (b *Bot) handleMenu(ctx context.Context, sess *session.Session, user *model.User, text string) (bool, error) {
	switch text {
	case menuBalance:
		return true, b.showBalance(ctx, sess.ChatID, user)
	case menuProfile:
		return true, b.showProfile(ctx, sess.ChatID, user)
	case menuReferral:
		return true, b.showReferral(ctx, sess.ChatID, user)
	case menuWithdraw:
		return true, b.showWithdraw(sess.ChatID, user)
	case menuTasks:
		b.showTasks(sess.ChatID, user)
		return true, nil
	case menuHistory:
		return true, b.showHistory(ctx, sess.ChatID, user)
	default:
		return false, nil
	}
}

func (b *Bot) showBalance(ctx context.Context, chatID int64, user *model.User) error {
	last, err := b.svc.Withdraw.Last(ctx, user.TelegramID)
	if err != nil {
		return fmt.Errorf("failed to load last withdrawal: %w", err)
	}

	lastLine := "None"
	if last != nil {
		lastLine = fmt.Sprintf("%s (%s)", b.svc.Settings.FormatAmount(last.Amount), last.Status)
	}

	b.reply(chatID, fmt.Sprintf(
		"<b>💰 Your Balance:</b> %s\n\n<b>📅 Last Withdrawal:</b> %s",
		b.svc.Settings.FormatAmount(user.Balance), lastLine))
	return nil
}

func (b *Bot) showProfile(ctx context.Context, chatID int64, user *model.User) error {
	fresh, err := b.svc.Users.Refresh(ctx, user.TelegramID)
	if err != nil {
		fresh = user
	}

	edges, err := b.svc.Referrals.ListEdges(ctx, user.TelegramID)
	if err != nil {
		return fmt.Errorf("failed to load referrals: %w", err)
	}

	orNotSet := func(s string) string {
		if s == "" {
			return "Not set"
		}
		return s
	}

	text := fmt.Sprintf(
		"<b>Your Profile:</b>\n\n"+
			"🆔 Telegram: <code>%s</code>\n"+
			"🐦 Twitter: <code>%s</code>\n"+
			"💼 Wallet: <code>%s</code>\n\n"+
			"💰 Balance: <b>%s</b>\n"+
			"👥 Referrals: <b>%d</b>",
		orNotSet(fresh.TelegramUsername),
		orNotSet(fresh.TwitterUsername),
		orNotSet(fresh.WalletAddress),
		b.svc.Settings.FormatAmount(fresh.Balance),
		len(edges))

	b.replyWithKeyboard(chatID, text, tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ Edit Profile", "edit_profile"),
		),
	))
	return nil
}

func (b *Bot) showReferral(ctx context.Context, chatID int64, user *model.User) error {
	edges, err := b.svc.Referrals.ListEdges(ctx, user.TelegramID)
	if err != nil {
		return fmt.Errorf("failed to load referrals: %w", err)
	}

	completed := 0
	for _, e := range edges {
		if e.Completed {
			completed++
		}
	}

	bonus := b.svc.Settings.Current().ReferralBonus
	link := fmt.Sprintf("https://t.me/%s?start=%d", b.Username(), user.TelegramID)

	text := fmt.Sprintf(
		"<b>📢 Invite friends, earn rewards!</b>\n\n"+
			"You get %s for every friend who completes their first task.\n\n"+
			"🔗 Your link:\n<code>%s</code>\n\n"+
			"👥 Invited: <b>%d</b>\n✅ Completed: <b>%d</b>",
		b.svc.Settings.FormatAmount(bonus), link, len(edges), completed)

	b.replyWithKeyboard(chatID, text, tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Refresh", "refresh_referrals"),
		),
	))
	return nil
}

func (b *Bot) showWithdraw(chatID int64, user *model.User) error {
	err := b.svc.Withdraw.Validate(user)
	switch {
	case errors.Is(err, service.ErrProfileIncomplete):
		b.reply(chatID, "⚠️ Please complete your profile (wallet address) before withdrawing.")
		return nil
	case errors.Is(err, service.ErrBelowMinWithdraw):
		b.reply(chatID, fmt.Sprintf("⚠️ Minimum withdrawal is %s. Keep completing tasks!",
			b.svc.Settings.FormatAmount(b.svc.Settings.Current().MinWithdraw)))
		return nil
	case err != nil:
		return err
	}

	b.replyWithKeyboard(chatID, fmt.Sprintf(
		"💸 Withdraw <b>%s</b> to:\n<code>%s</code>\n\nConfirm?",
		b.svc.Settings.FormatAmount(user.Balance), user.WalletAddress),
		withdrawConfirmKeyboard())
	return nil
}

func (b *Bot) showTasks(chatID int64, user *model.User) {
	tasks := b.svc.Tasks.ActiveTasks()
	if len(tasks) == 0 {
		b.reply(chatID, "📭 No tasks available right now. Check back later!")
		return
	}

	b.replyWithKeyboard(chatID,
		"📋 <b>Available Tasks</b>\n\nTap a task to complete and verify it:",
		taskListKeyboard(tasks, user))
}

func (b *Bot) showHistory(ctx context.Context, chatID int64, user *model.User) error {
	withdrawals, err := b.svc.Withdraw.History(ctx, user.TelegramID)
	if err != nil {
		return fmt.Errorf("failed to load withdrawal history: %w", err)
	}

	if len(withdrawals) == 0 {
		b.reply(chatID, "📜 No withdrawals yet.")
		return nil
	}

	var sb strings.Builder
	sb.WriteString("<b>📜 Withdrawal History</b>\n\n")
	for _, w := range withdrawals {
		sb.WriteString(fmt.Sprintf("• %s — %s (%s)\n",
			w.CreatedAt.Format("2006-01-02"),
			b.svc.Settings.FormatAmount(w.Amount),
			w.Status))
	}
	b.reply(chatID, sb.String())
	return nil
}

func (b *Bot) handleText(ctx context.Context, sess *session.Session, user *model.User, msg *tgbotapi.Message) error {
	if sess.AwaitingPassword {
		sess.AwaitingPassword = false
		if msg.Text == b.cfg.AdminPassword {
			sess.IsAdmin = true
			b.showAdminPanel(sess.ChatID)
		} else {
			b.reply(sess.ChatID, "❌ Incorrect password. Try /admin_login again.")
		}
		return nil
	}

	if sess.CaptchaAnswer != "" && !sess.CaptchaSolved {
		if verifyCaptcha(msg.Text, sess.CaptchaAnswer) {
			sess.CaptchaSolved = true
			sess.CaptchaAnswer = ""
			b.reply(sess.ChatID, "✅ CAPTCHA solved correctly!")
			b.showVerificationTasks(sess.ChatID)
		} else {
			b.reply(sess.ChatID, "❌ Incorrect answer. Please try again.")
		}
		return nil
	}

	switch state := sess.State.(type) {
	case session.VerificationState:
		return b.handleVerificationText(sess, state, msg.Text)
	case session.ProfileState:
		return b.handleProfileText(ctx, sess, user, msg.Text)
	case session.TaskCreateState:
		return b.handleTaskCreateText(ctx, sess, state, msg.Text)
	case session.TaskEditState:
		return b.handleTaskEditText(ctx, sess, state, msg.Text)
	case session.SettingState:
		return b.handleSettingText(ctx, sess, state, msg.Text)
	case session.BroadcastState:
		return b.handleBroadcastText(ctx, sess, msg.Text)
	}

	return nil
}

func (b *Bot) handleVerificationText(sess *session.Session, state session.VerificationState, text string) error {
	if state.Step != session.VerificationStepTwitterHandle {
		return nil
	}

	handle := strings.TrimSpace(text)
	if strings.Contains(handle, "@") {
		b.reply(sess.ChatID, "⚠️ Please enter your Twitter username without @")
		return nil
	}

	state.TwitterProof = handle
	state.Step = session.VerificationStepScreenshot
	sess.State = state
	b.reply(sess.ChatID, "📸 Please submit a screenshot showing you completed the Twitter task:")
	return nil
}

func (b *Bot) handleProfileText(ctx context.Context, sess *session.Session, user *model.User, text string) error {
	result, err := b.svc.Profile.HandleInput(ctx, sess, user, text)
	if err != nil {
		return fmt.Errorf("profile wizard failed: %w", err)
	}

	for _, reply := range result.Replies {
		b.reply(sess.ChatID, reply)
	}

	if result.Completed {
		b.svc.Users.Invalidate(user.TelegramID)
		b.showMainMenu(sess.ChatID)
	}
	return nil
}

func (b *Bot) handlePhoto(ctx context.Context, sess *session.Session, user *model.User, msg *tgbotapi.Message) error {
	state, ok := sess.State.(session.VerificationState)
	if !ok || state.Step != session.VerificationStepScreenshot {
		return nil
	}

	// Receipt of any image is accepted as proof; content is not inspected.
	result, err := b.svc.Verification.CompleteTask(ctx, user, state.TaskID)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			sess.ClearState()
			b.reply(sess.ChatID, "❌ This task is no longer available.")
			return nil
		}
		return fmt.Errorf("failed to process task proof: %w", err)
	}

	sess.ClearState()

	if !result.Credited {
		b.reply(sess.ChatID, "ℹ️ You have already completed this task.")
		return nil
	}

	b.svc.Users.Invalidate(user.TelegramID)
	b.reply(sess.ChatID, fmt.Sprintf(
		"✅ Task completed! <b>+%s</b> added to your balance.",
		b.svc.Settings.FormatAmount(result.Task.Reward)))
	return nil
}
