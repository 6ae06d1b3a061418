package bot

import (
	"fmt"

	"TR_telegram_taskbot/internal/model"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	menuBalance  = "💰 Balance"
	menuProfile  = "👤 Profile"
	menuReferral = "📢 Referral"
	menuWithdraw = "💸 Withdraw"
	menuTasks    = "📋 Tasks"
	menuHistory  = "📜 History"

	adminMenuUserStats = "👥 User Stats"
	adminMenuBotStats  = "📊 Bot Stats"
	adminMenuAddTask   = "➕ Add Task"
	adminMenuEditTasks = "✏️ Edit Tasks"
	adminMenuSettings  = "⚙️ Settings"
	adminMenuBroadcast = "📤 Broadcast"
	adminMenuMainMenu  = "🏠 Main Menu"
)

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuBalance),
			tgbotapi.NewKeyboardButton(menuProfile),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuReferral),
			tgbotapi.NewKeyboardButton(menuWithdraw),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuTasks),
			tgbotapi.NewKeyboardButton(menuHistory),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func adminPanelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(adminMenuUserStats),
			tgbotapi.NewKeyboardButton(adminMenuBotStats),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(adminMenuAddTask),
			tgbotapi.NewKeyboardButton(adminMenuEditTasks),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(adminMenuSettings),
			tgbotapi.NewKeyboardButton(adminMenuBroadcast),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(adminMenuMainMenu),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func (b *Bot) verificationKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("📣 Join Channel 1", b.cfg.VerifyChannel1),
			tgbotapi.NewInlineKeyboardButtonData("✅ Done", "verify_channel_1"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("📣 Join Channel 2", b.cfg.VerifyChannel2),
			tgbotapi.NewInlineKeyboardButtonData("✅ Done", "verify_channel_2"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("👥 Join Group", b.cfg.VerifyGroup),
			tgbotapi.NewInlineKeyboardButtonData("✅ Done", "verify_group"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➡️ Continue", "continue_after_verify"),
		),
	)
}

func taskListKeyboard(tasks []*model.Task, user *model.User) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(tasks))
	for _, t := range tasks {
		label := fmt.Sprintf("▶️ %s (+%d)", t.Title, t.Reward)
		if user.HasCompleted(t.ID) {
			label = fmt.Sprintf("✅ %s", t.Title)
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, "verify_task_"+t.ID.String()),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func editTaskListKeyboard(tasks []*model.Task) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(tasks))
	for _, t := range tasks {
		status := "🟢"
		if !t.Active {
			status = "⚪️"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%s %s", status, t.Title), "edit_task_"+t.ID.String()),
			tgbotapi.NewInlineKeyboardButtonData("⏯", "toggle_task_"+t.ID.String()),
			tgbotapi.NewInlineKeyboardButtonData("🗑", "delete_task_"+t.ID.String()),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func settingsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💱 Currency Name", "set_currency"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📉 Min Withdrawal", "set_min_withdraw"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎁 Referral Bonus", "set_referral_bonus"),
		),
	)
}

func cancelKeyboard(action string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", action),
		),
	)
}

func withdrawConfirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Confirm", "confirm_withdraw"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", "cancel_withdraw"),
		),
	)
}
