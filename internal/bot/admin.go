package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"TR_telegram_taskbot/internal/service"
	"TR_telegram_taskbot/internal/session"

	"github.com/google/uuid"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const taskEditFormatHint = "Send the updated task as a single line:\n\n" +
	"<code>title|description|link|reward|active</code>\n\n" +
	"<i>Example: Join our channel|Subscribe and stay|https://t.me/example|50|true</i>"

func (b *Bot) showAdminPanel(chatID int64) {
	b.replyWithKeyboard(chatID, "🛠 <b>Admin Panel</b>\n\nChoose an action:", adminPanelKeyboard())
}

// handleAdminMenu routes admin reply-keyboard presses. Returns false when the
// text is not an admin menu item so normal handling continues.
func (b *Bot) handleAdminMenu(ctx context.Context, sess *session.Session, text string) (bool, error) {
	switch text {
	case adminMenuUserStats:
		return true, b.showUserStats(ctx, sess.ChatID)

	case adminMenuBotStats:
		return true, b.showBotStats(ctx, sess.ChatID)

	case adminMenuAddTask:
		sess.State = session.TaskCreateState{Step: session.TaskCreateStepTitle}
		b.replyWithKeyboard(sess.ChatID,
			"➕ <b>New Task</b>\n\nEnter the task title:", cancelKeyboard("cancel_add_task"))
		return true, nil

	case adminMenuEditTasks:
		return true, b.showEditTaskList(ctx, sess.ChatID)

	case adminMenuSettings:
		b.showSettings(sess.ChatID)
		return true, nil

	case adminMenuBroadcast:
		sess.State = session.BroadcastState{}
		b.replyWithKeyboard(sess.ChatID,
			"📤 <b>Broadcast</b>\n\nSend the message to deliver to all users:",
			cancelKeyboard("cancel_setting_update"))
		return true, nil

	case adminMenuMainMenu:
		b.showMainMenu(sess.ChatID)
		return true, nil
	}

	return false, nil
}

func (b *Bot) showUserStats(ctx context.Context, chatID int64) error {
	stats, err := b.svc.Users.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to load user stats: %w", err)
	}

	b.reply(chatID, fmt.Sprintf(
		"👥 <b>User Stats</b>\n\n"+
			"Total users: <b>%d</b>\n"+
			"Completed profiles: <b>%d</b>\n"+
			"Total balance: <b>%s</b>",
		stats.TotalUsers, stats.CompletedProfiles,
		b.svc.Settings.FormatAmount(stats.TotalBalance)))
	return nil
}

func (b *Bot) showBotStats(ctx context.Context, chatID int64) error {
	stats, err := b.svc.Tasks.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to load task stats: %w", err)
	}

	settings := b.svc.Settings.Current()
	b.reply(chatID, fmt.Sprintf(
		"📊 <b>Bot Stats</b>\n\n"+
			"Tasks: <b>%d</b> (%d active)\n"+
			"Task completions: <b>%d</b>\n\n"+
			"Currency: <b>%s</b>\n"+
			"Min withdrawal: <b>%d</b>\n"+
			"Referral bonus: <b>%d</b>",
		stats.TotalTasks, stats.ActiveTasks, stats.TotalCompletions,
		settings.CurrencyName, settings.MinWithdraw, settings.ReferralBonus))
	return nil
}

func (b *Bot) showEditTaskList(ctx context.Context, chatID int64) error {
	tasks, err := b.svc.Tasks.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}
	if len(tasks) == 0 {
		b.reply(chatID, "📭 No tasks yet. Use ➕ Add Task to create one.")
		return nil
	}

	b.replyWithKeyboard(chatID,
		"✏️ <b>Edit Tasks</b>\n\nTap a task to edit, ⏯ to toggle, 🗑 to delete:",
		editTaskListKeyboard(tasks))
	return nil
}

func (b *Bot) showSettings(chatID int64) {
	settings := b.svc.Settings.Current()
	b.replyWithKeyboard(chatID, fmt.Sprintf(
		"⚙️ <b>Settings</b>\n\n"+
			"💱 Currency: <b>%s</b>\n"+
			"📉 Min withdrawal: <b>%d</b>\n"+
			"🎁 Referral bonus: <b>%d</b>\n\n"+
			"Choose a value to change:",
		settings.CurrencyName, settings.MinWithdraw, settings.ReferralBonus),
		settingsKeyboard())
}

func (b *Bot) handleEditTask(sess *session.Session, cb *tgbotapi.CallbackQuery, rawID string) error {
	taskID, err := uuid.Parse(rawID)
	if err != nil {
		b.answerCallback(cb.ID, "❌ Task not found", true)
		return nil
	}

	b.answerCallback(cb.ID, "", false)
	sess.State = session.TaskEditState{TaskID: taskID}
	b.replyWithKeyboard(sess.ChatID,
		"✏️ <b>Edit Task</b>\n\n"+taskEditFormatHint,
		cancelKeyboard("cancel_edit_task"))
	return nil
}

func (b *Bot) handleToggleTask(ctx context.Context, cb *tgbotapi.CallbackQuery, rawID string) error {
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

	if err := b.svc.Tasks.SetActive(ctx, taskID, !task.Active); err != nil {
		return fmt.Errorf("failed to toggle task: %w", err)
	}

	if task.Active {
		b.answerCallback(cb.ID, "⚪️ Task deactivated", false)
	} else {
		b.answerCallback(cb.ID, "🟢 Task activated", false)
	}
	return b.refreshEditTaskList(ctx, cb)
}

func (b *Bot) handleDeleteTask(ctx context.Context, cb *tgbotapi.CallbackQuery, rawID string) error {
	taskID, err := uuid.Parse(rawID)
	if err != nil {
		b.answerCallback(cb.ID, "❌ Task not found", true)
		return nil
	}

	if err := b.svc.Tasks.Delete(ctx, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	b.answerCallback(cb.ID, "🗑 Task deleted", false)
	return b.refreshEditTaskList(ctx, cb)
}

// refreshEditTaskList redraws the inline list in place after a toggle or
// delete so the admin sees the new state without reopening the menu.
func (b *Bot) refreshEditTaskList(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb.Message == nil {
		return nil
	}

	tasks, err := b.svc.Tasks.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}
	if len(tasks) == 0 {
		b.deleteMessage(cb.Message.Chat.ID, cb.Message.MessageID)
		b.reply(cb.Message.Chat.ID, "📭 No tasks left.")
		return nil
	}

	edit := tgbotapi.NewEditMessageReplyMarkup(
		cb.Message.Chat.ID, cb.Message.MessageID, editTaskListKeyboard(tasks))
	b.send(edit)
	return nil
}

func (b *Bot) handleTaskCreateText(ctx context.Context, sess *session.Session, state session.TaskCreateState, text string) error {
	switch state.Step {
	case session.TaskCreateStepTitle:
		state.Draft.Title = text
		state.Step = session.TaskCreateStepDescription
		sess.State = state
		b.reply(sess.ChatID, "📄 Enter the task description:")
		return nil

	case session.TaskCreateStepDescription:
		state.Draft.Description = text
		state.Step = session.TaskCreateStepLink
		sess.State = state
		b.reply(sess.ChatID, "🔗 Enter the task link:")
		return nil

	case session.TaskCreateStepLink:
		state.Draft.Link = strings.TrimSpace(text)
		state.Draft.Type = service.DetectTaskType(state.Draft.Link)
		state.Step = session.TaskCreateStepReward
		sess.State = state
		b.reply(sess.ChatID, fmt.Sprintf("🔄 Detected task type: <b>%s</b>", state.Draft.Type))
		b.reply(sess.ChatID, "💰 Enter the task reward:")
		return nil

	case session.TaskCreateStepReward:
		reward, err := service.ParseReward(text)
		if err != nil {
			b.reply(sess.ChatID, "❌ Please enter a positive number for the reward.")
			return nil
		}
		state.Draft.Reward = reward

		task, err := b.svc.Tasks.Create(ctx, state.Draft)
		if err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		sess.ClearState()
		b.reply(sess.ChatID, fmt.Sprintf(
			"✅ <b>Task created!</b>\n\n"+
				"<b>%s</b>\n%s\n\n"+
				"🔗 %s\n"+
				"💰 Reward: %s\n"+
				"🏷 Type: %s",
			task.Title, task.Description, task.Link,
			b.svc.Settings.FormatAmount(task.Reward), task.Type))
		b.showAdminPanel(sess.ChatID)
		return nil
	}

	return nil
}

func (b *Bot) handleTaskEditText(ctx context.Context, sess *session.Session, state session.TaskEditState, text string) error {
	task, err := b.svc.Tasks.ApplyEdit(ctx, state.TaskID, text)
	if err != nil {
		if errors.Is(err, service.ErrMalformedEdit) {
			// Keep the edit state so the admin can retry.
			b.reply(sess.ChatID, "❌ Could not parse that.\n\n"+taskEditFormatHint)
			return nil
		}
		return fmt.Errorf("failed to apply task edit: %w", err)
	}

	sess.ClearState()
	b.reply(sess.ChatID, fmt.Sprintf(
		"✅ <b>Task updated!</b>\n\n<b>%s</b>\n%s\n\n🔗 %s\n💰 %s\n🏷 %s\nActive: %t",
		task.Title, task.Description, task.Link,
		b.svc.Settings.FormatAmount(task.Reward), task.Type, task.Active))
	return b.showEditTaskList(ctx, sess.ChatID)
}

func (b *Bot) handleSettingText(ctx context.Context, sess *session.Session, state session.SettingState, text string) error {
	if err := b.svc.Settings.Update(ctx, state.Key, strings.TrimSpace(text)); err != nil {
		b.reply(sess.ChatID, "❌ Invalid value. Please enter a valid number.")
		return nil
	}

	sess.ClearState()
	b.reply(sess.ChatID, "✅ Setting updated!")
	b.showSettings(sess.ChatID)
	return nil
}

func (b *Bot) handleBroadcastText(ctx context.Context, sess *session.Session, text string) error {
	sess.ClearState()
	b.reply(sess.ChatID, "📤 Sending broadcast...")

	sent, total, err := b.svc.Broadcaster.Broadcast(ctx, text)
	if err != nil {
		return fmt.Errorf("broadcast failed: %w", err)
	}

	b.reply(sess.ChatID, fmt.Sprintf("📢 Broadcast sent to %d/%d users!", sent, total))
	b.showAdminPanel(sess.ChatID)
	return nil
}
