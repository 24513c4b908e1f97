package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/skillmatch/internal/apperr"
	"github.com/Freeeeeet/skillmatch/internal/controller/common"
	"github.com/Freeeeeet/skillmatch/internal/controller/common/keyboard"
	"github.com/Freeeeeet/skillmatch/internal/model"
	"github.com/Freeeeeet/skillmatch/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleLesson обрабатывает команду /lesson <мест> <название>
func (h *Handlers) HandleLesson(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	args := common.CommandArgs(update.Message.Text)
	if len(args) < 2 {
		h.sendError(ctx, b, chatID, "❌ Формат: /lesson <мест> <название>")
		return
	}
	maxParticipants, err := common.ParseID(args[0])
	if err != nil {
		h.fail(ctx, b, chatID, "create lesson", err)
		return
	}

	lesson, err := h.catalogService.CreateLesson(ctx, service.NewLesson{
		TutorID:         user.ID,
		Title:           strings.Join(args[1:], " "),
		MaxParticipants: int(maxParticipants),
	})
	if err != nil {
		h.fail(ctx, b, chatID, "create lesson", err)
		return
	}

	h.sendMessage(ctx, b, chatID, "✅ Занятие опубликовано\n\n"+common.FormatLesson(lesson, 0))
}

// HandleLessons обрабатывает команду /lessons
func (h *Handlers) HandleLessons(ctx context.Context, b *bot.Bot, update *models.Update) {
	if _, ok := h.requireUser(ctx, b, update); !ok {
		return
	}
	chatID := update.Message.Chat.ID

	lessons, err := h.catalogService.ListOpenLessons(ctx)
	if err != nil {
		h.fail(ctx, b, chatID, "list lessons", err)
		return
	}

	if len(lessons) == 0 {
		h.sendMessage(ctx, b, chatID, "📭 Занятий со свободными местами пока нет")
		return
	}

	var sb strings.Builder
	sb.WriteString("👥 Групповые занятия:\n")
	kb := keyboard.NewBuilder()
	for _, l := range lessons {
		participants := -1
		if ids, err := h.catalogService.ListParticipants(ctx, l.ID); err == nil {
			participants = len(ids)
		}
		sb.WriteString("\n" + common.FormatLesson(l, participants) + "\n")
		kb.Row(keyboard.IDButton(fmt.Sprintf("✋ Записаться на #%d", l.ID), common.CallbackJoin, l.ID))
	}

	h.sendWithKeyboard(ctx, b, chatID, sb.String(), kb.Build())
}

// HandleJoin обрабатывает команду /join <ID занятия>
func (h *Handlers) HandleJoin(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	lessonID, ok := h.singleID(ctx, b, update, "/join <ID занятия>")
	if !ok {
		return
	}

	text, err := h.JoinLesson(ctx, b, user, lessonID)
	if err != nil {
		h.fail(ctx, b, chatID, "join lesson", err)
		return
	}
	h.sendMessage(ctx, b, chatID, text)
}

// JoinLesson записывает пользователя на занятие и уведомляет репетитора.
// Используется командой /join и кнопкой join:<id>.
func (h *Handlers) JoinLesson(ctx context.Context, b *bot.Bot, user *model.User, lessonID int64) (string, error) {
	result, err := common.WithRetry(ctx, func(ctx context.Context) (*service.JoinResult, error) {
		return h.engine.AcceptLesson(ctx, lessonID, user.ID)
	})
	if err != nil {
		return "", err
	}

	lesson := result.Lesson
	note := fmt.Sprintf("✋ %s записался на занятие #%d «%s»: %d %s из %d",
		user.DisplayName(), lesson.ID, lesson.Title,
		result.Participants, common.PluralizeParticipants(result.Participants), lesson.MaxParticipants)
	if lesson.Status == model.LessonStatusClosed {
		note += "\n\n🔴 Все места заняты. Назначить время: /schedulelesson " + fmt.Sprint(lesson.ID) + " <ГГГГ-ММ-ДД ЧЧ:ММ>"
	}
	h.notifyUser(ctx, b, lesson.TutorID, note)

	return "✅ Вы записаны\n\n" + common.FormatLesson(lesson, result.Participants), nil
}

// HandleLeave обрабатывает команду /leave <ID занятия>
func (h *Handlers) HandleLeave(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	lessonID, ok := h.singleID(ctx, b, update, "/leave <ID занятия>")
	if !ok {
		return
	}

	result, err := common.WithRetry(ctx, func(ctx context.Context) (*service.JoinResult, error) {
		return h.engine.LeaveLesson(ctx, lessonID, user.ID)
	})
	if err != nil {
		h.fail(ctx, b, chatID, "leave lesson", err)
		return
	}

	h.sendMessage(ctx, b, chatID, fmt.Sprintf("👋 Вы выписаны из занятия #%d", lessonID))
	h.notifyUser(ctx, b, result.Lesson.TutorID,
		fmt.Sprintf("👋 %s выписался из занятия #%d", user.DisplayName(), lessonID))
}

// HandleScheduleLesson обрабатывает команду /schedulelesson <ID> <ГГГГ-ММ-ДД> <ЧЧ:ММ>
func (h *Handlers) HandleScheduleLesson(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	args := common.CommandArgs(update.Message.Text)
	if len(args) != 3 {
		h.sendError(ctx, b, chatID, "❌ Формат: /schedulelesson <ID занятия> <ГГГГ-ММ-ДД ЧЧ:ММ>")
		return
	}
	lessonID, err := common.ParseID(args[0])
	if err != nil {
		h.fail(ctx, b, chatID, "schedule lesson", err)
		return
	}
	at, err := common.ParseDateTime(args[1], args[2], h.location)
	if err != nil {
		h.fail(ctx, b, chatID, "schedule lesson", err)
		return
	}

	if err := h.requireLessonOwner(ctx, user, lessonID); err != nil {
		h.fail(ctx, b, chatID, "schedule lesson", err)
		return
	}

	lesson, err := common.WithRetry(ctx, func(ctx context.Context) (*model.Lesson, error) {
		return h.engine.ScheduleLesson(ctx, lessonID, at)
	})
	if err != nil {
		h.fail(ctx, b, chatID, "schedule lesson", err)
		return
	}

	text := "📅 Время занятия назначено\n\n" + common.FormatLesson(lesson, -1)
	h.sendMessage(ctx, b, chatID, text)
	h.notifyParticipants(ctx, b, lessonID, text)
}

// HandleCompleteLesson обрабатывает команду /completelesson <ID занятия>
func (h *Handlers) HandleCompleteLesson(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	lessonID, ok := h.singleID(ctx, b, update, "/completelesson <ID занятия>")
	if !ok {
		return
	}

	if err := h.requireLessonOwner(ctx, user, lessonID); err != nil {
		h.fail(ctx, b, chatID, "complete lesson", err)
		return
	}

	_, err := common.WithRetry(ctx, func(ctx context.Context) (*model.Lesson, error) {
		return h.engine.CompleteLesson(ctx, lessonID)
	})
	if err != nil {
		h.fail(ctx, b, chatID, "complete lesson", err)
		return
	}

	text := fmt.Sprintf("✔️ Занятие #%d завершено", lessonID)
	h.sendMessage(ctx, b, chatID, text)
	h.notifyParticipants(ctx, b, lessonID, text)
}

// requireLessonOwner проверяет что пользователь ведёт это занятие
func (h *Handlers) requireLessonOwner(ctx context.Context, user *model.User, lessonID int64) error {
	lesson, err := h.catalogService.GetLesson(ctx, lessonID)
	if err != nil {
		return err
	}
	if lesson == nil {
		return apperr.New(apperr.KindNotFound, "get lesson", "lesson not found")
	}
	if lesson.TutorID != user.ID {
		return common.ErrNotLessonOwner
	}
	return nil
}

func (h *Handlers) notifyParticipants(ctx context.Context, b *bot.Bot, lessonID int64, text string) {
	ids, err := h.catalogService.ListParticipants(ctx, lessonID)
	if err != nil {
		h.logger.Error("Failed to list participants", zap.Int64("lesson_id", lessonID), zap.Error(err))
		return
	}
	for _, id := range ids {
		h.notifyUser(ctx, b, id, text)
	}
}
