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
)

// HandleRequest обрабатывает команду /request <навык> [| тема]
func (h *Handlers) HandleRequest(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	skill, topic := common.SplitTopic(common.CommandRest(update.Message.Text))
	if skill == "" {
		h.sendError(ctx, b, chatID, "❌ Укажите навык: /request <навык> [| тема]")
		return
	}

	request, err := h.catalogService.CreateRequest(ctx, service.NewRequest{
		LearnerID: user.ID,
		SkillName: skill,
		Topic:     topic,
	})
	if err != nil {
		h.fail(ctx, b, chatID, "create request", err)
		return
	}

	h.sendMessage(ctx, b, chatID, "✅ Запрос опубликован\n\n"+common.FormatRequest(request))
}

// HandlePrivateRequest обрабатывает команду /privaterequest <ID репетитора> <навык>
func (h *Handlers) HandlePrivateRequest(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	args := common.CommandArgs(update.Message.Text)
	if len(args) < 2 {
		h.sendError(ctx, b, chatID, "❌ Формат: /privaterequest <ID репетитора> <навык>")
		return
	}
	tutorID, err := common.ParseID(args[0])
	if err != nil {
		h.fail(ctx, b, chatID, "create private request", err)
		return
	}
	skill, topic := common.SplitTopic(strings.Join(args[1:], " "))

	request, err := h.catalogService.CreateRequest(ctx, service.NewRequest{
		LearnerID:        user.ID,
		SkillName:        skill,
		Topic:            topic,
		PreferredTutorID: &tutorID,
	})
	if err != nil {
		h.fail(ctx, b, chatID, "create private request", err)
		return
	}

	h.sendMessage(ctx, b, chatID, "✅ Запрос отправлен репетитору\n\n"+common.FormatRequest(request))

	markup := keyboard.NewBuilder().
		Row(keyboard.IDButton("🤝 Взять запрос", common.CallbackAccept, request.ID)).
		Build()
	tutor, err := h.userService.GetByID(ctx, tutorID)
	if err == nil && tutor != nil {
		h.sendWithKeyboard(ctx, b, tutor.TelegramID,
			fmt.Sprintf("📨 %s просит вас о занятии\n\n%s\n\nОтклонить: /decline %d",
				user.DisplayName(), common.FormatRequest(request), request.ID),
			markup)
	}
}

// HandleRequests обрабатывает команду /requests
func (h *Handlers) HandleRequests(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	requests, err := h.catalogService.ListOpenRequests(ctx, user.ID)
	if err != nil {
		h.fail(ctx, b, chatID, "list requests", err)
		return
	}

	if len(requests) == 0 {
		h.sendMessage(ctx, b, chatID, "📭 Свободных запросов пока нет")
		return
	}

	var sb strings.Builder
	sb.WriteString("📋 Свободные запросы:\n")
	kb := keyboard.NewBuilder()
	for _, r := range requests {
		sb.WriteString("\n" + common.FormatRequest(r) + "\n")
		kb.Row(keyboard.IDButton(fmt.Sprintf("🤝 Взять #%d", r.ID), common.CallbackAccept, r.ID))
	}

	h.sendWithKeyboard(ctx, b, chatID, sb.String(), kb.Build())
}

// HandleAccept обрабатывает команду /accept <ID запроса>
func (h *Handlers) HandleAccept(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	requestID, ok := h.singleID(ctx, b, update, "/accept <ID запроса>")
	if !ok {
		return
	}

	text, err := h.AcceptRequest(ctx, b, user, requestID)
	if err != nil {
		h.fail(ctx, b, chatID, "accept request", err)
		return
	}
	h.sendMessage(ctx, b, chatID, text)
}

// AcceptRequest закрепляет запрос за пользователем и уведомляет ученика.
// Используется командой /accept и кнопкой accept:<id>.
func (h *Handlers) AcceptRequest(ctx context.Context, b *bot.Bot, user *model.User, requestID int64) (string, error) {
	acceptance, err := common.WithRetry(ctx, func(ctx context.Context) (*model.AcceptedRequest, error) {
		return h.engine.AcceptRequest(ctx, requestID, user.ID)
	})
	if err != nil {
		return "", err
	}

	if acceptance.Request != nil {
		h.notifyUser(ctx, b, acceptance.Request.LearnerID,
			fmt.Sprintf("🎉 %s взял ваш запрос #%d (%s)\n\nДоговорённость #%d. Назначить встречу: /schedule %d <ГГГГ-ММ-ДД ЧЧ:ММ> <online|in_person>",
				user.DisplayName(), requestID, acceptance.Request.SkillName, acceptance.ID, acceptance.ID))
	}

	return fmt.Sprintf("✅ Запрос #%d закреплён за вами\n\n%s", requestID, common.FormatAcceptance(acceptance)), nil
}

// HandleDecline обрабатывает команду /decline <ID запроса>
func (h *Handlers) HandleDecline(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	requestID, ok := h.singleID(ctx, b, update, "/decline <ID запроса>")
	if !ok {
		return
	}

	request, err := common.WithRetry(ctx, func(ctx context.Context) (*model.Request, error) {
		return h.engine.DeclineDirected(ctx, requestID, user.ID)
	})
	if err != nil {
		h.fail(ctx, b, chatID, "decline request", err)
		return
	}

	h.sendMessage(ctx, b, chatID, fmt.Sprintf("🚫 Запрос #%d отклонён", requestID))
	h.notifyUser(ctx, b, request.LearnerID,
		fmt.Sprintf("😔 %s отклонил ваш запрос #%d. Опубликуйте новый: /request", user.DisplayName(), requestID))
}

// HandleCancelRequest обрабатывает команду /cancelrequest <ID запроса>
func (h *Handlers) HandleCancelRequest(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	requestID, ok := h.singleID(ctx, b, update, "/cancelrequest <ID запроса>")
	if !ok {
		return
	}

	_, err := common.WithRetry(ctx, func(ctx context.Context) (*model.Request, error) {
		return h.engine.CancelRequest(ctx, requestID, user.ID)
	})
	if err != nil {
		h.fail(ctx, b, chatID, "cancel request", err)
		return
	}

	h.sendMessage(ctx, b, chatID, fmt.Sprintf("✅ Запрос #%d отменён", requestID))
}

// HandleSchedule обрабатывает команду /schedule <ID> <ГГГГ-ММ-ДД> <ЧЧ:ММ> <online|in_person> [ссылка]
func (h *Handlers) HandleSchedule(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	args := common.CommandArgs(update.Message.Text)
	if len(args) < 4 {
		h.sendError(ctx, b, chatID, "❌ Формат: /schedule <ID договорённости> <ГГГГ-ММ-ДД ЧЧ:ММ> <online|in_person> [ссылка или место]")
		return
	}

	acceptedID, err := common.ParseID(args[0])
	if err != nil {
		h.fail(ctx, b, chatID, "schedule meeting", err)
		return
	}
	date, err := common.ParseDateTime(args[1], args[2], h.location)
	if err != nil {
		h.fail(ctx, b, chatID, "schedule meeting", err)
		return
	}
	meetingType, ok := model.ParseMeetingType(args[3])
	if !ok {
		h.sendError(ctx, b, chatID, "❌ Тип встречи: online или in_person")
		return
	}
	link := strings.Join(args[4:], " ")

	match, err := h.requireMatchParty(ctx, user, acceptedID)
	if err != nil {
		h.fail(ctx, b, chatID, "schedule meeting", err)
		return
	}

	scheduled, err := common.WithRetry(ctx, func(ctx context.Context) (*model.AcceptedRequest, error) {
		return h.engine.ScheduleMeeting(ctx, acceptedID, date, meetingType, link)
	})
	if err != nil {
		h.fail(ctx, b, chatID, "schedule meeting", err)
		return
	}

	text := "📅 Встреча назначена\n\n" + common.FormatAcceptance(scheduled)
	h.sendMessage(ctx, b, chatID, text)
	h.notifyUser(ctx, b, counterpart(match, user.ID), text)
}

// HandleComplete обрабатывает команду /complete <ID договорённости>
func (h *Handlers) HandleComplete(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	acceptedID, ok := h.singleID(ctx, b, update, "/complete <ID договорённости>")
	if !ok {
		return
	}

	match, err := h.requireMatchParty(ctx, user, acceptedID)
	if err != nil {
		h.fail(ctx, b, chatID, "complete match", err)
		return
	}

	_, err = common.WithRetry(ctx, func(ctx context.Context) (*model.AcceptedRequest, error) {
		return h.engine.Complete(ctx, acceptedID)
	})
	if err != nil {
		h.fail(ctx, b, chatID, "complete match", err)
		return
	}

	text := fmt.Sprintf("✔️ Договорённость #%d завершена", acceptedID)
	h.sendMessage(ctx, b, chatID, text)
	h.notifyUser(ctx, b, counterpart(match, user.ID), text)
}

// requireMatchParty проверяет что пользователь ученик или исполнитель договорённости
func (h *Handlers) requireMatchParty(ctx context.Context, user *model.User, acceptedID int64) (*model.AcceptedRequest, error) {
	match, err := h.catalogService.GetAcceptance(ctx, acceptedID)
	if err != nil {
		return nil, err
	}
	if match == nil || match.Request == nil {
		return nil, apperr.New(apperr.KindNotFound, "get acceptance", "acceptance not found")
	}
	if match.AcceptorID != user.ID && match.Request.LearnerID != user.ID {
		return nil, common.ErrNotMatchParty
	}
	return match, nil
}

// counterpart возвращает вторую сторону договорённости
func counterpart(match *model.AcceptedRequest, userID int64) int64 {
	if match.AcceptorID == userID {
		return match.Request.LearnerID
	}
	return match.AcceptorID
}

// singleID разбирает команду с единственным аргументом-идентификатором
func (h *Handlers) singleID(ctx context.Context, b *bot.Bot, update *models.Update, usage string) (int64, bool) {
	args := common.CommandArgs(update.Message.Text)
	if len(args) != 1 {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Формат: "+usage)
		return 0, false
	}

	id, err := common.ParseID(args[0])
	if err != nil {
		h.sendError(ctx, b, update.Message.Chat.ID, common.ErrorMessage(err))
		return 0, false
	}
	return id, true
}
