package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const helpText = "📚 Справка по командам:\n\n" +
	"Запросы:\n" +
	"/request <навык> [| тема] - Опубликовать запрос\n" +
	"/privaterequest <ID репетитора> <навык> - Запрос конкретному репетитору\n" +
	"/requests - Свободные запросы\n" +
	"/accept <ID запроса> - Взять запрос\n" +
	"/decline <ID запроса> - Отклонить адресованный вам запрос\n" +
	"/cancelrequest <ID запроса> - Отменить свой запрос\n" +
	"/schedule <ID договорённости> <ГГГГ-ММ-ДД ЧЧ:ММ> <online|in_person> [ссылка] - Назначить встречу\n" +
	"/complete <ID договорённости> - Завершить\n\n" +
	"Групповые занятия:\n" +
	"/lesson <мест> <название> - Создать занятие\n" +
	"/lessons - Занятия со свободными местами\n" +
	"/join <ID занятия> - Записаться\n" +
	"/leave <ID занятия> - Выписаться\n" +
	"/schedulelesson <ID занятия> <ГГГГ-ММ-ДД ЧЧ:ММ> - Назначить время\n" +
	"/completelesson <ID занятия> - Завершить занятие\n\n" +
	"Для администраторов:\n" +
	"/deleteuser <ID пользователя> - Удалить пользователя\n" +
	"/setrole <ID пользователя> <admin|tutor|learner> - Сменить роль"

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	from := update.Message.From

	// Регистрируем пользователя
	user, err := h.userService.RegisterUser(
		ctx,
		from.ID,
		from.Username,
		from.FirstName,
		from.LastName,
		from.LanguageCode,
	)
	if err != nil {
		h.logger.Error("Failed to register user", zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Произошла ошибка при регистрации. Попробуйте позже.")
		return
	}

	welcomeText := fmt.Sprintf(
		"👋 Привет, %s!\n\n"+
			"SkillMatch помогает найти репетитора или группу для занятий.\n"+
			"Ваш ID: %d, роль: %s\n\n"+
			"/requests - Свободные запросы\n"+
			"/lessons - Групповые занятия\n"+
			"/help - Справка",
		user.DisplayName(),
		user.ID,
		user.Role,
	)

	h.sendMessage(ctx, b, update.Message.Chat.ID, welcomeText)
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText)
}
