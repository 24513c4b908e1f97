package common

import (
	"errors"

	"github.com/Freeeeeet/skillmatch/internal/apperr"
	"github.com/Freeeeeet/skillmatch/internal/service"
)

// Ошибки транспортного слоя
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrNotAnAdmin     = errors.New("user is not an admin")
	ErrNotMatchParty  = errors.New("user is neither learner nor acceptor of this match")
	ErrNotLessonOwner = errors.New("user is not the tutor of this lesson")
	ErrNoMessage      = errors.New("no message in callback")
	ErrInvalidFormat  = errors.New("invalid command format")
	ErrRateLimited    = errors.New("too many requests")
)

// ErrorMessage возвращает пользовательское сообщение для ошибки
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return "❌ Пользователь не найден. Используйте /start"
	case errors.Is(err, ErrNotAnAdmin):
		return "❌ Эта команда доступна только администраторам"
	case errors.Is(err, ErrNotMatchParty):
		return "❌ Вы не участвуете в этой договорённости"
	case errors.Is(err, ErrNotLessonOwner):
		return "❌ Это занятие ведёт другой репетитор"
	case errors.Is(err, ErrNoMessage):
		return "❌ Ошибка обработки сообщения"
	case errors.Is(err, ErrInvalidFormat):
		return "❌ Неверный формат команды. Смотрите /help"
	case errors.Is(err, ErrRateLimited):
		return "⏳ Слишком много запросов, подождите немного"
	case errors.Is(err, service.ErrInvalidInput):
		return "❌ Некорректные данные: " + err.Error()
	}

	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return "❌ Не найдено"
	case apperr.KindAlreadyAccepted:
		return "❌ Запрос уже принят другим репетитором"
	case apperr.KindAlreadyJoined:
		return "ℹ️ Вы уже записаны на это занятие"
	case apperr.KindSelfAcceptanceForbidden:
		return "❌ Нельзя принять собственный запрос или занятие"
	case apperr.KindForbidden:
		return "🚫 Недостаточно прав для этого действия"
	case apperr.KindCapacityExceeded:
		return "😔 Все места на занятии уже заняты"
	case apperr.KindInvalidStateTransition:
		return "❌ Действие недоступно в текущем статусе"
	case apperr.KindLastAdminProtection:
		return "🛡 Нельзя удалить или понизить последнего администратора"
	case apperr.KindConcurrencyConflict:
		return "⚠️ Данные изменились одновременно с вашим запросом. Попробуйте ещё раз"
	default:
		return "❌ Произошла ошибка. Попробуйте позже."
	}
}
