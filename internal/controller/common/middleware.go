package common

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// SenderID возвращает Telegram ID автора сообщения или нажатия кнопки
func SenderID(update *models.Update) (int64, bool) {
	switch {
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID, true
	case update.CallbackQuery != nil:
		return update.CallbackQuery.From.ID, true
	}
	return 0, false
}

// RateLimit отбрасывает обновления пользователя сверх лимита
func RateLimit(limiter *Limiter, logger *zap.Logger) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			telegramID, ok := SenderID(update)
			if !ok || limiter.Allow(telegramID) {
				next(ctx, b, update)
				return
			}

			logger.Warn("Update rate limited", zap.Int64("telegram_id", telegramID))

			if update.CallbackQuery != nil {
				AnswerCallbackAlert(ctx, b, update.CallbackQuery.ID, ErrorMessage(ErrRateLimited))
				return
			}
			_, _ = b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: update.Message.Chat.ID,
				Text:   ErrorMessage(ErrRateLimited),
			})
		}
	}
}

// AnswerCallback отвечает на callback query (без alert)
func AnswerCallback(ctx context.Context, b *bot.Bot, callbackID string, text string) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       false,
	})
}

// AnswerCallbackAlert отвечает на callback query с alert (всплывающее окно)
func AnswerCallbackAlert(ctx context.Context, b *bot.Bot, callbackID string, text string) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       true,
	})
}
