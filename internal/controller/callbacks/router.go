package callbacks

import (
	"context"

	"github.com/Freeeeeet/skillmatch/internal/controller/common"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleCallbackQuery распределяет нажатия кнопок accept:<id> и join:<id>
func (h *Handler) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	callback := update.CallbackQuery
	if callback == nil {
		return
	}

	h.logger.Info("Routing callback",
		zap.String("data", callback.Data),
		zap.Int64("telegram_id", callback.From.ID))

	prefix, id, err := common.ParseCallback(callback.Data)
	if err != nil {
		h.logger.Warn("Unknown callback", zap.String("data", callback.Data))
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	var action Action
	switch prefix {
	case common.CallbackAccept:
		action = h.acceptFn
	case common.CallbackJoin:
		action = h.joinFn
	default:
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(common.ErrInvalidFormat))
		return
	}

	user, err := h.userService.GetByTelegramID(ctx, callback.From.ID)
	if err == nil && user == nil {
		err = common.ErrUserNotFound
	}
	if err != nil {
		h.logger.Error("Failed to load user",
			zap.Int64("telegram_id", callback.From.ID),
			zap.Error(err))
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	text, err := action(ctx, b, user, id)
	if err != nil {
		h.logger.Error("Operation failed",
			zap.String("operation", prefix),
			zap.Int64("telegram_id", callback.From.ID),
			zap.Int64("id", id),
			zap.Error(err))
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	common.AnswerCallback(ctx, b, callback.ID, "✅")

	if msg := callback.Message.Message; msg != nil {
		if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: msg.Chat.ID, Text: text}); err != nil {
			h.logger.Error("Failed to send message", zap.Int64("chat_id", msg.Chat.ID), zap.Error(err))
		}
	}
}
