package handlers

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/skillmatch/internal/controller/common"
	"github.com/Freeeeeet/skillmatch/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleDeleteUser обрабатывает команду /deleteuser <ID пользователя>
func (h *Handlers) HandleDeleteUser(ctx context.Context, b *bot.Bot, update *models.Update) {
	admin, ok := h.requireAdmin(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	userID, ok := h.singleID(ctx, b, update, "/deleteuser <ID пользователя>")
	if !ok {
		return
	}

	_, err := common.WithRetry(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, h.engine.DeleteUser(ctx, userID)
	})
	if err != nil {
		h.fail(ctx, b, chatID, "delete user", err)
		return
	}

	h.logger.Info("User deleted by admin",
		zap.Int64("admin_id", admin.ID),
		zap.Int64("user_id", userID),
	)
	h.sendMessage(ctx, b, chatID, fmt.Sprintf("🗑 Пользователь #%d удалён", userID))
}

// HandleSetRole обрабатывает команду /setrole <ID пользователя> <роль>
func (h *Handlers) HandleSetRole(ctx context.Context, b *bot.Bot, update *models.Update) {
	admin, ok := h.requireAdmin(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	args := common.CommandArgs(update.Message.Text)
	if len(args) != 2 {
		h.sendError(ctx, b, chatID, "❌ Формат: /setrole <ID пользователя> <admin|tutor|learner>")
		return
	}
	userID, err := common.ParseID(args[0])
	if err != nil {
		h.fail(ctx, b, chatID, "set role", err)
		return
	}
	role, ok := model.ParseRole(args[1])
	if !ok {
		h.sendError(ctx, b, chatID, "❌ Роль: admin, tutor или learner")
		return
	}

	user, err := common.WithRetry(ctx, func(ctx context.Context) (*model.User, error) {
		return h.engine.ChangeRole(ctx, userID, role)
	})
	if err != nil {
		h.fail(ctx, b, chatID, "set role", err)
		return
	}

	h.logger.Info("User role set by admin",
		zap.Int64("admin_id", admin.ID),
		zap.Int64("user_id", userID),
		zap.String("role", string(role)),
	)
	h.sendMessage(ctx, b, chatID, fmt.Sprintf("✅ Роль пользователя %s (#%d): %s", user.DisplayName(), user.ID, user.Role))
	h.sendMessage(ctx, b, user.TelegramID, fmt.Sprintf("ℹ️ Ваша роль изменена: %s", user.Role))
}
