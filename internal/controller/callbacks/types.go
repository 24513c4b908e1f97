package callbacks

import (
	"context"

	"github.com/Freeeeeet/skillmatch/internal/model"
	"github.com/Freeeeeet/skillmatch/internal/service"
	"github.com/go-telegram/bot"
	"go.uber.org/zap"
)

// Action действие по нажатию кнопки. Возвращает текст ответа пользователю.
type Action func(ctx context.Context, b *bot.Bot, user *model.User, id int64) (string, error)

// Handler обрабатывает нажатия inline кнопок
type Handler struct {
	userService *service.UserService
	acceptFn    Action
	joinFn      Action
	logger      *zap.Logger
}

// NewHandler создаёт новый обработчик callbacks с зависимостями
func NewHandler(
	userService *service.UserService,
	acceptFn Action,
	joinFn Action,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		userService: userService,
		acceptFn:    acceptFn,
		joinFn:      joinFn,
		logger:      logger,
	}
}
