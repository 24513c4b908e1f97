package controller

import (
	"context"
	"time"

	"github.com/Freeeeeet/skillmatch/internal/controller/callbacks"
	"github.com/Freeeeeet/skillmatch/internal/controller/common"
	"github.com/Freeeeeet/skillmatch/internal/controller/handlers"
	"github.com/Freeeeeet/skillmatch/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type BotController struct {
	bot             *bot.Bot
	handlers        *handlers.Handlers
	callbackHandler *callbacks.Handler
	logger          *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	userService *service.UserService,
	catalogService *service.CatalogService,
	engine *service.Engine,
	logger *zap.Logger,
) *BotController {
	// Создаём обработчики команд
	cmdHandlers := handlers.NewHandlers(
		userService,
		catalogService,
		engine,
		time.Local,
		logger,
	)

	// Кнопки вызывают те же действия, что и команды
	callbackHandler := callbacks.NewHandler(
		userService,
		cmdHandlers.AcceptRequest,
		cmdHandlers.JoinLesson,
		logger,
	)

	return &BotController{
		bot:             botInstance,
		handlers:        cmdHandlers,
		callbackHandler: callbackHandler,
		logger:          logger,
	}
}

// Middlewares возвращает middleware, которые нужно передать в bot.New
func Middlewares(limiter *common.Limiter, logger *zap.Logger) []bot.Middleware {
	return []bot.Middleware{common.RateLimit(limiter, logger)}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	commands := map[string]bot.HandlerFunc{
		"/start":          c.handlers.HandleStart,
		"/help":           c.handlers.HandleHelp,
		"/request":        c.handlers.HandleRequest,
		"/privaterequest": c.handlers.HandlePrivateRequest,
		"/requests":       c.handlers.HandleRequests,
		"/accept":         c.handlers.HandleAccept,
		"/decline":        c.handlers.HandleDecline,
		"/cancelrequest":  c.handlers.HandleCancelRequest,
		"/schedule":       c.handlers.HandleSchedule,
		"/complete":       c.handlers.HandleComplete,
		"/lesson":         c.handlers.HandleLesson,
		"/lessons":        c.handlers.HandleLessons,
		"/join":           c.handlers.HandleJoin,
		"/leave":          c.handlers.HandleLeave,
		"/schedulelesson": c.handlers.HandleScheduleLesson,
		"/completelesson": c.handlers.HandleCompleteLesson,
		"/deleteuser":     c.handlers.HandleDeleteUser,
		"/setrole":        c.handlers.HandleSetRole,
	}

	// Команды сопоставляются по первому слову, поэтому /request не перехватывает /requests
	for command, handler := range commands {
		c.bot.RegisterHandlerMatchFunc(commandMatcher(command), handler)
	}

	// Обработчик нажатий на inline кнопки
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, common.CallbackAccept, bot.MatchTypePrefix, c.callbackHandler.HandleCallbackQuery)
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, common.CallbackJoin, bot.MatchTypePrefix, c.callbackHandler.HandleCallbackQuery)

	// Устанавливаем меню команд
	return c.setCommands(ctx)
}

// commandMatcher совпадает с сообщением, первое слово которого команда (с @botname или без)
func commandMatcher(command string) bot.MatchFunc {
	return func(update *models.Update) bool {
		if update.Message == nil {
			return false
		}
		return common.CommandName(update.Message.Text) == command
	}
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Начать работу с ботом"},
		{Command: "help", Description: "❓ Справка по командам"},
		{Command: "requests", Description: "📋 Свободные запросы"},
		{Command: "request", Description: "📝 Опубликовать запрос"},
		{Command: "lessons", Description: "👥 Групповые занятия"},
		{Command: "lesson", Description: "➕ Создать групповое занятие"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start запускает бота и блокируется до отмены ctx
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
	return nil
}
