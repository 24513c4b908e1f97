package handlers

import (
	"time"

	"github.com/Freeeeeet/skillmatch/internal/service"
	"go.uber.org/zap"
)

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	userService    *service.UserService
	catalogService *service.CatalogService
	engine         *service.Engine
	location       *time.Location // часовой пояс дат в командах
	logger         *zap.Logger
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(
	userService *service.UserService,
	catalogService *service.CatalogService,
	engine *service.Engine,
	location *time.Location,
	logger *zap.Logger,
) *Handlers {
	if location == nil {
		location = time.UTC
	}
	return &Handlers{
		userService:    userService,
		catalogService: catalogService,
		engine:         engine,
		location:       location,
		logger:         logger,
	}
}
