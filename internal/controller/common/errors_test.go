package common

import (
	"fmt"
	"testing"

	"github.com/Freeeeeet/skillmatch/internal/apperr"
	"github.com/Freeeeeet/skillmatch/internal/service"
	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"capacity", apperr.New(apperr.KindCapacityExceeded, "accept lesson", "lesson is full (2/2)"), "😔 Все места на занятии уже заняты"},
		{"already accepted", fmt.Errorf("create acceptance: %w", apperr.New(apperr.KindAlreadyAccepted, "", "")), "❌ Запрос уже принят другим репетитором"},
		{"last admin", apperr.New(apperr.KindLastAdminProtection, "delete user", ""), "🛡 Нельзя удалить или понизить последнего администратора"},
		{"conflict", apperr.New(apperr.KindConcurrencyConflict, "commit", ""), "⚠️ Данные изменились одновременно с вашим запросом. Попробуйте ещё раз"},
		{"transport", ErrNotAnAdmin, "❌ Эта команда доступна только администраторам"},
		{"invalid input", fmt.Errorf("%w: title is required", service.ErrInvalidInput), "❌ Некорректные данные: invalid input: title is required"},
		{"unknown", fmt.Errorf("dial tcp: refused"), "❌ Произошла ошибка. Попробуйте позже."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorMessage(tt.err))
		})
	}
}
