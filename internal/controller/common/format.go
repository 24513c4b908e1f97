package common

import (
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/skillmatch/internal/model"
)

// StatusDisplay отображение статуса
type StatusDisplay struct {
	Emoji string
	Text  string
}

func (d StatusDisplay) String() string {
	return d.Emoji + " " + d.Text
}

var unknownStatus = StatusDisplay{"❓", "Неизвестно"}

// RequestStatusDisplay возвращает emoji и текст для статуса запроса
func RequestStatusDisplay(status model.RequestStatus) StatusDisplay {
	displays := map[model.RequestStatus]StatusDisplay{
		model.RequestStatusPending:   {"⏳", "Ожидает"},
		model.RequestStatusScheduled: {"📅", "Встреча назначена"},
		model.RequestStatusCompleted: {"✔️", "Завершён"},
		model.RequestStatusCancelled: {"❌", "Отменён"},
	}
	if display, ok := displays[status]; ok {
		return display
	}
	return unknownStatus
}

// AcceptanceStatusDisplay возвращает emoji и текст для статуса записи реестра
func AcceptanceStatusDisplay(status model.AcceptanceStatus) StatusDisplay {
	displays := map[model.AcceptanceStatus]StatusDisplay{
		model.AcceptanceStatusAccepted:  {"🤝", "Принят"},
		model.AcceptanceStatusScheduled: {"📅", "Встреча назначена"},
		model.AcceptanceStatusCompleted: {"✔️", "Завершён"},
	}
	if display, ok := displays[status]; ok {
		return display
	}
	return unknownStatus
}

// LessonStatusDisplay возвращает emoji и текст для статуса занятия
func LessonStatusDisplay(status model.LessonStatus) StatusDisplay {
	displays := map[model.LessonStatus]StatusDisplay{
		model.LessonStatusOpen:      {"🟢", "Набор открыт"},
		model.LessonStatusClosed:    {"🔴", "Мест нет"},
		model.LessonStatusScheduled: {"📅", "Назначено"},
		model.LessonStatusCompleted: {"✔️", "Завершено"},
	}
	if display, ok := displays[status]; ok {
		return display
	}
	return unknownStatus
}

// FormatDateTime форматирует дату и время
func FormatDateTime(t time.Time) string {
	return t.Format("02.01.2006 15:04")
}

// PluralizeParticipants возвращает правильное склонение слова "участник"
func PluralizeParticipants(count int) string {
	if count%10 == 1 && count%100 != 11 {
		return "участник"
	}
	if count%10 >= 2 && count%10 <= 4 && (count%100 < 10 || count%100 >= 20) {
		return "участника"
	}
	return "участников"
}

// FormatRequest форматирует запрос для списка
func FormatRequest(r *model.Request) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📝 Запрос #%d: %s", r.ID, r.SkillName)
	if r.Topic != nil {
		fmt.Fprintf(&sb, " (%s)", *r.Topic)
	}
	if r.IsPrivate {
		sb.WriteString(" 🔒")
	}
	fmt.Fprintf(&sb, "\n%s", RequestStatusDisplay(r.Status))
	return sb.String()
}

// FormatAcceptance форматирует договорённость о встрече
func FormatAcceptance(a *model.AcceptedRequest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🤝 Договорённость #%d по запросу #%d\n", a.ID, a.RequestID)
	fmt.Fprintf(&sb, "📊 Статус: %s", AcceptanceStatusDisplay(a.Status))
	if a.ScheduleDate != nil {
		fmt.Fprintf(&sb, "\n🗓 Когда: %s", FormatDateTime(*a.ScheduleDate))
	}
	if a.MeetingType != nil {
		kind := "онлайн"
		if *a.MeetingType == model.MeetingTypeInPerson {
			kind = "очно"
		}
		fmt.Fprintf(&sb, "\n📍 Формат: %s", kind)
	}
	if a.MeetingLink != nil {
		fmt.Fprintf(&sb, "\n🔗 %s", *a.MeetingLink)
	}
	return sb.String()
}

// FormatLesson форматирует групповое занятие. participants < 0 означает "неизвестно".
func FormatLesson(l *model.Lesson, participants int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "👥 Занятие #%d: %s\n", l.ID, l.Title)
	if participants >= 0 {
		fmt.Fprintf(&sb, "Записано: %d из %d\n", participants, l.MaxParticipants)
	} else {
		fmt.Fprintf(&sb, "Мест: %d\n", l.MaxParticipants)
	}
	sb.WriteString(LessonStatusDisplay(l.Status).String())
	if l.ScheduledAt != nil {
		fmt.Fprintf(&sb, "\n🗓 %s", FormatDateTime(*l.ScheduledAt))
	}
	return sb.String()
}
