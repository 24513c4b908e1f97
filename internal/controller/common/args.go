package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateTimeLayout формат даты и времени в командах
const DateTimeLayout = "2006-01-02 15:04"

// Префиксы callback data inline кнопок
const (
	CallbackAccept = "accept:" // accept:<requestID>
	CallbackJoin   = "join:"   // join:<lessonID>
)

// CommandRest возвращает текст после команды.
// "/request@skillbot Go | каналы" -> "Go | каналы"
func CommandRest(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return text
	}
	idx := strings.IndexAny(text, " \t\n")
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(text[idx+1:])
}

// CommandArgs разбивает аргументы команды по пробелам
func CommandArgs(text string) []string {
	return strings.Fields(CommandRest(text))
}

// ParseID разбирает положительный идентификатор
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad id %q", ErrInvalidFormat, s)
	}
	return id, nil
}

// ParseDateTime разбирает дату и время вида "2026-11-03" "18:30"
func ParseDateTime(date, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateTimeLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad date %q %q", ErrInvalidFormat, date, clock)
	}
	return t, nil
}

// ParseCallback разбирает callback data вида "accept:123"
func ParseCallback(data string) (string, int64, error) {
	parts := strings.Split(data, ":")
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("%w: callback %q", ErrInvalidFormat, data)
	}
	id, err := ParseID(parts[1])
	if err != nil {
		return "", 0, err
	}
	return parts[0] + ":", id, nil
}

// SplitTopic делит "навык | тема" на навык и необязательную тему
func SplitTopic(rest string) (string, string) {
	skill, topic, _ := strings.Cut(rest, "|")
	return strings.TrimSpace(skill), strings.TrimSpace(topic)
}

// CommandName возвращает команду без @botname: "/join@skillbot 5" -> "/join"
func CommandName(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return ""
	}
	name, _, _ := strings.Cut(fields[0], "@")
	return name
}
