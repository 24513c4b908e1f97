// Package apperr содержит закрытый набор типизированных ошибок движка.
// Вызывающий код различает ошибки по Kind, а не по тексту сообщения.
package apperr

import (
	"errors"
	"fmt"
)

// Kind вид ошибки
type Kind uint8

const (
	KindUnknown Kind = iota
	KindNotFound
	KindAlreadyAccepted
	KindAlreadyJoined
	KindSelfAcceptanceForbidden
	KindForbidden
	KindCapacityExceeded
	KindInvalidStateTransition
	KindLastAdminProtection
	KindConcurrencyConflict
)

var kindNames = map[Kind]string{
	KindUnknown:                 "unknown",
	KindNotFound:                "not found",
	KindAlreadyAccepted:         "already accepted",
	KindAlreadyJoined:           "already joined",
	KindSelfAcceptanceForbidden: "self acceptance forbidden",
	KindForbidden:               "forbidden",
	KindCapacityExceeded:        "capacity exceeded",
	KindInvalidStateTransition:  "invalid state transition",
	KindLastAdminProtection:     "last admin protection",
	KindConcurrencyConflict:     "concurrency conflict",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Error ошибка движка с видом, операцией и необязательной причиной
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Msg != "" {
		msg = e.Msg
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is сравнивает ошибки по виду, поэтому errors.Is(err, ErrNotFound) работает
// для любой ошибки вида KindNotFound
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Сентинелы для errors.Is
var (
	ErrNotFound                = &Error{Kind: KindNotFound}
	ErrAlreadyAccepted         = &Error{Kind: KindAlreadyAccepted}
	ErrAlreadyJoined           = &Error{Kind: KindAlreadyJoined}
	ErrSelfAcceptanceForbidden = &Error{Kind: KindSelfAcceptanceForbidden}
	ErrForbidden               = &Error{Kind: KindForbidden}
	ErrCapacityExceeded        = &Error{Kind: KindCapacityExceeded}
	ErrInvalidStateTransition  = &Error{Kind: KindInvalidStateTransition}
	ErrLastAdminProtection     = &Error{Kind: KindLastAdminProtection}
	ErrConcurrencyConflict     = &Error{Kind: KindConcurrencyConflict}
)

// New создаёт ошибку заданного вида
func New(kind Kind, op, msg string) error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

// Wrap создаёт ошибку заданного вида с причиной
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf возвращает вид первой ошибки движка в цепочке
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Retryable сообщает, имеет ли смысл автоматически повторить операцию
func Retryable(err error) bool {
	return KindOf(err) == KindConcurrencyConflict
}
