package model

import (
	"github.com/juju/errors"
)

// Виды ошибок протокола и сеанса. Конкретный вид ошибки сохраняется как
// causa через juju/errors и проверяется функциями Is* ниже
var (
	// ErrMalformedField числовое поле пакета не распозналось
	ErrMalformedField = errors.New("некорректное числовое поле пакета")
	// ErrWrongArity количество полей не соответствует типу пакета
	ErrWrongArity = errors.New("некорректное количество полей пакета")
	// ErrUnknownPacketType неизвестный тип пакета (первое поле строки)
	ErrUnknownPacketType = errors.New("неизвестный тип пакета")
	// ErrUnknownMeasurementKind неизвестный код типа замера в пакете данных
	ErrUnknownMeasurementKind = errors.New("неизвестный код типа замера")
	// ErrInvalidCommandParameters параметры командного пакета нарушают инварианты
	ErrInvalidCommandParameters = errors.New("некорректные параметры командного пакета")
	// ErrInvalidHeader заголовок файла лога не совпал с эталонным
	ErrInvalidHeader = errors.New("некорректный заголовок файла лога")
	// ErrTransport ошибка обмена с платой
	ErrTransport = errors.New("ошибка транспорта")
	// ErrAborted сеанс прерван (отказ оператора или отмена)
	ErrAborted = errors.New("сеанс прерван")
)

// IsMalformedField проверяет, что причина ошибки — некорректное числовое поле
func IsMalformedField(err error) bool {
	return errors.Cause(err) == ErrMalformedField
}

// IsWrongArity проверяет, что причина ошибки — некорректное количество полей
func IsWrongArity(err error) bool {
	return errors.Cause(err) == ErrWrongArity
}

// IsUnknownPacketType проверяет, что причина ошибки — неизвестный тип пакета
func IsUnknownPacketType(err error) bool {
	return errors.Cause(err) == ErrUnknownPacketType
}

// IsUnknownMeasurementKind проверяет, что причина ошибки — неизвестный код замера
func IsUnknownMeasurementKind(err error) bool {
	return errors.Cause(err) == ErrUnknownMeasurementKind
}

// IsInvalidCommandParameters проверяет, что причина ошибки — нарушение инвариантов команды
func IsInvalidCommandParameters(err error) bool {
	return errors.Cause(err) == ErrInvalidCommandParameters
}

// IsInvalidHeader проверяет, что причина ошибки — некорректный заголовок файла
func IsInvalidHeader(err error) bool {
	return errors.Cause(err) == ErrInvalidHeader
}

// IsTransport проверяет, что причина ошибки — ошибка транспорта
func IsTransport(err error) bool {
	return errors.Cause(err) == ErrTransport
}

// IsAborted проверяет, что причина ошибки — прерывание сеанса
func IsAborted(err error) bool {
	return errors.Cause(err) == ErrAborted
}
