package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrDishNotFound возвращается каталогом, когда блюдо с таким id не существует.
// Сервис заказов переводит его в ConstraintError с указанием проблемного id.
var ErrDishNotFound = errors.New("dish not found")

// SearchError сигнализирует, что поиск, требующий ровно одного совпадения,
// нашёл ноль или больше одного. Всегда несёт использованный набор фильтров.
type SearchError struct {
	Message string
	Filters Filters
}

func (e *SearchError) Error() string {
	if len(e.Filters) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s %s", e.Message, formatFields(map[string]any(e.Filters)))
}

// NewNotFoundError создаёт SearchError для пустого результата поиска.
func NewNotFoundError(filters Filters) *SearchError {
	return &SearchError{
		Message: "No order found with the provided filters.",
		Filters: filters,
	}
}

// NewMultipleFoundError создаёт SearchError для неоднозначного результата.
func NewMultipleFoundError(filters Filters) *SearchError {
	return &SearchError{
		Message: "Multiple objects found with fields.",
		Filters: filters,
	}
}

// IsSearchError проверяет, относится ли ошибка к SearchError.
func IsSearchError(err error) bool {
	var target *SearchError
	return errors.As(err, &target)
}

// ConstraintError сигнализирует нарушение доменного инварианта:
// недопустимый статус, некорректный номер стола, несуществующее блюдо
// или испорченная позиция состава. Всегда несёт проблемные поля.
type ConstraintError struct {
	Message string
	Fields  map[string]any
}

func (e *ConstraintError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s %s", e.Message, formatFields(e.Fields))
}

// IsConstraintError проверяет, относится ли ошибка к ConstraintError.
func IsConstraintError(err error) bool {
	var target *ConstraintError
	return errors.As(err, &target)
}

// formatFields даёт детерминированное представление набора полей для сообщений.
func formatFields(fields map[string]any) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
