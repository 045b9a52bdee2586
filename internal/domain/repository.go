package domain

import "github.com/shopspring/decimal"

// OrderRepository описывает требования к хранилищу заказов.
// Методы с множественными записями (Create, ReplaceLines, Delete)
// обязаны выполняться атомарно: либо фиксируются все строки, либо ни одной.
type OrderRepository interface {
	// Create сохраняет новый заказ вместе с позициями, назначая идентификаторы.
	Create(order Order) (Order, error)
	// Get возвращает заказ по идентификатору или SearchError, если его нет.
	Get(id string) (Order, error)
	// GetUniqueByFilters возвращает единственный заказ по набору фильтров.
	// Ноль или больше одного совпадения — SearchError с этим набором.
	GetUniqueByFilters(filters Filters) (Order, error)
	// ListByFilters возвращает заказы по фильтру, отсортированные по id
	// по возрастанию. Пустой результат — пустой срез, не ошибка.
	ListByFilters(filters Filters) ([]Order, error)
	// ReplaceLines атомарно заменяет состав заказа новым набором позиций
	// и пересчитывает итоговую сумму. При ошибке прежний состав не меняется.
	ReplaceLines(orderID string, lines []OrderLine) (Order, error)
	// UpdateStatus сохраняет новый статус заказа.
	UpdateStatus(orderID string, status OrderStatus) (Order, error)
	// Delete удаляет заказ каскадно вместе с позициями и возвращает
	// число удалённых записей (заказ + позиции). SearchError, если заказа нет.
	Delete(id string) (int, error)
	// SumTotalPriceByStatus суммирует total_price заказов в данном статусе.
	// Отсутствие совпадений — ноль, не ошибка.
	SumTotalPriceByStatus(status OrderStatus) (decimal.Decimal, error)
}
