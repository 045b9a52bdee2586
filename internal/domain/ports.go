package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DishCatalog описывает read-only доступ к каталогу блюд.
type DishCatalog interface {
	// Get возвращает блюдо по идентификатору или ErrDishNotFound.
	Get(id string) (Dish, error)
	// List возвращает все блюда каталога.
	List() ([]Dish, error)
}

// OrderEventType определяет тип события заказа.
type OrderEventType string

const (
	OrderEventCreated       OrderEventType = "order.created"
	OrderEventStatusChanged OrderEventType = "order.status_changed"
	OrderEventDishesChanged OrderEventType = "order.dishes_changed"
	OrderEventDeleted       OrderEventType = "order.deleted"
)

// OrderEvent — уведомление об изменении заказа для внешних потребителей.
type OrderEvent struct {
	ID          string          `json:"id"`
	Type        OrderEventType  `json:"type"`
	OrderID     string          `json:"order_id"`
	TableNumber int             `json:"table_number"`
	Status      OrderStatus     `json:"status"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// EventPublisher публикует события заказов. Публикация — best-effort:
// её сбой не должен откатывать уже зафиксированную мутацию.
type EventPublisher interface {
	PublishOrderEvent(event OrderEvent) error
}
