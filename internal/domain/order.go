package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus описывает жизненный цикл заказа в кафе.
type OrderStatus string

const (
	// OrderStatusPending — заказ принят, блюда ещё готовятся.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusReady — заказ приготовлен и ожидает оплаты.
	OrderStatusReady OrderStatus = "ready"
	// OrderStatusPaid — заказ оплачен; участвует в расчёте выручки.
	OrderStatusPaid OrderStatus = "paid"
)

// Переходы между статусами намеренно не ограничены направлением:
// проверяется только принадлежность множеству допустимых значений.
var orderStatuses = map[OrderStatus]struct{}{
	OrderStatusPending: {},
	OrderStatusReady:   {},
	OrderStatusPaid:    {},
}

// Valid сообщает, входит ли статус в множество допустимых значений.
func (s OrderStatus) Valid() bool {
	_, ok := orderStatuses[s]
	return ok
}

// ParseOrderStatus валидирует строковое значение статуса.
// Недопустимое значение возвращается как ConstraintError.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	status := OrderStatus(raw)
	if !status.Valid() {
		return "", &ConstraintError{
			Message: fmt.Sprintf("Status not allowed: [%s]", raw),
			Fields:  map[string]any{"status": raw},
		}
	}
	return status, nil
}

// OrderLine — одна позиция заказа: блюдо и его количество.
// Цена за единицу фиксируется из каталога в момент материализации позиции.
type OrderLine struct {
	ID        string
	OrderID   string
	DishID    string
	DishName  string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Subtotal возвращает стоимость позиции: quantity * unit_price.
func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order агрегирует состояние заказа и его позиции.
// TotalPrice — производное поле: всегда равно сумме позиций
// и никогда не выставляется вызывающим кодом напрямую.
type Order struct {
	ID          string
	TableNumber int
	Status      OrderStatus
	TotalPrice  decimal.Decimal
	Lines       []OrderLine
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ComputeTotalPrice суммирует позиции с фиксированной точностью.
// Пустой состав даёт ноль; float здесь не используется, чтобы не
// накапливать ошибки округления в денежных значениях.
func (o *Order) ComputeTotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// RecalculateTotal пересчитывает TotalPrice из текущих позиций.
func (o *Order) RecalculateTotal() {
	o.TotalPrice = o.ComputeTotalPrice()
}

// ValidateTableNumber проверяет, что номер стола — положительное целое.
func ValidateTableNumber(tableNumber int) error {
	if tableNumber <= 0 {
		return &ConstraintError{
			Message: fmt.Sprintf("Bad table_number: [%d]", tableNumber),
			Fields:  map[string]any{"table_number": tableNumber},
		}
	}
	return nil
}

// Validate проверяет инварианты агрегата перед сохранением:
// номер стола, статус, позиции и согласованность итоговой суммы.
func (o *Order) Validate() error {
	if err := ValidateTableNumber(o.TableNumber); err != nil {
		return err
	}
	if !o.Status.Valid() {
		return &ConstraintError{
			Message: fmt.Sprintf("Status not allowed: [%s]", o.Status),
			Fields:  map[string]any{"status": string(o.Status)},
		}
	}
	for i, line := range o.Lines {
		if line.Quantity <= 0 {
			return &ConstraintError{
				Message: fmt.Sprintf("Bad quantity: [%d]", line.Quantity),
				Fields:  map[string]any{"line": i, "quantity": line.Quantity},
			}
		}
		if line.UnitPrice.IsNegative() {
			return &ConstraintError{
				Message: fmt.Sprintf("Bad unit_price: [%s]", line.UnitPrice),
				Fields:  map[string]any{"line": i, "unit_price": line.UnitPrice.String()},
			}
		}
	}
	if !o.TotalPrice.Equal(o.ComputeTotalPrice()) {
		return &ConstraintError{
			Message: "Total price does not match order lines",
			Fields: map[string]any{
				"total_price": o.TotalPrice.String(),
				"computed":    o.ComputeTotalPrice().String(),
			},
		}
	}
	return nil
}
