package domain

import "github.com/shopspring/decimal"

// Dish — позиция меню. Каталог блюд управляется извне:
// сервис заказов только читает его.
type Dish struct {
	ID    string
	Name  string
	Price decimal.Decimal
}
