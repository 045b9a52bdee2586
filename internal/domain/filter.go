package domain

import "fmt"

// Ключи фильтров поиска заказов. Набор закрыт: неизвестный ключ —
// ошибка вызывающего кода, а не повод для пустой выборки.
const (
	FilterID          = "id"
	FilterTableNumber = "table_number"
	FilterStatus      = "status"
)

// Filters — конъюнкция предикатов точного совпадения по полям заказа.
// Ключ со значением nil — это явный предикат «поле не заполнено»,
// а не отсутствие фильтра: различие важно для ненормализованного режима
// поиска, см. Normalized.
type Filters map[string]any

// Validate проверяет ключи и типы значений фильтра.
func (f Filters) Validate() error {
	for key, value := range f {
		switch key {
		case FilterID:
			if value != nil {
				if _, ok := value.(string); !ok {
					return badFilterValue(key, value)
				}
			}
		case FilterTableNumber:
			if value != nil {
				switch value.(type) {
				case int, int64:
				default:
					return badFilterValue(key, value)
				}
			}
		case FilterStatus:
			if value != nil {
				switch value.(type) {
				case string, OrderStatus:
				default:
					return badFilterValue(key, value)
				}
			}
		default:
			return &ConstraintError{
				Message: fmt.Sprintf("Unknown filter field: [%s]", key),
				Fields:  map[string]any{key: value},
			}
		}
	}
	return nil
}

// Normalized возвращает копию фильтра без ключей с nil-значением.
// Отсутствующее значение в этом режиме означает «не фильтровать по полю».
func (f Filters) Normalized() Filters {
	normalized := make(Filters, len(f))
	for key, value := range f {
		if value == nil {
			continue
		}
		normalized[key] = value
	}
	return normalized
}

// Clone возвращает независимую копию фильтра.
func (f Filters) Clone() Filters {
	cloned := make(Filters, len(f))
	for key, value := range f {
		cloned[key] = value
	}
	return cloned
}

// Matches сообщает, удовлетворяет ли заказ всем предикатам фильтра.
// nil-значение не совпадает ни с одним заказом: все поля заказа обязательны,
// поэтому явный предикат «поле не заполнено» пуст по построению.
func (f Filters) Matches(o Order) bool {
	for key, value := range f {
		if value == nil {
			return false
		}
		switch key {
		case FilterID:
			if v, ok := value.(string); !ok || o.ID != v {
				return false
			}
		case FilterTableNumber:
			switch v := value.(type) {
			case int:
				if o.TableNumber != v {
					return false
				}
			case int64:
				if int64(o.TableNumber) != v {
					return false
				}
			default:
				return false
			}
		case FilterStatus:
			switch v := value.(type) {
			case string:
				if string(o.Status) != v {
					return false
				}
			case OrderStatus:
				if o.Status != v {
					return false
				}
			default:
				return false
			}
		default:
			return false
		}
	}
	return true
}

func badFilterValue(key string, value any) error {
	return &ConstraintError{
		Message: fmt.Sprintf("Bad filter value for [%s]", key),
		Fields:  map[string]any{key: value},
	}
}
