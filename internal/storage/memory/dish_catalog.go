package memory

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/cafe-manager/internal/domain"
)

// dishCatalogInMemory — read-only каталог блюд поверх карты в памяти.
type dishCatalogInMemory struct {
	mu     sync.RWMutex
	dishes map[string]domain.Dish
}

// NewDishCatalog возвращает каталог, заполненный переданными блюдами.
func NewDishCatalog(dishes ...domain.Dish) domain.DishCatalog {
	catalog := &dishCatalogInMemory{
		dishes: make(map[string]domain.Dish, len(dishes)),
	}
	for _, dish := range dishes {
		catalog.dishes[dish.ID] = dish
	}
	return catalog
}

// NewSeededDishCatalog возвращает каталог с блюдами для локальной разработки.
// Цены повторяют фикстуры исходной системы (9.99 и 11.99).
func NewSeededDishCatalog() domain.DishCatalog {
	return NewDishCatalog(
		domain.Dish{ID: "dish-margherita", Name: "Margherita", Price: decimal.RequireFromString("9.99")},
		domain.Dish{ID: "dish-carbonara", Name: "Carbonara", Price: decimal.RequireFromString("11.99")},
	)
}

// Get возвращает блюдо или ErrDishNotFound.
func (c *dishCatalogInMemory) Get(id string) (domain.Dish, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	dish, ok := c.dishes[id]
	if !ok {
		return domain.Dish{}, domain.ErrDishNotFound
	}
	return dish, nil
}

// List возвращает все блюда, отсортированные по имени.
func (c *dishCatalogInMemory) List() ([]domain.Dish, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]domain.Dish, 0, len(c.dishes))
	for _, dish := range c.dishes {
		result = append(result, dish)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

var _ domain.DishCatalog = (*dishCatalogInMemory)(nil)
