package memory

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/cafe-manager/internal/domain"
)

// orderRepositoryInMemory — простая in-memory реализация OrderRepository
// для локальной разработки и тестов.
type orderRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Order
}

// NewOrderRepository возвращает in-memory репозиторий заказов.
func NewOrderRepository() domain.OrderRepository {
	return &orderRepositoryInMemory{
		items: make(map[string]domain.Order),
	}
}

// Create назначает идентификаторы и сохраняет заказ вместе с позициями.
func (r *orderRepositoryInMemory) Create(order domain.Order) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order.ID = uuid.NewString()
	for i := range order.Lines {
		order.Lines[i].ID = uuid.NewString()
		order.Lines[i].OrderID = order.ID
	}
	order.TotalPrice = order.ComputeTotalPrice()

	// Сохраняем копию, чтобы избежать непредсказуемых мутаций извне.
	r.items[order.ID] = cloneOrder(order)
	return order, nil
}

// Get возвращает заказ или SearchError, если его нет.
func (r *orderRepositoryInMemory) Get(id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.items[id]
	if !ok {
		return domain.Order{}, domain.NewNotFoundError(domain.Filters{domain.FilterID: id})
	}
	return cloneOrder(order), nil
}

// GetUniqueByFilters возвращает единственный заказ по набору фильтров.
func (r *orderRepositoryInMemory) GetUniqueByFilters(filters domain.Filters) (domain.Order, error) {
	if err := filters.Validate(); err != nil {
		return domain.Order{}, err
	}

	matched, err := r.ListByFilters(filters)
	if err != nil {
		return domain.Order{}, err
	}
	switch len(matched) {
	case 0:
		return domain.Order{}, domain.NewNotFoundError(filters.Clone())
	case 1:
		return matched[0], nil
	default:
		return domain.Order{}, domain.NewMultipleFoundError(filters.Clone())
	}
}

// ListByFilters возвращает заказы по фильтру, отсортированные по id.
func (r *orderRepositoryInMemory) ListByFilters(filters domain.Filters) ([]domain.Order, error) {
	if err := filters.Validate(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0, len(r.items))
	for _, order := range r.items {
		if !filters.Matches(order) {
			continue
		}
		result = append(result, cloneOrder(order))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// ReplaceLines атомарно заменяет состав заказа и пересчитывает сумму.
func (r *orderRepositoryInMemory) ReplaceLines(orderID string, lines []domain.OrderLine) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.items[orderID]
	if !ok {
		return domain.Order{}, domain.NewNotFoundError(domain.Filters{domain.FilterID: orderID})
	}

	replaced := make([]domain.OrderLine, len(lines))
	for i, line := range lines {
		line.ID = uuid.NewString()
		line.OrderID = orderID
		replaced[i] = line
	}

	order.Lines = replaced
	order.RecalculateTotal()
	r.items[orderID] = cloneOrder(order)

	return cloneOrder(order), nil
}

// UpdateStatus сохраняет новый статус заказа.
func (r *orderRepositoryInMemory) UpdateStatus(orderID string, status domain.OrderStatus) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.items[orderID]
	if !ok {
		return domain.Order{}, domain.NewNotFoundError(domain.Filters{domain.FilterID: orderID})
	}

	order.Status = status
	r.items[orderID] = cloneOrder(order)

	return cloneOrder(order), nil
}

// Delete удаляет заказ с позициями и возвращает число удалённых записей.
func (r *orderRepositoryInMemory) Delete(id string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.items[id]
	if !ok {
		return 0, domain.NewNotFoundError(domain.Filters{domain.FilterID: id})
	}

	delete(r.items, id)
	return 1 + len(order.Lines), nil
}

// SumTotalPriceByStatus суммирует total_price заказов в данном статусе.
func (r *orderRepositoryInMemory) SumTotalPriceByStatus(status domain.OrderStatus) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := decimal.Zero
	for _, order := range r.items {
		if order.Status != status {
			continue
		}
		total = total.Add(order.TotalPrice)
	}
	return total, nil
}

func cloneOrder(order domain.Order) domain.Order {
	cloned := order
	cloned.Lines = make([]domain.OrderLine, len(order.Lines))
	copy(cloned.Lines, order.Lines)
	return cloned
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
