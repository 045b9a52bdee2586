package order

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/cafe-manager/internal/domain"
	"github.com/vladislavdragonenkov/cafe-manager/internal/storage/memory"
)

const (
	dishMargherita = "dish-margherita"
	dishCarbonara  = "dish-carbonara"
)

// recordingPublisher собирает опубликованные события для проверок.
type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.OrderEvent
	fail   bool
}

func (p *recordingPublisher) PublishOrderEvent(event domain.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return assert.AnError
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) recorded() []domain.OrderEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.OrderEvent(nil), p.events...)
}

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	return NewService(memory.NewOrderRepository(), testCatalog(), opts...)
}

func testCatalog() domain.DishCatalog {
	return memory.NewDishCatalog(
		domain.Dish{ID: dishMargherita, Name: "Margherita", Price: decimal.RequireFromString("9.99")},
		domain.Dish{ID: dishCarbonara, Name: "Carbonara", Price: decimal.RequireFromString("11.99")},
	)
}

func TestCreateOrder(t *testing.T) {
	svc := newTestService(t)

	order, err := svc.Create(5, []DishInput{
		{DishID: dishMargherita, Quantity: 1},
		{DishID: dishCarbonara, Quantity: 1},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, 5, order.TableNumber)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.True(t, order.TotalPrice.Equal(decimal.RequireFromString("21.98")),
		"expected total 21.98, got %s", order.TotalPrice)
	require.Len(t, order.Lines, 2)
	assert.Equal(t, "Margherita", order.Lines[0].DishName)
	assert.Equal(t, "Carbonara", order.Lines[1].DishName)
}

func TestCreateOrder_QuantityDefaultsToOne(t *testing.T) {
	svc := newTestService(t)

	// Количество опущено у первой позиции, указано у второй.
	order, err := svc.Create(1, []DishInput{
		{DishID: dishMargherita},
		{DishID: dishCarbonara, Quantity: 2},
	})
	require.NoError(t, err)

	require.Len(t, order.Lines, 2)
	assert.Equal(t, 1, order.Lines[0].Quantity)
	assert.Equal(t, 2, order.Lines[1].Quantity)
	// 9.99 + 11.99*2 = 33.97
	assert.True(t, order.TotalPrice.Equal(decimal.RequireFromString("33.97")),
		"expected total 33.97, got %s", order.TotalPrice)
}

func TestCreateOrder_BadTableNumber(t *testing.T) {
	svc := newTestService(t)

	for _, table := range []int{0, -1} {
		_, err := svc.Create(table, []DishInput{{DishID: dishMargherita}})
		require.Error(t, err)
		assert.True(t, domain.IsConstraintError(err), "expected ConstraintError, got %v", err)
		assert.Contains(t, err.Error(), "Bad table_number")
	}
}

func TestCreateOrder_UnknownDish(t *testing.T) {
	repo := memory.NewOrderRepository()
	svc := NewService(repo, testCatalog())

	_, err := svc.Create(1, []DishInput{{DishID: "999"}})
	require.Error(t, err)
	assert.True(t, domain.IsConstraintError(err))
	assert.Contains(t, err.Error(), "Dish validation failed: dish id [999] does not exist")

	// Откат целиком: ни одного заказа не создано.
	orders, err := repo.ListByFilters(domain.Filters{})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCreateOrder_MalformedLine(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(1, []DishInput{{DishID: ""}})
	require.Error(t, err)
	assert.True(t, domain.IsConstraintError(err))

	_, err = svc.Create(1, []DishInput{{DishID: dishMargherita, Quantity: -2}})
	require.Error(t, err)
	assert.True(t, domain.IsConstraintError(err))
	assert.Contains(t, err.Error(), "Bad quantity")
}

func TestSearchByID(t *testing.T) {
	svc := newTestService(t)
	created, err := svc.Create(3, []DishInput{{DishID: dishMargherita}})
	require.NoError(t, err)

	found, err := svc.SearchByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, 3, found.TableNumber)

	_, err = svc.SearchByID("missing")
	require.Error(t, err)
	assert.True(t, domain.IsSearchError(err), "expected SearchError, got %v", err)
}

func TestSearchByFilters_Normalization(t *testing.T) {
	svc := newTestService(t)

	first, err := svc.Create(1, []DishInput{{DishID: dishMargherita}})
	require.NoError(t, err)
	_, err = svc.Create(2, []DishInput{{DishID: dishCarbonara}})
	require.NoError(t, err)
	_, err = svc.ModifyStatusByID(first.ID, "ready")
	require.NoError(t, err)

	filters := domain.Filters{
		domain.FilterTableNumber: 1,
		domain.FilterStatus:      nil,
	}

	// normalized=true: nil-ключ отброшен, статус не фильтруется.
	orders, err := svc.SearchByFilters(filters, true)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 1, orders[0].TableNumber)

	// normalized=false: nil-значение — буквальный предикат, совпадений нет.
	orders, err = svc.SearchByFilters(filters, false)
	require.NoError(t, err)
	assert.Empty(t, orders)

	// Исходный набор фильтров не мутировал между режимами.
	assert.Contains(t, filters, domain.FilterStatus)
}

func TestSearchByFilters_ByStatus(t *testing.T) {
	svc := newTestService(t)

	first, err := svc.Create(1, []DishInput{{DishID: dishMargherita}})
	require.NoError(t, err)
	_, err = svc.Create(2, []DishInput{{DishID: dishCarbonara}})
	require.NoError(t, err)
	_, err = svc.ModifyStatusByID(first.ID, "ready")
	require.NoError(t, err)

	orders, err := svc.SearchByFilters(domain.Filters{domain.FilterStatus: "ready"}, false)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, first.ID, orders[0].ID)

	orders, err = svc.SearchByFilters(domain.Filters{}, false)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}

func TestRemoveByID(t *testing.T) {
	svc := newTestService(t)
	created, err := svc.Create(1, []DishInput{
		{DishID: dishMargherita},
		{DishID: dishCarbonara},
	})
	require.NoError(t, err)

	// Заказ + две позиции = 3 удалённые записи.
	deleted, err := svc.RemoveByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)

	_, err = svc.SearchByID(created.ID)
	assert.True(t, domain.IsSearchError(err))

	_, err = svc.RemoveByID("missing")
	require.Error(t, err)
	assert.True(t, domain.IsSearchError(err))
}

func TestModifyStatusByID(t *testing.T) {
	svc := newTestService(t)
	created, err := svc.Create(1, []DishInput{{DishID: dishMargherita}})
	require.NoError(t, err)

	updated, err := svc.ModifyStatusByID(created.ID, "ready")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusReady, updated.Status)

	// Переходы не ограничены направлением: paid -> pending допустим.
	_, err = svc.ModifyStatusByID(created.ID, "paid")
	require.NoError(t, err)
	updated, err = svc.ModifyStatusByID(created.ID, "pending")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, updated.Status)
}

func TestModifyStatusByID_InvalidStatus(t *testing.T) {
	svc := newTestService(t)
	created, err := svc.Create(1, []DishInput{{DishID: dishMargherita}})
	require.NoError(t, err)

	_, err = svc.ModifyStatusByID(created.ID, "bogus")
	require.Error(t, err)
	assert.True(t, domain.IsConstraintError(err))
	assert.Contains(t, err.Error(), "Status not allowed")

	// Статус заказа не изменился.
	reloaded, err := svc.SearchByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, reloaded.Status)
}

func TestModifyStatusByID_NotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ModifyStatusByID("missing", "ready")
	require.Error(t, err)
	assert.True(t, domain.IsSearchError(err))
}

func TestModifyDishesByID(t *testing.T) {
	svc := newTestService(t)
	created, err := svc.Create(5, []DishInput{
		{DishID: dishMargherita, Quantity: 1},
		{DishID: dishCarbonara, Quantity: 1},
	})
	require.NoError(t, err)

	// A×2 + B×1: 9.99*2 + 11.99 = 31.97.
	updated, err := svc.ModifyDishesByID(created.ID, []DishInput{
		{DishID: dishMargherita, Quantity: 2},
		{DishID: dishCarbonara},
	})
	require.NoError(t, err)
	assert.True(t, updated.TotalPrice.Equal(decimal.RequireFromString("31.97")),
		"expected total 31.97, got %s", updated.TotalPrice)
	require.Len(t, updated.Lines, 2)
	assert.Equal(t, 2, updated.Lines[0].Quantity)

	// Инвариант суммы сохраняется после мутации.
	assert.True(t, updated.TotalPrice.Equal(updated.ComputeTotalPrice()))
}

func TestModifyDishesByID_AtomicOnUnknownDish(t *testing.T) {
	svc := newTestService(t)
	created, err := svc.Create(1, []DishInput{
		{DishID: dishMargherita},
		{DishID: dishCarbonara},
	})
	require.NoError(t, err)

	_, err = svc.ModifyDishesByID(created.ID, []DishInput{{DishID: "999"}})
	require.Error(t, err)
	assert.True(t, domain.IsConstraintError(err))
	assert.Contains(t, err.Error(), "Dish validation failed: dish id [999] does not exist")

	// Прежний состав и сумма полностью нетронуты.
	reloaded, err := svc.SearchByID(created.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Lines, 2)
	assert.True(t, reloaded.TotalPrice.Equal(decimal.RequireFromString("21.98")),
		"expected total 21.98 after failed replacement, got %s", reloaded.TotalPrice)
}

func TestModifyDishesByID_NotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ModifyDishesByID("missing", []DishInput{{DishID: dishMargherita}})
	require.Error(t, err)
	assert.True(t, domain.IsSearchError(err))
}

func TestCalculateProfit(t *testing.T) {
	svc := newTestService(t)

	// Без оплаченных заказов выручка нулевая.
	profit, err := svc.CalculateProfit()
	require.NoError(t, err)
	assert.True(t, profit.IsZero())

	created, err := svc.Create(5, []DishInput{
		{DishID: dishMargherita, Quantity: 2},
		{DishID: dishCarbonara},
	})
	require.NoError(t, err)

	// Неоплаченные заказы в выручку не входят.
	profit, err = svc.CalculateProfit()
	require.NoError(t, err)
	assert.True(t, profit.IsZero())

	_, err = svc.ModifyStatusByID(created.ID, "paid")
	require.NoError(t, err)

	profit, err = svc.CalculateProfit()
	require.NoError(t, err)
	assert.True(t, profit.Equal(decimal.RequireFromString("31.97")),
		"expected profit 31.97, got %s", profit)

	// Идемпотентность чтения: повторный вызов без записей даёт то же значение.
	again, err := svc.CalculateProfit()
	require.NoError(t, err)
	assert.True(t, profit.Equal(again))

	// После удаления заказа выручка обнуляется.
	_, err = svc.RemoveByID(created.ID)
	require.NoError(t, err)
	profit, err = svc.CalculateProfit()
	require.NoError(t, err)
	assert.True(t, profit.IsZero())
}

func TestServicePublishesEvents(t *testing.T) {
	publisher := &recordingPublisher{}
	svc := newTestService(t, WithEventPublisher(publisher))

	created, err := svc.Create(1, []DishInput{{DishID: dishMargherita}})
	require.NoError(t, err)
	_, err = svc.ModifyStatusByID(created.ID, "paid")
	require.NoError(t, err)
	_, err = svc.ModifyDishesByID(created.ID, []DishInput{{DishID: dishCarbonara}})
	require.NoError(t, err)
	_, err = svc.RemoveByID(created.ID)
	require.NoError(t, err)

	events := publisher.recorded()
	require.Len(t, events, 4)
	assert.Equal(t, domain.OrderEventCreated, events[0].Type)
	assert.Equal(t, domain.OrderEventStatusChanged, events[1].Type)
	assert.Equal(t, domain.OrderEventDishesChanged, events[2].Type)
	assert.Equal(t, domain.OrderEventDeleted, events[3].Type)
	for _, event := range events {
		assert.Equal(t, created.ID, event.OrderID)
		assert.NotEmpty(t, event.ID)
	}
}

func TestServicePublishFailureDoesNotFailOperation(t *testing.T) {
	publisher := &recordingPublisher{fail: true}
	svc := newTestService(t, WithEventPublisher(publisher))

	// Публикация best-effort: сбой не отменяет мутацию.
	created, err := svc.Create(1, []DishInput{{DishID: dishMargherita}})
	require.NoError(t, err)

	reloaded, err := svc.SearchByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, reloaded.ID)
}

func TestListDishes(t *testing.T) {
	svc := newTestService(t)

	dishes, err := svc.ListDishes()
	require.NoError(t, err)
	assert.Len(t, dishes, 2)
}
