package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/cafe-manager/internal/domain"
	"github.com/vladislavdragonenkov/cafe-manager/internal/metrics"
)

// Имена операций для метрик и логов.
const (
	opCreate          = "create"
	opSearchByID      = "search_by_id"
	opSearchByFilters = "search_by_filters"
	opRemoveByID      = "remove_by_id"
	opModifyStatus    = "modify_status_by_id"
	opModifyDishes    = "modify_dishes_by_id"
	opCalculateProfit = "calculate_profit"
)

// DishInput — одна позиция состава во входных примитивах сервиса.
// Quantity == 0 трактуется как опущенное значение и даёт 1 по умолчанию.
type DishInput struct {
	DishID   string `json:"dish_id"`
	Quantity int    `json:"quantity,omitempty"`
}

// Service — единая точка входа для внешних слоёв. Состояния между
// запросами не держит: замыкается только на репозиторий и каталог.
type Service struct {
	repo      domain.OrderRepository
	catalog   domain.DishCatalog
	publisher domain.EventPublisher
	metrics   *metrics.OrderMetrics
	logger    *log.Entry
}

// Option конфигурирует Service.
type Option func(*Service)

// WithEventPublisher подключает публикацию событий заказов.
func WithEventPublisher(publisher domain.EventPublisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

// WithMetrics подключает метрики операций.
func WithMetrics(m *metrics.OrderMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLogger задаёт логгер сервиса.
func WithLogger(logger *log.Entry) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService конструирует сервис заказов с зависимостями.
func NewService(repo domain.OrderRepository, catalog domain.DishCatalog, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		catalog: catalog,
		logger:  log.WithField("component", "order-service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create создаёт заказ для стола с указанным составом.
// Любая нераспознанная позиция или несуществующее блюдо отменяет
// создание целиком с ConstraintError, несущей проблемный вход.
func (s *Service) Create(tableNumber int, dishes []DishInput) (created domain.Order, err error) {
	defer s.observe(opCreate, time.Now(), &err)

	if err = domain.ValidateTableNumber(tableNumber); err != nil {
		return domain.Order{}, err
	}

	lines, err := s.resolveLines(dishes)
	if err != nil {
		return domain.Order{}, err
	}

	now := time.Now().UTC()
	order := domain.Order{
		TableNumber: tableNumber,
		Status:      domain.OrderStatusPending,
		Lines:       lines,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	order.RecalculateTotal()

	if err = order.Validate(); err != nil {
		return domain.Order{}, err
	}

	created, err = s.repo.Create(order)
	if err != nil {
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}

	s.logger.WithFields(log.Fields{
		"order_id":     created.ID,
		"table_number": created.TableNumber,
		"total_price":  created.TotalPrice.String(),
	}).Info("order created")
	s.publishEvent(domain.OrderEventCreated, created)

	return created, nil
}

// SearchByID возвращает заказ по идентификатору; SearchError, если его нет.
func (s *Service) SearchByID(id string) (found domain.Order, err error) {
	defer s.observe(opSearchByID, time.Now(), &err)
	return s.repo.Get(id)
}

// SearchByFilters возвращает заказы по набору фильтров.
// В нормализованном режиме ключи с nil-значением отбрасываются перед
// запросом; иначе nil-значение — явный предикат «поле не заполнено».
func (s *Service) SearchByFilters(filters domain.Filters, normalized bool) (found []domain.Order, err error) {
	defer s.observe(opSearchByFilters, time.Now(), &err)

	if err = filters.Validate(); err != nil {
		return nil, err
	}
	if normalized {
		filters = filters.Normalized()
	}
	return s.repo.ListByFilters(filters)
}

// RemoveByID удаляет заказ каскадно и возвращает число удалённых записей.
func (s *Service) RemoveByID(id string) (deleted int, err error) {
	defer s.observe(opRemoveByID, time.Now(), &err)

	order, err := s.repo.Get(id)
	if err != nil {
		return 0, err
	}

	deleted, err = s.repo.Delete(id)
	if err != nil {
		return 0, err
	}

	s.logger.WithFields(log.Fields{
		"order_id": id,
		"deleted":  deleted,
	}).Info("order removed")
	s.publishEvent(domain.OrderEventDeleted, order)

	return deleted, nil
}

// ModifyStatusByID переводит заказ в новый статус. Проверяется только
// принадлежность статуса множеству допустимых значений, не направление
// перехода.
func (s *Service) ModifyStatusByID(id string, newStatus string) (updated domain.Order, err error) {
	defer s.observe(opModifyStatus, time.Now(), &err)

	if _, err = s.repo.Get(id); err != nil {
		return domain.Order{}, err
	}

	status, err := domain.ParseOrderStatus(newStatus)
	if err != nil {
		return domain.Order{}, err
	}

	updated, err = s.repo.UpdateStatus(id, status)
	if err != nil {
		return domain.Order{}, err
	}

	s.logger.WithFields(log.Fields{
		"order_id": id,
		"status":   status,
	}).Info("order status changed")
	s.publishEvent(domain.OrderEventStatusChanged, updated)

	return updated, nil
}

// ModifyDishesByID атомарно заменяет состав заказа. Семантика
// всё-или-ничего: при несуществующем блюде прежний состав и сумма
// остаются нетронутыми.
func (s *Service) ModifyDishesByID(id string, dishes []DishInput) (updated domain.Order, err error) {
	defer s.observe(opModifyDishes, time.Now(), &err)

	if _, err = s.repo.Get(id); err != nil {
		return domain.Order{}, err
	}

	lines, err := s.resolveLines(dishes)
	if err != nil {
		return domain.Order{}, err
	}

	updated, err = s.repo.ReplaceLines(id, lines)
	if err != nil {
		return domain.Order{}, fmt.Errorf("replace order lines: %w", err)
	}

	s.logger.WithFields(log.Fields{
		"order_id":    id,
		"total_price": updated.TotalPrice.String(),
		"lines":       len(updated.Lines),
	}).Info("order dishes changed")
	s.publishEvent(domain.OrderEventDishesChanged, updated)

	return updated, nil
}

// CalculateProfit возвращает сумму total_price оплаченных заказов.
// Без оплаченных заказов — ноль, не ошибка.
func (s *Service) CalculateProfit() (profit decimal.Decimal, err error) {
	defer s.observe(opCalculateProfit, time.Now(), &err)
	return s.repo.SumTotalPriceByStatus(domain.OrderStatusPaid)
}

// ListDishes возвращает каталог блюд для слоя представления.
func (s *Service) ListDishes() ([]domain.Dish, error) {
	return s.catalog.List()
}

// resolveLines материализует входные позиции, фиксируя имя и цену
// блюда из каталога. Несуществующее блюдо переводится в ConstraintError
// с указанием проблемного id.
func (s *Service) resolveLines(dishes []DishInput) ([]domain.OrderLine, error) {
	lines := make([]domain.OrderLine, 0, len(dishes))
	for i, input := range dishes {
		if input.DishID == "" {
			return nil, &domain.ConstraintError{
				Message: fmt.Sprintf("Dish validation failed: dish id is missing in line [%d]", i),
				Fields:  map[string]any{"line": i},
			}
		}
		if input.Quantity < 0 {
			return nil, &domain.ConstraintError{
				Message: fmt.Sprintf("Bad quantity: [%d]", input.Quantity),
				Fields:  map[string]any{"dish_id": input.DishID, "quantity": input.Quantity},
			}
		}

		quantity := input.Quantity
		if quantity == 0 {
			// Количество опущено — одна порция.
			quantity = 1
		}

		dish, err := s.catalog.Get(input.DishID)
		if err != nil {
			if errors.Is(err, domain.ErrDishNotFound) {
				return nil, &domain.ConstraintError{
					Message: fmt.Sprintf("Dish validation failed: dish id [%s] does not exist", input.DishID),
					Fields:  map[string]any{"dish_id": input.DishID},
				}
			}
			return nil, fmt.Errorf("resolve dish %s: %w", input.DishID, err)
		}

		lines = append(lines, domain.OrderLine{
			DishID:    dish.ID,
			DishName:  dish.Name,
			Quantity:  quantity,
			UnitPrice: dish.Price,
		})
	}
	return lines, nil
}

// publishEvent отправляет событие best-effort: сбой публикации
// логируется и не отменяет уже зафиксированную мутацию.
func (s *Service) publishEvent(eventType domain.OrderEventType, order domain.Order) {
	if s.publisher == nil {
		return
	}

	event := domain.OrderEvent{
		ID:          uuid.NewString(),
		Type:        eventType,
		OrderID:     order.ID,
		TableNumber: order.TableNumber,
		Status:      order.Status,
		TotalPrice:  order.TotalPrice,
		OccurredAt:  time.Now().UTC(),
	}
	if err := s.publisher.PublishOrderEvent(event); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id": order.ID,
			"type":     eventType,
		}).Warn("failed to publish order event")
	}
}

func (s *Service) observe(operation string, started time.Time, err *error) {
	s.metrics.ObserveOperation(operation, started, *err)
}
