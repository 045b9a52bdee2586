package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/cafe-manager/internal/domain"
)

const (
	opTimeout = 5 * time.Second
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

// Create сохраняет заказ и его позиции в одной транзакции,
// назначая идентификаторы.
func (r *orderRepository) Create(order domain.Order) (created domain.Order, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	order.ID = uuid.NewString()
	order.TotalPrice = order.ComputeTotalPrice()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, table_number, status, total_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		order.ID, order.TableNumber, string(order.Status),
		order.TotalPrice, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}

	if err = insertLines(ctx, tx, order.ID, order.Lines); err != nil {
		return domain.Order{}, err
	}
	for i := range order.Lines {
		order.Lines[i].OrderID = order.ID
	}

	if err = tx.Commit(); err != nil {
		return domain.Order{}, fmt.Errorf("commit create order: %w", err)
	}

	return order, nil
}

// Get возвращает заказ с позициями или SearchError, если его нет.
func (r *orderRepository) Get(id string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	order, err := r.scanOrder(r.db.QueryRowContext(ctx, `
		SELECT id, table_number, status, total_price, created_at, updated_at
		FROM orders
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.NewNotFoundError(domain.Filters{domain.FilterID: id})
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}

	lines, err := r.loadLines(ctx, order.ID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Lines = lines

	return order, nil
}

// GetUniqueByFilters возвращает единственный заказ по набору фильтров.
func (r *orderRepository) GetUniqueByFilters(filters domain.Filters) (domain.Order, error) {
	if err := filters.Validate(); err != nil {
		return domain.Order{}, err
	}

	// LIMIT 2 достаточно, чтобы отличить «ровно один» от «больше одного».
	matched, err := r.queryOrders(filters, 2)
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
func (r *orderRepository) ListByFilters(filters domain.Filters) ([]domain.Order, error) {
	if err := filters.Validate(); err != nil {
		return nil, err
	}
	return r.queryOrders(filters, 0)
}

// ReplaceLines атомарно заменяет состав заказа и пересчитывает сумму.
func (r *orderRepository) ReplaceLines(orderID string, lines []domain.OrderLine) (updated domain.Order, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Блокируем строку заказа на время замены состава.
	var exists string
	err = tx.QueryRowContext(ctx, `SELECT id FROM orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = domain.NewNotFoundError(domain.Filters{domain.FilterID: orderID})
		} else {
			err = fmt.Errorf("lock order row: %w", err)
		}
		return domain.Order{}, err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM order_lines WHERE order_id = $1`, orderID); err != nil {
		return domain.Order{}, fmt.Errorf("delete order lines: %w", err)
	}

	if err = insertLines(ctx, tx, orderID, lines); err != nil {
		return domain.Order{}, err
	}

	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal())
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE orders
		SET total_price = $1,
		    updated_at = $2
		WHERE id = $3
	`, total, time.Now().UTC(), orderID); err != nil {
		return domain.Order{}, fmt.Errorf("update order total: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return domain.Order{}, fmt.Errorf("commit replace lines: %w", err)
	}

	return r.Get(orderID)
}

// UpdateStatus сохраняет новый статус заказа.
func (r *orderRepository) UpdateStatus(orderID string, status domain.OrderStatus) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1,
		    updated_at = $2
		WHERE id = $3
	`, string(status), time.Now().UTC(), orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("update order status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Order{}, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.Order{}, domain.NewNotFoundError(domain.Filters{domain.FilterID: orderID})
	}

	return r.Get(orderID)
}

// Delete удаляет заказ каскадно и возвращает число удалённых записей.
func (r *orderRepository) Delete(id string) (deleted int, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var lineCount int
	if err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM order_lines WHERE order_id = $1
	`, id).Scan(&lineCount); err != nil {
		return 0, fmt.Errorf("count order lines: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		err = domain.NewNotFoundError(domain.Filters{domain.FilterID: id})
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit delete order: %w", err)
	}

	return 1 + lineCount, nil
}

// SumTotalPriceByStatus суммирует total_price заказов в данном статусе.
func (r *orderRepository) SumTotalPriceByStatus(status domain.OrderStatus) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var total decimal.Decimal
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_price), 0)
		FROM orders
		WHERE status = $1
	`, string(status)).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum order totals: %w", err)
	}

	return total, nil
}

// queryOrders выполняет выборку по фильтру с сортировкой по id.
// limit=0 — без ограничения.
func (r *orderRepository) queryOrders(filters domain.Filters, limit int) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query := strings.Builder{}
	query.WriteString(`
		SELECT id, table_number, status, total_price, created_at, updated_at
		FROM orders
	`)

	conditions, args := buildFilterConditions(filters)
	if len(conditions) > 0 {
		query.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	query.WriteString(" ORDER BY id ASC")
	if limit > 0 {
		args = append(args, limit)
		query.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}

	rows, err := r.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := r.scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	for i := range orders {
		lines, err := r.loadLines(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Lines = lines
	}

	return orders, nil
}

// buildFilterConditions переводит фильтр в условия WHERE.
// nil-значение — явный предикат IS NULL: для NOT NULL колонок он
// не совпадает ни с одной строкой, что и требуется в
// ненормализованном режиме поиска.
func buildFilterConditions(filters domain.Filters) ([]string, []any) {
	columns := map[string]string{
		domain.FilterID:          "id",
		domain.FilterTableNumber: "table_number",
		domain.FilterStatus:      "status",
	}

	conditions := make([]string, 0, len(filters))
	args := make([]any, 0, len(filters))
	for _, key := range []string{domain.FilterID, domain.FilterTableNumber, domain.FilterStatus} {
		value, ok := filters[key]
		if !ok {
			continue
		}
		if value == nil {
			conditions = append(conditions, columns[key]+" IS NULL")
			continue
		}
		if status, isStatus := value.(domain.OrderStatus); isStatus {
			value = string(status)
		}
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", columns[key], len(args)))
	}

	return conditions, args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *orderRepository) scanOrder(row rowScanner) (domain.Order, error) {
	var (
		order  domain.Order
		status string
	)
	err := row.Scan(
		&order.ID, &order.TableNumber, &status,
		&order.TotalPrice, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return domain.Order{}, err
	}
	order.Status = domain.OrderStatus(status)
	return order, nil
}

func (r *orderRepository) loadLines(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, dish_id, dish_name, quantity, unit_price
		FROM order_lines
		WHERE order_id = $1
		ORDER BY position ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("select order lines: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.OrderLine, 0)
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(
			&line.ID, &line.OrderID, &line.DishID,
			&line.DishName, &line.Quantity, &line.UnitPrice,
		); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order lines: %w", err)
	}

	return lines, nil
}

// insertLines вставляет позиции, сохраняя порядок состава в колонке position.
func insertLines(ctx context.Context, tx *sql.Tx, orderID string, lines []domain.OrderLine) error {
	for i := range lines {
		lines[i].ID = uuid.NewString()
		lines[i].OrderID = orderID
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_lines (id, order_id, dish_id, dish_name, quantity, unit_price, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
			lines[i].ID, orderID, lines[i].DishID, lines[i].DishName,
			lines[i].Quantity, lines[i].UnitPrice, i,
		); err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}
	return nil
}

var _ domain.OrderRepository = (*orderRepository)(nil)
