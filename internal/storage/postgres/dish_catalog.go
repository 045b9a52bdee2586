package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/cafe-manager/internal/domain"
)

type dishCatalog struct {
	db *sql.DB
}

// NewDishCatalog создаёт PostgreSQL-реализацию справочника блюд.
func NewDishCatalog(store *Store) domain.DishCatalog {
	return &dishCatalog{db: store.DB()}
}

func (c *dishCatalog) Get(dishID string) (domain.Dish, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var dish domain.Dish
	err := c.db.QueryRowContext(ctx, `
		SELECT id, name, price
		FROM dishes
		WHERE id = $1
	`, dishID).Scan(&dish.ID, &dish.Name, &dish.Price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Dish{}, domain.ErrDishNotFound
		}
		return domain.Dish{}, fmt.Errorf("select dish: %w", err)
	}

	return dish, nil
}

func (c *dishCatalog) List() ([]domain.Dish, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := c.db.QueryContext(ctx, `
		SELECT id, name, price
		FROM dishes
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list dishes: %w", err)
	}
	defer rows.Close()

	dishes := make([]domain.Dish, 0)
	for rows.Next() {
		var dish domain.Dish
		if err := rows.Scan(&dish.ID, &dish.Name, &dish.Price); err != nil {
			return nil, fmt.Errorf("scan dish row: %w", err)
		}
		dishes = append(dishes, dish)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dish rows: %w", err)
	}

	return dishes, nil
}

// SeedDishes добавляет блюда в справочник, пропуская уже существующие.
// Используется приложением при старте и интеграционными тестами.
func SeedDishes(store *Store, dishes []domain.Dish) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	for _, dish := range dishes {
		_, err := store.DB().ExecContext(ctx, `
			INSERT INTO dishes (id, name, price)
			VALUES ($1, $2, $3)
			ON CONFLICT (id) DO NOTHING
		`, dish.ID, dish.Name, dish.Price)
		if err != nil {
			return fmt.Errorf("seed dish %s: %w", dish.ID, err)
		}
	}

	return nil
}

var _ domain.DishCatalog = (*dishCatalog)(nil)
