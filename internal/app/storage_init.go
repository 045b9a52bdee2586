package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/cafe-manager/internal/domain"
	"github.com/vladislavdragonenkov/cafe-manager/internal/storage/memory"
	"github.com/vladislavdragonenkov/cafe-manager/internal/storage/postgres"
)

// storageSet — хранилище заказов и каталог блюд одного драйвера.
// Store заполнен только для postgres.
type storageSet struct {
	Repo    domain.OrderRepository
	Catalog domain.DishCatalog
	Store   *postgres.Store
}

// initStorage создаёт хранилище согласно конфигурации.
// Для memory каталог предзаполняется блюдами для разработки.
func initStorage(ctx context.Context, cfg Config, logger *log.Entry) (*storageSet, error) {
	switch cfg.StorageDriver {
	case StorageDriverMemory, "":
		logger.Info("using in-memory storage")
		return &storageSet{
			Repo:    memory.NewOrderRepository(),
			Catalog: memory.NewSeededDishCatalog(),
		}, nil

	case StorageDriverPostgres:
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres storage: %w", err)
		}

		if cfg.PostgresAutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("ensure postgres schema: %w", err)
			}
		}

		logger.Info("using postgres storage")
		return &storageSet{
			Repo:    postgres.NewOrderRepository(store),
			Catalog: postgres.NewDishCatalog(store),
			Store:   store,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.StorageDriver)
	}
}

// Close закрывает ресурсы хранилища.
func (s *storageSet) Close() error {
	if s == nil || s.Store == nil {
		return nil
	}
	return s.Store.Close()
}
