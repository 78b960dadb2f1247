package branches

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BranchDirectory/internal/domain"
)

// BranchRepository интерфейс репозитория отделений
type BranchRepository interface {
	List(ctx context.Context, filter domain.BranchFilter) ([]*domain.Branch, error)
	GetByID(ctx context.Context, id int64) (*domain.Branch, error)
	PatchTemporaryClosed(ctx context.Context, id int64, closed bool, updatedAt time.Time) error
	ListCities(ctx context.Context) ([]string, error)
}

// Cache интерфейс кеша сериализованных ответов
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, int64, error)
	Set(ctx context.Context, key string, generation int64, data []byte) error
	Invalidate(ctx context.Context) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider источник текущего времени
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
