package import_branches

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BranchDirectory/internal/domain"
)

// BranchRepository интерфейс репозитория отделений
type BranchRepository interface {
	ReplaceAll(ctx context.Context, branches []*domain.Branch) (int, error)
}

// TransactionManager интерфейс для управления транзакциями
// Замена набора идет в READ COMMITTED: взаимное исключение дает блокировка хранилища
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// BranchCache кеш списков отделений, сбрасывается после импорта
type BranchCache interface {
	Invalidate(ctx context.Context) error
}

// MetricsRecorder интерфейс для записи метрик импорта
type MetricsRecorder interface {
	RecordImport(source, result string, accepted, rejected int, duration time.Duration)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// IDGenerator генерирует идентификатор прогона импорта
type IDGenerator interface {
	NewID() string
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время в UTC
func (p *RealTimeProvider) Now() time.Time {
	return time.Now().UTC()
}
