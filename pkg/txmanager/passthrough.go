package txmanager

import "context"

// Passthrough выполняет функции без транзакции
// Используется с хранилищами, которые сами обеспечивают атомарность (in-memory)
type Passthrough struct{}

// NewPassthrough создает менеджер без транзакций
func NewPassthrough() *Passthrough {
	return &Passthrough{}
}

func (Passthrough) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (Passthrough) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
