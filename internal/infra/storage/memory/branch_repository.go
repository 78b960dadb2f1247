package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m04kA/SMC-BranchDirectory/internal/domain"
)

// BranchRepository хранилище отделений в памяти
// Набор хранится как неизменяемый снимок и заменяется целиком под мьютексом,
// поэтому читатель видит либо старый, либо новый набор.
type BranchRepository struct {
	mu       sync.RWMutex
	snapshot []*domain.Branch
	nextID   int64
}

// NewBranchRepository создает пустое хранилище
func NewBranchRepository() *BranchRepository {
	return &BranchRepository{nextID: 1}
}

// ReplaceAll заменяет весь набор отделений и назначает им идентификаторы
func (r *BranchRepository) ReplaceAll(ctx context.Context, branches []*domain.Branch) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]*domain.Branch, 0, len(branches))
	for _, b := range branches {
		b.ID = r.nextID
		r.nextID++
		next = append(next, b.Clone())
	}

	r.snapshot = next
	return len(next), nil
}

// List возвращает копии отделений по фильтру, упорядоченные по id
func (r *BranchRepository) List(ctx context.Context, filter domain.BranchFilter) ([]*domain.Branch, error) {
	r.mu.RLock()
	snapshot := r.snapshot
	r.mu.RUnlock()

	var out []*domain.Branch
	for _, b := range snapshot {
		if filter.Matches(b) {
			out = append(out, b.Clone())
		}
	}

	return out, nil
}

// GetByID возвращает копию отделения по ID
func (r *BranchRepository) GetByID(ctx context.Context, id int64) (*domain.Branch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if b := r.find(id); b != nil {
		return b.Clone(), nil
	}
	return nil, ErrBranchNotFound
}

// PatchTemporaryClosed меняет флаг временного закрытия
// Снимок не изменяется на месте: измененное отделение попадает в новый снимок
func (r *BranchRepository) PatchTemporaryClosed(ctx context.Context, id int64, closed bool, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, b := range r.snapshot {
		if b.ID != id {
			continue
		}

		patched := b.Clone()
		patched.IsTemporaryClosed = closed
		patched.LastUpdated = updatedAt

		next := make([]*domain.Branch, len(r.snapshot))
		copy(next, r.snapshot)
		next[i] = patched
		r.snapshot = next
		return nil
	}

	return ErrBranchNotFound
}

// ListCities возвращает уникальные непустые базовые города по алфавиту
func (r *BranchRepository) ListCities(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	snapshot := r.snapshot
	r.mu.RUnlock()

	seen := make(map[string]struct{})
	cities := make([]string, 0)
	for _, b := range snapshot {
		city := b.Address.BaseCity
		if city == "" {
			continue
		}
		if _, ok := seen[city]; ok {
			continue
		}
		seen[city] = struct{}{}
		cities = append(cities, city)
	}

	sort.Strings(cities)
	return cities, nil
}

func (r *BranchRepository) find(id int64) *domain.Branch {
	i := sort.Search(len(r.snapshot), func(i int) bool { return r.snapshot[i].ID >= id })
	if i < len(r.snapshot) && r.snapshot[i].ID == id {
		return r.snapshot[i]
	}
	return nil
}
