package branches

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/m04kA/SMC-BranchDirectory/internal/domain"
	"github.com/m04kA/SMC-BranchDirectory/internal/infra/cache"
	branchRepo "github.com/m04kA/SMC-BranchDirectory/internal/infra/storage/branch"
	"github.com/m04kA/SMC-BranchDirectory/internal/service/branches/models"
)

const citiesCacheKey = "cities"

// RealTimeProvider реальное время в UTC
type RealTimeProvider struct{}

func (RealTimeProvider) Now() time.Time {
	return time.Now().UTC()
}

// Service сервис чтения справочника отделений и смены их статуса
type Service struct {
	branchRepo   BranchRepository
	txManager    TransactionManager
	cache        Cache
	timeProvider TimeProvider
	logger       Logger

	group singleflight.Group
}

// NewService создает новый экземпляр сервиса отделений
// Если cache == nil, используется кеш-заглушка
func NewService(
	branchRepo BranchRepository,
	txManager TransactionManager,
	branchCache Cache,
	logger Logger,
) *Service {
	if branchCache == nil {
		branchCache = cache.NewNoopCache()
	}

	return &Service{
		branchRepo:   branchRepo,
		txManager:    txManager,
		cache:        branchCache,
		timeProvider: RealTimeProvider{},
		logger:       logger,
	}
}

// List возвращает отделения по фильтру
// Ответ берется из кеша; одновременные промахи по одному ключу схлопываются в один запрос к хранилищу
func (s *Service) List(ctx context.Context, req *models.ListBranchesRequest) (*models.BranchListResponse, error) {
	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("List: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	key := models.CacheKey(filter)

	var cached models.BranchListResponse
	generation, hit := s.lookup(ctx, key, &cached)
	if hit {
		return &cached, nil
	}

	// Результат общий для всех ожидающих, отмена первого запроса не должна его прерывать
	sharedCtx := context.WithoutCancel(ctx)

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		var branches []*domain.Branch
		err := s.txManager.DoReadOnly(sharedCtx, func(ctx context.Context) error {
			var err error
			branches, err = s.branchRepo.List(ctx, filter)
			return err
		})
		if err != nil {
			return nil, err
		}

		resp := models.FromDomainBranchList(branches)
		s.store(sharedCtx, key, generation, resp)
		return resp, nil
	})
	if err != nil {
		s.logger.Error("List: repository error for filter %s: %v", key, err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	resp := v.(*models.BranchListResponse)
	s.logger.Info("List: fetched %d branches for filter %s", resp.Total, key)
	return resp, nil
}

// GetByID получает отделение по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.BranchResponse, error) {
	var branch *domain.Branch
	err := s.txManager.DoReadOnly(ctx, func(ctx context.Context) error {
		var err error
		branch, err = s.branchRepo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, branchRepo.ErrBranchNotFound) {
			s.logger.Warn("GetByID: branch id=%d not found", id)
			return nil, ErrBranchNotFound
		}
		s.logger.Error("GetByID: repository error for branch id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	resp := models.FromDomainBranch(branch)
	return &resp, nil
}

// UpdateStatus меняет флаг временного закрытия отделения
// Изменение не переживает следующий импорт: новый набор заменяет его целиком
func (s *Service) UpdateStatus(ctx context.Context, id int64, req *models.UpdateStatusRequest) error {
	if req.IsTemporaryClosed == nil {
		s.logger.Warn("UpdateStatus: isTemporaryClosed is required for branch id=%d", id)
		return fmt.Errorf("%w: isTemporaryClosed is required", ErrInvalidInput)
	}

	closed := *req.IsTemporaryClosed
	now := s.timeProvider.Now()

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		return s.branchRepo.PatchTemporaryClosed(ctx, id, closed, now)
	})
	if err != nil {
		if errors.Is(err, branchRepo.ErrBranchNotFound) {
			s.logger.Warn("UpdateStatus: branch id=%d not found", id)
			return ErrBranchNotFound
		}
		s.logger.Error("UpdateStatus: repository error for branch id=%d: %v", id, err)
		return fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("UpdateStatus: failed to invalidate cache: %v", err)
	}

	s.logger.Info("UpdateStatus: branch id=%d isTemporaryClosed=%t", id, closed)
	return nil
}

// ListCities возвращает список базовых городов для фильтра
func (s *Service) ListCities(ctx context.Context) (*models.CitiesResponse, error) {
	var cached models.CitiesResponse
	generation, hit := s.lookup(ctx, citiesCacheKey, &cached)
	if hit {
		return &cached, nil
	}

	sharedCtx := context.WithoutCancel(ctx)

	v, err, _ := s.group.Do(citiesCacheKey, func() (interface{}, error) {
		cities, err := s.branchRepo.ListCities(sharedCtx)
		if err != nil {
			return nil, err
		}

		resp := &models.CitiesResponse{Cities: cities}
		s.store(sharedCtx, citiesCacheKey, generation, resp)
		return resp, nil
	})
	if err != nil {
		s.logger.Error("ListCities: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListCities - repository error: %v", ErrInternal, err)
	}

	return v.(*models.CitiesResponse), nil
}

// lookup читает значение из кеша; ошибки кеша не прерывают запрос
func (s *Service) lookup(ctx context.Context, key string, dst interface{}) (int64, bool) {
	data, generation, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn("cache get %s failed: %v", key, err)
		}
		return generation, false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		s.logger.Warn("cache entry %s is corrupted: %v", key, err)
		return generation, false
	}

	return generation, true
}

func (s *Service) store(ctx context.Context, key string, generation int64, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("cache marshal %s failed: %v", key, err)
		return
	}

	if err := s.cache.Set(ctx, key, generation, data); err != nil {
		s.logger.Warn("cache set %s failed: %v", key, err)
	}
}
